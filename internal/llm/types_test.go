package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/schema"
)

func TestRole_UnmarshalRejectsUnknown(t *testing.T) {
	var r Role
	assert.Error(t, json.Unmarshal([]byte(`"narrator"`), &r))
	require.NoError(t, json.Unmarshal([]byte(`"assistant"`), &r))
	assert.Equal(t, RoleAssistant, r)
}

func TestMessage_JSONRoundTrip(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		ToolCalls: []ToolCall{
			{ID: "call_1", Type: "function", Name: "finalize_email", Arguments: `{"subject":"hi"}`},
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var back Message
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, msg, back)
}

func TestCompletionRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CompletionRequest
		wantErr bool
	}{
		{
			name:    "valid",
			req:     CompletionRequest{Messages: []Message{NewUserMessage("hi")}, Temperature: 0.7},
			wantErr: false,
		},
		{
			name:    "no messages",
			req:     CompletionRequest{Temperature: 0.7},
			wantErr: true,
		},
		{
			name:    "temperature out of range",
			req:     CompletionRequest{Messages: []Message{NewUserMessage("hi")}, Temperature: 3.0},
			wantErr: true,
		},
		{
			name:    "negative max tokens",
			req:     CompletionRequest{Messages: []Message{NewUserMessage("hi")}, MaxTokens: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToolCall_ParseArguments(t *testing.T) {
	call := ToolCall{Arguments: `{"node_id": "prospect:alex", "k": 3}`}

	var args struct {
		NodeID string `json:"node_id"`
		K      int    `json:"k"`
	}
	require.NoError(t, call.ParseArguments(&args))
	assert.Equal(t, "prospect:alex", args.NodeID)
	assert.Equal(t, 3, args.K)

	bad := ToolCall{Arguments: `{truncated`}
	assert.Error(t, bad.ParseArguments(&args))

	empty := ToolCall{}
	assert.Error(t, empty.ParseArguments(&args))
}

func TestToolDef_Validate(t *testing.T) {
	def := NewToolDef("browse_neighbors", "Browse neighbor nodes", schema.Object(map[string]*schema.JSONSchema{
		"node_id": schema.String("node to browse from"),
	}, "node_id"))
	assert.NoError(t, def.Validate())
	assert.Equal(t, "object", def.Parameters.Type)

	assert.Error(t, ToolDef{Description: "x"}.Validate())
	assert.Error(t, ToolDef{Name: "x"}.Validate())
}

func TestHasToolCalls(t *testing.T) {
	var nilResp *CompletionResponse
	assert.False(t, nilResp.HasToolCalls())

	resp := &CompletionResponse{Message: NewAssistantMessage("text only")}
	assert.False(t, resp.HasToolCalls())

	resp.Message.ToolCalls = []ToolCall{{ID: "1", Name: "finalize_email"}}
	assert.True(t, resp.HasToolCalls())
}
