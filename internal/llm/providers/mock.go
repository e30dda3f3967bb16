package providers

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm"
)

// MockProvider is a scripted llm.Provider for tests and dry runs. It
// replays a fixed sequence of responses; once the script is exhausted it
// keeps returning the last response (or an empty assistant message if no
// script was provided).
type MockProvider struct {
	mu        sync.Mutex
	script    []llm.CompletionResponse
	errs      []error
	callCount int
}

// NewMockProvider creates a mock provider with the given scripted responses.
func NewMockProvider(script ...llm.CompletionResponse) *MockProvider {
	return &MockProvider{script: script}
}

// FailWith queues errors returned before any scripted responses are served.
func (m *MockProvider) FailWith(errs ...error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, errs...)
	return m
}

// Name returns the provider name.
func (m *MockProvider) Name() string {
	return "mock"
}

// CallCount returns how many completion calls have been made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Complete replays the next scripted response.
func (m *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return m.next(ctx)
}

// CompleteWithTools replays the next scripted response; the tool catalog
// is ignored by the script.
func (m *MockProvider) CompleteWithTools(ctx context.Context, req llm.CompletionRequest, tools []llm.ToolDef) (*llm.CompletionResponse, error) {
	return m.next(ctx)
}

func (m *MockProvider) next(ctx context.Context) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		m.callCount++
		return nil, err
	}

	var resp llm.CompletionResponse
	switch {
	case m.callCount < len(m.script):
		resp = m.script[m.callCount]
	case len(m.script) > 0:
		resp = m.script[len(m.script)-1]
	default:
		resp = llm.CompletionResponse{
			Message:      llm.Message{Role: llm.RoleAssistant, Content: ""},
			FinishReason: llm.FinishReasonStop,
		}
	}
	m.callCount++

	if resp.ID == "" {
		resp.ID = uuid.New().String()
	}
	if resp.Message.Role == "" {
		resp.Message.Role = llm.RoleAssistant
	}
	return &resp, nil
}

// AssistantText builds a scripted plain-text assistant response.
func AssistantText(content string) llm.CompletionResponse {
	return llm.CompletionResponse{
		Message:      llm.NewAssistantMessage(content),
		FinishReason: llm.FinishReasonStop,
	}
}

// AssistantToolCall builds a scripted response containing one tool call.
func AssistantToolCall(name, arguments string) llm.CompletionResponse {
	return llm.CompletionResponse{
		Message: llm.Message{
			Role: llm.RoleAssistant,
			ToolCalls: []llm.ToolCall{
				{
					ID:        uuid.New().String(),
					Type:      "function",
					Name:      name,
					Arguments: arguments,
				},
			},
		},
		FinishReason: llm.FinishReasonToolCalls,
	}
}
