package providers

import (
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm"
)

// toLangchainMessages converts transcript messages to langchaingo
// MessageContent values.
func toLangchainMessages(messages []llm.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))

	for _, msg := range messages {
		var role llms.ChatMessageType
		switch msg.Role {
		case llm.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case llm.RoleAssistant:
			role = llms.ChatMessageTypeAI
		case llm.RoleTool:
			role = llms.ChatMessageTypeTool
		default:
			role = llms.ChatMessageTypeHuman
		}

		content := llms.MessageContent{Role: role}

		switch msg.Role {
		case llm.RoleTool:
			content.Parts = []llms.ContentPart{
				llms.ToolCallResponse{
					ToolCallID: msg.ToolCallID,
					Name:       msg.Name,
					Content:    msg.Content,
				},
			}
		case llm.RoleAssistant:
			if msg.Content != "" {
				content.Parts = append(content.Parts, llms.TextPart(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				content.Parts = append(content.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: tc.Type,
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
		default:
			content.Parts = []llms.ContentPart{llms.TextPart(msg.Content)}
		}

		result = append(result, content)
	}

	return result
}

// fromLangchainResponse converts a langchaingo response to a
// CompletionResponse. A nil response yields an empty assistant message.
func fromLangchainResponse(resp *llms.ContentResponse, model string) *llm.CompletionResponse {
	out := &llm.CompletionResponse{
		ID:           uuid.New().String(),
		Model:        model,
		Message:      llm.Message{Role: llm.RoleAssistant},
		FinishReason: llm.FinishReasonStop,
	}
	if resp == nil || len(resp.Choices) == 0 {
		return out
	}

	choice := resp.Choices[0]
	out.Message.Content = choice.Content

	for _, tc := range choice.ToolCalls {
		var name, arguments string
		if tc.FunctionCall != nil {
			name = tc.FunctionCall.Name
			arguments = tc.FunctionCall.Arguments
		}
		out.Message.ToolCalls = append(out.Message.ToolCalls, llm.ToolCall{
			ID:        tc.ID,
			Type:      tc.Type,
			Name:      name,
			Arguments: arguments,
		})
	}

	switch choice.StopReason {
	case "length", "max_tokens":
		out.FinishReason = llm.FinishReasonLength
	case "tool_calls", "function_call":
		out.FinishReason = llm.FinishReasonToolCalls
	default:
		if len(out.Message.ToolCalls) > 0 {
			out.FinishReason = llm.FinishReasonToolCalls
		}
	}

	return out
}

// buildCallOptions converts a request to langchaingo call options.
func buildCallOptions(req llm.CompletionRequest) []llms.CallOption {
	callOpts := make([]llms.CallOption, 0, 3)

	if req.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Model != "" {
		callOpts = append(callOpts, llms.WithModel(req.Model))
	}

	return callOpts
}

// buildCallOptionsWithTools adds tool declarations to the call options.
func buildCallOptionsWithTools(req llm.CompletionRequest, tools []llm.ToolDef) []llms.CallOption {
	callOpts := buildCallOptions(req)
	if len(tools) == 0 {
		return callOpts
	}

	lcTools := make([]llms.Tool, 0, len(tools))
	for _, tool := range tools {
		lcTools = append(lcTools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return append(callOpts, llms.WithTools(lcTools))
}
