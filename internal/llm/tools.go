package llm

import (
	"encoding/json"
	"fmt"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/schema"
)

// ToolDef declares a tool the model may call during completion. The
// parameter schema is part of the model-facing function-calling contract.
type ToolDef struct {
	// Name is the unique identifier for this tool
	Name string `json:"name"`

	// Description explains what the tool does and when to use it
	Description string `json:"description"`

	// Parameters defines the JSON schema for the tool's input parameters
	Parameters schema.JSONSchema `json:"parameters"`
}

// Validate checks if the tool definition is valid.
func (t ToolDef) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if t.Description == "" {
		return fmt.Errorf("tool description is required")
	}
	if t.Parameters.Type != "" && t.Parameters.Type != "object" {
		return fmt.Errorf("tool parameters must be an object schema, got %s", t.Parameters.Type)
	}
	return nil
}

// NewToolDef creates a new tool definition.
func NewToolDef(name, description string, params schema.JSONSchema) ToolDef {
	if params.Type == "" {
		params.Type = "object"
	}
	return ToolDef{
		Name:        name,
		Description: description,
		Parameters:  params,
	}
}

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	// ID is a unique identifier for this tool call
	ID string `json:"id"`

	// Type indicates the type of tool call (typically "function")
	Type string `json:"type"`

	// Name is the name of the tool to call
	Name string `json:"name"`

	// Arguments contains the JSON-encoded arguments for the tool
	Arguments string `json:"arguments"`
}

// ParseArguments deserializes the tool call arguments into v.
func (t ToolCall) ParseArguments(v any) error {
	if t.Arguments == "" {
		return fmt.Errorf("tool call arguments are empty")
	}
	if err := json.Unmarshal([]byte(t.Arguments), v); err != nil {
		return fmt.Errorf("failed to parse tool call arguments: %w", err)
	}
	return nil
}
