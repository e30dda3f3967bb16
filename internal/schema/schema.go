// Package schema provides a minimal JSON Schema representation used for
// the model-facing tool parameter contract.
package schema

// JSONSchema represents a JSON Schema for tool parameter declarations.
type JSONSchema struct {
	// Type specifies the JSON type (object, array, string, number, integer, boolean)
	Type string `json:"type,omitempty"`

	// Properties defines object properties (for type: object)
	Properties map[string]*JSONSchema `json:"properties,omitempty"`

	// Required lists required property names (for type: object)
	Required []string `json:"required,omitempty"`

	// Items defines array item schema (for type: array)
	Items *JSONSchema `json:"items,omitempty"`

	// Description provides human-readable schema documentation
	Description string `json:"description,omitempty"`

	// Default provides a default value hint for optional parameters
	Default any `json:"default,omitempty"`
}

// Object creates an object schema with the given properties and required names.
func Object(properties map[string]*JSONSchema, required ...string) JSONSchema {
	return JSONSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// String creates a string property schema.
func String(description string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: description}
}

// Integer creates an integer property schema.
func Integer(description string) *JSONSchema {
	return &JSONSchema{Type: "integer", Description: description}
}

// IntegerWithDefault creates an integer property schema with a default hint.
func IntegerWithDefault(description string, def int) *JSONSchema {
	return &JSONSchema{Type: "integer", Description: description, Default: def}
}

// StringArray creates an array-of-strings property schema.
func StringArray(description string) *JSONSchema {
	return &JSONSchema{
		Type:        "array",
		Description: description,
		Items:       &JSONSchema{Type: "string"},
	}
}
