package rollout

import (
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/retrieval"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/schema"
)

// Tool names form a closed enumeration. Calls naming anything else are
// model noise and are ignored by policy, not rejected as errors.
const (
	ToolBrowseNeighbors = "browse_neighbors"
	ToolRelevantContext = "relevant_context"
	ToolProposeEmail    = "propose_email"
	ToolFinalizeEmail   = "finalize_email"
)

// knownTools is the static lookup table for dispatch.
var knownTools = map[string]bool{
	ToolBrowseNeighbors: true,
	ToolRelevantContext: true,
	ToolProposeEmail:    true,
	ToolFinalizeEmail:   true,
}

// browseArgs are the arguments of browse_neighbors.
type browseArgs struct {
	NodeID string `json:"node_id"`
}

// contextArgs are the arguments of relevant_context. Optional fields
// default to the retrieval package defaults when omitted.
type contextArgs struct {
	NodeID   string `json:"node_id"`
	K        int    `json:"k"`
	Radius   int    `json:"radius"`
	MaxChars int    `json:"max_chars"`
}

// proposeArgs are the arguments of propose_email.
type proposeArgs struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// finalizeArgs are the arguments of finalize_email. All fields are
// optional on the wire: the engine fills gaps from its running state.
type finalizeArgs struct {
	Subject   *string  `json:"subject"`
	Body      *string  `json:"body"`
	Citations []string `json:"citations"`
}

// toolCatalog declares the model-facing tool contract. Each schema is
// derived from the corresponding typed argument struct.
func toolCatalog() []llm.ToolDef {
	return []llm.ToolDef{
		llm.NewToolDef(
			ToolBrowseNeighbors,
			"Return a ranked list of neighbor node_ids of the given node for browsing the knowledge graph.",
			schema.Object(map[string]*schema.JSONSchema{
				"node_id": schema.String("the node whose neighbors to browse"),
			}, "node_id"),
		),
		llm.NewToolDef(
			ToolRelevantContext,
			"Retrieve a concise evidence block of the best-scored content near the given node, with citations.",
			schema.Object(map[string]*schema.JSONSchema{
				"node_id":   schema.String("the node to gather evidence around"),
				"k":         schema.IntegerWithDefault("maximum number of citations", retrieval.DefaultK),
				"radius":    schema.IntegerWithDefault("graph hops to explore", retrieval.DefaultRadius),
				"max_chars": schema.IntegerWithDefault("character budget for the evidence text", retrieval.DefaultMaxChars),
			}, "node_id"),
		),
		llm.NewToolDef(
			ToolProposeEmail,
			"Register a drafted subject and body before finalizing.",
			schema.Object(map[string]*schema.JSONSchema{
				"subject": schema.String("drafted email subject"),
				"body":    schema.String("drafted email body"),
			}, "subject", "body"),
		),
		llm.NewToolDef(
			ToolFinalizeEmail,
			"Seal the email. Omitted fields fall back to the current draft and accumulated citations.",
			schema.Object(map[string]*schema.JSONSchema{
				"subject":   schema.String("final email subject"),
				"body":      schema.String("final email body"),
				"citations": schema.StringArray("node_ids cited as evidence"),
			}),
		),
	}
}
