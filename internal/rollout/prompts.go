package rollout

import (
	"fmt"
	"strings"
)

// systemPrompt is the agent's standing instruction set.
const systemPrompt = `You are a sales email agent. Use tools to explore a knowledge graph, gather coherent evidence, and compose a concise, grounded email with a clear CTA. Always cite node_ids used.

Workflow:
1. Use browse_neighbors to browse neighbors of an interesting node
2. Use relevant_context(node_id) to retrieve a short evidence block with citations
3. Draft your own subject and body, registering them with propose_email
4. Call finalize_email with subject, body, and all node_ids you referenced

Policy:
- Always end by calling finalize_email; do not output the email directly.
- As soon as subject and body are drafted, call finalize_email in the same turn.
- If you are running out of turns, summarize citations and call finalize_email.`

// nudgeNoTools is appended when the model replies without any tool call.
const nudgeNoTools = `Please use the provided tools (browse_neighbors/relevant_context/propose_email) and then call finalize_email(subject, body, citations).`

// nudgeReadyToFinalize is appended when a draft subject and body exist
// but finalize_email has not been called.
const nudgeReadyToFinalize = `You have drafted the subject and body. Call finalize_email(subject, body, citations) now.`

// initialUserPrompt opens the conversation after the system preamble.
const initialUserPrompt = `Generate a grounded email by calling tools. End by calling finalize_email.`

// buildSystemPreamble renders the system prompt plus scenario context.
func buildSystemPreamble(sc Scenario) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Prospect: %s (%s) at %s in %s\n",
		sc.Prospect.Name, sc.Prospect.Title, sc.Prospect.Company, sc.Prospect.Industry)
	fmt.Fprintf(&b, "Goal: %s\n", sc.Goal)
	fmt.Fprintf(&b, "Starting nodes: %s\n", strings.Join(sc.SeedNodes, ", "))
	return b.String()
}

// directive is the goal-derived placeholder used when the model finalizes
// without a drafted subject or body.
func directive(sc Scenario) string {
	return "Goal: " + sc.Goal
}
