package llm

import "context"

// Result is a generative reply. Text carries the model output verbatim;
// the parser layer owns any further shape assumptions. TokensUsed is 0 when
// the provider did not report usage.
type Result struct {
	Text       string
	TokensUsed int
}

// LLM is the generative-content collaborator. Implementations are plain
// HTTP clients; errors are returned opaque and propagated verbatim.
type LLM interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
}
