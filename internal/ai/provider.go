package ai

import "context"

// LLMProvider sends a prompt pair to an LLM and returns the raw text
// response. Used only by JobExtractor; not exported to the rest of the
// system.
type LLMProvider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
