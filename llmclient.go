package contextcore

import "context"

// LLMClient is the minimal surface this package needs from an LLM
// transport: given a prompt, produce text. The transport itself — retries,
// streaming, provider selection — is entirely out of scope; only this
// interface is consumed.
type LLMClient interface {
	GetResponse(ctx context.Context, prompt string) (string, error)
}

// LLMClientFunc adapts a plain function to [LLMClient].
type LLMClientFunc func(ctx context.Context, prompt string) (string, error)

func (f LLMClientFunc) GetResponse(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
