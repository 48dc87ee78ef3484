package llm

import "context"

// Provider is one concrete LLM backend. The oracle layer composes prompts;
// providers only move text (and optionally images) across the wire.
type Provider interface {
	// Name returns the provider identifier: "claude", "gemini", or "local"
	Name() string
	// Model returns the configured model name
	Model() string
	// Complete generates a completion for a system+user prompt pair
	Complete(ctx context.Context, system, user string) (string, error)
	// CompleteVision generates a completion for a prompt plus a PNG image.
	// Providers without vision support return an empty string and nil error.
	CompleteVision(ctx context.Context, image []byte, prompt string) (string, error)
}
