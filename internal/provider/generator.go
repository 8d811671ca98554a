// Package provider is the sole LLM access point of the engine. Adapters
// translate the engine's plain role/content sequence into a specific
// provider API; the pipeline only ever sees the Generator interface.
package provider

import (
	"context"

	"github.com/inkwell-labs/inkwell-core/internal/types"
)

// GenerateOptions are the per-call generation options. Cancellation
// rides on the context passed to Generate.
type GenerateOptions struct {
	Temperature *float64
	MaxTokens   *int
}

// GenerateResult is the outcome of a completed generation call.
type GenerateResult struct {
	Text       string
	TokensUsed int
}

// Generator produces a completion for a message sequence.
type Generator interface {
	Name() string
	Generate(ctx context.Context, messages []types.ChatMessage, opts GenerateOptions) (GenerateResult, error)
}

// Adapter is a provider-specific backend. A Generator is an Adapter
// bound to a routed model.
type Adapter interface {
	Name() string
	Complete(ctx context.Context, model string, messages []types.ChatMessage, opts GenerateOptions) (GenerateResult, error)
}
