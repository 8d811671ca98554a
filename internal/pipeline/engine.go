package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwell-labs/inkwell-core/internal/provider"
	"github.com/inkwell-labs/inkwell-core/internal/types"
)

// ErrEmptyResult is returned when the final generation produced no text.
// Unlike preprocessing failures, this one is fatal: there is nothing to
// hand back to the user.
var ErrEmptyResult = errors.New("model returned empty result")

// Engine drives one turn through its two phases. Stage transitions are
// strictly linear and recorded on the context as they happen, so a
// caller inspecting a failed context can see how far it got.
type Engine struct {
	pre *Preprocessor
	gen provider.Generator
}

func NewEngine(pre *Preprocessor, gen provider.Generator) *Engine {
	return &Engine{pre: pre, gen: gen}
}

// Run executes the turn. On success the output zone holds the final
// answer and total token spend; on failure the stage is failed and any
// tokens already spent are still recorded.
func (e *Engine) Run(ctx context.Context, ac *types.AgentContext) (PreprocessStats, error) {
	started := time.Now()

	stats := e.pre.Run(ctx, ac)
	ac.Output.TokensUsed = stats.TokensUsed()

	ac.Meta.Stage = types.StageGenerating

	opts := provider.GenerateOptions{Temperature: ac.Input.Model.Temperature}
	result, err := e.gen.Generate(ctx, ac.Processing.Messages.Strip(), opts)
	ac.Output.TokensUsed += result.TokensUsed
	if err != nil {
		ac.Meta.Stage = types.StageFailed
		return stats, fmt.Errorf("generation: %w", err)
	}
	if strings.TrimSpace(result.Text) == "" {
		ac.Meta.Stage = types.StageFailed
		return stats, ErrEmptyResult
	}

	ac.Output.FinalAnswer = result.Text
	ac.Output.Metadata["preprocess_tokens"] = stats.TokensUsed()
	ac.Output.Metadata["generate_tokens"] = result.TokensUsed
	ac.Output.Metadata["duration_ms"] = time.Since(started).Milliseconds()
	ac.Meta.Stage = types.StageCompleted

	slog.Debug("turn completed",
		"turn", ac.Meta.ID,
		"tokens", ac.Output.TokensUsed,
		"duration", time.Since(started))
	return stats, nil
}
