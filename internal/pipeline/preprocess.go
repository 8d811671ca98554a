// Package pipeline orchestrates a turn: bounded-concurrency
// preprocessing of the working sequence, then the final generation call.
package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/inkwell-labs/inkwell-core/internal/config"
	"github.com/inkwell-labs/inkwell-core/internal/summarize"
	"github.com/inkwell-labs/inkwell-core/internal/types"
)

// PreprocessStats aggregates what one preprocessing pass did and cost.
type PreprocessStats struct {
	FileTokens        int
	ContextTokens     int
	CacheHits         int
	CacheMisses       int
	FilesBypassed     int
	FileFailures      int
	ContextSummarized bool
	ContextFailed     bool
}

// TokensUsed is the total model spend of the pass.
func (s PreprocessStats) TokensUsed() int {
	return s.FileTokens + s.ContextTokens
}

// Preprocessor runs the preprocessing phase over a turn's working
// sequence: file summarization fanned out in bounded batches, then one
// incremental context summarization pass. Every failure degrades in
// place, so the phase itself never returns an error.
type Preprocessor struct {
	files *summarize.FileSummarizer
	ctx   *summarize.ContextSummarizer
	cfg   config.PipelineConfig
}

func NewPreprocessor(files *summarize.FileSummarizer, ctxSum *summarize.ContextSummarizer, cfg config.PipelineConfig) *Preprocessor {
	return &Preprocessor{files: files, ctx: ctxSum, cfg: cfg}
}

// Run preprocesses the turn in place. The processing zone always comes
// out with Preprocessed set and every needsProcessing message marked
// processed, whatever happened along the way.
func (p *Preprocessor) Run(ctx context.Context, ac *types.AgentContext) PreprocessStats {
	var stats PreprocessStats

	if p.cfg.Skip {
		for _, m := range ac.Processing.Messages {
			if m.Meta.NeedsProcessing {
				m.Meta.Processed = true
			}
		}
		ac.Processing.Preprocessed = true
		return stats
	}

	p.processFiles(ctx, ac.Processing.Messages.Unprocessed(types.TypeFile), &stats)

	// A lone context message has nothing to fold, whatever the
	// thresholds say; it just gets marked and rides along.
	ctxMsgs := ac.Processing.Messages.Unprocessed(types.TypeContext)
	if len(ctxMsgs) > 1 {
		result := p.ctx.Process(ctx, ctxMsgs, &ac.Processing.Messages, ac.Input.ConversationID)
		stats.ContextTokens = result.TokensUsed
		stats.ContextSummarized = result.Summarized
		stats.ContextFailed = !result.Success
	} else if len(ctxMsgs) == 1 {
		ctxMsgs[0].Meta.Processed = true
	}

	ac.Processing.Preprocessed = true
	return stats
}

// processFiles summarizes file messages in batches of at most
// MaxConcurrency. Each batch joins fully before the next starts, and a
// failed member never blocks its siblings.
func (p *Preprocessor) processFiles(ctx context.Context, files []*types.Message, stats *PreprocessStats) {
	if len(files) == 0 {
		return
	}

	batchSize := p.cfg.MaxConcurrency
	if !p.cfg.ParallelFiles || batchSize < 1 {
		batchSize = 1
	}

	var mu sync.Mutex
	record := func(r summarize.FileResult) {
		mu.Lock()
		defer mu.Unlock()
		stats.FileTokens += r.TokensUsed
		switch {
		case r.Bypassed:
			stats.FilesBypassed++
		case r.FromCache:
			stats.CacheHits++
		case r.Success:
			stats.CacheMisses++
		default:
			stats.FileFailures++
		}
	}

	for start := 0; start < len(files); start += batchSize {
		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}

		var wg sync.WaitGroup
		for _, msg := range files[start:end] {
			wg.Add(1)
			go func(m *types.Message) {
				defer wg.Done()
				record(p.files.Process(ctx, m))
			}(msg)
		}
		wg.Wait()
	}

	if stats.FileFailures > 0 {
		slog.Warn("file preprocessing degraded", "failed", stats.FileFailures, "total", len(files))
	}
}
