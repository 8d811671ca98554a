// Package summarize reduces oversized pipeline messages to digests: one
// summarizer for attached files (with a durable per-path cache) and one
// incremental summarizer for conversation context.
package summarize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/inkwell-labs/inkwell-core/internal/cache"
	"github.com/inkwell-labs/inkwell-core/internal/config"
	"github.com/inkwell-labs/inkwell-core/internal/filemark"
	"github.com/inkwell-labs/inkwell-core/internal/provider"
	"github.com/inkwell-labs/inkwell-core/internal/types"
)

// FileResult reports one file summarization attempt. A failed attempt
// still leaves the message processed with its original content intact.
type FileResult struct {
	Success    bool
	TokensUsed int
	FromCache  bool
	Bypassed   bool
}

// FileSummarizer reduces a single oversized file message to a cached or
// freshly generated digest.
type FileSummarizer struct {
	store cache.SummaryStore
	gen   provider.Generator
	cfg   config.PipelineConfig
}

func NewFileSummarizer(store cache.SummaryStore, gen provider.Generator, cfg config.PipelineConfig) *FileSummarizer {
	return &FileSummarizer{store: store, gen: gen, cfg: cfg}
}

// Process summarizes one file message in place. The message always
// comes out marked processed; on any failure its content is left as the
// original so a failed summary never drops file content.
func (s *FileSummarizer) Process(ctx context.Context, msg *types.Message) FileResult {
	// A merged multi-file body carries one path marker per file but only
	// the first survives Extract; caching it under that path would serve
	// a single file's digest for the whole merge and drop the rest.
	multi := filemark.MultiFile(msg.Content)
	info, body := filemark.Extract(msg.Content)

	// Short files are not worth a model call.
	if len(body) < s.cfg.FileBypassChars {
		msg.Content = filemark.Rewrap(info.Name, body)
		msg.Meta.Processed = true
		return FileResult{Success: true, Bypassed: true}
	}

	if !multi && info.Path != "" && s.store != nil {
		if entry, _ := s.store.Get(ctx, info.Path); entry != nil {
			s.applyDigest(msg, info.Name, entry.Content)
			return FileResult{Success: true, FromCache: true}
		}
	}

	prompt := s.cfg.FileSummaryPrompt
	if prompt == "" {
		prompt = defaultFileSummaryPrompt
	}

	result, err := s.gen.Generate(ctx, []types.ChatMessage{
		{Role: "system", Content: prompt},
		{Role: "user", Content: body},
	}, provider.GenerateOptions{})
	if err != nil || strings.TrimSpace(result.Text) == "" {
		slog.Warn("file summarization failed, keeping original content",
			"file", info.Name, "path", info.Path, "error", err)
		msg.Meta.Processed = true
		return FileResult{Success: false, TokensUsed: result.TokensUsed}
	}

	if !multi && info.Path != "" && s.store != nil {
		// Only reached after a successful call, so no rollback needed.
		s.store.Put(ctx, info.Path, result.Text)
	}

	s.applyDigest(msg, info.Name, result.Text)
	return FileResult{Success: true, TokensUsed: result.TokensUsed}
}

func (s *FileSummarizer) applyDigest(msg *types.Message, name, digest string) {
	msg.Content = filemark.Rewrap(name, digest)
	msg.Meta.Type = types.TypeFileSummary
	msg.Meta.Processed = true
}
