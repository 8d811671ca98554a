package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkwell-labs/inkwell-core/internal/cache"
	"github.com/inkwell-labs/inkwell-core/internal/config"
	"github.com/inkwell-labs/inkwell-core/internal/provider"
	"github.com/inkwell-labs/inkwell-core/internal/types"
)

// ContextResult reports one context summarization pass.
type ContextResult struct {
	Success    bool
	TokensUsed int
	Summarized bool
}

// ContextSummarizer incrementally compresses conversation history into
// a running summary. The cache's covered-ID list anchors the cut index,
// which makes the pass idempotent: with no new messages since the last
// run it does nothing, and with N new turns it sends only the delta
// plus the previous digest.
type ContextSummarizer struct {
	cache *cache.ContextCache
	gen   provider.Generator
	cfg   config.PipelineConfig
}

func NewContextSummarizer(cc *cache.ContextCache, gen provider.Generator, cfg config.PipelineConfig) *ContextSummarizer {
	return &ContextSummarizer{cache: cc, gen: gen, cfg: cfg}
}

// decision is the outcome of the summarization decision procedure.
type decision struct {
	skip bool

	// summarize contextMsgs[:cut]; newStart marks where the delta
	// begins within that span.
	cut      int
	newStart int

	// reuseOnly: fold the covered span into the cached summary without
	// a model call, keeping the below-threshold new messages verbatim.
	reuseOnly bool

	prev *cache.ContextSummaryEntry
}

func (s *ContextSummarizer) decide(contextMsgs []*types.Message, cacheKey string) decision {
	if len(contextMsgs) <= s.cfg.MinMessageCount {
		return decision{skip: true}
	}

	prev, ok := s.cache.Get(cacheKey)
	if !ok || len(prev.SummarizedMessageIDs) == 0 {
		if types.TotalChars(contextMsgs) < s.cfg.MinNewChars {
			return decision{skip: true}
		}
		return decision{cut: len(contextMsgs)}
	}

	// Locate the last covered message, scanning from the end.
	lastID := prev.SummarizedMessageIDs[len(prev.SummarizedMessageIDs)-1]
	anchor := -1
	for i := len(contextMsgs) - 1; i >= 0; i-- {
		if contextMsgs[i].Meta.MessageID == lastID {
			anchor = i
			break
		}
	}

	if anchor < 0 {
		// History diverged (cleared or edited): the stale summary is
		// abandoned and everything is summarized from scratch. See the
		// divergence tests before changing this.
		if types.TotalChars(contextMsgs) < s.cfg.MinNewChars {
			return decision{skip: true}
		}
		return decision{cut: len(contextMsgs)}
	}

	newMsgs := contextMsgs[anchor+1:]
	if len(newMsgs) == 0 {
		// Everything covered already; reuse the cached summary so the
		// raw span still collapses in this turn's array.
		return decision{reuseOnly: true, cut: anchor + 1, newStart: anchor + 1, prev: prev}
	}

	if len(newMsgs) <= s.cfg.MinMessageCount || types.TotalChars(newMsgs) < s.cfg.MinNewChars {
		// Not enough new material for a model call, but the covered
		// span can still be replaced by the cached summary; the new
		// messages ride along unsummarized so nothing is lost.
		return decision{reuseOnly: true, cut: anchor + 1, newStart: anchor + 1, prev: prev}
	}

	return decision{cut: len(contextMsgs), newStart: anchor + 1, prev: prev}
}

// Process runs one summarization pass over the turn's context messages.
// contextMsgs must be the unprocessed context-typed messages of all, in
// order; all is mutated in place when a span is replaced.
func (s *ContextSummarizer) Process(ctx context.Context, contextMsgs []*types.Message, all *types.MessageList, cacheKey string) ContextResult {
	if cacheKey == "" {
		cacheKey = cache.DefaultContextKey
	}

	all.EnsureIDs()

	d := s.decide(contextMsgs, cacheKey)
	if d.skip {
		markProcessed(contextMsgs)
		return ContextResult{Success: true}
	}

	if d.reuseOnly {
		summary := d.prev.SummaryMessage.Clone()
		if err := s.replaceSpan(all, contextMsgs[:d.cut], summary); err != nil {
			slog.Warn("context span replace failed", "error", err)
			markProcessed(contextMsgs)
			return ContextResult{Success: false}
		}
		markProcessed(contextMsgs)
		return ContextResult{Success: true}
	}

	newMsgs := contextMsgs[d.newStart:d.cut]
	result, err := s.generateSummary(ctx, d.prev, newMsgs)
	if err != nil || strings.TrimSpace(result.Text) == "" {
		slog.Warn("context summarization failed, keeping raw history",
			"key", cacheKey, "new_messages", len(newMsgs), "error", err)
		markProcessed(contextMsgs)
		return ContextResult{Success: false, TokensUsed: result.TokensUsed}
	}

	covered := contextMsgs[:d.cut]
	summary := &types.Message{
		Role:    types.RoleAssistant,
		Content: result.Text,
		Meta: types.Meta{
			Type:      types.TypeContextSummary,
			Processed: true,
		},
	}

	if err := s.replaceSpan(all, covered, summary); err != nil {
		slog.Warn("context span replace failed", "error", err)
		markProcessed(contextMsgs)
		return ContextResult{Success: false, TokensUsed: result.TokensUsed}
	}

	// Record the full covered set, not just the delta.
	ids := make([]string, 0, len(covered))
	for _, m := range covered {
		ids = append(ids, m.Meta.MessageID)
	}
	s.cache.Put(cacheKey, &cache.ContextSummaryEntry{
		SummaryMessage:       summary,
		SummarizedMessageIDs: ids,
		TotalChars:           types.TotalChars(covered),
	})

	markProcessed(contextMsgs)
	return ContextResult{Success: true, TokensUsed: result.TokensUsed, Summarized: true}
}

// generateSummary sends the prior summary (if any) as an assistant turn
// followed by the raw new messages.
func (s *ContextSummarizer) generateSummary(ctx context.Context, prev *cache.ContextSummaryEntry, newMsgs []*types.Message) (provider.GenerateResult, error) {
	prompt := s.cfg.ContextSummaryPrompt
	if prompt == "" {
		prompt = defaultContextSummaryPrompt
	}

	wire := make([]types.ChatMessage, 0, len(newMsgs)+2)
	wire = append(wire, types.ChatMessage{Role: "system", Content: prompt})
	if prev != nil && prev.SummaryMessage != nil {
		wire = append(wire, types.ChatMessage{Role: "assistant", Content: prev.SummaryMessage.Content})
	}
	for _, m := range newMsgs {
		wire = append(wire, types.ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	return s.gen.Generate(ctx, wire, provider.GenerateOptions{})
}

// replaceSpan swaps the contiguous covered span for the summary message
// in the full working sequence. Untouched messages keep their order.
func (s *ContextSummarizer) replaceSpan(all *types.MessageList, covered []*types.Message, summary *types.Message) error {
	start := all.IndexOf(covered[0])
	end := all.IndexOf(covered[len(covered)-1])
	if start < 0 || end < start {
		return fmt.Errorf("covered span not found in working sequence")
	}
	return all.ReplaceSpan(start, end-start+1, summary)
}

func markProcessed(msgs []*types.Message) {
	for _, m := range msgs {
		m.Meta.Processed = true
	}
}
