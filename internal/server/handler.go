// Package server exposes the assembly pipeline over HTTP: one assist
// endpoint that runs a full turn, plus health.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/inkwell-labs/inkwell-core/internal/builder"
	"github.com/inkwell-labs/inkwell-core/internal/cache"
	"github.com/inkwell-labs/inkwell-core/internal/config"
	"github.com/inkwell-labs/inkwell-core/internal/httputil"
	"github.com/inkwell-labs/inkwell-core/internal/pipeline"
	"github.com/inkwell-labs/inkwell-core/internal/provider"
	"github.com/inkwell-labs/inkwell-core/internal/ratelimit"
	"github.com/inkwell-labs/inkwell-core/internal/summarize"
	"github.com/inkwell-labs/inkwell-core/internal/telemetry"
	"github.com/inkwell-labs/inkwell-core/internal/types"
)

// AssistRequest is the body of POST /v1/assist.
type AssistRequest struct {
	ConversationID string               `json:"conversation_id,omitempty"`
	SystemPrompt   string               `json:"system_prompt,omitempty"`
	Input          string               `json:"input"`
	History        []types.ChatMessage  `json:"history,omitempty"`
	Files          []types.AttachedFile `json:"files,omitempty"`
	Cards          []types.PromptCard   `json:"cards,omitempty"`
	Model          string               `json:"model,omitempty"`
	Temperature    *float64             `json:"temperature,omitempty"`
}

// AssistResponse is the body of a completed turn.
type AssistResponse struct {
	RequestID      string         `json:"request_id"`
	TurnID         string         `json:"turn_id"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Answer         string         `json:"answer"`
	TokensUsed     int            `json:"tokens_used"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// generatorSource resolves logical model names to generators. Satisfied
// by provider.Router; tests substitute fakes.
type generatorSource interface {
	Bind(model string) provider.Generator
}

// Handler holds dependencies for the assist HTTP handlers. Pipeline
// components are assembled per request from the live config, so a hot
// reload applies to the next turn.
type Handler struct {
	gens     generatorSource
	store    cache.SummaryStore
	ctxCache *cache.ContextCache
	cfg      func() *config.Config
	metrics  *telemetry.Metrics
	tokens   *ratelimit.TokenTracker
}

func NewHandler(gens generatorSource, store cache.SummaryStore, ctxCache *cache.ContextCache, cfg func() *config.Config, metrics *telemetry.Metrics, tokens *ratelimit.TokenTracker) *Handler {
	return &Handler{
		gens:     gens,
		store:    store,
		ctxCache: ctxCache,
		cfg:      cfg,
		metrics:  metrics,
		tokens:   tokens,
	}
}

// Assist handles POST /v1/assist.
func (h *Handler) Assist(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	started := time.Now()

	var req AssistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Input) == "" {
		httputil.WriteBadRequestError(w, reqID, "input is required")
		return
	}

	pcfg := h.cfg().Pipeline
	model := req.Model
	if model == "" {
		model = pcfg.GenerateModel
	}

	input := types.InputZone{
		ConversationID: req.ConversationID,
		SystemPrompt:   req.SystemPrompt,
		UserInput:      req.Input,
		History:        req.History,
		Files:          req.Files,
		Cards:          req.Cards,
		Model:          types.ModelOptions{Model: model, Temperature: req.Temperature},
	}

	built := builder.New(pcfg).Build(input)
	ac := types.NewAgentContext(input, built.Messages)

	files := summarize.NewFileSummarizer(h.store, h.gens.Bind(pcfg.FileSummaryModel), pcfg)
	ctxSum := summarize.NewContextSummarizer(h.ctxCache, h.gens.Bind(pcfg.ContextSummaryModel), pcfg)
	engine := pipeline.NewEngine(pipeline.NewPreprocessor(files, ctxSum, pcfg), h.gens.Bind(model))

	stats, err := engine.Run(r.Context(), ac)

	workspace := ratelimit.WorkspaceID(r)
	if h.tokens != nil {
		h.tokens.RecordSpend(r.Context(), workspace, int64(ac.Output.TokensUsed))
	}
	h.recordTurn(model, ac, stats, time.Since(started))

	if err != nil {
		slog.Error("turn failed",
			"request_id", reqID,
			"turn", ac.Meta.ID,
			"model", model,
			"tokens", ac.Output.TokensUsed,
			"error", err,
		)
		if errors.Is(err, pipeline.ErrEmptyResult) {
			httputil.WriteErrorWithTokens(w, reqID, http.StatusBadGateway,
				"provider_error", "empty_result", err.Error(), ac.Output.TokensUsed)
			return
		}
		httputil.WriteErrorWithTokens(w, reqID, http.StatusBadGateway,
			"provider_error", "generation_failed", err.Error(), ac.Output.TokensUsed)
		return
	}

	slog.Info("turn completed",
		"request_id", reqID,
		"turn", ac.Meta.ID,
		"model", model,
		"tokens", ac.Output.TokensUsed,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AssistResponse{
		RequestID:      reqID,
		TurnID:         ac.Meta.ID,
		ConversationID: req.ConversationID,
		Answer:         ac.Output.FinalAnswer,
		TokensUsed:     ac.Output.TokensUsed,
		Metadata:       ac.Output.Metadata,
	})
}

func (h *Handler) recordTurn(model string, ac *types.AgentContext, stats pipeline.PreprocessStats, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}

	outcome := ""
	switch {
	case stats.ContextFailed:
		outcome = "failed"
	case stats.ContextSummarized:
		outcome = "summarized"
	}

	generateTokens := ac.Output.TokensUsed - stats.TokensUsed()
	h.metrics.RecordTurn(telemetry.TurnLabels{
		Model:            model,
		Status:           string(ac.Meta.Stage),
		DurationMs:       float64(elapsed.Milliseconds()),
		PreprocessTokens: stats.TokensUsed(),
		GenerateTokens:   generateTokens,
		CacheHits:        stats.CacheHits,
		CacheMisses:      stats.CacheMisses,
		FilesBypassed:    stats.FilesBypassed,
		ContextOutcome:   outcome,
	})
}

// Health handles GET /v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
