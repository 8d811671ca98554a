package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/inkwell-labs/inkwell-core/internal/config"
	"github.com/inkwell-labs/inkwell-core/internal/httputil"
	"github.com/inkwell-labs/inkwell-core/internal/telemetry"
)

// WorkspaceHeader identifies the calling workspace. Absent, the limits
// apply to a shared default bucket.
const WorkspaceHeader = "X-Inkwell-Workspace"

const defaultWorkspace = "default"

const (
	headerRateLimitRequests          = "X-RateLimit-Limit-Requests"
	headerRateLimitRemainingRequests = "X-RateLimit-Remaining-Requests"
	headerRateLimitReset             = "X-RateLimit-Reset-Requests"
	headerRetryAfter                 = "Retry-After"
)

// WorkspaceID extracts the workspace bucket for a request.
func WorkspaceID(r *http.Request) string {
	if ws := r.Header.Get(WorkspaceHeader); ws != "" {
		return ws
	}
	return defaultWorkspace
}

// Middleware returns chi middleware that enforces the per-workspace
// request rate and daily token budget.
func Middleware(limiter *Limiter, tokens *TokenTracker, cfg config.RateLimitConfig, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			reqID := w.Header().Get("X-Request-ID")
			workspace := WorkspaceID(r)

			rpm := cfg.RequestsPerMinute
			result, _ := limiter.Check(r.Context(), "rpm:"+workspace, int64(rpm), time.Minute)

			// Always set rate limit headers
			w.Header().Set(headerRateLimitRequests, strconv.Itoa(rpm))
			w.Header().Set(headerRateLimitRemainingRequests, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, result.ResetAt.Format(time.RFC3339))

			if !result.Allowed {
				slog.Warn("rate limit exceeded",
					"request_id", reqID,
					"workspace", workspace,
					"limit", rpm,
				)
				if metrics != nil {
					metrics.RecordRateLimitHit("requests_per_minute")
				}
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteRateLimitError(w, reqID,
					fmt.Sprintf("Rate limit exceeded: %d requests per minute. Retry after %s", rpm, result.ResetAt.Format(time.RFC3339)))
				return
			}

			if cfg.DailyTokenLimit > 0 {
				budget, _ := tokens.CheckDailySpend(r.Context(), workspace, cfg.DailyTokenLimit)
				if !budget.Allowed {
					slog.Warn("daily token budget exceeded",
						"request_id", reqID,
						"workspace", workspace,
						"spent_tokens", budget.SpentTokens,
						"limit_tokens", budget.LimitTokens,
					)
					if metrics != nil {
						metrics.RecordRateLimitHit("daily_tokens")
					}
					httputil.WriteBudgetExceededError(w, reqID,
						fmt.Sprintf("Daily token budget exceeded: spent %d of %d tokens", budget.SpentTokens, budget.LimitTokens))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
