package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BudgetResult is the outcome of a token budget check.
type BudgetResult struct {
	Allowed     bool
	SpentTokens int64
	LimitTokens int64
}

// TokenTracker tracks daily model token spend per workspace via Redis.
// Preprocessing tokens count against the budget the same as generation
// tokens, so a cache-heavy workspace naturally stretches further.
type TokenTracker struct {
	rdb *redis.Client
}

// NewTokenTracker creates a token tracker. If rdb is nil, all checks pass.
func NewTokenTracker(rdb *redis.Client) *TokenTracker {
	return &TokenTracker{rdb: rdb}
}

func dailyTokenKey(workspaceID string) string {
	day := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf("inkwell:budget:daily:%s:%s", workspaceID, day)
}

// CheckDailySpend reports whether the workspace is under its daily
// token limit. limitTokens <= 0 means unlimited.
func (t *TokenTracker) CheckDailySpend(ctx context.Context, workspaceID string, limitTokens int64) (BudgetResult, error) {
	if t.rdb == nil || limitTokens <= 0 {
		return BudgetResult{Allowed: true, LimitTokens: limitTokens}, nil
	}

	spent, err := t.rdb.Get(ctx, dailyTokenKey(workspaceID)).Int64()
	if err != nil && err != redis.Nil {
		// Fail open on Redis errors
		return BudgetResult{Allowed: true, LimitTokens: limitTokens}, nil
	}

	return BudgetResult{
		Allowed:     spent < limitTokens,
		SpentTokens: spent,
		LimitTokens: limitTokens,
	}, nil
}

// RecordSpend adds a finished turn's token count to the workspace's
// daily counter. Failed turns record too: the tokens were spent.
func (t *TokenTracker) RecordSpend(ctx context.Context, workspaceID string, tokens int64) error {
	if t.rdb == nil || tokens <= 0 {
		return nil
	}

	key := dailyTokenKey(workspaceID)
	pipe := t.rdb.Pipeline()
	pipe.IncrBy(ctx, key, tokens)
	// Expire at end of day UTC + 1 hour buffer
	now := time.Now().UTC()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	pipe.Expire(ctx, key, endOfDay.Sub(now)+time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}
