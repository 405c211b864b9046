package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"the-pub/internal/app"
	"the-pub/internal/domain"
)

// SummaryCache is a Redis-aware app.ScoreStore wrapper. Record writes and
// history queries pass straight through to the inner store; average
// summaries are cached read-through under:
//
//	SET summary:{userID}:{gameMode} {json}
//
// Cache writes are best effort: the summary is a derived document, so a
// stale or missing cache entry only costs a read against the inner store.
type SummaryCache struct {
	inner  app.ScoreStore
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryCache(inner app.ScoreStore, client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{inner: inner, client: client, ttl: ttl}
}

func (c *SummaryCache) AppendRecord(ctx context.Context, record domain.ScoreRecord) error {
	return c.inner.AppendRecord(ctx, record)
}

func (c *SummaryCache) RecordsFor(ctx context.Context, userID, gameMode string) ([]domain.ScoreRecord, error) {
	return c.inner.RecordsFor(ctx, userID, gameMode)
}

func (c *SummaryCache) UpsertSummary(ctx context.Context, summary domain.AverageSummary) error {
	if err := c.inner.UpsertSummary(ctx, summary); err != nil {
		return err
	}
	c.cacheSet(ctx, summary)
	return nil
}

func (c *SummaryCache) Summary(ctx context.Context, userID, gameMode string) (domain.AverageSummary, error) {
	raw, err := c.client.Get(ctx, c.key(userID, gameMode)).Bytes()
	if err == nil && len(raw) > 0 {
		var summary domain.AverageSummary
		if err := json.Unmarshal(raw, &summary); err == nil {
			return summary, nil
		}
	}

	summary, err := c.inner.Summary(ctx, userID, gameMode)
	if err != nil {
		return domain.AverageSummary{}, err
	}
	c.cacheSet(ctx, summary)
	return summary, nil
}

func (c *SummaryCache) cacheSet(ctx context.Context, summary domain.AverageSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(summary.UserID, summary.GameMode), data, c.ttl).Err()
}

func (c *SummaryCache) key(userID, gameMode string) string {
	return "summary:" + userID + ":" + gameMode
}
