package app

import (
	"context"
	"log"
	"time"

	"the-pub/internal/domain"
	"the-pub/internal/scores"
)

// ScoreStore abstracts the document store holding score records and average
// summaries (Postgres, in-memory, etc).
type ScoreStore interface {
	// AppendRecord writes one immutable score record.
	AppendRecord(ctx context.Context, record domain.ScoreRecord) error
	// RecordsFor returns every record for the (userID, gameMode) partition.
	RecordsFor(ctx context.Context, userID, gameMode string) ([]domain.ScoreRecord, error)
	// UpsertSummary overwrites the summary keyed by (userID, gameMode).
	UpsertSummary(ctx context.Context, summary domain.AverageSummary) error
	// Summary reads the stored summary, or domain.ErrSummaryNotFound.
	Summary(ctx context.Context, userID, gameMode string) (domain.AverageSummary, error)
}

// ScoreService maintains lifetime averages by running the record/recompute
// cycle after every finished session.
type ScoreService struct {
	store ScoreStore
	agg   *scores.Aggregator
}

func NewScoreService(store ScoreStore) *ScoreService {
	return &ScoreService{store: store, agg: scores.New()}
}

// NewScoreServiceWithClock allows deterministic summary timestamps in tests.
func NewScoreServiceWithClock(store ScoreStore, now func() time.Time) *ScoreService {
	return &ScoreService{store: store, agg: scores.NewWithClock(now)}
}

// Record runs the four-step protocol: append the record, re-read the full
// partition, recompute the mean from scratch, upsert the summary. The steps
// are deliberately not transactional — two concurrent sessions for the same
// user can interleave and leave a summary that briefly undercounts, and the
// next write repairs it because the recompute is a full scan.
//
// Storage failures are logged and swallowed; the caller still shows the
// session's own score. The return is nil when no fresh summary is available.
func (s *ScoreService) Record(ctx context.Context, record domain.ScoreRecord) *domain.AverageSummary {
	if err := s.store.AppendRecord(ctx, record); err != nil {
		log.Printf("score record write failed for %s/%s: %v", record.UserID, record.GameMode, err)
		return nil
	}

	records, err := s.store.RecordsFor(ctx, record.UserID, record.GameMode)
	if err != nil {
		log.Printf("score history read failed for %s/%s: %v", record.UserID, record.GameMode, err)
		return nil
	}

	summary := s.agg.RecomputeAverage(record.UserID, record.GameMode, records)
	if err := s.store.UpsertSummary(ctx, summary); err != nil {
		// The computed summary is still valid for display even when the
		// upsert fails; the next Record call recomputes it anyway.
		log.Printf("summary upsert failed for %s/%s: %v", record.UserID, record.GameMode, err)
	}
	return &summary
}

// Summary reads the stored lifetime average for display.
func (s *ScoreService) Summary(ctx context.Context, userID, gameMode string) (domain.AverageSummary, error) {
	return s.store.Summary(ctx, userID, gameMode)
}
