package memory

import (
	"context"
	"testing"
	"time"

	"the-pub/internal/domain"
)

func TestScoreStoreAppendAndQuery(t *testing.T) {
	ctx := context.Background()
	store := NewScoreStore()

	recs := []domain.ScoreRecord{
		{UserID: "u1", GameMode: domain.ModeTrivia, Score: 10, PlayedAt: time.Now()},
		{UserID: "u1", GameMode: domain.ModeTrivia, Score: 20, PlayedAt: time.Now()},
		{UserID: "u1", GameMode: domain.ModeRideTheBus, Score: 99, PlayedAt: time.Now()},
	}
	for _, rec := range recs {
		if err := store.AppendRecord(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := store.RecordsFor(ctx, "u1", domain.ModeTrivia)
	if err != nil {
		t.Fatalf("records for: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 trivia records, got %d", len(got))
	}
}

func TestScoreStoreSummaryUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewScoreStore()

	if _, err := store.Summary(ctx, "u1", domain.ModeTrivia); err != domain.ErrSummaryNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	first := domain.AverageSummary{UserID: "u1", GameMode: domain.ModeTrivia, AverageScore: 10, GamesPlayed: 1}
	if err := store.UpsertSummary(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second := domain.AverageSummary{UserID: "u1", GameMode: domain.ModeTrivia, AverageScore: 15, GamesPlayed: 2}
	if err := store.UpsertSummary(ctx, second); err != nil {
		t.Fatalf("upsert 2: %v", err)
	}

	got, err := store.Summary(ctx, "u1", domain.ModeTrivia)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.GamesPlayed != 2 || got.AverageScore != 15 {
		t.Fatalf("expected overwritten summary, got %+v", got)
	}
}
