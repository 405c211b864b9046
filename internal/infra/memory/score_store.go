package memory

import (
	"context"
	"sync"

	"the-pub/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore. Records are
// append-only per (user, mode) partition; summaries are replaced whole.
type ScoreStore struct {
	mu        sync.RWMutex
	records   map[string][]domain.ScoreRecord
	summaries map[string]domain.AverageSummary
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		records:   make(map[string][]domain.ScoreRecord),
		summaries: make(map[string]domain.AverageSummary),
	}
}

func (s *ScoreStore) AppendRecord(_ context.Context, record domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := partitionKey(record.UserID, record.GameMode)
	s.records[key] = append(s.records[key], record)
	return nil
}

func (s *ScoreStore) RecordsFor(_ context.Context, userID, gameMode string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.records[partitionKey(userID, gameMode)]
	out := make([]domain.ScoreRecord, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *ScoreStore) UpsertSummary(_ context.Context, summary domain.AverageSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[partitionKey(summary.UserID, summary.GameMode)] = summary
	return nil
}

func (s *ScoreStore) Summary(_ context.Context, userID, gameMode string) (domain.AverageSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[partitionKey(userID, gameMode)]
	if !ok {
		return domain.AverageSummary{}, domain.ErrSummaryNotFound
	}
	return summary, nil
}

func partitionKey(userID, gameMode string) string {
	return userID + "|" + gameMode
}
