// Package scores derives per-user, per-mode running statistics from the
// append-only score record log.
package scores

import (
	"time"

	"the-pub/internal/domain"
)

// Aggregator recomputes average summaries. It is pure over the record set
// it is handed; fetching records and persisting the summary belong to the
// caller.
type Aggregator struct {
	now func() time.Time
}

func New() *Aggregator {
	return NewWithClock(time.Now)
}

// NewWithClock allows deterministic timestamps in tests.
func NewWithClock(now func() time.Time) *Aggregator {
	return &Aggregator{now: now}
}

// RecomputeAverage builds the summary for (userID, gameMode) from the full
// historical record set. It always recomputes from scratch rather than
// folding one score into a stored mean, so a missed or failed earlier
// aggregation heals itself on the next write. Callers must pass every record
// for the pair; records for other users or modes are ignored.
func (a *Aggregator) RecomputeAverage(userID, gameMode string, records []domain.ScoreRecord) domain.AverageSummary {
	summary := domain.AverageSummary{
		UserID:      userID,
		GameMode:    gameMode,
		LastUpdated: a.now(),
	}

	sum := 0
	for _, rec := range records {
		if rec.UserID != userID || rec.GameMode != gameMode {
			continue
		}
		summary.GamesPlayed++
		sum += rec.Score
	}
	if summary.GamesPlayed > 0 {
		summary.AverageScore = float64(sum) / float64(summary.GamesPlayed)
	}
	return summary
}
