package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"the-pub/internal/domain"
)

// ScoreStore persists score records and average summaries in Postgres.
//
// The record/recompute cycle around this store is intentionally not
// transactional: concurrent sessions for the same (user, mode) can race and
// briefly undercount the summary, and the next full recompute repairs it.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) AppendRecord(ctx context.Context, record domain.ScoreRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO score_records (user_id, game_mode, score, elapsed_seconds, played_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.UserID, record.GameMode, record.Score, record.ElapsedSeconds, record.PlayedAt)
	if err != nil {
		return fmt.Errorf("append score record: %w", err)
	}
	return nil
}

func (s *ScoreStore) RecordsFor(ctx context.Context, userID, gameMode string) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, game_mode, score, elapsed_seconds, played_at
		 FROM score_records
		 WHERE user_id = $1 AND game_mode = $2
		 ORDER BY played_at`,
		userID, gameMode)
	if err != nil {
		return nil, fmt.Errorf("query score records: %w", err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var rec domain.ScoreRecord
		if err := rows.Scan(&rec.UserID, &rec.GameMode, &rec.Score, &rec.ElapsedSeconds, &rec.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan score record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read score records: %w", err)
	}
	return records, nil
}

func (s *ScoreStore) UpsertSummary(ctx context.Context, summary domain.AverageSummary) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO average_summaries (user_id, game_mode, average_score, games_played, last_updated)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, game_mode) DO UPDATE
		 SET average_score = EXCLUDED.average_score,
		     games_played  = EXCLUDED.games_played,
		     last_updated  = EXCLUDED.last_updated`,
		summary.UserID, summary.GameMode, summary.AverageScore, summary.GamesPlayed, summary.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

func (s *ScoreStore) Summary(ctx context.Context, userID, gameMode string) (domain.AverageSummary, error) {
	summary := domain.AverageSummary{UserID: userID, GameMode: gameMode}
	err := s.pool.QueryRow(ctx,
		`SELECT average_score, games_played, last_updated
		 FROM average_summaries
		 WHERE user_id = $1 AND game_mode = $2`,
		userID, gameMode).Scan(&summary.AverageScore, &summary.GamesPlayed, &summary.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AverageSummary{}, domain.ErrSummaryNotFound
	}
	if err != nil {
		return domain.AverageSummary{}, fmt.Errorf("load summary: %w", err)
	}
	return summary, nil
}
