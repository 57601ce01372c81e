// Package history archives finished attempts so the dashboard and
// leaderboard can show past scores without round-tripping the exam API.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/preptly/cbt-gateway/internal/model"
)

// Attempt is one archived, finalized exam attempt.
type Attempt struct {
	ID            uuid.UUID            `json:"id"`
	UserID        string               `json:"user_id"`
	SessionID     string               `json:"session_id"`
	Kind          string               `json:"kind"`
	Subjects      []string             `json:"subjects"`
	SubjectScores []model.SubjectScore `json:"subject_scores"`
	TotalScore    int                  `json:"total_score"`
	MaxScore      int                  `json:"max_score"`
	TimeSpent     string               `json:"time_spent"`
	CreatedAt     time.Time            `json:"created_at"`
}

// LeaderboardEntry is one row of the ranked score list.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"user_id"`
	TotalScore int    `json:"total_score"`
	MaxScore   int    `json:"max_score"`
	TimeSpent  string `json:"time_spent"`
	Kind       string `json:"kind"`
}

// Repository persists attempts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert archives a finished attempt.
func (r *Repository) Insert(ctx context.Context, a *Attempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	scores, err := json.Marshal(a.SubjectScores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO attempts (id, user_id, session_id, kind, subjects, subject_scores, total_score, max_score, time_spent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, session_id) DO UPDATE
		 SET subject_scores = EXCLUDED.subject_scores,
		     total_score    = EXCLUDED.total_score,
		     time_spent     = EXCLUDED.time_spent`,
		a.ID, a.UserID, a.SessionID, a.Kind, a.Subjects, scores, a.TotalScore, a.MaxScore, a.TimeSpent,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// Leaderboard returns the top attempts by total score, best attempt per
// user, newest first among ties.
func (r *Repository) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	// Best attempt per user, then ranked by score, all inside the query.
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, total_score, max_score, time_spent, kind
		 FROM (
		     SELECT DISTINCT ON (user_id) user_id, total_score, max_score, time_spent, kind
		     FROM attempts
		     ORDER BY user_id, total_score DESC, created_at DESC
		 ) best
		 ORDER BY total_score DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.TotalScore, &e.MaxScore, &e.TimeSpent, &e.Kind); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard rows: %w", err)
	}
	return entries, nil
}

// RecentByUser returns the user's latest attempts, newest first.
func (r *Repository) RecentByUser(ctx context.Context, userID string, limit int) ([]Attempt, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, session_id, kind, subjects, subject_scores, total_score, max_score, time_spent, created_at
		 FROM attempts
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var scores []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.SessionID, &a.Kind, &a.Subjects, &scores, &a.TotalScore, &a.MaxScore, &a.TimeSpent, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt row: %w", err)
		}
		if err := json.Unmarshal(scores, &a.SubjectScores); err != nil {
			return nil, fmt.Errorf("decode scores: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("attempt rows: %w", err)
	}
	return attempts, nil
}
