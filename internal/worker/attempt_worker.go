package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/preptly/cbt-gateway/internal/config"
	"github.com/preptly/cbt-gateway/internal/history"
	"github.com/preptly/cbt-gateway/internal/model"
)

// AttemptPayload is the queue record for one finalized attempt.
type AttemptPayload struct {
	UserID        string               `json:"user_id"`
	SessionID     string               `json:"session_id"`
	Kind          string               `json:"kind"`
	Subjects      []string             `json:"subjects"`
	SubjectScores []model.SubjectScore `json:"subject_scores"`
	TotalScore    int                  `json:"total_score"`
	MaxScore      int                  `json:"max_score"`
	TimeSpent     string               `json:"time_spent"`
}

// EnqueueAttempt pushes a finalized attempt onto the archive queue. The
// caller stays on the hot path, archiving happens out of band.
func EnqueueAttempt(ctx context.Context, rdb *redis.Client, p AttemptPayload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err()
}

// AttemptWorker consumes persist_attempts_queue and archives attempts
// to PostgreSQL through the history repository.
type AttemptWorker struct {
	repo *history.Repository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAttemptWorker creates a new AttemptWorker.
func NewAttemptWorker(repo *history.Repository, rdb *redis.Client, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "attempt_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AttemptWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistAttemptsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload AttemptPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.archive(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("user_id", payload.UserID).
			Str("session_id", payload.SessionID).
			Msg("Archive error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *AttemptWorker) archive(ctx context.Context, p *AttemptPayload) error {
	return w.repo.Insert(ctx, &history.Attempt{
		UserID:        p.UserID,
		SessionID:     p.SessionID,
		Kind:          p.Kind,
		Subjects:      p.Subjects,
		SubjectScores: p.SubjectScores,
		TotalScore:    p.TotalScore,
		MaxScore:      p.MaxScore,
		TimeSpent:     p.TimeSpent,
	})
}

// drain processes all remaining items in the queue before shutdown.
func (w *AttemptWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistAttemptsQueue).Result()
		if err != nil {
			break
		}

		var payload AttemptPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.archive(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain archive error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
