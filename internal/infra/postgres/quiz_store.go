package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campus-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizStore reads quiz definition JSONB from Postgres and writes lifecycle
// transitions back. It serves both as the engine's quiz loader and as its
// result sink.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) LoadQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if err == pgx.ErrNoRows {
		return domain.QuizDefinition{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.QuizDefinition
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

// MarkRunning flips the stored status to running, in both the column used for
// listings and the definition document itself.
func (s *QuizStore) MarkRunning(ctx context.Context, quizID string, startedAt time.Time) error {
	patch, err := json.Marshal(map[string]any{
		"status":    domain.StatusRunning,
		"startedAt": startedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal running patch: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE quizzes SET status=$2, started_at=$3, data = data || $4::jsonb WHERE id=$1`,
		quizID, domain.StatusRunning, startedAt, patch)
	if err != nil {
		return fmt.Errorf("mark quiz running: %w", err)
	}
	return nil
}

// SaveResult attaches the final snapshot to the quiz document and marks it
// ended. The per-question stats and the full participant ledger are merged
// into the definition's persisted record.
func (s *QuizStore) SaveResult(ctx context.Context, result domain.QuizResult) error {
	patch, err := json.Marshal(map[string]any{
		"status":       domain.StatusEnded,
		"endedAt":      result.EndedAt,
		"stats":        result.Stats,
		"participants": result.Participants,
		"leaderboard":  result.Leaderboard,
	})
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE quizzes SET status=$2, ended_at=$3, data = data || $4::jsonb WHERE id=$1`,
		result.QuizID, domain.StatusEnded, result.EndedAt, patch)
	if err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}
	return nil
}
