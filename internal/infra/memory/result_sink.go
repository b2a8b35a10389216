package memory

import (
	"context"
	"sync"
	"time"

	"campus-quiz-service/internal/domain"
)

// ResultSink keeps lifecycle writes in memory. Production deployments use the
// Postgres sink; this one backs tests and the no-database demo mode.
type ResultSink struct {
	mu        sync.Mutex
	statuses  map[string]string
	startedAt map[string]time.Time
	results   map[string]domain.QuizResult
}

func NewResultSink() *ResultSink {
	return &ResultSink{
		statuses:  make(map[string]string),
		startedAt: make(map[string]time.Time),
		results:   make(map[string]domain.QuizResult),
	}
}

func (s *ResultSink) MarkRunning(_ context.Context, quizID string, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[quizID] = domain.StatusRunning
	s.startedAt[quizID] = startedAt
	return nil
}

func (s *ResultSink) SaveResult(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[result.QuizID] = domain.StatusEnded
	s.results[result.QuizID] = result
	return nil
}

// Status reports the last recorded lifecycle status for a quiz.
func (s *ResultSink) Status(quizID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[quizID]
	return status, ok
}

// Result returns the persisted snapshot for a quiz, if any.
func (s *ResultSink) Result(quizID string) (domain.QuizResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[quizID]
	return result, ok
}
