package app

import (
	"context"
	"log"
	"sync"
	"time"

	"campus-quiz-service/internal/domain"
)

// Liveness marks live sessions in a shared store so other instances (or ops
// tooling) can see which quizzes are running. Best effort; failures are not
// surfaced to callers.
type Liveness interface {
	MarkLive(ctx context.Context, quizID string)
	ClearLive(ctx context.Context, quizID string)
}

// RegistryConfig tunes registry-owned session behavior.
type RegistryConfig struct {
	// AdvancePause is the delay between a question's result broadcast and
	// the next question. Defaults to 3s.
	AdvancePause time.Duration
	// Liveness is optional.
	Liveness Liveness
	// Clock is a test hook for deterministic timestamps.
	Clock func() time.Time
}

// Registry is the process-wide map of live sessions, at most one per quiz id.
type Registry struct {
	publisher Publisher
	sink      ResultSink
	cfg       RegistryConfig

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(publisher Publisher, sink ResultSink, cfg RegistryConfig) *Registry {
	if cfg.AdvancePause <= 0 {
		cfg.AdvancePause = 3 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Registry{
		publisher: publisher,
		sink:      sink,
		cfg:       cfg,
		sessions:  make(map[string]*Session),
	}
}

// CreateOrGet returns the live session for the quiz, creating it if absent.
// Creation is idempotent against duplicate start signals: only the first call
// announces the quiz to its group room and flips its stored status to running.
func (r *Registry) CreateOrGet(ctx context.Context, quiz domain.QuizDefinition) (*Session, bool) {
	r.mu.Lock()
	if session, ok := r.sessions[quiz.ID]; ok {
		r.mu.Unlock()
		return session, false
	}
	session := newSession(quiz, sessionDeps{
		publisher:    r.publisher,
		sink:         r.sink,
		onEnd:        r.Remove,
		advancePause: r.cfg.AdvancePause,
		now:          r.cfg.Clock,
	})
	r.sessions[quiz.ID] = session
	r.mu.Unlock()

	if r.cfg.Liveness != nil {
		r.cfg.Liveness.MarkLive(ctx, quiz.ID)
	}
	if err := r.sink.MarkRunning(ctx, quiz.ID, r.cfg.Clock()); err != nil {
		log.Printf("mark quiz %s running: %v", quiz.ID, err)
	}
	r.publisher.Broadcast(GroupRoom(quiz.GroupID), domain.EventAnnounce, domain.AnnouncePayload{
		QuizID:        quiz.ID,
		Title:         quiz.Title,
		GroupID:       quiz.GroupID,
		QuestionCount: len(quiz.Questions),
	})
	return session, true
}

// Lookup returns the live session for a quiz, if any.
func (r *Registry) Lookup(quizID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[quizID]
	return session, ok
}

// Remove evicts a session. Subsequent lookups return absent; late commands
// fail with not-found.
func (r *Registry) Remove(quizID string) {
	r.mu.Lock()
	delete(r.sessions, quizID)
	r.mu.Unlock()

	if r.cfg.Liveness != nil {
		r.cfg.Liveness.ClearLive(context.Background(), quizID)
	}
}
