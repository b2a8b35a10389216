package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"campus-quiz-service/internal/domain"
)

type fakeLiveness struct {
	mu      sync.Mutex
	live    []string
	cleared []string
}

func (f *fakeLiveness) MarkLive(_ context.Context, quizID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live = append(f.live, quizID)
}

func (f *fakeLiveness) ClearLive(_ context.Context, quizID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, quizID)
}

func TestCreateOrGetIsIdempotent(t *testing.T) {
	pub := newFakePublisher()
	sink := &fakeSink{}
	registry := NewRegistry(pub, sink, RegistryConfig{AdvancePause: time.Hour})

	first, created := registry.CreateOrGet(context.Background(), twoQuestionQuiz())
	if !created {
		t.Fatal("expected creation on first call")
	}
	second, created := registry.CreateOrGet(context.Background(), twoQuestionQuiz())
	if created {
		t.Fatal("duplicate start must not create a second session")
	}
	if first != second {
		t.Fatal("expected the same session instance")
	}
	if got := pub.count(domain.EventAnnounce); got != 1 {
		t.Fatalf("expected one announcement, got %d", got)
	}
	if len(sink.running) != 1 {
		t.Fatalf("expected one MarkRunning call, got %d", len(sink.running))
	}

	announce := pub.waitFor(t, domain.EventAnnounce)
	if announce.room != GroupRoom("group-1") {
		t.Fatalf("announcement must target the group room, got %s", announce.room)
	}
	payload := announce.payload.(domain.AnnouncePayload)
	if payload.QuestionCount != 2 || payload.Title != "Campus trivia" {
		t.Fatalf("unexpected announcement %+v", payload)
	}
}

func TestRemoveEvicts(t *testing.T) {
	registry := NewRegistry(newFakePublisher(), &fakeSink{}, RegistryConfig{AdvancePause: time.Hour})
	registry.CreateOrGet(context.Background(), twoQuestionQuiz())

	registry.Remove("quiz-1")
	if _, ok := registry.Lookup("quiz-1"); ok {
		t.Fatal("expected session evicted")
	}
}

func TestLivenessMarkers(t *testing.T) {
	liveness := &fakeLiveness{}
	registry := NewRegistry(newFakePublisher(), &fakeSink{}, RegistryConfig{
		AdvancePause: time.Hour,
		Liveness:     liveness,
	})
	registry.CreateOrGet(context.Background(), twoQuestionQuiz())
	registry.Remove("quiz-1")

	liveness.mu.Lock()
	defer liveness.mu.Unlock()
	if len(liveness.live) != 1 || liveness.live[0] != "quiz-1" {
		t.Fatalf("expected quiz-1 marked live, got %v", liveness.live)
	}
	if len(liveness.cleared) != 1 || liveness.cleared[0] != "quiz-1" {
		t.Fatalf("expected quiz-1 cleared, got %v", liveness.cleared)
	}
}
