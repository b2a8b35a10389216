package memory

import (
	"context"
	"testing"
	"time"

	"campus-quiz-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.QuizDefinition{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit cache, loader not incremented.
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestQuizRepositoryUnknownQuiz(t *testing.T) {
	repo := NewQuizRepository(NewStaticQuizLoader(nil), time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "missing"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestStaticMembership(t *testing.T) {
	oracle := NewStaticMembership(map[string][]string{"group-1": {"alice"}})

	if ok, _ := oracle.IsMember(context.Background(), "alice", "group-1"); !ok {
		t.Fatal("expected alice to be a member")
	}
	if ok, _ := oracle.IsMember(context.Background(), "bob", "group-1"); ok {
		t.Fatal("expected bob not to be a member")
	}

	oracle.Add("group-1", "bob")
	if ok, _ := oracle.IsMember(context.Background(), "bob", "group-1"); !ok {
		t.Fatal("expected bob after Add")
	}
}

func TestResultSinkLifecycle(t *testing.T) {
	sink := NewResultSink()
	ctx := context.Background()

	if err := sink.MarkRunning(ctx, "quiz-1", time.Now()); err != nil {
		t.Fatalf("mark running: %v", err)
	}
	if status, _ := sink.Status("quiz-1"); status != domain.StatusRunning {
		t.Fatalf("expected running, got %s", status)
	}

	if err := sink.SaveResult(ctx, domain.QuizResult{QuizID: "quiz-1"}); err != nil {
		t.Fatalf("save result: %v", err)
	}
	if status, _ := sink.Status("quiz-1"); status != domain.StatusEnded {
		t.Fatalf("expected ended, got %s", status)
	}
	if _, ok := sink.Result("quiz-1"); !ok {
		t.Fatal("expected persisted result")
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.QuizDefinition {
	return domain.QuizDefinition{
		ID:        "quiz-1",
		Title:     "Sample",
		GroupID:   "group-1",
		CreatorID: "creator",
		Status:    domain.StatusDraft,
		Questions: []domain.Question{
			{Text: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectOption: 1, TimeLimitSeconds: 10},
		},
	}
}
