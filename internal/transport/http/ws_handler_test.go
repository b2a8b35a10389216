package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/domain"
	"campus-quiz-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := NewHub()
	sink := memory.NewResultSink()
	registry := app.NewRegistry(hub, sink, app.RegistryConfig{AdvancePause: 30 * time.Millisecond})
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	members := memory.NewStaticMembership(map[string][]string{"group-1": {"alice"}})
	engine := app.NewEngine(registry, quizzes, members)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(engine, hub).ServeWS)
	mux.HandleFunc("POST /quizzes/{id}/start", NewStartHandler(engine).Start)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestQuizFlowOverWebSocket(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/quizzes/quiz-1/start?userId=teach", "application/json", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status %d", resp.StatusCode)
	}

	alice := dial(t, server, "userId=alice&groupId=group-1")
	defer alice.Close()
	teach := dial(t, server, "userId=teach")
	defer teach.Close()

	if err := alice.WriteJSON(command("join", map[string]any{"quizId": "quiz-1"})); err != nil {
		t.Fatalf("join: %v", err)
	}
	msgType, payload := readNext(alice, t, "joined")
	if msgType != "joined" || payload["quizId"] != "quiz-1" {
		t.Fatalf("unexpected join ack %s %v", msgType, payload)
	}

	// Students cannot lock.
	if err := alice.WriteJSON(command("lock", map[string]any{"quizId": "quiz-1"})); err != nil {
		t.Fatalf("lock: %v", err)
	}
	readNext(alice, t, "error")

	// The creator locks; alice sees the roster and the first question.
	if err := teach.WriteJSON(command("lock", map[string]any{"quizId": "quiz-1"})); err != nil {
		t.Fatalf("lock: %v", err)
	}
	readNext(alice, t, domain.EventLocked)
	_, question := readNext(alice, t, domain.EventQuestion)
	if _, leaked := question["correctOption"]; leaked {
		t.Fatalf("live question must not carry the answer key: %v", question)
	}

	if err := alice.WriteJSON(command("answer", map[string]any{
		"quizId":         "quiz-1",
		"questionIndex":  0,
		"selectedOption": 1,
	})); err != nil {
		t.Fatalf("answer: %v", err)
	}

	// Alice was the only participant, so her answer closes the question and,
	// after the pause, ends the quiz.
	seen := map[string]bool{}
	for !seen[domain.EventEnded] {
		msgType, _ := readNext(alice, t, "")
		seen[msgType] = true
	}
	for _, want := range []string{"answered", domain.EventScoreUpdate, domain.EventQuestionResult, domain.EventEnded} {
		if !seen[want] {
			t.Fatalf("missing %s, saw %v", want, seen)
		}
	}
}

func TestJoinRejectedForOutsiders(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/quizzes/quiz-1/start?userId=teach", "application/json", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	resp.Body.Close()

	bob := dial(t, server, "userId=bob")
	defer bob.Close()

	if err := bob.WriteJSON(command("join", map[string]any{"quizId": "quiz-1"})); err != nil {
		t.Fatalf("join: %v", err)
	}
	_, payload := readNext(bob, t, "error")
	if payload["message"] != domain.ErrNotGroupMember.Error() {
		t.Fatalf("unexpected rejection %v", payload)
	}
}

func TestStartRequiresAuthorization(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/quizzes/quiz-1/start?userId=alice", "application/json", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/quizzes/quiz-1/start?userId=alice&role=admin", "application/json", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for elevated role, got %d", resp.StatusCode)
	}
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func command(msgType string, payload map[string]any) map[string]any {
	return map[string]any{"type": msgType, "payload": payload}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func sampleQuizzes() map[string]domain.QuizDefinition {
	return map[string]domain.QuizDefinition{
		"quiz-1": {
			ID:        "quiz-1",
			Title:     "Orientation trivia",
			GroupID:   "group-1",
			CreatorID: "teach",
			Status:    domain.StatusDraft,
			Questions: []domain.Question{
				{
					Text:             "What is 2 + 2?",
					Options:          []string{"3", "4", "5"},
					CorrectOption:    1,
					TimeLimitSeconds: 10,
				},
			},
		},
	}
}
