package http

import (
	"encoding/json"
	"log"
	"net/http"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades connections and routes inbound commands to the engine.
// Identity arrives as query params; the surrounding system authenticates
// upstream.
type WSHandler struct {
	engine   *app.Engine
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *app.Engine, hub *Hub) *WSHandler {
	return &WSHandler{
		engine: engine,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	QuizID string `json:"quizId"`
}

type lockPayload struct {
	QuizID string `json:"quizId"`
}

type answerPayload struct {
	QuizID         string `json:"quizId"`
	QuestionIndex  int    `json:"questionIndex"`
	SelectedOption int    `json:"selectedOption"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS wires one connection into the quiz engine. Rejections go only to
// the originating connection; everything else reaches clients through room
// broadcasts.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	role := r.URL.Query().Get("role")
	if role == "" {
		role = domain.RoleStudent
	}
	groupID := r.URL.Query().Get("groupId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	client := h.hub.NewClient(conn)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		client.writePump()
	}()

	// Group rooms carry quiz announcements for the wider audience.
	if groupID != "" {
		h.hub.Subscribe(client, app.GroupRoom(groupID))
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "join":
			var payload joinPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuizID == "" {
				client.enqueue(Envelope{Type: "error", Payload: errorPayload{Message: "invalid join payload"}})
				continue
			}
			ack, err := h.engine.Join(r.Context(), payload.QuizID, userID, role)
			if err != nil {
				client.enqueue(Envelope{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			h.hub.Subscribe(client, app.QuizRoom(payload.QuizID))
			client.enqueue(Envelope{Type: "joined", Payload: ack})
		case "lock":
			var payload lockPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuizID == "" {
				client.enqueue(Envelope{Type: "error", Payload: errorPayload{Message: "invalid lock payload"}})
				continue
			}
			if err := h.engine.Lock(r.Context(), payload.QuizID, userID, role); err != nil {
				client.enqueue(Envelope{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuizID == "" {
				client.enqueue(Envelope{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			ack, err := h.engine.Answer(r.Context(), payload.QuizID, userID, payload.QuestionIndex, payload.SelectedOption)
			if err != nil {
				client.enqueue(Envelope{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			client.enqueue(Envelope{Type: "answered", Payload: ack})
		default:
			client.enqueue(Envelope{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	h.hub.Remove(client)
	close(client.send)
	<-writerDone
}
