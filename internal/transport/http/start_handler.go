package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/domain"
)

// StartHandler exposes the administrative start action over REST. Starting an
// already-started quiz returns the same announcement again.
type StartHandler struct {
	engine *app.Engine
}

func NewStartHandler(engine *app.Engine) *StartHandler {
	return &StartHandler{engine: engine}
}

func (h *StartHandler) Start(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("id")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quiz id or userId", http.StatusBadRequest)
		return
	}
	role := r.URL.Query().Get("role")
	if role == "" {
		role = domain.RoleStudent
	}

	announce, err := h.engine.Start(r.Context(), quizID, userID, role)
	if err != nil {
		http.Error(w, err.Error(), startStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(announce)
}

func startStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrQuizEnded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
