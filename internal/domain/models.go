package domain

import "time"

// Quiz lifecycle status as persisted in the definition store.
const (
	StatusDraft   = "draft"
	StatusRunning = "running"
	StatusEnded   = "ended"
)

// Roles carried by authenticated connections.
const (
	RoleStudent   = "student"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Elevated reports whether a role bypasses group-membership checks and may
// lock quizzes it did not create.
func Elevated(role string) bool {
	return role == RoleModerator || role == RoleAdmin
}

// Question models a single timed MCQ. CorrectOption indexes into Options.
type Question struct {
	Text             string   `json:"text"`
	Options          []string `json:"options"` // 2..6 entries
	CorrectOption    int      `json:"correctOption"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"` // 5..600
}

// QuizDefinition is the immutable quiz record owned by the definition store.
// The engine reads it once at session creation and never mutates it while live.
type QuizDefinition struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	GroupID   string     `json:"groupId"`
	CreatorID string     `json:"creatorId"`
	Status    string     `json:"status"`
	Questions []Question `json:"questions"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// AnswerRecord is one participant's answer to one question. SelectedOption is
// -1 in persisted form when the participant never answered; live submissions
// always carry a real option index.
type AnswerRecord struct {
	SelectedOption int   `json:"selectedOption"`
	Correct        bool  `json:"correct"`
	ResponseTimeMs int64 `json:"responseTimeMs"`
}

// ParticipantState accumulates one participant's progress through a session.
// TotalResponseTimeMs sums response times of correct answers only; it is the
// leaderboard tie-breaker, so answering correctly faster is strictly better.
type ParticipantState struct {
	UserID              string               `json:"userId"`
	Score               int                  `json:"score"`
	TotalResponseTimeMs int64                `json:"totalResponseTimeMs"`
	Answers             map[int]AnswerRecord `json:"answers"`
}

// QuestionStats aggregates the answers submitted before a question closed.
// OptionCounts is parallel to the question's options; participants who never
// answered appear in no bucket.
type QuestionStats struct {
	OptionCounts []int `json:"optionCounts"`
	CorrectCount int   `json:"correctCount"`
}

// LeaderboardEntry is one row of the final ranking, dense 1-based ranks.
type LeaderboardEntry struct {
	Rank                int    `json:"rank"`
	UserID              string `json:"userId"`
	Score               int    `json:"score"`
	TotalResponseTimeMs int64  `json:"totalResponseTimeMs"`
}

// QuizResult is the final snapshot handed to the result sink.
type QuizResult struct {
	QuizID       string                       `json:"quizId"`
	EndedAt      time.Time                    `json:"endedAt"`
	Stats        map[int]QuestionStats        `json:"stats"`
	Participants map[string]*ParticipantState `json:"participants"`
	Leaderboard  []LeaderboardEntry           `json:"leaderboard"`
}
