package domain

// Event names used on the wire and as hub envelope types.
const (
	EventAnnounce       = "quiz:announce"
	EventLobbyUpdate    = "quiz:lobby"
	EventLocked         = "quiz:locked"
	EventQuestion       = "quiz:question"
	EventScoreUpdate    = "quiz:score"
	EventQuestionResult = "quiz:questionResult"
	EventEnded          = "quiz:ended"
)

// AnnouncePayload is broadcast to the group room when a quiz starts running.
type AnnouncePayload struct {
	QuizID        string `json:"quizId"`
	Title         string `json:"title"`
	GroupID       string `json:"groupId"`
	QuestionCount int    `json:"questionCount"`
}

// LobbyUpdatePayload is broadcast to the quiz room on first-time admission.
type LobbyUpdatePayload struct {
	QuizID           string `json:"quizId"`
	UserID           string `json:"userId"`
	ParticipantCount int    `json:"participantCount"`
}

// JoinAck is unicast to the joining connection.
type JoinAck struct {
	QuizID           string `json:"quizId"`
	ParticipantCount int    `json:"participantCount"`
}

// LockedPayload carries the final roster when the lobby closes.
type LockedPayload struct {
	QuizID           string   `json:"quizId"`
	ParticipantCount int      `json:"participantCount"`
	Participants     []string `json:"participants"`
}

// QuestionPayload is the live question broadcast. It never carries the
// correct option index.
type QuestionPayload struct {
	QuizID           string   `json:"quizId"`
	QuestionIndex    int      `json:"questionIndex"`
	TotalQuestions   int      `json:"totalQuestions"`
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

// AnswerAck is unicast to the submitter after an accepted answer.
type AnswerAck struct {
	QuizID        string `json:"quizId"`
	QuestionIndex int    `json:"questionIndex"`
}

// ScoreUpdatePayload is the only partial result exposed mid-question.
type ScoreUpdatePayload struct {
	QuizID              string `json:"quizId"`
	UserID              string `json:"userId"`
	Score               int    `json:"score"`
	TotalResponseTimeMs int64  `json:"totalResponseTimeMs"`
}

// QuestionResultPayload reveals the answer key once the question has closed.
type QuestionResultPayload struct {
	QuizID        string `json:"quizId"`
	QuestionIndex int    `json:"questionIndex"`
	CorrectOption int    `json:"correctOption"`
	OptionCounts  []int  `json:"optionCounts"`
	CorrectCount  int    `json:"correctCount"`
}

// EndedPayload carries the final leaderboard.
type EndedPayload struct {
	QuizID      string             `json:"quizId"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
