package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz definition could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizEnded is returned for any command against an ended quiz.
	ErrQuizEnded = errors.New("quiz already ended")
	// ErrNotGroupMember rejects joins from outside the quiz's owning group.
	ErrNotGroupMember = errors.New("not a member of the quiz group")
	// ErrSessionNotFound is returned when no live session exists for the quiz.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrLobbyClosed rejects joins after the session has been locked.
	ErrLobbyClosed = errors.New("lobby closed")
	// ErrAlreadyRunning rejects a second lock on the same session.
	ErrAlreadyRunning = errors.New("quiz already running")
	// ErrNotAuthorized rejects lock/start from non-creator, non-elevated users.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNotStarted rejects answers before the first question is emitted.
	ErrNotStarted = errors.New("quiz has not started")
	// ErrQuestionNotActive rejects answers for a stale or future question index.
	ErrQuestionNotActive = errors.New("question not active")
	// ErrQuestionClosed rejects answers after the current question closed.
	ErrQuestionClosed = errors.New("question already closed")
	// ErrNotJoined is returned when a user answers without having joined.
	ErrNotJoined = errors.New("participant not in quiz")
	// ErrOptionOutOfRange rejects an option index outside the question's options.
	ErrOptionOutOfRange = errors.New("option out of range")
	// ErrAlreadyAnswered enforces first-write-wins per (participant, question).
	ErrAlreadyAnswered = errors.New("answer already recorded")
)
