package app

import (
	"context"
	"log"

	"campus-quiz-service/internal/domain"
)

// QuizRepository loads quiz definitions (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
}

// MembershipOracle answers whether a user belongs to a group. Elevated roles
// never reach it.
type MembershipOracle interface {
	IsMember(ctx context.Context, userID, groupID string) (bool, error)
}

// Engine is the command boundary of the live quiz subsystem. It validates
// preconditions and authorization, then drives the per-quiz session state
// machines held by the registry.
type Engine struct {
	registry *Registry
	quizzes  QuizRepository
	members  MembershipOracle
}

func NewEngine(registry *Registry, quizzes QuizRepository, members MembershipOracle) *Engine {
	return &Engine{registry: registry, quizzes: quizzes, members: members}
}

// Registry exposes the session registry for transports that need lookups.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Start handles the administrative start signal. Retried starts return the
// same announcement without creating a second session.
func (e *Engine) Start(ctx context.Context, quizID, requesterID, role string) (domain.AnnouncePayload, error) {
	quiz, err := e.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.AnnouncePayload{}, err
	}
	if quiz.Status == domain.StatusEnded {
		return domain.AnnouncePayload{}, domain.ErrQuizEnded
	}
	if requesterID != quiz.CreatorID && !domain.Elevated(role) {
		return domain.AnnouncePayload{}, domain.ErrNotAuthorized
	}
	e.registry.CreateOrGet(ctx, quiz)
	return domain.AnnouncePayload{
		QuizID:        quiz.ID,
		Title:         quiz.Title,
		GroupID:       quiz.GroupID,
		QuestionCount: len(quiz.Questions),
	}, nil
}

// Join admits a user into a quiz lobby after the membership check. A quiz
// whose stored status is running but whose session is gone (process restart)
// is acknowledged with zero participants rather than failed.
func (e *Engine) Join(ctx context.Context, quizID, userID, role string) (domain.JoinAck, error) {
	session, live := e.registry.Lookup(quizID)

	var quiz domain.QuizDefinition
	if live {
		quiz = session.Definition()
	} else {
		var err error
		quiz, err = e.quizzes.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.JoinAck{}, err
		}
		if quiz.Status == domain.StatusEnded {
			return domain.JoinAck{}, domain.ErrQuizEnded
		}
	}

	if !domain.Elevated(role) {
		member, err := e.members.IsMember(ctx, userID, quiz.GroupID)
		if err != nil {
			return domain.JoinAck{}, err
		}
		if !member {
			return domain.JoinAck{}, domain.ErrNotGroupMember
		}
	}

	if !live {
		if quiz.Status == domain.StatusRunning {
			// Session lost to a restart while the DB still says running.
			log.Printf("quiz %s marked running but has no live session; degraded join for %s", quizID, userID)
			return domain.JoinAck{QuizID: quizID, ParticipantCount: 0}, nil
		}
		return domain.JoinAck{}, domain.ErrSessionNotFound
	}
	return session.join(userID)
}

// Lock closes the lobby and starts the question loop. Only the quiz creator
// or an elevated role may lock.
func (e *Engine) Lock(ctx context.Context, quizID, requesterID, role string) error {
	session, ok := e.registry.Lookup(quizID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	quiz := session.Definition()
	if requesterID != quiz.CreatorID && !domain.Elevated(role) {
		return domain.ErrNotAuthorized
	}
	return session.lock()
}

// Answer records a submission against the current question.
func (e *Engine) Answer(ctx context.Context, quizID, userID string, questionIndex, selectedOption int) (domain.AnswerAck, error) {
	session, ok := e.registry.Lookup(quizID)
	if !ok {
		return domain.AnswerAck{}, domain.ErrSessionNotFound
	}
	return session.answer(userID, questionIndex, selectedOption)
}
