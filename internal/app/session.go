package app

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"campus-quiz-service/internal/domain"
)

// Publisher is the injected pub/sub capability. Broadcast must not block the
// caller; slow subscribers are the transport's problem.
type Publisher interface {
	Broadcast(room string, event string, payload any)
}

// ResultSink is the durable store for quiz lifecycle writes.
type ResultSink interface {
	MarkRunning(ctx context.Context, quizID string, startedAt time.Time) error
	SaveResult(ctx context.Context, result domain.QuizResult) error
}

// QuizRoom names the broadcast room for one live quiz.
func QuizRoom(quizID string) string { return "quiz:" + quizID }

// GroupRoom names the broadcast room for a group's wider audience.
func GroupRoom(groupID string) string { return "group:" + groupID }

// sessionDeps bundles everything a session needs beyond its definition.
type sessionDeps struct {
	publisher    Publisher
	sink         ResultSink
	onEnd        func(quizID string)
	advancePause time.Duration
	now          func() time.Time
}

// Session is the in-memory state machine for one running quiz. All state is
// guarded by mu; handlers mutate under the lock and publish after releasing
// it, so no two mutations for the same session interleave.
type Session struct {
	quiz domain.QuizDefinition
	deps sessionDeps

	mu                sync.Mutex
	participants      map[string]*domain.ParticipantState
	current           int // -1 before the first question
	questionStartedAt time.Time
	locked            bool
	started           bool
	questionClosed    bool
	ended             bool
	stats             map[int]domain.QuestionStats
	timer             *time.Timer // deadline or advance pause, one outstanding
}

func newSession(quiz domain.QuizDefinition, deps sessionDeps) *Session {
	if deps.now == nil {
		deps.now = time.Now
	}
	return &Session{
		quiz:         quiz,
		deps:         deps,
		participants: make(map[string]*domain.ParticipantState),
		current:      -1,
		stats:        make(map[int]domain.QuestionStats),
	}
}

// Definition returns the quiz definition the session was created from.
func (s *Session) Definition() domain.QuizDefinition {
	return s.quiz
}

// ParticipantCount reports the current lobby size.
func (s *Session) ParticipantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants)
}

// join admits a user into the lobby. Re-joining is a no-op for state but is
// still acknowledged; first-time admissions are announced to the quiz room.
func (s *Session) join(userID string) (domain.JoinAck, error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return domain.JoinAck{}, domain.ErrQuizEnded
	}
	if s.locked {
		s.mu.Unlock()
		return domain.JoinAck{}, domain.ErrLobbyClosed
	}
	admitted := false
	if _, ok := s.participants[userID]; !ok {
		s.participants[userID] = &domain.ParticipantState{
			UserID:  userID,
			Answers: make(map[int]domain.AnswerRecord),
		}
		admitted = true
	}
	count := len(s.participants)
	s.mu.Unlock()

	if admitted {
		s.deps.publisher.Broadcast(QuizRoom(s.quiz.ID), domain.EventLobbyUpdate, domain.LobbyUpdatePayload{
			QuizID:           s.quiz.ID,
			UserID:           userID,
			ParticipantCount: count,
		})
	}
	return domain.JoinAck{QuizID: s.quiz.ID, ParticipantCount: count}, nil
}

// lock closes the lobby and starts the question loop. The transition is
// one-way; a second lock is rejected rather than restarting the sequence.
func (s *Session) lock() error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return domain.ErrQuizEnded
	}
	if s.locked {
		s.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	s.locked = true
	roster := make([]string, 0, len(s.participants))
	for userID := range s.participants {
		roster = append(roster, userID)
	}
	sort.Strings(roster)
	s.mu.Unlock()

	s.deps.publisher.Broadcast(QuizRoom(s.quiz.ID), domain.EventLocked, domain.LockedPayload{
		QuizID:           s.quiz.ID,
		ParticipantCount: len(roster),
		Participants:     roster,
	})
	s.emitQuestion(0)
	return nil
}

// emitQuestion broadcasts question index and arms its deadline timer, or
// finalizes the session once the index runs past the last question.
func (s *Session) emitQuestion(index int) {
	if index >= len(s.quiz.Questions) {
		s.finalize()
		return
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.current = index
	s.questionStartedAt = s.deps.now()
	s.questionClosed = false
	s.started = true
	question := s.quiz.Questions[index]
	s.timer = time.AfterFunc(time.Duration(question.TimeLimitSeconds)*time.Second, func() {
		s.closeQuestion(index)
	})
	s.mu.Unlock()

	s.deps.publisher.Broadcast(QuizRoom(s.quiz.ID), domain.EventQuestion, domain.QuestionPayload{
		QuizID:           s.quiz.ID,
		QuestionIndex:    index,
		TotalQuestions:   len(s.quiz.Questions),
		Text:             question.Text,
		Options:          question.Options,
		TimeLimitSeconds: question.TimeLimitSeconds,
	})
}

// answer records a submission for the current question. The first accepted
// answer per (user, question) is final; correct answers score one point and
// accumulate response time for the tie-breaker.
func (s *Session) answer(userID string, questionIndex, selectedOption int) (domain.AnswerAck, error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return domain.AnswerAck{}, domain.ErrQuizEnded
	}
	if !s.started {
		s.mu.Unlock()
		return domain.AnswerAck{}, domain.ErrNotStarted
	}
	if questionIndex != s.current {
		s.mu.Unlock()
		return domain.AnswerAck{}, domain.ErrQuestionNotActive
	}
	participant, ok := s.participants[userID]
	if !ok {
		s.mu.Unlock()
		return domain.AnswerAck{}, domain.ErrNotJoined
	}
	if s.questionClosed {
		s.mu.Unlock()
		return domain.AnswerAck{}, domain.ErrQuestionClosed
	}
	question := s.quiz.Questions[questionIndex]
	if selectedOption < 0 || selectedOption >= len(question.Options) {
		s.mu.Unlock()
		return domain.AnswerAck{}, domain.ErrOptionOutOfRange
	}
	if _, dup := participant.Answers[questionIndex]; dup {
		s.mu.Unlock()
		return domain.AnswerAck{}, domain.ErrAlreadyAnswered
	}

	elapsed := s.deps.now().Sub(s.questionStartedAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	correct := selectedOption == question.CorrectOption
	participant.Answers[questionIndex] = domain.AnswerRecord{
		SelectedOption: selectedOption,
		Correct:        correct,
		ResponseTimeMs: elapsed,
	}
	if correct {
		participant.Score++
		participant.TotalResponseTimeMs += elapsed
	}
	score := participant.Score
	totalTime := participant.TotalResponseTimeMs

	allAnswered := true
	for _, p := range s.participants {
		if _, ok := p.Answers[questionIndex]; !ok {
			allAnswered = false
			break
		}
	}
	s.mu.Unlock()

	s.deps.publisher.Broadcast(QuizRoom(s.quiz.ID), domain.EventScoreUpdate, domain.ScoreUpdatePayload{
		QuizID:              s.quiz.ID,
		UserID:              userID,
		Score:               score,
		TotalResponseTimeMs: totalTime,
	})
	if allAnswered {
		// Everyone answered: no reason to wait out the deadline.
		s.closeQuestion(questionIndex)
	}
	return domain.AnswerAck{QuizID: s.quiz.ID, QuestionIndex: questionIndex}, nil
}

// closeQuestion converges the timer-expiry and all-answered paths. It runs at
// most once per question: the closed flag is checked and set under the lock,
// so a timer firing next to an early close produces a single result.
func (s *Session) closeQuestion(index int) {
	s.mu.Lock()
	if s.ended || s.questionClosed || s.current != index {
		s.mu.Unlock()
		return
	}
	s.questionClosed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	question := s.quiz.Questions[index]
	stats := domain.QuestionStats{OptionCounts: make([]int, len(question.Options))}
	for _, participant := range s.participants {
		record, ok := participant.Answers[index]
		if !ok {
			continue
		}
		stats.OptionCounts[record.SelectedOption]++
		if record.Correct {
			stats.CorrectCount++
		}
	}
	s.stats[index] = stats
	s.mu.Unlock()

	s.deps.publisher.Broadcast(QuizRoom(s.quiz.ID), domain.EventQuestionResult, domain.QuestionResultPayload{
		QuizID:        s.quiz.ID,
		QuestionIndex: index,
		CorrectOption: question.CorrectOption,
		OptionCounts:  stats.OptionCounts,
		CorrectCount:  stats.CorrectCount,
	})

	// Short pause so clients can render the result before the next question.
	s.mu.Lock()
	if !s.ended {
		next := index + 1
		s.timer = time.AfterFunc(s.deps.advancePause, func() {
			s.emitQuestion(next)
		})
	}
	s.mu.Unlock()
}

// finalize builds the leaderboard, persists the snapshot, broadcasts the
// result, and evicts the session. The broadcast happens even when the durable
// write fails: live viewers get the result either way.
func (s *Session) finalize() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	leaderboard := s.leaderboardLocked()
	result := domain.QuizResult{
		QuizID:       s.quiz.ID,
		EndedAt:      s.deps.now(),
		Stats:        s.stats,
		Participants: s.participants,
		Leaderboard:  leaderboard,
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.deps.sink.SaveResult(ctx, result); err != nil {
		log.Printf("persist result for quiz %s: %v", s.quiz.ID, err)
	}

	s.deps.publisher.Broadcast(QuizRoom(s.quiz.ID), domain.EventEnded, domain.EndedPayload{
		QuizID:      s.quiz.ID,
		Leaderboard: leaderboard,
	})
	if s.deps.onEnd != nil {
		s.deps.onEnd(s.quiz.ID)
	}
}

// leaderboardLocked ranks participants by score descending, then by total
// response time over correct answers ascending. Ranks are dense: entries
// tied on both keys share a rank.
func (s *Session) leaderboardLocked() []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(s.participants))
	for _, participant := range s.participants {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:              participant.UserID,
			Score:               participant.Score,
			TotalResponseTimeMs: participant.TotalResponseTimeMs,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].TotalResponseTimeMs != entries[j].TotalResponseTimeMs {
			return entries[i].TotalResponseTimeMs < entries[j].TotalResponseTimeMs
		}
		return entries[i].UserID < entries[j].UserID
	})
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Score != entries[i-1].Score ||
			entries[i].TotalResponseTimeMs != entries[i-1].TotalResponseTimeMs {
			rank++
		}
		entries[i].Rank = rank
	}
	return entries
}
