package quiz

import (
	"errors"
	"fmt"
)

// Phase is the tagged state of a play session.
type Phase string

const (
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseAnswered       Phase = "answered"
	PhaseComplete       Phase = "complete"
)

// Outcome is the verdict on a submitted answer.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

var (
	ErrEmptyQuiz        = errors.New("quiz has no questions")
	ErrNoActiveQuestion = errors.New("no active question")
	ErrAlreadyAnswered  = errors.New("current question already answered")
	ErrNotAnswered      = errors.New("current question not answered yet")
	ErrSessionComplete  = errors.New("session already complete")
)

// Completion is emitted exactly once, when the last question has been answered and advanced past.
type Completion struct {
	QuizID         string   `json:"quiz_id"`
	QuizTitle      string   `json:"quiz_title"`
	Score          int      `json:"score"`
	TotalQuestions int      `json:"total_questions"`
	IncorrectIDs   []string `json:"incorrect_ids"`
	Review         bool     `json:"review"`
}

// Session drives one attempt at a quiz. All state changes go through step.
type Session struct {
	quizID    string
	quizTitle string
	review    bool
	questions []Question

	phase        Phase
	current      int
	answered     []string
	answeredSet  map[string]bool
	difficulty   Difficulty
	streakRight  int
	streakWrong  int
	score        int
	incorrectIDs []string
	lastOutcome  Outcome
	lastSelected string
}

// NewSession shuffles the quiz questions and selects the first one at Easy.
func NewSession(q Quiz, rng Rand) (*Session, error) {
	questions := PrepareQuestions(q, rng)
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}

	s := &Session{
		quizID:      q.ID,
		quizTitle:   q.Title,
		review:      q.IsReview(),
		questions:   questions,
		answeredSet: make(map[string]bool, len(questions)),
		difficulty:  DifficultyEasy,
		phase:       PhaseAwaitingAnswer,
	}
	s.current = selectNext(s.questions, s.answeredSet, s.difficulty)
	return s, nil
}

type eventKind int

const (
	eventSubmit eventKind = iota
	eventAdvance
)

type event struct {
	kind     eventKind
	selected string
}

type stepResult struct {
	outcome    Outcome
	completion *Completion
}

// step is the single transition function of the session machine.
func (s *Session) step(ev event) (stepResult, error) {
	switch s.phase {
	case PhaseComplete:
		if ev.kind == eventSubmit {
			return stepResult{}, ErrNoActiveQuestion
		}
		return stepResult{}, ErrSessionComplete

	case PhaseAwaitingAnswer:
		if ev.kind != eventSubmit {
			return stepResult{}, ErrNotAnswered
		}
		if s.current < 0 || s.current >= len(s.questions) {
			return stepResult{}, ErrNoActiveQuestion
		}
		q := s.questions[s.current]
		s.lastSelected = ev.selected
		if ev.selected == q.CorrectAnswer {
			s.score++
			s.streakRight++
			s.streakWrong = 0
			s.lastOutcome = OutcomeCorrect
		} else {
			if !s.review && !contains(s.incorrectIDs, q.ID) {
				s.incorrectIDs = append(s.incorrectIDs, q.ID)
			}
			s.streakWrong++
			s.streakRight = 0
			s.lastOutcome = OutcomeIncorrect
		}
		s.phase = PhaseAnswered
		return stepResult{outcome: s.lastOutcome}, nil

	case PhaseAnswered:
		if ev.kind != eventAdvance {
			return stepResult{}, ErrAlreadyAnswered
		}
		s.difficulty, s.streakRight, s.streakWrong = adjustDifficulty(s.difficulty, s.streakRight, s.streakWrong)

		q := s.questions[s.current]
		s.answered = append(s.answered, q.ID)
		s.answeredSet[q.ID] = true
		s.lastOutcome = ""
		s.lastSelected = ""

		s.current = selectNext(s.questions, s.answeredSet, s.difficulty)
		if s.current < 0 {
			s.phase = PhaseComplete
			return stepResult{completion: s.completion()}, nil
		}
		s.phase = PhaseAwaitingAnswer
		return stepResult{}, nil
	}
	return stepResult{}, fmt.Errorf("unknown session phase %q", s.phase)
}

// SubmitAnswer scores the selected option against the active question.
func (s *Session) SubmitAnswer(selected string) (Outcome, error) {
	res, err := s.step(event{kind: eventSubmit, selected: selected})
	if err != nil {
		return "", err
	}
	return res.outcome, nil
}

// Advance moves past an answered question. The returned Completion is non-nil only on the final advance.
func (s *Session) Advance() (*Completion, error) {
	res, err := s.step(event{kind: eventAdvance})
	if err != nil {
		return nil, err
	}
	return res.completion, nil
}

func (s *Session) completion() *Completion {
	ids := make([]string, len(s.incorrectIDs))
	copy(ids, s.incorrectIDs)
	return &Completion{
		QuizID:         s.quizID,
		QuizTitle:      s.quizTitle,
		Score:          s.score,
		TotalQuestions: len(s.questions),
		IncorrectIDs:   ids,
		Review:         s.review,
	}
}

// CurrentQuestion returns the active question. ok is false once the session is complete.
func (s *Session) CurrentQuestion() (Question, bool) {
	if s.phase == PhaseComplete || s.current < 0 || s.current >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[s.current], true
}

func (s *Session) QuizID() string              { return s.quizID }
func (s *Session) QuizTitle() string           { return s.quizTitle }
func (s *Session) IsReview() bool              { return s.review }
func (s *Session) Phase() Phase                { return s.phase }
func (s *Session) Difficulty() Difficulty      { return s.difficulty }
func (s *Session) Score() int                  { return s.score }
func (s *Session) Total() int                  { return len(s.questions) }
func (s *Session) AnsweredCount() int          { return len(s.answered) }
func (s *Session) LastOutcome() Outcome        { return s.lastOutcome }
func (s *Session) LastSelected() string        { return s.lastSelected }
func (s *Session) IncorrectIDs() []string      { return append([]string(nil), s.incorrectIDs...) }
func (s *Session) AnsweredIDs() []string       { return append([]string(nil), s.answered...) }
func (s *Session) Questions() []Question       { return append([]Question(nil), s.questions...) }
func (s *Session) Streaks() (right, wrong int) { return s.streakRight, s.streakWrong }

// Completion returns the final payload of a completed session.
func (s *Session) Completion() (*Completion, bool) {
	if s.phase != PhaseComplete {
		return nil, false
	}
	return s.completion(), true
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
