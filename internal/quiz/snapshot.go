package quiz

import (
	"errors"
	"fmt"
)

// Snapshot is the serialisable form of a Session, used to keep sessions in Redis between requests.
type Snapshot struct {
	QuizID       string     `json:"quiz_id"`
	QuizTitle    string     `json:"quiz_title"`
	Review       bool       `json:"review"`
	Questions    []Question `json:"questions"`
	Phase        Phase      `json:"phase"`
	Current      int        `json:"current"`
	Answered     []string   `json:"answered"`
	Difficulty   Difficulty `json:"difficulty"`
	StreakRight  int        `json:"streak_right"`
	StreakWrong  int        `json:"streak_wrong"`
	Score        int        `json:"score"`
	IncorrectIDs []string   `json:"incorrect_ids"`
	LastOutcome  Outcome    `json:"last_outcome,omitempty"`
	LastSelected string     `json:"last_selected,omitempty"`
}

// Snapshot captures the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		QuizID:       s.quizID,
		QuizTitle:    s.quizTitle,
		Review:       s.review,
		Questions:    s.Questions(),
		Phase:        s.phase,
		Current:      s.current,
		Answered:     s.AnsweredIDs(),
		Difficulty:   s.difficulty,
		StreakRight:  s.streakRight,
		StreakWrong:  s.streakWrong,
		Score:        s.score,
		IncorrectIDs: s.IncorrectIDs(),
		LastOutcome:  s.lastOutcome,
		LastSelected: s.lastSelected,
	}
}

var errCorruptSnapshot = errors.New("corrupt session snapshot")

// Restore rebuilds a session from a snapshot, rejecting states the machine could never reach.
func Restore(snap Snapshot) (*Session, error) {
	if len(snap.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", errCorruptSnapshot)
	}
	if !snap.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: difficulty %q", errCorruptSnapshot, snap.Difficulty)
	}
	if snap.StreakRight > 0 && snap.StreakWrong > 0 {
		return nil, fmt.Errorf("%w: both streaks set", errCorruptSnapshot)
	}
	if snap.Score < 0 || snap.Score > len(snap.Answered)+1 {
		return nil, fmt.Errorf("%w: score %d", errCorruptSnapshot, snap.Score)
	}

	switch snap.Phase {
	case PhaseAwaitingAnswer, PhaseAnswered:
		if snap.Current < 0 || snap.Current >= len(snap.Questions) {
			return nil, fmt.Errorf("%w: current index %d", errCorruptSnapshot, snap.Current)
		}
	case PhaseComplete:
		if len(snap.Answered) != len(snap.Questions) {
			return nil, fmt.Errorf("%w: complete with %d of %d answered", errCorruptSnapshot, len(snap.Answered), len(snap.Questions))
		}
	default:
		return nil, fmt.Errorf("%w: phase %q", errCorruptSnapshot, snap.Phase)
	}

	answeredSet := make(map[string]bool, len(snap.Answered))
	for _, id := range snap.Answered {
		answeredSet[id] = true
	}
	if len(answeredSet) != len(snap.Answered) {
		return nil, fmt.Errorf("%w: duplicate answered ids", errCorruptSnapshot)
	}

	return &Session{
		quizID:       snap.QuizID,
		quizTitle:    snap.QuizTitle,
		review:       snap.Review,
		questions:    append([]Question(nil), snap.Questions...),
		phase:        snap.Phase,
		current:      snap.Current,
		answered:     append([]string(nil), snap.Answered...),
		answeredSet:  answeredSet,
		difficulty:   snap.Difficulty,
		streakRight:  snap.StreakRight,
		streakWrong:  snap.StreakWrong,
		score:        snap.Score,
		incorrectIDs: append([]string(nil), snap.IncorrectIDs...),
		lastOutcome:  snap.LastOutcome,
		lastSelected: snap.LastSelected,
	}, nil
}
