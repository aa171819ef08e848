package quiz

import (
	"fmt"
	"strings"
)

// Difficulty is both a question attribute and the adaptive band of a session.
type Difficulty string

// Difficulty constants, ordered Easy < Medium < Hard.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var difficultyOrder = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Difficulties returns the bands in ascending order.
func Difficulties() []Difficulty {
	out := make([]Difficulty, len(difficultyOrder))
	copy(out, difficultyOrder)
	return out
}

// Valid reports whether d is one of the known bands.
func (d Difficulty) Valid() bool {
	return d.rank() >= 0
}

func (d Difficulty) rank() int {
	for i, v := range difficultyOrder {
		if v == d {
			return i
		}
	}
	return -1
}

// ParseDifficulty accepts any casing; an empty string maps to Easy.
func ParseDifficulty(raw string) (Difficulty, error) {
	if strings.TrimSpace(raw) == "" {
		return DifficultyEasy, nil
	}
	for _, d := range difficultyOrder {
		if strings.EqualFold(string(d), strings.TrimSpace(raw)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", raw)
}

// Question is a single multiple-choice item.
type Question struct {
	ID            string     `json:"id"`
	QuizID        string     `json:"quiz_id,omitempty"`
	Text          string     `json:"text"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer,omitempty"`
	Difficulty    Difficulty `json:"difficulty"`
}

// HasOption reports whether answer is one of the question's options (exact match).
func (q Question) HasOption(answer string) bool {
	for _, opt := range q.Options {
		if opt == answer {
			return true
		}
	}
	return false
}

// Quiz is a titled question set. Its questions are fixed for the duration of a play session.
type Quiz struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Questions          []Question `json:"questions"`
	PrerequisiteQuizID *string    `json:"prerequisite_quiz_id,omitempty"`
	PrerequisiteScore  *int       `json:"prerequisite_score,omitempty"`
}

// IsReview reports whether the quiz was synthesized for a review session.
func (q Quiz) IsReview() bool {
	return IsReviewQuizID(q.ID)
}
