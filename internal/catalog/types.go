package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cyberguardian/platform/internal/db/repository"
)

// DefaultPrerequisiteScore applies when a quiz names a prerequisite without a score.
const DefaultPrerequisiteScore = 100

var (
	ErrQuizNotFound = errors.New("quiz not found")
	ErrQuizLocked   = errors.New("quiz is locked behind its prerequisite")
)

// QuestionInput is one authored question.
type QuestionInput struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Difficulty    string   `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
}

// QuizInput is the payload for creating or replacing a quiz.
type QuizInput struct {
	Title              string          `json:"title" validate:"required"`
	Questions          []QuestionInput `json:"questions" validate:"min=1,dive"`
	PrerequisiteQuizID *string         `json:"prerequisite_quiz_id,omitempty" validate:"omitempty,uuid"`
	PrerequisiteScore  *int            `json:"prerequisite_score,omitempty" validate:"omitempty,min=0,max=100"`
}

// InvalidInputError reports request-shape problems, keyed by JSON field path.
type InvalidInputError struct {
	Fields map[string]string
}

func (e *InvalidInputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid quiz: " + strings.Join(parts, "; ")
}

// AnswerNotInOptionsError aborts an authoring transaction.
type AnswerNotInOptionsError struct {
	Index    int
	Question string
	Answer   string
}

func (e *AnswerNotInOptionsError) Error() string {
	return fmt.Sprintf("correct answer %q is not in the options for question %q", e.Answer, e.Question)
}

// Entry is a catalog row as seen by one user.
type Entry struct {
	repository.QuizSummary
	BestScore     *int `json:"best_score,omitempty"`
	RequiredScore *int `json:"required_score,omitempty"`
	Locked        bool `json:"locked"`
}
