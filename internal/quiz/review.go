package quiz

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	// ReviewQuizPrefix marks synthetic quiz ids built from missed questions.
	ReviewQuizPrefix = "review-"
	ReviewQuizTitle  = "Review Missed Questions"
)

// ErrNoReviewQuestions is returned when none of the requested question ids resolve.
var ErrNoReviewQuestions = errors.New("no questions to review")

// IsReviewQuizID reports whether id belongs to a review session.
func IsReviewQuizID(id string) bool {
	return strings.HasPrefix(id, ReviewQuizPrefix)
}

// NewReviewQuiz wraps previously missed questions into a synthetic quiz.
// The review cap is applied when a session is started, after shuffling.
func NewReviewQuiz(questions []Question) (Quiz, error) {
	if len(questions) == 0 {
		return Quiz{}, ErrNoReviewQuestions
	}
	return Quiz{
		ID:        ReviewQuizPrefix + uuid.NewString(),
		Title:     ReviewQuizTitle,
		Questions: append([]Question(nil), questions...),
	}, nil
}
