package quiz

import "math/rand"

// Rand is the random source used for shuffling. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// DefaultRand draws from the process-wide math/rand source, which is safe for concurrent use.
var DefaultRand Rand = globalRand{}

// Shuffle returns a Fisher-Yates permutation of items. The input slice is not modified.
func Shuffle[T any](items []T, rng Rand) []T {
	out := make([]T, len(items))
	copy(out, items)
	if rng == nil {
		rng = DefaultRand
	}
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ReviewQuestionCap bounds the length of a review session.
const ReviewQuestionCap = 10

// PrepareQuestions shuffles the quiz questions for one attempt and applies the review cap.
func PrepareQuestions(q Quiz, rng Rand) []Question {
	shuffled := Shuffle(q.Questions, rng)
	if q.IsReview() && len(shuffled) > ReviewQuestionCap {
		shuffled = shuffled[:ReviewQuestionCap]
	}
	return shuffled
}
