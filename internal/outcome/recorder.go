// Package outcome persists finished quiz attempts and triggers badge evaluation.
package outcome

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/logging"
	"github.com/cyberguardian/platform/internal/metrics"
	"github.com/cyberguardian/platform/internal/quiz"
)

type resultStore interface {
	Insert(ctx context.Context, res repository.NewResult) (uuid.UUID, error)
}

type badgeEvaluator interface {
	Evaluate(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Summary is what the player sees after the last question.
type Summary struct {
	QuizID         string     `json:"quiz_id"`
	QuizTitle      string     `json:"quiz_title"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	IncorrectIDs   []string   `json:"incorrect_ids"`
	Review         bool       `json:"review"`
	ResultID       *uuid.UUID `json:"result_id,omitempty"`
	NewBadges      []string   `json:"new_badges,omitempty"`
}

// Recorder stores completions. Storage failures are logged and swallowed so the player
// always gets their summary.
type Recorder struct {
	results resultStore
	badges  badgeEvaluator
	now     func() time.Time
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewRecorder builds a recorder. badges may be nil to skip evaluation.
func NewRecorder(results resultStore, badges badgeEvaluator, m *metrics.Metrics, logger zerolog.Logger) *Recorder {
	return &Recorder{
		results: results,
		badges:  badges,
		now:     time.Now,
		metrics: m,
		logger:  logging.Component(logger, "outcome_recorder"),
	}
}

// Record persists c for userID (unless it is a review) and runs the badge evaluator afterwards.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, c quiz.Completion) Summary {
	summary := Summary{
		QuizID:         c.QuizID,
		QuizTitle:      c.QuizTitle,
		Score:          c.Score,
		TotalQuestions: c.TotalQuestions,
		IncorrectIDs:   c.IncorrectIDs,
		Review:         c.Review,
	}
	if summary.IncorrectIDs == nil {
		summary.IncorrectIDs = []string{}
	}
	r.metrics.SessionCompleted(c.Review)

	if c.Review || quiz.IsReviewQuizID(c.QuizID) {
		return summary
	}

	log := r.logger.With().Str("user_id", userID.String()).Str("quiz_id", c.QuizID).Logger()

	id, err := r.results.Insert(ctx, repository.NewResult{
		UserID:         userID,
		QuizID:         c.QuizID,
		Score:          c.Score,
		TotalQuestions: c.TotalQuestions,
		CompletedAt:    r.now().UTC(),
		MissedIDs:      c.IncorrectIDs,
	})
	if err != nil {
		r.metrics.PersistenceFailure("result")
		log.Error().Err(err).Int("score", c.Score).Int("total", c.TotalQuestions).Msg("save quiz result failed")
		return summary
	}
	summary.ResultID = &id

	if r.badges == nil {
		return summary
	}
	awarded, err := r.badges.Evaluate(ctx, userID)
	if err != nil {
		r.metrics.PersistenceFailure("badge")
		log.Error().Err(err).Msg("badge evaluation failed")
	}
	summary.NewBadges = awarded
	return summary
}
