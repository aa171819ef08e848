// Package feedback collects free-text comments on quizzes.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/logging"
)

var (
	ErrEmptyFeedback = errors.New("feedback must not be empty")
	ErrQuizNotFound  = errors.New("quiz not found")
)

const maxFeedbackLen = 4000

type store interface {
	Create(ctx context.Context, userID uuid.UUID, quizID, text string) (uuid.UUID, error)
	List(ctx context.Context) ([]repository.Feedback, error)
}

// Service stores and lists feedback.
type Service struct {
	store  store
	logger zerolog.Logger
}

// NewService creates a feedback service.
func NewService(s store, logger zerolog.Logger) *Service {
	return &Service{store: s, logger: logging.Component(logger, "feedback")}
}

// Submit records text against quizID for userID.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, quizID, text string) (uuid.UUID, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return uuid.Nil, ErrEmptyFeedback
	}
	if len(text) > maxFeedbackLen {
		text = text[:maxFeedbackLen]
	}

	id, err := s.store.Create(ctx, userID, quizID, text)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, ErrQuizNotFound
		}
		return uuid.Nil, fmt.Errorf("submit feedback: %w", err)
	}
	s.logger.Info().Str("user_id", userID.String()).Str("quiz_id", quizID).Msg("feedback received")
	return id, nil
}

// List returns every entry, newest first.
func (s *Service) List(ctx context.Context) ([]repository.Feedback, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	if items == nil {
		items = []repository.Feedback{}
	}
	return items, nil
}
