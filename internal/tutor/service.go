// Package tutor answers cybersecurity questions and writes post-quiz feedback through
// an external completion service.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/logging"
	"github.com/cyberguardian/platform/internal/metrics"
)

var (
	ErrRateLimited   = errors.New("too many tutor requests, slow down")
	ErrEmptyQuestion = errors.New("question must not be empty")
)

const (
	flowAsk      = "tutor_ask"
	flowFeedback = "quiz_feedback"

	roleUser      = "user"
	roleAssistant = "assistant"
)

type completer interface {
	Complete(ctx context.Context, flow, prompt string) (string, error)
}

type chatStore interface {
	Append(ctx context.Context, msgs ...repository.ChatMessage) error
	History(ctx context.Context, userID uuid.UUID, limit int) ([]repository.ChatMessage, error)
}

type feedbackCache interface {
	Get(ctx context.Context, title string, score, total int) (string, bool, error)
	Set(ctx context.Context, title string, score, total int, text string) error
}

type limiter interface {
	Allow(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Reply is the tutor's answer to one question.
type Reply struct {
	Answer      string      `json:"answer"`
	Personality Personality `json:"personality"`
}

// Service holds the tutor flows.
type Service struct {
	ai           completer
	history      chatStore
	cache        feedbackCache
	limiter      limiter
	historyLimit int
	now          func() time.Time
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// Options configures optional collaborators.
type Options struct {
	Cache        feedbackCache
	Limiter      limiter
	HistoryLimit int
	Metrics      *metrics.Metrics
}

// NewService wires the tutor.
func NewService(ai completer, history chatStore, opts Options, logger zerolog.Logger) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	return &Service{
		ai:           ai,
		history:      history,
		cache:        opts.Cache,
		limiter:      opts.Limiter,
		historyLimit: opts.HistoryLimit,
		now:          time.Now,
		metrics:      opts.Metrics,
		logger:       logging.Component(logger, "tutor"),
	}
}

// Ask answers question in the requested personality and appends both turns to the user's history.
func (s *Service) Ask(ctx context.Context, userID uuid.UUID, question, personality string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}
	p, err := ParsePersonality(personality)
	if err != nil {
		return Reply{}, err
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			// Redis trouble should not take the tutor down.
			s.logger.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			s.metrics.TutorRateLimited()
			return Reply{}, ErrRateLimited
		}
	}

	askedAt := s.now().UTC()
	prompt, err := askPrompt(question, p)
	if err != nil {
		return Reply{}, err
	}
	answer, err := s.ai.Complete(ctx, flowAsk, prompt)
	if err != nil {
		return Reply{}, fmt.Errorf("ask tutor: %w", err)
	}

	s.save(ctx, userID,
		repository.ChatMessage{UserID: userID, Role: roleUser, Personality: string(p), Content: question, CreatedAt: askedAt},
		repository.ChatMessage{UserID: userID, Role: roleAssistant, Personality: string(p), Content: answer, CreatedAt: s.now().UTC()},
	)
	return Reply{Answer: answer, Personality: p}, nil
}

func (s *Service) save(ctx context.Context, userID uuid.UUID, msgs ...repository.ChatMessage) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(ctx, msgs...); err != nil {
		s.metrics.PersistenceFailure("chat")
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("save chat history failed")
	}
}

// History returns the user's recent conversation, oldest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]repository.ChatMessage, error) {
	msgs, err := s.history.History(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	if msgs == nil {
		msgs = []repository.ChatMessage{}
	}
	return msgs, nil
}

// QuizFeedback returns a 1-2 sentence comment on a finished quiz. When the completion service
// fails a fixed message for the score band is returned instead.
func (s *Service) QuizFeedback(ctx context.Context, title string, score, total int) string {
	title = strings.TrimSpace(title)
	log := s.logger.With().Str("quiz_title", title).Int("score", score).Int("total", total).Logger()

	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, title, score, total)
		if err != nil {
			log.Warn().Err(err).Msg("feedback cache read failed")
		} else if ok {
			return text
		}
	}

	prompt, err := feedbackPrompt(title, score, total)
	if err != nil {
		log.Error().Err(err).Msg("feedback prompt failed")
		return fallbackFeedback(title, score, total)
	}
	text, err := s.ai.Complete(ctx, flowFeedback, prompt)
	if err != nil {
		if !errors.Is(err, ErrNotConfigured) {
			log.Warn().Err(err).Msg("ai feedback failed, using fallback")
		}
		return fallbackFeedback(title, score, total)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, title, score, total, text); err != nil {
			log.Warn().Err(err).Msg("feedback cache write failed")
		}
	}
	return text
}
