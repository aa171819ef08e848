// Package play runs quiz sessions for players: it owns the Redis-held session state
// and hands finished attempts to the outcome recorder.
package play

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/logging"
	"github.com/cyberguardian/platform/internal/metrics"
	"github.com/cyberguardian/platform/internal/outcome"
	"github.com/cyberguardian/platform/internal/quiz"
)

type sessionStore interface {
	Lock(ctx context.Context, id uuid.UUID) (func(), error)
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, id uuid.UUID) (*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type quizSource interface {
	QuizForPlay(ctx context.Context, userID uuid.UUID, quizID string) (quiz.Quiz, error)
	ReviewQuiz(ctx context.Context, questionIDs []string) (quiz.Quiz, error)
}

type completionRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, c quiz.Completion) outcome.Summary
}

// Service coordinates session lifecycle.
type Service struct {
	store    sessionStore
	quizzes  quizSource
	recorder completionRecorder
	rng      quiz.Rand
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// Options tweaks Service construction.
type Options struct {
	Rand    quiz.Rand
	Metrics *metrics.Metrics
}

// NewService wires the play service.
func NewService(store sessionStore, quizzes quizSource, recorder completionRecorder, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		quizzes:  quizzes,
		recorder: recorder,
		rng:      opts.Rand,
		now:      time.Now,
		metrics:  opts.Metrics,
		logger:   logging.Component(logger, "play"),
	}
}

// Start opens a session on a catalog quiz the user has unlocked.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, quizID string) (View, error) {
	q, err := s.quizzes.QuizForPlay(ctx, userID, quizID)
	if err != nil {
		return View{}, err
	}
	return s.begin(ctx, userID, q)
}

// StartReview opens a session over previously missed questions.
func (s *Service) StartReview(ctx context.Context, userID uuid.UUID, questionIDs []string) (View, error) {
	q, err := s.quizzes.ReviewQuiz(ctx, questionIDs)
	if err != nil {
		return View{}, err
	}
	return s.begin(ctx, userID, q)
}

func (s *Service) begin(ctx context.Context, userID uuid.UUID, q quiz.Quiz) (View, error) {
	sess, err := quiz.NewSession(q, s.rng)
	if err != nil {
		return View{}, err
	}

	rec := Record{
		ID:        uuid.New(),
		UserID:    userID,
		StartedAt: s.now().UTC(),
		Snapshot:  sess.Snapshot(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return View{}, err
	}

	s.metrics.SessionStarted(sess.IsReview())
	s.logger.Info().
		Str("session_id", rec.ID.String()).
		Str("user_id", userID.String()).
		Str("quiz_id", q.ID).
		Int("questions", sess.Total()).
		Msg("session started")

	return newView(rec.ID, sess), nil
}

// Get returns the current view of a session owned by userID.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) (View, error) {
	rec, sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return View{}, err
	}
	return newView(rec.ID, sess), nil
}

// Answer scores selected against the active question.
func (s *Service) Answer(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID, selected string) (View, error) {
	var view View
	err := s.mutate(ctx, userID, sessionID, func(rec *Record, sess *quiz.Session) error {
		difficulty := sess.Difficulty()
		result, err := sess.SubmitAnswer(selected)
		if err != nil {
			return err
		}
		s.metrics.Answer(string(result), string(difficulty))

		rec.Snapshot = sess.Snapshot()
		if err := s.store.Save(ctx, *rec); err != nil {
			return err
		}
		view = newView(rec.ID, sess)
		return nil
	})
	return view, err
}

// Next advances past an answered question. On the final advance the attempt is recorded
// and the session removed.
func (s *Service) Next(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) (View, error) {
	var view View
	err := s.mutate(ctx, userID, sessionID, func(rec *Record, sess *quiz.Session) error {
		completion, err := sess.Advance()
		if err != nil {
			return err
		}

		rec.Snapshot = sess.Snapshot()
		if err := s.store.Save(ctx, *rec); err != nil {
			return err
		}
		view = newView(rec.ID, sess)
		if completion == nil {
			return nil
		}

		// The complete snapshot is stored first, so a retried Next cannot record twice.
		summary := s.recorder.Record(ctx, userID, *completion)
		view.Summary = &summary

		if err := s.store.Delete(ctx, rec.ID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", rec.ID.String()).Msg("delete finished session failed")
		}
		return nil
	})
	return view, err
}

func (s *Service) mutate(ctx context.Context, userID, sessionID uuid.UUID, fn func(rec *Record, sess *quiz.Session) error) error {
	unlock, err := s.store.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	rec, sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	return fn(rec, sess)
}

func (s *Service) load(ctx context.Context, userID, sessionID uuid.UUID) (*Record, *quiz.Session, error) {
	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	// Someone else's session is reported as missing.
	if rec.UserID != userID {
		return nil, nil, ErrSessionNotFound
	}

	sess, err := quiz.Restore(rec.Snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("restore session %s: %w", sessionID, err)
	}
	return rec, sess, nil
}
