// Package catalog manages the quiz catalog: authoring, listing with prerequisite locks and
// loading quizzes and review sets for play.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/logging"
	"github.com/cyberguardian/platform/internal/quiz"
	"github.com/cyberguardian/platform/internal/validation"
)

type quizStore interface {
	WithTx(ctx context.Context, fn func(tx repository.QuizTx) error) error
	Get(ctx context.Context, quizID string) (quiz.Quiz, error)
	ListSummaries(ctx context.Context) ([]repository.QuizSummary, error)
	QuestionsByIDs(ctx context.Context, ids []string) ([]quiz.Question, error)
	Delete(ctx context.Context, quizID string) error
}

type scoreReader interface {
	BestScorePercentByQuiz(ctx context.Context, userID uuid.UUID, quizIDs []string) (map[string]int, error)
}

// Service implements catalog operations.
type Service struct {
	quizzes   quizStore
	scores    scoreReader
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewService wires the catalog to its stores.
func NewService(quizzes quizStore, scores scoreReader, v *validation.Validator, logger zerolog.Logger) *Service {
	if v == nil {
		v = validation.New()
	}
	return &Service{
		quizzes:   quizzes,
		scores:    scores,
		validator: v,
		logger:    logging.Component(logger, "catalog"),
	}
}

func (s *Service) validate(in QuizInput) error {
	if fields := s.validator.Struct(&in); fields != nil {
		return &InvalidInputError{Fields: fields}
	}
	return nil
}

func header(in QuizInput) repository.QuizHeader {
	h := repository.QuizHeader{Title: in.Title, PrerequisiteQuizID: in.PrerequisiteQuizID}
	if in.PrerequisiteQuizID != nil && *in.PrerequisiteQuizID != "" {
		score := DefaultPrerequisiteScore
		if in.PrerequisiteScore != nil {
			score = *in.PrerequisiteScore
		}
		h.PrerequisiteScore = &score
	} else {
		h.PrerequisiteQuizID = nil
	}
	return h
}

// insertQuestions checks each question's answer as it goes; a miss aborts the surrounding transaction.
func insertQuestions(ctx context.Context, tx repository.QuizTx, quizID string, questions []QuestionInput) error {
	for i, in := range questions {
		q := quiz.Question{
			Text:          in.Text,
			Options:       in.Options,
			CorrectAnswer: in.CorrectAnswer,
			Difficulty:    quiz.Difficulty(in.Difficulty),
		}
		if !q.HasOption(q.CorrectAnswer) {
			return &AnswerNotInOptionsError{Index: i, Question: in.Text, Answer: in.CorrectAnswer}
		}
		if _, err := tx.InsertQuestion(ctx, quizID, i, q); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// CreateQuiz stores a new quiz and its questions atomically and returns the quiz id.
func (s *Service) CreateQuiz(ctx context.Context, in QuizInput) (string, error) {
	if err := s.validate(in); err != nil {
		return "", err
	}

	var quizID string
	err := s.quizzes.WithTx(ctx, func(tx repository.QuizTx) error {
		id, err := tx.InsertQuiz(ctx, header(in))
		if err != nil {
			return err
		}
		quizID = id
		return insertQuestions(ctx, tx, id, in.Questions)
	})
	if err != nil {
		return "", s.authoringError("create", err)
	}

	s.logger.Info().Str("quiz_id", quizID).Int("questions", len(in.Questions)).Msg("quiz created")
	return quizID, nil
}

// ReplaceQuiz rewrites the title and swaps the full question set atomically.
func (s *Service) ReplaceQuiz(ctx context.Context, quizID string, in QuizInput) error {
	if err := s.validate(in); err != nil {
		return err
	}
	if in.PrerequisiteQuizID != nil && *in.PrerequisiteQuizID == quizID {
		return &InvalidInputError{Fields: map[string]string{"prerequisite_quiz_id": "a quiz cannot be its own prerequisite"}}
	}

	err := s.quizzes.WithTx(ctx, func(tx repository.QuizTx) error {
		if err := tx.UpdateQuiz(ctx, quizID, header(in)); err != nil {
			return err
		}
		if err := tx.DeleteQuestions(ctx, quizID); err != nil {
			return err
		}
		return insertQuestions(ctx, tx, quizID, in.Questions)
	})
	if err != nil {
		return s.authoringError("replace", err)
	}

	s.logger.Info().Str("quiz_id", quizID).Int("questions", len(in.Questions)).Msg("quiz replaced")
	return nil
}

func (s *Service) authoringError(op string, err error) error {
	var answerErr *AnswerNotInOptionsError
	switch {
	case errors.As(err, &answerErr):
		return answerErr
	case errors.Is(err, repository.ErrNotFound):
		return ErrQuizNotFound
	}
	s.logger.Error().Err(err).Str("op", op).Msg("quiz authoring failed")
	return fmt.Errorf("%s quiz: %w", op, err)
}

// DeleteQuiz removes a quiz and everything that hangs off it.
func (s *Service) DeleteQuiz(ctx context.Context, quizID string) error {
	if err := s.quizzes.Delete(ctx, quizID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("delete quiz: %w", err)
	}
	s.logger.Info().Str("quiz_id", quizID).Msg("quiz deleted")
	return nil
}

// GetQuiz returns a quiz with answers, for editing.
func (s *Service) GetQuiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return quiz.Quiz{}, ErrQuizNotFound
		}
		return quiz.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

// ListForUser returns the catalog annotated with the user's best scores and lock state.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	summaries, err := s.quizzes.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	best, err := s.scores.BestScorePercentByQuiz(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("best scores: %w", err)
	}

	entries := make([]Entry, 0, len(summaries))
	for _, sum := range summaries {
		e := Entry{QuizSummary: sum}
		if pct, ok := best[sum.ID]; ok {
			pct := pct
			e.BestScore = &pct
		}
		e.Locked, e.RequiredScore = locked(sum.PrerequisiteQuizID, sum.PrerequisiteScore, best)
		entries = append(entries, e)
	}
	return entries, nil
}

func locked(prereqID *string, prereqScore *int, best map[string]int) (bool, *int) {
	if prereqID == nil || *prereqID == "" {
		return false, nil
	}
	required := DefaultPrerequisiteScore
	if prereqScore != nil {
		required = *prereqScore
	}
	return best[*prereqID] < required, &required
}

// QuizForPlay loads a quiz for userID, refusing locked quizzes.
func (s *Service) QuizForPlay(ctx context.Context, userID uuid.UUID, quizID string) (quiz.Quiz, error) {
	q, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return quiz.Quiz{}, err
	}
	if q.PrerequisiteQuizID == nil {
		return q, nil
	}

	best, err := s.scores.BestScorePercentByQuiz(ctx, userID, []string{*q.PrerequisiteQuizID})
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("prerequisite score: %w", err)
	}
	if isLocked, _ := locked(q.PrerequisiteQuizID, q.PrerequisiteScore, best); isLocked {
		return quiz.Quiz{}, ErrQuizLocked
	}
	return q, nil
}

// ReviewQuiz builds a synthetic review quiz from previously missed question ids.
func (s *Service) ReviewQuiz(ctx context.Context, questionIDs []string) (quiz.Quiz, error) {
	if len(questionIDs) == 0 {
		return quiz.Quiz{}, quiz.ErrNoReviewQuestions
	}
	questions, err := s.quizzes.QuestionsByIDs(ctx, questionIDs)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("load review questions: %w", err)
	}
	return quiz.NewReviewQuiz(questions)
}
