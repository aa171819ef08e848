// Package dashboard aggregates results and badges into learner and admin overviews.
package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/logging"
)

type resultReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]repository.QuizResult, error)
	Recent(ctx context.Context, limit int) ([]repository.QuizResult, error)
	Count(ctx context.Context) (int, error)
	MostAttempted(ctx context.Context, limit int) ([]repository.QuizAttempts, error)
	MostFailedQuestions(ctx context.Context, limit int) ([]repository.FailedQuestion, error)
}

type badgeReader interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]repository.Badge, error)
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

// Stores groups the readers the dashboards pull from.
type Stores struct {
	Results  resultReader
	Badges   badgeReader
	Users    counter
	Quizzes  counter
	Feedback counter
}

// Service builds dashboards.
type Service struct {
	stores Stores
	logger zerolog.Logger
}

// NewService creates a dashboard service.
func NewService(stores Stores, logger zerolog.Logger) *Service {
	return &Service{stores: stores, logger: logging.Component(logger, "dashboard")}
}

// ForUser loads the learner dashboard for userID.
func (s *Service) ForUser(ctx context.Context, userID uuid.UUID) (UserDashboard, error) {
	var (
		results []repository.QuizResult
		badges  []repository.Badge
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = s.stores.Results.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		badges, err = s.stores.Badges.ListForUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return UserDashboard{}, fmt.Errorf("user dashboard: %w", err)
	}

	if results == nil {
		results = []repository.QuizResult{}
	}
	if badges == nil {
		badges = []repository.Badge{}
	}

	stats := summarize(results)
	return UserDashboard{
		Results: results,
		Recent:  results[:min(recentLimit, len(results))],
		Stats:   stats,
		Level:   levelFor(stats.AveragePercent),
		Badges:  badges,
	}, nil
}

// ForAdmin loads the platform overview. All queries run concurrently; the first failure wins.
func (s *Service) ForAdmin(ctx context.Context) (AdminDashboard, error) {
	var d AdminDashboard

	g, gctx := errgroup.WithContext(ctx)
	count := func(c counter, dst *int) func() error {
		return func() error {
			n, err := c.Count(gctx)
			*dst = n
			return err
		}
	}
	g.Go(count(s.stores.Users, &d.Counts.Users))
	g.Go(count(s.stores.Quizzes, &d.Counts.Quizzes))
	g.Go(count(s.stores.Results, &d.Counts.Results))
	g.Go(count(s.stores.Feedback, &d.Counts.Feedback))
	g.Go(func() error {
		var err error
		d.RecentResults, err = s.stores.Results.Recent(gctx, recentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		d.MostAttempted, err = s.stores.Results.MostAttempted(gctx, rankLimit)
		return err
	})
	g.Go(func() error {
		var err error
		d.MostFailed, err = s.stores.Results.MostFailedQuestions(gctx, rankLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminDashboard{}, fmt.Errorf("admin dashboard: %w", err)
	}

	if d.RecentResults == nil {
		d.RecentResults = []repository.QuizResult{}
	}
	if d.MostAttempted == nil {
		d.MostAttempted = []repository.QuizAttempts{}
	}
	if d.MostFailed == nil {
		d.MostFailed = []repository.FailedQuestion{}
	}
	return d, nil
}

// summarize averages over all answered questions rather than per attempt.
func summarize(results []repository.QuizResult) Stats {
	st := Stats{QuizzesTaken: len(results)}
	score, total := 0, 0
	for _, r := range results {
		score += r.Score
		total += r.TotalQuestions
		st.BestPercent = max(st.BestPercent, r.Percent())
	}
	if total > 0 {
		st.AveragePercent = (score*200 + total) / (total * 2)
	}
	return st
}

func levelFor(avg int) Level {
	toward := func(name, next string, threshold int) Level {
		progress := min((avg*200+threshold)/(threshold*2), 100)
		return Level{Name: name, NextLevel: &next, ProgressToNext: &progress}
	}

	switch {
	case avg < intermediateThreshold:
		return toward(LevelBeginner, LevelIntermediate, intermediateThreshold)
	case avg < advancedThreshold:
		return toward(LevelIntermediate, LevelAdvanced, advancedThreshold)
	default:
		return Level{Name: LevelAdvanced}
	}
}
