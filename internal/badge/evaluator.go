// Package badge awards achievement badges after a quiz result is stored.
package badge

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

// Icon is the closed set of badge icons.
type Icon string

const (
	IconShield Icon = "shield"
	IconFish   Icon = "fish"
)

// ParseIcon maps a stored icon name onto the enum; unknown names fall back to the shield.
func ParseIcon(name string) Icon {
	switch Icon(strings.ToLower(strings.TrimSpace(name))) {
	case IconFish:
		return IconFish
	default:
		return IconShield
	}
}

// Rule awards BadgeID once the user's best score on every quiz whose title contains TitleTag
// reaches Threshold percent.
type Rule struct {
	BadgeID   string
	TitleTag  string
	Threshold int
}

// PhishingMasterID is the badge for mastering all phishing quizzes.
const PhishingMasterID = "phishing-master"

// DefaultRules returns the shipped rule table.
func DefaultRules(threshold int) []Rule {
	return []Rule{
		{BadgeID: PhishingMasterID, TitleTag: "Phishing", Threshold: threshold},
	}
}

type awardStore interface {
	HasBadge(ctx context.Context, userID uuid.UUID, badgeID string) (bool, error)
	Award(ctx context.Context, userID uuid.UUID, badgeID string, earnedAt time.Time) (bool, error)
}

type quizFinder interface {
	FindByTitle(ctx context.Context, tag string) ([]repository.QuizRef, error)
}

type scoreReader interface {
	BestScorePercentByQuiz(ctx context.Context, userID uuid.UUID, quizIDs []string) (map[string]int, error)
}

// Evaluator runs the rule table for one user.
type Evaluator struct {
	rules   []Rule
	awards  awardStore
	quizzes quizFinder
	scores  scoreReader
	now     func() time.Time
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Options tweaks an Evaluator; zero values pick defaults.
type Options struct {
	Rules   []Rule
	Now     func() time.Time
	Metrics *metrics.Metrics
}

// NewEvaluator wires the evaluator to its stores.
func NewEvaluator(awards awardStore, quizzes quizFinder, scores scoreReader, opts Options, logger zerolog.Logger) *Evaluator {
	if opts.Rules == nil {
		opts.Rules = DefaultRules(80)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Evaluator{
		rules:   opts.Rules,
		awards:  awards,
		quizzes: quizzes,
		scores:  scores,
		now:     opts.Now,
		metrics: opts.Metrics,
		logger:  logging.Component(logger, "badge_evaluator"),
	}
}

// Evaluate checks every rule for userID and returns the ids of badges newly awarded.
// A failing rule does not stop the others; their errors are joined.
func (e *Evaluator) Evaluate(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var (
		awarded []string
		errs    []error
	)
	for _, rule := range e.rules {
		ok, err := e.evaluateRule(ctx, userID, rule)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", rule.BadgeID, err))
			continue
		}
		if ok {
			awarded = append(awarded, rule.BadgeID)
		}
	}
	return awarded, errors.Join(errs...)
}

func (e *Evaluator) evaluateRule(ctx context.Context, userID uuid.UUID, rule Rule) (bool, error) {
	held, err := e.awards.HasBadge(ctx, userID, rule.BadgeID)
	if err != nil {
		return false, fmt.Errorf("check badge: %w", err)
	}
	if held {
		return false, nil
	}

	tagged, err := e.quizzes.FindByTitle(ctx, rule.TitleTag)
	if err != nil {
		return false, fmt.Errorf("find tagged quizzes: %w", err)
	}
	if len(tagged) == 0 {
		return false, nil
	}

	ids := make([]string, len(tagged))
	for i, q := range tagged {
		ids[i] = q.ID
	}
	best, err := e.scores.BestScorePercentByQuiz(ctx, userID, ids)
	if err != nil {
		return false, fmt.Errorf("best scores: %w", err)
	}
	for _, id := range ids {
		pct, ok := best[id]
		if !ok || pct < rule.Threshold {
			return false, nil
		}
	}

	inserted, err := e.awards.Award(ctx, userID, rule.BadgeID, e.now().UTC())
	if err != nil {
		return false, fmt.Errorf("award: %w", err)
	}
	if inserted {
		e.metrics.BadgeAwarded(rule.BadgeID)
		e.logger.Info().Str("user_id", userID.String()).Str("badge_id", rule.BadgeID).Msg("badge awarded")
	}
	return inserted, nil
}
