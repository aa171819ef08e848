// Package seed loads the starter quiz catalog and badge definitions from YAML.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cyberguardian/platform/internal/badge"
	"github.com/cyberguardian/platform/internal/catalog"
	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/logging"
)

// Catalog is the YAML document shape.
type Catalog struct {
	Badges  []Badge `yaml:"badges"`
	Quizzes []Quiz  `yaml:"quizzes"`
}

// Badge is a badge definition.
type Badge struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// Quiz references its prerequisite by title, which must appear earlier in the file
// or already exist in the database.
type Quiz struct {
	Title             string     `yaml:"title"`
	Prerequisite      string     `yaml:"prerequisite,omitempty"`
	PrerequisiteScore *int       `yaml:"prerequisite_score,omitempty"`
	Questions         []Question `yaml:"questions"`
}

// Question is one seeded question.
type Question struct {
	Text       string   `yaml:"text"`
	Options    []string `yaml:"options"`
	Answer     string   `yaml:"answer"`
	Difficulty string   `yaml:"difficulty"`
}

// Parse decodes a catalog, rejecting unknown keys.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("parse seed catalog: %w", err)
	}
	for i, b := range c.Badges {
		if b.ID == "" || b.Name == "" {
			return Catalog{}, fmt.Errorf("badge %d: id and name are required", i)
		}
	}
	for i, q := range c.Quizzes {
		if strings.TrimSpace(q.Title) == "" {
			return Catalog{}, fmt.Errorf("quiz %d: title is required", i)
		}
	}
	return c, nil
}

type quizCreator interface {
	CreateQuiz(ctx context.Context, in catalog.QuizInput) (string, error)
}

type quizFinder interface {
	FindByTitle(ctx context.Context, tag string) ([]repository.QuizRef, error)
}

type badgeStore interface {
	Upsert(ctx context.Context, b repository.Badge) error
}

// Report counts what a load did.
type Report struct {
	Badges  int
	Created []string
	Skipped []string
}

// Loader writes a catalog through the authoring service so seeded quizzes obey the same rules.
type Loader struct {
	quizzes quizCreator
	finder  quizFinder
	badges  badgeStore
	logger  zerolog.Logger
}

// NewLoader creates a loader.
func NewLoader(quizzes quizCreator, finder quizFinder, badges badgeStore, logger zerolog.Logger) *Loader {
	return &Loader{
		quizzes: quizzes,
		finder:  finder,
		badges:  badges,
		logger:  logging.Component(logger, "seed"),
	}
}

// Load upserts badges and creates quizzes whose title is not taken yet. Running it twice is a no-op.
func (l *Loader) Load(ctx context.Context, c Catalog) (Report, error) {
	var rep Report
	for _, b := range c.Badges {
		err := l.badges.Upsert(ctx, repository.Badge{
			ID:          b.ID,
			Name:        b.Name,
			Description: b.Description,
			Icon:        string(badge.ParseIcon(b.Icon)),
		})
		if err != nil {
			return rep, fmt.Errorf("upsert badge %s: %w", b.ID, err)
		}
		rep.Badges++
	}

	ids := make(map[string]string, len(c.Quizzes))
	for _, q := range c.Quizzes {
		key := strings.ToLower(strings.TrimSpace(q.Title))
		existing, err := l.lookup(ctx, q.Title)
		if err != nil {
			return rep, err
		}
		if existing != "" {
			ids[key] = existing
			rep.Skipped = append(rep.Skipped, q.Title)
			continue
		}

		in, err := l.input(ctx, q, ids)
		if err != nil {
			return rep, err
		}
		id, err := l.quizzes.CreateQuiz(ctx, in)
		if err != nil {
			return rep, fmt.Errorf("create quiz %q: %w", q.Title, err)
		}
		ids[key] = id
		rep.Created = append(rep.Created, q.Title)
		l.logger.Info().Str("quiz_id", id).Str("title", q.Title).Int("questions", len(q.Questions)).Msg("quiz seeded")
	}
	return rep, nil
}

var errUnknownPrerequisite = errors.New("unknown prerequisite")

func (l *Loader) input(ctx context.Context, q Quiz, seeded map[string]string) (catalog.QuizInput, error) {
	in := catalog.QuizInput{Title: strings.TrimSpace(q.Title)}
	for _, qq := range q.Questions {
		in.Questions = append(in.Questions, catalog.QuestionInput{
			Text:          qq.Text,
			Options:       qq.Options,
			CorrectAnswer: qq.Answer,
			Difficulty:    qq.Difficulty,
		})
	}

	if q.Prerequisite == "" {
		return in, nil
	}
	id, ok := seeded[strings.ToLower(strings.TrimSpace(q.Prerequisite))]
	if !ok {
		found, err := l.lookup(ctx, q.Prerequisite)
		if err != nil {
			return in, err
		}
		if found == "" {
			return in, fmt.Errorf("quiz %q: %w %q", q.Title, errUnknownPrerequisite, q.Prerequisite)
		}
		id = found
	}
	in.PrerequisiteQuizID = &id
	in.PrerequisiteScore = q.PrerequisiteScore
	return in, nil
}

// lookup returns the id of the quiz titled exactly title, ignoring case, or "".
func (l *Loader) lookup(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	refs, err := l.finder.FindByTitle(ctx, title)
	if err != nil {
		return "", fmt.Errorf("look up quiz %q: %w", title, err)
	}
	for _, ref := range refs {
		if strings.EqualFold(ref.Title, title) {
			return ref.ID, nil
		}
	}
	return "", nil
}
