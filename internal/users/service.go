// Package users implements account administration.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/dashboard"
	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/logging"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("another user already has this email")
	ErrDeleteSelf   = errors.New("administrators cannot delete their own account")
)

type userStore interface {
	List(ctx context.Context, search string) ([]repository.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateUserParams) (repository.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type progressReader interface {
	ForUser(ctx context.Context, userID uuid.UUID) (dashboard.UserDashboard, error)
}

// UpdateRequest is an administrator's edit of an account.
type UpdateRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	IsAdmin bool   `json:"is_admin"`
}

// Progress pairs an account with its dashboard.
type Progress struct {
	User      repository.User         `json:"user"`
	Dashboard dashboard.UserDashboard `json:"dashboard"`
}

// Service administers accounts.
type Service struct {
	users    userStore
	progress progressReader
	logger   zerolog.Logger
}

// NewService creates the user administration service.
func NewService(users userStore, progress progressReader, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		progress: progress,
		logger:   logging.Component(logger, "users"),
	}
}

// List returns accounts whose name or email contains search, newest first.
func (s *Service) List(ctx context.Context, search string) ([]repository.User, error) {
	list, err := s.users.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if list == nil {
		list = []repository.User{}
	}
	return list, nil
}

// Update changes name, email and the admin flag.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (repository.User, error) {
	u, err := s.users.Update(ctx, id, repository.UpdateUserParams{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		IsAdmin: req.IsAdmin,
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return repository.User{}, ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return repository.User{}, ErrEmailTaken
	case err != nil:
		return repository.User{}, fmt.Errorf("update user: %w", err)
	}
	s.logger.Info().Str("user_id", id.String()).Bool("is_admin", u.IsAdmin).Msg("user updated")
	return u, nil
}

// Delete removes the account id on behalf of actor.
func (s *Service) Delete(ctx context.Context, actor, id uuid.UUID) error {
	if actor == id {
		return ErrDeleteSelf
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info().Str("user_id", id.String()).Str("deleted_by", actor.String()).Msg("user deleted")
	return nil
}

// Progress returns the account and its learner dashboard.
func (s *Service) Progress(ctx context.Context, id uuid.UUID) (Progress, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Progress{}, ErrUserNotFound
		}
		return Progress{}, fmt.Errorf("load user: %w", err)
	}
	d, err := s.progress.ForUser(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	return Progress{User: u, Dashboard: d}, nil
}
