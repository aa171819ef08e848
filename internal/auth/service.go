package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/auth/jwt"
	"github.com/cyberguardian/platform/internal/db/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type userStore interface {
	Create(ctx context.Context, params repository.CreateUserParams) (repository.User, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	UpdateLogin(ctx context.Context, id uuid.UUID) error
}

// Service handles authentication and account creation.
type Service struct {
	users    userStore
	tokenMgr *jwt.Manager
	logger   zerolog.Logger
}

// NewService creates an authentication service.
func NewService(users userStore, tokens jwt.TokenConfig, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		tokenMgr: jwt.NewManager(tokens),
		logger:   logger,
	}
}

// Register creates a new account. The first account on an empty system becomes an administrator.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, *TokenPair, error) {
	email := strings.TrimSpace(req.Email)

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, nil, fmt.Errorf("lookup email: %w", err)
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	row, err := s.users.Create(ctx, repository.CreateUserParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: &passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	user := userFromRow(row)
	tokens, err := s.generateTokenPair(*user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Bool("is_admin", user.IsAdmin).Msg("user registered")
	return user, tokens, nil
}

// Login authenticates a user with email/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, *TokenPair, error) {
	row, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup email: %w", err)
	}

	// OAuth-only accounts have no password to check against.
	if err := VerifyPassword(row.PasswordHash, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	s.touchLogin(ctx, row.ID)

	user := userFromRow(row)
	tokens, err := s.generateTokenPair(*user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return user, tokens, nil
}

// SignInExternal logs in the account owning email, creating one without a password if none exists.
func (s *Service) SignInExternal(ctx context.Context, email, name string) (*User, *TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil, fmt.Errorf("identity provider did not return an email")
	}

	row, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.touchLogin(ctx, row.ID)
	case errors.Is(err, repository.ErrNotFound):
		if strings.TrimSpace(name) == "" {
			name = email
		}
		row, err = s.users.Create(ctx, repository.CreateUserParams{Name: name, Email: email})
		if errors.Is(err, repository.ErrDuplicate) {
			row, err = s.users.GetByEmail(ctx, email)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("create external user: %w", err)
		}
		s.logger.Info().Str("user_id", row.ID.String()).Msg("external user created")
	default:
		return nil, nil, fmt.Errorf("lookup email: %w", err)
	}

	user := userFromRow(row)
	tokens, err := s.generateTokenPair(*user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}
	return user, tokens, nil
}

// Refresh issues a new token pair from a valid refresh token.
// The account is re-read so admin changes take effect.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.Me(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.generateTokenPair(*user)
}

// Me loads the current state of an account.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*User, error) {
	row, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return userFromRow(row), nil
}

// ValidateToken validates an access token and returns claims.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(token)
}

func (s *Service) touchLogin(ctx context.Context, id uuid.UUID) {
	if err := s.users.UpdateLogin(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("user_id", id.String()).Msg("update last login failed")
	}
}

func (s *Service) generateTokenPair(user User) (*TokenPair, error) {
	jwtUser := jwt.User{ID: user.ID, Email: user.Email, Name: user.Name, IsAdmin: user.IsAdmin}

	accessToken, err := s.tokenMgr.GenerateAccessToken(jwtUser)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenMgr.GenerateRefreshToken(jwtUser)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}
