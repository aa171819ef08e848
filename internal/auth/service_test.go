package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyberguardian/platform/internal/auth/jwt"
	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/validation"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, params repository.CreateUserParams) (repository.User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(repository.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(repository.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (repository.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(repository.User), args.Error(1)
}

func (m *mockUserRepo) UpdateLogin(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func newTestService(repo *mockUserRepo) *Service {
	return NewService(repo, jwt.TokenConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     time.Hour,
	}, zerolog.Nop())
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testpassword123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.True(t, len(hash) > 20)
}

func TestVerifyPassword(t *testing.T) {
	hash, _ := HashPassword("secret1")

	assert.NoError(t, VerifyPassword(&hash, "secret1"))
	assert.ErrorIs(t, VerifyPassword(&hash, "wrongpassword"), ErrInvalidPassword)
	assert.ErrorIs(t, VerifyPassword(nil, "secret1"), ErrNoPassword)
}

func TestPasswordLength(t *testing.T) {
	_, err := HashPassword("short")
	assert.Equal(t, ErrPasswordTooShort, err)

	_, err = HashPassword(strings.Repeat("a", 73))
	assert.Equal(t, ErrPasswordTooLong, err)
}

func TestService_RegisterFirstUserIsAdmin(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)
	id := uuid.New()

	repo.On("GetByEmail", mock.Anything, "ada@example.com").Return(repository.User{}, repository.ErrNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p repository.CreateUserParams) bool {
		return p.Name == "Ada" && p.Email == "ada@example.com" && p.PasswordHash != nil && !p.IsAdmin
	})).Return(repository.User{ID: id, Name: "Ada", Email: "ada@example.com", IsAdmin: true}, nil)

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Name: " Ada ", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, int64(3600), tokens.ExpiresIn)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
	repo.AssertExpectations(t)
}

func TestService_RegisterEmailTaken(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)

	repo.On("GetByEmail", mock.Anything, "ada@example.com").Return(repository.User{ID: uuid.New()}, nil)

	_, _, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_RegisterRaceOnEmail(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)

	repo.On("GetByEmail", mock.Anything, "ada@example.com").Return(repository.User{}, repository.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(repository.User{}, repository.ErrDuplicate)

	_, _, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_Login(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	id := uuid.New()

	repo := new(mockUserRepo)
	svc := newTestService(repo)
	repo.On("GetByEmail", mock.Anything, "ada@example.com").
		Return(repository.User{ID: id, Name: "Ada", Email: "ada@example.com", PasswordHash: &hash}, nil)
	repo.On("UpdateLogin", mock.Anything, id).Return(nil)

	user, tokens, err := svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.NotEmpty(t, tokens.RefreshToken)

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "nope123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LoginRejectsPasswordlessAccount(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)
	repo.On("GetByEmail", mock.Anything, "g@example.com").Return(repository.User{ID: uuid.New()}, nil)

	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "g@example.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_SignInExternalReusesAccount(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)
	id := uuid.New()

	repo.On("GetByEmail", mock.Anything, "g@example.com").Return(repository.User{ID: id, Name: "G", Email: "g@example.com"}, nil)
	repo.On("UpdateLogin", mock.Anything, id).Return(nil)

	user, _, err := svc.SignInExternal(context.Background(), "g@example.com", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "G", user.Name)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_SignInExternalCreatesAccount(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)

	repo.On("GetByEmail", mock.Anything, "new@example.com").Return(repository.User{}, repository.ErrNotFound)
	repo.On("Create", mock.Anything, repository.CreateUserParams{Name: "new@example.com", Email: "new@example.com"}).
		Return(repository.User{ID: uuid.New(), Name: "new@example.com", Email: "new@example.com"}, nil)

	user, _, err := svc.SignInExternal(context.Background(), "new@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Name)
}

func TestService_RefreshReloadsAccount(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)
	id := uuid.New()

	pair, err := svc.generateTokenPair(User{ID: id, Name: "Ada"})
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, id).Return(repository.User{ID: id, Name: "Ada", IsAdmin: true}, nil)

	refreshed, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestMiddlewareAcceptsCookieAndBearer(t *testing.T) {
	svc := newTestService(new(mockUserRepo))
	pair, err := svc.generateTokenPair(User{ID: uuid.New(), Name: "Ada"})
	require.NoError(t, err)

	protected := AuthMiddleware(svc, zerolog.Nop())(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		_, _ = w.Write([]byte(claims.Name))
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: pair.AccessToken})
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication_required")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := RequireAdmin(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &jwt.Claims{UserID: uuid.New()}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &jwt.Claims{UserID: uuid.New(), IsAdmin: true}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRegisterHandlerValidation(t *testing.T) {
	h := NewHTTPHandlers(newTestService(new(mockUserRepo)), nil, validation.New(), false, zerolog.Nop())

	body := strings.NewReader(`{"name":"A","email":"not-an-email","password":"123"}`)
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/register", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name"`)
	assert.Contains(t, rec.Body.String(), `"email"`)
	assert.Contains(t, rec.Body.String(), `"password"`)
}

func TestOAuthStartNotConfigured(t *testing.T) {
	h := NewHTTPHandlers(newTestService(new(mockUserRepo)), NewOAuthService("", "", "", zerolog.Nop()), validation.New(), false, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.OAuthStart(rec, httptest.NewRequest(http.MethodGet, "/v1/oauth/google/start", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
