package feedback

import (
	"context"
	"errors"
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

	"github.com/cyberguardian/platform/internal/auth"
	"github.com/cyberguardian/platform/internal/auth/jwt"
	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/validation"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, userID uuid.UUID, quizID, text string) (uuid.UUID, error) {
	args := m.Called(ctx, userID, quizID, text)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockStore) List(ctx context.Context) ([]repository.Feedback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.Feedback), args.Error(1)
}

func TestSubmitTrimsText(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, zerolog.Nop())
	user, quizID, id := uuid.New(), uuid.NewString(), uuid.New()

	store.On("Create", mock.Anything, user, quizID, "Loved the phishing examples").Return(id, nil)

	got, err := svc.Submit(context.Background(), user, quizID, "  Loved the phishing examples \n")
	require.NoError(t, err)
	assert.Equal(t, id, got)
	store.AssertExpectations(t)
}

func TestSubmitRejectsBlank(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, zerolog.Nop())

	_, err := svc.Submit(context.Background(), uuid.New(), uuid.NewString(), "   ")
	assert.ErrorIs(t, err, ErrEmptyFeedback)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitUnknownQuiz(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, zerolog.Nop())
	store.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(uuid.Nil, repository.ErrNotFound)

	_, err := svc.Submit(context.Background(), uuid.New(), "missing", "text")
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestListNeverNil(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store, zerolog.Nop())
	store.On("List", mock.Anything).Return(nil, nil).Once()

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	store.On("List", mock.Anything).Return(nil, errors.New("db down")).Once()
	_, err = svc.List(context.Background())
	assert.Error(t, err)
}

func TestHandlers(t *testing.T) {
	store := new(mockStore)
	h := NewHTTPHandlers(NewService(store, zerolog.Nop()), validation.New(), zerolog.Nop())
	user, quizID := uuid.New(), uuid.NewString()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/quizzes/{id}/feedback", h.Submit)
	mux.HandleFunc("GET /v1/admin/feedback", h.List)

	store.On("Create", mock.Anything, user, quizID, "Great quiz").Return(uuid.New(), nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/quizzes/"+quizID+"/feedback", strings.NewReader(`{"feedback":"Great quiz"}`))
	req = req.WithContext(auth.WithClaims(req.Context(), &jwt.Claims{UserID: user}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/quizzes/"+quizID+"/feedback", strings.NewReader(`{"feedback":""}`))
	req = req.WithContext(auth.WithClaims(req.Context(), &jwt.Claims{UserID: user}))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.On("List", mock.Anything).Return([]repository.Feedback{{ID: uuid.New(), UserName: "Ada", QuizTitle: "Phishing", Feedback: "Great quiz", CreatedAt: created}}, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/feedback", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quiz_title":"Phishing"`)
}
