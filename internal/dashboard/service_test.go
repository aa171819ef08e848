package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberguardian/platform/internal/auth"
	"github.com/cyberguardian/platform/internal/auth/jwt"
	"github.com/cyberguardian/platform/internal/db/repository"
)

type fakeResults struct {
	byUser  []repository.QuizResult
	count   int
	err     error
	attempt []repository.QuizAttempts
	failed  []repository.FailedQuestion
}

func (f *fakeResults) ListByUser(context.Context, uuid.UUID) ([]repository.QuizResult, error) {
	return f.byUser, f.err
}

func (f *fakeResults) Recent(_ context.Context, limit int) ([]repository.QuizResult, error) {
	return f.byUser[:min(limit, len(f.byUser))], f.err
}

func (f *fakeResults) Count(context.Context) (int, error) { return f.count, f.err }

func (f *fakeResults) MostAttempted(context.Context, int) ([]repository.QuizAttempts, error) {
	return f.attempt, f.err
}

func (f *fakeResults) MostFailedQuestions(context.Context, int) ([]repository.FailedQuestion, error) {
	return f.failed, f.err
}

type fakeBadges []repository.Badge

func (f fakeBadges) ListForUser(context.Context, uuid.UUID) ([]repository.Badge, error) {
	return f, nil
}

type fixedCount int

func (c fixedCount) Count(context.Context) (int, error) { return int(c), nil }

func results(pairs ...[2]int) []repository.QuizResult {
	out := make([]repository.QuizResult, len(pairs))
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range pairs {
		out[i] = repository.QuizResult{
			ID:             uuid.New(),
			QuizTitle:      "Quiz",
			Score:          p[0],
			TotalQuestions: p[1],
			CompletedAt:    base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return out
}

func TestForUserStats(t *testing.T) {
	res := &fakeResults{byUser: results([2]int{9, 10}, [2]int{1, 3}, [2]int{4, 5}, [2]int{2, 4}, [2]int{5, 5}, [2]int{0, 3})}
	svc := NewService(Stores{Results: res, Badges: fakeBadges{{ID: "phishing-pro"}}}, zerolog.Nop())

	d, err := svc.ForUser(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Len(t, d.Results, 6)
	assert.Len(t, d.Recent, 5)
	assert.Equal(t, d.Results[0].ID, d.Recent[0].ID)
	assert.Equal(t, 6, d.Stats.QuizzesTaken)
	// 21 of 30 answered correctly.
	assert.Equal(t, 70, d.Stats.AveragePercent)
	assert.Equal(t, 100, d.Stats.BestPercent)
	assert.Equal(t, LevelIntermediate, d.Level.Name)
	require.NotNil(t, d.Level.NextLevel)
	assert.Equal(t, LevelAdvanced, *d.Level.NextLevel)
	assert.Equal(t, 78, *d.Level.ProgressToNext)
	assert.Len(t, d.Badges, 1)
}

func TestForUserEmpty(t *testing.T) {
	svc := NewService(Stores{Results: &fakeResults{}, Badges: fakeBadges(nil)}, zerolog.Nop())

	d, err := svc.ForUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, d.Results)
	assert.NotNil(t, d.Recent)
	assert.NotNil(t, d.Badges)
	assert.Equal(t, Stats{}, d.Stats)
	assert.Equal(t, LevelBeginner, d.Level.Name)
	assert.Equal(t, 0, *d.Level.ProgressToNext)
}

func TestLevelBoundaries(t *testing.T) {
	assert.Equal(t, LevelBeginner, levelFor(59).Name)
	assert.Equal(t, LevelIntermediate, levelFor(60).Name)
	assert.Equal(t, LevelIntermediate, levelFor(89).Name)
	assert.Equal(t, LevelAdvanced, levelFor(90).Name)
	assert.Nil(t, levelFor(95).ProgressToNext)
	assert.Equal(t, 50, *levelFor(30).ProgressToNext)
}

func TestForAdmin(t *testing.T) {
	res := &fakeResults{
		byUser:  results([2]int{1, 2}, [2]int{2, 2}),
		count:   2,
		attempt: []repository.QuizAttempts{{Title: "Phishing", Attempts: 2}},
	}
	svc := NewService(Stores{Results: res, Users: fixedCount(3), Quizzes: fixedCount(4), Feedback: fixedCount(1)}, zerolog.Nop())

	d, err := svc.ForAdmin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{Users: 3, Quizzes: 4, Results: 2, Feedback: 1}, d.Counts)
	assert.Len(t, d.RecentResults, 2)
	assert.Equal(t, "Phishing", d.MostAttempted[0].Title)
	assert.NotNil(t, d.MostFailed)
}

func TestForAdminFailure(t *testing.T) {
	res := &fakeResults{err: errors.New("db down")}
	svc := NewService(Stores{Results: res, Users: fixedCount(1), Quizzes: fixedCount(1), Feedback: fixedCount(1)}, zerolog.Nop())

	_, err := svc.ForAdmin(context.Background())
	assert.ErrorContains(t, err, "db down")

	h := NewHTTPHandlers(svc, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.Admin(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard_failed")
}

func TestMineHandler(t *testing.T) {
	svc := NewService(Stores{Results: &fakeResults{byUser: results([2]int{3, 4})}, Badges: fakeBadges(nil)}, zerolog.Nop())
	h := NewHTTPHandlers(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Mine(rec, httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &jwt.Claims{UserID: uuid.New()}))
	rec = httptest.NewRecorder()
	h.Mine(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"average_percent":75`)
}
