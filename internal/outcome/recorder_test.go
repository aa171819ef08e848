package outcome

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyberguardian/platform/internal/db/repository"
	"github.com/cyberguardian/platform/internal/quiz"
)

type mockResults struct {
	mock.Mock
}

func (m *mockResults) Insert(ctx context.Context, res repository.NewResult) (uuid.UUID, error) {
	args := m.Called(ctx, res)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type mockBadges struct {
	mock.Mock
}

func (m *mockBadges) Evaluate(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	awarded, _ := args.Get(0).([]string)
	return awarded, args.Error(1)
}

func completion() quiz.Completion {
	return quiz.Completion{
		QuizID:         "2b0c5f7e-1a1d-4a53-b1de-1d1b6e0f3a10",
		QuizTitle:      "Phishing Basics",
		Score:          3,
		TotalQuestions: 4,
		IncorrectIDs:   []string{"q4"},
	}
}

func TestRecordPersistsThenEvaluatesBadges(t *testing.T) {
	results := new(mockResults)
	badges := new(mockBadges)
	rec := NewRecorder(results, badges, nil, zerolog.Nop())
	user := uuid.New()
	resultID := uuid.New()

	var order []string
	results.On("Insert", mock.Anything, mock.MatchedBy(func(res repository.NewResult) bool {
		return res.UserID == user && res.Score == 3 && res.TotalQuestions == 4 &&
			assert.ObjectsAreEqual([]string{"q4"}, res.MissedIDs)
	})).Run(func(mock.Arguments) { order = append(order, "insert") }).Return(resultID, nil)
	badges.On("Evaluate", mock.Anything, user).
		Run(func(mock.Arguments) { order = append(order, "evaluate") }).
		Return([]string{"phishing-master"}, nil)

	summary := rec.Record(context.Background(), user, completion())

	assert.Equal(t, []string{"insert", "evaluate"}, order)
	require.NotNil(t, summary.ResultID)
	assert.Equal(t, resultID, *summary.ResultID)
	assert.Equal(t, []string{"phishing-master"}, summary.NewBadges)
	assert.Equal(t, 3, summary.Score)
	results.AssertExpectations(t)
	badges.AssertExpectations(t)
}

func TestRecordSkipsReviewSessions(t *testing.T) {
	results := new(mockResults)
	badges := new(mockBadges)
	rec := NewRecorder(results, badges, nil, zerolog.Nop())

	c := completion()
	c.QuizID = quiz.ReviewQuizPrefix + uuid.NewString()
	c.Review = true
	summary := rec.Record(context.Background(), uuid.New(), c)

	assert.True(t, summary.Review)
	assert.Nil(t, summary.ResultID)
	results.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	badges.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
}

func TestRecordSwallowsInsertFailure(t *testing.T) {
	results := new(mockResults)
	badges := new(mockBadges)
	rec := NewRecorder(results, badges, nil, zerolog.Nop())

	results.On("Insert", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("db down"))

	summary := rec.Record(context.Background(), uuid.New(), completion())

	assert.Nil(t, summary.ResultID)
	assert.Equal(t, 3, summary.Score)
	assert.Equal(t, []string{"q4"}, summary.IncorrectIDs)
	badges.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
}

func TestRecordSwallowsBadgeFailure(t *testing.T) {
	results := new(mockResults)
	badges := new(mockBadges)
	rec := NewRecorder(results, badges, nil, zerolog.Nop())
	user := uuid.New()

	results.On("Insert", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	badges.On("Evaluate", mock.Anything, user).Return(nil, errors.New("constraint"))

	summary := rec.Record(context.Background(), user, completion())

	assert.NotNil(t, summary.ResultID)
	assert.Empty(t, summary.NewBadges)
}
