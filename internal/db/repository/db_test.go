package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: pgUniqueViolation}), ErrDuplicate)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: pgForeignKeyViolation}), ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestParseIDsSkipsGarbage(t *testing.T) {
	ids := parseIDs([]string{"6f1c4a47-3b1e-4b8e-9d3f-1f2a3b4c5d6e", "review-abc", ""})
	assert.Len(t, ids, 1)
	assert.Equal(t, "6f1c4a47-3b1e-4b8e-9d3f-1f2a3b4c5d6e", ids[0].String())

	_, err := parseID("not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOptionalID(t *testing.T) {
	id, err := optionalID(nil)
	assert.NoError(t, err)
	assert.Nil(t, id)

	empty := ""
	id, err = optionalID(&empty)
	assert.NoError(t, err)
	assert.Nil(t, id)

	bad := "nope"
	_, err = optionalID(&bad)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuizResultPercentRounds(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{3, 4, 75},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13},
		{5, 5, 100},
		{0, 7, 0},
		{1, 0, 0},
	}
	for _, tc := range cases {
		got := QuizResult{Score: tc.score, TotalQuestions: tc.total}.Percent()
		assert.Equal(t, tc.want, got, "%d/%d", tc.score, tc.total)
	}
}
