// internal/relations/reviews_test.go
package relations

import (
	"context"
	"testing"
	"time"

	apperrors "rotationhub/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertReviewValidation(t *testing.T) {
	s, mock := newTestStore(t)

	tests := []struct {
		name    string
		rating  int
		comment string
		field   string
	}{
		{"rating too low", 0, "a perfectly valid comment", "rating"},
		{"rating too high", 6, "a perfectly valid comment", "rating"},
		{"comment too short", 4, "nice", "comment"},
		{"comment only whitespace", 4, "             ", "comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpsertReview(context.Background(), "learner-1", "p1", tt.rating, tt.comment)
			require.ErrorIs(t, err, apperrors.ErrValidation)
			var stdErr *apperrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.field, stdErr.Field)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertReviewCreatesThenReplaces(t *testing.T) {
	s, mock := newTestStore(t)

	created := time.Now().UTC().Add(-time.Hour)

	// First write inserts.
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(sqlmock.AnyArg(), "learner-1", "p1", 4, "solid teaching, long hours", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("rev-1", created))

	// Second write for the same pair lands on the conflict branch and keeps
	// the original id and creation time.
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(sqlmock.AnyArg(), "learner-1", "p1", 5, "revised: outstanding mentorship", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("rev-1", created))

	first, err := s.UpsertReview(context.Background(), "learner-1", "p1", 4, "solid teaching, long hours")
	require.NoError(t, err)
	assert.Equal(t, "rev-1", first.ID)
	assert.Equal(t, 4, first.Rating)

	second, err := s.UpsertReview(context.Background(), "learner-1", "p1", 5, "revised: outstanding mentorship")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert must replace, not duplicate")
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 5, second.Rating)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertReviewTrimsComment(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(sqlmock.AnyArg(), "learner-1", "p1", 3, "adequate rotation overall", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("rev-2", time.Now().UTC()))

	review, err := s.UpsertReview(context.Background(), "learner-1", "p1", 3, "  adequate rotation overall  ")
	require.NoError(t, err)
	assert.Equal(t, "adequate rotation overall", review.Comment)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertReviewUnknownProgram(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := s.UpsertReview(context.Background(), "learner-1", "missing", 4, "a perfectly valid comment")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReviewNotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`DELETE FROM reviews`).
		WithArgs("learner-1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteReview(context.Background(), "learner-1", "p1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReviewsByProgram(t *testing.T) {
	s, mock := newTestStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, author_id, program_id, rating, comment`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "author_id", "program_id", "rating", "comment", "created_at", "updated_at"}).
			AddRow("rev-2", "learner-2", "p1", 5, "outstanding mentorship", now, now).
			AddRow("rev-1", "learner-1", "p1", 3, "adequate rotation overall", now.Add(-time.Hour), now))

	reviews, err := s.ListReviewsByProgram(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "rev-2", reviews[0].ID)
	assert.Equal(t, 5, reviews[0].Rating)

	assert.NoError(t, mock.ExpectationsWereMet())
}
