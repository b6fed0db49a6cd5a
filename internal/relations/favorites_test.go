// internal/relations/favorites_test.go
package relations

import (
	"context"
	"testing"
	"time"

	apperrors "rotationhub/internal/common/errors"
	"rotationhub/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(db, logger.NewTestLogger(t)), mock
}

func TestAddFavoriteIsIdempotent(t *testing.T) {
	s, mock := newTestStore(t)

	// Three calls for the same pair all succeed; the conflict clause leaves
	// a single row behind.
	for i := 0; i < 3; i++ {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		affected := int64(1)
		if i > 0 {
			affected = 0
		}
		mock.ExpectExec(`INSERT INTO favorites`).
			WithArgs("learner-1", "p1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, affected))
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddFavorite(context.Background(), "learner-1", "p1"))
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddFavoriteUnknownProgram(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := s.AddFavorite(context.Background(), "learner-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveFavoriteAbsentPairIsNoOp(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`DELETE FROM favorites`).
		WithArgs("learner-1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.RemoveFavorite(context.Background(), "learner-1", "p1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFavoritesNewestFirst(t *testing.T) {
	s, mock := newTestStore(t)

	now := time.Now().UTC()
	cols := []string{"applicant_id", "program_id", "created_at",
		"title", "type", "specialty", "hospital", "city", "country",
		"available_seats", "fee_cents", "is_active"}
	mock.ExpectQuery(`FROM favorites f\s+JOIN programs p ON p.id = f.program_id`).
		WithArgs("learner-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("learner-1", "p2", now,
				"Neurology Clerkship", "clerkship", "neurology",
				"Royal Free", "London", "UK", 2, int64(0), true).
			AddRow("learner-1", "p1", now.Add(-time.Hour),
				"Cardiology Observership", "observership", "cardiology",
				"St. Vincent", "Dublin", "Ireland", 0, int64(150000), true))

	favorites, err := s.ListFavorites(context.Background(), "learner-1")
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, "p2", favorites[0].ProgramID)
	assert.Equal(t, "p1", favorites[1].ProgramID)

	require.NotNil(t, favorites[0].Program)
	assert.Equal(t, "Neurology Clerkship", favorites[0].Program.Title)
	assert.Equal(t, 2, favorites[0].Program.AvailableSeats)
	require.NotNil(t, favorites[1].Program)
	assert.Equal(t, int64(150000), favorites[1].Program.FeeCents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFavoritesEmpty(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`FROM favorites f\s+JOIN programs p ON p.id = f.program_id`).
		WithArgs("learner-1").
		WillReturnRows(sqlmock.NewRows([]string{"applicant_id", "program_id", "created_at",
			"title", "type", "specialty", "hospital", "city", "country",
			"available_seats", "fee_cents", "is_active"}))

	favorites, err := s.ListFavorites(context.Background(), "learner-1")
	require.NoError(t, err)
	assert.Empty(t, favorites)

	assert.NoError(t, mock.ExpectationsWereMet())
}
