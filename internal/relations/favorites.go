// internal/relations/favorites.go
package relations

import (
	"context"
	"database/sql"
	"time"

	apperrors "rotationhub/internal/common/errors"
	"rotationhub/internal/common/logger"
	"rotationhub/internal/models"
)

// Store owns the favorite and review relations. Both are keyed by
// (actor, program); uniqueness is enforced at write time by the database
// constraint, never by a later deduplication pass.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "relations"}),
	}
}

// AddFavorite is idempotent: repeated calls for the same pair succeed and
// leave exactly one row.
func (s *Store) AddFavorite(ctx context.Context, actorID, programID string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM programs WHERE id = $1)`, programID).Scan(&exists)
	if err != nil {
		return apperrors.NewDatabaseError("program check", err)
	}
	if !exists {
		return apperrors.NewNotFoundError("Program", programID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO favorites (applicant_id, program_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (applicant_id, program_id) DO NOTHING`,
		actorID, programID, time.Now().UTC())
	if err != nil {
		return apperrors.NewDatabaseError("favorite insert", err)
	}
	return nil
}

// RemoveFavorite is set-semantics deletion: removing an absent pair is a
// no-op success.
func (s *Store) RemoveFavorite(ctx context.Context, actorID, programID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE applicant_id = $1 AND program_id = $2`,
		actorID, programID)
	if err != nil {
		return apperrors.NewDatabaseError("favorite delete", err)
	}
	return nil
}

// ListFavorites returns the actor's favorited programs, newest first. Each
// row joins the program so the listing is renderable on its own.
func (s *Store) ListFavorites(ctx context.Context, actorID string) ([]models.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.applicant_id, f.program_id, f.created_at,
		       p.title, p.type, p.specialty, p.hospital, p.city, p.country,
		       p.available_seats, p.fee_cents, p.is_active
		FROM favorites f
		JOIN programs p ON p.id = f.program_id
		WHERE f.applicant_id = $1
		ORDER BY f.created_at DESC`, actorID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("favorite listing", err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var (
			f         models.Favorite
			summary   models.ProgramSummary
			createdAt time.Time
		)
		if err := rows.Scan(&f.ApplicantID, &f.ProgramID, &createdAt,
			&summary.Title, &summary.Type, &summary.Specialty, &summary.Hospital,
			&summary.City, &summary.Country, &summary.AvailableSeats,
			&summary.FeeCents, &summary.IsActive); err != nil {
			return nil, apperrors.NewDatabaseError("favorite scan", err)
		}
		f.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		f.Program = &summary
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("favorite listing", err)
	}
	return favorites, nil
}
