// internal/relations/reviews.go
package relations

import (
	"context"
	"strings"
	"time"

	apperrors "rotationhub/internal/common/errors"
	"rotationhub/internal/models"

	"github.com/google/uuid"
)

const minCommentLength = 10

// UpsertReview creates or replaces the actor's review of a program.
// Uniqueness on (author, program) is enforced by the insert itself; a
// second call updates rating and comment in place.
func (s *Store) UpsertReview(ctx context.Context, actorID, programID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating", "must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len(comment) < minCommentLength {
		return nil, apperrors.NewValidationError("comment", "must be at least 10 characters")
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM programs WHERE id = $1)`, programID).Scan(&exists)
	if err != nil {
		return nil, apperrors.NewDatabaseError("program check", err)
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("Program", programID)
	}

	now := time.Now().UTC()
	review := &models.Review{
		AuthorID:  actorID,
		ProgramID: programID,
		Rating:    rating,
		Comment:   comment,
		UpdatedAt: now.Format(time.RFC3339),
	}

	var createdAt time.Time
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO reviews (id, author_id, program_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (author_id, program_id)
		DO UPDATE SET rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		uuid.New().String(), actorID, programID, rating, comment, now,
	).Scan(&review.ID, &createdAt)
	if err != nil {
		return nil, apperrors.NewDatabaseError("review upsert", err)
	}
	review.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	s.logger.Info("review upserted", map[string]interface{}{
		"reviewId":  review.ID,
		"authorId":  actorID,
		"programId": programID,
		"rating":    rating,
	})

	return review, nil
}

// DeleteReview removes the actor's review of a program.
func (s *Store) DeleteReview(ctx context.Context, actorID, programID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM reviews WHERE author_id = $1 AND program_id = $2`,
		actorID, programID)
	if err != nil {
		return apperrors.NewDatabaseError("review delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("Review", actorID+"/"+programID)
	}
	return nil
}

// ListReviewsByProgram returns a program's reviews, newest first.
func (s *Store) ListReviewsByProgram(ctx context.Context, programID string) ([]models.Review, error) {
	return s.listReviews(ctx, `
		SELECT id, author_id, program_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE program_id = $1
		ORDER BY created_at DESC`, programID)
}

// ListReviewsByAuthor returns an author's reviews, newest first.
func (s *Store) ListReviewsByAuthor(ctx context.Context, authorID string) ([]models.Review, error) {
	return s.listReviews(ctx, `
		SELECT id, author_id, program_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE author_id = $1
		ORDER BY created_at DESC`, authorID)
}

func (s *Store) listReviews(ctx context.Context, query string, arg interface{}) ([]models.Review, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, apperrors.NewDatabaseError("review listing", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var (
			r         models.Review
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.ProgramID, &r.Rating,
			&r.Comment, &createdAt, &updatedAt); err != nil {
			return nil, apperrors.NewDatabaseError("review scan", err)
		}
		r.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		r.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("review listing", err)
	}
	return reviews, nil
}
