// internal/catalog/repository.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	apperrors "rotationhub/internal/common/errors"
	"rotationhub/internal/common/logger"
	"rotationhub/internal/common/metrics"
	"rotationhub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const programCacheKeyPrefix = "program:"

// Repository is the catalog store for program records. Seat counters are
// read here but never written; claim/release/resize arithmetic lives in the
// availability engine.
type Repository struct {
	db       *sql.DB
	cache    *redis.Client // nil disables caching
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewRepository(db *sql.DB, cache *redis.Client, cacheTTL time.Duration, log logger.Logger) *Repository {
	return &Repository{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// CreateInput carries the admin-supplied fields for a new program.
type CreateInput struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Type          models.ProgramType `json:"type"`
	Specialty     string             `json:"specialty"`
	Hospital      string             `json:"hospital"`
	Mentor        string             `json:"mentor"`
	City          string             `json:"city"`
	Country       string             `json:"country"`
	DurationWeeks int                `json:"durationWeeks"`
	StartDate     string             `json:"startDate"`
	TotalSeats    int                `json:"totalSeats"`
	FeeCents      int64              `json:"feeCents"`
}

func (in *CreateInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperrors.NewValidationError("title", "must not be empty")
	}
	if !models.ValidProgramTypes[in.Type] {
		return apperrors.NewValidationError("type", "unknown program type")
	}
	if in.DurationWeeks <= 0 {
		return apperrors.NewValidationError("durationWeeks", "must be a positive integer")
	}
	if in.TotalSeats <= 0 {
		return apperrors.NewValidationError("totalSeats", "must be a positive integer")
	}
	if in.FeeCents < 0 {
		return apperrors.NewValidationError("feeCents", "must not be negative")
	}
	if _, err := time.Parse("2006-01-02", in.StartDate); err != nil {
		return apperrors.NewValidationError("startDate", "must be an ISO date (YYYY-MM-DD)")
	}
	return nil
}

// Create inserts a new program. All seats start open.
func (r *Repository) Create(ctx context.Context, in *CreateInput) (*models.Program, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &models.Program{
		ID:             uuid.New().String(),
		Title:          in.Title,
		Description:    in.Description,
		Type:           in.Type,
		Specialty:      in.Specialty,
		Hospital:       in.Hospital,
		Mentor:         in.Mentor,
		City:           in.City,
		Country:        in.Country,
		DurationWeeks:  in.DurationWeeks,
		StartDate:      in.StartDate,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
		FeeCents:       in.FeeCents,
		IsActive:       true,
		CreatedAt:      now.Format(time.RFC3339),
		UpdatedAt:      now.Format(time.RFC3339),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO programs (
			id, title, description, type, specialty, hospital, mentor,
			city, country, duration_weeks, start_date, total_seats,
			available_seats, fee_cents, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)`,
		p.ID, p.Title, p.Description, p.Type, p.Specialty, p.Hospital, p.Mentor,
		p.City, p.Country, p.DurationWeeks, p.StartDate, p.TotalSeats,
		p.AvailableSeats, p.FeeCents, p.IsActive, now,
	)
	if err != nil {
		return nil, apperrors.NewDatabaseError("program insert", err)
	}

	r.logger.Info("program created", map[string]interface{}{
		"programId":  p.ID,
		"title":      p.Title,
		"totalSeats": p.TotalSeats,
	})

	return p, nil
}

// GetByID loads a single program, reading through the redis cache when one
// is configured.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Program, error) {
	if r.cache != nil {
		if val, err := r.cache.Get(ctx, programCacheKeyPrefix+id).Result(); err == nil {
			var p models.Program
			if err := json.Unmarshal([]byte(val), &p); err == nil {
				metrics.ProgramCacheHits.WithLabelValues("hit").Inc()
				return &p, nil
			}
		}
		metrics.ProgramCacheHits.WithLabelValues("miss").Inc()
	}

	p, err := r.getByIDUncached(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			r.cache.Set(ctx, programCacheKeyPrefix+p.ID, data, r.cacheTTL)
		}
	}

	return p, nil
}

func (r *Repository) getByIDUncached(ctx context.Context, id string) (*models.Program, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, type, specialty, hospital, mentor,
		       city, country, duration_weeks, start_date, total_seats,
		       available_seats, fee_cents, is_active, created_at, updated_at,
		       application_count, view_count
		FROM programs
		WHERE id = $1`, id)

	p, err := scanProgram(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Program", id)
		}
		return nil, apperrors.NewDatabaseError("program lookup", err)
	}
	return p, nil
}

// List returns active programs matching the filter, ordered by start date
// ascending with id as a stable tiebreak.
func (r *Repository) List(ctx context.Context, f *Filter) ([]models.Program, error) {
	query, args := f.buildListQuery()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewDatabaseError("program listing", err)
	}
	defer rows.Close()

	programs := []models.Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("program scan", err)
		}
		programs = append(programs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("program listing", err)
	}

	return programs, nil
}

// Deactivate flips the active flag; existing applications are untouched.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE programs SET is_active = FALSE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return apperrors.NewDatabaseError("program deactivate", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("Program", id)
	}

	r.InvalidateCache(ctx, id)
	r.logger.Info("program deactivated", map[string]interface{}{"programId": id})
	return nil
}

// IncrementViewCount bumps the read-side view counter. Non-critical; errors
// are logged, not surfaced.
func (r *Repository) IncrementViewCount(ctx context.Context, id string) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE programs SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		r.logger.Warn("view count update failed", map[string]interface{}{
			"programId": id,
			"error":     err.Error(),
		})
	}
}

// InvalidateCache drops the cached copy of a program after any mutation.
func (r *Repository) InvalidateCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, programCacheKeyPrefix+id).Err(); err != nil {
		r.logger.Warn("program cache invalidation failed", map[string]interface{}{
			"programId": id,
			"error":     err.Error(),
		})
	}
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProgram(row rowScanner) (*models.Program, error) {
	var (
		p         models.Program
		startDate time.Time
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Type, &p.Specialty, &p.Hospital,
		&p.Mentor, &p.City, &p.Country, &p.DurationWeeks, &startDate,
		&p.TotalSeats, &p.AvailableSeats, &p.FeeCents, &p.IsActive,
		&createdAt, &updatedAt, &p.ApplicationCount, &p.ViewCount,
	)
	if err != nil {
		return nil, err
	}

	p.StartDate = startDate.Format("2006-01-02")
	p.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	p.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return &p, nil
}
