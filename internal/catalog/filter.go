// internal/catalog/filter.go
package catalog

import (
	"fmt"
	"strings"

	apperrors "rotationhub/internal/common/errors"
	"rotationhub/internal/models"
)

// Filter is the predicate set for program listings. Every field is
// optional; an absent field imposes no constraint. Supplied predicates are
// AND-combined.
type Filter struct {
	Specialty   string             `json:"specialty"`
	Location    string             `json:"location"` // substring match on city/country
	Type        models.ProgramType `json:"type"`
	MinDuration int                `json:"minDuration"` // weeks
	MaxDuration int                `json:"maxDuration"` // weeks
	IsFree      *bool              `json:"isFree"`
	Query       string             `json:"query"` // free text: title OR description OR hospital

	Page int `json:"page"`
	Size int `json:"size"`
}

// Normalize applies listing defaults and validates the predicate set.
func (f *Filter) Normalize(defaultSize, maxSize int) error {
	f.Specialty = strings.TrimSpace(f.Specialty)
	f.Location = strings.TrimSpace(f.Location)
	f.Query = strings.TrimSpace(f.Query)

	if f.Type != "" && !models.ValidProgramTypes[f.Type] {
		return apperrors.NewValidationError("type", fmt.Sprintf("invalid program type '%s'", f.Type))
	}
	if f.MinDuration < 0 {
		return apperrors.NewValidationError("minDuration", "must not be negative")
	}
	if f.MaxDuration < 0 {
		return apperrors.NewValidationError("maxDuration", "must not be negative")
	}
	if f.MinDuration > 0 && f.MaxDuration > 0 && f.MinDuration > f.MaxDuration {
		return apperrors.NewValidationError("minDuration",
			fmt.Sprintf("minDuration (%d) > maxDuration (%d)", f.MinDuration, f.MaxDuration))
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 {
		f.Size = defaultSize
	}
	if f.Size > maxSize {
		f.Size = maxSize
	}

	return nil
}

// buildListQuery assembles the WHERE clause for the filter. Inactive
// programs are always excluded, and the ordering (start_date asc, id asc)
// keeps repeated identical queries deterministic for pagination.
func (f *Filter) buildListQuery() (string, []interface{}) {
	var (
		conditions = []string{"is_active = TRUE"}
		args       []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Specialty != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(specialty) = LOWER(%s)", arg(f.Specialty)))
	}
	if f.Location != "" {
		p := arg("%" + f.Location + "%")
		conditions = append(conditions, fmt.Sprintf("(city ILIKE %s OR country ILIKE %s)", p, p))
	}
	if f.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = %s", arg(string(f.Type))))
	}
	if f.MinDuration > 0 {
		conditions = append(conditions, fmt.Sprintf("duration_weeks >= %s", arg(f.MinDuration)))
	}
	if f.MaxDuration > 0 {
		conditions = append(conditions, fmt.Sprintf("duration_weeks <= %s", arg(f.MaxDuration)))
	}
	if f.IsFree != nil {
		if *f.IsFree {
			conditions = append(conditions, "fee_cents = 0")
		} else {
			conditions = append(conditions, "fee_cents > 0")
		}
	}
	if f.Query != "" {
		p := arg("%" + f.Query + "%")
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR hospital ILIKE %s)", p, p, p))
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, type, specialty, hospital, mentor,
		       city, country, duration_weeks, start_date, total_seats,
		       available_seats, fee_cents, is_active, created_at, updated_at,
		       application_count, view_count
		FROM programs
		WHERE %s
		ORDER BY start_date ASC, id ASC
		LIMIT %s OFFSET %s`,
		strings.Join(conditions, " AND "),
		arg(f.Size),
		arg((f.Page-1)*f.Size),
	)

	return query, args
}
