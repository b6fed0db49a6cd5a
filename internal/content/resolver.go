// internal/content/resolver.go
package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"rotationhub/internal/common/database"
	apperrors "rotationhub/internal/common/errors"
	"rotationhub/internal/common/logger"
	"rotationhub/internal/models"
	"rotationhub/pkg/registry"

	"github.com/google/uuid"
)

// Resolver stores CMS pages and their typed sections. Section payloads are
// validated against the registry schema for their content type at write
// time, so ResolvePage never has to handle a shape mismatch.
type Resolver struct {
	db       *sql.DB
	registry *registry.Registry
	logger   logger.Logger
}

func NewResolver(db *sql.DB, reg *registry.Registry, log logger.Logger) *Resolver {
	return &Resolver{db: db, registry: reg, logger: log}
}

// ==========================
// 1. Pages
// ==========================

// CreatePage creates an empty page with a unique slug.
func (r *Resolver) CreatePage(ctx context.Context, slug, title string) (*models.Page, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return nil, apperrors.NewValidationError("slug", "must not be empty")
	}
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewValidationError("title", "must not be empty")
	}

	now := time.Now().UTC()
	page := &models.Page{
		ID:        uuid.New().String(),
		Slug:      slug,
		Title:     strings.TrimSpace(title),
		Sections:  []models.Section{},
		CreatedAt: now.Format(time.RFC3339),
		UpdatedAt: now.Format(time.RFC3339),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pages (id, slug, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)`,
		page.ID, page.Slug, page.Title, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.NewValidationError("slug", "already in use")
		}
		return nil, apperrors.NewDatabaseError("page insert", err)
	}

	r.logger.Info("page created", map[string]interface{}{
		"pageId": page.ID,
		"slug":   page.Slug,
	})

	return page, nil
}

// ResolvePage loads a page with its sections in stored position order. The
// ref is a page id or a slug. The id column is compared as text so one
// parameter serves both forms without a uuid cast failing on slugs.
func (r *Resolver) ResolvePage(ctx context.Context, ref string) (*models.Page, error) {
	var (
		page      models.Page
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, slug, title, created_at, updated_at
		FROM pages
		WHERE id::text = $1 OR slug = $1`,
		ref,
	).Scan(&page.ID, &page.Slug, &page.Title, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Page", ref)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("page lookup", err)
	}
	page.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	page.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)

	sections, err := r.listSections(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	page.Sections = sections

	return &page, nil
}

// ==========================
// 2. Sections
// ==========================

// CreateSection appends a validated section to a page. Position defaults to
// the end of the page when negative.
func (r *Resolver) CreateSection(ctx context.Context, pageID, name string, contentType models.SectionType, position int, payload json.RawMessage) (*models.Section, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name", "must not be empty")
	}
	if err := r.validatePayload(contentType, payload); err != nil {
		return nil, err
	}

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pages WHERE id = $1)`, pageID).Scan(&exists)
	if err != nil {
		return nil, apperrors.NewDatabaseError("page check", err)
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("Page", pageID)
	}

	now := time.Now().UTC()
	section := &models.Section{
		ID:          uuid.New().String(),
		PageID:      pageID,
		Name:        strings.TrimSpace(name),
		ContentType: contentType,
		Payload:     payload,
		CreatedAt:   now.Format(time.RFC3339),
		UpdatedAt:   now.Format(time.RFC3339),
	}

	if position >= 0 {
		section.Position = position
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO sections (id, page_id, name, content_type, position, payload, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
			section.ID, pageID, section.Name, string(contentType), position, []byte(payload), now)
	} else {
		err = r.db.QueryRowContext(ctx, `
			INSERT INTO sections (id, page_id, name, content_type, position, payload, created_at, updated_at)
			VALUES ($1, $2, $3, $4,
				(SELECT COALESCE(MAX(position), -1) + 1 FROM sections WHERE page_id = $2),
				$5, $6, $6)
			RETURNING position`,
			section.ID, pageID, section.Name, string(contentType), []byte(payload), now,
		).Scan(&section.Position)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("section insert", err)
	}

	r.touchPage(ctx, pageID, now)

	r.logger.Info("section created", map[string]interface{}{
		"sectionId":   section.ID,
		"pageId":      pageID,
		"contentType": string(contentType),
		"position":    section.Position,
	})

	return section, nil
}

// UpdateSection replaces a section's payload, revalidating it against the
// section's content type. The content type itself is immutable.
func (r *Resolver) UpdateSection(ctx context.Context, sectionID string, payload json.RawMessage) (*models.Section, error) {
	var (
		section   models.Section
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, page_id, name, content_type, position, created_at
		FROM sections
		WHERE id = $1`,
		sectionID,
	).Scan(&section.ID, &section.PageID, &section.Name, &section.ContentType,
		&section.Position, &createdAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("Section", sectionID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("section lookup", err)
	}

	if err := r.validatePayload(section.ContentType, payload); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		UPDATE sections SET payload = $2, updated_at = $3 WHERE id = $1`,
		sectionID, []byte(payload), now)
	if err != nil {
		return nil, apperrors.NewDatabaseError("section update", err)
	}

	section.Payload = payload
	section.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	section.UpdatedAt = now.Format(time.RFC3339)

	r.touchPage(ctx, section.PageID, now)

	return &section, nil
}

// DeleteSection removes a section from its page.
func (r *Resolver) DeleteSection(ctx context.Context, sectionID string) error {
	var pageID string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM sections WHERE id = $1 RETURNING page_id`, sectionID).Scan(&pageID)
	if err == sql.ErrNoRows {
		return apperrors.NewNotFoundError("Section", sectionID)
	}
	if err != nil {
		return apperrors.NewDatabaseError("section delete", err)
	}
	r.touchPage(ctx, pageID, time.Now().UTC())
	return nil
}

func (r *Resolver) listSections(ctx context.Context, pageID string) ([]models.Section, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, page_id, name, content_type, position, payload, created_at, updated_at
		FROM sections
		WHERE page_id = $1
		ORDER BY position ASC, created_at ASC`,
		pageID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("section listing", err)
	}
	defer rows.Close()

	sections := []models.Section{}
	for rows.Next() {
		var (
			s         models.Section
			payload   []byte
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&s.ID, &s.PageID, &s.Name, &s.ContentType,
			&s.Position, &payload, &createdAt, &updatedAt); err != nil {
			return nil, apperrors.NewDatabaseError("section scan", err)
		}
		s.Payload = json.RawMessage(payload)
		s.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		s.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("section listing", err)
	}
	return sections, nil
}

func (r *Resolver) validatePayload(contentType models.SectionType, payload json.RawMessage) error {
	if !r.registry.Known(string(contentType)) {
		return apperrors.NewInvalidSectionPayloadError(string(contentType), "unregistered content type")
	}
	if len(payload) == 0 {
		return apperrors.NewInvalidSectionPayloadError(string(contentType), "payload must not be empty")
	}
	msgs, err := r.registry.Validate(string(contentType), payload)
	if err != nil {
		return apperrors.NewInvalidSectionPayloadError(string(contentType), err.Error())
	}
	if len(msgs) > 0 {
		return apperrors.NewInvalidSectionPayloadError(string(contentType), strings.Join(msgs, "; "))
	}
	return nil
}

// touchPage bumps the page's updated_at. Non-critical.
func (r *Resolver) touchPage(ctx context.Context, pageID string, now time.Time) {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE pages SET updated_at = $2 WHERE id = $1`, pageID, now); err != nil {
		r.logger.Warn("failed to touch page", map[string]interface{}{
			"pageId": pageID,
			"error":  err.Error(),
		})
	}
}
