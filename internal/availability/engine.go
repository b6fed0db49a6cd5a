// internal/availability/engine.go
package availability

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"rotationhub/internal/catalog"
	apperrors "rotationhub/internal/common/errors"
	"rotationhub/internal/common/logger"
	"rotationhub/internal/common/metrics"
	"rotationhub/internal/models"

	"github.com/google/uuid"
)

// StatusNotifier delivers a best-effort notification after a status change
// has committed. Implementations must not block the request path for long.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, app *models.Application)
}

// Engine is the sole serialization point for available_seats. Claims,
// releases and admin resizes all go through it; each mutation runs inside
// one transaction with the program row locked.
type Engine struct {
	db       *sql.DB
	catalog  *catalog.Repository
	notifier StatusNotifier // nil disables notifications
	logger   logger.Logger
}

func NewEngine(db *sql.DB, cat *catalog.Repository, notifier StatusNotifier, log logger.Logger) *Engine {
	return &Engine{
		db:       db,
		catalog:  cat,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"component": "availability"}),
	}
}

// ClaimSeat reserves one seat on a program and creates a pending
// application as a single atomic unit. Exactly one of two concurrent claims
// on the last seat succeeds; the other observes SEAT_UNAVAILABLE.
func (e *Engine) ClaimSeat(ctx context.Context, programID, applicantID string) (app *models.Application, err error) {
	start := time.Now()
	defer func() {
		metrics.OperationDuration.WithLabelValues("claim_seat").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.OperationErrors.WithLabelValues("claim_seat", string(apperrors.CodeOf(err))).Inc()
		}
	}()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseError("claim transaction begin", err)
	}
	defer tx.Rollback()

	var (
		totalSeats     int
		availableSeats int
		isActive       bool
	)
	err = tx.QueryRowContext(ctx, `
		SELECT total_seats, available_seats, is_active
		FROM programs
		WHERE id = $1
		FOR UPDATE`, programID).Scan(&totalSeats, &availableSeats, &isActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, e.claimFailed(programID, apperrors.NewNotFoundError("Program", programID))
		}
		return nil, apperrors.NewDatabaseError("program lock", err)
	}

	if !isActive {
		return nil, e.claimFailed(programID, apperrors.NewProgramInactiveError(programID))
	}

	// Re-application is only permitted after a rejection, so any pending,
	// waitlisted or accepted row blocks a new claim.
	var blocked bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE applicant_id = $1 AND program_id = $2
			  AND status IN ('pending', 'waitlisted', 'accepted')
		)`, applicantID, programID).Scan(&blocked)
	if err != nil {
		return nil, apperrors.NewDatabaseError("duplicate check", err)
	}
	if blocked {
		return nil, e.claimFailed(programID, apperrors.NewDuplicateApplicationError(applicantID, programID))
	}

	if availableSeats <= 0 {
		return nil, e.claimFailed(programID, apperrors.NewSeatUnavailableError(programID))
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE programs
		SET available_seats = available_seats - 1,
		    application_count = application_count + 1,
		    updated_at = $2
		WHERE id = $1`, programID, now)
	if err != nil {
		return nil, apperrors.NewDatabaseError("seat decrement", err)
	}

	app = &models.Application{
		ID:              uuid.New().String(),
		ProgramID:       programID,
		ApplicantID:     applicantID,
		Status:          models.StatusPending,
		CreatedAt:       now.Format(time.RFC3339),
		StatusChangedAt: now.Format(time.RFC3339),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO applications (id, program_id, applicant_id, status, created_at, status_changed_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		app.ID, app.ProgramID, app.ApplicantID, app.Status, now,
	)
	if err != nil {
		return nil, apperrors.NewDatabaseError("application insert", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewDatabaseError("claim commit", err)
	}

	e.catalog.InvalidateCache(ctx, programID)
	metrics.SeatClaimsTotal.WithLabelValues("success").Inc()
	e.auditLog(ctx, "seat_claimed", "application", app.ID, map[string]interface{}{
		"programId":   programID,
		"applicantId": applicantID,
	})

	e.logger.Info("seat claimed", map[string]interface{}{
		"applicationId": app.ID,
		"programId":     programID,
		"applicantId":   applicantID,
	})

	return app, nil
}

func (e *Engine) claimFailed(programID string, err *apperrors.StandardError) error {
	metrics.SeatClaimsTotal.WithLabelValues(string(err.Code)).Inc()
	return err
}

// TransitionApplication moves an application through the status state
// machine. Entering rejected releases the held seat in the same
// transaction; a release that would exceed total capacity refuses the whole
// transition.
func (e *Engine) TransitionApplication(ctx context.Context, applicationID string, to models.ApplicationStatus, actor models.Actor) (result *models.Application, err error) {
	start := time.Now()
	defer func() {
		metrics.OperationDuration.WithLabelValues("transition").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.OperationErrors.WithLabelValues("transition", string(apperrors.CodeOf(err))).Inc()
		}
	}()

	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError(string(models.RoleAdmin))
	}
	if to != models.StatusAccepted && to != models.StatusRejected && to != models.StatusWaitlisted {
		return nil, apperrors.NewValidationError("status", "unknown target status")
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseError("transition transaction begin", err)
	}
	defer tx.Rollback()

	var (
		app       models.Application
		createdAt time.Time
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, program_id, applicant_id, status, created_at
		FROM applications
		WHERE id = $1
		FOR UPDATE`, applicationID).Scan(
		&app.ID, &app.ProgramID, &app.ApplicantID, &app.Status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Application", applicationID)
		}
		return nil, apperrors.NewDatabaseError("application lock", err)
	}
	app.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	from := app.Status
	if !CanTransition(from, to) {
		return nil, apperrors.NewIllegalTransitionError(string(from), string(to))
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE applications SET status = $2, status_changed_at = $3 WHERE id = $1`,
		applicationID, to, now)
	if err != nil {
		return nil, apperrors.NewDatabaseError("status update", err)
	}

	if ReleasesSeat(from, to) {
		res, err := tx.ExecContext(ctx, `
			UPDATE programs
			SET available_seats = available_seats + 1, updated_at = $2
			WHERE id = $1 AND available_seats < total_seats`,
			app.ProgramID, now)
		if err != nil {
			return nil, apperrors.NewDatabaseError("seat release", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, apperrors.NewCapacityExceededError(app.ProgramID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewDatabaseError("transition commit", err)
	}

	app.Status = to
	app.StatusChangedAt = now.Format(time.RFC3339)

	e.catalog.InvalidateCache(ctx, app.ProgramID)
	metrics.StatusTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	e.auditLog(ctx, "application_transitioned", "application", app.ID, map[string]interface{}{
		"from":    string(from),
		"to":      string(to),
		"actorId": actor.ID,
	})

	e.logger.Info("application transitioned", map[string]interface{}{
		"applicationId": app.ID,
		"from":          string(from),
		"to":            string(to),
	})

	if e.notifier != nil {
		e.notifier.NotifyStatusChange(ctx, &app)
	}

	return &app, nil
}

// ResizeProgram is the explicit admin override of total_seats. The open
// seat count shifts by the same delta and a resize below the number of
// held seats is refused.
func (e *Engine) ResizeProgram(ctx context.Context, programID string, newTotal int, actor models.Actor) (program *models.Program, err error) {
	start := time.Now()
	defer func() {
		metrics.OperationDuration.WithLabelValues("resize").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.OperationErrors.WithLabelValues("resize", string(apperrors.CodeOf(err))).Inc()
		}
	}()

	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError(string(models.RoleAdmin))
	}
	if newTotal <= 0 {
		return nil, apperrors.NewValidationError("totalSeats", "must be a positive integer")
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseError("resize transaction begin", err)
	}
	defer tx.Rollback()

	var totalSeats, availableSeats int
	err = tx.QueryRowContext(ctx, `
		SELECT total_seats, available_seats
		FROM programs
		WHERE id = $1
		FOR UPDATE`, programID).Scan(&totalSeats, &availableSeats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Program", programID)
		}
		return nil, apperrors.NewDatabaseError("program lock", err)
	}

	newAvailable := availableSeats + (newTotal - totalSeats)
	if newAvailable < 0 {
		return nil, apperrors.NewValidationError("totalSeats",
			"held seats exceed the requested capacity")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE programs
		SET total_seats = $2, available_seats = $3, updated_at = $4
		WHERE id = $1`,
		programID, newTotal, newAvailable, time.Now().UTC())
	if err != nil {
		return nil, apperrors.NewDatabaseError("program resize", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewDatabaseError("resize commit", err)
	}

	e.catalog.InvalidateCache(ctx, programID)
	e.auditLog(ctx, "program_resized", "program", programID, map[string]interface{}{
		"totalSeats":     newTotal,
		"availableSeats": newAvailable,
		"actorId":        actor.ID,
	})

	return e.catalog.GetByID(ctx, programID)
}

// GetApplication loads a single application row.
func (e *Engine) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	row := e.db.QueryRowContext(ctx, `
		SELECT id, program_id, applicant_id, status, created_at, status_changed_at
		FROM applications
		WHERE id = $1`, id)

	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Application", id)
		}
		return nil, apperrors.NewDatabaseError("application lookup", err)
	}
	return app, nil
}

// ListApplicationsByProgram returns a program's applications, newest first.
func (e *Engine) ListApplicationsByProgram(ctx context.Context, programID string) ([]models.Application, error) {
	return e.listApplications(ctx, `
		SELECT id, program_id, applicant_id, status, created_at, status_changed_at
		FROM applications
		WHERE program_id = $1
		ORDER BY created_at DESC`, programID)
}

// ListApplicationsByApplicant returns an applicant's applications, newest first.
func (e *Engine) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]models.Application, error) {
	return e.listApplications(ctx, `
		SELECT id, program_id, applicant_id, status, created_at, status_changed_at
		FROM applications
		WHERE applicant_id = $1
		ORDER BY created_at DESC`, applicantID)
}

func (e *Engine) listApplications(ctx context.Context, query string, arg interface{}) ([]models.Application, error) {
	rows, err := e.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, apperrors.NewDatabaseError("application listing", err)
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("application scan", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("application listing", err)
	}
	return apps, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app             models.Application
		createdAt       time.Time
		statusChangedAt time.Time
	)
	err := row.Scan(&app.ID, &app.ProgramID, &app.ApplicantID, &app.Status,
		&createdAt, &statusChangedAt)
	if err != nil {
		return nil, err
	}
	app.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	app.StatusChangedAt = statusChangedAt.UTC().Format(time.RFC3339)
	return &app, nil
}

// auditLog inserts an audit row outside the mutating transaction.
// Non-critical; failures are logged and swallowed.
func (e *Engine) auditLog(ctx context.Context, eventType, resourceType, resourceID string, details map[string]interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	_, err = e.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType, resourceType, resourceID, detailsJSON, time.Now().UTC())
	if err != nil {
		e.logger.Warn("audit log insert failed", map[string]interface{}{
			"eventType":  eventType,
			"resourceId": resourceID,
			"error":      err.Error(),
		})
	}
}
