// internal/httpapi/handlers.go
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"rotationhub/internal/catalog"
	apperrors "rotationhub/internal/common/errors"
	"rotationhub/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ==========================
// 1. Response helpers
// ==========================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Details string              `json:"details,omitempty"`
	Field   string              `json:"field,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{
		Code:    apperrors.ErrCodeDatabase,
		Message: "internal error",
	}
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		resp.Code = stdErr.Code
		resp.Message = stdErr.Message
		resp.Details = stdErr.Details
		resp.Field = stdErr.Field
	}

	status := httpStatusFor(resp.Code)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed", map[string]interface{}{
			"path":   r.URL.Path,
			"method": r.Method,
		})
		// Infrastructure details stay out of the response body.
		resp.Details = ""
	}

	writeJSON(w, status, resp)
}

func httpStatusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeInvalidSectionPayload:
		return http.StatusBadRequest
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeSeatUnavailable,
		apperrors.ErrCodeDuplicateApplication,
		apperrors.ErrCodeProgramInactive,
		apperrors.ErrCodeIllegalTransition,
		apperrors.ErrCodeCapacityExceeded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewValidationError("body", err.Error())
	}
	return nil
}

// pathID returns the named path variable, rejecting values that are not
// well-formed uuids. A malformed id can never match a row, so it reports
// not-found rather than letting the driver surface a cast error as a 500.
func pathID(r *http.Request, name, resource string) (string, error) {
	id := mux.Vars(r)[name]
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFoundError(resource, id)
	}
	return id, nil
}

func requireActor(r *http.Request) (models.Actor, error) {
	actor := actorFrom(r)
	if actor.ID == "" {
		return actor, apperrors.NewValidationError("actor", "X-Actor-Id header is required")
	}
	return actor, nil
}

func requireAdmin(r *http.Request) (models.Actor, error) {
	actor, err := requireActor(r)
	if err != nil {
		return actor, err
	}
	if !actor.IsAdmin() {
		return actor, apperrors.NewForbiddenError(string(models.RoleAdmin))
	}
	return actor, nil
}

// ==========================
// 2. Health
// ==========================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ==========================
// 3. Program catalog
// ==========================

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := f.Normalize(s.cfg.DefaultPageSize, s.cfg.MaxPageSize); err != nil {
		s.writeError(w, r, err)
		return
	}

	programs, err := s.catalog.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"programs": programs,
		"page":     f.Page,
		"size":     f.Size,
	})
}

func filterFromQuery(r *http.Request) (*catalog.Filter, error) {
	q := r.URL.Query()
	f := &catalog.Filter{
		Specialty: q.Get("specialty"),
		Location:  q.Get("location"),
		Type:      models.ProgramType(q.Get("type")),
		Query:     q.Get("q"),
	}

	for name, dst := range map[string]*int{
		"minDuration": &f.MinDuration,
		"maxDuration": &f.MaxDuration,
		"page":        &f.Page,
		"size":        &f.Size,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(name, "must be an integer")
		}
		*dst = n
	}

	if raw := q.Get("isFree"); raw != "" {
		free, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("isFree", "must be a boolean")
		}
		f.IsFree = &free
	}

	return f, nil
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	var in catalog.CreateInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	program, err := s.catalog.Create(r.Context(), &in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, program)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Program")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	program, err := s.catalog.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.catalog.IncrementViewCount(r.Context(), id)

	writeJSON(w, http.StatusOK, program)
}

func (s *Server) handleDeactivateProgram(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := pathID(r, "id", "Program")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.catalog.Deactivate(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResizeProgram(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body struct {
		TotalSeats int `json:"totalSeats"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := pathID(r, "id", "Program")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	program, err := s.engine.ResizeProgram(r.Context(), id, body.TotalSeats, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// ==========================
// 4. Applications
// ==========================

func (s *Server) handleClaimSeat(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	programID, err := pathID(r, "id", "Program")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.engine.ClaimSeat(r.Context(), programID, actor.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.engine.GetApplication(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleListProgramApplications(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	programID, err := pathID(r, "id", "Program")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	apps, err := s.engine.ListApplicationsByProgram(r.Context(), programID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

func (s *Server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	apps, err := s.engine.ListApplicationsByApplicant(r.Context(), actor.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body struct {
		Status models.ApplicationStatus `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := pathID(r, "id", "Application")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.engine.TransitionApplication(r.Context(), id, body.Status, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// ==========================
// 5. Favorites and reviews
// ==========================

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	programID, err := pathID(r, "id", "Program")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.relations.AddFavorite(r.Context(), actor.ID, programID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	programID, err := pathID(r, "id", "Program")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.relations.RemoveFavorite(r.Context(), actor.ID, programID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	favorites, err := s.relations.ListFavorites(r.Context(), actor.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"favorites": favorites})
}

func (s *Server) handleUpsertReview(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	programID, err := pathID(r, "id", "Program")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	review, err := s.relations.UpsertReview(r.Context(), actor.ID, programID, body.Rating, body.Comment)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	programID, err := pathID(r, "id", "Program")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.relations.DeleteReview(r.Context(), actor.ID, programID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProgramReviews(w http.ResponseWriter, r *http.Request) {
	programID, err := pathID(r, "id", "Program")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reviews, err := s.relations.ListReviewsByProgram(r.Context(), programID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

func (s *Server) handleListMyReviews(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reviews, err := s.relations.ListReviewsByAuthor(r.Context(), actor.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// ==========================
// 6. CMS pages
// ==========================

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	var body struct {
		Slug  string `json:"slug"`
		Title string `json:"title"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.resolver.CreatePage(r.Context(), body.Slug, body.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (s *Server) handleResolvePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.resolver.ResolvePage(r.Context(), mux.Vars(r)["ref"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	var body struct {
		Name        string             `json:"name"`
		ContentType models.SectionType `json:"contentType"`
		Position    *int               `json:"position"`
		Payload     json.RawMessage    `json:"payload"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	position := -1
	if body.Position != nil {
		position = *body.Position
	}

	pageID, err := pathID(r, "id", "Page")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	section, err := s.resolver.CreateSection(r.Context(), pageID,
		body.Name, body.ContentType, position, body.Payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, section)
}

func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	var body struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	sectionID, err := pathID(r, "id", "Section")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	section, err := s.resolver.UpdateSection(r.Context(), sectionID, body.Payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, section)
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	sectionID, err := pathID(r, "id", "Section")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.resolver.DeleteSection(r.Context(), sectionID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
