// internal/httpapi/handlers_test.go
package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rotationhub/internal/availability"
	"rotationhub/internal/catalog"
	"rotationhub/internal/common/config"
	apperrors "rotationhub/internal/common/errors"
	"rotationhub/internal/common/logger"
	"rotationhub/internal/content"
	"rotationhub/internal/relations"
	"rotationhub/pkg/registry"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Path ids must be well-formed uuids to reach the services, so the
// fixtures use fixed uuid strings rather than short labels.
const (
	programID     = "7b0c9a7e-5d14-4aeb-b2f5-3a9c8e21d604"
	applicationID = "c2a1f5d8-6e3b-4f27-8c91-0b5d7e4a92c3"
)

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	cat := catalog.NewRepository(db, nil, time.Minute, log)
	engine := availability.NewEngine(db, cat, nil, log)
	rel := relations.NewStore(db, log)
	resolver := content.NewResolver(db, registry.Default(), log)

	srv := NewServer(cat, engine, rel, resolver, config.CatalogConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}, log)

	return srv, mock
}

func doRequest(srv *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func asLearner(id string) map[string]string {
	return map[string]string{"X-Actor-Id": id, "X-Actor-Role": "learner"}
}

func asAdmin(id string) map[string]string {
	return map[string]string{"X-Actor-Id": id, "X-Actor-Role": "admin"}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestClaimSeatRequiresActorHeader(t *testing.T) {
	srv, mock := newTestServer(t)

	rec := doRequest(srv, "POST", "/programs/p1/applications", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimSeatSuccess(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT total_seats, available_seats, is_active`).
		WithArgs(programID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"total_seats", "available_seats", "is_active"}).
			AddRow(5, 1, true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("learner-1", programID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE programs`).
		WithArgs(programID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(sqlmock.AnyArg(), programID, "learner-1", "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doRequest(srv, "POST", "/programs/"+programID+"/applications", "", asLearner("learner-1"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimSeatConflictWhenFull(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT total_seats, available_seats, is_active`).
		WithArgs(programID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"total_seats", "available_seats", "is_active"}).
			AddRow(5, 0, true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("learner-1", programID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	rec := doRequest(srv, "POST", "/programs/"+programID+"/applications", "", asLearner("learner-1"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "SEAT_UNAVAILABLE")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProgramForbiddenForLearner(t *testing.T) {
	srv, mock := newTestServer(t)

	rec := doRequest(srv, "POST", "/programs", `{"title":"x"}`, asLearner("learner-1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionFromTerminalStatusConflicts(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, program_id, applicant_id, status, created_at`).
		WithArgs(applicationID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "program_id", "applicant_id", "status", "created_at"}).
			AddRow(applicationID, programID, "learner-1", "rejected", time.Now().UTC()))
	mock.ExpectRollback()

	rec := doRequest(srv, "POST", "/applications/"+applicationID+"/transition",
		`{"status":"accepted"}`, asAdmin("admin-1"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ILLEGAL_TRANSITION")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionForbiddenForLearner(t *testing.T) {
	srv, mock := newTestServer(t)

	rec := doRequest(srv, "POST", "/applications/"+applicationID+"/transition",
		`{"status":"accepted"}`, asLearner("learner-1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProgramsRejectsBadQueryParam(t *testing.T) {
	srv, mock := newTestServer(t)

	rec := doRequest(srv, "GET", "/programs?minDuration=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "minDuration")

	rec = doRequest(srv, "GET", "/programs?isFree=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPrograms(t *testing.T) {
	srv, mock := newTestServer(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, title, description`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "title", "description", "type", "specialty", "hospital",
				"mentor", "city", "country", "duration_weeks", "start_date",
				"total_seats", "available_seats", "fee_cents", "is_active",
				"created_at", "updated_at", "application_count", "view_count"}).
			AddRow("p1", "Cardiology Observership", "desc", "observership",
				"cardiology", "St. Vincent", "Dr. Okafor", "Dublin", "Ireland",
				4, now, 5, 2, 0, true, now, now, 3, 40))

	rec := doRequest(srv, "GET", "/programs?specialty=cardiology&isFree=true", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cardiology Observership")
	assert.Contains(t, rec.Body.String(), `"page":1`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProgramNotFound(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT id, title, description`).
		WithArgs(programID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := doRequest(srv, "GET", "/programs/"+programID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Malformed ids can never match a row, so they answer not-found without
// touching the database instead of surfacing a driver cast error as a 500.
func TestMalformedPathIDReportsNotFound(t *testing.T) {
	srv, mock := newTestServer(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		headers map[string]string
	}{
		{"get program", "GET", "/programs/not-a-uuid", "", nil},
		{"claim seat", "POST", "/programs/not-a-uuid/applications", "", asLearner("learner-1")},
		{"get application", "GET", "/applications/definitely-not-a-uuid", "", nil},
		{"transition", "POST", "/applications/definitely-not-a-uuid/transition",
			`{"status":"accepted"}`, asAdmin("admin-1")},
		{"add favorite", "PUT", "/programs/not-a-uuid/favorite", "", asLearner("learner-1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, tt.method, tt.path, tt.body, tt.headers)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "NOT_FOUND")
		})
	}

	// No DB expectations were registered: nothing may reach the pool.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddFavoriteIdempotent(t *testing.T) {
	srv, mock := newTestServer(t)

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(programID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(`INSERT INTO favorites`).
			WithArgs("learner-1", programID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	for i := 0; i < 2; i++ {
		rec := doRequest(srv, "PUT", "/programs/"+programID+"/favorite", "", asLearner("learner-1"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertReviewRejectsBadRating(t *testing.T) {
	srv, mock := newTestServer(t)

	rec := doRequest(srv, "PUT", "/programs/"+programID+"/review",
		`{"rating":7,"comment":"excellent teaching environment"}`, asLearner("learner-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"rating"`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolvePageNotFound(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT id, slug, title`).
		WithArgs("missing-page").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "title", "created_at", "updated_at"}))

	rec := doRequest(srv, "GET", "/pages/missing-page", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSectionRequiresAdmin(t *testing.T) {
	srv, mock := newTestServer(t)

	rec := doRequest(srv, "POST", "/pages/page-1/sections",
		`{"name":"Hero","contentType":"image","payload":{"url":"x"}}`, asLearner("learner-1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{"VALIDATION_ERROR", http.StatusBadRequest},
		{"INVALID_SECTION_PAYLOAD", http.StatusBadRequest},
		{"FORBIDDEN", http.StatusForbidden},
		{"NOT_FOUND", http.StatusNotFound},
		{"SEAT_UNAVAILABLE", http.StatusConflict},
		{"DUPLICATE_APPLICATION", http.StatusConflict},
		{"PROGRAM_INACTIVE", http.StatusConflict},
		{"ILLEGAL_TRANSITION", http.StatusConflict},
		{"CAPACITY_EXCEEDED", http.StatusConflict},
		{"DATABASE_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, httpStatusFor(apperrors.ErrorCode(tt.code)))
		})
	}
}
