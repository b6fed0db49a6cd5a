// internal/httpapi/middleware.go
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"rotationhub/internal/common/metrics"
	"rotationhub/internal/models"

	"github.com/gorilla/mux"
)

type contextKey string

const actorKey contextKey = "actor"

// actorMiddleware attaches the caller's identity from the gateway-injected
// headers. Authentication happens upstream; an absent id yields the zero
// Actor and role defaults to learner.
func (s *Server) actorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := models.Actor{
			ID:   r.Header.Get("X-Actor-Id"),
			Role: models.Role(r.Header.Get("X-Actor-Role")),
		}
		if actor.Role == "" {
			actor.Role = models.RoleLearner
		}
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFrom(r *http.Request) models.Actor {
	if a, ok := r.Context().Value(actorKey).(models.Actor); ok {
		return a
	}
	return models.Actor{}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records per-route request durations.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.HTTPRequestDuration.WithLabelValues(
			route, r.Method, strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	})
}
