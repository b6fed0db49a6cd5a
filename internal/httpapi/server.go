// internal/httpapi/server.go
package httpapi

import (
	"rotationhub/internal/availability"
	"rotationhub/internal/catalog"
	"rotationhub/internal/common/config"
	"rotationhub/internal/common/logger"
	"rotationhub/internal/content"
	"rotationhub/internal/relations"

	"github.com/gorilla/mux"
)

// Server wires the core services into an HTTP surface. It owns routing and
// request decoding only; all business rules live in the services.
type Server struct {
	catalog   *catalog.Repository
	engine    *availability.Engine
	relations *relations.Store
	resolver  *content.Resolver
	cfg       config.CatalogConfig
	logger    logger.Logger
}

func NewServer(
	cat *catalog.Repository,
	engine *availability.Engine,
	rel *relations.Store,
	resolver *content.Resolver,
	cfg config.CatalogConfig,
	log logger.Logger,
) *Server {
	return &Server{
		catalog:   cat,
		engine:    engine,
		relations: rel,
		resolver:  resolver,
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "httpapi"}),
	}
}

// Router builds the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metricsMiddleware)
	r.Use(s.actorMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// Program catalog
	r.HandleFunc("/programs", s.handleListPrograms).Methods("GET")
	r.HandleFunc("/programs", s.handleCreateProgram).Methods("POST")
	r.HandleFunc("/programs/{id}", s.handleGetProgram).Methods("GET")
	r.HandleFunc("/programs/{id}/deactivate", s.handleDeactivateProgram).Methods("POST")
	r.HandleFunc("/programs/{id}/resize", s.handleResizeProgram).Methods("POST")

	// Applications
	r.HandleFunc("/programs/{id}/applications", s.handleClaimSeat).Methods("POST")
	r.HandleFunc("/programs/{id}/applications", s.handleListProgramApplications).Methods("GET")
	r.HandleFunc("/applications", s.handleListMyApplications).Methods("GET")
	r.HandleFunc("/applications/{id}", s.handleGetApplication).Methods("GET")
	r.HandleFunc("/applications/{id}/transition", s.handleTransition).Methods("POST")

	// Favorites and reviews
	r.HandleFunc("/programs/{id}/favorite", s.handleAddFavorite).Methods("PUT")
	r.HandleFunc("/programs/{id}/favorite", s.handleRemoveFavorite).Methods("DELETE")
	r.HandleFunc("/favorites", s.handleListFavorites).Methods("GET")
	r.HandleFunc("/programs/{id}/review", s.handleUpsertReview).Methods("PUT")
	r.HandleFunc("/programs/{id}/review", s.handleDeleteReview).Methods("DELETE")
	r.HandleFunc("/programs/{id}/reviews", s.handleListProgramReviews).Methods("GET")
	r.HandleFunc("/reviews", s.handleListMyReviews).Methods("GET")

	// CMS pages
	r.HandleFunc("/pages", s.handleCreatePage).Methods("POST")
	r.HandleFunc("/pages/{ref}", s.handleResolvePage).Methods("GET")
	r.HandleFunc("/pages/{id}/sections", s.handleCreateSection).Methods("POST")
	r.HandleFunc("/sections/{id}", s.handleUpdateSection).Methods("PUT")
	r.HandleFunc("/sections/{id}", s.handleDeleteSection).Methods("DELETE")

	return r
}
