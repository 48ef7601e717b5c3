// Package api exposes the review engine over a small JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/BenWassa/vox/internal/dashboard"
	"github.com/BenWassa/vox/internal/quiz"
	"github.com/BenWassa/vox/internal/review"
	"github.com/BenWassa/vox/internal/snapshot"
	"github.com/BenWassa/vox/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const defaultMaxImportBytes = 10 << 20

// GrammarLister lists grammar points with their status
type GrammarLister interface {
	ListGrammarPoints(ctx context.Context) ([]models.GrammarPoint, error)
}

// BackupLister lists the backup history
type BackupLister interface {
	List() ([]models.BackupInfo, error)
}

// Deps are the collaborators of the API
type Deps struct {
	Engine    *review.Engine
	Dashboard *dashboard.Aggregator
	Codec     *snapshot.Codec
	Grammar   GrammarLister
	Backups   BackupLister
	Quiz      *quiz.Module
	Logger    *zap.Logger
	// MaxImportBytes caps the import body; 10 MiB when zero
	MaxImportBytes int64
}

// Server handles API requests. Engine calls are serialized: the engine has a single writer.
type Server struct {
	deps   Deps
	logger *zap.Logger
	mu     sync.Mutex
}

// NewServer creates the API server
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MaxImportBytes <= 0 {
		deps.MaxImportBytes = defaultMaxImportBytes
	}
	return &Server{deps: deps, logger: deps.Logger.Named("api")}
}

// Router builds the HTTP handler
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/card", s.handleNextCard)
		r.Post("/card/{id}/reveal", s.handleReveal)
		r.Post("/card/{id}", s.handleOutcome)
		r.Get("/card/{id}/quiz", s.handleQuiz)

		r.Get("/grammar", s.handleGrammarList)
		r.Post("/grammar/{id}", s.handleGrammarStatus)
		r.Post("/grammar/{id}/practice", s.handleGrammarPractice)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/session", s.handleSession)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Get("/backups", s.handleBackups)
	})

	return r
}
