package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docchat/internal/handlers"
	"docchat/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Responder      handlers.Responder
	Ingestor       handlers.Ingestor
	DocumentStore  storage.DocumentStore
	MessageStore   storage.MessageStore
	VectorDeleter  handlers.VectorDeleter
	HealthChecker  handlers.CollectionChecker
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	uploadHandler := handlers.NewUploadHandler(deps.DocumentStore, deps.Ingestor)
	documentHandler := handlers.NewDocumentHandler(deps.DocumentStore)
	deleteHandler := handlers.NewDeleteDocumentHandler(deps.DocumentStore, deps.VectorDeleter, deps.CollectionName)
	chatHandler := handlers.NewChatHandler(deps.Responder, deps.MessageStore)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecker, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/documents", uploadHandler)
		r.Method(http.MethodGet, "/documents/{id}", documentHandler)
		r.Method(http.MethodDelete, "/documents/{id}", deleteHandler)
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
