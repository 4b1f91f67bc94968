package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/futig/deck-backend/internal/api/docs"
	"github.com/futig/deck-backend/internal/api/middleware"
	presentationapi "github.com/futig/deck-backend/internal/api/presentation"
	userapi "github.com/futig/deck-backend/internal/api/user"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(presentationHandler *presentationapi.Handler, userHandler *userapi.Handler, specPath string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(60 * time.Second)) // Default timeout

	// Swagger documentation endpoints
	docs.RegisterRoutes(r, specPath)

	// Register routes
	presentationapi.RegisterRoutes(r, presentationHandler)
	userapi.RegisterRoutes(r, userHandler)

	return r
}
