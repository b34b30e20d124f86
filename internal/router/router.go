package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/electionwatch/atlas-backend/internal/handlers"
	"github.com/electionwatch/atlas-backend/internal/metrics"
	"github.com/electionwatch/atlas-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	ah := handlers.NewAtlasHandlers(deps)

	r.Mount("/atlas", ah.AtlasRoutes())
	r.Handle("/metrics", metrics.Handler())
	return r
}
