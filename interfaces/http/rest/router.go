package rest

import (
	"net/http"

	"github.com/eunyuson/GRACE-sub002/infrastructure/di"
	"github.com/eunyuson/GRACE-sub002/interfaces/http/rest/handlers"
	"github.com/eunyuson/GRACE-sub002/interfaces/http/rest/middleware"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	cfg := rt.container.Config
	logger := rt.container.Logger
	errorHandler := pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(logger))

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.grace-sub002.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg, rt.container.Limiters))

		cardHandler := handlers.NewCardHandler(rt.container.CommandBus, rt.container.QueryBus, errorHandler, logger)
		linkHandler := handlers.NewLinkHandler(rt.container.CommandBus, rt.container.QueryBus, errorHandler, logger)
		suggestionHandler := handlers.NewSuggestionHandler(rt.container.Suggestions, errorHandler, logger)
		questionHandler := handlers.NewQuestionHandler(rt.container.QueryBus, errorHandler, logger)

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cardHandler.CreateCard)
			r.Get("/", cardHandler.ListCards)
			r.Get("/group", questionHandler.GroupQuestions)

			r.Route("/{cardID}", func(r chi.Router) {
				r.Get("/", cardHandler.GetCard)
				r.Get("/resolved", cardHandler.GetResolvedCard)
				r.Patch("/", cardHandler.UpdateCard)

				r.Post("/links", linkHandler.AddLink)
				r.Delete("/links", linkHandler.RemoveLink)
				r.Post("/links/pin", linkHandler.TogglePin)

				r.Post("/reactions/generate", suggestionHandler.GenerateReactions)
				r.Post("/reactions/{suggestionID}/select", suggestionHandler.SelectReaction)
				r.Post("/reactions/{suggestionID}/reject", suggestionHandler.RejectReaction)

				r.Post("/conclusions/generate", suggestionHandler.GenerateConclusions)
				r.Post("/conclusions/{candidateID}/select", suggestionHandler.SelectConclusion)

				r.Post("/scriptures/generate", suggestionHandler.RecommendScriptures)
				r.Post("/scriptures/{reflectionID}/pin", suggestionHandler.PinScripture)
				r.Post("/scriptures/{reflectionID}/reject", suggestionHandler.RejectScripture)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests. Not ready while the
// outbox still holds unacknowledged writes.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.container.Outbox.PendingCount() > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"settling"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
