package handler

import (
	"net/http"
	"time"

	"github.com/everydog-league/api/internal/metrics"
	"github.com/everydog-league/api/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Logger             zerolog.Logger
	CORSOrigins        []string
	RateLimitPerMinute int
	Store              Pinger

	Events     *service.EventService
	Newsletter *service.NewsletterService
	Contact    *service.ContactService
}

// NewRouter builds the full HTTP surface: the /api routes plus /health and
// /metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	events := NewEventHandler(cfg.Events)
	community := NewCommunityHandler(cfg.Newsletter, cfg.Contact)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestID(cfg.Logger))
	r.Use(Tracing)
	r.Use(metrics.HTTPMiddleware)
	r.Use(Logger)
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(RequestSize(MaxBodySize))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", Health(cfg.Store, 2*time.Second))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/", Root)
		r.Get("/events", events.ListEvents)
		r.Get("/events/{event_id}", events.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(cfg.RateLimitPerMinute))
			r.Post("/events/{event_id}/register", events.Register)
			r.Post("/newsletter", community.Subscribe)
			r.Post("/contact", community.Contact)
		})
	})

	return r
}
