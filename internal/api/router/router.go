package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmillares/dental-booking-api/internal/http/handlers"
	httpmiddleware "github.com/jmillares/dental-booking-api/internal/http/middleware"
	"github.com/jmillares/dental-booking-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Auth               *handlers.AuthHandler
	Appointments       *handlers.AppointmentsHandler
	Status             *handlers.StatusHandler
	SessionMiddleware  func(http.Handler) http.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerSec    float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSec > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Get("/auth/url", cfg.Auth.AuthURL)
		public.Get("/oauth2callback", cfg.Auth.Callback)
		public.Post("/auth/logout", cfg.Auth.Logout)
		public.Get("/api/me", cfg.Auth.Me)
		public.Get("/api/calendar/status", cfg.Status.CalendarStatus)
		public.Get("/api/debug/status", cfg.Status.DebugStatus)
	})

	// Session-protected endpoints
	r.Group(func(private chi.Router) {
		private.Use(cfg.SessionMiddleware)
		private.Route("/api/appointments", func(r chi.Router) {
			r.Get("/", cfg.Appointments.List)
			r.Post("/", cfg.Appointments.Create)
			r.Get("/slots/{date}", cfg.Appointments.Slots)
			r.Put("/{id}/status", cfg.Appointments.UpdateStatus)
			r.Delete("/{id}", cfg.Appointments.Delete)
		})
	})

	return r
}
