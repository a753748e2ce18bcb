package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carebridge/interpreter-booking/internal/auth"
	"github.com/carebridge/interpreter-booking/internal/dashboard"
	"github.com/carebridge/interpreter-booking/internal/http/handlers"
	httpmiddleware "github.com/carebridge/interpreter-booking/internal/http/middleware"
	"github.com/carebridge/interpreter-booking/internal/interpreters"
	"github.com/carebridge/interpreter-booking/internal/patients"
	"github.com/carebridge/interpreter-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	TokenIssuer         *auth.TokenIssuer
	AuthHandler         *auth.Handler
	PatientsHandler     *patients.Handler
	InterpretersHandler *interpreters.Handler
	RequestsHandler     *handlers.RequestsHandler
	DashboardHandler    *dashboard.StatsHandler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/api/health", handlers.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AuthHandler != nil {
			public.Post("/api/auth/register", cfg.AuthHandler.Register)
			public.Post("/api/auth/login", cfg.AuthHandler.Login)
		}
	})

	// Authenticated endpoints
	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.Authenticate(cfg.TokenIssuer))

		if cfg.AuthHandler != nil {
			authed.Get("/api/auth/me", cfg.AuthHandler.Me)
		}

		// Staff surface
		authed.Group(func(staff chi.Router) {
			staff.Use(httpmiddleware.RequireStaff)

			if cfg.PatientsHandler != nil {
				staff.Get("/api/fhir/patients/search", cfg.PatientsHandler.SearchDirectory)
				staff.Get("/api/fhir/patients/{fhirID}", cfg.PatientsHandler.GetDirectoryPatient)
				staff.Post("/api/patients/sync/{fhirID}", cfg.PatientsHandler.Sync)
				staff.Post("/api/patients/create", cfg.PatientsHandler.Create)
				staff.Get("/api/patients", cfg.PatientsHandler.List)
				staff.Get("/api/patients/{patientID}", cfg.PatientsHandler.Get)
			}
			if cfg.InterpretersHandler != nil {
				staff.Post("/api/interpreters", cfg.InterpretersHandler.Create)
			}
			if cfg.RequestsHandler != nil {
				staff.Post("/api/requests", cfg.RequestsHandler.Create)
				staff.Get("/api/requests", cfg.RequestsHandler.List)
				staff.Get("/api/requests/{requestID}", cfg.RequestsHandler.Get)
				staff.Post("/api/requests/{requestID}/cancel", cfg.RequestsHandler.Cancel)
			}
			if cfg.DashboardHandler != nil {
				staff.Get("/api/dashboard/stats", cfg.DashboardHandler.GetStats)
			}
		})

		// Shared directory of interpreters (any authenticated principal)
		if cfg.InterpretersHandler != nil {
			authed.Get("/api/interpreters", cfg.InterpretersHandler.List)
		}

		// Interpreter surface
		authed.Group(func(interp chi.Router) {
			interp.Use(httpmiddleware.RequireInterpreter)

			if cfg.InterpretersHandler != nil {
				interp.Get("/api/interpreters/me", cfg.InterpretersHandler.Me)
				interp.Patch("/api/interpreters/me", cfg.InterpretersHandler.UpdateMe)
			}
			if cfg.RequestsHandler != nil {
				interp.Get("/api/interpreter/requests/pending", cfg.RequestsHandler.Pending)
				interp.Get("/api/interpreter/requests/my", cfg.RequestsHandler.My)
				interp.Post("/api/interpreter/requests/{requestID}/accept", cfg.RequestsHandler.Accept)
				interp.Post("/api/interpreter/requests/{requestID}/complete", cfg.RequestsHandler.Complete)
			}
		})

		// Profile detail stays behind staff so interpreters cannot browse
		// each other's contact details.
		if cfg.InterpretersHandler != nil {
			authed.With(httpmiddleware.RequireStaff).Get("/api/interpreters/{interpreterID}", cfg.InterpretersHandler.Get)
		}
	})

	return r
}
