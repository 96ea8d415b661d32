// Package router wires the HTTP surface: public auth and live-feed routes,
// the doctor-only API, and the rate-limited patient portal.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medconnect/clinic-platform/internal/appointments"
	"github.com/medconnect/clinic-platform/internal/auth"
	"github.com/medconnect/clinic-platform/internal/http/middleware"
	"github.com/medconnect/clinic-platform/internal/live"
	"github.com/medconnect/clinic-platform/internal/messages"
	"github.com/medconnect/clinic-platform/internal/observability/metrics"
	"github.com/medconnect/clinic-platform/internal/patients"
	"github.com/medconnect/clinic-platform/internal/principal"
	"github.com/medconnect/clinic-platform/internal/settings"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

// Config carries everything the router mounts.
type Config struct {
	Logger  *logging.Logger
	Metrics *metrics.ClinicMetrics

	JWTSecret          string
	CORSAllowedOrigins []string
	PortalRateLimit    float64
	PortalRateBurst    int

	Auth         *auth.Handler
	Appointments *appointments.Handler
	Patients     *patients.Handler
	Messages     *messages.Handler
	Settings     *settings.Handler
	Live         *live.Handler
}

// New builds the chi router.
func New(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.PortalRateLimit <= 0 {
		cfg.PortalRateLimit = 5
	}
	if cfg.PortalRateBurst <= 0 {
		cfg.PortalRateBurst = 10
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RequestLogger(cfg.Logger, cfg.Metrics))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", cfg.Auth.SignUp)
		r.Post("/signin", cfg.Auth.SignIn)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.JWTSecret))
			r.Post("/password", cfg.Auth.ChangePassword)
		})
	})

	// The live feed authenticates via bearer token like everything else.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecret))
		r.Get("/ws", cfg.Live.HandleWebSocket)
	})

	// Doctor-only API.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecret))
		r.Use(middleware.RequireRole(principal.RoleDoctor))

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.Appointments.List)
			r.Post("/", cfg.Appointments.Create)
			r.Get("/{id}", cfg.Appointments.Get)
			r.Delete("/{id}", cfg.Appointments.Delete)
			r.Post("/{id}/confirm", cfg.Appointments.Confirm)
			r.Post("/{id}/cancel", cfg.Appointments.Cancel)
			r.Post("/{id}/accept", cfg.Appointments.Accept)
			r.Post("/{id}/reminder", cfg.Appointments.SendReminder)
		})

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", cfg.Patients.List)
			r.Post("/", cfg.Patients.Create)
			r.Get("/directory", cfg.Patients.Directory)
			r.Get("/{id}", cfg.Patients.Get)
			r.Delete("/{id}", cfg.Patients.Delete)
			r.Post("/{id}/notes", cfg.Patients.AppendNote)
			r.Post("/{id}/files", cfg.Patients.AppendFile)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", cfg.Messages.List)
			r.Get("/unread", cfg.Messages.UnreadCount)
			r.Get("/{id}", cfg.Messages.Get)
			r.Delete("/{id}", cfg.Messages.Delete)
			r.Post("/{id}/read", cfg.Messages.MarkRead)
			r.Post("/{id}/reply", cfg.Messages.Reply)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", cfg.Settings.Get)
			r.Put("/", cfg.Settings.Save)
		})
	})

	// Patient portal: authenticated but open to any role, rate limited.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.PortalRateLimit, cfg.PortalRateBurst))
		r.Use(middleware.Authenticate(cfg.JWTSecret))

		r.Route("/portal", func(r chi.Router) {
			r.Get("/appointments", cfg.Appointments.PortalList)
			r.Post("/appointments", cfg.Appointments.PortalCreate)
			r.Post("/messages", cfg.Messages.PortalSend)
		})
	})

	return r
}
