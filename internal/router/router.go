package router

import (
	"log/slog"
	"net/http"

	_ "birthday-reminders/docs"
	mem "birthday-reminders/internal/adapters/storage/memory"
	"birthday-reminders/internal/domain/birthdays"
	"birthday-reminders/internal/domain/users"
	"birthday-reminders/internal/middleware"
	"birthday-reminders/internal/ports/auth"
	"birthday-reminders/internal/ports/images"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcionales: si no vienen, in-memory.
	BirthdayRepo birthdays.Repository
	UserRepo     users.Repository

	// Puede ser nil: crear/editar con imagen devuelve 502.
	Uploader images.Uploader

	// Puede ser nil: sin cookie de sesión (solo Bearer / modo dev).
	Sessions *middleware.SessionManager

	Logger *slog.Logger

	AllowedOrigins []string
	RateLimit      middleware.RateLimitOptions
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recover)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier, opts.Sessions))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	birthdayRepo := opts.BirthdayRepo
	if birthdayRepo == nil {
		birthdayRepo = mem.NewBirthdayRepo()
	}
	userRepo := opts.UserRepo
	if userRepo == nil {
		userRepo = mem.NewUserRepo()
	}

	// Services por módulo
	birthdaysSvc := birthdays.NewService(birthdayRepo, opts.Uploader)
	usersSvc := users.NewService(userRepo)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, opts.AuthVerifier, opts.Sessions, middleware.RateLimit(opts.RateLimit))
	birthdays.RegisterRoutes(r, birthdaysSvc)

	return r
}
