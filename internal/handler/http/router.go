package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	File       FileHandler
	TimeSlot   TimeSlotHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method("GET", "/metrics", metrics.Handler())
	r.Get("/uploads/*", h.File.Serve)

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)

			r.Route("/login", func(r chi.Router) {
				r.Post("/", h.Auth.Login)
				r.Post("/apple-id", h.Auth.LoginWithApple)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/files", func(r chi.Router) {
				r.Post("/", h.File.Upload)
				r.Get("/{id}", h.File.Get)
			})

			r.Route("/attendances", func(r chi.Router) {
				r.Get("/me", h.Attendance.ListMine)
				r.Get("/{id}", h.Attendance.Get)
				r.Post("/{id}/sign", h.Attendance.Sign)

				// Admin only
				r.With(middleware.RequireAdmin).Put("/{id}/presence", h.Attendance.SetPresence)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Route("/groups", func(r chi.Router) {
					r.Post("/", h.TimeSlot.CreateGroup)
					r.Get("/{id}", h.TimeSlot.GetGroup)
					r.Post("/{id}/members", h.TimeSlot.AddGroupMembers)
				})

				r.Route("/time-slots", func(r chi.Router) {
					r.Post("/", h.TimeSlot.Create)
					r.Get("/", h.TimeSlot.List)
					r.Get("/{id}", h.TimeSlot.Get)
					r.Post("/{id}/attendances", h.Attendance.InitializeForTimeSlot)
					r.Get("/{id}/attendances", h.Attendance.ListForTimeSlot)
				})

				r.Get("/users/{id}/attendances", h.Attendance.ListForUser)
			})
		})
	})
	return r
}
