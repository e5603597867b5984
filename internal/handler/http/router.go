package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
)

func NewRouter(
	cfg *config.Config,
	JWTService jwt.Service,
	rdb redis.Cmdable,
	salaryHandler SalaryHandler,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "Retry-After", "Idempotent-Replay"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/salary", func(r chi.Router) {
			r.With(
				middleware.RateLimitPerUser(cfg.Payroll.GenerateRateLimitPerMin),
				middleware.IdempotencyKey(rdb, cfg.Redis.IdempotencyTTL),
			).Post("/generate", salaryHandler.Generate)
			r.Get("/payslips", salaryHandler.ListPayslips)
			r.Post("/generation-status", salaryHandler.GenerationStatus)

			r.Route("/records/{id}", func(r chi.Router) {
				r.Get("/statistics", salaryHandler.GetStatistics)
				r.Post("/pay", salaryHandler.CompletePayment)
			})

			r.Route("/profiles/{userId}", func(r chi.Router) {
				r.Get("/", salaryHandler.GetProfile)
				r.Put("/", salaryHandler.UpdateProfile)
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/check-in", attendanceHandler.CheckIn)
			r.Post("/check-out", attendanceHandler.CheckOut)
			r.Get("/me", attendanceHandler.GetMyAttendance)
			r.Post("/sessions/{id}/verify", attendanceHandler.VerifySession)
		})

		r.Route("/leave/requests", func(r chi.Router) {
			r.Post("/", leaveHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/approve", leaveHandler.Approve)
				r.Post("/reject", leaveHandler.Reject)
				r.Post("/cancel", leaveHandler.Cancel)
			})
		})
	})
	return r
}
