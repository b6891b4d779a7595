package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	exceptionHandler ExceptionHandler,
	correctionHandler CorrectionHandler,
	scanHandler ScanHandler,
	reportHandler ReportHandler,
	auditHandler AuditHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-engine"),
		slog.String("env", opts.Env),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService))

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.List)
			r.Get("/summary", attendanceHandler.Summary)
			r.Post("/clock-in", attendanceHandler.ClockIn)
			r.Post("/clock-out", attendanceHandler.ClockOut)
			r.Post("/punches", attendanceHandler.RecordPunches)
			r.Post("/finalise", attendanceHandler.Finalise)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", attendanceHandler.Get)
				r.Post("/round", attendanceHandler.Round)
				r.Put("/punches", attendanceHandler.ReplacePunches)
				r.Post("/missed-punch", exceptionHandler.DetectMissedPunch)
			})
		})

		r.Route("/exceptions", func(r chi.Router) {
			r.Get("/", exceptionHandler.List)
			r.Post("/", exceptionHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", exceptionHandler.Get)
				r.Post("/pending", exceptionHandler.MarkPending)
				r.Post("/approve", exceptionHandler.Approve)
				r.Post("/reject", exceptionHandler.Reject)
				r.Post("/escalate", exceptionHandler.Escalate)
				r.Post("/resolve", exceptionHandler.Resolve)
			})
		})

		r.Route("/lateness", func(r chi.Router) {
			r.Post("/monitor", exceptionHandler.MonitorLateness)
			r.Post("/disciplinary", exceptionHandler.TriggerDisciplinary)
		})

		r.Route("/corrections", func(r chi.Router) {
			r.Get("/", correctionHandler.List)
			r.Post("/", correctionHandler.Submit)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", correctionHandler.Get)
				r.Post("/review", correctionHandler.StartReview)
				r.Post("/approve", correctionHandler.Approve)
				r.Post("/reject", correctionHandler.Reject)
				r.Post("/escalate", correctionHandler.Escalate)
			})
		})

		r.Route("/scans", func(r chi.Router) {
			r.Post("/expiring-shift-assignments", scanHandler.ExpiringShiftAssignments)
			r.Post("/payroll-cutoff-escalation", scanHandler.PayrollCutoffEscalation)
		})

		r.Route("/reports/{type}", func(r chi.Router) {
			r.Get("/", reportHandler.Generate)
			r.Get("/export", reportHandler.Export)
		})

		r.Get("/audit-logs", auditHandler.List)
	})

	return r
}
