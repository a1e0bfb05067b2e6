package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/timeclock-go/internal/config"
	"github.com/cmlabs-hris/timeclock-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Employee  EmployeeHandler
	TimeEntry TimeEntryHandler
	Vacation  VacationHandler
	Holiday   HolidayHandler
	Report    ReportHandler
	Realtime  RealtimeHandler
}

func NewRouter(cfg *config.Config, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timeclock"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
		// kiosk connectivity probes
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/ping"
		},
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))

	r.Route("/api/v1", func(r chi.Router) {
		// SSE authenticates with its own short-lived token
		r.Get("/realtime/stream", h.Realtime.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Post("/realtime/token", h.Realtime.GetSSEToken)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employee.List)
				r.Get("/{id}", h.Employee.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Employee.Create)
					r.Patch("/{id}/rate", h.Employee.UpdateRate)
				})
			})

			r.Route("/time-entries", func(r chi.Router) {
				r.Get("/", h.TimeEntry.List)
				r.Get("/open", h.TimeEntry.FindOpen)
				r.Post("/clock-in", h.TimeEntry.ClockIn)
				r.Patch("/{id}/clock-out", h.TimeEntry.ClockOut)
				r.Patch("/{id}/break", h.TimeEntry.SetBreak)
			})

			r.Route("/vacation-days", func(r chi.Router) {
				r.Get("/", h.Vacation.List)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Vacation.Create)
					r.Delete("/{id}", h.Vacation.Delete)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.Holiday.List)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Holiday.Create)
					r.Post("/import", h.Holiday.Import)
					r.Delete("/{id}", h.Holiday.Delete)
				})
			})

			// Admin only
			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/monthly", h.Report.Monthly)
				r.Get("/monthly/export", h.Report.ExportMonthly)
				r.Get("/employees/{id}", h.Report.EmployeeDetail)
				r.Get("/employees/{id}/export", h.Report.ExportEmployeeDetail)
				r.Get("/unclosed", h.Report.Unclosed)
				r.Post("/unclosed/{id}/close", h.Report.CloseUnclosed)
				r.Get("/at-work", h.Report.AtWork)
				r.Post("/wage-calculator", h.Report.WageCalculator)
			})
		})
	})
	return r
}
