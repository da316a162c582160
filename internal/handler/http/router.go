package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, attendanceHandler AttendanceHandler, shiftHandler ShiftHandler, notificationHandler NotificationHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			ReplaceAttr: logFormat.ReplaceAttr,
		})).With(
			slog.String("app", "hris-attendance"),
			slog.String("version", "v1.0.0"),
			slog.String("env", opts.Env),
		)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
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

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Use(middleware.EmployeeRequired)

				r.Post("/punch-in", attendanceHandler.PunchIn)
				r.Post("/punch-out", attendanceHandler.PunchOut)
				r.Post("/break", attendanceHandler.PunchBreak)
				r.Get("/today", attendanceHandler.GetToday)
				r.Get("/history", attendanceHandler.GetMyHistory)
				r.Get("/quota", attendanceHandler.GetMyQuota)
				r.Get("/shift-policy", shiftHandler.GetMyPolicy)
				r.Get("/notifications", notificationHandler.ListMine)
				r.Post("/corrections/{kind}", attendanceHandler.RequestCorrection)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/attendance", func(r chi.Router) {
					r.Post("/punch-out", attendanceHandler.AdminPunchOut)
					r.Post("/corrections/{kind}/approve", attendanceHandler.ApproveCorrection)
					r.Post("/corrections/{kind}/reject", attendanceHandler.RejectCorrection)

					r.Route("/employees/{employeeID}", func(r chi.Router) {
						r.Get("/today", attendanceHandler.GetEmployeeToday)
						r.Get("/history", attendanceHandler.GetEmployeeHistory)
						r.Get("/quota", attendanceHandler.GetEmployeeQuota)
						r.Get("/notifications", notificationHandler.ListForEmployee)
					})
				})

				r.Route("/shift-policies/{employeeID}", func(r chi.Router) {
					r.Get("/", shiftHandler.GetPolicy)
					r.Put("/", shiftHandler.UpsertPolicy)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	return r
}
