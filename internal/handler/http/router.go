package http

import (
	"log/slog"
	"net/http"

	"github.com/clockwise-hq/attendance-backend-go/internal/handler/http/middleware"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	logger *slog.Logger,
	jwtService jwt.Service,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	scheduleHandler ScheduleHandler,
	statsHandler StatsHandler,
	reportHandler ReportHandler,
	uploadsDir string,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	// Evidence photos are served straight off disk; the URLs handed out by
	// the storage layer point here.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/entry", attendanceHandler.SubmitEntry)
				r.Post("/exit", attendanceHandler.SubmitExit)
				r.Get("/{employeeID}/day", attendanceHandler.GetDay)
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/{employeeID}", scheduleHandler.ListAssignments)
				r.Get("/{employeeID}/effective", scheduleHandler.GetEffective)
			})

			// Manager or admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)

				r.Route("/stats", func(r chi.Router) {
					r.Get("/companies/{companyID}", statsHandler.GetCompanyStats)
					r.Get("/companies/{companyID}/breakdown", statsHandler.GetCompanyBreakdown)
					r.Get("/sites/{siteID}", statsHandler.GetSiteStats)
					r.Get("/sites/{siteID}/breakdown", statsHandler.GetSiteBreakdown)
					r.Get("/establishments/{establishmentID}", statsHandler.GetEstablishmentStats)
				})

				r.Get("/reports/daily", reportHandler.ExportDaily)
			})
		})
	})

	return r
}
