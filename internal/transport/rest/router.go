package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/drawing-management/internal/activity"
	"github.com/frahmantamala/drawing-management/internal/auth"
	"github.com/frahmantamala/drawing-management/internal/file"
	"github.com/frahmantamala/drawing-management/internal/project"
	"github.com/frahmantamala/drawing-management/internal/settings"
	"github.com/frahmantamala/drawing-management/internal/transport/middleware"
	"github.com/frahmantamala/drawing-management/internal/transport/swagger"
	"github.com/frahmantamala/drawing-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Project  *project.Handler
	File     *file.Handler
	Activity *activity.Handler
	Settings *settings.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	guard := auth.NewPolicyGuard(logger)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)

			sr.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)
				pr.Post("/logout", h.Auth.Logout)
				pr.Get("/me", h.Auth.Me)
			})
		})

		// Everything below requires a valid access token
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Use(guard.Require(auth.ActionManageUsers))
				ur.Get("/", h.User.ListUsers)
				ur.Post("/", h.User.CreateUser)
				ur.Put("/{id}", h.User.UpdateUser)
			})

			pr.Route("/projects", func(pjr chi.Router) {
				pjr.Get("/", h.Project.ListProjects)
				pjr.Get("/{id}/files", h.File.ListFiles)
				pjr.Post("/{id}/files", h.File.UploadFiles)
				pjr.Get("/{id}/assignments", h.Project.GetAssignments)

				pjr.Group(func(mr chi.Router) {
					mr.Use(guard.Require(auth.ActionManageProjects))
					mr.Post("/", h.Project.CreateProject)
					mr.Put("/{id}", h.Project.UpdateProject)
					mr.Delete("/{id}/assignments/{userID}", h.Project.UnassignUser)
				})
			})

			pr.Route("/files", func(fr chi.Router) {
				fr.Get("/{id}/download", h.File.DownloadFile)

				fr.Group(func(rr chi.Router) {
					rr.Use(guard.Require(auth.ActionReviewFiles))
					rr.Put("/{id}/status", h.File.UpdateStatus)
				})
			})

			pr.Route("/dashboard", func(dr chi.Router) {
				dr.Get("/stats", h.Activity.DashboardStats)
				dr.Get("/activity", h.Activity.RecentActivity)
			})

			pr.Route("/settings", func(sr chi.Router) {
				sr.Use(guard.Require(auth.ActionManageUsers))
				sr.Get("/", h.Settings.ListSettings)
				sr.Put("/{key}", h.Settings.UpdateSetting)
			})
		})
	})
}
