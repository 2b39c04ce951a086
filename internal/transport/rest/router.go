package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/clinicore/access-management/internal"
	"github.com/clinicore/access-management/internal/access"
	"github.com/clinicore/access-management/internal/permission"
	"github.com/clinicore/access-management/internal/transport/middleware"
	"github.com/clinicore/access-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// RegisterAllRoutes wires the whole HTTP surface: health, the permission
// record API (the remote store), and the access engine API on top of it.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	cfg *internal.Config,
	accessHandler *access.Handler,
	permissionHandler *permission.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	identity := middleware.Identity(cfg.Security.JWTSecret, logger)
	requireAdmin := middleware.RequireAdmin(logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(identity)

			// Resolved module list for the calling session.
			pr.Get("/modules", accessHandler.GetMyModules)

			// Permission record store. Records applicable to the caller are
			// open to any authenticated session; everything else is admin.
			pr.Route("/permissions", func(sr chi.Router) {
				sr.Get("/mine", permissionHandler.ListMyRecords)

				sr.Group(func(ar chi.Router) {
					ar.Use(requireAdmin)
					ar.Get("/", permissionHandler.ListRecords)
					ar.Post("/", permissionHandler.UpsertRecord)
					ar.Delete("/{id}", permissionHandler.DeleteRecord)
				})
			})

			// Override administration on top of the record store.
			pr.Route("/admin/access", func(ar chi.Router) {
				ar.Use(requireAdmin)

				ar.Get("/overrides", accessHandler.GetOverrides)
				ar.Delete("/", accessHandler.ResetAll)

				ar.Route("/roles/{role}", func(rr chi.Router) {
					rr.Delete("/", accessHandler.ResetRole)
					rr.Post("/modules/{moduleID}/grant", accessHandler.GrantToRole)
					rr.Post("/modules/{moduleID}/revoke", accessHandler.RevokeFromRole)
				})

				ar.Route("/users/{username}", func(ur chi.Router) {
					ur.Delete("/", accessHandler.ResetUser)
					ur.Post("/modules/{moduleID}/grant", accessHandler.GrantToUser)
					ur.Post("/modules/{moduleID}/revoke", accessHandler.RevokeFromUser)
				})
			})
		})
	})
}
