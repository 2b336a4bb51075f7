package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/batiserv/batiserv-backend/api/controllers"
	"github.com/batiserv/batiserv-backend/api/middleware"
	"github.com/batiserv/batiserv-backend/internal/auth"
	"github.com/batiserv/batiserv-backend/internal/users"
	"github.com/batiserv/batiserv-backend/internal/workspace"
	"github.com/batiserv/batiserv-backend/pkg/auth/session"
	"github.com/batiserv/batiserv-backend/pkg/config"
	"github.com/batiserv/batiserv-backend/pkg/db"
	"github.com/batiserv/batiserv-backend/pkg/logger"
	"github.com/batiserv/batiserv-backend/pkg/redis"
	"github.com/batiserv/batiserv-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	usersService users.Service,
	ws *workspace.Controller,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, redisClient, logg)).Post("/signup", controllers.AuthSignup(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/recover", controllers.AuthRecover(authService, logg))
		r.Post("/reset", controllers.AuthReset(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		// Attached per mutating route so the rule table sees the fully
		// resolved chi pattern, not the subrouter's wildcard.
		idem := middleware.Idempotency(redisClient, logg)
		editor := middleware.RequireEditor(logg)

		r.Get("/auth/me", controllers.AuthMe(authService, logg))

		// Reads are open to every authenticated role.
		r.Get("/search", controllers.WorkspaceSearch(ws, logg))
		r.Route("/reports", func(r chi.Router) {
			r.Get("/pending", controllers.PendingOrders(ws, logg))
			r.Get("/pending/digest", controllers.PendingDigest(ws, logg))
			r.Post("/export", controllers.OrdersExport(ws, logg))
			r.Post("/import", controllers.OrdersImport(logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.WorkspaceTree(ws, logg))

			// Mutations require the editor role or better.
			r.Group(func(r chi.Router) {
				r.Use(editor)

				r.With(idem).Post("/", controllers.CustomerCreate(ws, logg))
				r.Route("/{customerID}", func(r chi.Router) {
					r.Patch("/", controllers.CustomerUpdate(ws, logg))
					r.Delete("/", controllers.CustomerDelete(ws, logg))

					r.Route("/sites", func(r chi.Router) {
						r.With(idem).Post("/", controllers.SiteCreate(ws, logg))
						r.Route("/{siteID}", func(r chi.Router) {
							r.Patch("/", controllers.SiteUpdate(ws, logg))
							r.Delete("/", controllers.SiteDelete(ws, logg))
							r.With(idem).Post("/files", controllers.SiteFileUpload(ws, cfg.Upload.MaxUploadMB, logg))
							r.Delete("/files", controllers.SiteFileDetach(ws, logg))

							r.Route("/orders", func(r chi.Router) {
								r.With(idem).Post("/", controllers.OrderCreate(ws, logg))
								r.Route("/{orderID}", func(r chi.Router) {
									r.Patch("/parts/{part}", controllers.OrderPartUpdate(ws, logg))
									r.Delete("/", controllers.OrderDelete(ws, logg))
								})
							})
						})
					})
				})
			})
		})

		r.Route("/options", func(r chi.Router) {
			r.Get("/", controllers.OptionsList(ws, logg))

			r.Group(func(r chi.Router) {
				r.Use(editor)

				r.With(idem).Post("/", controllers.OptionCreate(ws, logg))
				r.Route("/{optionID}", func(r chi.Router) {
					r.Patch("/", controllers.OptionUpdate(ws, logg))
					r.Delete("/", controllers.OptionDelete(ws, logg))
					r.With(idem).Post("/files", controllers.OptionFileUpload(ws, cfg.Upload.MaxUploadMB, logg))
					r.Delete("/files", controllers.OptionFileDetach(ws, logg))
				})
			})
		})

		// The user directory is readable by everyone, managed by admins.
		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UsersList(usersService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.UsersCreate(usersService, logg))
				r.Patch("/{userID}", controllers.UsersUpdate(usersService, logg))
				r.Delete("/{userID}", controllers.UsersDelete(usersService, logg))
			})
		})
	})

	return r
}
