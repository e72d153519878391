package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/config"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/health"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/middleware"
)

// RouterDeps collects everything the router mounts.
type RouterDeps struct {
	Users      *UserHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Orders     *OrderHandler
	Health     *health.Handler
	Verifier   middleware.TokenVerifier
	Config     *config.Config
	Logger     *slog.Logger
}

// NewRouter builds the HTTP routing tree with the full middleware stack.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recovery())
	r.Use(middleware.Tracing(deps.Config.ServiceName))
	r.Use(middleware.Metrics())
	r.Use(middleware.Logging())
	r.Use(middleware.CORS(deps.Config.HTTP.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(deps.Config.HTTP.RequestTimeout))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health/live", deps.Health.Live)
	r.Get("/health/ready", deps.Health.Ready)

	authenticate := middleware.Authenticate(deps.Verifier)
	adminOnly := middleware.RequireRole(string(domain.RoleAdmin))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", deps.Users.Register)
			r.Post("/login", deps.Users.Login)
			r.Post("/logout", deps.Users.Logout)
			r.Post("/reset-password", deps.Users.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", deps.Users.Me)
				r.Put("/me", deps.Users.UpdateMe)
				r.Put("/me/password", deps.Users.UpdatePassword)
				r.Put("/me/profile-pic", deps.Users.UpdateProfilePic)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Get("/", deps.Users.List)
				r.Get("/{id}", deps.Users.Get)
				r.Put("/{id}/role", deps.Users.UpdateRole)
				r.Delete("/{id}", deps.Users.Delete)
			})
		})

		r.Route("/product", func(r chi.Router) {
			r.Get("/", deps.Products.List)
			r.Get("/top", deps.Products.TopRated)
			r.Get("/{id}", deps.Products.Get)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/{id}/reviews", deps.Products.AddReview)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Post("/", deps.Products.Create)
				r.Put("/{id}", deps.Products.Update)
				r.Delete("/{id}/image", deps.Products.DeleteImage)
				r.Delete("/{id}", deps.Products.Delete)
			})
		})

		r.Route("/cat", func(r chi.Router) {
			r.Get("/", deps.Categories.List)
			r.Get("/{id}", deps.Categories.Get)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Post("/", deps.Categories.Create)
				r.Put("/{id}", deps.Categories.Rename)
				r.Delete("/{id}", deps.Categories.Delete)
			})
		})

		r.Route("/order", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", deps.Orders.Place)
				r.Get("/me", deps.Orders.ListMine)
				r.Get("/{id}", deps.Orders.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Get("/", deps.Orders.ListAll)
				r.Put("/{id}/status", deps.Orders.AdvanceStatus)
				r.Delete("/{id}", deps.Orders.Delete)
			})
		})
	})

	return r
}
