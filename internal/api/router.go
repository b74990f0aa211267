package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/centralelevate/elevate/internal/api/handler"
	"github.com/centralelevate/elevate/internal/api/middleware"
	"github.com/centralelevate/elevate/internal/auth"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.Pinger
	CachePinger handler.Pinger
	Version     string
	OpenAPISpec []byte

	Authenticator middleware.Authenticator
	UserIssuer    handler.UserIssuer
	UserRepo      auth.UserRepository

	Products      handler.ProductService
	Refresher     handler.Refresher
	MaxImageBytes int64

	// UploadDir, when set, is served read-only under UploadURLPrefix.
	UploadDir       string
	UploadURLPrefix string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.CachePinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.UploadDir != "" {
		prefix := "/" + strings.Trim(deps.UploadURLPrefix, "/")
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(deps.UploadDir)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	if deps.Authenticator == nil {
		return r
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Authenticator))

		if deps.UserRepo != nil {
			userHandler := handler.NewUserHandler(deps.UserIssuer, deps.UserRepo)
			r.Get("/me", userHandler.Me)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.ElevatedRole))
				r.Post("/", userHandler.Create)
				r.Get("/", userHandler.List)
				r.Delete("/{id}", userHandler.Delete)
			})
		}

		if deps.Products != nil {
			productHandler := handler.NewProductHandler(deps.Products, deps.Refresher, deps.MaxImageBytes)
			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Get("/{id}", productHandler.GetByID)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(auth.ElevatedRole))
					r.Post("/", productHandler.Create)
					r.Post("/images", productHandler.UploadImage)
					r.Post("/refresh", productHandler.Refresh)
					r.Patch("/{id}", productHandler.Update)
					r.Delete("/{id}", productHandler.Delete)
				})
			})
		}
	})

	return r
}
