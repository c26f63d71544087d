package router

import (
	"net/http"
	"roombooking/config"
	"roombooking/internal/handlers/auth"
	"roombooking/internal/handlers/booking"
	"roombooking/internal/handlers/facility"
	"roombooking/internal/handlers/photo"
	"roombooking/internal/handlers/room"
	"roombooking/internal/handlers/user"
	"roombooking/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type DomainHandlers struct {
	Auth     auth.Handler
	User     user.Handler
	Room     room.Handler
	Facility facility.Handler
	Booking  booking.Handler
	Photo    photo.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	AuthRole       middleware.AuthRole
	Config         *config.Config
}

// Middlewares installs the global stack. It must run before any route is registered.
func (r *Router) Middlewares(router chi.Router) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)

	if corsHandler := r.cors(); corsHandler != nil {
		router.Use(corsHandler)
	}

	router.Use(r.App.Tracing)
	router.Use(r.App.RateLimit())
	router.Use(r.AuthRole.APIKey)
	router.Use(r.AuthRole.Auth)
	router.Use(r.AuthRole.RBAC)
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/api", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Facility.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Photo.Router(routerGroup)
	})
}

func (r *Router) cors() func(http.Handler) http.Handler {
	if r.Config == nil || !r.Config.App.CORS.Enable {
		return nil
	}

	corsConfig := r.Config.App.CORS

	return cors.Handler(cors.Options{
		AllowedOrigins:   corsConfig.AllowedOrigins,
		AllowedMethods:   corsConfig.AllowedMethods,
		AllowedHeaders:   corsConfig.AllowedHeaders,
		AllowCredentials: corsConfig.AllowCredentials,
		MaxAge:           corsConfig.MaxAgeSeconds,
	})
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, authRole middleware.AuthRole, cfg *config.Config) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		AuthRole:       authRole,
		Config:         cfg,
	}
}
