package api

import (
	"net/http"

	"github.com/arjun/vidtube-backend/internal/api/handlers"
	"github.com/arjun/vidtube-backend/internal/api/middleware"
	"github.com/arjun/vidtube-backend/internal/config"
	"github.com/arjun/vidtube-backend/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	userHandler := handlers.NewUserHandler(services.User, cfg.TempUploadDir)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			// Public routes
			r.Post("/register", userHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh-token", authHandler.Refresh)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Post("/logout", authHandler.Logout)
				r.Post("/change-password", authHandler.ChangePassword)
				r.Get("/me", userHandler.Me)
				r.Patch("/me", userHandler.UpdateAccount)
				r.Patch("/me/avatar", userHandler.UpdateAvatar)
				r.Patch("/me/cover-image", userHandler.UpdateCoverImage)
				r.Get("/history", userHandler.WatchHistory)
				r.Get("/c/{username}", userHandler.ChannelProfile)
				r.Post("/c/{username}/subscribe", userHandler.Subscribe)
				r.Delete("/c/{username}/subscribe", userHandler.Unsubscribe)
			})
		})
	})

	return r
}
