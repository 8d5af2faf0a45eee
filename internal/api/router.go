package api

import (
	"net/http"

	"github.com/asingh/agri-rental-website/internal/api/handlers"
	"github.com/asingh/agri-rental-website/internal/api/middleware"
	"github.com/asingh/agri-rental-website/internal/config"
	"github.com/asingh/agri-rental-website/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, cfg)
	equipmentHandler := handlers.NewEquipmentHandler(services.Listing)

	r.Route("/api", func(r chi.Router) {
		// Single action-dispatched auth entry point
		r.Post("/auth", authHandler.Handle)

		r.Route("/equipment", func(r chi.Router) {
			// Browsing is public
			r.Get("/", equipmentHandler.List)

			// Mutations and account-scoped reads require a valid session
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Post("/", equipmentHandler.Create)
				r.Post("/delete", equipmentHandler.Delete)
				r.Get("/mine", equipmentHandler.Mine)
			})
		})
	})

	// Uploaded listing images
	fileServer := http.FileServer(http.Dir(cfg.UploadDir))
	r.Handle(cfg.UploadBaseURL+"/*", http.StripPrefix(cfg.UploadBaseURL+"/", fileServer))

	return r
}
