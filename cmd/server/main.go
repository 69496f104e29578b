package main

import (
	"fmt"
	"net/http"

	"github.com/gatherhub/gather-api/internal/auth"
	"github.com/gatherhub/gather-api/internal/config"
	"github.com/gatherhub/gather-api/internal/database"
	"github.com/gatherhub/gather-api/internal/handlers"
	"github.com/gatherhub/gather-api/internal/notifier"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()
	logger := config.NewLogger(cfg)

	// Connect to Database
	db := database.Connect(cfg)

	// Initialize Handlers
	emailNotifier := notifier.NewEmailNotifier(cfg, logger)
	authHandler := auth.NewAuthHandler(cfg, db, logger)

	h := handlers.Handlers{
		Auth:          authHandler,
		Authors:       handlers.NewAuthorHandler(db, cfg, authHandler),
		Books:         handlers.NewBookHandler(db, cfg, authHandler),
		Posts:         handlers.NewPostHandler(db, cfg, authHandler),
		Comments:      handlers.NewCommentHandler(db, authHandler),
		Events:        handlers.NewEventHandler(db, cfg, authHandler),
		Registrations: handlers.NewRegistrationHandler(db, authHandler, emailNotifier, logger),
		APIKeys:       handlers.NewAPIKeyHandler(db, authHandler),
	}

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, h)

	// Start Server
	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
