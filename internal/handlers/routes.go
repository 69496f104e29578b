package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gatherhub/gather-api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth          *auth.AuthHandler
	Authors       *AuthorHandler
	Books         *BookHandler
	Posts         *PostHandler
	Comments      *CommentHandler
	Events        *EventHandler
	Registrations *RegistrationHandler
	APIKeys       *APIKeyHandler
}

func RegisterRoutes(r *chi.Mux, h Handlers) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Gather API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	huma.Post(api, "/auth/register", h.Auth.HandleSignup)
	huma.Post(api, "/auth/token", h.Auth.HandleToken)
	huma.Post(api, "/auth/token/refresh", h.Auth.HandleRefresh)
	huma.Get(api, "/users/me", h.Auth.HandleMe, secured)
	huma.Put(api, "/users/me", h.Auth.HandleUpdateMe, secured)

	// Authors & books: public reads, authenticated writes
	huma.Get(api, "/authors", h.Authors.HandleList)
	huma.Post(api, "/authors", h.Authors.HandleCreate, secured)
	huma.Get(api, "/authors/{id}", h.Authors.HandleGet)
	huma.Put(api, "/authors/{id}", h.Authors.HandleUpdate, secured)
	huma.Delete(api, "/authors/{id}", h.Authors.HandleDelete, secured)
	huma.Get(api, "/authors/{id}/books", h.Authors.HandleBooks)

	huma.Get(api, "/books", h.Books.HandleList)
	huma.Post(api, "/books", h.Books.HandleCreate, secured)
	huma.Get(api, "/books/{id}", h.Books.HandleGet)
	huma.Put(api, "/books/{id}", h.Books.HandleUpdate, secured)
	huma.Delete(api, "/books/{id}", h.Books.HandleDelete, secured)

	// Blog
	huma.Get(api, "/posts", h.Posts.HandleList)
	huma.Post(api, "/posts", h.Posts.HandleCreate, secured)
	huma.Get(api, "/posts/{id}", h.Posts.HandleGet)
	huma.Put(api, "/posts/{id}", h.Posts.HandleUpdate, secured)
	huma.Delete(api, "/posts/{id}", h.Posts.HandleDelete, secured)
	huma.Post(api, "/posts/{id}/like", h.Posts.HandleLike, secured)
	huma.Get(api, "/posts/{id}/comments", h.Comments.HandleList)
	huma.Post(api, "/posts/{id}/comments", h.Comments.HandleCreate, secured)
	huma.Put(api, "/comments/{id}", h.Comments.HandleUpdate, secured)
	huma.Delete(api, "/comments/{id}", h.Comments.HandleDelete, secured)
	huma.Post(api, "/comments/{id}/like", h.Comments.HandleLike, secured)
	huma.Post(api, "/comments/{id}/approve", h.Comments.HandleApprove, secured)

	// Events & registration
	huma.Get(api, "/events", h.Events.HandleList)
	huma.Post(api, "/events", h.Events.HandleCreate, secured)
	huma.Get(api, "/events/{id}", h.Events.HandleGet, secured)
	huma.Put(api, "/events/{id}", h.Events.HandleUpdate, secured)
	huma.Delete(api, "/events/{id}", h.Events.HandleDelete, secured)
	huma.Post(api, "/events/{id}/register", h.Registrations.HandleRegister, secured)
	huma.Delete(api, "/events/{id}/register", h.Registrations.HandleUnregister, secured)
	huma.Get(api, "/users/me/events", h.Events.HandleMyEvents, secured)
	huma.Get(api, "/users/me/events/registered", h.Events.HandleRegisteredEvents, secured)

	// API keys
	huma.Post(api, "/api-keys", h.APIKeys.HandleCreate, secured)
	huma.Get(api, "/api-keys", h.APIKeys.HandleList, secured)
	huma.Delete(api, "/api-keys/{id}", h.APIKeys.HandleDelete, secured)
}

func secured(o *huma.Operation) {
	o.Security = []map[string][]string{
		{"bearerAuth": {}},
		{"apiKeyAuth": {}},
	}
}
