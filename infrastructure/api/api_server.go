package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/qabank/qabank"
	"github.com/qabank/qabank/infrastructure/api/middleware"
	v1 "github.com/qabank/qabank/infrastructure/api/v1"
)

// APIServer assembles the v1 routers over a qabank client.
type APIServer struct {
	client *qabank.Client
	router chi.Router
}

// NewAPIServer creates an APIServer. Middleware added to Router applies to
// every route mounted afterwards, so configure it before MountRoutes.
func NewAPIServer(client *qabank.Client) *APIServer {
	return &APIServer{
		client: client,
		router: chi.NewRouter(),
	}
}

// Router returns the router for middleware registration.
func (s *APIServer) Router() chi.Router {
	return s.router
}

// MountRoutes mounts the v1 API under /api/v1. The actor middleware runs on
// the whole group so every handler sees the resolved user.
func (s *APIServer) MountRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(s.client.Users))

		r.Mount("/users", v1.NewUsersRouter(s.client).Routes())
		r.Mount("/questions", v1.NewQuestionsRouter(s.client).Routes())
		r.Mount("/question-sets", v1.NewQuestionSetsRouter(s.client).Routes())
		r.Mount("/search", v1.NewSearchRouter(s.client).Routes())
	})
}
