package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qabank/qabank"
	"github.com/qabank/qabank/infrastructure/api/middleware"
	"github.com/qabank/qabank/infrastructure/api/v1/dto"
)

// UsersRouter handles user endpoints.
type UsersRouter struct {
	client *qabank.Client
	logger *slog.Logger
}

// NewUsersRouter creates a new UsersRouter.
func NewUsersRouter(client *qabank.Client) *UsersRouter {
	return &UsersRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for user endpoints.
func (r *UsersRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Register)
	router.Get("/{id}", r.Get)

	return router
}

// List handles GET /api/v1/users.
func (r *UsersRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)

	page, err := r.client.Users.List(ctx, pagination.Page(), pagination.PageSize())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.UserListResponse{
		Data: usersToDTO(page.Items),
		Meta: PageMeta(page),
	})
}

// Register handles POST /api/v1/users.
func (r *UsersRouter) Register(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.UserCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := r.client.Users.Register(ctx, body.Name, body.Institution)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.UserResponse{Data: userToDTO(user)})
}

// Get handles GET /api/v1/users/{id}.
func (r *UsersRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	user, err := r.client.Users.Get(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.UserResponse{Data: userToDTO(user)})
}
