package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qabank/qabank"
	"github.com/qabank/qabank/application/service"
	"github.com/qabank/qabank/infrastructure/api/middleware"
	"github.com/qabank/qabank/infrastructure/api/v1/dto"
)

// SearchRouter handles similarity search endpoints.
type SearchRouter struct {
	client *qabank.Client
	logger *slog.Logger
}

// NewSearchRouter creates a new SearchRouter.
func NewSearchRouter(client *qabank.Client) *SearchRouter {
	return &SearchRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for search endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", r.Search)
	return router
}

// Search handles POST /api/v1/search.
func (r *SearchRouter) Search(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	var body dto.SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	matches, err := r.client.Search.Search(ctx, actor, service.SearchParams{
		Query: body.Query,
		SetID: body.SetID,
		TopK:  body.TopK,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.SearchResponse{Data: matchesToDTO(matches)})
}
