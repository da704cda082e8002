package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/qabank/qabank"
	"github.com/qabank/qabank/application/service"
	"github.com/qabank/qabank/infrastructure/api/middleware"
	"github.com/qabank/qabank/infrastructure/api/v1/dto"
)

// QuestionsRouter handles question endpoints.
type QuestionsRouter struct {
	client *qabank.Client
	logger *slog.Logger
}

// NewQuestionsRouter creates a new QuestionsRouter.
func NewQuestionsRouter(client *qabank.Client) *QuestionsRouter {
	return &QuestionsRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for question endpoints.
func (r *QuestionsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Put("/{id}", r.Update)
	router.Delete("/{id}", r.Delete)

	return router
}

// List handles GET /api/v1/questions, the actor's own questions.
func (r *QuestionsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)
	pagination := ParsePagination(req)

	page, err := r.client.Questions.ListCreated(ctx, actor, pagination.Page(), pagination.PageSize())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.QuestionListResponse{
		Data: questionsToDTO(page.Items),
		Meta: PageMeta(page),
	})
}

// Create handles POST /api/v1/questions.
func (r *QuestionsRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	var body dto.QuestionCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := r.client.Questions.Create(ctx, actor, service.QuestionCreateParams{
		Title:   body.Title,
		Content: body.Content,
		SetID:   body.SetID,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.QuestionResponse{
		Data:         questionToDTO(result.Question()),
		IndexWarning: warningString(result),
	})
}

// Get handles GET /api/v1/questions/{id}.
func (r *QuestionsRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	q, err := r.client.Questions.Get(ctx, actor, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.QuestionResponse{Data: questionToDTO(q)})
}

// Update handles PUT /api/v1/questions/{id}.
func (r *QuestionsRouter) Update(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	var body dto.QuestionUpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := r.client.Questions.Update(ctx, actor, id, service.QuestionUpdateParams{
		Title:   body.Title,
		Content: body.Content,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.QuestionResponse{
		Data:         questionToDTO(result.Question()),
		IndexWarning: warningString(result),
	})
}

// Delete handles DELETE /api/v1/questions/{id}.
func (r *QuestionsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	result, err := r.client.Questions.Delete(ctx, actor, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if warning := warningString(result); warning != "" {
		middleware.WriteJSON(w, http.StatusOK, dto.QuestionResponse{
			Data:         questionToDTO(result.Question()),
			IndexWarning: warning,
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, req *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
