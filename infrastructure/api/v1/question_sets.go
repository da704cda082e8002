package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qabank/qabank"
	"github.com/qabank/qabank/application/service"
	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/infrastructure/api/middleware"
	"github.com/qabank/qabank/infrastructure/api/v1/dto"
)

// QuestionSetsRouter handles question set endpoints.
type QuestionSetsRouter struct {
	client *qabank.Client
	logger *slog.Logger
}

// NewQuestionSetsRouter creates a new QuestionSetsRouter.
func NewQuestionSetsRouter(client *qabank.Client) *QuestionSetsRouter {
	return &QuestionSetsRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for question set endpoints.
func (r *QuestionSetsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Put("/{id}", r.Update)
	router.Delete("/{id}", r.Delete)
	router.Get("/{id}/questions", r.ListQuestions)
	router.Post("/{id}/questions", r.AddQuestions)
	router.Delete("/{id}/questions", r.RemoveQuestions)
	router.Put("/{id}/visibility", r.ChangeVisibility)
	router.Post("/{id}/maintainers", r.AddMaintainer)

	return router
}

// List handles GET /api/v1/question-sets.
func (r *QuestionSetsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)
	pagination := ParsePagination(req)

	page, err := r.client.QuestionSets.List(ctx, actor, pagination.Page(), pagination.PageSize())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.QuestionSetListResponse{
		Data: setsToDTO(page.Items),
		Meta: PageMeta(page),
	})
}

// Create handles POST /api/v1/question-sets.
func (r *QuestionSetsRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	var body dto.QuestionSetCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := r.client.QuestionSets.Create(ctx, actor, service.SetCreateParams{
		Name:        body.Name,
		Description: body.Description,
		Permission:  questionset.Permission(body.Permission),
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.QuestionSetResponse{
		Data:         setToDTO(result.Set()),
		IndexWarning: warningString(result),
	})
}

// Get handles GET /api/v1/question-sets/{id}.
func (r *QuestionSetsRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	set, err := r.client.QuestionSets.Get(ctx, actor, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.QuestionSetResponse{Data: setToDTO(set)})
}

// Update handles PUT /api/v1/question-sets/{id}: rename, description, or
// both.
func (r *QuestionSetsRouter) Update(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	var body dto.QuestionSetUpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var (
		set questionset.QuestionSet
		err error
	)
	if body.Name != "" {
		set, err = r.client.QuestionSets.Rename(ctx, actor, id, body.Name)
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
	}
	if body.Description != "" {
		set, err = r.client.QuestionSets.UpdateDescription(ctx, actor, id, body.Description)
		if err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
	}
	if body.Name == "" && body.Description == "" {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.QuestionSetResponse{Data: setToDTO(set)})
}

// Delete handles DELETE /api/v1/question-sets/{id}.
func (r *QuestionSetsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	result, err := r.client.QuestionSets.Delete(ctx, actor, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if warning := warningString(result); warning != "" {
		middleware.WriteJSON(w, http.StatusOK, dto.QuestionSetResponse{
			Data:         setToDTO(result.Set()),
			IndexWarning: warning,
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListQuestions handles GET /api/v1/question-sets/{id}/questions.
func (r *QuestionSetsRouter) ListQuestions(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)
	pagination := ParsePagination(req)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	page, err := r.client.QuestionSets.ListQuestions(ctx, actor, id, pagination.Page(), pagination.PageSize())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.QuestionListResponse{
		Data: questionsToDTO(page.Items),
		Meta: PageMeta(page),
	})
}

// AddQuestions handles POST /api/v1/question-sets/{id}/questions.
func (r *QuestionSetsRouter) AddQuestions(w http.ResponseWriter, req *http.Request) {
	r.membership(w, req, r.client.QuestionSets.AddQuestions)
}

// RemoveQuestions handles DELETE /api/v1/question-sets/{id}/questions.
func (r *QuestionSetsRouter) RemoveQuestions(w http.ResponseWriter, req *http.Request) {
	r.membership(w, req, r.client.QuestionSets.RemoveQuestions)
}

func (r *QuestionSetsRouter) membership(
	w http.ResponseWriter,
	req *http.Request,
	op func(ctx context.Context, actor *identity.User, setID int64, questionIDs []int64) (service.MembershipResult, error),
) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	var body dto.MembershipRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := op(ctx, actor, id, body.QuestionIDs)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.QuestionSetResponse{
		Data:         setToDTO(result.Set()),
		IndexWarning: warningString(result),
	})
}

// ChangeVisibility handles PUT /api/v1/question-sets/{id}/visibility.
func (r *QuestionSetsRouter) ChangeVisibility(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	var body dto.VisibilityRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := r.client.QuestionSets.ChangeVisibility(ctx, actor, id, questionset.Permission(body.Permission))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.QuestionSetResponse{
		Data:         setToDTO(result.Set()),
		IndexWarning: warningString(result),
	})
}

// AddMaintainer handles POST /api/v1/question-sets/{id}/maintainers.
func (r *QuestionSetsRouter) AddMaintainer(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	actor := middleware.GetActor(ctx)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	var body dto.MaintainerRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := r.client.QuestionSets.AddMaintainer(ctx, actor, id, body.UserID); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
