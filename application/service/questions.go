package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qabank/qabank/domain/guardian"
	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/domain/question"
	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/domain/storage"
	"github.com/qabank/qabank/internal/database"
	"github.com/qabank/qabank/internal/domain"
)

// QuestionCreateParams configures creating a question.
type QuestionCreateParams struct {
	Title   string
	Content string

	// SetID optionally places the new question into a set the actor may
	// modify, in the same operation.
	SetID int64
}

// QuestionUpdateParams configures updating a question. Empty fields keep
// their current value.
type QuestionUpdateParams struct {
	Title   string
	Content string
}

// Questions provides question lifecycle operations. Embeddings are computed
// before any relational write, so an unreachable embedding service aborts
// the operation with nothing stored.
type Questions struct {
	questionStore question.Store
	setStore      questionset.Store
	memberships   questionset.MembershipStore
	sets          *QuestionSets
	embedder      search.Embedder
	index         search.Index
	logger        *slog.Logger
}

// NewQuestions creates a new Questions service.
func NewQuestions(
	questionStore question.Store,
	setStore questionset.Store,
	memberships questionset.MembershipStore,
	sets *QuestionSets,
	embedder search.Embedder,
	index search.Index,
	logger *slog.Logger,
) *Questions {
	return &Questions{
		questionStore: questionStore,
		setStore:      setStore,
		memberships:   memberships,
		sets:          sets,
		embedder:      embedder,
		index:         index,
		logger:        logger,
	}
}

// Create stores a new question. With a target set the membership add,
// including public fan-out, runs as one coordinator operation after the
// insert.
func (s *Questions) Create(ctx context.Context, actor *identity.User, params QuestionCreateParams) (QuestionResult, error) {
	if !guardian.CanCreateQuestion(actor) {
		return QuestionResult{}, fmt.Errorf("%w: create question", domain.ErrForbidden)
	}

	// The target set is resolved and authorized before any write, so a
	// missing or forbidden set leaves no question row behind.
	if params.SetID != 0 {
		if _, err := s.sets.authorizedForModify(ctx, actor, params.SetID); err != nil {
			return QuestionResult{}, err
		}
	}

	embedding, err := s.embedOne(ctx, params.Title, params.Content)
	if err != nil {
		return QuestionResult{}, err
	}

	q, err := question.NewQuestion(params.Title, params.Content, embedding, actor.ID())
	if err != nil {
		return QuestionResult{}, err
	}

	saved, err := s.questionStore.Save(ctx, q)
	if err != nil {
		return QuestionResult{}, fmt.Errorf("save question: %w", err)
	}

	var warning error
	if params.SetID != 0 {
		result, err := s.sets.AddQuestions(ctx, actor, params.SetID, []int64{saved.ID()})
		if err != nil {
			return QuestionResult{}, err
		}
		warning = result.IndexWarning()
	}

	s.logger.Info("question created",
		slog.Int64("question_id", saved.ID()),
		slog.Int64("created_by", actor.ID()),
	)
	return NewQuestionResult(saved, warning), nil
}

// Update revises a question's title or content, recomputes its embedding and
// rewrites its vector in every containing collection.
func (s *Questions) Update(ctx context.Context, actor *identity.User, id int64, params QuestionUpdateParams) (QuestionResult, error) {
	q, containing, err := s.loadWithContainingSets(ctx, id)
	if err != nil {
		return QuestionResult{}, err
	}
	if !guardian.CanModifyQuestion(actor, q, containing) {
		return QuestionResult{}, fmt.Errorf("%w: modify question %d", domain.ErrForbidden, id)
	}

	title := params.Title
	if title == "" {
		title = q.Title()
	}
	content := params.Content
	if content == "" {
		content = q.Content()
	}

	embedding, err := s.embedOne(ctx, title, content)
	if err != nil {
		return QuestionResult{}, err
	}

	revised, err := q.Revise(title, content, embedding, actor.ID())
	if err != nil {
		return QuestionResult{}, err
	}

	saved, err := s.questionStore.Save(ctx, revised)
	if err != nil {
		return QuestionResult{}, fmt.Errorf("save question: %w", err)
	}

	// Qdrant overwrites points on id collision, but delete first so the
	// old vector never survives a partial reinsert.
	var warning error
	for _, set := range containing {
		name := search.CollectionName(set.ID())
		if err := s.index.Delete(ctx, name, []int64{id}); err != nil {
			warning = errors.Join(warning, err)
			continue
		}
		if err := s.index.Insert(ctx, name, []int64{id}, [][]float32{embedding}); err != nil {
			warning = errors.Join(warning, err)
		}
	}
	if warning != nil {
		s.logger.WarnContext(ctx, "vector index phase failed",
			slog.String("op", "reindex question"),
			slog.Int64("question_id", id),
			slog.String("error", warning.Error()),
		)
	}

	return NewQuestionResult(saved, warning), nil
}

// Delete removes a question, its memberships and its vectors.
func (s *Questions) Delete(ctx context.Context, actor *identity.User, id int64) (QuestionResult, error) {
	q, containing, err := s.loadWithContainingSets(ctx, id)
	if err != nil {
		return QuestionResult{}, err
	}
	if !guardian.CanDeleteQuestion(actor, q, containing) {
		return QuestionResult{}, fmt.Errorf("%w: delete question %d", domain.ErrForbidden, id)
	}

	if err := s.questionStore.Delete(ctx, id); err != nil {
		return QuestionResult{}, fmt.Errorf("delete question: %w", err)
	}

	var warning error
	for _, set := range containing {
		if err := s.index.Delete(ctx, search.CollectionName(set.ID()), []int64{id}); err != nil {
			warning = errors.Join(warning, err)
		}
	}
	if warning != nil {
		s.logger.WarnContext(ctx, "vector index phase failed",
			slog.String("op", "unindex question"),
			slog.Int64("question_id", id),
			slog.String("error", warning.Error()),
		)
	}

	s.logger.Info("question deleted",
		slog.Int64("question_id", id),
		slog.Int("collections", len(containing)),
	)
	return NewQuestionResult(q, warning), nil
}

// Get retrieves a question the actor may read.
func (s *Questions) Get(ctx context.Context, actor *identity.User, id int64) (question.Question, error) {
	q, containing, err := s.loadWithContainingSets(ctx, id)
	if err != nil {
		return question.Question{}, err
	}
	if !guardian.CanReadQuestion(actor, q, containing) {
		return question.Question{}, fmt.Errorf("%w: read question %d", domain.ErrForbidden, id)
	}
	return q, nil
}

// ListCreated returns one page of the actor's own questions.
func (s *Questions) ListCreated(ctx context.Context, actor *identity.User, page, perPage int) (database.Page[question.Question], error) {
	if actor == nil {
		return database.Page[question.Question]{}, fmt.Errorf("%w: list questions", domain.ErrForbidden)
	}
	return database.Paginate(ctx, s.questionStore, page, perPage,
		question.WithCreatedBy(actor.ID()), storage.WithOrderAsc("id"))
}

// loadWithContainingSets loads a question together with every set containing
// it, aggregate included, for the guardian predicates and the vector phase.
func (s *Questions) loadWithContainingSets(ctx context.Context, id int64) (question.Question, []questionset.QuestionSet, error) {
	q, err := s.questionStore.FindOne(ctx, storage.WithID(id))
	if err != nil {
		return question.Question{}, nil, err
	}

	setIDs, err := s.memberships.SetIDs(ctx, id)
	if err != nil {
		return question.Question{}, nil, err
	}
	if len(setIDs) == 0 {
		return q, nil, nil
	}

	containing, err := s.setStore.Find(ctx, storage.WithIDIn(setIDs))
	if err != nil {
		return question.Question{}, nil, err
	}
	return q, containing, nil
}

func (s *Questions) embedOne(ctx context.Context, title, content string) ([]float32, error) {
	vectors, err := s.embedder.EmbedDocuments(ctx, []search.Document{search.NewDocument(title, content)})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one document", domain.ErrEmbeddingUnavailable, len(vectors))
	}
	return vectors[0], nil
}
