package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/qabank/qabank/application/service"
	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/internal/domain"
)

func TestCreateQuestionRequiresActor(t *testing.T) {
	e := newDefaultEnv(t)

	_, err := e.questions.Create(context.Background(), nil, service.QuestionCreateParams{
		Title:   "heap",
		Content: "what is a heap",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

// The embedding is computed before the relational write, so an embedder
// outage leaves nothing behind.
func TestCreateQuestionEmbedderFailureStoresNothing(t *testing.T) {
	e := newEnv(t, failingIndex{}, failingEmbedder{})
	ctx := context.Background()
	author := e.registerUser(t, "author")

	_, err := e.questions.Create(ctx, author, service.QuestionCreateParams{
		Title:   "heap",
		Content: "what is a heap",
	})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("got %v, want ErrEmbeddingUnavailable", err)
	}

	page, err := e.questions.ListCreated(ctx, author, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("%d questions stored after embedder failure, want 0", page.Total)
	}
}

func TestCreateQuestionIntoSet(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	author := e.registerUser(t, "author")
	set := e.createSet(t, author, "algorithms", questionset.PermissionPublic)

	result, err := e.questions.Create(ctx, author, service.QuestionCreateParams{
		Title:   "heap",
		Content: "what is a heap",
		SetID:   set.ID(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.IndexWarning() != nil {
		t.Fatalf("unexpected index warning: %v", result.IndexWarning())
	}

	ids, err := e.memberships.QuestionIDs(ctx, set.ID())
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != result.Question().ID() {
		t.Fatalf("set membership is %v, want the new question", ids)
	}
	if got := e.collectionIDs(t, questionset.PublicSetID); len(got) != 1 {
		t.Fatalf("aggregate collection holds %d points, want 1", len(got))
	}
}

func TestCreateQuestionIntoForeignSetForbidden(t *testing.T) {
	e := newDefaultEnv(t)
	owner := e.registerUser(t, "owner")
	other := e.registerUser(t, "other")
	set := e.createSet(t, owner, "algorithms", questionset.PermissionPublic)

	_, err := e.questions.Create(context.Background(), other, service.QuestionCreateParams{
		Title:   "heap",
		Content: "what is a heap",
		SetID:   set.ID(),
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}

	// The rejected create must not commit the question row.
	page, err := e.questions.ListCreated(context.Background(), other, 1, 20)
	if err != nil {
		t.Fatalf("list created: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("rejected create left %d question row(s) behind", page.Total)
	}
}

func TestCreateQuestionIntoUnknownSetStoresNothing(t *testing.T) {
	e := newDefaultEnv(t)
	author := e.registerUser(t, "author")

	_, err := e.questions.Create(context.Background(), author, service.QuestionCreateParams{
		Title:   "heap",
		Content: "what is a heap",
		SetID:   9999,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	page, err := e.questions.ListCreated(context.Background(), author, 1, 20)
	if err != nil {
		t.Fatalf("list created: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("rejected create left %d question row(s) behind", page.Total)
	}
}

func TestUpdateQuestionReindexesContainingSets(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	author := e.registerUser(t, "author")
	set := e.createSet(t, author, "algorithms", questionset.PermissionPublic)
	id := e.createQuestion(t, author, "aa")
	if _, err := e.sets.AddQuestions(ctx, author, set.ID(), []int64{id}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// The stub embeds by title length, so the revision moves the vector
	// from {2,0} to {8,0}.
	result, err := e.questions.Update(ctx, author, id, service.QuestionUpdateParams{Title: "aaaaaaaa"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if result.IndexWarning() != nil {
		t.Fatalf("unexpected index warning: %v", result.IndexWarning())
	}
	if result.Question().Title() != "aaaaaaaa" {
		t.Fatalf("got title %q", result.Question().Title())
	}

	for _, setID := range []int64{set.ID(), questionset.PublicSetID} {
		hits, err := e.index.Search(ctx, search.CollectionName(setID), []float32{8, 0}, 1)
		if err != nil {
			t.Fatalf("search collection %d: %v", setID, err)
		}
		if len(hits) != 1 || hits[0].Distance() != 0 {
			t.Fatalf("collection %d does not hold the revised vector: %v", setID, hits)
		}
	}
}

func TestUpdateQuestionKeepsEmptyFields(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	author := e.registerUser(t, "author")
	id := e.createQuestion(t, author, "heap")

	result, err := e.questions.Update(ctx, author, id, service.QuestionUpdateParams{Content: "revised"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if result.Question().Title() != "heap" {
		t.Fatalf("title changed to %q", result.Question().Title())
	}
	if result.Question().Content() != "revised" {
		t.Fatalf("content is %q", result.Question().Content())
	}
}

func TestUpdateQuestionForbiddenForStranger(t *testing.T) {
	e := newDefaultEnv(t)
	author := e.registerUser(t, "author")
	other := e.registerUser(t, "other")
	id := e.createQuestion(t, author, "heap")

	_, err := e.questions.Update(context.Background(), other, id, service.QuestionUpdateParams{Title: "stolen"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestDeleteQuestionCleansUp(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	author := e.registerUser(t, "author")
	set := e.createSet(t, author, "algorithms", questionset.PermissionPublic)
	id := e.createQuestion(t, author, "heap")
	if _, err := e.sets.AddQuestions(ctx, author, set.ID(), []int64{id}); err != nil {
		t.Fatalf("add: %v", err)
	}

	result, err := e.questions.Delete(ctx, author, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.IndexWarning() != nil {
		t.Fatalf("unexpected index warning: %v", result.IndexWarning())
	}

	if _, err := e.questions.Get(ctx, author, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	ids, err := e.memberships.QuestionIDs(ctx, set.ID())
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("set still holds %d memberships", len(ids))
	}
	for _, setID := range []int64{set.ID(), questionset.PublicSetID} {
		if got := e.collectionIDs(t, setID); len(got) != 0 {
			t.Fatalf("collection %d still holds %d points", setID, len(got))
		}
	}
}

func TestDeleteQuestionIndexFailureIsNonFatal(t *testing.T) {
	e := newEnv(t, failingIndex{}, stubEmbedder{})
	ctx := context.Background()
	author := e.registerUser(t, "author")
	id := e.createQuestion(t, author, "heap")
	set := e.createSet(t, author, "algorithms", questionset.PermissionPrivate)
	if _, err := e.sets.AddQuestions(ctx, author, set.ID(), []int64{id}); err != nil {
		t.Fatalf("add: %v", err)
	}

	result, err := e.questions.Delete(ctx, author, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !errors.Is(result.IndexWarning(), domain.ErrIndexUnavailable) {
		t.Fatalf("warning is %v, want ErrIndexUnavailable", result.IndexWarning())
	}
	if _, err := e.questions.Get(ctx, author, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want row gone despite index outage", err)
	}
}

func TestGetQuestionThroughPublicSet(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	author := e.registerUser(t, "author")
	stranger := e.registerUser(t, "stranger")
	id := e.createQuestion(t, author, "heap")

	// Unshared questions are visible to the author only.
	if _, err := e.questions.Get(ctx, stranger, id); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden before sharing", err)
	}

	set := e.createSet(t, author, "algorithms", questionset.PermissionPublic)
	if _, err := e.sets.AddQuestions(ctx, author, set.ID(), []int64{id}); err != nil {
		t.Fatalf("add: %v", err)
	}

	q, err := e.questions.Get(ctx, stranger, id)
	if err != nil {
		t.Fatalf("get after sharing: %v", err)
	}
	if q.ID() != id {
		t.Fatalf("got question %d, want %d", q.ID(), id)
	}
}

func TestListCreatedScopedToActor(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	alice := e.registerUser(t, "alice")
	bob := e.registerUser(t, "bob")
	e.createQuestion(t, alice, "a1")
	e.createQuestion(t, alice, "a2")
	e.createQuestion(t, bob, "b1")

	page, err := e.questions.ListCreated(ctx, alice, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("alice sees %d questions, want 2", page.Total)
	}

	if _, err := e.questions.ListCreated(ctx, nil, 1, 20); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden for anonymous", err)
	}
}
