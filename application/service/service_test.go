package service_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/qabank/qabank/application/service"
	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/infrastructure/persistence"
	"github.com/qabank/qabank/infrastructure/vectorindex"
	"github.com/qabank/qabank/internal/database"
	"github.com/qabank/qabank/internal/domain"
	"github.com/qabank/qabank/internal/testdb"
)

// env wires the services onto a fresh in-memory database, the way the client
// facade does, so tests exercise the real stores end to end.
type env struct {
	db          database.Database
	index       search.Index
	memberships persistence.MembershipStore
	users       *service.Users
	questions   *service.Questions
	sets        *service.QuestionSets
	search      *service.Search
}

func newEnv(t *testing.T, index search.Index, embedder search.Embedder) *env {
	t.Helper()
	db := testdb.New(t)
	logger := slog.New(slog.DiscardHandler)

	userStore := persistence.NewUserStore(db)
	questionStore := persistence.NewQuestionStore(db)
	setStore := persistence.NewQuestionSetStore(db)
	memberships := persistence.NewMembershipStore(db)

	sets := service.NewQuestionSets(setStore, questionStore, memberships, index, logger)
	return &env{
		db:          db,
		index:       index,
		memberships: memberships,
		users:       service.NewUsers(userStore, logger),
		questions:   service.NewQuestions(questionStore, setStore, memberships, sets, embedder, index, logger),
		sets:        sets,
		search:      service.NewSearch(questionStore, setStore, memberships, embedder, index, 10, logger),
	}
}

func newDefaultEnv(t *testing.T) *env {
	t.Helper()
	index := vectorindex.NewMemoryIndex()
	if err := index.CreateCollection(context.Background(), search.CollectionName(questionset.PublicSetID)); err != nil {
		t.Fatalf("create aggregate collection: %v", err)
	}
	return newEnv(t, index, stubEmbedder{})
}

func (e *env) registerUser(t *testing.T, name string) *identity.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), name, "test institute")
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return &user
}

func (e *env) createSet(t *testing.T, actor *identity.User, name string, permission questionset.Permission) questionset.QuestionSet {
	t.Helper()
	result, err := e.sets.Create(context.Background(), actor, service.SetCreateParams{
		Name:       name,
		Permission: permission,
	})
	if err != nil {
		t.Fatalf("create set %s: %v", name, err)
	}
	if result.IndexWarning() != nil {
		t.Fatalf("create set %s: unexpected index warning %v", name, result.IndexWarning())
	}
	return result.Set()
}

func (e *env) createQuestion(t *testing.T, actor *identity.User, title string) int64 {
	t.Helper()
	result, err := e.questions.Create(context.Background(), actor, service.QuestionCreateParams{
		Title:   title,
		Content: "content of " + title,
	})
	if err != nil {
		t.Fatalf("create question %s: %v", title, err)
	}
	return result.Question().ID()
}

// collectionIDs reads back what the index holds for a set, using a zero query
// vector and a large topK.
func (e *env) collectionIDs(t *testing.T, setID int64) []int64 {
	t.Helper()
	hits, err := e.index.Search(context.Background(), search.CollectionName(setID), []float32{0, 0}, 100)
	if err != nil {
		t.Fatalf("search collection %d: %v", setID, err)
	}
	ids := make([]int64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID()
	}
	return ids
}

// stubEmbedder derives a deterministic vector from text length, which gives
// tests full control over search distances.
type stubEmbedder struct{}

func (stubEmbedder) EmbedQuery(_ context.Context, query string) ([]float32, error) {
	return []float32{float32(len(query)), 0}, nil
}

func (stubEmbedder) EmbedDocuments(_ context.Context, docs []search.Document) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i, doc := range docs {
		out[i] = []float32{float32(len(doc.Title())), 0}
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("%w: embedder down", domain.ErrEmbeddingUnavailable)
}

func (failingEmbedder) EmbedDocuments(context.Context, []search.Document) ([][]float32, error) {
	return nil, fmt.Errorf("%w: embedder down", domain.ErrEmbeddingUnavailable)
}

// failingIndex refuses every call, to prove write paths survive an index
// outage.
type failingIndex struct{}

func (failingIndex) err() error {
	return fmt.Errorf("%w: index down", domain.ErrIndexUnavailable)
}

func (i failingIndex) CreateCollection(context.Context, string) error { return i.err() }
func (i failingIndex) DropCollection(context.Context, string) error   { return i.err() }

func (i failingIndex) Insert(context.Context, string, []int64, [][]float32) error {
	return i.err()
}

func (i failingIndex) Delete(context.Context, string, []int64) error { return i.err() }

func (i failingIndex) Search(context.Context, string, []float32, int) ([]search.Hit, error) {
	return nil, i.err()
}
