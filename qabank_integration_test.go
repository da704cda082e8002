package qabank_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/qabank/qabank"
	"github.com/qabank/qabank/application/service"
	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/infrastructure/vectorindex"
)

// lengthEmbedder embeds text as its length, making distances predictable.
type lengthEmbedder struct{}

func (lengthEmbedder) EmbedQuery(_ context.Context, query string) ([]float32, error) {
	return []float32{float32(len(query))}, nil
}

func (lengthEmbedder) EmbedDocuments(_ context.Context, docs []search.Document) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i, doc := range docs {
		out[i] = []float32{float32(len(doc.Title()))}
	}
	return out, nil
}

func newClient(t *testing.T) *qabank.Client {
	t.Helper()
	client, err := qabank.New(
		qabank.WithSQLite(filepath.Join(t.TempDir(), "test.db")),
		qabank.WithEmbedder(lengthEmbedder{}),
		qabank.WithIndex(vectorindex.NewMemoryIndex()),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRequiresDatabase(t *testing.T) {
	_, err := qabank.New(qabank.WithEmbedder(lengthEmbedder{}))
	if !errors.Is(err, qabank.ErrNoDatabase) {
		t.Fatalf("got %v, want ErrNoDatabase", err)
	}
}

func TestNewRequiresEmbedder(t *testing.T) {
	_, err := qabank.New(qabank.WithSQLite(filepath.Join(t.TempDir(), "test.db")))
	if !errors.Is(err, qabank.ErrNoEmbedder) {
		t.Fatalf("got %v, want ErrNoEmbedder", err)
	}
}

func TestCloseTwice(t *testing.T) {
	client, err := qabank.New(
		qabank.WithSQLite(filepath.Join(t.TempDir(), "test.db")),
		qabank.WithEmbedder(lengthEmbedder{}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := client.Close(); !errors.Is(err, qabank.ErrClientClosed) {
		t.Fatalf("second close: got %v, want ErrClientClosed", err)
	}
}

// End to end through the facade: register, create, share publicly, search the
// aggregate anonymously.
func TestClientEndToEnd(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	alice, err := client.Users.Register(ctx, "alice", "test institute")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	created, err := client.QuestionSets.Create(ctx, &alice, service.SetCreateParams{
		Name:       "algorithms",
		Permission: questionset.PermissionPublic,
	})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	if warning := created.IndexWarning(); warning != nil {
		t.Fatalf("create set warning: %v", warning)
	}
	set := created.Set()

	question, err := client.Questions.Create(ctx, &alice, service.QuestionCreateParams{
		Title:   "heap",
		Content: "what is a heap",
		SetID:   set.ID(),
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	// Anonymous search over the aggregate finds the shared question.
	matches, err := client.Search.Search(ctx, nil, service.SearchParams{Query: "query"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].Question().ID() != question.Question().ID() {
		t.Fatalf("aggregate search returned %v", matches)
	}

	// Flipping the set private empties the aggregate again.
	if _, err := client.QuestionSets.ChangeVisibility(ctx, &alice, set.ID(), questionset.PermissionPrivate); err != nil {
		t.Fatalf("change visibility: %v", err)
	}
	matches, err = client.Search.Search(ctx, nil, service.SearchParams{Query: "query"})
	if err != nil {
		t.Fatalf("search after hiding: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("aggregate still returns %v", matches)
	}
}
