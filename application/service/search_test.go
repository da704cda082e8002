package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/qabank/qabank/application/service"
	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/internal/domain"
)

func TestSearchRejectsEmptyQuery(t *testing.T) {
	e := newDefaultEnv(t)

	_, err := e.search.Search(context.Background(), nil, service.SearchParams{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

// Zero SetID searches the public aggregate, which anonymous actors may read.
func TestSearchDefaultsToAggregate(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	author := e.registerUser(t, "author")
	set := e.createSet(t, author, "algorithms", questionset.PermissionPublic)

	// Titles embed by length: vectors {2,0}, {4,0} and {8,0}. The 8-rune
	// query lands exactly on the longest title.
	short := e.createQuestion(t, author, "aa")
	mid := e.createQuestion(t, author, "aaaa")
	long := e.createQuestion(t, author, "aaaaaaaa")
	if _, err := e.sets.AddQuestions(ctx, author, set.ID(), []int64{short, mid, long}); err != nil {
		t.Fatalf("add: %v", err)
	}

	matches, err := e.search.Search(ctx, nil, service.SearchParams{Query: "qqqqqqqq"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	order := []int64{long, mid, short}
	for i, match := range matches {
		if match.Question().ID() != order[i] {
			t.Fatalf("match %d is question %d, want %d", i, match.Question().ID(), order[i])
		}
	}
	if matches[0].Distance() != 0 {
		t.Fatalf("nearest distance is %v, want 0", matches[0].Distance())
	}
}

func TestSearchHonorsTopK(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	author := e.registerUser(t, "author")
	set := e.createSet(t, author, "algorithms", questionset.PermissionPublic)
	ids := []int64{
		e.createQuestion(t, author, "aa"),
		e.createQuestion(t, author, "aaaa"),
		e.createQuestion(t, author, "aaaaaaaa"),
	}
	if _, err := e.sets.AddQuestions(ctx, author, set.ID(), ids); err != nil {
		t.Fatalf("add: %v", err)
	}

	matches, err := e.search.Search(ctx, nil, service.SearchParams{Query: "qqqqq", TopK: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
}

func TestSearchScopedToSet(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	author := e.registerUser(t, "author")
	setA := e.createSet(t, author, "set a", questionset.PermissionPublic)
	setB := e.createSet(t, author, "set b", questionset.PermissionPublic)
	inA := e.createQuestion(t, author, "aa")
	inB := e.createQuestion(t, author, "bb")
	if _, err := e.sets.AddQuestions(ctx, author, setA.ID(), []int64{inA}); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if _, err := e.sets.AddQuestions(ctx, author, setB.ID(), []int64{inB}); err != nil {
		t.Fatalf("add b: %v", err)
	}

	matches, err := e.search.Search(ctx, nil, service.SearchParams{Query: "qqqqq", SetID: setA.ID()})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].Question().ID() != inA {
		t.Fatalf("set-scoped search returned %v", matches)
	}
}

func TestSearchForbiddenOnPrivateSet(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	owner := e.registerUser(t, "owner")
	other := e.registerUser(t, "other")
	set := e.createSet(t, owner, "drafts", questionset.PermissionPrivate)

	_, err := e.search.Search(ctx, other, service.SearchParams{Query: "qq", SetID: set.ID()})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestSearchUnknownSet(t *testing.T) {
	e := newDefaultEnv(t)

	_, err := e.search.Search(context.Background(), nil, service.SearchParams{Query: "qq", SetID: 9999})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSearchEmbedderFailure(t *testing.T) {
	e := newEnv(t, failingIndex{}, failingEmbedder{})

	_, err := e.search.Search(context.Background(), nil, service.SearchParams{Query: "qqqqq"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("got %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestSearchIndexFailure(t *testing.T) {
	e := newEnv(t, failingIndex{}, stubEmbedder{})

	_, err := e.search.Search(context.Background(), nil, service.SearchParams{Query: "qqqqq"})
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("got %v, want ErrIndexUnavailable", err)
	}
}

func TestSearchEmptyCollection(t *testing.T) {
	e := newDefaultEnv(t)

	matches, err := e.search.Search(context.Background(), nil, service.SearchParams{Query: "qqqqq"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches from an empty collection", len(matches))
	}
}

// Queries of at most four runes match on title substring instead of
// embedding. Only the set's members are candidates.
func TestSearchShortQueryMatchesTitle(t *testing.T) {
	e := newDefaultEnv(t)
	ctx := context.Background()
	author := e.registerUser(t, "author")
	set := e.createSet(t, author, "algorithms", questionset.PermissionPublic)

	short := e.createQuestion(t, author, "aa")
	mid := e.createQuestion(t, author, "aaaa")
	long := e.createQuestion(t, author, "aaaaaaaa")
	if _, err := e.sets.AddQuestions(ctx, author, set.ID(), []int64{short, mid, long}); err != nil {
		t.Fatalf("add: %v", err)
	}
	// A matching title outside the set must not surface.
	e.createQuestion(t, author, "aaaaa")

	matches, err := e.search.Search(ctx, nil, service.SearchParams{Query: "aaa"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	order := []int64{mid, long}
	for i, match := range matches {
		if match.Question().ID() != order[i] {
			t.Fatalf("match %d is question %d, want %d", i, match.Question().ID(), order[i])
		}
		if match.Distance() != 0 {
			t.Fatalf("match %d has distance %v, want 0", i, match.Distance())
		}
	}
}

// A short query never touches the index, so it still answers during an index
// outage.
func TestSearchShortQuerySkipsIndex(t *testing.T) {
	e := newEnv(t, failingIndex{}, stubEmbedder{})
	ctx := context.Background()
	author := e.registerUser(t, "author")

	result, err := e.sets.Create(ctx, author, service.SetCreateParams{
		Name:       "algorithms",
		Permission: questionset.PermissionPublic,
	})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	id := e.createQuestion(t, author, "aaaa")
	if _, err := e.sets.AddQuestions(ctx, author, result.Set().ID(), []int64{id}); err != nil {
		t.Fatalf("add: %v", err)
	}

	matches, err := e.search.Search(ctx, nil, service.SearchParams{Query: "aaa"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].Question().ID() != id {
		t.Fatalf("short query returned %v", matches)
	}
}
