package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/qabank/qabank/domain/guardian"
	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/domain/question"
	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/domain/storage"
	"github.com/qabank/qabank/internal/domain"
)

// SearchParams configures one similarity search.
type SearchParams struct {
	Query string

	// SetID scopes the search to one set's collection. Zero searches the
	// public aggregate.
	SetID int64

	// TopK bounds the result count; zero uses the configured default.
	TopK int
}

// shortQueryLimit is the query length, in runes, at or below which search
// matches on title substring instead of embedding.
const shortQueryLimit = 4

// Search answers similarity queries over one set's collection: embed the
// query, search the index, hydrate the hits from the relational store. Short
// queries skip the index and match on title substring.
type Search struct {
	questionStore question.Store
	setStore      questionset.Store
	memberships   questionset.MembershipStore
	embedder      search.Embedder
	index         search.Index
	defaultTopK   int
	logger        *slog.Logger
}

// NewSearch creates a new Search service.
func NewSearch(
	questionStore question.Store,
	setStore questionset.Store,
	memberships questionset.MembershipStore,
	embedder search.Embedder,
	index search.Index,
	defaultTopK int,
	logger *slog.Logger,
) *Search {
	return &Search{
		questionStore: questionStore,
		setStore:      setStore,
		memberships:   memberships,
		embedder:      embedder,
		index:         index,
		defaultTopK:   defaultTopK,
		logger:        logger,
	}
}

// Search runs one similarity query. Matches come back ascending by distance.
// The relational store is authoritative: hits whose rows are gone are
// dropped from the result.
func (s *Search) Search(ctx context.Context, actor *identity.User, params SearchParams) ([]SearchMatch, error) {
	if params.Query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrValidation)
	}

	setID := params.SetID
	if setID == 0 {
		setID = questionset.PublicSetID
	}
	set, err := s.setStore.FindOne(ctx, storage.WithID(setID))
	if err != nil {
		return nil, err
	}
	if !guardian.CanReadQuestionSet(actor, set) {
		return nil, fmt.Errorf("%w: search set %d", domain.ErrForbidden, setID)
	}

	topK := params.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	// Queries this short carry too little signal to embed.
	if utf8.RuneCountInString(params.Query) <= shortQueryLimit {
		return s.searchByTitle(ctx, setID, params.Query, topK)
	}

	vector, err := s.embedder.EmbedQuery(ctx, params.Query)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, search.CollectionName(setID), vector, topK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID()
	}
	questions, err := s.questionStore.Find(ctx, storage.WithIDIn(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]question.Question, len(questions))
	for _, q := range questions {
		byID[q.ID()] = q
	}

	matches := make([]SearchMatch, 0, len(hits))
	for _, hit := range hits {
		q, ok := byID[hit.ID()]
		if !ok {
			// Index ahead of the store, tolerated under eventual
			// consistency.
			continue
		}
		matches = append(matches, NewSearchMatch(q, hit.Distance()))
	}

	s.logger.Debug("search completed",
		slog.Int64("set_id", setID),
		slog.Int("hits", len(matches)),
	)
	return matches, nil
}

// searchByTitle answers a short query with a title substring match over the
// set's members, ascending by id with zero distances.
func (s *Search) searchByTitle(ctx context.Context, setID int64, query string, topK int) ([]SearchMatch, error) {
	memberIDs, err := s.memberships.QuestionIDs(ctx, setID)
	if err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		return nil, nil
	}

	questions, err := s.questionStore.Find(ctx,
		storage.WithIDIn(memberIDs),
		storage.WithWhere("title LIKE ?", "%"+query+"%"),
		storage.WithOrderAsc("id"),
		storage.WithLimit(topK),
	)
	if err != nil {
		return nil, err
	}

	matches := make([]SearchMatch, 0, len(questions))
	for _, q := range questions {
		matches = append(matches, NewSearchMatch(q, 0))
	}

	s.logger.Debug("title search completed",
		slog.Int64("set_id", setID),
		slog.Int("hits", len(matches)),
	)
	return matches, nil
}
