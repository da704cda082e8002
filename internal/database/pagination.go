package database

import (
	"context"

	"github.com/qabank/qabank/domain/storage"
)

// Page holds one window of an ordered query result.
//
// Total comes from an independent count query, so it is correct even when
// the window itself is short because the caller asked for the last page.
type Page[D any] struct {
	Items     []D
	Page      int
	PerPage   int
	Total     int64
	PageCount int
}

// HasPrev reports whether a previous page exists.
func (p Page[D]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Page[D]) HasNext() bool { return p.Page < p.PageCount }

// Paginator abstracts the two queries pagination needs: a windowed fetch and
// a count over the same conditions. Repository satisfies it.
type Paginator[D any] interface {
	Find(ctx context.Context, options ...storage.Option) ([]D, error)
	Count(ctx context.Context, options ...storage.Option) (int64, error)
}

// Paginate fetches one page of results. page and perPage are clamped to >= 1.
// An empty result set yields PageCount 0.
func Paginate[D any](ctx context.Context, p Paginator[D], page, perPage int, options ...storage.Option) (Page[D], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}

	total, err := p.Count(ctx, options...)
	if err != nil {
		return Page[D]{}, err
	}

	windowed := append([]storage.Option{}, options...)
	windowed = append(windowed, storage.WithLimit(perPage), storage.WithOffset((page-1)*perPage))

	items, err := p.Find(ctx, windowed...)
	if err != nil {
		return Page[D]{}, err
	}

	pageCount := int((total + int64(perPage) - 1) / int64(perPage))

	return Page[D]{
		Items:     items,
		Page:      page,
		PerPage:   perPage,
		Total:     total,
		PageCount: pageCount,
	}, nil
}
