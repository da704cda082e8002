// Package v1 provides the v1 API routes.
package v1

import (
	"net/http"
	"strconv"

	"github.com/qabank/qabank/infrastructure/api/v1/dto"
	"github.com/qabank/qabank/internal/database"
)

// DefaultPageSize is the default number of items per page.
const DefaultPageSize = 20

// MaxPageSize is the maximum allowed page size.
const MaxPageSize = 100

// PaginationParams holds pagination parameters parsed from query strings.
type PaginationParams struct {
	page     int
	pageSize int
}

// ParsePagination parses page and page_size from the request, applying
// defaults and the size cap. Malformed values fall back to the defaults.
func ParsePagination(r *http.Request) PaginationParams {
	params := PaginationParams{page: 1, pageSize: DefaultPageSize}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page >= 1 {
			params.page = page
		}
	}
	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size >= 1 {
			params.pageSize = min(size, MaxPageSize)
		}
	}
	return params
}

// Page returns the page number, 1-indexed.
func (p PaginationParams) Page() int { return p.page }

// PageSize returns the page size.
func (p PaginationParams) PageSize() int { return p.pageSize }

// PageMeta converts a result page to its response metadata.
func PageMeta[D any](page database.Page[D]) dto.PageMeta {
	return dto.PageMeta{
		Page:      page.Page,
		PageSize:  page.PerPage,
		Total:     page.Total,
		PageCount: page.PageCount,
	}
}
