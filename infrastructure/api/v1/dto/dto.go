// Package dto defines the JSON request and response shapes of the v1 API.
package dto

// PageMeta describes one page of a list response.
type PageMeta struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	PageCount int   `json:"page_count"`
}
