package dto

// SearchRequest runs one similarity query. SetID zero searches the public
// aggregate.
type SearchRequest struct {
	Query string `json:"query"`
	SetID int64  `json:"set_id,omitempty"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResult is one match, distance ascending within the response.
type SearchResult struct {
	Question Question `json:"question"`
	Distance float32  `json:"distance"`
}

// SearchResponse holds the matches for one query.
type SearchResponse struct {
	Data []SearchResult `json:"data"`
}
