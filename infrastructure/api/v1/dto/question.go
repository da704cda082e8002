package dto

import "time"

// Question is the API representation of a question. The embedding never
// leaves the service.
type Question struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedBy  int64     `json:"created_by"`
	ModifiedBy int64     `json:"modified_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// QuestionCreateRequest creates a question, optionally placing it into a set.
type QuestionCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	SetID   int64  `json:"set_id,omitempty"`
}

// QuestionUpdateRequest updates a question. Empty fields keep their value.
type QuestionUpdateRequest struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// QuestionResponse wraps a single question. IndexWarning reports a vector
// index failure on an otherwise successful write.
type QuestionResponse struct {
	Data         Question `json:"data"`
	IndexWarning string   `json:"index_warning,omitempty"`
}

// QuestionListResponse is one page of questions.
type QuestionListResponse struct {
	Data []Question `json:"data"`
	Meta PageMeta   `json:"meta"`
}
