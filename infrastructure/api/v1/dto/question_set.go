package dto

import "time"

// QuestionSet is the API representation of a question set.
type QuestionSet struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Permission    string    `json:"permission"`
	OwnerID       int64     `json:"owner_id"`
	MaintainerIDs []int64   `json:"maintainer_ids,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// QuestionSetCreateRequest creates a set.
type QuestionSetCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Permission  string `json:"permission,omitempty"`
}

// QuestionSetUpdateRequest renames a set or changes its description.
type QuestionSetUpdateRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// MembershipRequest adds or removes questions.
type MembershipRequest struct {
	QuestionIDs []int64 `json:"question_ids"`
}

// VisibilityRequest changes the set's permission.
type VisibilityRequest struct {
	Permission string `json:"permission"`
}

// MaintainerRequest grants maintainer rights.
type MaintainerRequest struct {
	UserID int64 `json:"user_id"`
}

// QuestionSetResponse wraps a single set. IndexWarning reports a vector
// index failure on an otherwise successful write.
type QuestionSetResponse struct {
	Data         QuestionSet `json:"data"`
	IndexWarning string      `json:"index_warning,omitempty"`
}

// QuestionSetListResponse is one page of sets.
type QuestionSetListResponse struct {
	Data []QuestionSet `json:"data"`
	Meta PageMeta      `json:"meta"`
}
