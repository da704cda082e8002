package dto

import "time"

// User is the API representation of a user.
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Institution string    `json:"institution,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserCreateRequest registers a user.
type UserCreateRequest struct {
	Name        string `json:"name"`
	Institution string `json:"institution,omitempty"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	Data User `json:"data"`
}

// UserListResponse is one page of users.
type UserListResponse struct {
	Data []User   `json:"data"`
	Meta PageMeta `json:"meta"`
}
