// Package persistence provides database storage implementations.
package persistence

import "time"

// UserModel represents a user in the database.
type UserModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;uniqueIndex;size:255;not null"`
	Institution string    `gorm:"column:institution;size:255"`
	Role        string    `gorm:"column:role;size:16;default:user"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (UserModel) TableName() string {
	return "users"
}

// QuestionModel represents a question in the database. The embedding column
// stores the JSON-serialized vector, written once per content version.
type QuestionModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Title        string    `gorm:"column:title;size:255;not null"`
	Content      string    `gorm:"column:content;type:text;not null"`
	Embedding    string    `gorm:"column:embedding;type:text;not null"`
	CreatedByID  int64     `gorm:"column:created_by_id;index"`
	ModifiedByID int64     `gorm:"column:modified_by_id"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (QuestionModel) TableName() string {
	return "questions"
}

// QuestionSetModel represents a question set in the database.
type QuestionSetModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;size:255;not null"`
	Description  string    `gorm:"column:description;type:text"`
	Permission   string    `gorm:"column:permission;size:16;index;default:private"`
	OwnerID      int64     `gorm:"column:owner_id;index"`
	CreatedByID  int64     `gorm:"column:created_by_id"`
	ModifiedByID int64     `gorm:"column:modified_by_id"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (QuestionSetModel) TableName() string {
	return "question_sets"
}

// MaintainerModel links question sets to maintaining users. Composite primary
// key on both foreign ids, no surrogate key.
type MaintainerModel struct {
	SetID  int64 `gorm:"column:set_id;primaryKey"`
	UserID int64 `gorm:"column:user_id;primaryKey"`
}

// TableName returns the table name.
func (MaintainerModel) TableName() string {
	return "set_maintainers"
}

// MembershipModel links question sets to member questions. Composite primary
// key on both foreign ids; the uniqueness it enforces is what surfaces as
// ErrDuplicateMembership.
type MembershipModel struct {
	SetID      int64 `gorm:"column:set_id;primaryKey"`
	QuestionID int64 `gorm:"column:question_id;primaryKey"`
}

// TableName returns the table name.
func (MembershipModel) TableName() string {
	return "set_questions"
}
