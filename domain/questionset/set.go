// Package questionset holds the question set entity, its permission model,
// and the membership contracts that tie questions to sets.
package questionset

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/qabank/qabank/internal/domain"
)

// PublicSetID is the reserved id of the public aggregate set. Its membership
// mirrors the union of every public set's membership; it is only ever mutated
// as a derived effect of operations on ordinary sets.
const PublicSetID int64 = 1

// Permission controls who may read a set.
type Permission string

// Permission values.
const (
	PermissionPublic    Permission = "public"
	PermissionProtected Permission = "protected"
	PermissionPrivate   Permission = "private"
)

// Valid reports whether p is a known permission value.
func (p Permission) Valid() bool {
	switch p {
	case PermissionPublic, PermissionProtected, PermissionPrivate:
		return true
	}
	return false
}

// QuestionSet is a named, permissioned group of questions with a parallel
// vector collection.
type QuestionSet struct {
	id            int64
	name          string
	description   string
	permission    Permission
	ownerID       int64
	maintainerIDs []int64
	createdBy     int64
	modifiedBy    int64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewQuestionSet creates a set owned by the given user, who becomes its sole
// initial maintainer.
func NewQuestionSet(name string, permission Permission, ownerID int64) (QuestionSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return QuestionSet{}, fmt.Errorf("%w: set name is empty", domain.ErrValidation)
	}
	if permission == "" {
		permission = PermissionPrivate
	}
	if !permission.Valid() {
		return QuestionSet{}, fmt.Errorf("%w: unknown permission %q", domain.ErrValidation, permission)
	}
	return QuestionSet{
		name:          name,
		permission:    permission,
		ownerID:       ownerID,
		maintainerIDs: []int64{ownerID},
		createdBy:     ownerID,
		modifiedBy:    ownerID,
	}, nil
}

// ReconstructQuestionSet rebuilds a set from stored fields.
func ReconstructQuestionSet(
	id int64,
	name, description string,
	permission Permission,
	ownerID int64,
	maintainerIDs []int64,
	createdBy, modifiedBy int64,
	createdAt, updatedAt time.Time,
) QuestionSet {
	return QuestionSet{
		id:            id,
		name:          name,
		description:   description,
		permission:    permission,
		ownerID:       ownerID,
		maintainerIDs: slices.Clone(maintainerIDs),
		createdBy:     createdBy,
		modifiedBy:    modifiedBy,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the set id.
func (s QuestionSet) ID() int64 { return s.id }

// Name returns the set name.
func (s QuestionSet) Name() string { return s.name }

// Description returns the set description.
func (s QuestionSet) Description() string { return s.description }

// Permission returns the set's read permission.
func (s QuestionSet) Permission() Permission { return s.permission }

// IsPublic reports whether the set is publicly readable.
func (s QuestionSet) IsPublic() bool { return s.permission == PermissionPublic }

// IsAggregate reports whether this is the reserved public aggregate set.
func (s QuestionSet) IsAggregate() bool { return s.id == PublicSetID }

// OwnerID returns the owning user's id.
func (s QuestionSet) OwnerID() int64 { return s.ownerID }

// MaintainerIDs returns the ids of all maintainers, the owner included.
func (s QuestionSet) MaintainerIDs() []int64 { return slices.Clone(s.maintainerIDs) }

// IsMaintainer reports whether the given user maintains this set. The owner
// is implicitly a maintainer.
func (s QuestionSet) IsMaintainer(userID int64) bool {
	if userID == 0 {
		return false
	}
	if userID == s.ownerID {
		return true
	}
	return slices.Contains(s.maintainerIDs, userID)
}

// CreatedBy returns the id of the creating user.
func (s QuestionSet) CreatedBy() int64 { return s.createdBy }

// ModifiedBy returns the id of the last modifying user.
func (s QuestionSet) ModifiedBy() int64 { return s.modifiedBy }

// CreatedAt returns the creation timestamp.
func (s QuestionSet) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last modification timestamp.
func (s QuestionSet) UpdatedAt() time.Time { return s.updatedAt }

// Rename returns a copy with the new name.
func (s QuestionSet) Rename(name string, modifiedBy int64) (QuestionSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return QuestionSet{}, fmt.Errorf("%w: set name is empty", domain.ErrValidation)
	}
	s.name = name
	s.modifiedBy = modifiedBy
	return s, nil
}

// WithDescription returns a copy with the new description.
func (s QuestionSet) WithDescription(description string, modifiedBy int64) QuestionSet {
	s.description = description
	s.modifiedBy = modifiedBy
	return s
}
