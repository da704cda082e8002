package questionset

import (
	"context"

	"github.com/qabank/qabank/domain/storage"
)

// Store persists question sets. Implementations load maintainer ids together
// with each set so permission checks never need extra queries.
type Store interface {
	Find(ctx context.Context, options ...storage.Option) ([]QuestionSet, error)
	FindOne(ctx context.Context, options ...storage.Option) (QuestionSet, error)
	Count(ctx context.Context, options ...storage.Option) (int64, error)
	Save(ctx context.Context, set QuestionSet) (QuestionSet, error)
	Delete(ctx context.Context, id int64) error
	AddMaintainer(ctx context.Context, setID, userID int64) error
}

// MembershipStore persists set/question membership rows. Each mutating method
// runs as a single relational transaction: either every row change lands
// (including public aggregate fan-out and the set's audit fields), or none do.
type MembershipStore interface {
	// Add inserts membership rows for each question. When fanOutPublic is
	// set, matching rows are inserted for the public aggregate set in the
	// same transaction. A uniqueness violation yields ErrDuplicateMembership
	// with no partial state.
	Add(ctx context.Context, setID int64, questionIDs []int64, fanOutPublic bool, actorID int64) error

	// Remove deletes membership rows for each question, with the same
	// aggregate fan-out rule as Add. A question that is not a member of the
	// set rolls the batch back with ErrValidation.
	Remove(ctx context.Context, setID int64, questionIDs []int64, fanOutPublic bool, actorID int64) error

	// ChangePermission updates the set's permission and, when the public
	// flag flips, inserts or deletes the aggregate memberships for the
	// given member questions in the same transaction.
	ChangePermission(ctx context.Context, setID int64, from, to Permission, memberIDs []int64, actorID int64) error

	// QuestionIDs returns the ids of every question in the set, ascending.
	QuestionIDs(ctx context.Context, setID int64) ([]int64, error)

	// SetIDs returns the ids of every set containing the question, ascending.
	SetIDs(ctx context.Context, questionID int64) ([]int64, error)
}

// WithOwner filters by the "owner_id" column.
func WithOwner(userID int64) storage.Option {
	return storage.WithCondition("owner_id", userID)
}

// WithPermission filters by the "permission" column.
func WithPermission(p Permission) storage.Option {
	return storage.WithCondition("permission", string(p))
}
