package question

import (
	"context"

	"github.com/qabank/qabank/domain/storage"
)

// Store persists questions.
type Store interface {
	Find(ctx context.Context, options ...storage.Option) ([]Question, error)
	FindOne(ctx context.Context, options ...storage.Option) (Question, error)
	Count(ctx context.Context, options ...storage.Option) (int64, error)
	Save(ctx context.Context, q Question) (Question, error)
	Delete(ctx context.Context, id int64) error
}

// WithCreatedBy filters by the "created_by_id" column.
func WithCreatedBy(userID int64) storage.Option {
	return storage.WithCondition("created_by_id", userID)
}
