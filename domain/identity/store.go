package identity

import (
	"context"

	"github.com/qabank/qabank/domain/storage"
)

// Store persists users.
type Store interface {
	Find(ctx context.Context, options ...storage.Option) ([]User, error)
	FindOne(ctx context.Context, options ...storage.Option) (User, error)
	Count(ctx context.Context, options ...storage.Option) (int64, error)
	Exists(ctx context.Context, options ...storage.Option) (bool, error)
	Save(ctx context.Context, user User) (User, error)
}

// WithName filters by the "name" column.
func WithName(name string) storage.Option {
	return storage.WithCondition("name", name)
}
