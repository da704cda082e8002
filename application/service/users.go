package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/domain/storage"
	"github.com/qabank/qabank/internal/database"
	"github.com/qabank/qabank/internal/domain"
)

// Users provides user registration and lookup.
type Users struct {
	store  identity.Store
	logger *slog.Logger
}

// NewUsers creates a new Users service.
func NewUsers(store identity.Store, logger *slog.Logger) *Users {
	return &Users{store: store, logger: logger}
}

// Register creates a new user with the default role. Names are unique.
func (s *Users) Register(ctx context.Context, name, institution string) (identity.User, error) {
	user, err := identity.NewUser(name, institution)
	if err != nil {
		return identity.User{}, err
	}

	taken, err := s.store.Exists(ctx, identity.WithName(name))
	if err != nil {
		return identity.User{}, fmt.Errorf("check user name: %w", err)
	}
	if taken {
		return identity.User{}, fmt.Errorf("%w: name %q already registered", domain.ErrValidation, name)
	}

	saved, err := s.store.Save(ctx, user)
	if err != nil {
		return identity.User{}, fmt.Errorf("save user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", saved.ID()),
		slog.String("name", saved.Name()),
	)
	return saved, nil
}

// Get retrieves a user by id.
func (s *Users) Get(ctx context.Context, id int64) (identity.User, error) {
	return s.store.FindOne(ctx, storage.WithID(id))
}

// GetByName retrieves a user by name.
func (s *Users) GetByName(ctx context.Context, name string) (identity.User, error) {
	return s.store.FindOne(ctx, identity.WithName(name))
}

// List returns one page of users ordered by id.
func (s *Users) List(ctx context.Context, page, perPage int) (database.Page[identity.User], error) {
	return database.Paginate(ctx, s.store, page, perPage, storage.WithOrderAsc("id"))
}
