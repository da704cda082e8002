package persistence

import (
	"context"
	"fmt"

	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/internal/database"
	"gorm.io/gorm"
)

// UserStore implements identity.Store using GORM.
type UserStore struct {
	database.Repository[identity.User, UserModel]
}

// NewUserStore creates a new UserStore.
func NewUserStore(db database.Database) UserStore {
	return UserStore{
		Repository: database.NewRepository[identity.User, UserModel](db, UserMapper{}, "user"),
	}
}

// Save creates or updates a user.
func (s UserStore) Save(ctx context.Context, user identity.User) (identity.User, error) {
	model := s.Mapper().ToModel(user)

	var result *gorm.DB
	if user.ID() == 0 {
		result = s.DB(ctx).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}

	if result.Error != nil {
		return identity.User{}, fmt.Errorf("save user: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}
