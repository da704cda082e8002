package persistence

import (
	"context"
	"fmt"

	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/domain/storage"
	"github.com/qabank/qabank/internal/database"
	"gorm.io/gorm"
)

// QuestionSetStore implements questionset.Store using GORM. Maintainer ids
// are loaded alongside each set so guardian predicates can run without
// further queries.
type QuestionSetStore struct {
	database.Repository[questionset.QuestionSet, QuestionSetModel]
	mapper QuestionSetMapper
}

// NewQuestionSetStore creates a new QuestionSetStore.
func NewQuestionSetStore(db database.Database) QuestionSetStore {
	return QuestionSetStore{
		Repository: database.NewRepository[questionset.QuestionSet, QuestionSetModel](db, QuestionSetMapper{}, "question set"),
	}
}

// Find retrieves sets matching the given options, maintainers included.
func (s QuestionSetStore) Find(ctx context.Context, options ...storage.Option) ([]questionset.QuestionSet, error) {
	sets, err := s.Repository.Find(ctx, options...)
	if err != nil {
		return nil, err
	}

	result := make([]questionset.QuestionSet, 0, len(sets))
	for _, set := range sets {
		withMaintainers, err := s.decorate(ctx, set)
		if err != nil {
			return nil, err
		}
		result = append(result, withMaintainers)
	}
	return result, nil
}

// FindOne retrieves a single set matching the given options, maintainers
// included.
func (s QuestionSetStore) FindOne(ctx context.Context, options ...storage.Option) (questionset.QuestionSet, error) {
	set, err := s.Repository.FindOne(ctx, options...)
	if err != nil {
		return questionset.QuestionSet{}, err
	}
	return s.decorate(ctx, set)
}

func (s QuestionSetStore) decorate(ctx context.Context, set questionset.QuestionSet) (questionset.QuestionSet, error) {
	var ids []int64
	err := s.DB(ctx).
		Model(&MaintainerModel{}).
		Where("set_id = ?", set.ID()).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return questionset.QuestionSet{}, fmt.Errorf("load maintainers: %w", err)
	}

	model := s.mapper.ToModel(set)
	return s.mapper.ToDomainWithMaintainers(model, ids), nil
}

// Save creates or updates a set. On create the owner is recorded as the sole
// initial maintainer in the same transaction.
func (s QuestionSetStore) Save(ctx context.Context, set questionset.QuestionSet) (questionset.QuestionSet, error) {
	model, err := database.WithTransactionResult(ctx, s.Database(), func(tx *gorm.DB) (QuestionSetModel, error) {
		model := s.mapper.ToModel(set)
		if set.ID() == 0 {
			if err := tx.Create(&model).Error; err != nil {
				return model, err
			}
			if model.OwnerID != 0 {
				return model, tx.Create(&MaintainerModel{SetID: model.ID, UserID: model.OwnerID}).Error
			}
			return model, nil
		}
		return model, tx.Save(&model).Error
	})
	if err != nil {
		return questionset.QuestionSet{}, fmt.Errorf("save question set: %w", err)
	}

	return s.decorate(ctx, s.mapper.ToDomain(model))
}

// Delete removes a set together with its maintainer and membership rows.
func (s QuestionSetStore) Delete(ctx context.Context, id int64) error {
	err := database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := tx.Where("set_id = ?", id).Delete(&MembershipModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("set_id = ?", id).Delete(&MaintainerModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&QuestionSetModel{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete question set: %w", err)
	}
	return nil
}

// AddMaintainer records a user as maintainer of a set.
func (s QuestionSetStore) AddMaintainer(ctx context.Context, setID, userID int64) error {
	result := s.DB(ctx).Create(&MaintainerModel{SetID: setID, UserID: userID})
	if result.Error != nil {
		return fmt.Errorf("add maintainer: %w", result.Error)
	}
	return nil
}
