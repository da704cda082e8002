package persistence

import (
	"context"
	"fmt"

	"github.com/qabank/qabank/domain/question"
	"github.com/qabank/qabank/internal/database"
	"gorm.io/gorm"
)

// QuestionStore implements question.Store using GORM.
type QuestionStore struct {
	database.Repository[question.Question, QuestionModel]
}

// NewQuestionStore creates a new QuestionStore.
func NewQuestionStore(db database.Database) QuestionStore {
	return QuestionStore{
		Repository: database.NewRepository[question.Question, QuestionModel](db, QuestionMapper{}, "question"),
	}
}

// Save creates or updates a question.
func (s QuestionStore) Save(ctx context.Context, q question.Question) (question.Question, error) {
	model := s.Mapper().ToModel(q)

	var result *gorm.DB
	if q.ID() == 0 {
		result = s.DB(ctx).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}

	if result.Error != nil {
		return question.Question{}, fmt.Errorf("save question: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes a question and its membership rows.
func (s QuestionStore) Delete(ctx context.Context, id int64) error {
	err := database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&MembershipModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&QuestionModel{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}
