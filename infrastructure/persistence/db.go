package persistence

import (
	"context"
	"fmt"

	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/internal/database"
	"gorm.io/gorm/clause"
)

// RunMigrations creates or updates the schema and seeds the public aggregate
// set, which always occupies row id 1.
func RunMigrations(ctx context.Context, db database.Database) error {
	err := db.Session(ctx).AutoMigrate(
		&UserModel{},
		&QuestionModel{},
		&QuestionSetModel{},
		&MaintainerModel{},
		&MembershipModel{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return seedAggregateSet(ctx, db)
}

func seedAggregateSet(ctx context.Context, db database.Database) error {
	aggregate := QuestionSetModel{
		ID:         questionset.PublicSetID,
		Name:       "Public Questions",
		Permission: string(questionset.PermissionPublic),
	}
	err := db.Session(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&aggregate).Error
	if err != nil {
		return fmt.Errorf("seed aggregate set: %w", err)
	}
	return nil
}
