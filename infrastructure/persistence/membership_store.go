package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/internal/database"
	"github.com/qabank/qabank/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipStore implements questionset.MembershipStore using GORM. Every
// mutating method runs inside one transaction so a failure anywhere leaves
// the membership table, the aggregate rows and the set's audit fields
// untouched.
type MembershipStore struct {
	db database.Database
}

// NewMembershipStore creates a new MembershipStore.
func NewMembershipStore(db database.Database) MembershipStore {
	return MembershipStore{db: db}
}

// Add inserts membership rows for each question, fanning out to the public
// aggregate set when requested.
func (s MembershipStore) Add(ctx context.Context, setID int64, questionIDs []int64, fanOutPublic bool, actorID int64) error {
	if len(questionIDs) == 0 {
		return nil
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		rows := membershipRows(setID, questionIDs)
		if err := tx.Create(&rows).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: question already in set %d", domain.ErrDuplicateMembership, setID)
			}
			return err
		}

		if fanOutPublic {
			// A question may already sit in the aggregate through
			// another public set, so conflicts are silently kept.
			aggregate := membershipRows(questionset.PublicSetID, questionIDs)
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&aggregate).Error; err != nil {
				return err
			}
		}

		return touchSet(tx, setID, actorID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateMembership) {
			return err
		}
		return fmt.Errorf("add memberships: %w", err)
	}
	return nil
}

// Remove deletes membership rows for each question. A question that is not a
// member of the set rolls the whole batch back with ErrValidation. Aggregate
// rows are removed unconditionally when fan-out applies, regardless of other
// public sets still holding the question.
func (s MembershipStore) Remove(ctx context.Context, setID int64, questionIDs []int64, fanOutPublic bool, actorID int64) error {
	if len(questionIDs) == 0 {
		return nil
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		result := tx.
			Where("set_id = ? AND question_id IN ?", setID, questionIDs).
			Delete(&MembershipModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(questionIDs)) {
			return fmt.Errorf("%w: %d of %d questions are members of set %d",
				domain.ErrValidation, result.RowsAffected, len(questionIDs), setID)
		}

		if fanOutPublic {
			err := tx.
				Where("set_id = ? AND question_id IN ?", int64(questionset.PublicSetID), questionIDs).
				Delete(&MembershipModel{}).Error
			if err != nil {
				return err
			}
		}

		return touchSet(tx, setID, actorID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return fmt.Errorf("remove memberships: %w", err)
	}
	return nil
}

// ChangePermission updates the set's permission column and reconciles the
// aggregate memberships when the public flag flips.
func (s MembershipStore) ChangePermission(ctx context.Context, setID int64, from, to questionset.Permission, memberIDs []int64, actorID int64) error {
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		err := tx.Model(&QuestionSetModel{}).
			Where("id = ?", setID).
			Updates(map[string]any{
				"permission":     string(to),
				"modified_by_id": actorID,
				"updated_at":     time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}

		wasPublic := from == questionset.PermissionPublic
		isPublic := to == questionset.PermissionPublic
		switch {
		case !wasPublic && isPublic && len(memberIDs) > 0:
			rows := membershipRows(questionset.PublicSetID, memberIDs)
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
		case wasPublic && !isPublic && len(memberIDs) > 0:
			return tx.
				Where("set_id = ? AND question_id IN ?", int64(questionset.PublicSetID), memberIDs).
				Delete(&MembershipModel{}).Error
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("change set permission: %w", err)
	}
	return nil
}

// QuestionIDs returns the ids of every question in the set, ascending.
func (s MembershipStore) QuestionIDs(ctx context.Context, setID int64) ([]int64, error) {
	var ids []int64
	err := s.db.Session(ctx).
		Model(&MembershipModel{}).
		Where("set_id = ?", setID).
		Order("question_id ASC").
		Pluck("question_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list set questions: %w", err)
	}
	return ids, nil
}

// SetIDs returns the ids of every set containing the question, ascending.
func (s MembershipStore) SetIDs(ctx context.Context, questionID int64) ([]int64, error) {
	var ids []int64
	err := s.db.Session(ctx).
		Model(&MembershipModel{}).
		Where("question_id = ?", questionID).
		Order("set_id ASC").
		Pluck("set_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}
	return ids, nil
}

func membershipRows(setID int64, questionIDs []int64) []MembershipModel {
	rows := make([]MembershipModel, 0, len(questionIDs))
	for _, id := range questionIDs {
		rows = append(rows, MembershipModel{SetID: setID, QuestionID: id})
	}
	return rows
}

func touchSet(tx *gorm.DB, setID, actorID int64) error {
	return tx.Model(&QuestionSetModel{}).
		Where("id = ?", setID).
		Updates(map[string]any{
			"modified_by_id": actorID,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
