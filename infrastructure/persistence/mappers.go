package persistence

import (
	"encoding/json"

	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/domain/question"
	"github.com/qabank/qabank/domain/questionset"
)

// UserMapper maps between domain User and UserModel.
type UserMapper struct{}

// ToDomain converts a UserModel to a domain User.
func (m UserMapper) ToDomain(e UserModel) identity.User {
	return identity.ReconstructUser(
		e.ID,
		e.Name,
		e.Institution,
		identity.Role(e.Role),
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain User to a UserModel.
func (m UserMapper) ToModel(u identity.User) UserModel {
	return UserModel{
		ID:          u.ID(),
		Name:        u.Name(),
		Institution: u.Institution(),
		Role:        string(u.Role()),
		CreatedAt:   u.CreatedAt(),
		UpdatedAt:   u.UpdatedAt(),
	}
}

// QuestionMapper maps between domain Question and QuestionModel.
type QuestionMapper struct{}

// ToDomain converts a QuestionModel to a domain Question. A corrupt embedding
// column maps to a nil vector; the owning service recomputes it on the next
// update.
func (m QuestionMapper) ToDomain(e QuestionModel) question.Question {
	var embedding []float32
	if e.Embedding != "" {
		_ = json.Unmarshal([]byte(e.Embedding), &embedding)
	}
	return question.ReconstructQuestion(
		e.ID,
		e.Title,
		e.Content,
		embedding,
		e.CreatedByID,
		e.ModifiedByID,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Question to a QuestionModel.
func (m QuestionMapper) ToModel(q question.Question) QuestionModel {
	raw, _ := json.Marshal(q.Embedding())
	return QuestionModel{
		ID:           q.ID(),
		Title:        q.Title(),
		Content:      q.Content(),
		Embedding:    string(raw),
		CreatedByID:  q.CreatedBy(),
		ModifiedByID: q.ModifiedBy(),
		CreatedAt:    q.CreatedAt(),
		UpdatedAt:    q.UpdatedAt(),
	}
}

// QuestionSetMapper maps between domain QuestionSet and QuestionSetModel.
// Maintainer ids live in a join table, so mapping to the domain entity takes
// them as an argument and mapping back ignores them.
type QuestionSetMapper struct{}

// ToDomain converts a QuestionSetModel without maintainer ids. Used by the
// generic repository; the store decorates the result via WithMaintainers.
func (m QuestionSetMapper) ToDomain(e QuestionSetModel) questionset.QuestionSet {
	return m.ToDomainWithMaintainers(e, nil)
}

// ToDomainWithMaintainers converts a QuestionSetModel and its maintainer ids.
func (m QuestionSetMapper) ToDomainWithMaintainers(e QuestionSetModel, maintainerIDs []int64) questionset.QuestionSet {
	return questionset.ReconstructQuestionSet(
		e.ID,
		e.Name,
		e.Description,
		questionset.Permission(e.Permission),
		e.OwnerID,
		maintainerIDs,
		e.CreatedByID,
		e.ModifiedByID,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain QuestionSet to a QuestionSetModel.
func (m QuestionSetMapper) ToModel(s questionset.QuestionSet) QuestionSetModel {
	return QuestionSetModel{
		ID:           s.ID(),
		Name:         s.Name(),
		Description:  s.Description(),
		Permission:   string(s.Permission()),
		OwnerID:      s.OwnerID(),
		CreatedByID:  s.CreatedBy(),
		ModifiedByID: s.ModifiedBy(),
		CreatedAt:    s.CreatedAt(),
		UpdatedAt:    s.UpdatedAt(),
	}
}
