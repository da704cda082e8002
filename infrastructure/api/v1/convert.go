package v1

import (
	"github.com/qabank/qabank/application/service"
	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/domain/question"
	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/infrastructure/api/v1/dto"
)

func questionToDTO(q question.Question) dto.Question {
	return dto.Question{
		ID:         q.ID(),
		Title:      q.Title(),
		Content:    q.Content(),
		CreatedBy:  q.CreatedBy(),
		ModifiedBy: q.ModifiedBy(),
		CreatedAt:  q.CreatedAt(),
		UpdatedAt:  q.UpdatedAt(),
	}
}

func questionsToDTO(questions []question.Question) []dto.Question {
	out := make([]dto.Question, len(questions))
	for i, q := range questions {
		out[i] = questionToDTO(q)
	}
	return out
}

func setToDTO(set questionset.QuestionSet) dto.QuestionSet {
	return dto.QuestionSet{
		ID:            set.ID(),
		Name:          set.Name(),
		Description:   set.Description(),
		Permission:    string(set.Permission()),
		OwnerID:       set.OwnerID(),
		MaintainerIDs: set.MaintainerIDs(),
		CreatedAt:     set.CreatedAt(),
		UpdatedAt:     set.UpdatedAt(),
	}
}

func setsToDTO(sets []questionset.QuestionSet) []dto.QuestionSet {
	out := make([]dto.QuestionSet, len(sets))
	for i, set := range sets {
		out[i] = setToDTO(set)
	}
	return out
}

func userToDTO(user identity.User) dto.User {
	return dto.User{
		ID:          user.ID(),
		Name:        user.Name(),
		Institution: user.Institution(),
		Role:        string(user.Role()),
		CreatedAt:   user.CreatedAt(),
	}
}

func usersToDTO(users []identity.User) []dto.User {
	out := make([]dto.User, len(users))
	for i, user := range users {
		out[i] = userToDTO(user)
	}
	return out
}

func warningString(result interface{ IndexWarning() error }) string {
	if err := result.IndexWarning(); err != nil {
		return err.Error()
	}
	return ""
}

func matchesToDTO(matches []service.SearchMatch) []dto.SearchResult {
	out := make([]dto.SearchResult, len(matches))
	for i, match := range matches {
		out[i] = dto.SearchResult{
			Question: questionToDTO(match.Question()),
			Distance: match.Distance(),
		}
	}
	return out
}
