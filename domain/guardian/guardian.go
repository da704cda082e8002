// Package guardian decides who may read and mutate questions and question
// sets. Every predicate is a pure function over already-loaded entities; none
// of them touch storage. Predicates fail closed: an absent actor is denied
// everything except reading public sets.
package guardian

import (
	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/domain/question"
	"github.com/qabank/qabank/domain/questionset"
)

// CanCreateQuestion reports whether the actor may create questions.
// Any authenticated user may.
func CanCreateQuestion(actor *identity.User) bool {
	return actor != nil
}

// CanCreateQuestionSet reports whether the actor may create question sets.
// Any authenticated user may.
func CanCreateQuestionSet(actor *identity.User) bool {
	return actor != nil
}

// CanReadQuestion reports whether the actor may read a question. The actor
// must be the admin, the creator, or able to read at least one non-aggregate
// set containing the question. containing must hold every set the question
// belongs to; the rule is total over all of them, not an arbitrary first one.
func CanReadQuestion(actor *identity.User, q question.Question, containing []questionset.QuestionSet) bool {
	return canTouchQuestion(actor, q, containing, CanReadQuestionSet)
}

// CanModifyQuestion reports whether the actor may modify a question. Same
// shape as CanReadQuestion, with the modify predicate on containing sets.
func CanModifyQuestion(actor *identity.User, q question.Question, containing []questionset.QuestionSet) bool {
	return canTouchQuestion(actor, q, containing, CanModifyQuestionSet)
}

// CanDeleteQuestion reports whether the actor may delete a question.
func CanDeleteQuestion(actor *identity.User, q question.Question, containing []questionset.QuestionSet) bool {
	return canTouchQuestion(actor, q, containing, CanModifyQuestionSet)
}

func canTouchQuestion(
	actor *identity.User,
	q question.Question,
	containing []questionset.QuestionSet,
	setPredicate func(*identity.User, questionset.QuestionSet) bool,
) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if q.CreatedBy() == actor.ID() {
		return true
	}
	for _, set := range containing {
		if set.IsAggregate() {
			continue
		}
		if setPredicate(actor, set) {
			return true
		}
	}
	return false
}

// CanReadQuestionSet reports whether the actor may read a set. Public sets
// are readable by anyone, anonymous actors included; otherwise the actor
// must be the admin or a maintainer.
func CanReadQuestionSet(actor *identity.User, set questionset.QuestionSet) bool {
	if set.IsPublic() {
		return true
	}
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return set.IsMaintainer(actor.ID())
}

// CanModifyQuestionSet reports whether the actor may modify a set. The public
// aggregate set is never modifiable through the mutation API.
func CanModifyQuestionSet(actor *identity.User, set questionset.QuestionSet) bool {
	if actor == nil {
		return false
	}
	if set.IsAggregate() {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return set.IsMaintainer(actor.ID())
}

// CanDeleteQuestionSet reports whether the actor may delete a set.
func CanDeleteQuestionSet(actor *identity.User, set questionset.QuestionSet) bool {
	return CanModifyQuestionSet(actor, set)
}
