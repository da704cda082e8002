// Package service orchestrates domain operations: permission checks, the
// relational transaction, and the best-effort vector index phase that
// follows it.
package service

import (
	"github.com/qabank/qabank/domain/question"
	"github.com/qabank/qabank/domain/questionset"
)

// MembershipResult reports the outcome of a membership or set operation.
//
// IndexWarning carries a vector index failure from the phase that runs after
// the relational commit. The relational change is durable either way; a
// non-nil warning means the index lags until the affected rows are written
// again.
type MembershipResult struct {
	set          questionset.QuestionSet
	indexWarning error
}

// NewMembershipResult creates a MembershipResult.
func NewMembershipResult(set questionset.QuestionSet, indexWarning error) MembershipResult {
	return MembershipResult{set: set, indexWarning: indexWarning}
}

// Set returns the set as it stands after the operation.
func (r MembershipResult) Set() questionset.QuestionSet { return r.set }

// IndexWarning returns the vector phase failure, nil when the index was
// updated cleanly.
func (r MembershipResult) IndexWarning() error { return r.indexWarning }

// QuestionResult reports the outcome of a question write.
type QuestionResult struct {
	question     question.Question
	indexWarning error
}

// NewQuestionResult creates a QuestionResult.
func NewQuestionResult(q question.Question, indexWarning error) QuestionResult {
	return QuestionResult{question: q, indexWarning: indexWarning}
}

// Question returns the question as it stands after the operation.
func (r QuestionResult) Question() question.Question { return r.question }

// IndexWarning returns the vector phase failure, nil when the index was
// updated cleanly.
func (r QuestionResult) IndexWarning() error { return r.indexWarning }

// SearchMatch pairs a hydrated question with its distance to the query
// vector. Smaller distance means closer.
type SearchMatch struct {
	question question.Question
	distance float32
}

// NewSearchMatch creates a SearchMatch.
func NewSearchMatch(q question.Question, distance float32) SearchMatch {
	return SearchMatch{question: q, distance: distance}
}

// Question returns the matched question.
func (m SearchMatch) Question() question.Question { return m.question }

// Distance returns the distance to the query vector.
func (m SearchMatch) Distance() float32 { return m.distance }
