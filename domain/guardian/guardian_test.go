package guardian_test

import (
	"testing"
	"time"

	"github.com/qabank/qabank/domain/guardian"
	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/domain/question"
	"github.com/qabank/qabank/domain/questionset"
)

func user(id int64, role identity.Role) *identity.User {
	u := identity.ReconstructUser(id, "u", "inst", role, time.Time{}, time.Time{})
	return &u
}

func set(id int64, permission questionset.Permission, maintainers ...int64) questionset.QuestionSet {
	var owner int64
	if len(maintainers) > 0 {
		owner = maintainers[0]
	}
	return questionset.ReconstructQuestionSet(
		id, "s", "", permission, owner, maintainers, owner, owner, time.Time{}, time.Time{},
	)
}

func q(id, createdBy int64) question.Question {
	return question.ReconstructQuestion(id, "t", "c", []float32{1}, createdBy, createdBy, time.Time{}, time.Time{})
}

func TestCanCreate(t *testing.T) {
	if guardian.CanCreateQuestion(nil) {
		t.Error("anonymous actor should not create questions")
	}
	if guardian.CanCreateQuestionSet(nil) {
		t.Error("anonymous actor should not create sets")
	}
	if !guardian.CanCreateQuestion(user(1, identity.RoleUser)) {
		t.Error("signed-in user should create questions")
	}
}

func TestCanReadQuestionSet(t *testing.T) {
	tests := []struct {
		name  string
		actor *identity.User
		set   questionset.QuestionSet
		want  bool
	}{
		{"anonymous reads public", nil, set(2, questionset.PermissionPublic, 1), true},
		{"anonymous denied private", nil, set(2, questionset.PermissionPrivate, 1), false},
		{"anonymous denied protected", nil, set(2, questionset.PermissionProtected, 1), false},
		{"stranger denied private", user(9, identity.RoleUser), set(2, questionset.PermissionPrivate, 1), false},
		{"maintainer reads private", user(1, identity.RoleUser), set(2, questionset.PermissionPrivate, 1), true},
		{"admin reads private", user(9, identity.RoleAdmin), set(2, questionset.PermissionPrivate, 1), true},
		{"anyone reads aggregate", nil, set(questionset.PublicSetID, questionset.PermissionPublic), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := guardian.CanReadQuestionSet(tt.actor, tt.set); got != tt.want {
				t.Errorf("CanReadQuestionSet() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanModifyQuestionSet(t *testing.T) {
	tests := []struct {
		name  string
		actor *identity.User
		set   questionset.QuestionSet
		want  bool
	}{
		{"anonymous denied", nil, set(2, questionset.PermissionPublic, 1), false},
		{"stranger denied", user(9, identity.RoleUser), set(2, questionset.PermissionPublic, 1), false},
		{"maintainer allowed", user(1, identity.RoleUser), set(2, questionset.PermissionPrivate, 1), true},
		{"admin allowed", user(9, identity.RoleAdmin), set(2, questionset.PermissionPrivate, 1), true},
		{"aggregate never modifiable", user(9, identity.RoleAdmin), set(questionset.PublicSetID, questionset.PermissionPublic), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := guardian.CanModifyQuestionSet(tt.actor, tt.set); got != tt.want {
				t.Errorf("CanModifyQuestionSet() = %v, want %v", got, tt.want)
			}
			if got := guardian.CanDeleteQuestionSet(tt.actor, tt.set); got != tt.want {
				t.Errorf("CanDeleteQuestionSet() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanTouchQuestionViaContainingSets(t *testing.T) {
	creator := user(1, identity.RoleUser)
	maintainer := user(2, identity.RoleUser)
	stranger := user(3, identity.RoleUser)
	admin := user(4, identity.RoleAdmin)

	theQuestion := q(10, creator.ID())
	containing := []questionset.QuestionSet{
		set(5, questionset.PermissionPrivate, maintainer.ID()),
		set(questionset.PublicSetID, questionset.PermissionPublic),
	}

	if !guardian.CanModifyQuestion(creator, theQuestion, nil) {
		t.Error("creator should modify own question regardless of sets")
	}
	if !guardian.CanModifyQuestion(maintainer, theQuestion, containing) {
		t.Error("maintainer of a containing set should modify the question")
	}
	if guardian.CanModifyQuestion(stranger, theQuestion, containing) {
		t.Error("stranger should not modify the question")
	}
	if !guardian.CanModifyQuestion(admin, theQuestion, nil) {
		t.Error("admin should modify any question")
	}
	if guardian.CanModifyQuestion(nil, theQuestion, containing) {
		t.Error("anonymous actor should not modify questions")
	}
}

func TestAggregateMembershipGrantsNothing(t *testing.T) {
	// A question whose only containing set is the aggregate is not
	// touchable through set permissions, even though the aggregate is
	// public and world-readable through search.
	stranger := user(3, identity.RoleUser)
	theQuestion := q(10, 1)
	onlyAggregate := []questionset.QuestionSet{
		set(questionset.PublicSetID, questionset.PermissionPublic),
	}

	if guardian.CanModifyQuestion(stranger, theQuestion, onlyAggregate) {
		t.Error("aggregate membership should not grant modify")
	}
	if guardian.CanReadQuestion(stranger, theQuestion, onlyAggregate) {
		t.Error("aggregate membership should not grant direct read")
	}
}
