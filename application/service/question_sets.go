package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qabank/qabank/domain/guardian"
	"github.com/qabank/qabank/domain/identity"
	"github.com/qabank/qabank/domain/question"
	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/domain/storage"
	"github.com/qabank/qabank/internal/database"
	"github.com/qabank/qabank/internal/domain"
)

// SetCreateParams configures creating a question set.
type SetCreateParams struct {
	Name        string
	Description string
	Permission  questionset.Permission
}

// QuestionSets coordinates set lifecycle and membership across the
// relational store and the vector index.
//
// Every operation follows the same two-phase shape: the relational
// transaction commits first, then the vector phase runs best-effort. A
// vector failure never undoes the relational change; it surfaces as
// MembershipResult.IndexWarning and is logged.
type QuestionSets struct {
	setStore      questionset.Store
	questionStore question.Store
	memberships   questionset.MembershipStore
	index         search.Index
	logger        *slog.Logger
}

// NewQuestionSets creates a new QuestionSets service.
func NewQuestionSets(
	setStore questionset.Store,
	questionStore question.Store,
	memberships questionset.MembershipStore,
	index search.Index,
	logger *slog.Logger,
) *QuestionSets {
	return &QuestionSets{
		setStore:      setStore,
		questionStore: questionStore,
		memberships:   memberships,
		index:         index,
		logger:        logger,
	}
}

// Create creates a set with the actor as owner and sole maintainer, plus an
// empty vector collection for it.
func (s *QuestionSets) Create(ctx context.Context, actor *identity.User, params SetCreateParams) (MembershipResult, error) {
	if !guardian.CanCreateQuestionSet(actor) {
		return MembershipResult{}, fmt.Errorf("%w: create question set", domain.ErrForbidden)
	}

	permission := params.Permission
	if permission == "" {
		permission = questionset.PermissionPrivate
	}
	if !permission.Valid() {
		return MembershipResult{}, fmt.Errorf("%w: unknown permission %q", domain.ErrValidation, params.Permission)
	}

	set, err := questionset.NewQuestionSet(params.Name, permission, actor.ID())
	if err != nil {
		return MembershipResult{}, err
	}
	if params.Description != "" {
		set = set.WithDescription(params.Description, actor.ID())
	}

	saved, err := s.setStore.Save(ctx, set)
	if err != nil {
		return MembershipResult{}, fmt.Errorf("save question set: %w", err)
	}

	warning := s.warn(ctx, "create collection", saved.ID(),
		s.index.CreateCollection(ctx, search.CollectionName(saved.ID())))

	s.logger.Info("question set created",
		slog.Int64("set_id", saved.ID()),
		slog.Int64("owner_id", actor.ID()),
		slog.String("permission", string(saved.Permission())),
	)
	return NewMembershipResult(saved, warning), nil
}

// Delete removes a set, its memberships and its vector collection. Deleting
// a public set also removes its questions from the aggregate.
func (s *QuestionSets) Delete(ctx context.Context, actor *identity.User, setID int64) (MembershipResult, error) {
	set, err := s.setStore.FindOne(ctx, storage.WithID(setID))
	if err != nil {
		return MembershipResult{}, err
	}
	if !guardian.CanDeleteQuestionSet(actor, set) {
		return MembershipResult{}, fmt.Errorf("%w: delete set %d", domain.ErrForbidden, setID)
	}

	memberIDs, err := s.memberships.QuestionIDs(ctx, setID)
	if err != nil {
		return MembershipResult{}, err
	}

	if set.IsPublic() && len(memberIDs) > 0 {
		if err := s.memberships.Remove(ctx, setID, memberIDs, true, actor.ID()); err != nil {
			return MembershipResult{}, err
		}
	}
	if err := s.setStore.Delete(ctx, setID); err != nil {
		return MembershipResult{}, err
	}

	warning := s.warn(ctx, "drop collection", setID,
		s.index.DropCollection(ctx, search.CollectionName(setID)))
	if set.IsPublic() && len(memberIDs) > 0 {
		warning = errors.Join(warning, s.warn(ctx, "prune aggregate", setID,
			s.index.Delete(ctx, search.CollectionName(questionset.PublicSetID), memberIDs)))
	}

	s.logger.Info("question set deleted",
		slog.Int64("set_id", setID),
		slog.Int("questions", len(memberIDs)),
	)
	return NewMembershipResult(set, warning), nil
}

// AddQuestions adds questions to a set. Resolution is all or nothing: if any
// id does not exist nothing is written. Public sets fan the memberships and
// vectors out to the aggregate.
func (s *QuestionSets) AddQuestions(ctx context.Context, actor *identity.User, setID int64, questionIDs []int64) (MembershipResult, error) {
	set, questions, err := s.resolveForMembership(ctx, actor, setID, questionIDs)
	if err != nil {
		return MembershipResult{}, err
	}

	ids, vectors := idsAndVectors(questions)
	if err := s.memberships.Add(ctx, setID, ids, set.IsPublic(), actor.ID()); err != nil {
		return MembershipResult{}, err
	}

	warning := s.warn(ctx, "index memberships", setID,
		s.index.Insert(ctx, search.CollectionName(setID), ids, vectors))
	if set.IsPublic() {
		warning = errors.Join(warning, s.warn(ctx, "index aggregate", setID,
			s.index.Insert(ctx, search.CollectionName(questionset.PublicSetID), ids, vectors)))
	}

	s.logger.Info("questions added to set",
		slog.Int64("set_id", setID),
		slog.Int("count", len(ids)),
		slog.Bool("public", set.IsPublic()),
	)
	return NewMembershipResult(set, warning), nil
}

// RemoveQuestions removes questions from a set. Removing a question that is
// not a member fails the whole batch with ErrValidation. Removal from a
// public set removes the questions from the aggregate unconditionally, even
// when another public set still holds them.
func (s *QuestionSets) RemoveQuestions(ctx context.Context, actor *identity.User, setID int64, questionIDs []int64) (MembershipResult, error) {
	set, questions, err := s.resolveForMembership(ctx, actor, setID, questionIDs)
	if err != nil {
		return MembershipResult{}, err
	}

	ids, _ := idsAndVectors(questions)
	if err := s.memberships.Remove(ctx, setID, ids, set.IsPublic(), actor.ID()); err != nil {
		return MembershipResult{}, err
	}

	warning := s.warn(ctx, "unindex memberships", setID,
		s.index.Delete(ctx, search.CollectionName(setID), ids))
	if set.IsPublic() {
		warning = errors.Join(warning, s.warn(ctx, "unindex aggregate", setID,
			s.index.Delete(ctx, search.CollectionName(questionset.PublicSetID), ids)))
	}

	s.logger.Info("questions removed from set",
		slog.Int64("set_id", setID),
		slog.Int("count", len(ids)),
		slog.Bool("public", set.IsPublic()),
	)
	return NewMembershipResult(set, warning), nil
}

// Rename changes the set's name. Relational only, the index is untouched.
func (s *QuestionSets) Rename(ctx context.Context, actor *identity.User, setID int64, name string) (questionset.QuestionSet, error) {
	set, err := s.authorizedForModify(ctx, actor, setID)
	if err != nil {
		return questionset.QuestionSet{}, err
	}

	renamed, err := set.Rename(name, actor.ID())
	if err != nil {
		return questionset.QuestionSet{}, err
	}
	return s.setStore.Save(ctx, renamed)
}

// UpdateDescription changes the set's description.
func (s *QuestionSets) UpdateDescription(ctx context.Context, actor *identity.User, setID int64, description string) (questionset.QuestionSet, error) {
	set, err := s.authorizedForModify(ctx, actor, setID)
	if err != nil {
		return questionset.QuestionSet{}, err
	}
	return s.setStore.Save(ctx, set.WithDescription(description, actor.ID()))
}

// ChangeVisibility moves a set between permission levels. Gaining public
// inserts every member into the aggregate; losing public removes them. Equal
// permission is a no-op.
func (s *QuestionSets) ChangeVisibility(ctx context.Context, actor *identity.User, setID int64, to questionset.Permission) (MembershipResult, error) {
	if !to.Valid() {
		return MembershipResult{}, fmt.Errorf("%w: unknown permission %q", domain.ErrValidation, to)
	}

	set, err := s.authorizedForModify(ctx, actor, setID)
	if err != nil {
		return MembershipResult{}, err
	}
	from := set.Permission()
	if from == to {
		return NewMembershipResult(set, nil), nil
	}

	memberIDs, err := s.memberships.QuestionIDs(ctx, setID)
	if err != nil {
		return MembershipResult{}, err
	}
	if err := s.memberships.ChangePermission(ctx, setID, from, to, memberIDs, actor.ID()); err != nil {
		return MembershipResult{}, err
	}

	var warning error
	wasPublic := from == questionset.PermissionPublic
	isPublic := to == questionset.PermissionPublic
	switch {
	case !wasPublic && isPublic && len(memberIDs) > 0:
		questions, err := s.questionStore.Find(ctx, storage.WithIDIn(memberIDs))
		if err != nil {
			return MembershipResult{}, err
		}
		ids, vectors := idsAndVectors(questions)
		warning = s.warn(ctx, "index aggregate", setID,
			s.index.Insert(ctx, search.CollectionName(questionset.PublicSetID), ids, vectors))
	case wasPublic && !isPublic && len(memberIDs) > 0:
		warning = s.warn(ctx, "unindex aggregate", setID,
			s.index.Delete(ctx, search.CollectionName(questionset.PublicSetID), memberIDs))
	}

	updated, err := s.setStore.FindOne(ctx, storage.WithID(setID))
	if err != nil {
		return MembershipResult{}, err
	}

	s.logger.Info("set visibility changed",
		slog.Int64("set_id", setID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	return NewMembershipResult(updated, warning), nil
}

// Get retrieves a set the actor may read.
func (s *QuestionSets) Get(ctx context.Context, actor *identity.User, setID int64) (questionset.QuestionSet, error) {
	set, err := s.setStore.FindOne(ctx, storage.WithID(setID))
	if err != nil {
		return questionset.QuestionSet{}, err
	}
	if !guardian.CanReadQuestionSet(actor, set) {
		return questionset.QuestionSet{}, fmt.Errorf("%w: read set %d", domain.ErrForbidden, setID)
	}
	return set, nil
}

// List returns one page of sets visible to the actor: public sets plus, for
// signed-in users, the sets they maintain. Admins see everything.
func (s *QuestionSets) List(ctx context.Context, actor *identity.User, page, perPage int) (database.Page[questionset.QuestionSet], error) {
	options := []storage.Option{storage.WithOrderAsc("id")}
	switch {
	case actor == nil:
		options = append(options, questionset.WithPermission(questionset.PermissionPublic))
	case actor.IsAdmin():
		// no filter
	default:
		options = append(options, storage.WithWhere(
			"permission = ? OR id IN (SELECT set_id FROM set_maintainers WHERE user_id = ?)",
			string(questionset.PermissionPublic), actor.ID(),
		))
	}
	return database.Paginate(ctx, s.setStore, page, perPage, options...)
}

// ListQuestions returns one page of a set's questions, for actors allowed to
// read the set.
func (s *QuestionSets) ListQuestions(ctx context.Context, actor *identity.User, setID int64, page, perPage int) (database.Page[question.Question], error) {
	set, err := s.setStore.FindOne(ctx, storage.WithID(setID))
	if err != nil {
		return database.Page[question.Question]{}, err
	}
	if !guardian.CanReadQuestionSet(actor, set) {
		return database.Page[question.Question]{}, fmt.Errorf("%w: read set %d", domain.ErrForbidden, setID)
	}

	memberIDs, err := s.memberships.QuestionIDs(ctx, setID)
	if err != nil {
		return database.Page[question.Question]{}, err
	}
	if len(memberIDs) == 0 {
		return database.Page[question.Question]{Page: page, PerPage: perPage}, nil
	}
	return database.Paginate(ctx, s.questionStore, page, perPage,
		storage.WithIDIn(memberIDs), storage.WithOrderAsc("id"))
}

// AddMaintainer grants a user maintainer rights on a set.
func (s *QuestionSets) AddMaintainer(ctx context.Context, actor *identity.User, setID, userID int64) error {
	if _, err := s.authorizedForModify(ctx, actor, setID); err != nil {
		return err
	}
	if err := s.setStore.AddMaintainer(ctx, setID, userID); err != nil {
		return err
	}
	s.logger.Info("maintainer added",
		slog.Int64("set_id", setID),
		slog.Int64("user_id", userID),
	)
	return nil
}

// resolveForMembership authorizes the actor on the set and resolves every
// question id. A count mismatch fails before anything is written.
func (s *QuestionSets) resolveForMembership(ctx context.Context, actor *identity.User, setID int64, questionIDs []int64) (questionset.QuestionSet, []question.Question, error) {
	if len(questionIDs) == 0 {
		return questionset.QuestionSet{}, nil, fmt.Errorf("%w: no question ids given", domain.ErrValidation)
	}

	set, err := s.authorizedForModify(ctx, actor, setID)
	if err != nil {
		return questionset.QuestionSet{}, nil, err
	}

	unique := dedupe(questionIDs)
	questions, err := s.questionStore.Find(ctx, storage.WithIDIn(unique))
	if err != nil {
		return questionset.QuestionSet{}, nil, err
	}
	if len(questions) != len(unique) {
		return questionset.QuestionSet{}, nil, fmt.Errorf("%w: %d of %d questions exist",
			domain.ErrNotFound, len(questions), len(unique))
	}
	return set, questions, nil
}

func (s *QuestionSets) authorizedForModify(ctx context.Context, actor *identity.User, setID int64) (questionset.QuestionSet, error) {
	set, err := s.setStore.FindOne(ctx, storage.WithID(setID))
	if err != nil {
		return questionset.QuestionSet{}, err
	}
	if !guardian.CanModifyQuestionSet(actor, set) {
		return questionset.QuestionSet{}, fmt.Errorf("%w: modify set %d", domain.ErrForbidden, setID)
	}
	return set, nil
}

// warn logs a vector phase failure and passes it through as the operation's
// index warning.
func (s *QuestionSets) warn(ctx context.Context, op string, setID int64, err error) error {
	if err == nil {
		return nil
	}
	s.logger.WarnContext(ctx, "vector index phase failed",
		slog.String("op", op),
		slog.Int64("set_id", setID),
		slog.String("error", err.Error()),
	)
	return err
}

func idsAndVectors(questions []question.Question) ([]int64, [][]float32) {
	ids := make([]int64, len(questions))
	vectors := make([][]float32, len(questions))
	for i, q := range questions {
		ids[i] = q.ID()
		vectors[i] = q.Embedding()
	}
	return ids, vectors
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
