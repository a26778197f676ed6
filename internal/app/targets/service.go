// Package targets implements the grouped target person tracker: the reload
// controller that rebuilds the three-group view from the store, and the
// per-user edit/delete session machinery around it.
package targets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/personal-report/organizer-api/internal/domain"
	"github.com/personal-report/organizer-api/internal/ports/out/clock"
	"github.com/personal-report/organizer-api/internal/ports/out/personrepo"
	"github.com/personal-report/organizer-api/internal/ports/out/sessionstore"
)

// maxSaveAttempts bounds the compare-and-set retry loop on session saves.
const maxSaveAttempts = 5

type Service struct {
	repo     personrepo.Repository
	sessions sessionstore.Store
	clk      clock.Clock
}

func NewService(repo personrepo.Repository, sessions sessionstore.Store, clk clock.Clock) *Service {
	return &Service{repo: repo, sessions: sessions, clk: clk}
}

// Reload rebuilds the grouped view from the store and publishes it into the
// session. An unauthenticated caller gets the empty three-group view.
func (s *Service) Reload(ctx context.Context, userID domain.UserID) ([]domain.TargetGroup, error) {
	if userID == "" {
		return emptyView(), nil
	}
	st, err := s.publish(ctx, userID, nil)
	if err != nil {
		return nil, asAppError(err)
	}
	return st.View, nil
}

// BeginEdit opens the single edit slot for id and returns a draft populated
// from the current record. A second edit while one is in flight is rejected;
// re-opening the same id refreshes the draft instead.
func (s *Service) BeginEdit(ctx context.Context, userID domain.UserID, id domain.PersonID) (sessionstore.Draft, error) {
	if userID == "" {
		return sessionstore.Draft{}, errNotAuthenticated()
	}
	st, err := s.publish(ctx, userID, func(st *sessionstore.State) error {
		if st.EditingID != "" && st.EditingID != id {
			return &Error{Status: 409, Code: "EDIT_IN_FLIGHT", Message: "Finish or cancel the current edit first."}
		}
		p, ok := findPerson(st.View, id)
		if !ok {
			return &Error{Status: 404, Code: "TARGET_NOT_FOUND", Message: "target person not found"}
		}
		st.EditingID = id
		st.EditingGroup = p.GroupType
		st.Draft = &sessionstore.Draft{
			GroupType:  p.GroupType,
			Name:       p.Name,
			Address:    p.Address,
			Phone:      p.Phone,
			Books:      append([]string(nil), p.Books...),
			TargetDate: p.TargetDate,
		}
		return nil
	})
	if err != nil {
		return sessionstore.Draft{}, asAppError(err)
	}
	return *st.Draft, nil
}

// CancelEdit clears the edit slot. Cancelling with no edit in flight is a
// no-op.
func (s *Service) CancelEdit(ctx context.Context, userID domain.UserID) error {
	if userID == "" {
		return errNotAuthenticated()
	}
	_, err := s.updateState(ctx, userID, func(st *sessionstore.State) error {
		clearEditSlot(st)
		return nil
	})
	return asAppError(err)
}

// Submit persists the draft: create when no edit is in flight, in-place
// update when the group is unchanged, delete-and-recreate when the submit
// moves the person to another group. A failed required-field guard is a
// silent skip, not an error.
func (s *Service) Submit(ctx context.Context, userID domain.UserID, in SubmitInput) (SubmitResult, error) {
	if userID == "" {
		return SubmitResult{}, errNotAuthenticated()
	}

	name := domain.NormalizeText(in.Name)
	address := domain.NormalizeText(in.Address)
	phone := domain.NormalizeText(in.Phone)
	targetDate := domain.NormalizeText(in.TargetDate)
	if name == "" || address == "" || phone == "" || targetDate == "" {
		st, err := s.loadState(ctx, userID)
		if err != nil {
			return SubmitResult{}, asAppError(err)
		}
		return SubmitResult{Outcome: SubmitSkipped, View: st.View}, nil
	}

	group, ok := domain.ParseGroupType(in.GroupType)
	if !ok {
		return SubmitResult{}, &Error{
			Status: 422, Code: "VALIDATION_ERROR", Message: "invalid group type",
			Details: map[string]any{"groupType": fmt.Sprintf("unknown group %q", in.GroupType)},
		}
	}

	books := make([]string, 0, len(in.Books))
	for _, b := range in.Books {
		if t := domain.NormalizeText(b); t != "" {
			books = append(books, t)
		}
	}

	st, err := s.loadState(ctx, userID)
	if err != nil {
		return SubmitResult{}, asAppError(err)
	}

	if err := s.writeSubmit(ctx, userID, st, group, name, address, phone, books, targetDate); err != nil {
		s.clearSlotAfterFailure(ctx, userID)
		return SubmitResult{}, asAppError(err)
	}

	published, err := s.publish(ctx, userID, func(st *sessionstore.State) error {
		clearEditSlot(st)
		return nil
	})
	if err != nil {
		return SubmitResult{}, asAppError(err)
	}
	return SubmitResult{Outcome: SubmitSaved, View: published.View}, nil
}

func (s *Service) writeSubmit(ctx context.Context, userID domain.UserID, st sessionstore.State, group domain.GroupType, name, address, phone string, books []string, targetDate string) error {
	switch {
	case st.EditingID == "":
		_, err := s.repo.Create(ctx, personrepo.Person{
			UserID:     userID,
			GroupType:  group,
			Name:       name,
			Address:    address,
			Phone:      phone,
			Books:      books,
			TargetDate: targetDate,
			CreatedAt:  s.clk.Now().UTC(),
		})
		return err

	case st.EditingGroup == group:
		return s.repo.Update(ctx, st.EditingID, personrepo.Patch{
			GroupType:  &group,
			Name:       &name,
			Address:    &address,
			Phone:      &phone,
			Books:      &books,
			TargetDate: &targetDate,
		})

	default:
		// Group changed: the record moves, so the old document goes away and
		// a fresh one is created under the new group.
		if err := s.repo.Delete(ctx, st.EditingID); err != nil {
			return err
		}
		_, err := s.repo.Create(ctx, personrepo.Person{
			UserID:     userID,
			GroupType:  group,
			Name:       name,
			Address:    address,
			Phone:      phone,
			Books:      books,
			TargetDate: targetDate,
			CreatedAt:  s.clk.Now().UTC(),
		})
		return err
	}
}

// RequestDelete arms the single delete slot for id. Nothing is written until
// ConfirmDelete.
func (s *Service) RequestDelete(ctx context.Context, userID domain.UserID, id domain.PersonID) error {
	if userID == "" {
		return errNotAuthenticated()
	}
	_, err := s.publish(ctx, userID, func(st *sessionstore.State) error {
		if st.DeletingID != "" && st.DeletingID != id {
			return &Error{Status: 409, Code: "DELETE_IN_FLIGHT", Message: "Confirm or cancel the pending delete first."}
		}
		if _, ok := findPerson(st.View, id); !ok {
			return &Error{Status: 404, Code: "TARGET_NOT_FOUND", Message: "target person not found"}
		}
		st.DeletingID = id
		return nil
	})
	return asAppError(err)
}

// CancelDelete disarms the delete slot. Cancelling with nothing armed is a
// no-op.
func (s *Service) CancelDelete(ctx context.Context, userID domain.UserID) error {
	if userID == "" {
		return errNotAuthenticated()
	}
	_, err := s.updateState(ctx, userID, func(st *sessionstore.State) error {
		st.DeletingID = ""
		return nil
	})
	return asAppError(err)
}

// ConfirmDelete deletes the armed record, reloads and returns the fresh view.
func (s *Service) ConfirmDelete(ctx context.Context, userID domain.UserID) ([]domain.TargetGroup, error) {
	if userID == "" {
		return nil, errNotAuthenticated()
	}
	st, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, asAppError(err)
	}
	if st.DeletingID == "" {
		return nil, &Error{Status: 409, Code: "NO_DELETE_PENDING", Message: "no delete is pending"}
	}

	if err := s.repo.Delete(ctx, st.DeletingID); err != nil {
		s.clearSlotAfterFailure(ctx, userID)
		return nil, asAppError(err)
	}

	published, err := s.publish(ctx, userID, func(st *sessionstore.State) error {
		st.DeletingID = ""
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return published.View, nil
}

// ToggleExpanded flips the expanded marker for one row. Keys that no longer
// match a row are pruned on the next reload, not here.
func (s *Service) ToggleExpanded(ctx context.Context, userID domain.UserID, group string, id domain.PersonID) error {
	if userID == "" {
		return errNotAuthenticated()
	}
	gt, ok := domain.ParseGroupType(group)
	if !ok {
		return &Error{
			Status: 422, Code: "VALIDATION_ERROR", Message: "invalid group type",
			Details: map[string]any{"group": fmt.Sprintf("unknown group %q", group)},
		}
	}
	key := expandedKey(gt, id)
	_, err := s.updateState(ctx, userID, func(st *sessionstore.State) error {
		for i, k := range st.ExpandedKeys {
			if k == key {
				st.ExpandedKeys = append(st.ExpandedKeys[:i], st.ExpandedKeys[i+1:]...)
				return nil
			}
		}
		st.ExpandedKeys = append(st.ExpandedKeys, key)
		return nil
	})
	return asAppError(err)
}

// publish re-fetches the user's records, rebuilds the three-group view,
// prunes stale expanded keys and saves the session under compare-and-set.
// A save that loses the version race is recomputed against the fresh state,
// so a superseded reload never overwrites a newer view.
func (s *Service) publish(ctx context.Context, userID domain.UserID, mutate func(*sessionstore.State) error) (sessionstore.State, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		st, err := s.loadState(ctx, userID)
		if err != nil {
			return sessionstore.State{}, err
		}

		persons, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return sessionstore.State{}, err
		}
		st.View = partition(persons)
		st.Generation++
		pruneExpanded(&st)

		if mutate != nil {
			if err := mutate(&st); err != nil {
				return sessionstore.State{}, err
			}
		}

		err = s.sessions.Save(ctx, st)
		if err == nil {
			st.Version++
			return st, nil
		}
		if !errors.Is(err, sessionstore.ErrVersionConflict) {
			return sessionstore.State{}, err
		}
	}
	return sessionstore.State{}, &Error{Status: 409, Code: "CONCURRENT_UPDATE", Message: "session was updated concurrently, try again"}
}

// updateState applies mutate to the session under compare-and-set without
// touching the published view.
func (s *Service) updateState(ctx context.Context, userID domain.UserID, mutate func(*sessionstore.State) error) (sessionstore.State, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		st, err := s.loadState(ctx, userID)
		if err != nil {
			return sessionstore.State{}, err
		}
		if err := mutate(&st); err != nil {
			return sessionstore.State{}, err
		}

		err = s.sessions.Save(ctx, st)
		if err == nil {
			st.Version++
			return st, nil
		}
		if !errors.Is(err, sessionstore.ErrVersionConflict) {
			return sessionstore.State{}, err
		}
	}
	return sessionstore.State{}, &Error{Status: 409, Code: "CONCURRENT_UPDATE", Message: "session was updated concurrently, try again"}
}

func (s *Service) loadState(ctx context.Context, userID domain.UserID) (sessionstore.State, error) {
	st, err := s.sessions.Load(ctx, userID)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return sessionstore.State{UserID: userID, View: emptyView()}, nil
	}
	if err != nil {
		return sessionstore.State{}, err
	}
	return st, nil
}

// clearSlotAfterFailure drops the edit and delete slots after a failed write
// so the user is not stuck in a half-open session. The view is deliberately
// left untouched. Best effort: a session store failure here is only logged.
func (s *Service) clearSlotAfterFailure(ctx context.Context, userID domain.UserID) {
	if _, err := s.updateState(ctx, userID, func(st *sessionstore.State) error {
		clearEditSlot(st)
		st.DeletingID = ""
		return nil
	}); err != nil {
		slog.Warn("could not clear session slot after failed write", "userId", string(userID), "error", err)
	}
}

func clearEditSlot(st *sessionstore.State) {
	st.EditingID = ""
	st.EditingGroup = ""
	st.Draft = nil
}

// emptyView returns the three groups in display order, each present even when
// empty.
func emptyView() []domain.TargetGroup {
	types := domain.GroupTypes()
	view := make([]domain.TargetGroup, 0, len(types))
	for _, gt := range types {
		view = append(view, domain.TargetGroup{Type: gt, Persons: []domain.TargetPerson{}})
	}
	return view
}

// partition splits records into the fixed groups, preserving fetch order
// within each group. Records carrying a tag outside the known set are dropped,
// not surfaced as errors.
func partition(persons []personrepo.Person) []domain.TargetGroup {
	view := emptyView()
	index := make(map[domain.GroupType]int, len(view))
	for i, g := range view {
		index[g.Type] = i
	}
	for _, p := range persons {
		i, ok := index[p.GroupType]
		if !ok {
			slog.Debug("dropping record with unknown group tag",
				"personId", string(p.ID), "groupType", string(p.GroupType))
			continue
		}
		view[i].Persons = append(view[i].Persons, domain.TargetPerson{
			ID:         p.ID,
			UserID:     p.UserID,
			GroupType:  p.GroupType,
			Name:       p.Name,
			Address:    p.Address,
			Phone:      p.Phone,
			Books:      append([]string(nil), p.Books...),
			TargetDate: p.TargetDate,
			CreatedAt:  p.CreatedAt,
		})
	}
	return view
}

func findPerson(view []domain.TargetGroup, id domain.PersonID) (domain.TargetPerson, bool) {
	for _, g := range view {
		for _, p := range g.Persons {
			if p.ID == id {
				return p, true
			}
		}
	}
	return domain.TargetPerson{}, false
}

func expandedKey(group domain.GroupType, id domain.PersonID) string {
	return fmt.Sprintf("%s:%s", group, id)
}

// pruneExpanded keeps only the expanded keys whose group/person pair still
// exists in the current view.
func pruneExpanded(st *sessionstore.State) {
	if len(st.ExpandedKeys) == 0 {
		return
	}
	live := make(map[string]struct{})
	for _, g := range st.View {
		for _, p := range g.Persons {
			live[expandedKey(g.Type, p.ID)] = struct{}{}
		}
	}
	kept := st.ExpandedKeys[:0]
	for _, k := range st.ExpandedKeys {
		if _, ok := live[k]; ok {
			kept = append(kept, k)
		}
	}
	st.ExpandedKeys = kept
}
