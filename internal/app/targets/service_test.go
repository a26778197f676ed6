package targets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	docpersonrepo "github.com/personal-report/organizer-api/internal/adapters/docstore/personrepo"
	memclock "github.com/personal-report/organizer-api/internal/adapters/memory/clock"
	memdocstore "github.com/personal-report/organizer-api/internal/adapters/memory/docstore"
	memsessions "github.com/personal-report/organizer-api/internal/adapters/memory/sessionstore"
	"github.com/personal-report/organizer-api/internal/domain"
	"github.com/personal-report/organizer-api/internal/ports/out/docstore"
	"github.com/personal-report/organizer-api/internal/ports/out/personrepo"
)

type fixture struct {
	svc      *Service
	store    *memdocstore.Store
	sessions *memsessions.Store
	clk      *memclock.ManualClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memdocstore.NewStore()
	sessions := memsessions.NewStore()
	clk := memclock.NewManualClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	return &fixture{
		svc:      NewService(docpersonrepo.NewRepo(store), sessions, clk),
		store:    store,
		sessions: sessions,
		clk:      clk,
	}
}

func submitInput(group, name string) SubmitInput {
	return SubmitInput{
		GroupType:  group,
		Name:       name,
		Address:    "12 Station Road",
		Phone:      "555-0101",
		Books:      []string{"Book One"},
		TargetDate: "2026-04-01",
	}
}

func viewGroup(t *testing.T, view []domain.TargetGroup, gt domain.GroupType) domain.TargetGroup {
	t.Helper()
	for _, g := range view {
		if g.Type == gt {
			return g
		}
	}
	t.Fatalf("group %s missing from view", gt)
	return domain.TargetGroup{}
}

func TestReload_UnauthenticatedGetsEmptyGroups(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	view, err := f.svc.Reload(context.Background(), "")
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(view) != 3 {
		t.Fatalf("got %d groups, want 3", len(view))
	}
	want := domain.GroupTypes()
	for i, g := range view {
		if g.Type != want[i] {
			t.Fatalf("group[%d] = %s, want %s", i, g.Type, want[i])
		}
		if len(g.Persons) != 0 {
			t.Fatalf("group %s not empty: %d persons", g.Type, len(g.Persons))
		}
	}
}

func TestSubmit_CreateAndReload(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, "user-a", submitInput("activist", "Karim"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Outcome != SubmitSaved {
		t.Fatalf("outcome = %s, want saved", res.Outcome)
	}

	activists := viewGroup(t, res.View, domain.GroupActivist)
	if len(activists.Persons) != 1 {
		t.Fatalf("got %d activists, want 1", len(activists.Persons))
	}
	got := activists.Persons[0]
	if got.Name != "Karim" || got.TargetDate != "2026-04-01" {
		t.Fatalf("person = %+v", got)
	}
	if len(got.Books) != 1 || got.Books[0] != "Book One" {
		t.Fatalf("books = %v", got.Books)
	}
	if !got.CreatedAt.Equal(f.clk.Now()) {
		t.Fatalf("createdAt = %v, want clock time %v", got.CreatedAt, f.clk.Now())
	}

	// Other groups stay present and empty.
	if n := len(viewGroup(t, res.View, domain.GroupMember).Persons); n != 0 {
		t.Fatalf("members = %d, want 0", n)
	}
	if n := len(viewGroup(t, res.View, domain.GroupSupporter).Persons); n != 0 {
		t.Fatalf("supporters = %d, want 0", n)
	}
}

func TestSubmit_NormalizesWhitespaceAndDropsEmptyBooks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	in := SubmitInput{
		GroupType:  "member",
		Name:       "  Karim   Uddin ",
		Address:    " 12  Station Road ",
		Phone:      " 555-0101 ",
		Books:      []string{" Book One ", "   ", "Book Two"},
		TargetDate: " 2026-04-01 ",
	}
	res, err := f.svc.Submit(context.Background(), "user-a", in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	got := viewGroup(t, res.View, domain.GroupMember).Persons[0]
	if got.Name != "Karim Uddin" || got.Address != "12 Station Road" {
		t.Fatalf("normalization failed: %+v", got)
	}
	if diff := cmp.Diff([]string{"Book One", "Book Two"}, got.Books); diff != "" {
		t.Fatalf("books (-want +got):\n%s", diff)
	}
}

func TestSubmit_MissingRequiredFieldIsSilentSkip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	in := submitInput("member", "Karim")
	in.Phone = "   "
	res, err := f.svc.Submit(ctx, "user-a", in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Outcome != SubmitSkipped {
		t.Fatalf("outcome = %s, want skipped", res.Outcome)
	}

	// Nothing was written.
	view, err := f.svc.Reload(ctx, "user-a")
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	for _, g := range view {
		if len(g.Persons) != 0 {
			t.Fatalf("group %s has %d persons after skipped submit", g.Type, len(g.Persons))
		}
	}
}

func TestSubmit_UnknownGroupIsValidationError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), "user-a", submitInput("sympathizer", "Karim"))
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Status != 422 || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("err = %v, want 422 VALIDATION_ERROR", err)
	}
}

func TestSubmit_UnauthenticatedIsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), "", submitInput("member", "Karim"))
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Status != 401 || appErr.Code != "NOT_AUTHENTICATED" {
		t.Fatalf("err = %v, want 401 NOT_AUTHENTICATED", err)
	}
}

func TestReload_IsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Karim", "Rahim", "Selina"} {
		if _, err := f.svc.Submit(ctx, "user-a", submitInput("member", name)); err != nil {
			t.Fatalf("Submit %s: %v", name, err)
		}
	}

	first, err := f.svc.Reload(ctx, "user-a")
	if err != nil {
		t.Fatalf("first Reload: %v", err)
	}
	second, err := f.svc.Reload(ctx, "user-a")
	if err != nil {
		t.Fatalf("second Reload: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("consecutive reloads differ (-first +second):\n%s", diff)
	}

	// Creation order is preserved within the group.
	members := viewGroup(t, first, domain.GroupMember).Persons
	if members[0].Name != "Karim" || members[1].Name != "Rahim" || members[2].Name != "Selina" {
		t.Fatalf("order = %v %v %v", members[0].Name, members[1].Name, members[2].Name)
	}
}

func TestReload_DropsUnknownGroupTags(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	// A document written by some other client with a tag outside the set.
	if _, err := f.store.Create(ctx, docstore.CollectionTargets, map[string]any{
		"userId":    "user-a",
		"groupType": "sympathizer",
		"name":      "Ghost",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := f.svc.Submit(ctx, "user-a", submitInput("member", "Karim")); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	view, err := f.svc.Reload(ctx, "user-a")
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	total := 0
	for _, g := range view {
		total += len(g.Persons)
	}
	if total != 1 {
		t.Fatalf("view holds %d persons, want 1 (unknown tag dropped)", total)
	}
}

func TestEditLifecycle_SameGroupUpdatesInPlace(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, "user-a", submitInput("member", "Karim"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	id := viewGroup(t, res.View, domain.GroupMember).Persons[0].ID

	draft, err := f.svc.BeginEdit(ctx, "user-a", id)
	if err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if draft.Name != "Karim" || draft.GroupType != domain.GroupMember {
		t.Fatalf("draft = %+v", draft)
	}
	if len(draft.Books) != 1 || draft.Books[0] != "Book One" {
		t.Fatalf("draft books = %v", draft.Books)
	}

	in := submitInput("member", "Karim Uddin")
	in.Books = []string{"Book One", "Book Three"}
	res, err = f.svc.Submit(ctx, "user-a", in)
	if err != nil {
		t.Fatalf("Submit update: %v", err)
	}

	members := viewGroup(t, res.View, domain.GroupMember).Persons
	if len(members) != 1 {
		t.Fatalf("got %d members, want 1 (in-place update)", len(members))
	}
	if members[0].ID != id {
		t.Fatalf("id changed on in-place update: %s -> %s", id, members[0].ID)
	}
	if members[0].Name != "Karim Uddin" || len(members[0].Books) != 2 {
		t.Fatalf("update not applied: %+v", members[0])
	}
}

func TestEditLifecycle_GroupChangeMovesRecord(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, "user-a", submitInput("member", "Karim"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	oldID := viewGroup(t, res.View, domain.GroupMember).Persons[0].ID

	if _, err := f.svc.BeginEdit(ctx, "user-a", oldID); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	res, err = f.svc.Submit(ctx, "user-a", submitInput("activist", "Karim"))
	if err != nil {
		t.Fatalf("Submit move: %v", err)
	}

	if n := len(viewGroup(t, res.View, domain.GroupMember).Persons); n != 0 {
		t.Fatalf("members = %d after move, want 0", n)
	}
	activists := viewGroup(t, res.View, domain.GroupActivist).Persons
	if len(activists) != 1 {
		t.Fatalf("activists = %d after move, want 1", len(activists))
	}
	if activists[0].ID == oldID {
		t.Fatalf("move kept the old document id %s", oldID)
	}
}

func TestBeginEdit_SecondEditIsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Karim", "Rahim"} {
		if _, err := f.svc.Submit(ctx, "user-a", submitInput("member", name)); err != nil {
			t.Fatalf("Submit %s: %v", name, err)
		}
	}
	view, err := f.svc.Reload(ctx, "user-a")
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	members := viewGroup(t, view, domain.GroupMember).Persons

	if _, err := f.svc.BeginEdit(ctx, "user-a", members[0].ID); err != nil {
		t.Fatalf("first BeginEdit: %v", err)
	}
	_, err = f.svc.BeginEdit(ctx, "user-a", members[1].ID)
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Status != 409 || appErr.Code != "EDIT_IN_FLIGHT" {
		t.Fatalf("err = %v, want 409 EDIT_IN_FLIGHT", err)
	}

	// Cancel frees the slot.
	if err := f.svc.CancelEdit(ctx, "user-a"); err != nil {
		t.Fatalf("CancelEdit: %v", err)
	}
	if _, err := f.svc.BeginEdit(ctx, "user-a", members[1].ID); err != nil {
		t.Fatalf("BeginEdit after cancel: %v", err)
	}
}

func TestBeginEdit_UnknownPersonIsNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.BeginEdit(context.Background(), "user-a", "no-such-id")
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Status != 404 || appErr.Code != "TARGET_NOT_FOUND" {
		t.Fatalf("err = %v, want 404 TARGET_NOT_FOUND", err)
	}
}

func TestDeleteLifecycle_ConfirmRemovesAndPrunesExpanded(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, "user-a", submitInput("member", "Karim"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	id := viewGroup(t, res.View, domain.GroupMember).Persons[0].ID

	if err := f.svc.ToggleExpanded(ctx, "user-a", "member", id); err != nil {
		t.Fatalf("ToggleExpanded: %v", err)
	}
	st, err := f.sessions.Load(ctx, "user-a")
	if err != nil {
		t.Fatalf("Load session: %v", err)
	}
	if len(st.ExpandedKeys) != 1 {
		t.Fatalf("expandedKeys = %v, want one entry", st.ExpandedKeys)
	}

	if err := f.svc.RequestDelete(ctx, "user-a", id); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	view, err := f.svc.ConfirmDelete(ctx, "user-a")
	if err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if n := len(viewGroup(t, view, domain.GroupMember).Persons); n != 0 {
		t.Fatalf("members = %d after confirmed delete, want 0", n)
	}

	st, err = f.sessions.Load(ctx, "user-a")
	if err != nil {
		t.Fatalf("Load session after delete: %v", err)
	}
	if len(st.ExpandedKeys) != 0 {
		t.Fatalf("expandedKeys = %v, want pruned", st.ExpandedKeys)
	}
	if st.DeletingID != "" {
		t.Fatalf("deletingId = %s, want cleared", st.DeletingID)
	}
}

func TestRequestDelete_SecondRequestIsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Karim", "Rahim"} {
		if _, err := f.svc.Submit(ctx, "user-a", submitInput("member", name)); err != nil {
			t.Fatalf("Submit %s: %v", name, err)
		}
	}
	view, err := f.svc.Reload(ctx, "user-a")
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	members := viewGroup(t, view, domain.GroupMember).Persons

	if err := f.svc.RequestDelete(ctx, "user-a", members[0].ID); err != nil {
		t.Fatalf("first RequestDelete: %v", err)
	}
	err = f.svc.RequestDelete(ctx, "user-a", members[1].ID)
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Status != 409 || appErr.Code != "DELETE_IN_FLIGHT" {
		t.Fatalf("err = %v, want 409 DELETE_IN_FLIGHT", err)
	}

	if err := f.svc.CancelDelete(ctx, "user-a"); err != nil {
		t.Fatalf("CancelDelete: %v", err)
	}
	if err := f.svc.RequestDelete(ctx, "user-a", members[1].ID); err != nil {
		t.Fatalf("RequestDelete after cancel: %v", err)
	}
}

func TestConfirmDelete_WithoutPendingIsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.ConfirmDelete(context.Background(), "user-a")
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Status != 409 || appErr.Code != "NO_DELETE_PENDING" {
		t.Fatalf("err = %v, want 409 NO_DELETE_PENDING", err)
	}
}

func TestToggleExpanded_FlipsKey(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.ToggleExpanded(ctx, "user-a", "member", "p-1"); err != nil {
		t.Fatalf("ToggleExpanded on: %v", err)
	}
	st, err := f.sessions.Load(ctx, "user-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.ExpandedKeys) != 1 || st.ExpandedKeys[0] != "member:p-1" {
		t.Fatalf("expandedKeys = %v", st.ExpandedKeys)
	}

	if err := f.svc.ToggleExpanded(ctx, "user-a", "member", "p-1"); err != nil {
		t.Fatalf("ToggleExpanded off: %v", err)
	}
	st, err = f.sessions.Load(ctx, "user-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.ExpandedKeys) != 0 {
		t.Fatalf("expandedKeys = %v, want empty", st.ExpandedKeys)
	}

	if err := f.svc.ToggleExpanded(ctx, "user-a", "vip", "p-1"); err == nil {
		t.Fatal("unknown group accepted")
	}
}

// failingRepo wraps a real repository and fails selected write operations.
type failingRepo struct {
	personrepo.Repository
	failUpdate bool
	failDelete bool
}

func (r *failingRepo) Update(ctx context.Context, id domain.PersonID, patch personrepo.Patch) error {
	if r.failUpdate {
		return &docstore.WriteError{Op: "update", Collection: docstore.CollectionTargets, Err: errors.New("boom")}
	}
	return r.Repository.Update(ctx, id, patch)
}

func (r *failingRepo) Delete(ctx context.Context, id domain.PersonID) error {
	if r.failDelete {
		return &docstore.WriteError{Op: "delete", Collection: docstore.CollectionTargets, Err: errors.New("boom")}
	}
	return r.Repository.Delete(ctx, id)
}

func TestSubmit_WriteFailureClearsSlotAndKeepsView(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memdocstore.NewStore()
	sessions := memsessions.NewStore()
	repo := &failingRepo{Repository: docpersonrepo.NewRepo(store)}
	svc := NewService(repo, sessions, memclock.NewManualClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	res, err := svc.Submit(ctx, "user-a", submitInput("member", "Karim"))
	if err != nil {
		t.Fatalf("seed Submit: %v", err)
	}
	id := viewGroup(t, res.View, domain.GroupMember).Persons[0].ID
	if _, err := svc.BeginEdit(ctx, "user-a", id); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}

	// Same-group submit takes the in-place update path; make it fail.
	repo.failUpdate = true
	_, err = svc.Submit(ctx, "user-a", submitInput("member", "Karim Changed"))
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Status != 502 || appErr.Code != "STORE_WRITE_FAILED" {
		t.Fatalf("err = %v, want 502 STORE_WRITE_FAILED", err)
	}

	st, err := sessions.Load(ctx, "user-a")
	if err != nil {
		t.Fatalf("Load session: %v", err)
	}
	if st.EditingID != "" || st.Draft != nil {
		t.Fatalf("edit slot not cleared after failure: %+v", st)
	}
	// The published view still shows the pre-failure state.
	if n := len(viewGroup(t, st.View, domain.GroupMember).Persons); n != 1 {
		t.Fatalf("view members = %d, want 1 (view untouched)", n)
	}
}

func TestConfirmDelete_WriteFailureClearsSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memdocstore.NewStore()
	sessions := memsessions.NewStore()
	repo := &failingRepo{Repository: docpersonrepo.NewRepo(store)}
	svc := NewService(repo, sessions, memclock.NewManualClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	res, err := svc.Submit(ctx, "user-a", submitInput("member", "Karim"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	id := viewGroup(t, res.View, domain.GroupMember).Persons[0].ID
	if err := svc.RequestDelete(ctx, "user-a", id); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}

	repo.failDelete = true
	_, err = svc.ConfirmDelete(ctx, "user-a")
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Status != 502 || appErr.Code != "STORE_WRITE_FAILED" {
		t.Fatalf("err = %v, want 502 STORE_WRITE_FAILED", err)
	}

	st, err := sessions.Load(ctx, "user-a")
	if err != nil {
		t.Fatalf("Load session: %v", err)
	}
	if st.DeletingID != "" {
		t.Fatalf("delete slot not cleared after failure: %s", st.DeletingID)
	}
	if n := len(viewGroup(t, st.View, domain.GroupMember).Persons); n != 1 {
		t.Fatalf("view members = %d, want 1 (view untouched)", n)
	}
}
