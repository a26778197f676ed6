package sessionstore

import (
	"context"

	"github.com/personal-report/organizer-api/internal/domain"
)

// Draft is the in-progress copy of a person's editable fields, populated when
// an edit session begins.
type Draft struct {
	GroupType  domain.GroupType `json:"groupType"`
	Name       string           `json:"name"`
	Address    string           `json:"address"`
	Phone      string           `json:"phone"`
	Books      []string         `json:"books"`
	TargetDate string           `json:"targetDate"`
}

// State is the per-user UI session: the published grouped view plus the
// ephemeral edit/delete markers and expanded accordion keys. It is never the
// source of truth for person records; a reload rebuilds View from the store.
type State struct {
	UserID domain.UserID `json:"userId"`

	// EditingID/EditingGroup/Draft form the single edit slot. Empty EditingID
	// with a non-nil Draft is valid: a brand-new record being composed.
	EditingID    domain.PersonID  `json:"editingId,omitempty"`
	EditingGroup domain.GroupType `json:"editingGroup,omitempty"`
	Draft        *Draft           `json:"draft,omitempty"`

	// DeletingID is the single armed delete slot; a delete only happens after
	// the explicit confirmation step.
	DeletingID domain.PersonID `json:"deletingId,omitempty"`

	// ExpandedKeys are "<group>:<person id>" markers for expanded rows. They
	// are pruned against the fresh view on every reload.
	ExpandedKeys []string `json:"expandedKeys,omitempty"`

	// View is the last published three-group snapshot.
	View []domain.TargetGroup `json:"view"`

	// Version is the compare-and-set counter. Save succeeds only when the
	// stored version still equals Version, then persists Version+1.
	Version int64 `json:"version"`

	// Generation counts published reloads. A reload computed against a
	// superseded generation loses the CAS race and is discarded.
	Generation uint64 `json:"generation"`
}

// Store persists per-user session state.
type Store interface {
	// Load returns the state for userID, or ErrNotFound.
	Load(ctx context.Context, userID domain.UserID) (State, error)

	// Save persists s with its version incremented. When the stored version
	// no longer matches s.Version (or s.Version is non-zero for a missing
	// state) it returns ErrVersionConflict and persists nothing.
	Save(ctx context.Context, s State) error

	// Delete drops the state for userID. Deleting a missing state is a no-op.
	Delete(ctx context.Context, userID domain.UserID) error
}

// Clone returns a deep copy of s, so stored state cannot be mutated through
// shared slices.
func (s State) Clone() State {
	out := s
	if s.Draft != nil {
		d := *s.Draft
		d.Books = append([]string(nil), s.Draft.Books...)
		out.Draft = &d
	}
	if s.ExpandedKeys != nil {
		out.ExpandedKeys = append([]string(nil), s.ExpandedKeys...)
	}
	if s.View != nil {
		out.View = make([]domain.TargetGroup, len(s.View))
		for i, g := range s.View {
			cg := g
			cg.Persons = make([]domain.TargetPerson, len(g.Persons))
			for j, p := range g.Persons {
				cp := p
				cp.Books = append([]string(nil), p.Books...)
				cg.Persons[j] = cp
			}
			out.View[i] = cg
		}
	}
	return out
}
