package sessionstore

import (
	"context"
	"sync"

	"github.com/personal-report/organizer-api/internal/domain"
	"github.com/personal-report/organizer-api/internal/ports/out/sessionstore"
)

// Store is an in-memory implementation of sessionstore.Store.
// It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	byUser map[domain.UserID]sessionstore.State
}

var _ sessionstore.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{byUser: make(map[domain.UserID]sessionstore.State)}
}

func (s *Store) Load(ctx context.Context, userID domain.UserID) (sessionstore.State, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byUser[userID]
	if !ok {
		return sessionstore.State{}, sessionstore.ErrNotFound
	}
	return st.Clone(), nil
}

func (s *Store) Save(ctx context.Context, st sessionstore.State) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byUser[st.UserID]
	if ok && cur.Version != st.Version {
		return sessionstore.ErrVersionConflict
	}
	if !ok && st.Version != 0 {
		return sessionstore.ErrVersionConflict
	}
	next := st.Clone()
	next.Version++
	s.byUser[st.UserID] = next
	return nil
}

func (s *Store) Delete(ctx context.Context, userID domain.UserID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}
