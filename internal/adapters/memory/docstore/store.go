package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/personal-report/organizer-api/internal/ports/out/docstore"
)

// Store is an in-memory implementation of docstore.Store.
// It is safe for concurrent use.
//
// Writes round-trip through encoding/json so stored field types match what a
// real document database returns over the wire (float64 numbers, []any
// slices). Repository mapping code therefore behaves identically against all
// backends.
type Store struct {
	mu   sync.RWMutex
	seq  uint64
	cols map[string]map[string]record

	newID func() string
}

type record struct {
	seq    uint64
	fields map[string]any
}

var _ docstore.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		cols:  make(map[string]map[string]record),
		newID: uuid.NewString,
	}
}

func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	_ = ctx
	normalized, err := normalize(fields)
	if err != nil {
		return "", &docstore.WriteError{Op: "create", Collection: collection, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.cols[collection]
	if !ok {
		col = make(map[string]record)
		s.cols[collection] = col
	}
	id := s.newID()
	s.seq++
	col[id] = record{seq: s.seq, fields: normalized}
	return id, nil
}

func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	_ = ctx
	want, err := normalizeValue(filter.Equals)
	if err != nil {
		return nil, &docstore.ReadError{Collection: collection, Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		seq uint64
		doc docstore.Document
	}
	hits := make([]hit, 0)
	for id, rec := range s.cols[collection] {
		if !reflect.DeepEqual(rec.fields[filter.Field], want) {
			continue
		}
		fields, err := normalize(rec.fields)
		if err != nil {
			return nil, &docstore.ReadError{Collection: collection, Err: err}
		}
		hits = append(hits, hit{seq: rec.seq, doc: docstore.Document{ID: id, Fields: fields}})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })

	out := make([]docstore.Document, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.doc)
	}
	return out, nil
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	_ = ctx
	normalized, err := normalize(fields)
	if err != nil {
		return &docstore.WriteError{Op: "update", Collection: collection, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.cols[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range normalized {
		rec.fields[k] = v
	}
	s.cols[collection][id] = rec
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cols[collection][id]; !ok {
		return docstore.ErrNotFound
	}
	delete(s.cols[collection], id)
	return nil
}

func normalize(fields map[string]any) (map[string]any, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}
