package docstore

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the addressed document does not exist.
var ErrNotFound = errors.New("document not found")

// ReadError reports a failed query against the backing store.
type ReadError struct {
	Collection string
	Err        error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("docstore: query %s: %v", e.Collection, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed create, update or delete.
type WriteError struct {
	Op         string
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("docstore: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
