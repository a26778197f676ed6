package bookrepo

import "errors"

// ErrNotFound indicates the requested book does not exist.
var ErrNotFound = errors.New("book not found")
