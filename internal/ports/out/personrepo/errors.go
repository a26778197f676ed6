package personrepo

import "errors"

// ErrNotFound indicates the requested target person does not exist.
var ErrNotFound = errors.New("target person not found")
