package targets

import (
	"errors"

	"github.com/personal-report/organizer-api/internal/ports/out/docstore"
	"github.com/personal-report/organizer-api/internal/ports/out/personrepo"
)

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func errNotAuthenticated() *Error {
	return &Error{
		Status:  401,
		Code:    "NOT_AUTHENTICATED",
		Message: "You must be logged in to manage target persons.",
	}
}

// asAppError translates port-level failures into user-facing alerts. Unknown
// errors pass through untouched for the transport layer's 500 fallback.
func asAppError(err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var readErr *docstore.ReadError
	if errors.As(err, &readErr) {
		return &Error{Status: 502, Code: "STORE_READ_FAILED", Message: "Could not load data. Please try again."}
	}
	var writeErr *docstore.WriteError
	if errors.As(err, &writeErr) {
		return &Error{Status: 502, Code: "STORE_WRITE_FAILED", Message: "Could not save your changes. Please try again."}
	}
	if errors.Is(err, personrepo.ErrNotFound) {
		return &Error{Status: 404, Code: "TARGET_NOT_FOUND", Message: "target person not found"}
	}
	return err
}
