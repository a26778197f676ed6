package targets

import (
	"github.com/personal-report/organizer-api/internal/domain"
)

// SubmitInput carries the draft fields of a submit. Books are free-text
// titles, not references into the book catalog.
type SubmitInput struct {
	GroupType  string
	Name       string
	Address    string
	Phone      string
	Books      []string
	TargetDate string
}

// SubmitOutcome distinguishes a persisted submit from a silently skipped one.
type SubmitOutcome string

const (
	// SubmitSaved means the record was written and the view reloaded.
	SubmitSaved SubmitOutcome = "saved"
	// SubmitSkipped means the required-field guard failed; nothing was
	// written and no error is surfaced.
	SubmitSkipped SubmitOutcome = "skipped"
)

// SubmitResult is the outcome of a submit plus the view the caller should
// render.
type SubmitResult struct {
	Outcome SubmitOutcome
	View    []domain.TargetGroup
}
