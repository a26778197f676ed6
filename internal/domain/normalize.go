package domain

import "strings"

// NormalizeText trims leading/trailing whitespace and collapses internal
// whitespace runs. Required-field checks run on the normalized value, so a
// blank-only input counts as missing.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
