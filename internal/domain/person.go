package domain

import "time"

// TargetPerson is the domain representation of a tracked individual with a
// follow-up date and group classification.
type TargetPerson struct {
	ID     PersonID `json:"id"`
	UserID UserID   `json:"userId"`

	GroupType GroupType `json:"groupType"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`

	// Books is the person's reading list: free-text titles, deliberately not
	// references into the book catalog.
	Books []string `json:"books"`

	// TargetDate is the planned visit/contact date as an ISO calendar date,
	// e.g. "2025-01-01".
	TargetDate string `json:"targetDate"`

	CreatedAt time.Time `json:"createdAt"`
}

// TargetGroup is one partition of the grouped view. The view is always
// exactly three groups in GroupTypes() order, each present even when empty.
type TargetGroup struct {
	Type    GroupType      `json:"type"`
	Persons []TargetPerson `json:"persons"`
}
