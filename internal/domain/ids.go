package domain

// UserID is the authenticated owner of a record, taken from the identity
// provider's subject claim. We model it as an opaque identifier: its format
// is controlled by the IdP.
type UserID string

// PersonID identifies a target person document in the store.
type PersonID string

// BookID identifies a book document in the store.
type BookID string
