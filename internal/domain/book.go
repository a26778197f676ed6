package domain

import "time"

// Book is a catalog entry in the user's personal book collection.
type Book struct {
	ID     BookID `json:"id"`
	UserID UserID `json:"userId"`

	Section     string  `json:"section"`
	BookName    string  `json:"bookName"`
	Page        int     `json:"page"`
	DownloadURL string  `json:"downloadUrl"`
	Description *string `json:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
