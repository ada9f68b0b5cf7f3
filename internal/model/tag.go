package model

import "time"

// Tag is a shared label; names are unique across the system.
type Tag struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// Author is shared across documents.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Bio       *string   `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}
