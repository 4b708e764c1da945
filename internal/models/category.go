package models

import "time"

// Category groups image results by draw time, e.g. "11:20 AM Result".
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryRequest is the payload for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}
