package models

import "time"

// ImageResult is a scanned result sheet uploaded by an admin.
type ImageResult struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ResultDate   time.Time `json:"resultDate"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	Description  string    `json:"description"` // markdown, stored verbatim
	ImageURL     string    `json:"imageUrl"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ImageResultForm carries the non-file fields of the upload form.
type ImageResultForm struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=10000"`
	CategoryID  string `validate:"required,uuid"`
	Date        string `validate:"required,datetime=2006-01-02"`
}
