package model

import "time"

// Page is a website page whose body is a ContentStructure.
type Page struct {
	ID          string           `json:"id"`
	WebsiteID   string           `json:"website_id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Content     ContentStructure `json:"content_structure"`
	IsPublished bool             `json:"is_published"`
	SortOrder   int              `json:"sort_order"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// MediaAsset is an uploaded file that image properties can reference.
type MediaAsset struct {
	ID               string    `json:"id"`
	WebsiteID        string    `json:"website_id"`
	Name             string    `json:"name"`
	OriginalFilename string    `json:"original_filename"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	AltText          string    `json:"alt_text,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	Folder           string    `json:"folder,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
