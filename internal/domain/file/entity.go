package file

import "time"

// File is an uploaded artifact, currently only signature images.
type File struct {
	ID           string
	OwnerID      string
	Path         string
	OriginalName string
	MimeType     string
	Size         int64
	CreatedAt    time.Time
}

type FileResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
}
