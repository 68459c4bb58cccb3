package dto

import "io"

// UploadMediaRequest is built by the handler from a multipart file
type UploadMediaRequest struct {
	AdminID          uint
	File             io.Reader
	OriginalFilename string
	FileSize         int64
}

type UploadMediaResponse struct {
	UUID             string `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	URL              string `json:"url" example:"https://clinic.uz/uploads/2026/01/15/f47ac10b.jpg"`
	OriginalFilename string `json:"original_filename" example:"doctor.jpg"`
	MimeType         string `json:"mime_type" example:"image/jpeg"`
	SizeBytes        int64  `json:"size_bytes" example:"183422"`
	Width            int    `json:"width" example:"1600"`
	Height           int    `json:"height" example:"1067"`
	Resized          bool   `json:"resized" example:"true"`
	CreatedAt        string `json:"created_at" example:"2026-01-15T10:30:00Z"`
}
