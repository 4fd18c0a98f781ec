package dto

import (
	"time"

	"post-composer/internal/domain"
)

type PhotoResponse struct {
	ID           string                 `json:"id"`
	Filename     string                 `json:"filename"`
	Size         int64                  `json:"size"`
	MimeType     string                 `json:"mime_type"`
	Width        int                    `json:"width"`
	Height       int                    `json:"height"`
	Status       string                 `json:"status"`
	Edited       bool                   `json:"edited"`
	EditState    *domain.ImageEditState `json:"edit_state,omitempty"`
	ImageURL     string                 `json:"image_url"`
	ThumbnailURL string                 `json:"thumbnail_url"`
	CreatedAt    time.Time              `json:"created_at"`
}

type ListResponse struct {
	Images []PhotoResponse `json:"images"`
	Count  int             `json:"count"`
}

type ExportQuery struct {
	Format  string `validate:"omitempty,oneof=jpg jpeg png"`
	Quality int    `validate:"omitempty,min=50,max=100"`
}

type QueueExportRequest struct {
	Format  string `json:"format" validate:"omitempty,oneof=jpg jpeg png"`
	Quality int    `json:"quality" validate:"omitempty,min=50,max=100"`
}

type ExportResponse struct {
	ID        string              `json:"id"`
	Status    string              `json:"status"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Items     []domain.ExportItem `json:"items"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewPhotoResponse(p domain.Photo) PhotoResponse {
	return PhotoResponse{
		ID:           p.ID,
		Filename:     p.OriginalFilename,
		Size:         p.OriginalSize,
		MimeType:     p.MimeType,
		Width:        p.Width,
		Height:       p.Height,
		Status:       string(p.Status),
		Edited:       p.Edited(),
		EditState:    p.EditState,
		ImageURL:     "/api/images/" + p.ID,
		ThumbnailURL: "/api/images/" + p.ID + "/thumbnail",
		CreatedAt:    p.CreatedAt,
	}
}

func NewExportResponse(r *domain.ExportResult) ExportResponse {
	return ExportResponse{
		ID:        r.ID,
		Status:    string(r.Status),
		Total:     len(r.Items),
		Succeeded: r.Succeeded(),
		Items:     r.Items,
		UpdatedAt: r.UpdatedAt,
	}
}
