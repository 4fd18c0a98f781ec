package domain

import "time"

// Photo is an uploaded property photo. A photo without an edit state is
// "unedited" and is never offered for export.
type Photo struct {
	ID               string
	ProjectID        string
	OriginalFilename string
	OriginalSize     int64
	MimeType         string
	Width            int
	Height           int
	Status           ImageStatus
	OriginalPath     string
	ThumbnailPath    string
	Bucket           string
	EditState        *ImageEditState
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Edited reports whether the photo qualifies for export: it needs an edit
// state carrying at least one text element or an active crop.
func (p *Photo) Edited() bool {
	if p.EditState == nil {
		return false
	}
	if len(p.EditState.TextElements) > 0 {
		return true
	}
	return p.EditState.CropActive()
}

type ImageStatus string

const (
	StatusReady   ImageStatus = "ready"
	StatusDeleted ImageStatus = "deleted"
)

const BucketOriginal = "original"

const (
	PathPrefixOriginal  = "original/"
	PathPrefixThumbnail = "thumbnails/"
	PathPrefixExports   = "exports/"
)

const (
	DefaultMaxUploadSize  = 10 << 20
	DefaultMaxPhotos      = 10
	DefaultThumbnailSize  = 200
	DefaultIngestLongEdge = 1080
	DefaultJPEGQuality    = 90
)
