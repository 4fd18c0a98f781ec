package domain

import "time"

type ExportFormat string

const (
	ExportJPG ExportFormat = "jpg"
	ExportPNG ExportFormat = "png"
)

const (
	MinExportQuality     = 50
	MaxExportQuality     = 100
	DefaultExportQuality = 90
)

// ExportOptions controls the final encode. Quality only applies to JPG.
type ExportOptions struct {
	Format  ExportFormat `json:"format"`
	Quality int          `json:"quality"`
}

// ExportTask is the batch export request carried over the broker.
type ExportTask struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	ImageIDs  []string     `json:"image_ids"`
	Format    ExportFormat `json:"format"`
	Quality   int          `json:"quality"`
	CreatedAt time.Time    `json:"created_at"`
}

type ExportStatus string

const (
	ExportPending    ExportStatus = "pending"
	ExportProcessing ExportStatus = "processing"
	ExportCompleted  ExportStatus = "completed"
	ExportError      ExportStatus = "error"
)

// ExportItem is the per-photo outcome inside a batch. One failed item never
// aborts its siblings.
type ExportItem struct {
	ImageID   string       `json:"image_id"`
	ImageName string       `json:"image_name"`
	Status    ExportStatus `json:"status"`
	Filename  string       `json:"filename,omitempty"`
	Path      string       `json:"path,omitempty"`
	Error     string       `json:"error,omitempty"`
	URL       string       `json:"url,omitempty"`
}

type ExportResult struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	Status    ExportStatus `json:"status"`
	Items     []ExportItem `json:"items"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Succeeded counts completed items.
func (r *ExportResult) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.Status == ExportCompleted {
			n++
		}
	}
	return n
}

// Settle derives the batch status from its items: processing while any item
// is unfinished, error when nothing succeeded, completed otherwise.
func (r *ExportResult) Settle() {
	for _, it := range r.Items {
		if it.Status == ExportPending || it.Status == ExportProcessing {
			r.Status = ExportProcessing
			return
		}
	}
	if len(r.Items) > 0 && r.Succeeded() == 0 {
		r.Status = ExportError
		return
	}
	r.Status = ExportCompleted
}

// Options returns the encode settings of the task.
func (t *ExportTask) Options() ExportOptions {
	return ExportOptions{Format: t.Format, Quality: t.Quality}
}

const DefaultProjectID = "default"
