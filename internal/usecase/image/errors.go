package image

import "errors"

var (
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrTooManyImages     = errors.New("too many images")
	ErrImageNotFound     = errors.New("image not found")
	ErrNotEdited         = errors.New("image has no edits")
	ErrNothingToExport   = errors.New("no edited images to export")
	ErrExportNotFound    = errors.New("export not found")
	ErrStorageError      = errors.New("storage error")
	ErrDatabaseError     = errors.New("database error")
	ErrMessageQueueError = errors.New("message queue error")
)
