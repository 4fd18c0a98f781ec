package image

import "errors"

var (
	ErrImageNotFound     = errors.New("image not found")
	ErrEditStateNotFound = errors.New("edit state not found")
	ErrExportNotFound    = errors.New("export not found")
	ErrFileNotFound      = errors.New("file not found")
	ErrStorageError      = errors.New("storage error")
)
