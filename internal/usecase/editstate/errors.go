package editstate

import "errors"

var (
	ErrTextNotFound       = errors.New("text element not found")
	ErrDecorationNotFound = errors.New("decoration element not found")
	ErrTemplateNotFound   = errors.New("design template not found")
	ErrInvalidFilter      = errors.New("invalid image filter")
	ErrInvalidCrop        = errors.New("invalid crop settings")
	ErrImageMismatch      = errors.New("edit state belongs to another image")
)
