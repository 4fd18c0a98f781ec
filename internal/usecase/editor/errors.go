package editor

import "errors"

var (
	ErrNotInCropMode = errors.New("crop mode is not active")
	ErrUnknownEvent  = errors.New("unknown pointer event")
	ErrInvalidCanvas = errors.New("invalid editor canvas size")
)
