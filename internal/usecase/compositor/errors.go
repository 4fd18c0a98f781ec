package compositor

import "errors"

var (
	ErrDecode             = errors.New("source image could not be decoded")
	ErrSurfaceUnavailable = errors.New("render surface unavailable")
	ErrInvalidColor       = errors.New("invalid color")
)
