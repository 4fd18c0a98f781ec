// Package editor implements the interactive manipulation layer: selection,
// drag-to-move and the crop pan/zoom gesture, all in canvas and design
// coordinates.
package editor

import (
	"context"
	"fmt"
	"math"
	"sync"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/compositor/crop"
	"post-composer/internal/usecase/compositor/space"
	"post-composer/internal/usecase/editstate"
)

const (
	// PickRadius is the hit-test radius around a text anchor, in canvas pixels.
	PickRadius = 80.0
	// ImageAreaRatio is the share of the canvas the photo occupies outside crop mode.
	ImageAreaRatio = 0.9

	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.1
)

type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeDragging Mode = "dragging"
)

type EventKind string

const (
	PointerDown  EventKind = "down"
	PointerMove  EventKind = "move"
	PointerUp    EventKind = "up"
	PointerLeave EventKind = "leave"
)

// PointerEvent carries a pointer position in canvas pixels.
type PointerEvent struct {
	Kind EventKind
	X    float64
	Y    float64
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	ImageID    string  `json:"imageId"`
	Mode       Mode    `json:"mode"`
	CropMode   bool    `json:"cropMode"`
	SelectedID string  `json:"selectedTextId,omitempty"`
	Zoom       float64 `json:"imageZoom"`
	PanX       float64 `json:"panX"`
	PanY       float64 `json:"panY"`
	CanvasSize float64 `json:"canvasSize"`
}

// Session is the per-image interaction state machine. Idle and Dragging are
// the pointer modes; crop mode is orthogonal and swaps text dragging for
// panning.
type Session struct {
	mu       sync.Mutex
	imageID  string
	registry stateRegistry

	mode       Mode
	cropMode   bool
	selectedID string
	grab       space.Vec
	last       space.Vec

	zoom       float64
	panX, panY float64
	canvas     float64
}

func NewSession(imageID string, canvasSize float64, registry stateRegistry) *Session {
	return &Session{
		imageID:  imageID,
		registry: registry,
		mode:     ModeIdle,
		zoom:     1,
		canvas:   canvasSize,
	}
}

// ImageArea is where the photo sits on a size x size editor canvas outside
// crop mode: a centered square of 90% of the canvas.
func ImageArea(size float64) space.Rect {
	side := size * ImageAreaRatio
	off := (size - side) / 2
	return space.Rect{X: off, Y: off, W: side, H: side}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ImageID:    s.imageID,
		Mode:       s.mode,
		CropMode:   s.cropMode,
		SelectedID: s.selectedID,
		Zoom:       s.zoom,
		PanX:       s.panX,
		PanY:       s.panY,
		CanvasSize: s.canvas,
	}
}

// SetCanvasSize resizes the editor canvas. Pointer coordinates of later
// events are read against the new size.
func (s *Session) SetCanvasSize(size float64) error {
	if size <= 0 || size > domain.DefaultEditorSize {
		return fmt.Errorf("%w: %v", ErrInvalidCanvas, size)
	}
	s.mu.Lock()
	s.canvas = size
	s.mu.Unlock()
	return nil
}

// Handle feeds one pointer event through the state machine.
func (s *Session) Handle(ctx context.Context, ev PointerEvent) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := space.Vec{X: ev.X, Y: ev.Y}

	switch ev.Kind {
	case PointerDown:
		if s.cropMode {
			s.mode = ModeDragging
			s.last = p
			return s.snapshot(), nil
		}
		s.pick(ctx, p)
	case PointerMove:
		if s.mode != ModeDragging {
			return s.snapshot(), nil
		}
		if s.cropMode {
			s.panX += p.X - s.last.X
			s.panY += p.Y - s.last.Y
			s.last = p
			return s.snapshot(), nil
		}
		if err := s.drag(ctx, p); err != nil {
			s.mode = ModeIdle
			return s.snapshot(), err
		}
	case PointerUp, PointerLeave:
		s.mode = ModeIdle
	default:
		return s.snapshot(), fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}

	return s.snapshot(), nil
}

// pick selects the first visible text whose anchor lies within PickRadius
// of p, in list order, and starts dragging it. A miss clears the selection.
func (s *Session) pick(ctx context.Context, p space.Vec) {
	area := ImageArea(s.canvas)
	st := s.registry.Get(ctx, s.imageID)

	for _, el := range st.TextElements {
		if !el.Visible {
			continue
		}
		a := space.Point(area, space.Vec{X: el.X, Y: el.Y})
		if math.Hypot(p.X-a.X, p.Y-a.Y) < PickRadius {
			d := space.Inverse(area, p)
			s.selectedID = el.ID
			s.grab = space.Vec{X: d.X - el.X, Y: d.Y - el.Y}
			s.mode = ModeDragging
			return
		}
	}

	s.selectedID = ""
	s.mode = ModeIdle
}

func (s *Session) drag(ctx context.Context, p space.Vec) error {
	if s.selectedID == "" {
		return nil
	}
	d := space.Inverse(ImageArea(s.canvas), p)
	x := domain.ClampDesign(d.X - s.grab.X)
	y := domain.ClampDesign(d.Y - s.grab.Y)

	if _, err := s.registry.Update(ctx, s.imageID, editstate.MoveText(s.selectedID, x, y)); err != nil {
		return fmt.Errorf("failed to move text: %w", err)
	}
	return nil
}

// Select sets the selected text directly. It is a no-op in crop mode.
func (s *Session) Select(id string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cropMode {
		s.selectedID = id
	}
	return s.snapshot()
}

// SetCropMode enters or leaves crop mode. Entering clears the selection;
// either way the pointer returns to Idle and zoom/pan reset.
func (s *Session) SetCropMode(on bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cropMode = on
	s.mode = ModeIdle
	s.zoom, s.panX, s.panY = 1, 0, 0
	if on {
		s.selectedID = ""
	}
	return s.snapshot()
}

// ToggleCropMode flips crop mode.
func (s *Session) ToggleCropMode() Snapshot {
	s.mu.Lock()
	on := !s.cropMode
	s.mu.Unlock()
	return s.SetCropMode(on)
}

// StepZoom changes the crop zoom by one step, clamped to [MinZoom, MaxZoom].
func (s *Session) StepZoom(in bool) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cropMode {
		return s.snapshot(), ErrNotInCropMode
	}
	z := s.zoom - ZoomStep
	if in {
		z = s.zoom + ZoomStep
	}
	s.zoom = clampZoom(math.Round(z*10) / 10)
	return s.snapshot(), nil
}

// SetZoom sets the crop zoom, clamped to [MinZoom, MaxZoom].
func (s *Session) SetZoom(z float64) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cropMode {
		return s.snapshot(), ErrNotInCropMode
	}
	s.zoom = clampZoom(z)
	return s.snapshot(), nil
}

// Viewport returns the current crop view.
func (s *Session) Viewport() crop.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport()
}

func (s *Session) viewport() crop.Viewport {
	return crop.Viewport{CanvasW: s.canvas, CanvasH: s.canvas, Zoom: s.zoom, PanX: s.panX, PanY: s.panY}
}

// ApplyCrop reprojects the visible viewport of an imgW x imgH photo into a
// square crop, commits it and leaves crop mode.
func (s *Session) ApplyCrop(ctx context.Context, imgW, imgH float64) (domain.CropSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cropMode {
		return domain.CropSettings{}, ErrNotInCropMode
	}

	c := crop.FromViewport(s.viewport(), imgW, imgH)
	if _, err := s.registry.Update(ctx, s.imageID, editstate.SetCrop(c)); err != nil {
		return domain.CropSettings{}, fmt.Errorf("failed to commit crop: %w", err)
	}

	s.cropMode = false
	s.mode = ModeIdle
	s.zoom, s.panX, s.panY = 1, 0, 0

	return c, nil
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
