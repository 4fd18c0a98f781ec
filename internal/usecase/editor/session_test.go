package editor

import (
	"context"
	"errors"
	"math"
	"testing"

	"post-composer/internal/domain"
	"post-composer/internal/usecase/compositor/space"
	"post-composer/internal/usecase/editstate"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/wb-go/wbf/zlog"
)

func newTestSession(t *testing.T, texts ...domain.TextElement) (*Session, *editstate.Registry) {
	t.Helper()
	zlog.Init()
	reg := editstate.NewRegistry(nil, &zlog.Logger)
	for _, el := range texts {
		if _, err := reg.Update(context.Background(), "img-1", editstate.AddText(el)); err != nil {
			t.Fatalf("AddText() error: %v", err)
		}
	}
	return NewSession("img-1", 600, reg), reg
}

func textAt(id string, x, y float64) domain.TextElement {
	el := domain.DefaultTextElement(id, id)
	el.X, el.Y = x, y
	return el
}

func TestImageArea(t *testing.T) {
	got := ImageArea(600)
	want := space.Rect{X: 30, Y: 30, W: 540, H: 540}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("ImageArea() mismatch (-want +got):\n%s", diff)
	}
}

func TestPickAndDrag(t *testing.T) {
	ctx := context.Background()
	s, reg := newTestSession(t, textAt("a", 200, 200), textAt("b", 210, 200))

	// Anchor of "a" is at canvas (300, 300). Grab 20px to its right.
	snap, err := s.Handle(ctx, PointerEvent{Kind: PointerDown, X: 320, Y: 300})
	if err != nil {
		t.Fatalf("down: %v", err)
	}
	if snap.SelectedID != "a" || snap.Mode != ModeDragging {
		t.Fatalf("after down: %+v, want a selected and dragging", snap)
	}

	// Move by +54px, +27px in canvas space = +40, +20 design units.
	if _, err := s.Handle(ctx, PointerEvent{Kind: PointerMove, X: 374, Y: 327}); err != nil {
		t.Fatalf("move: %v", err)
	}
	el := reg.Get(ctx, "img-1").TextElements[0]
	if math.Abs(el.X-240) > 1e-9 || math.Abs(el.Y-220) > 1e-9 {
		t.Errorf("a moved to (%v, %v), want (240, 220)", el.X, el.Y)
	}

	snap, _ = s.Handle(ctx, PointerEvent{Kind: PointerUp})
	if snap.Mode != ModeIdle || snap.SelectedID != "a" {
		t.Errorf("after up: %+v, want idle with a still selected", snap)
	}

	// Moves in Idle do nothing.
	if _, err := s.Handle(ctx, PointerEvent{Kind: PointerMove, X: 0, Y: 0}); err != nil {
		t.Fatalf("idle move: %v", err)
	}
	if got := reg.Get(ctx, "img-1").TextElements[0].X; math.Abs(got-240) > 1e-9 {
		t.Errorf("idle move changed x to %v", got)
	}
}

func TestDragClampsToDesignSpace(t *testing.T) {
	ctx := context.Background()
	s, reg := newTestSession(t, textAt("a", 390, 10))

	if _, err := s.Handle(ctx, PointerEvent{Kind: PointerDown, X: 30 + 390*1.35, Y: 30 + 10*1.35}); err != nil {
		t.Fatalf("down: %v", err)
	}
	if _, err := s.Handle(ctx, PointerEvent{Kind: PointerMove, X: 900, Y: -200}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := s.Handle(ctx, PointerEvent{Kind: PointerLeave}); err != nil {
		t.Fatalf("leave: %v", err)
	}

	el := reg.Get(ctx, "img-1").TextElements[0]
	if math.Abs(el.X-400) > 1e-6 || math.Abs(el.Y) > 1e-6 {
		t.Errorf("position = (%v, %v), want (400, 0)", el.X, el.Y)
	}
	if s.Snapshot().Mode != ModeIdle {
		t.Error("leave did not return to idle")
	}
}

func TestPickInMarginKeepsGrabOffset(t *testing.T) {
	ctx := context.Background()
	s, reg := newTestSession(t, textAt("corner", 0, 0))

	// The anchor sits at canvas (30, 30); grab it 20px up-left, in the margin.
	snap, err := s.Handle(ctx, PointerEvent{Kind: PointerDown, X: 10, Y: 10})
	if err != nil {
		t.Fatalf("down: %v", err)
	}
	if snap.SelectedID != "corner" {
		t.Fatalf("after down: %+v, want corner selected", snap)
	}

	// +54px right is +40 design units; the element must not jump.
	if _, err := s.Handle(ctx, PointerEvent{Kind: PointerMove, X: 64, Y: 10}); err != nil {
		t.Fatalf("move: %v", err)
	}
	el := reg.Get(ctx, "img-1").TextElements[0]
	if math.Abs(el.X-40) > 1e-9 || math.Abs(el.Y) > 1e-9 {
		t.Errorf("position = (%v, %v), want (40, 0)", el.X, el.Y)
	}
}

func TestPickMissClearsSelection(t *testing.T) {
	ctx := context.Background()
	hidden := textAt("hidden", 100, 100)
	hidden.Visible = false
	s, _ := newTestSession(t, textAt("a", 200, 200), hidden)

	s.Select("a")
	snap, _ := s.Handle(ctx, PointerEvent{Kind: PointerDown, X: 165, Y: 165})
	if snap.SelectedID != "" || snap.Mode != ModeIdle {
		t.Errorf("after miss: %+v, want no selection and idle", snap)
	}

	// Exactly PickRadius away is a miss.
	snap, _ = s.Handle(ctx, PointerEvent{Kind: PointerDown, X: 300 + PickRadius, Y: 300})
	if snap.SelectedID != "" {
		t.Errorf("pointer at pick radius selected %q", snap.SelectedID)
	}
}

func TestCropModeBlocksSelection(t *testing.T) {
	ctx := context.Background()
	s, reg := newTestSession(t, textAt("a", 200, 200))

	s.Select("a")
	snap := s.ToggleCropMode()
	if !snap.CropMode || snap.SelectedID != "" {
		t.Fatalf("entering crop mode: %+v", snap)
	}

	snap, _ = s.Handle(ctx, PointerEvent{Kind: PointerDown, X: 300, Y: 300})
	if snap.SelectedID != "" {
		t.Errorf("selected %q in crop mode", snap.SelectedID)
	}
	s.Select("a")
	if s.Snapshot().SelectedID != "" {
		t.Error("Select() worked in crop mode")
	}

	snap, _ = s.Handle(ctx, PointerEvent{Kind: PointerMove, X: 340, Y: 290})
	if snap.PanX != 40 || snap.PanY != -10 {
		t.Errorf("pan = (%v, %v), want (40, -10)", snap.PanX, snap.PanY)
	}
	if got := reg.Get(ctx, "img-1").TextElements[0].X; got != 200 {
		t.Errorf("text moved during pan: x = %v", got)
	}
}

func TestZoomClamps(t *testing.T) {
	s, _ := newTestSession(t)

	if _, err := s.StepZoom(true); !errors.Is(err, ErrNotInCropMode) {
		t.Fatalf("zoom outside crop mode error = %v", err)
	}

	s.SetCropMode(true)
	var snap Snapshot
	for i := 0; i < 30; i++ {
		snap, _ = s.StepZoom(true)
	}
	if snap.Zoom != MaxZoom {
		t.Errorf("zoom = %v, want %v", snap.Zoom, MaxZoom)
	}
	for i := 0; i < 30; i++ {
		snap, _ = s.StepZoom(false)
	}
	if snap.Zoom != MinZoom {
		t.Errorf("zoom = %v, want %v", snap.Zoom, MinZoom)
	}
}

func TestApplyCrop(t *testing.T) {
	ctx := context.Background()
	s, reg := newTestSession(t)

	if _, err := s.ApplyCrop(ctx, 2000, 3000); !errors.Is(err, ErrNotInCropMode) {
		t.Fatalf("apply outside crop mode error = %v", err)
	}

	s.SetCropMode(true)
	if _, err := s.SetZoom(2); err != nil {
		t.Fatalf("SetZoom() error: %v", err)
	}

	got, err := s.ApplyCrop(ctx, 2000, 3000)
	if err != nil {
		t.Fatalf("ApplyCrop() error: %v", err)
	}
	want := domain.CropSettings{X: 500, Y: 1000, Width: 1000, Height: 1000, AspectRatio: 1}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("crop mismatch (-want +got):\n%s", diff)
	}

	st := reg.Get(ctx, "img-1")
	if !st.CropActive() {
		t.Error("crop not committed to edit state")
	}

	snap := s.Snapshot()
	if snap.CropMode || snap.Zoom != 1 || snap.PanX != 0 || snap.Mode != ModeIdle {
		t.Errorf("after apply: %+v, want idle, crop mode off, zoom reset", snap)
	}
}

func TestUnknownEvent(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.Handle(context.Background(), PointerEvent{Kind: "wheel"}); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("error = %v, want ErrUnknownEvent", err)
	}
}
