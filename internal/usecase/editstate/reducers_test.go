package editstate

import (
	"errors"
	"testing"

	"post-composer/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func apply(t *testing.T, st domain.ImageEditState, fns ...Reducer) domain.ImageEditState {
	t.Helper()
	for _, fn := range fns {
		var err error
		st, err = fn(st.Clone())
		if err != nil {
			t.Fatalf("reducer error: %v", err)
		}
	}
	return st
}

func TestTextReducers(t *testing.T) {
	st := apply(t, domain.NewEditState("img-1"),
		AddText(domain.DefaultTextElement("a", "A")),
		AddText(domain.DefaultTextElement("b", "B")),
		MoveText("a", 450, -3),
		PatchText("b", TextPatch{
			BackgroundColor: ptr(""),
			TextAlign:       ptr(domain.AlignLeft),
			StrokeWidth:     ptr(3.0),
		}),
		RemoveText("a"),
	)

	if len(st.TextElements) != 1 || st.TextElements[0].ID != "b" {
		t.Fatalf("texts = %+v, want only b", st.TextElements)
	}
	b := st.TextElements[0]
	if b.BackgroundColor != nil {
		t.Errorf("background = %v, want cleared", *b.BackgroundColor)
	}
	if b.TextAlign != domain.AlignLeft || *b.StrokeWidth != 3 {
		t.Errorf("patch not applied: %+v", b)
	}

	moved := apply(t, domain.NewEditState("img-1"), AddText(domain.DefaultTextElement("a", "A")), MoveText("a", 450, -3))
	if got := [2]float64{moved.TextElements[0].X, moved.TextElements[0].Y}; got != [2]float64{400, 0} {
		t.Errorf("moved to %v, want clamped [400 0]", got)
	}
}

func TestCropReducers(t *testing.T) {
	st := apply(t, domain.NewEditState("img-1"), SetCrop(domain.CropSettings{X: 10, Y: 20, Width: 300, Height: 300, AspectRatio: 2}))
	want := &domain.CropSettings{X: 10, Y: 20, Width: 300, Height: 300, AspectRatio: 1}
	if diff := cmp.Diff(want, st.Crop); diff != "" {
		t.Errorf("crop mismatch (-want +got):\n%s", diff)
	}

	st = apply(t, st, ClearCrop())
	if st.Crop != nil {
		t.Errorf("crop = %+v, want nil", st.Crop)
	}

	if _, err := SetCrop(domain.CropSettings{Width: 0, Height: 10})(st); !errors.Is(err, ErrInvalidCrop) {
		t.Errorf("error = %v, want ErrInvalidCrop", err)
	}
}

func TestSetFilter(t *testing.T) {
	st := apply(t, domain.NewEditState("img-1"), SetFilter(domain.ImageFilter{ID: "warm", CSSFilter: "sepia(0.3)"}))
	if st.Filter.ID != "warm" {
		t.Errorf("filter = %+v", st.Filter)
	}

	if _, err := SetFilter(domain.ImageFilter{ID: "x", CSSFilter: "url(#svg)"})(st); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("error = %v, want ErrInvalidFilter", err)
	}
}

func TestDecorationZIndex(t *testing.T) {
	st := apply(t, domain.NewEditState("img-1"),
		AddDecoration(domain.DecorationElement{ID: "d1", Type: domain.DecorationEmoji, Emoji: "🔥"}),
		AddDecoration(domain.DecorationElement{ID: "d2", Type: domain.DecorationShape, IconID: "star"}),
		AddDecoration(domain.DecorationElement{ID: "d3", Type: domain.DecorationShape, IconID: "circle", ZIndex: 7}),
		AddDecoration(domain.DecorationElement{ID: "d4", Type: domain.DecorationShape, IconID: "heart"}),
	)

	got := map[string]int{}
	for _, d := range st.DecorationElements {
		got[d.ID] = d.ZIndex
	}
	want := map[string]int{"d1": 0, "d2": 1, "d3": 7, "d4": 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("z-index mismatch (-want +got):\n%s", diff)
	}

	st = apply(t, st, RemoveDecoration("d3"))
	if len(st.DecorationElements) != 3 {
		t.Errorf("got %d decorations, want 3", len(st.DecorationElements))
	}
}

func TestApplyTemplate(t *testing.T) {
	tpl, ok := FindTemplate("cute-pastel")
	if !ok {
		t.Fatal("cute-pastel template missing")
	}

	n := 0
	newID := func() string {
		n++
		return string(rune('a' + n - 1))
	}

	st := apply(t, domain.NewEditState("img-1"), ApplyTemplate(tpl, "Sunny 3LDK", "5 min to station", newID))

	if len(st.TextElements) != 2 || len(st.DecorationElements) != 3 {
		t.Fatalf("got %d texts and %d decorations", len(st.TextElements), len(st.DecorationElements))
	}
	title := st.TextElements[0]
	if title.Text != "Sunny 3LDK" || title.FontSize != 40 || title.Y != 130 || title.BackgroundColor == nil {
		t.Errorf("title = %+v", title)
	}
	if st.TextElements[1].BackgroundColor != nil {
		t.Error("subtitle got a background")
	}
	if st.DecorationElements[0].Type != domain.DecorationShape {
		t.Errorf("heart decoration type = %s, want shape", st.DecorationElements[0].Type)
	}
}
