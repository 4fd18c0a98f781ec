package filter

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    Chain
		wantErr error
	}{
		{name: "none", in: "none", want: nil},
		{name: "empty", in: "  ", want: nil},
		{
			name: "warm preset",
			in:   "sepia(0.3) saturate(1.2) brightness(1.1)",
			want: Chain{{Sepia, 0.3}, {Saturate, 1.2}, {Brightness, 1.1}},
		},
		{
			name: "percentages and units",
			in:   "Contrast(120%) hue-rotate(0.5turn) blur(2px) grayscale()",
			want: Chain{{Contrast, 1.2}, {HueRotate, 180}, {Blur, 2}, {Grayscale, 1}},
		},
		{name: "amount capped", in: "sepia(3)", want: Chain{{Sepia, 1}}},
		{name: "unknown function", in: "drop-shadow(1px)", wantErr: ErrUnknownFunction},
		{name: "garbage between", in: "sepia(1) foo brightness(1)", wantErr: ErrUnknownFunction},
		{name: "negative", in: "brightness(-1)", wantErr: ErrInvalidArgument},
		{name: "unitless angle", in: "hue-rotate(90)", wantErr: ErrInvalidArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tc.in, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tc.in, err)
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestPresetsParse(t *testing.T) {
	for _, p := range Presets {
		if _, err := Parse(p.CSSFilter); err != nil {
			t.Errorf("preset %s: %v", p.ID, err)
		}
	}
	if _, ok := Preset("vintage"); !ok {
		t.Error("vintage preset missing")
	}
}

func solid(c color.NRGBA) *image.NRGBA {
	return imaging.New(4, 4, c)
}

func TestApplyColor(t *testing.T) {
	testCases := []struct {
		name  string
		chain Chain
		in    color.NRGBA
		want  color.NRGBA
	}{
		{name: "identity", chain: nil, in: color.NRGBA{10, 20, 30, 255}, want: color.NRGBA{10, 20, 30, 255}},
		{name: "brightness", chain: Chain{{Brightness, 2}}, in: color.NRGBA{100, 50, 200, 255}, want: color.NRGBA{200, 100, 255, 255}},
		{name: "grayscale white stays white", chain: Chain{{Grayscale, 1}}, in: color.NRGBA{255, 255, 255, 255}, want: color.NRGBA{255, 255, 255, 255}},
		{name: "grayscale equalizes", chain: Chain{{Grayscale, 1}}, in: color.NRGBA{255, 0, 0, 255}, want: color.NRGBA{54, 54, 54, 255}},
		{name: "invert", chain: Chain{{Invert, 1}}, in: color.NRGBA{0, 255, 55, 255}, want: color.NRGBA{255, 0, 200, 255}},
		{name: "opacity", chain: Chain{{Opacity, 0.5}}, in: color.NRGBA{1, 2, 3, 255}, want: color.NRGBA{1, 2, 3, 128}},
		{name: "contrast zero is gray", chain: Chain{{Contrast, 0}}, in: color.NRGBA{0, 255, 30, 255}, want: color.NRGBA{128, 128, 128, 255}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := Apply(solid(tc.in), tc.chain, 1)
			if diff := cmp.Diff(tc.want, out.NRGBAAt(1, 1)); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyBlurSoftensEdges(t *testing.T) {
	img := imaging.New(20, 20, color.NRGBA{0, 0, 0, 255})
	img = imaging.Paste(img, imaging.New(10, 20, color.NRGBA{255, 255, 255, 255}), image.Pt(10, 0))

	sharp := Apply(img, Chain{{Blur, 0}}, 2)
	if got := sharp.NRGBAAt(9, 10).R; got != 0 {
		t.Fatalf("zero blur changed edge pixel to %d", got)
	}

	blurred := Apply(img, Chain{{Blur, 1}}, 2)
	got := blurred.NRGBAAt(9, 10).R
	if got == 0 || got == 255 {
		t.Errorf("blurred edge pixel = %d, want intermediate value", got)
	}
}
