package space

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPoint(t *testing.T) {
	testCases := []struct {
		name string
		rect Rect
		in   Vec
		want Vec
	}{
		{name: "export center", rect: Square(1080), in: Vec{200, 200}, want: Vec{540, 540}},
		{name: "preview corner", rect: Square(400), in: Vec{400, 400}, want: Vec{400, 400}},
		{name: "editor image area", rect: Rect{X: 30, Y: 30, W: 540, H: 540}, in: Vec{0, 400}, want: Vec{30, 570}},
		{name: "origin", rect: Square(1080), in: Vec{}, want: Vec{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Point(tc.rect, tc.in)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("Point() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScalingConsistency(t *testing.T) {
	preview := Square(400)
	export := Square(1080)

	for _, v := range []float64{1, 16, 32, 48, 200} {
		got := Length(export, v) / Length(preview, v)
		if math.Abs(got-2.7) > 1e-9 {
			t.Errorf("length ratio for %v = %v, want 2.7", v, got)
		}
	}

	p := Point(export, Vec{100, 300})
	q := Point(preview, Vec{100, 300})
	if math.Abs(p.X/q.X-2.7) > 1e-9 || math.Abs(p.Y/q.Y-2.7) > 1e-9 {
		t.Errorf("position ratio = %v,%v, want 2.7", p.X/q.X, p.Y/q.Y)
	}
}

func TestLengthUsesShorterSide(t *testing.T) {
	r := Rect{W: 800, H: 400}
	if got := Length(r, 40); got != 40 {
		t.Errorf("Length() = %v, want 40", got)
	}
}

func TestToDesign(t *testing.T) {
	r := Rect{X: 30, Y: 30, W: 540, H: 540}

	testCases := []struct {
		name string
		in   Vec
		want Vec
	}{
		{name: "inside", in: Vec{300, 300}, want: Vec{200, 200}},
		{name: "left of area", in: Vec{0, 300}, want: Vec{0, 200}},
		{name: "past bottom right", in: Vec{999, 999}, want: Vec{400, 400}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDesign(r, tc.in)
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("ToDesign() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInverseIsUnclamped(t *testing.T) {
	r := Rect{X: 30, Y: 30, W: 540, H: 540}
	got := Inverse(r, Vec{3, 597})
	want := Vec{-20, 420}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Inverse() mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	r := Rect{X: 12, Y: 7, W: 600, H: 600}
	in := Vec{123.5, 321.25}
	got := ToDesign(r, Point(r, in))
	if diff := cmp.Diff(in, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
