package domain

import "testing"

func TestExportResultSettle(t *testing.T) {
	testCases := []struct {
		name  string
		items []ExportStatus
		want  ExportStatus
	}{
		{name: "partial failure completes", items: []ExportStatus{ExportCompleted, ExportError, ExportCompleted}, want: ExportCompleted},
		{name: "all failed", items: []ExportStatus{ExportError, ExportError}, want: ExportError},
		{name: "still running", items: []ExportStatus{ExportCompleted, ExportPending}, want: ExportProcessing},
		{name: "empty batch", items: nil, want: ExportCompleted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := ExportResult{}
			for _, st := range tc.items {
				r.Items = append(r.Items, ExportItem{Status: st})
			}
			r.Settle()
			if r.Status != tc.want {
				t.Errorf("Settle() status = %s, want %s", r.Status, tc.want)
			}
		})
	}
}

func TestPhotoEdited(t *testing.T) {
	crop := &CropSettings{X: 10, Y: 10, Width: 100, Height: 100, AspectRatio: 1}
	legacy := LegacyDefaultCrop

	testCases := []struct {
		name  string
		state *ImageEditState
		want  bool
	}{
		{name: "no state", state: nil, want: false},
		{name: "empty state", state: &ImageEditState{}, want: false},
		{name: "text", state: &ImageEditState{TextElements: []TextElement{{ID: "t"}}}, want: true},
		{name: "active crop", state: &ImageEditState{Crop: crop}, want: true},
		{name: "legacy crop", state: &ImageEditState{Crop: &legacy}, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Photo{EditState: tc.state}
			if got := p.Edited(); got != tc.want {
				t.Errorf("Edited() = %v, want %v", got, tc.want)
			}
		})
	}
}
