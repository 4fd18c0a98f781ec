package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdimage "image"
	"image/color"
	"io"
	"strings"
	"testing"
	"time"

	"post-composer/internal/domain"
	repoImage "post-composer/internal/repository/image"
	"post-composer/internal/usecase/processor"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
	"github.com/wb-go/wbf/zlog"
)

type fakeRepo struct {
	photos  map[string]*domain.Photo
	order   []string
	exports map[string]domain.ExportResult
	saves   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{photos: make(map[string]*domain.Photo), exports: make(map[string]domain.ExportResult)}
}

func (f *fakeRepo) Save(_ context.Context, p *domain.Photo) error {
	cp := *p
	f.photos[p.ID] = &cp
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.Photo, error) {
	p, ok := f.photos[id]
	if !ok || p.Status == domain.StatusDeleted {
		return nil, repoImage.ErrImageNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, _ string) ([]domain.Photo, error) {
	var out []domain.Photo
	for _, id := range f.order {
		if p := f.photos[id]; p.Status != domain.StatusDeleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) Count(ctx context.Context, projectID string) (int, error) {
	l, _ := f.List(ctx, projectID)
	return len(l), nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	p, ok := f.photos[id]
	if !ok {
		return repoImage.ErrImageNotFound
	}
	p.Status = domain.StatusDeleted
	return nil
}

func (f *fakeRepo) SaveExportResult(_ context.Context, r *domain.ExportResult) error {
	f.saves++
	cp := *r
	cp.Items = append([]domain.ExportItem(nil), r.Items...)
	f.exports[r.ID] = cp
	return nil
}

func (f *fakeRepo) GetExportResult(_ context.Context, id string) (*domain.ExportResult, error) {
	r, ok := f.exports[id]
	if !ok {
		return nil, repoImage.ErrExportNotFound
	}
	return &r, nil
}

type fakeFiles struct {
	deleted []string
}

func (f *fakeFiles) GetObject(_ context.Context, path string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("bytes of " + path)), nil
}

func (f *fakeFiles) DeleteObject(_ context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeFiles) PresignedExportURL(_ context.Context, path string) (string, error) {
	return "https://files.example/" + path, nil
}

type fakeProcessor struct {
	ingested int
}

func (f *fakeProcessor) Ingest(_ context.Context, imageID, mimeType string, data []byte) (*processor.Ingested, error) {
	f.ingested++
	return &processor.Ingested{
		Width: 1080, Height: 720, MimeType: mimeType, Size: int64(len(data)),
		OriginalPath:  "original/" + imageID + ".png",
		ThumbnailPath: "thumbnails/" + imageID + ".jpg",
	}, nil
}

func (f *fakeProcessor) Source(_ context.Context, _ *domain.Photo) (stdimage.Image, error) {
	return imaging.New(4, 4, color.White), nil
}

func (f *fakeProcessor) Preview(_ context.Context, _ *domain.Photo, _ domain.ImageEditState) (*processor.Rendered, error) {
	return &processor.Rendered{ContentType: "image/png"}, nil
}

func (f *fakeProcessor) Export(_ context.Context, p *domain.Photo, _ domain.ImageEditState, _ domain.ExportOptions) (*processor.Rendered, error) {
	return &processor.Rendered{ContentType: "image/jpeg", Filename: p.ID + ".jpg"}, nil
}

type fakeStates struct {
	states  map[string]domain.ImageEditState
	deleted []string
}

func (f *fakeStates) Get(_ context.Context, id string) domain.ImageEditState {
	if st, ok := f.states[id]; ok {
		return st
	}
	return domain.NewEditState(id)
}

func (f *fakeStates) Lookup(_ context.Context, id string) (domain.ImageEditState, bool) {
	st, ok := f.states[id]
	return st, ok
}

func (f *fakeStates) Delete(_ context.Context, id string) {
	f.deleted = append(f.deleted, id)
	delete(f.states, id)
}

type fakeProducer struct {
	tasks []*domain.ExportTask
	err   error
}

func (f *fakeProducer) SendExport(_ context.Context, task *domain.ExportTask) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}

type fixture struct {
	uc       *ImageUsecase
	repo     *fakeRepo
	files    *fakeFiles
	proc     *fakeProcessor
	states   *fakeStates
	producer *fakeProducer
}

func newFixture() *fixture {
	zlog.Init()
	f := &fixture{
		repo:     newFakeRepo(),
		files:    &fakeFiles{},
		proc:     &fakeProcessor{},
		states:   &fakeStates{states: make(map[string]domain.ImageEditState)},
		producer: &fakeProducer{},
	}
	f.uc = NewImageUsecase(f.repo, f.files, f.proc, f.states, f.producer, Limits{MaxUploadSize: 1 << 20, MaxPhotos: 3}, &zlog.Logger)
	n := 0
	f.uc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	f.uc.now = func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) }
	return f
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(8, 8, color.White), imaging.PNG); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func (f *fixture) addPhoto(id string, state *domain.ImageEditState) {
	f.repo.Save(context.Background(), &domain.Photo{ID: id, OriginalFilename: id + ".jpg", Status: domain.StatusReady, OriginalPath: "original/" + id})
	if state != nil {
		f.states.states[id] = *state
	}
}

func TestUploadImage(t *testing.T) {
	f := newFixture()
	data := pngBytes(t)

	photo, err := f.uc.UploadImage(context.Background(), bytes.NewReader(data), "living.png", int64(len(data)))
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}

	want := &domain.Photo{
		ID:               "id-1",
		ProjectID:        domain.DefaultProjectID,
		OriginalFilename: "living.png",
		OriginalSize:     int64(len(data)),
		MimeType:         "image/png",
		Width:            1080,
		Height:           720,
		Status:           domain.StatusReady,
		OriginalPath:     "original/id-1.png",
		ThumbnailPath:    "thumbnails/id-1.jpg",
		Bucket:           domain.BucketOriginal,
		CreatedAt:        f.uc.now(),
		UpdatedAt:        f.uc.now(),
	}
	if diff := cmp.Diff(want, photo); diff != "" {
		t.Errorf("photo mismatch (-want +got):\n%s", diff)
	}
}

func TestUploadImageRejects(t *testing.T) {
	testCases := []struct {
		name    string
		data    func(t *testing.T) []byte
		size    int64
		preload int
		want    error
	}{
		{name: "declared too large", data: pngBytes, size: 2 << 20, want: ErrFileTooLarge},
		{name: "body too large", data: func(*testing.T) []byte { return make([]byte, 1<<20+10) }, want: ErrFileTooLarge},
		{name: "not an image", data: func(*testing.T) []byte { return []byte("%PDF-1.4 not a photo") }, want: ErrInvalidFileFormat},
		{name: "gif not accepted", data: func(*testing.T) []byte { return []byte("GIF89a......") }, want: ErrInvalidFileFormat},
		{name: "project full", data: pngBytes, preload: 3, want: ErrTooManyImages},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			for i := 0; i < tc.preload; i++ {
				f.addPhoto(fmt.Sprintf("p%d", i), nil)
			}

			data := tc.data(t)
			_, err := f.uc.UploadImage(context.Background(), bytes.NewReader(data), "x.png", tc.size)
			if !errors.Is(err, tc.want) {
				t.Errorf("UploadImage() error = %v, want %v", err, tc.want)
			}
			if f.proc.ingested != 0 {
				t.Error("rejected upload reached ingestion")
			}
		})
	}
}

func TestQueueExportOnlyEdited(t *testing.T) {
	f := newFixture()
	texted := domain.NewEditState("a")
	texted.TextElements = []domain.TextElement{domain.DefaultTextElement("t", "hi")}
	cropped := domain.NewEditState("c")
	cropped.Crop = &domain.CropSettings{X: 1, Y: 1, Width: 50, Height: 50, AspectRatio: 1}
	untouched := domain.NewEditState("b")

	f.addPhoto("a", &texted)
	f.addPhoto("b", &untouched)
	f.addPhoto("c", &cropped)
	f.addPhoto("d", nil)

	got, err := f.uc.QueueExport(context.Background(), domain.ExportOptions{Format: domain.ExportJPG, Quality: 80})
	if err != nil {
		t.Fatalf("QueueExport: %v", err)
	}

	if len(f.producer.tasks) != 1 {
		t.Fatalf("tasks sent = %d, want 1", len(f.producer.tasks))
	}
	if diff := cmp.Diff([]string{"a", "c"}, f.producer.tasks[0].ImageIDs); diff != "" {
		t.Errorf("task images mismatch (-want +got):\n%s", diff)
	}
	if got.Status != domain.ExportPending || len(got.Items) != 2 {
		t.Errorf("result = %+v", got)
	}
	if _, ok := f.repo.exports[got.ID]; !ok {
		t.Error("pending export not recorded")
	}
}

func TestQueueExportNothingEdited(t *testing.T) {
	f := newFixture()
	f.addPhoto("a", nil)

	if _, err := f.uc.QueueExport(context.Background(), domain.ExportOptions{}); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("QueueExport() error = %v, want ErrNothingToExport", err)
	}
}

func TestQueueExportProducerFailure(t *testing.T) {
	f := newFixture()
	st := domain.NewEditState("a")
	st.TextElements = []domain.TextElement{domain.DefaultTextElement("t", "hi")}
	f.addPhoto("a", &st)
	f.producer.err = errors.New("broker down")

	_, err := f.uc.QueueExport(context.Background(), domain.ExportOptions{})
	if !errors.Is(err, ErrMessageQueueError) {
		t.Fatalf("QueueExport() error = %v, want ErrMessageQueueError", err)
	}
	if r := f.repo.exports["id-1"]; r.Status != domain.ExportError {
		t.Errorf("stored status = %s, want error", r.Status)
	}
}

func TestGetExportAddsLinks(t *testing.T) {
	f := newFixture()
	f.repo.exports["e1"] = domain.ExportResult{
		ID: "e1",
		Items: []domain.ExportItem{
			{ImageID: "a", Status: domain.ExportCompleted, Path: "exports/e1/a.jpg"},
			{ImageID: "b", Status: domain.ExportError, Error: "boom"},
		},
	}

	got, err := f.uc.GetExport(context.Background(), "e1")
	if err != nil {
		t.Fatalf("GetExport: %v", err)
	}
	if got.Items[0].URL != "https://files.example/exports/e1/a.jpg" || got.Items[1].URL != "" {
		t.Errorf("urls = %q, %q", got.Items[0].URL, got.Items[1].URL)
	}

	if _, err := f.uc.GetExport(context.Background(), "nope"); !errors.Is(err, ErrExportNotFound) {
		t.Errorf("missing export error = %v", err)
	}
}

func TestDeleteImageDropsState(t *testing.T) {
	f := newFixture()
	st := domain.NewEditState("a")
	f.addPhoto("a", &st)
	f.repo.photos["a"].ThumbnailPath = "thumbnails/a.jpg"

	if err := f.uc.DeleteImage(context.Background(), "a"); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}

	if diff := cmp.Diff([]string{"a"}, f.states.deleted); diff != "" {
		t.Errorf("deleted states mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"original/a", "thumbnails/a.jpg"}, f.files.deleted); diff != "" {
		t.Errorf("deleted files mismatch (-want +got):\n%s", diff)
	}
	if _, err := f.uc.GetImage(context.Background(), "a"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("GetImage after delete error = %v", err)
	}
}

func TestExportRequiresEdits(t *testing.T) {
	f := newFixture()
	f.addPhoto("a", nil)

	if _, err := f.uc.Export(context.Background(), "a", domain.ExportOptions{}); !errors.Is(err, ErrNotEdited) {
		t.Errorf("Export() error = %v, want ErrNotEdited", err)
	}
	if _, err := f.uc.Export(context.Background(), "missing", domain.ExportOptions{}); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Export() error = %v, want ErrImageNotFound", err)
	}
}
