package image

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"post-composer/internal/domain"
	"post-composer/internal/http-server/handler/image/dto"
	image_uc "post-composer/internal/usecase/image"
	"post-composer/internal/usecase/processor"

	"github.com/go-chi/chi/v5"
	"github.com/wb-go/wbf/zlog"
)

type fakeUsecase struct {
	uploadErr error
	exportErr error
	queueErr  error
	opts      domain.ExportOptions
	queued    *domain.ExportResult
}

func (f *fakeUsecase) UploadImage(_ context.Context, file io.Reader, filename string, size int64) (*domain.Photo, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &domain.Photo{ID: "p1", OriginalFilename: filename, OriginalSize: size, Status: domain.StatusReady}, nil
}

func (f *fakeUsecase) ListImages(context.Context) ([]domain.Photo, error) {
	return []domain.Photo{{ID: "p1"}, {ID: "p2"}}, nil
}

func (f *fakeUsecase) OpenOriginal(_ context.Context, id string, _ bool) (*domain.Photo, io.ReadCloser, error) {
	if id != "p1" {
		return nil, nil, image_uc.ErrImageNotFound
	}
	return &domain.Photo{ID: id, MimeType: "image/png"}, io.NopCloser(strings.NewReader("png")), nil
}

func (f *fakeUsecase) DeleteImage(_ context.Context, id string) error {
	if id != "p1" {
		return image_uc.ErrImageNotFound
	}
	return nil
}

func (f *fakeUsecase) Preview(context.Context, string) (*processor.Rendered, error) {
	return &processor.Rendered{Data: []byte("jpg"), ContentType: "image/jpeg"}, nil
}

func (f *fakeUsecase) Export(_ context.Context, _ string, opts domain.ExportOptions) (*processor.Rendered, error) {
	f.opts = opts
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return &processor.Rendered{Data: []byte("jpg"), ContentType: "image/jpeg", Filename: "post_p1.jpg"}, nil
}

func (f *fakeUsecase) QueueExport(_ context.Context, opts domain.ExportOptions) (*domain.ExportResult, error) {
	f.opts = opts
	if f.queueErr != nil {
		return nil, f.queueErr
	}
	f.queued = &domain.ExportResult{ID: "exp1", Status: domain.ExportPending, Items: []domain.ExportItem{{ImageID: "p1", Status: domain.ExportPending}}}
	return f.queued, nil
}

func (f *fakeUsecase) GetExport(_ context.Context, id string) (*domain.ExportResult, error) {
	if f.queued == nil || f.queued.ID != id {
		return nil, image_uc.ErrExportNotFound
	}
	return f.queued, nil
}

type fakeSessions struct {
	dropped []string
}

func (f *fakeSessions) Drop(id string) { f.dropped = append(f.dropped, id) }

func newTestRouter(uc *fakeUsecase, sessions *fakeSessions) http.Handler {
	zlog.Init()
	h := NewImageHandler(uc, sessions, Options{MaxUploadSize: 1 << 10, DefaultQuality: 80}, &zlog.Logger)

	r := chi.NewRouter()
	r.Post("/images/upload", h.UploadImage)
	r.Get("/images", h.ListImages)
	r.Get("/images/{id}", h.GetImage)
	r.Delete("/images/{id}", h.DeleteImage)
	r.Get("/images/{id}/export", h.Export)
	r.Post("/exports", h.QueueExport)
	r.Get("/exports/{id}", h.GetExport)
	return r
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/images/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadImage(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "accepted", want: http.StatusCreated},
		{name: "bad format", err: image_uc.ErrInvalidFileFormat, want: http.StatusBadRequest},
		{name: "too large", err: image_uc.ErrFileTooLarge, want: http.StatusRequestEntityTooLarge},
		{name: "photo limit", err: image_uc.ErrTooManyImages, want: http.StatusConflict},
		{name: "storage down", err: image_uc.ErrStorageError, want: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeUsecase{uploadErr: tc.err}, &fakeSessions{})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, uploadRequest(t, "house.png", []byte("png bytes")))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body)
			}
		})
	}
}

func TestUploadImageMissingFile(t *testing.T) {
	router := newTestRouter(&fakeUsecase{}, &fakeSessions{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("note", "no file")
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/images/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDeleteImageDropsSession(t *testing.T) {
	sessions := &fakeSessions{}
	router := newTestRouter(&fakeUsecase{}, sessions)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/images/p1", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(sessions.dropped) != 1 || sessions.dropped[0] != "p1" {
		t.Errorf("dropped sessions = %v, want [p1]", sessions.dropped)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/images/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown image status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestExport(t *testing.T) {
	testCases := []struct {
		name        string
		query       string
		err         error
		want        int
		wantQuality int
	}{
		{name: "default quality", query: "format=jpg", want: http.StatusOK, wantQuality: 80},
		{name: "explicit quality", query: "format=jpg&quality=60", want: http.StatusOK, wantQuality: 60},
		{name: "quality too low", query: "quality=10", want: http.StatusBadRequest},
		{name: "quality not a number", query: "quality=high", want: http.StatusBadRequest},
		{name: "unknown format", query: "format=gif", want: http.StatusBadRequest},
		{name: "not edited", query: "format=png", err: image_uc.ErrNotEdited, want: http.StatusUnprocessableEntity},
		{name: "missing image", err: image_uc.ErrImageNotFound, want: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeUsecase{exportErr: tc.err}
			router := newTestRouter(uc, &fakeSessions{})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/p1/export?"+tc.query, nil))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body)
			}
			if tc.want != http.StatusOK {
				return
			}
			if uc.opts.Quality != tc.wantQuality {
				t.Errorf("quality = %d, want %d", uc.opts.Quality, tc.wantQuality)
			}
			if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "post_p1.jpg") {
				t.Errorf("content disposition = %q", cd)
			}
		})
	}
}

func TestQueueAndGetExport(t *testing.T) {
	uc := &fakeUsecase{}
	router := newTestRouter(uc, &fakeSessions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(`{"format":"png"}`)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("queue status = %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body)
	}
	var resp dto.ExportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "exp1" || resp.Total != 1 || resp.Status != string(domain.ExportPending) {
		t.Errorf("unexpected response %+v", resp)
	}
	if uc.opts.Format != domain.ExportPNG || uc.opts.Quality != 80 {
		t.Errorf("options = %+v", uc.opts)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports/exp1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown export status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestQueueExportErrors(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nothing edited", err: image_uc.ErrNothingToExport, want: http.StatusUnprocessableEntity},
		{name: "queue down", err: image_uc.ErrMessageQueueError, want: http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeUsecase{queueErr: tc.err}, &fakeSessions{})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(`{}`)))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestStreamImage(t *testing.T) {
	router := newTestRouter(&fakeUsecase{}, &fakeSessions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/p1", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "png" {
		t.Errorf("status = %d body = %q", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
}
