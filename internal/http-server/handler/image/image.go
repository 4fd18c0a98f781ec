package image

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"post-composer/internal/domain"
	"post-composer/internal/http-server/handler/image/dto"
	"post-composer/internal/http-server/response"
	image_uc "post-composer/internal/usecase/image"
	"post-composer/internal/usecase/processor/operations"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const (
	maxMemory = 32 << 20
	// multipart framing on top of the file itself
	formOverhead = 1 << 20
)

// Options are the upload and export defaults of the handler.
type Options struct {
	MaxUploadSize  int64
	DefaultQuality int
}

type ImageHandler struct {
	usecase        imageUsecase
	sessions       sessionDropper
	maxUploadSize  int64
	defaultQuality int
	validate       *validator.Validate
	logger         *zlog.Zerolog
}

func NewImageHandler(usecase imageUsecase, sessions sessionDropper, opts Options, logger *zlog.Zerolog) *ImageHandler {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = domain.DefaultMaxUploadSize
	}
	return &ImageHandler{
		usecase:        usecase,
		sessions:       sessions,
		maxUploadSize:  opts.MaxUploadSize,
		defaultQuality: operations.ClampQuality(opts.DefaultQuality),
		validate:       validator.New(),
		logger:         logger,
	}
}

func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+formOverhead)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge, h.tooLargeMessage(), nil)
			return
		}
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Warn().Err(err).Msg("File not found in request")
		h.respondError(w, http.StatusBadRequest, "File is required", nil)
		return
	}
	defer file.Close()

	photo, err := h.usecase.UploadImage(ctx, file, header.Filename, header.Size)
	if err != nil {
		h.handleUploadError(w, err, header.Filename)
		return
	}

	h.logger.Info().
		Str("image_id", photo.ID).
		Str("filename", photo.OriginalFilename).
		Str("size", humanize.Bytes(uint64(photo.OriginalSize))).
		Msg("Image uploaded successfully")

	h.respondJSON(w, http.StatusCreated, dto.NewPhotoResponse(*photo))
}

func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	photos, err := h.usecase.ListImages(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list images")
		h.respondError(w, http.StatusInternalServerError, "Failed to list images", err)
		return
	}

	resp := dto.ListResponse{Images: make([]dto.PhotoResponse, 0, len(photos)), Count: len(photos)}
	for _, p := range photos {
		resp.Images = append(resp.Images, dto.NewPhotoResponse(p))
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, false)
}

func (h *ImageHandler) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, true)
}

func (h *ImageHandler) stream(w http.ResponseWriter, r *http.Request, thumbnail bool) {
	id := chi.URLParam(r, "id")

	photo, reader, err := h.usecase.OpenOriginal(r.Context(), id, thumbnail)
	if err != nil {
		h.handleImageError(w, err, id, "Failed to get image")
		return
	}
	defer reader.Close()

	contentType := photo.MimeType
	if thumbnail {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", photo.OriginalFilename))
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error().
			Err(err).
			Str("image_id", id).
			Bool("thumbnail", thumbnail).
			Msg("Failed to stream image")
	}
}

func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.usecase.DeleteImage(r.Context(), id); err != nil {
		h.handleImageError(w, err, id, "Failed to delete image")
		return
	}
	if h.sessions != nil {
		h.sessions.Drop(id)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ImageHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	out, err := h.usecase.Preview(r.Context(), id)
	if err != nil {
		h.handleImageError(w, err, id, "Failed to render preview")
		return
	}

	response.Binary(w, h.logger, out.ContentType, "", out.Data)
}

func (h *ImageHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	q := dto.ExportQuery{Format: r.URL.Query().Get("format")}
	if raw := r.URL.Query().Get("quality"); raw != "" {
		quality, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Quality must be a number", nil)
			return
		}
		q.Quality = quality
	}
	if err := h.validate.Struct(q); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid export parameters", err)
		return
	}

	out, err := h.usecase.Export(r.Context(), id, domain.ExportOptions{
		Format:  domain.ExportFormat(q.Format),
		Quality: h.quality(q.Quality),
	})
	if err != nil {
		h.handleImageError(w, err, id, "Failed to export image")
		return
	}

	response.Binary(w, h.logger, out.ContentType, fmt.Sprintf("attachment; filename=%q", out.Filename), out.Data)
}

func (h *ImageHandler) QueueExport(w http.ResponseWriter, r *http.Request) {
	var req dto.QueueExportRequest
	if err := response.Decode(w, r, h.validate, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid export request", err)
		return
	}

	result, err := h.usecase.QueueExport(r.Context(), domain.ExportOptions{
		Format:  domain.ExportFormat(req.Format),
		Quality: h.quality(req.Quality),
	})
	if err != nil {
		switch {
		case errors.Is(err, image_uc.ErrNothingToExport):
			h.respondError(w, http.StatusUnprocessableEntity, "No edited images to export", nil)
		case errors.Is(err, image_uc.ErrMessageQueueError):
			h.logger.Error().Err(err).Msg("Failed to queue export")
			h.respondError(w, http.StatusServiceUnavailable, "Export queue unavailable", nil)
		default:
			h.logger.Error().Err(err).Msg("Failed to queue export")
			h.respondError(w, http.StatusInternalServerError, "Failed to queue export", err)
		}
		return
	}

	h.respondJSON(w, http.StatusAccepted, dto.NewExportResponse(result))
}

func (h *ImageHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.usecase.GetExport(r.Context(), id)
	if err != nil {
		if errors.Is(err, image_uc.ErrExportNotFound) {
			h.respondError(w, http.StatusNotFound, "Export not found", nil)
			return
		}
		h.logger.Error().Err(err).Str("export_id", id).Msg("Failed to get export")
		h.respondError(w, http.StatusInternalServerError, "Failed to get export", err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.NewExportResponse(result))
}

func (h *ImageHandler) quality(q int) int {
	if q == 0 {
		return h.defaultQuality
	}
	return operations.ClampQuality(q)
}

func (h *ImageHandler) tooLargeMessage() string {
	return fmt.Sprintf("File is too large (max %s)", humanize.IBytes(uint64(h.maxUploadSize)))
}

func (h *ImageHandler) handleUploadError(w http.ResponseWriter, err error, filename string) {
	switch {
	case errors.Is(err, image_uc.ErrInvalidFileFormat):
		h.logger.Warn().Str("filename", filename).Msg("Invalid file format")
		h.respondError(w, http.StatusBadRequest, "Unsupported file format. Allowed: jpeg, png, webp", nil)
	case errors.Is(err, image_uc.ErrFileTooLarge):
		h.logger.Warn().Str("filename", filename).Msg("File too large")
		h.respondError(w, http.StatusRequestEntityTooLarge, h.tooLargeMessage(), nil)
	case errors.Is(err, image_uc.ErrTooManyImages):
		h.respondError(w, http.StatusConflict, "Photo limit reached for this project", nil)
	default:
		h.logger.Error().Err(err).Str("filename", filename).Msg("Upload failed")
		h.respondError(w, http.StatusInternalServerError, "Failed to upload file", err)
	}
}

func (h *ImageHandler) handleImageError(w http.ResponseWriter, err error, imageID, message string) {
	switch {
	case errors.Is(err, image_uc.ErrImageNotFound):
		h.respondError(w, http.StatusNotFound, "Image not found", nil)
	case errors.Is(err, image_uc.ErrNotEdited):
		h.respondError(w, http.StatusUnprocessableEntity, "Image has no text or crop to export", nil)
	default:
		h.logger.Error().Err(err).Str("image_id", imageID).Msg(message)
		h.respondError(w, http.StatusInternalServerError, message, err)
	}
}

func (h *ImageHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	response.JSON(w, h.logger, status, data)
}

func (h *ImageHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	response.Error(w, h.logger, status, message, err)
}
