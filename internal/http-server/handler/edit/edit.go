package edit

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"post-composer/internal/domain"
	"post-composer/internal/http-server/handler/edit/dto"
	"post-composer/internal/http-server/response"
	"post-composer/internal/usecase/compositor"
	"post-composer/internal/usecase/compositor/filter"
	"post-composer/internal/usecase/editor"
	"post-composer/internal/usecase/editstate"
	image_uc "post-composer/internal/usecase/image"
	"post-composer/internal/usecase/processor/operations"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// EditHandler serves edit-state mutations, the interactive editor session
// and the editor view.
type EditHandler struct {
	photos   photoSource
	states   stateRegistry
	sessions sessionManager
	renderer viewRenderer
	validate *validator.Validate
	logger   *zlog.Zerolog
	newID    func() string
}

func NewEditHandler(photos photoSource, states stateRegistry, sessions sessionManager, renderer viewRenderer, logger *zlog.Zerolog) *EditHandler {
	return &EditHandler{
		photos:   photos,
		states:   states,
		sessions: sessions,
		renderer: renderer,
		validate: newValidator(),
		logger:   logger,
		newID:    func() string { return uuid.New().String() },
	}
}

// newValidator registers css_color, which accepts anything the compositor
// can paint. The empty string passes so partial updates can clear a style.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("css_color", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := compositor.ParseColor(s)
		return err == nil
	})
	return v
}

func (h *EditHandler) GetState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoID(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, h.states.Get(r.Context(), id))
}

func (h *EditHandler) PutState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoID(w, r)
	if !ok {
		return
	}

	var st domain.ImageEditState
	if err := response.Decode(w, r, h.validate, &st); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid edit state", err)
		return
	}
	if st.ImageID != "" && st.ImageID != id {
		h.respondError(w, http.StatusBadRequest, "Edit state belongs to another image", nil)
		return
	}
	st.ImageID = id

	if st.Filter.CSSFilter != "" {
		if _, err := filter.Parse(st.Filter.CSSFilter); err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid image filter", err)
			return
		}
	}

	next, err := h.states.Replace(r.Context(), st)
	if err != nil {
		h.handleStateError(w, err, id)
		return
	}
	h.respondJSON(w, http.StatusOK, next)
}

func (h *EditHandler) AddText(w http.ResponseWriter, r *http.Request) {
	var req dto.TextRequest
	h.mutate(w, r, &req, http.StatusCreated, func() editstate.Reducer {
		return editstate.AddText(req.Element(h.newID()))
	})
}

func (h *EditHandler) PatchText(w http.ResponseWriter, r *http.Request) {
	var req dto.TextPatchRequest
	h.mutate(w, r, &req, http.StatusOK, func() editstate.Reducer {
		return editstate.PatchText(chi.URLParam(r, "textId"), req.Patch())
	})
}

func (h *EditHandler) DeleteText(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, nil, http.StatusOK, func() editstate.Reducer {
		return editstate.RemoveText(chi.URLParam(r, "textId"))
	})
}

func (h *EditHandler) SetCrop(w http.ResponseWriter, r *http.Request) {
	var req dto.CropRequest
	h.mutate(w, r, &req, http.StatusOK, func() editstate.Reducer {
		return editstate.SetCrop(domain.CropSettings{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height, AspectRatio: 1})
	})
}

func (h *EditHandler) ClearCrop(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, nil, http.StatusOK, editstate.ClearCrop)
}

func (h *EditHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req dto.FilterRequest
	h.mutate(w, r, &req, http.StatusOK, func() editstate.Reducer {
		f := domain.ImageFilter{ID: req.ID, Name: req.Name, CSSFilter: req.CSSFilter}
		if preset, ok := filter.Preset(req.ID); ok && req.CSSFilter == "" {
			f = preset
		}
		return editstate.SetFilter(f)
	})
}

func (h *EditHandler) AddDecoration(w http.ResponseWriter, r *http.Request) {
	var req dto.DecorationRequest
	h.mutate(w, r, &req, http.StatusCreated, func() editstate.Reducer {
		return editstate.AddDecoration(req.Element(h.newID()))
	})
}

func (h *EditHandler) DeleteDecoration(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, nil, http.StatusOK, func() editstate.Reducer {
		return editstate.RemoveDecoration(chi.URLParam(r, "decorationId"))
	})
}

func (h *EditHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req dto.TemplateRequest
	h.mutate(w, r, &req, http.StatusOK, func() editstate.Reducer {
		t, ok := editstate.FindTemplate(req.TemplateID)
		if !ok {
			return func(st domain.ImageEditState) (domain.ImageEditState, error) {
				return st, editstate.ErrTemplateNotFound
			}
		}
		return editstate.ApplyTemplate(t, req.Title, req.Subtitle, h.newID)
	})
}

// Pointer feeds one pointer event into the image's editor session.
func (h *EditHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoID(w, r)
	if !ok {
		return
	}

	var req dto.PointerRequest
	if err := response.Decode(w, r, h.validate, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid pointer event", err)
		return
	}

	snap, err := h.sessions.Session(id).Handle(r.Context(), editor.PointerEvent{
		Kind: editor.EventKind(req.Type),
		X:    req.X,
		Y:    req.Y,
	})
	if err != nil {
		h.handleStateError(w, err, id)
		return
	}
	h.respondSession(r.Context(), w, id, snap)
}

func (h *EditHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoID(w, r)
	if !ok {
		return
	}

	var req dto.SelectRequest
	if err := response.Decode(w, r, h.validate, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid selection", err)
		return
	}
	h.respondSession(r.Context(), w, id, h.sessions.Session(id).Select(req.TextID))
}

func (h *EditHandler) CropMode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoID(w, r)
	if !ok {
		return
	}

	var req dto.CropModeRequest
	if err := response.Decode(w, r, h.validate, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid crop mode request", err)
		return
	}

	s := h.sessions.Session(id)
	var snap editor.Snapshot
	if req.Enabled == nil {
		snap = s.ToggleCropMode()
	} else {
		snap = s.SetCropMode(*req.Enabled)
	}
	h.respondSession(r.Context(), w, id, snap)
}

func (h *EditHandler) Zoom(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoID(w, r)
	if !ok {
		return
	}

	var req dto.ZoomRequest
	if err := response.Decode(w, r, h.validate, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid zoom request", err)
		return
	}

	s := h.sessions.Session(id)
	var (
		snap editor.Snapshot
		err  error
	)
	switch {
	case req.Zoom != nil:
		snap, err = s.SetZoom(*req.Zoom)
	case req.Direction != "":
		snap, err = s.StepZoom(req.Direction == "in")
	default:
		h.respondError(w, http.StatusBadRequest, "Either direction or zoom is required", nil)
		return
	}
	if err != nil {
		h.handleStateError(w, err, id)
		return
	}
	h.respondSession(r.Context(), w, id, snap)
}

// ApplyCrop commits the crop gesture's viewport as the photo's crop.
func (h *EditHandler) ApplyCrop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	photo, err := h.photos.GetImage(r.Context(), id)
	if err != nil {
		h.handlePhotoError(w, err, id)
		return
	}

	c, err := h.sessions.Session(id).ApplyCrop(r.Context(), float64(photo.Width), float64(photo.Height))
	if err != nil {
		h.handleStateError(w, err, id)
		return
	}

	h.logger.Info().
		Str("image_id", id).
		Float64("x", c.X).
		Float64("y", c.Y).
		Float64("size", c.Width).
		Msg("Crop applied")

	h.respondJSON(w, http.StatusOK, dto.CropResponse{Crop: c, State: h.states.Get(r.Context(), id)})
}

// EditorView renders the editor canvas of the image's session as PNG.
func (h *EditHandler) EditorView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s := h.sessions.Session(id)
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Size must be a number", nil)
			return
		}
		if err := s.SetCanvasSize(float64(size)); err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid editor size", err)
			return
		}
	}

	_, src, err := h.photos.Source(r.Context(), id)
	if err != nil {
		h.handlePhotoError(w, err, id)
		return
	}

	img, err := h.renderer.Render(r.Context(), s.Snapshot(), src, h.states.Get(r.Context(), id))
	if err != nil {
		h.logger.Error().Err(err).Str("image_id", id).Msg("Failed to render editor view")
		h.respondError(w, http.StatusInternalServerError, "Failed to render editor view", err)
		return
	}

	buf, contentType, err := operations.Encode(img, domain.ExportPNG, 0)
	if err != nil {
		h.logger.Error().Err(err).Str("image_id", id).Msg("Failed to encode editor view")
		h.respondError(w, http.StatusInternalServerError, "Failed to encode editor view", err)
		return
	}
	response.Binary(w, h.logger, contentType, "", buf.Bytes())
}

func (h *EditHandler) Filters(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, filter.Presets)
}

func (h *EditHandler) Templates(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, editstate.Templates)
}

// mutate decodes req (when non-nil), builds the reducer and applies it to
// the photo's edit state.
func (h *EditHandler) mutate(w http.ResponseWriter, r *http.Request, req any, status int, build func() editstate.Reducer) {
	id, ok := h.photoID(w, r)
	if !ok {
		return
	}

	if req != nil {
		if err := response.Decode(w, r, h.validate, req); err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid request", err)
			return
		}
	}

	next, err := h.states.Update(r.Context(), id, build())
	if err != nil {
		h.handleStateError(w, err, id)
		return
	}

	h.logger.Debug().Str("image_id", id).Str("path", r.URL.Path).Msg("Edit state updated")
	h.respondJSON(w, status, next)
}

// photoID resolves the {id} route parameter to an existing photo.
func (h *EditHandler) photoID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := h.photos.GetImage(r.Context(), id); err != nil {
		h.handlePhotoError(w, err, id)
		return "", false
	}
	return id, true
}

func (h *EditHandler) respondSession(ctx context.Context, w http.ResponseWriter, id string, snap editor.Snapshot) {
	st := h.states.Get(ctx, id)
	h.respondJSON(w, http.StatusOK, dto.SessionResponse{Session: snap, State: &st})
}

func (h *EditHandler) handlePhotoError(w http.ResponseWriter, err error, imageID string) {
	if errors.Is(err, image_uc.ErrImageNotFound) {
		h.respondError(w, http.StatusNotFound, "Image not found", nil)
		return
	}
	h.logger.Error().Err(err).Str("image_id", imageID).Msg("Failed to load image")
	h.respondError(w, http.StatusInternalServerError, "Failed to load image", err)
}

func (h *EditHandler) handleStateError(w http.ResponseWriter, err error, imageID string) {
	switch {
	case errors.Is(err, editstate.ErrTextNotFound),
		errors.Is(err, editstate.ErrDecorationNotFound),
		errors.Is(err, editstate.ErrTemplateNotFound):
		h.respondError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, editstate.ErrInvalidCrop),
		errors.Is(err, editstate.ErrInvalidFilter),
		errors.Is(err, editstate.ErrImageMismatch),
		errors.Is(err, editor.ErrUnknownEvent),
		errors.Is(err, editor.ErrInvalidCanvas):
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, editor.ErrNotInCropMode):
		h.respondError(w, http.StatusConflict, "Crop mode is not active", nil)
	default:
		h.logger.Error().Err(err).Str("image_id", imageID).Msg("Failed to update edit state")
		h.respondError(w, http.StatusInternalServerError, "Failed to update edit state", err)
	}
}

func (h *EditHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	response.JSON(w, h.logger, status, data)
}

func (h *EditHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	response.Error(w, h.logger, status, message, err)
}
