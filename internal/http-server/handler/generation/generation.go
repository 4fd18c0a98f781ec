package generation

import (
	"errors"
	"net/http"

	"post-composer/internal/client/openai"
	"post-composer/internal/http-server/handler/generation/dto"
	"post-composer/internal/http-server/response"
	"post-composer/internal/usecase/generation"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

type GenerationHandler struct {
	generator generator
	validate  *validator.Validate
	logger    *zlog.Zerolog
}

func NewGenerationHandler(g generator, logger *zlog.Zerolog) *GenerationHandler {
	return &GenerationHandler{
		generator: g,
		validate:  validator.New(),
		logger:    logger,
	}
}

func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateRequest
	if err := response.Decode(w, r, h.validate, &req); err != nil {
		response.Error(w, h.logger, http.StatusBadRequest, "Invalid generation request", err)
		return
	}

	result, err := h.generator.Generate(r.Context(), generation.Request{
		PropertyText: req.PropertyText,
		APIKey:       req.APIKey,
		Settings:     req.Settings.PromptSettings(),
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, dto.GenerateResponse{
		PRTexts:     result.Texts,
		PostContent: result.PostContent,
		Usage:       result.Usage,
	})
}

func (h *GenerationHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, generation.ErrInvalidAPIKey):
		response.Error(w, h.logger, http.StatusBadRequest, "API key must look like sk- followed by 48 letters or digits", nil)
	case errors.Is(err, generation.ErrEmptyPropertyText):
		response.Error(w, h.logger, http.StatusBadRequest, "Property description is required", nil)
	case errors.Is(err, openai.ErrUnauthorized):
		response.Error(w, h.logger, http.StatusUnauthorized, "The API key was rejected", nil)
	case errors.Is(err, openai.ErrRateLimited):
		response.Error(w, h.logger, http.StatusTooManyRequests, "Rate limit reached, try again later", nil)
	case errors.Is(err, openai.ErrQuotaExceeded):
		response.Error(w, h.logger, http.StatusPaymentRequired, "API quota exceeded", nil)
	case errors.Is(err, openai.ErrUpstreamUnavailable):
		response.Error(w, h.logger, http.StatusServiceUnavailable, "Text generation is unavailable", nil)
	case errors.Is(err, generation.ErrMalformedGenerationResponse), errors.Is(err, openai.ErrEmptyReply):
		response.Error(w, h.logger, http.StatusBadGateway, "Text generation returned an unusable reply", nil)
	default:
		h.logger.Error().Err(err).Msg("Generation failed")
		response.Error(w, h.logger, http.StatusInternalServerError, "Failed to generate texts", err)
	}
}
