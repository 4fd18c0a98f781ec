package router

import (
	"net/http"

	"post-composer/internal/http-server/handler/edit"
	"post-composer/internal/http-server/handler/generation"
	"post-composer/internal/http-server/handler/image"
	"post-composer/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	ImageHandler      *image.ImageHandler
	EditHandler       *edit.EditHandler
	GenerationHandler *generation.GenerationHandler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/images", func(r chi.Router) {
			r.Get("/", h.ImageHandler.ListImages)
			r.Post("/upload", h.ImageHandler.UploadImage)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.ImageHandler.GetImage)
				r.Delete("/", h.ImageHandler.DeleteImage)
				r.Get("/thumbnail", h.ImageHandler.GetThumbnail)
				r.Get("/preview", h.ImageHandler.Preview)
				r.Get("/export", h.ImageHandler.Export)

				r.Get("/edit", h.EditHandler.GetState)
				r.Put("/edit", h.EditHandler.PutState)
				r.Post("/texts", h.EditHandler.AddText)
				r.Patch("/texts/{textId}", h.EditHandler.PatchText)
				r.Delete("/texts/{textId}", h.EditHandler.DeleteText)
				r.Put("/crop", h.EditHandler.SetCrop)
				r.Delete("/crop", h.EditHandler.ClearCrop)
				r.Put("/filter", h.EditHandler.SetFilter)
				r.Post("/decorations", h.EditHandler.AddDecoration)
				r.Delete("/decorations/{decorationId}", h.EditHandler.DeleteDecoration)
				r.Post("/template", h.EditHandler.ApplyTemplate)

				r.Post("/pointer", h.EditHandler.Pointer)
				r.Post("/select", h.EditHandler.Select)
				r.Post("/crop-mode", h.EditHandler.CropMode)
				r.Post("/zoom", h.EditHandler.Zoom)
				r.Post("/crop-apply", h.EditHandler.ApplyCrop)
				r.Get("/editor", h.EditHandler.EditorView)
			})
		})

		r.Route("/exports", func(r chi.Router) {
			r.Post("/", h.ImageHandler.QueueExport)
			r.Get("/{id}", h.ImageHandler.GetExport)
		})

		r.Post("/generate", h.GenerationHandler.Generate)
		r.Get("/filters", h.EditHandler.Filters)
		r.Get("/templates", h.EditHandler.Templates)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
