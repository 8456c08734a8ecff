package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sales-insight/internal/config"
	"sales-insight/internal/views"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	upload config.UploadConfig
	logger *slog.Logger
}

func NewPageHandlers(cfg *config.Config, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{upload: cfg.Upload, logger: logger}
}

func (h *PageHandlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if err := views.UploadPage(h.upload.MaxFileSize, h.upload.AllowedExtensions).Render(ctx, w); err != nil {
		h.logger.Error("render upload page", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}
