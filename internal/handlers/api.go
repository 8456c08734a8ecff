package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"sales-insight/internal/config"
	"sales-insight/internal/errors"
	"sales-insight/internal/models"
	"sales-insight/internal/observability"
	"sales-insight/internal/services"
)

var noStore = map[string]string{"Cache-Control": "no-store"}

type APIHandlers struct {
	sales   *services.Sales
	upload  config.UploadConfig
	version string
	logger  *slog.Logger
}

func NewAPIHandlers(sales *services.Sales, cfg *config.Config, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		sales:   sales,
		upload:  cfg.Upload,
		version: cfg.App.Version,
		logger:  logger,
	}
}

type ValidateResponse struct {
	Filename   string                   `json:"filename"`
	Validation *models.ValidationReport `json:"validation"`
	Timestamp  string                   `json:"timestamp"`
}

type AnalyzeResponse struct {
	Filename   string                   `json:"filename"`
	Validation *models.ValidationReport `json:"validation"`
	Analytics  *models.AnalyticsReport  `json:"analytics"`
	Timestamp  string                   `json:"timestamp"`
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   h.version,
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.sales.Stats(), noStore)
}

func (h *APIHandlers) HandleQuickStats(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "quick stats requested", "filename", up.filename)
	errors.WriteSuccessWithHeaders(w, h.sales.QuickStats(up.dataset, up.filename, up.size), noStore)
}

// HandleValidate always answers 200 once the upload decodes; an invalid
// dataset is reported inside the payload.
func (h *APIHandlers) HandleValidate(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "validation requested", "filename", up.filename)
	report := h.sales.Validate(r.Context(), up.dataset)

	errors.WriteSuccessWithHeaders(w, ValidateResponse{
		Filename:   up.filename,
		Validation: report,
		Timestamp:  time.Now().Format(time.RFC3339),
	}, noStore)
}

// HandleAnalyze answers 400 with the validation report attached when the
// dataset fails validation.
func (h *APIHandlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "analysis requested", "filename", up.filename)
	result, err := h.sales.Analyze(r.Context(), up.dataset)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, AnalyzeResponse{
		Filename:   up.filename,
		Validation: result.Validation,
		Analytics:  result.Analytics,
		Timestamp:  time.Now().Format(time.RFC3339),
	}, noStore)
}

func (h *APIHandlers) readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	up, err := readUpload(r, h.upload)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return nil, false
	}
	return up, true
}
