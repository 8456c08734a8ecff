package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-insight/internal/config"
	"sales-insight/internal/errors"
	"sales-insight/internal/services"
	"sales-insight/internal/views"
)

type SSEHandlers struct {
	sales  *services.Sales
	upload config.UploadConfig
	logger *slog.Logger
}

func NewSSEHandlers(sales *services.Sales, cfg *config.Config, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		sales:  sales,
		upload: cfg.Upload,
		logger: logger,
	}
}

type reportSignals struct {
	Analyzing    bool    `json:"analyzing"`
	Valid        bool    `json:"valid"`
	QualityScore float64 `json:"qualityScore"`
}

// HandleAnalyze runs the full pipeline on the uploaded file and patches the
// rendered report into #report. Upload and validation failures are rendered
// in place rather than returned as HTTP errors.
func (h *SSEHandlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	up, uploadErr := readUpload(r, h.upload)

	sse := datastar.NewSSE(w, r)

	if uploadErr != nil {
		h.logger.WarnContext(r.Context(), "upload rejected", "error", uploadErr)
		h.patch(r.Context(), sse, views.ReportError(userMessage(uploadErr)))
		return
	}

	result, err := h.sales.Analyze(r.Context(), up.dataset)
	if err != nil && !errors.IsValidation(err) {
		h.logger.ErrorContext(r.Context(), "analysis failed", "error", err)
		h.patch(r.Context(), sse, views.ReportError("Error analyzing file"))
		return
	}

	if !h.patch(r.Context(), sse, views.Report(up.filename, result)) {
		return
	}

	signals, err := json.Marshal(reportSignals{
		Valid:        result.Validation.Valid,
		QualityScore: result.Validation.QualityScore,
	})
	if err != nil {
		h.logger.Error("marshal report signals", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) patch(ctx context.Context, sse *datastar.ServerSentEventGenerator, c templ.Component) bool {
	var buf strings.Builder
	if err := c.Render(ctx, &buf); err != nil {
		h.logger.Error("render report", "error", err)
		return false
	}
	if err := sse.PatchElements(buf.String()); err != nil {
		h.logger.Warn("patch elements", "error", err)
		return false
	}
	return true
}

func userMessage(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if appErr.StatusCode < 500 && appErr.Cause != nil {
			return appErr.Message + ": " + appErr.Cause.Error()
		}
		return appErr.Message
	}
	return "Error reading file"
}
