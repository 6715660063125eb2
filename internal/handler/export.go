package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mindsync/server/internal/domain"
	"github.com/mindsync/server/internal/security/middleware"
	"github.com/mindsync/server/internal/service"
)

// ExportHandler serves the caller's own data export
type ExportHandler struct {
	exportService *service.ExportService
	flagService   *service.FlagService
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *service.ExportService, flagService *service.FlagService, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExportHandler{
		exportService: exportService,
		flagService:   flagService,
		logger:        logger,
	}
}

// Download handles GET /api/export?format=csv|pdf&startDate=...&endDate=...
// Gated by the export feature flag.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	if !h.flagService.IsEnabled(domain.FlagExport) {
		writeError(w, http.StatusForbidden, "exports are currently disabled")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	start, err := dateParam(r, "startDate")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	end, err := dateParam(r, "endDate")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	file, err := h.exportService.ExportMoodData(identity.ID, format, start, end)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}

// dateParam parses an optional YYYY-MM-DD query value
func dateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, domain.Validationf("%s must be a YYYY-MM-DD date", name)
	}
	return &t, nil
}
