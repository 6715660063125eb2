package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mindsync/server/internal/service"
)

// FlagHandler serves the feature flag registry
type FlagHandler struct {
	flagService *service.FlagService
	logger      *slog.Logger
}

// NewFlagHandler creates a new feature flag handler
func NewFlagHandler(flagService *service.FlagService, logger *slog.Logger) *FlagHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &FlagHandler{
		flagService: flagService,
		logger:      logger,
	}
}

// List handles GET /api/flags
func (h *FlagHandler) List(w http.ResponseWriter, r *http.Request) {
	flags, err := h.flagService.List()
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, flags)
}

type setFlagRequest struct {
	Enabled *bool `json:"enabled"`
}

// Set handles PATCH /api/flags/{key}. The body must carry a literal JSON
// boolean; truthy strings and numbers are rejected.
func (h *FlagHandler) Set(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var req setFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled must be boolean")
		return
	}

	flag, err := h.flagService.Set(key, *req.Enabled)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, flag)
}
