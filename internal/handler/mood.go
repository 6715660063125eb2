package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mindsync/server/internal/domain"
	"github.com/mindsync/server/internal/security/middleware"
	"github.com/mindsync/server/internal/service"
)

// MoodHandler handles the caller's own mood check-ins and history
type MoodHandler struct {
	moodService *service.MoodService
	flagService *service.FlagService
	logger      *slog.Logger
}

// NewMoodHandler creates a new mood handler
func NewMoodHandler(moodService *service.MoodService, flagService *service.FlagService, logger *slog.Logger) *MoodHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &MoodHandler{
		moodService: moodService,
		flagService: flagService,
		logger:      logger,
	}
}

type createMoodRequest struct {
	Rating int      `json:"rating"`
	Tags   []string `json:"tags"`
	Note   string   `json:"note"`
}

// Create handles POST /api/moods. Gated by the mood check-in feature flag.
func (h *MoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	if !h.flagService.IsEnabled(domain.FlagMoodCheckIn) {
		writeError(w, http.StatusForbidden, "mood check-ins are currently disabled")
		return
	}

	var req createMoodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	entry, err := h.moodService.RecordEntry(identity.ID, req.Rating, req.Tags, req.Note)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMoodEntryResponse(entry))
}

// List handles GET /api/moods with an optional days window (1-365, default 7)
func (h *MoodHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	days, err := daysParam(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	entries, err := h.moodService.ListEntries(identity.ID, days)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toMoodEntryResponses(entries))
}

// History handles GET /api/moods/history: contiguous daily averages over the
// window, with null gaps for empty days.
func (h *MoodHandler) History(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	days, err := daysParam(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	buckets, err := h.moodService.AggregateDaily(identity.ID, days)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, buckets)
}

// daysParam parses the optional ?days= query value. Absent means 0, which
// the service resolves to its default window.
func daysParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation("days must be an integer")
	}
	if days == 0 {
		return 0, domain.Validation("days must be between 1 and 365")
	}
	return days, nil
}
