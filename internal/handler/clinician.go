package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mindsync/server/internal/security/middleware"
	"github.com/mindsync/server/internal/service"
)

// ClinicianHandler serves the clinician-facing patient views. Every
// patient-scoped route passes the patient-access gate before touching data.
type ClinicianHandler struct {
	assignmentService *service.AssignmentService
	moodService       *service.MoodService
	noteService       *service.NoteService
	exportService     *service.ExportService
	logger            *slog.Logger
}

// NewClinicianHandler creates a new clinician handler
func NewClinicianHandler(
	assignmentService *service.AssignmentService,
	moodService *service.MoodService,
	noteService *service.NoteService,
	exportService *service.ExportService,
	logger *slog.Logger,
) *ClinicianHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ClinicianHandler{
		assignmentService: assignmentService,
		moodService:       moodService,
		noteService:       noteService,
		exportService:     exportService,
		logger:            logger,
	}
}

// Patients handles GET /api/clinician/patients: the caller's assigned
// patients, or every patient for admins.
func (h *ClinicianHandler) Patients(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	patients, err := h.assignmentService.ListPatientsFor(identity)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponses(patients))
}

// AssignablePool handles GET /api/clinician/users/all: active patients the
// caller may add to their own care list.
func (h *ClinicianHandler) AssignablePool(w http.ResponseWriter, r *http.Request) {
	patients, err := h.assignmentService.ListAssignablePool()
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponses(patients))
}

// AssignSelf handles POST /api/clinician/users/{patientId}/assign-me
func (h *ClinicianHandler) AssignSelf(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	patientID := r.PathValue("patientId")

	if err := h.assignmentService.SelfAssign(identity, patientID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "patient assigned"})
}

// UnassignSelf handles POST /api/clinician/users/{patientId}/unassign-me
func (h *ClinicianHandler) UnassignSelf(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	patientID := r.PathValue("patientId")

	if err := h.assignmentService.SelfUnassign(identity, patientID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "patient unassigned"})
}

// PatientMoods handles GET /api/clinician/{patientId}/moods: the patient's
// full mood history, newest first.
func (h *ClinicianHandler) PatientMoods(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	patientID := r.PathValue("patientId")

	if err := h.assignmentService.AuthorizePatientAccess(identity, patientID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	entries, err := h.moodService.ListAllEntries(patientID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toMoodEntryResponses(entries))
}

// PatientNotes handles GET /api/clinician/{patientId}/notes
func (h *ClinicianHandler) PatientNotes(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	patientID := r.PathValue("patientId")

	if err := h.assignmentService.AuthorizePatientAccess(identity, patientID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	notes, err := h.noteService.ListNotes(patientID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponses(notes))
}

type addNoteRequest struct {
	Note string `json:"note"`
}

// AddPatientNote handles POST /api/clinician/{patientId}/notes
func (h *ClinicianHandler) AddPatientNote(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	patientID := r.PathValue("patientId")

	if err := h.assignmentService.AuthorizePatientAccess(identity, patientID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var req addNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	note, err := h.noteService.AddNote(identity.ID, patientID, req.Note)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNoteResponse(note))
}

type patientBundleResponse struct {
	Patient    UserResponse        `json:"patient"`
	Moods      []MoodEntryResponse `json:"moods"`
	Notes      []NoteResponse      `json:"notes"`
	ExportedAt string              `json:"exportedAt"`
}

// ExportPatient handles GET /api/clinician/{patientId}/export: a JSON bundle
// of the patient's identity, moods, and notes, served as a download.
func (h *ClinicianHandler) ExportPatient(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	patientID := r.PathValue("patientId")

	if err := h.assignmentService.AuthorizePatientAccess(identity, patientID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	bundle, err := h.exportService.ExportPatientBundle(patientID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	filename := fmt.Sprintf("patient-%s.json", bundle.Patient.ID)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, patientBundleResponse{
		Patient:    toUserResponse(bundle.Patient),
		Moods:      toMoodEntryResponses(bundle.Moods),
		Notes:      toNoteResponses(bundle.Notes),
		ExportedAt: bundle.ExportedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}
