package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mindsync/server/internal/domain"
)

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps a service error category to an HTTP status. The
// category's message is caller-facing; anything uncategorized is a 500 with
// a generic body so internals never leak.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error("request failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validation("invalid request body")
	}
	return nil
}

// UserResponse is the public shape of an account. The password hash never
// crosses this boundary.
type UserResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// MoodEntryResponse is the public shape of a mood check-in
type MoodEntryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Tags      []string  `json:"tags"`
	Note      string    `json:"note"`
	EntryDate string    `json:"entryDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toMoodEntryResponse(e *domain.MoodEntry) MoodEntryResponse {
	return MoodEntryResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		Rating:    e.Rating,
		Tags:      e.Tags,
		Note:      e.Note,
		EntryDate: e.EntryDate.Format("2006-01-02"),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toMoodEntryResponses(entries []*domain.MoodEntry) []MoodEntryResponse {
	out := make([]MoodEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toMoodEntryResponse(e))
	}
	return out
}

// NoteResponse is the public shape of a clinician note
type NoteResponse struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patientId"`
	ClinicianID    string    `json:"clinicianId"`
	Note           string    `json:"note"`
	ClinicianName  string    `json:"clinicianName,omitempty"`
	ClinicianEmail string    `json:"clinicianEmail,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toNoteResponse(n *domain.ClinicianNote) NoteResponse {
	return NoteResponse{
		ID:             n.ID,
		PatientID:      n.PatientID,
		ClinicianID:    n.ClinicianID,
		Note:           n.Note,
		ClinicianName:  n.ClinicianName,
		ClinicianEmail: n.ClinicianEmail,
		CreatedAt:      n.CreatedAt,
	}
}

func toNoteResponses(notes []*domain.ClinicianNote) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	return out
}

// AuditLogResponse is the public shape of an audit entry, annotated with the
// acting admin and target account when they still exist
type AuditLogResponse struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	AdminID      string    `json:"adminId"`
	TargetUserID string    `json:"targetUserId,omitempty"`
	AdminName    string    `json:"adminName,omitempty"`
	AdminEmail   string    `json:"adminEmail,omitempty"`
	TargetName   string    `json:"targetName,omitempty"`
	TargetEmail  string    `json:"targetEmail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toAuditLogResponse(e *domain.AuditLogEntry) AuditLogResponse {
	return AuditLogResponse{
		ID:           e.ID,
		Action:       e.Action,
		AdminID:      e.AdminID,
		TargetUserID: e.TargetUserID,
		AdminName:    e.AdminName,
		AdminEmail:   e.AdminEmail,
		TargetName:   e.TargetName,
		TargetEmail:  e.TargetEmail,
		CreatedAt:    e.CreatedAt,
	}
}

func toAuditLogResponses(entries []*domain.AuditLogEntry) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditLogResponse(e))
	}
	return out
}
