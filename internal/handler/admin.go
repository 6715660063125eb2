package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mindsync/server/internal/security/middleware"
	"github.com/mindsync/server/internal/service"
)

// AdminHandler serves account administration and the audit trail
type AdminHandler struct {
	adminService *service.AdminService
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers()
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponses(users))
}

// ToggleActive handles PATCH /api/admin/users/{id}/toggle
func (h *AdminHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	targetID := r.PathValue("id")

	user, err := h.adminService.ToggleActive(identity, targetID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeRole handles PATCH /api/admin/users/{id}/role
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	targetID := r.PathValue("id")

	var req changeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	user, err := h.adminService.ChangeRole(identity, targetID, req.Role)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type assignClinicianRequest struct {
	ClinicianID string `json:"clinicianId"`
}

// AssignClinician handles POST /api/admin/users/{patientId}/assign-clinician
func (h *AdminHandler) AssignClinician(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	patientID := r.PathValue("patientId")

	var req assignClinicianRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := h.adminService.AssignClinician(identity, req.ClinicianID, patientID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "clinician assigned"})
}

// UnassignClinician handles POST /api/admin/users/{patientId}/unassign-clinician
func (h *AdminHandler) UnassignClinician(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	patientID := r.PathValue("patientId")

	var req assignClinicianRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := h.adminService.UnassignClinician(identity, req.ClinicianID, patientID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "clinician unassigned"})
}

// AuditLogs handles GET /api/admin/logs with an optional limit (max 200)
func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	entries, err := h.adminService.ListAuditLogs(limit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuditLogResponses(entries))
}

type auditExportLogs struct {
	AsTarget []AuditLogResponse `json:"asTarget"`
	AsAdmin  []AuditLogResponse `json:"asAdmin"`
}

type auditExportResponse struct {
	ExportedAt time.Time       `json:"exportedAt"`
	User       UserResponse    `json:"user"`
	Logs       auditExportLogs `json:"logs"`
}

// AuditExport handles GET /api/admin/users/{id}/audit-export: a user's full
// audit trail as a JSON download.
func (h *AdminHandler) AuditExport(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")

	bundle, err := h.adminService.ExportUserAudit(targetID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	filename := fmt.Sprintf("audit-%s.json", bundle.User.Email)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, auditExportResponse{
		ExportedAt: bundle.ExportedAt,
		User:       toUserResponse(bundle.User),
		Logs: auditExportLogs{
			AsTarget: toAuditLogResponses(bundle.AsTarget),
			AsAdmin:  toAuditLogResponses(bundle.AsAdmin),
		},
	})
}
