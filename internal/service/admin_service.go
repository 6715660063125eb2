package service

import (
	"log/slog"
	"time"

	"github.com/mindsync/server/internal/domain"
	"github.com/mindsync/server/internal/security/audit"
)

// AdminService handles account administration. Every state change writes a
// best-effort audit entry after the mutation; the mutation is authoritative.
type AdminService struct {
	userRepo   domain.UserRepository
	auditRepo  domain.AuditLogRepository
	assignment *AssignmentService
	recorder   *audit.Recorder
	logger     *slog.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	userRepo domain.UserRepository,
	auditRepo domain.AuditLogRepository,
	assignment *AssignmentService,
	recorder *audit.Recorder,
	logger *slog.Logger,
) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AdminService{
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		assignment: assignment,
		recorder:   recorder,
		logger:     logger,
	}
}

// ListUsers returns every account, newest first
func (s *AdminService) ListUsers() ([]*domain.User, error) {
	return s.userRepo.List()
}

// ToggleActive flips a user's active flag. An admin may not disable their
// own account.
func (s *AdminService) ToggleActive(admin *domain.Identity, targetID string) (*domain.User, error) {
	if admin.ID == targetID {
		return nil, domain.Validation("you cannot disable your own account")
	}

	user, err := s.userRepo.GetByID(targetID)
	if err != nil {
		return nil, err
	}

	user.IsActive = !user.IsActive
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	action := domain.AuditDisableUser
	if user.IsActive {
		action = domain.AuditEnableUser
	}
	s.recorder.Record(action, admin.ID, user.ID)

	return user, nil
}

// ChangeRole sets a user's role. Only values from the closed role set are
// accepted. Self-demotion is deliberately not guarded; only self-disable is.
func (s *AdminService) ChangeRole(admin *domain.Identity, targetID, newRole string) (*domain.User, error) {
	role, ok := domain.ParseRole(newRole)
	if !ok {
		return nil, domain.Validation("invalid role")
	}

	user, err := s.userRepo.GetByID(targetID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.recorder.Record(domain.AuditChangeRole, admin.ID, user.ID)

	return user, nil
}

// AssignClinician adds a clinician -> patient edge on behalf of an admin
func (s *AdminService) AssignClinician(admin *domain.Identity, clinicianID, patientID string) error {
	if err := s.assignment.Assign(clinicianID, patientID); err != nil {
		return err
	}
	s.recorder.Record(domain.AuditAssignClinician, admin.ID, patientID)
	return nil
}

// UnassignClinician removes a clinician -> patient edge on behalf of an admin
func (s *AdminService) UnassignClinician(admin *domain.Identity, clinicianID, patientID string) error {
	if err := s.assignment.Unassign(clinicianID, patientID); err != nil {
		return err
	}
	s.recorder.Record(domain.AuditUnassignClinician, admin.ID, patientID)
	return nil
}

// ListAuditLogs returns the newest audit entries, capped at limit
func (s *AdminService) ListAuditLogs(limit int) ([]*domain.AuditLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	return s.auditRepo.ListRecent(limit)
}

// AuditExport is the per-user audit download bundle
type AuditExport struct {
	ExportedAt time.Time
	User       *domain.User
	AsTarget   []*domain.AuditLogEntry
	AsAdmin    []*domain.AuditLogEntry
}

// ExportUserAudit gathers a user's audit trail, both as target and as
// acting admin
func (s *AdminService) ExportUserAudit(targetID string) (*AuditExport, error) {
	user, err := s.userRepo.GetByID(targetID)
	if err != nil {
		return nil, err
	}

	asTarget, err := s.auditRepo.ListByTarget(targetID)
	if err != nil {
		return nil, err
	}

	asAdmin, err := s.auditRepo.ListByAdmin(targetID)
	if err != nil {
		return nil, err
	}

	return &AuditExport{
		ExportedAt: time.Now().UTC(),
		User:       user,
		AsTarget:   asTarget,
		AsAdmin:    asAdmin,
	}, nil
}
