package service

import (
	"log/slog"

	"github.com/mindsync/server/internal/domain"
)

// AssignmentService maintains the clinician -> patient edges and answers
// patient-access questions for the authorization gate.
type AssignmentService struct {
	userRepo   domain.UserRepository
	assignRepo domain.AssignmentRepository
	logger     *slog.Logger
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	userRepo domain.UserRepository,
	assignRepo domain.AssignmentRepository,
	logger *slog.Logger,
) *AssignmentService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AssignmentService{
		userRepo:   userRepo,
		assignRepo: assignRepo,
		logger:     logger,
	}
}

// Assign adds an edge after validating both endpoints. Adding an existing
// edge is a no-op.
func (s *AssignmentService) Assign(clinicianID, patientID string) error {
	patient, err := s.userRepo.GetByID(patientID)
	if err != nil {
		return domain.NotFound("patient not found")
	}
	if patient.Role != domain.RolePatient {
		return domain.Validation("selected user is not a patient")
	}

	clinician, err := s.userRepo.GetByID(clinicianID)
	if err != nil {
		return domain.NotFound("clinician not found")
	}
	if !clinician.Role.IsClinical() {
		return domain.Validation("selected user is not a clinician")
	}

	if err := s.assignRepo.Add(clinicianID, patientID); err != nil {
		return err
	}

	s.logger.Info("clinician assigned",
		slog.String("clinician_id", clinicianID),
		slog.String("patient_id", patientID),
	)
	return nil
}

// Unassign removes an edge. Removing an absent edge succeeds.
func (s *AssignmentService) Unassign(clinicianID, patientID string) error {
	if _, err := s.userRepo.GetByID(patientID); err != nil {
		return domain.NotFound("patient not found")
	}

	if err := s.assignRepo.Remove(clinicianID, patientID); err != nil {
		return err
	}

	s.logger.Info("clinician unassigned",
		slog.String("clinician_id", clinicianID),
		slog.String("patient_id", patientID),
	)
	return nil
}

// SelfAssign lets a clinician add themselves to a patient's care team
func (s *AssignmentService) SelfAssign(identity *domain.Identity, patientID string) error {
	return s.Assign(identity.ID, patientID)
}

// SelfUnassign lets a clinician drop themselves from a patient's care team
func (s *AssignmentService) SelfUnassign(identity *domain.Identity, patientID string) error {
	return s.Unassign(identity.ID, patientID)
}

// CanAccessPatient implements the patient-access rule: admins may access
// any patient; clinicians only those with an edge to them. Evaluated
// against current state on every call, never cached.
func (s *AssignmentService) CanAccessPatient(identity *domain.Identity, patientID string) (bool, error) {
	if identity.Role == domain.RoleAdmin {
		return true, nil
	}
	if identity.Role != domain.RoleClinician {
		return false, nil
	}
	return s.assignRepo.Exists(identity.ID, patientID)
}

// AuthorizePatientAccess is CanAccessPatient as a gate: it returns
// Forbidden when access is denied.
func (s *AssignmentService) AuthorizePatientAccess(identity *domain.Identity, patientID string) error {
	ok, err := s.CanAccessPatient(identity, patientID)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("patient access denied",
			slog.String("caller_id", identity.ID),
			slog.String("patient_id", patientID),
		)
		return domain.Forbidden("forbidden")
	}
	return nil
}

// ListPatientsFor returns the patients visible to the caller: every
// patient for admins, assigned patients for clinicians.
func (s *AssignmentService) ListPatientsFor(identity *domain.Identity) ([]*domain.User, error) {
	if identity.Role == domain.RoleAdmin {
		return s.userRepo.ListPatients()
	}
	return s.userRepo.ListPatientsAssignedTo(identity.ID)
}

// ListAssignablePool returns active patients for the self-service picker
func (s *AssignmentService) ListAssignablePool() ([]*domain.User, error) {
	return s.userRepo.ListAssignablePatients()
}
