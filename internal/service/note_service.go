package service

import (
	"log/slog"
	"strings"

	"github.com/mindsync/server/internal/domain"
)

// NoteService owns the append-only clinician notes ledger. Callers are
// expected to have passed the patient-access gate already; this service
// trusts that boundary and does not re-check it.
type NoteService struct {
	noteRepo domain.ClinicianNoteRepository
	logger   *slog.Logger
}

// NewNoteService creates a new clinician note service
func NewNoteService(noteRepo domain.ClinicianNoteRepository, logger *slog.Logger) *NoteService {
	if logger == nil {
		logger = slog.Default()
	}

	return &NoteService{
		noteRepo: noteRepo,
		logger:   logger,
	}
}

// AddNote appends a note authored by the clinician against the patient
func (s *NoteService) AddNote(clinicianID, patientID, text string) (*domain.ClinicianNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Validation("note is required")
	}

	note := &domain.ClinicianNote{
		PatientID:   patientID,
		ClinicianID: clinicianID,
		Note:        text,
	}

	if err := s.noteRepo.Create(note); err != nil {
		return nil, err
	}

	s.logger.Info("clinician note added",
		slog.String("clinician_id", clinicianID),
		slog.String("patient_id", patientID),
	)

	return note, nil
}

// ListNotes returns a patient's notes newest first, annotated with the
// authoring clinician's display name and email
func (s *NoteService) ListNotes(patientID string) ([]*domain.ClinicianNote, error) {
	return s.noteRepo.ListByPatient(patientID)
}
