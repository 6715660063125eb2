package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mindsync/server/internal/domain"
	"github.com/mindsync/server/internal/export"
	"github.com/mindsync/server/internal/observability/metrics"
)

// ExportService renders a user's mood ledger as a downloadable file, and
// assembles the patient bundle used by clinicians.
type ExportService struct {
	moodRepo domain.MoodEntryRepository
	noteRepo domain.ClinicianNoteRepository
	userRepo domain.UserRepository
	logger   *slog.Logger
}

// NewExportService creates a new export service
func NewExportService(
	moodRepo domain.MoodEntryRepository,
	noteRepo domain.ClinicianNoteRepository,
	userRepo domain.UserRepository,
	logger *slog.Logger,
) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExportService{
		moodRepo: moodRepo,
		noteRepo: noteRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// ExportFile is a rendered download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportMoodData renders the caller's mood entries as CSV or PDF, optionally
// filtered by an entry-date range. An empty result set is a NotFound so the
// client can show "nothing to export" instead of handing out an empty file.
func (s *ExportService) ExportMoodData(userID, format string, start, end *time.Time) (*ExportFile, error) {
	if format != "csv" && format != "pdf" {
		return nil, domain.Validation("invalid format, use csv or pdf")
	}

	entries, err := s.moodRepo.ListRange(userID, start, end)
	if err != nil {
		metrics.ObserveExport(format, "error")
		return nil, err
	}

	if len(entries) == 0 {
		metrics.ObserveExport(format, "empty")
		return nil, domain.NotFound("no mood entries found for the selected time range")
	}

	filenameBase := fmt.Sprintf("mindsync-export-%s", time.Now().Format("2006-01-02"))

	var file *ExportFile
	switch format {
	case "csv":
		data, err := export.RenderCSV(entries)
		if err != nil {
			metrics.ObserveExport(format, "error")
			return nil, fmt.Errorf("failed to render csv: %w", err)
		}
		file = &ExportFile{
			Filename:    filenameBase + ".csv",
			ContentType: "text/csv; charset=utf-8",
			Data:        data,
		}
	case "pdf":
		data, err := export.RenderPDF(entries, start, end)
		if err != nil {
			metrics.ObserveExport(format, "error")
			return nil, fmt.Errorf("failed to render pdf: %w", err)
		}
		file = &ExportFile{
			Filename:    filenameBase + ".pdf",
			ContentType: "application/pdf",
			Data:        data,
		}
	}

	metrics.ObserveExport(format, "ok")
	s.logger.Info("mood data exported",
		slog.String("user_id", userID),
		slog.String("format", format),
		slog.Int("entries", len(entries)),
	)

	return file, nil
}

// PatientBundle is the structured JSON export used by clinicians
type PatientBundle struct {
	Patient    *domain.User
	Moods      []*domain.MoodEntry
	Notes      []*domain.ClinicianNote
	ExportedAt time.Time
}

// ExportPatientBundle gathers a patient's identity, moods, and notes. The
// caller must have passed the patient-access gate.
func (s *ExportService) ExportPatientBundle(patientID string) (*PatientBundle, error) {
	patient, err := s.userRepo.GetByID(patientID)
	if err != nil {
		return nil, domain.NotFound("patient not found")
	}

	moods, err := s.moodRepo.ListRange(patientID, nil, nil)
	if err != nil {
		return nil, err
	}

	notes, err := s.noteRepo.ListByPatient(patientID)
	if err != nil {
		return nil, err
	}

	return &PatientBundle{
		Patient:    patient,
		Moods:      moods,
		Notes:      notes,
		ExportedAt: time.Now().UTC(),
	}, nil
}
