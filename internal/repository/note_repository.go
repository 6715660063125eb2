package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mindsync/server/internal/domain"
)

// PostgresClinicianNoteRepository implements domain.ClinicianNoteRepository
// using PostgreSQL. Notes are append-only.
type PostgresClinicianNoteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresClinicianNoteRepository creates a new clinician note repository
func NewPostgresClinicianNoteRepository(db *sql.DB, logger *slog.Logger) *PostgresClinicianNoteRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresClinicianNoteRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a clinician note
func (r *PostgresClinicianNoteRepository) Create(note *domain.ClinicianNote) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}

	query := `
		INSERT INTO clinician_notes (id, patient_id, clinician_id, note)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRow(
		query,
		note.ID,
		note.PatientID,
		note.ClinicianID,
		note.Note,
	).Scan(&note.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create clinician note",
			slog.String("patient_id", note.PatientID),
			slog.String("clinician_id", note.ClinicianID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create clinician note: %w", err)
	}

	return nil
}

// ListByPatient returns a patient's notes newest first, annotated with the
// authoring clinician's display name and email
func (r *PostgresClinicianNoteRepository) ListByPatient(patientID string) ([]*domain.ClinicianNote, error) {
	query := `
		SELECT n.id, n.patient_id, n.clinician_id, n.note, n.created_at,
		       u.full_name, u.email
		FROM clinician_notes n
		JOIN users u ON u.id = n.clinician_id
		WHERE n.patient_id = $1
		ORDER BY n.created_at DESC
	`

	rows, err := r.db.Query(query, patientID)
	if err != nil {
		r.logger.Error("failed to list clinician notes",
			slog.String("patient_id", patientID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list clinician notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.ClinicianNote
	for rows.Next() {
		note := &domain.ClinicianNote{}
		err := rows.Scan(
			&note.ID,
			&note.PatientID,
			&note.ClinicianID,
			&note.Note,
			&note.CreatedAt,
			&note.ClinicianName,
			&note.ClinicianEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clinician note: %w", err)
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}
