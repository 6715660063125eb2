package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

// PostgresAssignmentRepository stores clinician -> patient edges in a
// dedicated adjacency table. Single-statement inserts and deletes keep
// concurrent mutations on the same patient from clobbering each other.
type PostgresAssignmentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAssignmentRepository creates a new assignment repository
func NewPostgresAssignmentRepository(db *sql.DB, logger *slog.Logger) *PostgresAssignmentRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAssignmentRepository{
		db:     db,
		logger: logger,
	}
}

// Add inserts an edge. Adding an existing edge is a no-op.
func (r *PostgresAssignmentRepository) Add(clinicianID, patientID string) error {
	query := `
		INSERT INTO assignments (clinician_id, patient_id)
		VALUES ($1, $2)
		ON CONFLICT (clinician_id, patient_id) DO NOTHING
	`

	if _, err := r.db.Exec(query, clinicianID, patientID); err != nil {
		r.logger.Error("failed to add assignment",
			slog.String("clinician_id", clinicianID),
			slog.String("patient_id", patientID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to add assignment: %w", err)
	}

	return nil
}

// Remove deletes an edge. Removing an absent edge succeeds.
func (r *PostgresAssignmentRepository) Remove(clinicianID, patientID string) error {
	query := `DELETE FROM assignments WHERE clinician_id = $1 AND patient_id = $2`

	if _, err := r.db.Exec(query, clinicianID, patientID); err != nil {
		r.logger.Error("failed to remove assignment",
			slog.String("clinician_id", clinicianID),
			slog.String("patient_id", patientID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to remove assignment: %w", err)
	}

	return nil
}

// Exists reports whether the edge is present
func (r *PostgresAssignmentRepository) Exists(clinicianID, patientID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM assignments WHERE clinician_id = $1 AND patient_id = $2)`

	var exists bool
	if err := r.db.QueryRow(query, clinicianID, patientID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}

	return exists, nil
}

// CliniciansFor returns the clinician ids assigned to a patient
func (r *PostgresAssignmentRepository) CliniciansFor(patientID string) ([]string, error) {
	query := `SELECT clinician_id FROM assignments WHERE patient_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint error
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
