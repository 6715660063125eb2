package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mindsync/server/internal/domain"
)

// PostgresAuditLogRepository implements domain.AuditLogRepository using
// PostgreSQL. Entries are append-only and never deleted.
type PostgresAuditLogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAuditLogRepository creates a new audit log repository
func NewPostgresAuditLogRepository(db *sql.DB, logger *slog.Logger) *PostgresAuditLogRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAuditLogRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit log entry
func (r *PostgresAuditLogRepository) Create(entry *domain.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO audit_logs (id, action, admin_id, target_user_id)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING created_at
	`

	err := r.db.QueryRow(
		query,
		entry.ID,
		entry.Action,
		entry.AdminID,
		entry.TargetUserID,
	).Scan(&entry.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create audit log entry",
			slog.String("action", entry.Action),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}

	return nil
}

const auditQuery = `
	SELECT a.id, a.action, a.admin_id, COALESCE(a.target_user_id::text, ''), a.created_at,
	       COALESCE(admin_user.full_name, ''), COALESCE(admin_user.email, ''),
	       COALESCE(target_user.full_name, ''), COALESCE(target_user.email, '')
	FROM audit_logs a
	LEFT JOIN users admin_user ON admin_user.id = a.admin_id
	LEFT JOIN users target_user ON target_user.id = a.target_user_id
`

// ListRecent returns the newest entries up to limit, annotated with admin
// and target display fields
func (r *PostgresAuditLogRepository) ListRecent(limit int) ([]*domain.AuditLogEntry, error) {
	query := auditQuery + ` ORDER BY a.created_at DESC LIMIT $1`
	return r.queryEntries(query, limit)
}

// ListByTarget returns entries where the user was the target, newest first
func (r *PostgresAuditLogRepository) ListByTarget(userID string) ([]*domain.AuditLogEntry, error) {
	query := auditQuery + ` WHERE a.target_user_id = $1 ORDER BY a.created_at DESC`
	return r.queryEntries(query, userID)
}

// ListByAdmin returns entries where the user was the acting admin, newest first
func (r *PostgresAuditLogRepository) ListByAdmin(userID string) ([]*domain.AuditLogEntry, error) {
	query := auditQuery + ` WHERE a.admin_id = $1 ORDER BY a.created_at DESC`
	return r.queryEntries(query, userID)
}

func (r *PostgresAuditLogRepository) queryEntries(query string, args ...any) ([]*domain.AuditLogEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list audit logs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditLogEntry
	for rows.Next() {
		entry := &domain.AuditLogEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.AdminID,
			&entry.TargetUserID,
			&entry.CreatedAt,
			&entry.AdminName,
			&entry.AdminEmail,
			&entry.TargetName,
			&entry.TargetEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
