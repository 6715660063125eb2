package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mindsync/server/internal/domain"
)

// PostgresFeatureFlagRepository implements domain.FeatureFlagRepository
// using PostgreSQL
type PostgresFeatureFlagRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresFeatureFlagRepository creates a new feature flag repository
func NewPostgresFeatureFlagRepository(db *sql.DB, logger *slog.Logger) *PostgresFeatureFlagRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFeatureFlagRepository{
		db:     db,
		logger: logger,
	}
}

// List returns every flag sorted by key
func (r *PostgresFeatureFlagRepository) List() ([]*domain.FeatureFlag, error) {
	query := `SELECT key, description, enabled, updated_at FROM feature_flags ORDER BY key`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("failed to list feature flags", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list feature flags: %w", err)
	}
	defer rows.Close()

	var flags []*domain.FeatureFlag
	for rows.Next() {
		flag := &domain.FeatureFlag{}
		if err := rows.Scan(&flag.Key, &flag.Description, &flag.Enabled, &flag.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feature flag: %w", err)
		}
		flags = append(flags, flag)
	}

	return flags, rows.Err()
}

// Get retrieves a flag by key
func (r *PostgresFeatureFlagRepository) Get(key string) (*domain.FeatureFlag, error) {
	query := `SELECT key, description, enabled, updated_at FROM feature_flags WHERE key = $1`

	flag := &domain.FeatureFlag{}
	err := r.db.QueryRow(query, key).Scan(&flag.Key, &flag.Description, &flag.Enabled, &flag.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("flag not found")
		}
		return nil, fmt.Errorf("failed to get feature flag: %w", err)
	}

	return flag, nil
}

// SetEnabled toggles an existing flag. Flags are never created through this
// path; an unseeded key is a NotFound.
func (r *PostgresFeatureFlagRepository) SetEnabled(key string, enabled bool) (*domain.FeatureFlag, error) {
	query := `
		UPDATE feature_flags
		SET enabled = $1, updated_at = now()
		WHERE key = $2
		RETURNING key, description, enabled, updated_at
	`

	flag := &domain.FeatureFlag{}
	err := r.db.QueryRow(query, enabled, key).Scan(&flag.Key, &flag.Description, &flag.Enabled, &flag.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("flag not found")
		}
		r.logger.Error("failed to update feature flag",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update feature flag: %w", err)
	}

	return flag, nil
}

// SeedDefaults inserts missing flags. Existing rows are left untouched so a
// prior admin toggle is never clobbered by a restart.
func (r *PostgresFeatureFlagRepository) SeedDefaults(flags []domain.FeatureFlag) error {
	query := `
		INSERT INTO feature_flags (key, description, enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
	`

	for _, flag := range flags {
		if _, err := r.db.Exec(query, flag.Key, flag.Description, flag.Enabled); err != nil {
			return fmt.Errorf("failed to seed flag %s: %w", flag.Key, err)
		}
	}

	return nil
}
