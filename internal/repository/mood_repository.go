package repository

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mindsync/server/internal/domain"
)

// PostgresMoodEntryRepository implements domain.MoodEntryRepository using
// PostgreSQL. The ledger is append-only; there are no update or delete paths.
type PostgresMoodEntryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresMoodEntryRepository creates a new mood entry repository
func NewPostgresMoodEntryRepository(db *sql.DB, logger *slog.Logger) *PostgresMoodEntryRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMoodEntryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a mood entry
func (r *PostgresMoodEntryRepository) Create(entry *domain.MoodEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO mood_entries (id, user_id, rating, tags, note, entry_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		entry.ID,
		entry.UserID,
		entry.Rating,
		pq.Array(entry.Tags),
		entry.Note,
		entry.EntryDate,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create mood entry",
			slog.String("user_id", entry.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create mood entry: %w", err)
	}

	return nil
}

const moodColumns = `id, user_id, rating, tags, note, entry_date, created_at, updated_at`

func scanMoodEntry(row interface{ Scan(...any) error }) (*domain.MoodEntry, error) {
	entry := &domain.MoodEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Rating,
		pq.Array(&entry.Tags),
		&entry.Note,
		&entry.EntryDate,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListSince returns entries whose entry date is on or after from, newest
// first by creation time
func (r *PostgresMoodEntryRepository) ListSince(userID string, from time.Time) ([]*domain.MoodEntry, error) {
	query := `
		SELECT ` + moodColumns + `
		FROM mood_entries
		WHERE user_id = $1 AND entry_date >= $2
		ORDER BY created_at DESC
	`
	return r.queryEntries(query, userID, from)
}

// ListRange returns entries filtered by an optional entry-date range,
// newest first by entry date
func (r *PostgresMoodEntryRepository) ListRange(userID string, start, end *time.Time) ([]*domain.MoodEntry, error) {
	query := `
		SELECT ` + moodColumns + `
		FROM mood_entries
		WHERE user_id = $1
		  AND ($2::date IS NULL OR entry_date >= $2)
		  AND ($3::date IS NULL OR entry_date <= $3)
		ORDER BY entry_date DESC, created_at DESC
	`

	var startArg, endArg any
	if start != nil {
		startArg = *start
	}
	if end != nil {
		endArg = *end
	}

	return r.queryEntries(query, userID, startArg, endArg)
}

// AverageByDay returns the mean rating per calendar day, keyed YYYY-MM-DD,
// for entries on or after from
func (r *PostgresMoodEntryRepository) AverageByDay(userID string, from time.Time) (map[string]float64, error) {
	query := `
		SELECT to_char(entry_date, 'YYYY-MM-DD'), AVG(rating)
		FROM mood_entries
		WHERE user_id = $1 AND entry_date >= $2
		GROUP BY entry_date
	`

	rows, err := r.db.Query(query, userID, from)
	if err != nil {
		r.logger.Error("failed to aggregate mood entries",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to aggregate mood entries: %w", err)
	}
	defer rows.Close()

	averages := map[string]float64{}
	for rows.Next() {
		var day string
		var avg float64
		if err := rows.Scan(&day, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		averages[day] = avg
	}

	return averages, rows.Err()
}

func (r *PostgresMoodEntryRepository) queryEntries(query string, args ...any) ([]*domain.MoodEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list mood entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list mood entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.MoodEntry
	for rows.Next() {
		entry, err := scanMoodEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
