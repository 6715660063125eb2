package service

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/mindsync/server/internal/domain"
	"github.com/mindsync/server/internal/observability/metrics"
)

const (
	noteMaxLength = 280
	defaultWindow = 7
	maxWindowDays = 365
)

// MoodService owns the mood check-in ledger
type MoodService struct {
	moodRepo domain.MoodEntryRepository
	logger   *slog.Logger
}

// NewMoodService creates a new mood service
func NewMoodService(moodRepo domain.MoodEntryRepository, logger *slog.Logger) *MoodService {
	if logger == nil {
		logger = slog.Default()
	}

	return &MoodService{
		moodRepo: moodRepo,
		logger:   logger,
	}
}

// RecordEntry appends a check-in for the caller's local calendar day.
// Multiple entries per day are allowed; entries are immutable once written.
func (s *MoodService) RecordEntry(userID string, rating int, tags []string, note string) (*domain.MoodEntry, error) {
	if rating < 1 || rating > 10 {
		return nil, domain.Validation("rating must be an integer between 1 and 10")
	}

	cleanTags, invalid := normalizeTags(tags)
	if len(invalid) > 0 {
		return nil, domain.Validationf("invalid tags: %s", strings.Join(invalid, ", "))
	}

	note = strings.TrimSpace(note)
	if len(note) > noteMaxLength {
		return nil, domain.Validationf("note must be at most %d characters", noteMaxLength)
	}

	entry := &domain.MoodEntry{
		UserID:    userID,
		Rating:    rating,
		Tags:      cleanTags,
		Note:      note,
		EntryDate: startOfDay(time.Now()),
	}

	if err := s.moodRepo.Create(entry); err != nil {
		return nil, err
	}

	metrics.ObserveMoodEntry()
	s.logger.Info("mood entry recorded",
		slog.String("user_id", userID),
		slog.Int("rating", rating),
	)

	return entry, nil
}

// normalizeTags lower-cases, trims, and deduplicates tags, returning the
// clean set and any tags outside the allow-list.
func normalizeTags(tags []string) (clean []string, invalid []string) {
	allowed := map[string]bool{}
	for _, t := range domain.AllowedMoodTags {
		allowed[t] = true
	}

	seen := map[string]bool{}
	for _, t := range tags {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		if !allowed[tag] {
			invalid = append(invalid, tag)
			continue
		}
		clean = append(clean, tag)
	}

	if clean == nil {
		clean = []string{}
	}
	return clean, invalid
}

// ListEntries returns the caller's entries within the trailing window,
// newest first. The window is in days, 1-365, default 7.
func (s *MoodService) ListEntries(userID string, windowDays int) ([]*domain.MoodEntry, error) {
	windowDays, err := validateWindow(windowDays)
	if err != nil {
		return nil, err
	}

	from := startOfDay(time.Now().AddDate(0, 0, -(windowDays - 1)))
	return s.moodRepo.ListSince(userID, from)
}

// ListAllEntries returns a user's entire ledger, newest first. Clinician
// views show full history rather than a trailing window.
func (s *MoodService) ListAllEntries(userID string) ([]*domain.MoodEntry, error) {
	return s.moodRepo.ListRange(userID, nil, nil)
}

// AggregateDaily returns exactly windowDays contiguous calendar-day buckets
// ending today. Days with no entries report a nil average so charts show
// gaps instead of compressing the timeline.
func (s *MoodService) AggregateDaily(userID string, windowDays int) ([]domain.DayAverage, error) {
	windowDays, err := validateWindow(windowDays)
	if err != nil {
		return nil, err
	}

	from := startOfDay(time.Now().AddDate(0, 0, -(windowDays - 1)))
	averages, err := s.moodRepo.AverageByDay(userID, from)
	if err != nil {
		return nil, err
	}

	buckets := make([]domain.DayAverage, 0, windowDays)
	for i := 0; i < windowDays; i++ {
		day := from.AddDate(0, 0, i)
		key := day.Format("2006-01-02")
		bucket := domain.DayAverage{Date: key}
		if avg, ok := averages[key]; ok {
			rounded := math.Round(avg*10) / 10
			bucket.Average = &rounded
		}
		buckets = append(buckets, bucket)
	}

	return buckets, nil
}

func validateWindow(windowDays int) (int, error) {
	if windowDays == 0 {
		return defaultWindow, nil
	}
	if windowDays < 1 || windowDays > maxWindowDays {
		return 0, domain.Validationf("days must be between 1 and %d", maxWindowDays)
	}
	return windowDays, nil
}

// startOfDay truncates a time to its local calendar day
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
