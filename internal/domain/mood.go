package domain

import "time"

// AllowedMoodTags is the fixed server-side tag allow-list. Tags are
// compared lower-cased; anything outside this list rejects the whole entry.
var AllowedMoodTags = []string{
	"stressed", "anxious", "calm", "happy", "sad", "tired", "motivated",
	"angry", "overwhelmed", "focused", "lonely", "confident",
}

// MoodEntry is an immutable check-in record. Multiple entries per calendar
// day are permitted; entries are never updated or deleted.
type MoodEntry struct {
	ID        string // UUID
	UserID    string
	Rating    int       // 1-10
	Tags      []string  // deduplicated, lower-cased, from AllowedMoodTags
	Note      string    // trimmed, max 280 chars
	EntryDate time.Time // calendar day, local time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DayAverage is one chart bucket. Average is nil for days with no entries
// so the timeline renders gaps instead of compressing.
type DayAverage struct {
	Date    string   `json:"date"` // YYYY-MM-DD
	Average *float64 `json:"avg"`
}

// MoodEntryRepository defines data access for mood entries
type MoodEntryRepository interface {
	Create(entry *MoodEntry) error
	ListSince(userID string, from time.Time) ([]*MoodEntry, error)
	ListRange(userID string, start, end *time.Time) ([]*MoodEntry, error)
	AverageByDay(userID string, from time.Time) (map[string]float64, error)
}

// ClinicianNote is an append-only note authored against a patient.
// ClinicianName and ClinicianEmail are presentation annotations filled in
// on read.
type ClinicianNote struct {
	ID             string // UUID
	PatientID      string
	ClinicianID    string
	Note           string
	CreatedAt      time.Time
	ClinicianName  string
	ClinicianEmail string
}

// ClinicianNoteRepository defines data access for clinician notes
type ClinicianNoteRepository interface {
	Create(note *ClinicianNote) error
	ListByPatient(patientID string) ([]*ClinicianNote, error)
}
