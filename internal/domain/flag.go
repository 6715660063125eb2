package domain

import "time"

// Feature flag keys seeded at startup.
const (
	FlagMoodCheckIn = "moodCheckInEnabled"
	FlagJournal     = "journalEnabled"
	FlagMoodHistory = "moodHistoryEnabled"
	FlagExport      = "exportEnabled"
)

// FeatureFlag is a persisted boolean toggle gating optional functionality.
type FeatureFlag struct {
	Key         string    `json:"key"`
	Description string    `json:"description"`
	Enabled     bool      `json:"enabled"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultFlags returns the fixed set upserted at startup. Seeding uses
// insert-if-absent semantics so an admin's prior toggle survives restarts.
func DefaultFlags() []FeatureFlag {
	return []FeatureFlag{
		{Key: FlagMoodCheckIn, Description: "Allow users to submit mood check-ins", Enabled: true},
		{Key: FlagJournal, Description: "Allow users to write journal entries", Enabled: true},
		{Key: FlagMoodHistory, Description: "Allow users to view mood history charts", Enabled: true},
		{Key: FlagExport, Description: "Allow exporting data (CSV/PDF)", Enabled: true},
	}
}

// FeatureFlagRepository defines data access for feature flags
type FeatureFlagRepository interface {
	List() ([]*FeatureFlag, error)
	Get(key string) (*FeatureFlag, error)
	SetEnabled(key string, enabled bool) (*FeatureFlag, error)
	SeedDefaults(flags []FeatureFlag) error
}
