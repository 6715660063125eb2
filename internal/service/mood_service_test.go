package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mindsync/server/internal/domain"
)

func TestRecordEntryValidation(t *testing.T) {
	s := NewMoodService(newMemMoodRepo(), nil)

	if _, err := s.RecordEntry("u-1", 0, nil, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for rating 0, got %v", err)
	}
	if _, err := s.RecordEntry("u-1", 11, nil, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for rating 11, got %v", err)
	}
	if _, err := s.RecordEntry("u-1", 5, []string{"ecstatic"}, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown tag, got %v", err)
	}
	longNote := strings.Repeat("x", 281)
	if _, err := s.RecordEntry("u-1", 5, nil, longNote); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for long note, got %v", err)
	}
}

func TestRecordEntryNormalizesTags(t *testing.T) {
	repo := newMemMoodRepo()
	s := NewMoodService(repo, nil)

	entry, err := s.RecordEntry("u-1", 7, []string{" Calm ", "calm", "HAPPY", ""}, "  good day  ")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if len(entry.Tags) != 2 || entry.Tags[0] != "calm" || entry.Tags[1] != "happy" {
		t.Fatalf("expected deduplicated lower-cased tags, got %v", entry.Tags)
	}
	if entry.Note != "good day" {
		t.Fatalf("expected trimmed note, got %q", entry.Note)
	}
	if entry.ID == "" {
		t.Fatalf("expected entry to be persisted")
	}
}

func TestRecordEntryEmptyTagsAllowed(t *testing.T) {
	s := NewMoodService(newMemMoodRepo(), nil)

	entry, err := s.RecordEntry("u-1", 5, nil, "")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if entry.Tags == nil || len(entry.Tags) != 0 {
		t.Fatalf("expected empty tag slice, got %v", entry.Tags)
	}
}

func TestListEntriesWindow(t *testing.T) {
	repo := newMemMoodRepo()
	s := NewMoodService(repo, nil)

	if _, err := s.ListEntries("u-1", -1); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative window, got %v", err)
	}
	if _, err := s.ListEntries("u-1", 366); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for oversized window, got %v", err)
	}

	// Entry outside the default 7-day window is not returned
	old := &domain.MoodEntry{UserID: "u-1", Rating: 3, Tags: []string{}, EntryDate: startOfDay(time.Now().AddDate(0, 0, -10))}
	repo.Create(old)
	if _, err := s.RecordEntry("u-1", 8, nil, ""); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	entries, err := s.ListEntries("u-1", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Rating != 8 {
		t.Fatalf("expected only the recent entry, got %d entries", len(entries))
	}

	entries, err = s.ListEntries("u-1", 30)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both entries in 30-day window, got %d", len(entries))
	}
}

func TestListAllEntriesUnbounded(t *testing.T) {
	repo := newMemMoodRepo()
	s := NewMoodService(repo, nil)

	old := &domain.MoodEntry{UserID: "u-1", Rating: 3, Tags: []string{}, EntryDate: startOfDay(time.Now().AddDate(0, 0, -400))}
	repo.Create(old)
	if _, err := s.RecordEntry("u-1", 8, nil, ""); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	entries, err := s.ListAllEntries("u-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected the full ledger, got %d entries", len(entries))
	}
	if entries[0].Rating != 8 || entries[1].Rating != 3 {
		t.Fatalf("expected newest first, got ratings %d, %d", entries[0].Rating, entries[1].Rating)
	}
}

func TestAggregateDaily(t *testing.T) {
	repo := newMemMoodRepo()
	s := NewMoodService(repo, nil)

	for _, rating := range []int{4, 6, 8} {
		if _, err := s.RecordEntry("u-1", rating, nil, ""); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	buckets, err := s.AggregateDaily("u-1", 7)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}

	today := time.Now().Format("2006-01-02")
	last := buckets[len(buckets)-1]
	if last.Date != today {
		t.Fatalf("expected last bucket to be today %s, got %s", today, last.Date)
	}
	if last.Average == nil || *last.Average != 6.0 {
		t.Fatalf("expected today's average 6.0, got %v", last.Average)
	}

	// Days with no entries report nil, not zero
	for _, b := range buckets[:len(buckets)-1] {
		if b.Average != nil {
			t.Fatalf("expected nil average for empty day %s, got %v", b.Date, *b.Average)
		}
	}
}

func TestAggregateDailyRounding(t *testing.T) {
	repo := newMemMoodRepo()
	s := NewMoodService(repo, nil)

	// 7 and 8 average to 7.5; 3, 4, 4 average to 3.666... -> 3.7
	for _, rating := range []int{3, 4, 4} {
		if _, err := s.RecordEntry("u-1", rating, nil, ""); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	buckets, err := s.AggregateDaily("u-1", 1)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	if buckets[0].Average == nil || *buckets[0].Average != 3.7 {
		t.Fatalf("expected rounded average 3.7, got %v", buckets[0].Average)
	}
}
