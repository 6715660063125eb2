package service

import (
	"errors"
	"testing"

	"github.com/mindsync/server/internal/domain"
)

func TestAddNoteRequiresText(t *testing.T) {
	s := NewNoteService(newMemNoteRepo(), nil)

	if _, err := s.AddNote("c-1", "p-1", "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank note, got %v", err)
	}
}

func TestAddAndListNotes(t *testing.T) {
	repo := newMemNoteRepo()
	s := NewNoteService(repo, nil)

	note, err := s.AddNote("c-1", "p-1", "  first visit  ")
	if err != nil {
		t.Fatalf("add note failed: %v", err)
	}
	if note.Note != "first visit" {
		t.Fatalf("expected trimmed note text, got %q", note.Note)
	}

	if _, err := s.AddNote("c-2", "p-2", "other patient"); err != nil {
		t.Fatalf("add note failed: %v", err)
	}

	notes, err := s.ListNotes("p-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(notes) != 1 || notes[0].ClinicianID != "c-1" {
		t.Fatalf("expected only p-1 notes, got %d", len(notes))
	}
}
