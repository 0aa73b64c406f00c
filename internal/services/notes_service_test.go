package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/core"
)

func TestNotesService(t *testing.T) {
	store := newTestStore(t)
	pub := &recordingPublisher{}
	clock := newFakeClock(time.Date(2024, 3, 1, 10, 0, 0, 0, wib))
	svc := NewNotesService(store, pub, clock.Now)
	ctx := context.Background()

	out, err := svc.SaveNote(ctx, "  Gmail ", "pass123")
	if err != nil {
		t.Fatalf("SaveNote failed: %v", err)
	}
	if !out.Created || out.Title != "gmail" {
		t.Errorf("Unexpected outcome: %+v", out)
	}

	t.Run("save again updates", func(t *testing.T) {
		clock.Set(clock.Now().Add(time.Hour))
		out, err := svc.SaveNote(ctx, "GMAIL", "pass456")
		if err != nil {
			t.Fatalf("SaveNote failed: %v", err)
		}
		if out.Created {
			t.Error("Expected update, got create")
		}

		note, err := svc.ViewNote(ctx, "gmail")
		if err != nil {
			t.Fatalf("ViewNote failed: %v", err)
		}
		if note.Content != "pass456" {
			t.Errorf("Content = %q, want pass456", note.Content)
		}
		if !note.UpdatedAt.After(note.CreatedAt) {
			t.Errorf("Expected updated_at after created_at: %v / %v", note.UpdatedAt, note.CreatedAt)
		}
	})

	t.Run("edit missing note writes nothing", func(t *testing.T) {
		_, err := svc.EditNote(ctx, "bank", "1234")
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
		if n, _ := store.CountNotes(ctx); n != 1 {
			t.Errorf("Expected 1 note, got %d", n)
		}
	})

	t.Run("edit existing note", func(t *testing.T) {
		clock.Set(clock.Now().Add(time.Hour))
		out, err := svc.EditNote(ctx, "Gmail", "final")
		if err != nil {
			t.Fatalf("EditNote failed: %v", err)
		}
		if out.Created {
			t.Error("Edit must never create")
		}
		note, _ := svc.ViewNote(ctx, "gmail")
		if note.Content != "final" {
			t.Errorf("Content = %q, want final", note.Content)
		}
	})

	t.Run("validation", func(t *testing.T) {
		if _, err := svc.SaveNote(ctx, "  ", "x"); !errors.Is(err, core.ErrInvalidValue) {
			t.Errorf("Empty title: got %v", err)
		}
		if _, err := svc.SaveNote(ctx, "wifi", "   "); !errors.Is(err, core.ErrInvalidValue) {
			t.Errorf("Empty content: got %v", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		clock.Set(clock.Now().Add(time.Hour))
		if _, err := svc.SaveNote(ctx, "wifi", "rumah123"); err != nil {
			t.Fatalf("SaveNote failed: %v", err)
		}
		notes, err := svc.ListNotes(ctx)
		if err != nil {
			t.Fatalf("ListNotes failed: %v", err)
		}
		if len(notes) != 2 || notes[0].Title != "wifi" || notes[1].Title != "gmail" {
			t.Errorf("Unexpected list: %+v", notes)
		}
	})

	t.Run("view missing", func(t *testing.T) {
		if _, err := svc.ViewNote(ctx, "bank"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := svc.DeleteNote(ctx, "bank"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Expected ErrNotFound deleting missing note, got %v", err)
		}
		if err := svc.DeleteNote(ctx, "WIFI"); err != nil {
			t.Fatalf("DeleteNote failed: %v", err)
		}
		if _, err := svc.ViewNote(ctx, "wifi"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Deleted note still visible: %v", err)
		}
	})

	for _, e := range pub.events {
		if e.Type != amqp.EventNoteSaved && e.Type != amqp.EventNoteDeleted {
			t.Errorf("Unexpected event type %s", e.Type)
		}
	}
	if got := pub.Types(); got[len(got)-1] != amqp.EventNoteDeleted {
		t.Errorf("Last event = %s, want note.deleted", got[len(got)-1])
	}
}
