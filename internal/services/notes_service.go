package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dompet/internal/amqp"
	"dompet/internal/core"
)

// NoteOutcome tells a created note apart from an updated one.
type NoteOutcome struct {
	Title   string
	Created bool
}

type NotesService struct {
	store     NoteStore
	publisher EventPublisher
	now       Clock
}

func NewNotesService(store NoteStore, publisher EventPublisher, now Clock) *NotesService {
	return &NotesService{
		store:     store,
		publisher: publisher,
		now:       clockOrDefault(now),
	}
}

// SaveNote creates the note or replaces its content.
func (s *NotesService) SaveNote(ctx context.Context, title, content string) (NoteOutcome, error) {
	note := core.Note{Title: core.NormalizeTitle(title), Content: strings.TrimSpace(content)}
	if err := note.Validate(); err != nil {
		return NoteOutcome{Title: note.Title}, err
	}
	return s.upsert(ctx, note)
}

// EditNote replaces the content of an existing note. It never creates one.
func (s *NotesService) EditNote(ctx context.Context, title, content string) (NoteOutcome, error) {
	note := core.Note{Title: core.NormalizeTitle(title), Content: strings.TrimSpace(content)}
	if err := note.Validate(); err != nil {
		return NoteOutcome{Title: note.Title}, err
	}

	if _, err := s.store.GetNote(ctx, note.Title); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return NoteOutcome{Title: note.Title}, err
		}
		return NoteOutcome{Title: note.Title}, fmt.Errorf("check note: %w", err)
	}

	return s.upsert(ctx, note)
}

func (s *NotesService) upsert(ctx context.Context, note core.Note) (NoteOutcome, error) {
	created, err := s.store.UpsertNote(ctx, note.Title, note.Content, s.now())
	if err != nil {
		return NoteOutcome{Title: note.Title}, fmt.Errorf("save note: %w", err)
	}

	publish(ctx, s.publisher, amqp.NewNoteEvent(amqp.EventNoteSaved, note.Title, created))

	return NoteOutcome{Title: note.Title, Created: created}, nil
}

// ListNotes returns titles and timestamps only.
func (s *NotesService) ListNotes(ctx context.Context) ([]core.NoteSummary, error) {
	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	loc := s.now().Location()
	for i := range notes {
		notes[i].CreatedAt = notes[i].CreatedAt.In(loc)
		notes[i].UpdatedAt = notes[i].UpdatedAt.In(loc)
	}
	return notes, nil
}

// ViewNote returns the full note or core.ErrNotFound.
func (s *NotesService) ViewNote(ctx context.Context, title string) (core.Note, error) {
	title = core.NormalizeTitle(title)
	if title == "" {
		return core.Note{}, fmt.Errorf("%w: title is required", core.ErrInvalidValue)
	}

	note, err := s.store.GetNote(ctx, title)
	if err != nil {
		return core.Note{}, err
	}

	loc := s.now().Location()
	note.CreatedAt = note.CreatedAt.In(loc)
	note.UpdatedAt = note.UpdatedAt.In(loc)
	return note, nil
}

// DeleteNote removes the note, returning core.ErrNotFound when there is none.
func (s *NotesService) DeleteNote(ctx context.Context, title string) error {
	title = core.NormalizeTitle(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", core.ErrInvalidValue)
	}

	deleted, err := s.store.DeleteNote(ctx, title)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if !deleted {
		return fmt.Errorf("note %q: %w", title, core.ErrNotFound)
	}

	publish(ctx, s.publisher, amqp.NewNoteEvent(amqp.EventNoteDeleted, title, false))
	return nil
}
