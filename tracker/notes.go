package tracker

import (
	"context"

	"prism-tracker/domain"
)

// AddNote appends a note. Title and content must both be non-blank.
func (t *Tracker) AddNote(ctx context.Context, title, content string) (domain.Note, error) {
	title, content, err := validateNote(title, content)
	if err != nil {
		return domain.Note{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	note := domain.Note{ID: t.ids.Next(), Title: title, Content: content, CreatedAt: t.now().UTC()}
	t.notes = append(t.notes, note)
	return note, t.commitLocked(ctx, t.change(domain.NoteAdded, domain.EntityNote, note.ID))
}

// DeleteNote removes the note and releases the edit lock if it held this note.
func (t *Tracker) DeleteNote(ctx context.Context, id int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.noteIndex(id) < 0 {
		return false, nil
	}
	kept := make([]domain.Note, 0, len(t.notes)-1)
	for _, n := range t.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	t.notes = kept
	if t.edit != nil && t.edit.NoteID == id {
		t.edit = nil
	}
	return true, t.commitLocked(ctx, t.change(domain.NoteDeleted, domain.EntityNote, id))
}

// BeginEditNote takes the edit lock for id and returns the buffer preloaded
// with the note's fields. A lock held on another note is replaced.
func (t *Tracker) BeginEditNote(id int64) (domain.NoteDraft, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.noteIndex(id)
	if i < 0 {
		return domain.NoteDraft{}, false
	}
	draft := domain.NoteDraft{NoteID: id, Title: t.notes[i].Title, Content: t.notes[i].Content}
	t.edit = &draft
	t.broker.publish(t.change(domain.NoteEditStarted, domain.EntityNote, id))
	return draft, true
}

// CommitEditNote stores title and content in the edit buffer and applies it to
// the locked note. Invalid input is rejected with the lock kept open and the
// note unchanged.
func (t *Tracker) CommitEditNote(ctx context.Context, title, content string) (domain.Note, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.edit == nil {
		return domain.Note{}, domain.ErrNoActiveEdit
	}
	t.edit.Title = title
	t.edit.Content = content
	title, content, err := validateNote(title, content)
	if err != nil {
		return domain.Note{}, err
	}
	i := t.noteIndex(t.edit.NoteID)
	if i < 0 {
		t.edit = nil
		return domain.Note{}, domain.ErrNoActiveEdit
	}
	t.notes[i].Title = title
	t.notes[i].Content = content
	t.edit = nil
	return t.notes[i], t.commitLocked(ctx, t.change(domain.NoteUpdated, domain.EntityNote, t.notes[i].ID))
}

// CancelEditNote releases the edit lock, discarding the buffer.
func (t *Tracker) CancelEditNote() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.edit == nil {
		return
	}
	id := t.edit.NoteID
	t.edit = nil
	t.broker.publish(t.change(domain.NoteEditCancelled, domain.EntityNote, id))
}

// ClearAllNotes removes every note once confirmed and returns how many were removed.
func (t *Tracker) ClearAllNotes(ctx context.Context, confirmed bool) (int, error) {
	if !confirmed {
		return 0, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := len(t.notes)
	if removed == 0 {
		return 0, nil
	}
	t.notes = []domain.Note{}
	t.edit = nil
	return removed, t.commitLocked(ctx, t.change(domain.NotesCleared, domain.EntityNote, 0))
}

func (t *Tracker) noteIndex(id int64) int {
	for i := range t.notes {
		if t.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func validateNote(title, content string) (string, string, error) {
	title, err := domain.RequireText("title", title)
	if err != nil {
		return "", "", err
	}
	content, err = domain.RequireText("content", content)
	if err != nil {
		return "", "", err
	}
	return title, content, nil
}
