package domain

import "time"

// Note is a titled free-form text entry.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoteDraft is the edit buffer of the note currently under edit.
type NoteDraft struct {
	NoteID  int64  `json:"noteId"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
