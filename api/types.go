package api

import (
	"context"
	"time"

	"prism-tracker/domain"
	"prism-tracker/tracker"
)

// Tracker is the state core the handlers drive.
type Tracker interface {
	View(now time.Time) tracker.View
	Filter() domain.Filter
	Tasks() []domain.Task
	Notes() []domain.Note
	TaskStats() domain.TaskStats
	GoalStats() domain.GoalStats
	Subscribe() (<-chan domain.Change, func())

	AddTask(ctx context.Context, text, priority string) (domain.Task, error)
	ToggleTask(ctx context.Context, id int64) (bool, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	ClearCompletedTasks(ctx context.Context, confirmed bool) (int, error)
	SetFilter(raw string) error

	AddNote(ctx context.Context, title, content string) (domain.Note, error)
	DeleteNote(ctx context.Context, id int64) (bool, error)
	BeginEditNote(id int64) (domain.NoteDraft, bool)
	CommitEditNote(ctx context.Context, title, content string) (domain.Note, error)
	CancelEditNote()
	ClearAllNotes(ctx context.Context, confirmed bool) (int, error)

	AddGoal(ctx context.Context, text, deadline, category string) (domain.Goal, error)
	ToggleGoal(ctx context.Context, id int64) (bool, error)
	DeleteGoal(ctx context.Context, id int64) (bool, error)
	ClearCompletedGoals(ctx context.Context, confirmed bool) (int, error)
}

// Deduper remembers idempotency keys of mutating requests.
type Deduper interface {
	// Add records the key and returns true if it was newly added.
	Add(ctx context.Context, scope, key string) (bool, error)
	// Remove forgets a key so a failed request may be retried.
	Remove(ctx context.Context, scope, key string) error
}
