package domain

import "time"

const (
	TaskAdded         = "task-added"
	TaskCompleted     = "task-completed"
	TaskReopened      = "task-reopened"
	TaskDeleted       = "task-deleted"
	TasksCleared      = "tasks-cleared"
	FilterChanged     = "filter-changed"
	NoteAdded         = "note-added"
	NoteUpdated       = "note-updated"
	NoteDeleted       = "note-deleted"
	NotesCleared      = "notes-cleared"
	NoteEditStarted   = "note-edit-started"
	NoteEditCancelled = "note-edit-cancelled"
	GoalAdded         = "goal-added"
	GoalCompleted     = "goal-completed"
	GoalReopened      = "goal-reopened"
	GoalDeleted       = "goal-deleted"
	GoalsCleared      = "goals-cleared"
	StateLoaded       = "state-loaded"
)

const (
	EntityTask  = "task"
	EntityNote  = "note"
	EntityGoal  = "goal"
	EntityState = "state"
)

// Change describes a state transition of the store. EntityID is zero for bulk
// and store-wide changes.
type Change struct {
	Type       string    `json:"type"`
	EntityType string    `json:"entityType"`
	EntityID   int64     `json:"entityId,omitempty"`
	At         time.Time `json:"at"`
}
