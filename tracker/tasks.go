package tracker

import (
	"context"
	"slices"

	"prism-tracker/domain"
)

// AddTask appends an open task. Blank text or an unknown priority is rejected
// with a *domain.ValidationError and leaves the store untouched.
func (t *Tracker) AddTask(ctx context.Context, text, priority string) (domain.Task, error) {
	text, err := domain.RequireText("text", text)
	if err != nil {
		return domain.Task{}, err
	}
	p, err := domain.ParsePriority(priority)
	if err != nil {
		return domain.Task{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	task := domain.Task{ID: t.ids.Next(), Text: text, Priority: p, CreatedAt: t.now().UTC()}
	t.tasks = append(t.tasks, task)
	return task, t.commitLocked(ctx, t.change(domain.TaskAdded, domain.EntityTask, task.ID))
}

// ToggleTask flips the completed flag. It reports false when id is unknown.
func (t *Tracker) ToggleTask(ctx context.Context, id int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.taskIndex(id)
	if i < 0 {
		return false, nil
	}
	t.tasks[i].Completed = !t.tasks[i].Completed
	typ := domain.TaskReopened
	if t.tasks[i].Completed {
		typ = domain.TaskCompleted
	}
	return true, t.commitLocked(ctx, t.change(typ, domain.EntityTask, id))
}

// DeleteTask removes the task. It reports false when id is unknown.
func (t *Tracker) DeleteTask(ctx context.Context, id int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.taskIndex(id) < 0 {
		return false, nil
	}
	kept := make([]domain.Task, 0, len(t.tasks)-1)
	for _, tk := range t.tasks {
		if tk.ID != id {
			kept = append(kept, tk)
		}
	}
	t.tasks = kept
	return true, t.commitLocked(ctx, t.change(domain.TaskDeleted, domain.EntityTask, id))
}

// ClearCompletedTasks removes every completed task once the caller has
// confirmed the action, and returns how many were removed.
func (t *Tracker) ClearCompletedTasks(ctx context.Context, confirmed bool) (int, error) {
	if !confirmed {
		return 0, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := make([]domain.Task, 0, len(t.tasks))
	for _, tk := range t.tasks {
		if !tk.Completed {
			kept = append(kept, tk)
		}
	}
	removed := len(t.tasks) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	t.tasks = kept
	return removed, t.commitLocked(ctx, t.change(domain.TasksCleared, domain.EntityTask, 0))
}

// SetFilter selects the task filter. The filter is view state and is not persisted.
func (t *Tracker) SetFilter(raw string) error {
	f, err := domain.ParseFilter(raw)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = f
	t.broker.publish(t.change(domain.FilterChanged, domain.EntityTask, 0))
	return nil
}

// FilteredTasks applies the current filter.
func (t *Tracker) FilteredTasks() []domain.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.FilterTasks(slices.Clone(t.tasks), t.filter)
}

func (t *Tracker) TaskStats() domain.TaskStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.ComputeTaskStats(t.tasks)
}

func (t *Tracker) taskIndex(id int64) int {
	for i := range t.tasks {
		if t.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
