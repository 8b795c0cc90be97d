package tracker

import (
	"slices"
	"time"

	"prism-tracker/domain"
)

// GoalView is a goal annotated for display.
type GoalView struct {
	domain.Goal
	Overdue      bool   `json:"overdue"`
	DeadlineText string `json:"deadlineText"`
}

// View is everything a shell needs to render the tracker at one instant.
type View struct {
	Filter    domain.Filter     `json:"filter"`
	Tasks     []domain.Task     `json:"tasks"`
	TaskStats domain.TaskStats  `json:"taskStats"`
	Notes     []domain.Note     `json:"notes"`
	Editing   *domain.NoteDraft `json:"editing,omitempty"`
	Goals     []GoalView        `json:"goals"`
	GoalStats domain.GoalStats  `json:"goalStats"`
}

// View derives the render model from the current state. Overdue flags are
// evaluated against now.
func (t *Tracker) View(now time.Time) View {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := View{
		Filter:    t.filter,
		Tasks:     domain.FilterTasks(slices.Clone(t.tasks), t.filter),
		TaskStats: domain.ComputeTaskStats(t.tasks),
		Notes:     slices.Clone(t.notes),
		Goals:     make([]GoalView, 0, len(t.goals)),
		GoalStats: domain.ComputeGoalStats(t.goals),
	}
	if t.edit != nil {
		draft := *t.edit
		v.Editing = &draft
	}
	for _, g := range t.goals {
		v.Goals = append(v.Goals, GoalView{
			Goal:         g,
			Overdue:      domain.GoalOverdue(g, now),
			DeadlineText: domain.DeadlineText(g.Deadline),
		})
	}
	return v
}
