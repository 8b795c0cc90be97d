package tracker

import (
	"context"

	"prism-tracker/domain"
)

// AddGoal appends an open goal. deadline is optional ("YYYY-MM-DD"); an empty
// category selects the default one.
func (t *Tracker) AddGoal(ctx context.Context, text, deadline, category string) (domain.Goal, error) {
	text, err := domain.RequireText("text", text)
	if err != nil {
		return domain.Goal{}, err
	}
	d, err := domain.ParseDate(deadline)
	if err != nil {
		return domain.Goal{}, err
	}
	c, err := domain.ParseCategory(category)
	if err != nil {
		return domain.Goal{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	goal := domain.Goal{ID: t.ids.Next(), Text: text, Deadline: d, Category: c, CreatedAt: t.now().UTC()}
	t.goals = append(t.goals, goal)
	return goal, t.commitLocked(ctx, t.change(domain.GoalAdded, domain.EntityGoal, goal.ID))
}

func (t *Tracker) ToggleGoal(ctx context.Context, id int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.goalIndex(id)
	if i < 0 {
		return false, nil
	}
	t.goals[i].Completed = !t.goals[i].Completed
	typ := domain.GoalReopened
	if t.goals[i].Completed {
		typ = domain.GoalCompleted
	}
	return true, t.commitLocked(ctx, t.change(typ, domain.EntityGoal, id))
}

func (t *Tracker) DeleteGoal(ctx context.Context, id int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.goalIndex(id) < 0 {
		return false, nil
	}
	kept := make([]domain.Goal, 0, len(t.goals)-1)
	for _, g := range t.goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	t.goals = kept
	return true, t.commitLocked(ctx, t.change(domain.GoalDeleted, domain.EntityGoal, id))
}

func (t *Tracker) ClearCompletedGoals(ctx context.Context, confirmed bool) (int, error) {
	if !confirmed {
		return 0, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := make([]domain.Goal, 0, len(t.goals))
	for _, g := range t.goals {
		if !g.Completed {
			kept = append(kept, g)
		}
	}
	removed := len(t.goals) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	t.goals = kept
	return removed, t.commitLocked(ctx, t.change(domain.GoalsCleared, domain.EntityGoal, 0))
}

func (t *Tracker) GoalStats() domain.GoalStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.ComputeGoalStats(t.goals)
}

func (t *Tracker) goalIndex(id int64) int {
	for i := range t.goals {
		if t.goals[i].ID == id {
			return i
		}
	}
	return -1
}
