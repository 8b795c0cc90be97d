package domain

import (
	"math"
	"time"
	"unicode/utf8"
)

// TaskStats summarizes the task list.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}

// GoalStats summarizes goal progress.
type GoalStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// FilterTasks returns the tasks matching filter in their original order.
// FilterAll returns the input unchanged.
func FilterTasks(tasks []Task, filter Filter) []Task {
	if filter == FilterAll || filter == "" {
		return tasks
	}
	want := filter == FilterCompleted
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed == want {
			out = append(out, t)
		}
	}
	return out
}

func ComputeTaskStats(tasks []Task) TaskStats {
	s := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Active = s.Total - s.Completed
	return s
}

func ComputeGoalStats(goals []Goal) GoalStats {
	s := GoalStats{Total: len(goals)}
	for _, g := range goals {
		if g.Completed {
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.Percentage = int(math.Round(100 * float64(s.Completed) / float64(s.Total)))
	}
	return s
}

// IsOverdue reports whether deadline falls on a calendar day strictly before
// the day of now, evaluated in now's location. A zero deadline is never overdue.
func IsOverdue(deadline Date, now time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	return deadline.Before(DateOf(now))
}

// GoalOverdue reports whether an open goal has passed its deadline.
func GoalOverdue(g Goal, now time.Time) bool {
	return !g.Completed && IsOverdue(g.Deadline, now)
}

const displayLayout = "Jan 2, 2006 15:04"

// FormatDate renders ts as a date plus short time in loc. A nil loc means local time.
func FormatDate(ts time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format(displayLayout)
}

// DeadlineText renders a goal deadline for display.
func DeadlineText(d Date) string {
	if d.IsZero() {
		return "No deadline"
	}
	return d.In(time.UTC).Format("Jan 2, 2006")
}

// CharCount counts the characters of draft note content.
func CharCount(content string) int {
	return utf8.RuneCountInString(content)
}
