package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateJSON(t *testing.T) {
	g := Goal{ID: 7, Text: "run", Deadline: Date{Year: 2020, Month: time.January, Day: 1}, Category: CategoryHealth}
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["deadline"] != "2020-01-01" {
		t.Fatalf("unexpected encoded deadline: %#v", raw["deadline"])
	}

	g.Deadline = Date{}
	data, _ = json.Marshal(g)
	var back Goal
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Deadline.IsZero() {
		t.Fatalf("expected empty deadline to decode as zero, got %#v", back.Deadline)
	}
}

func TestDateUnmarshalVariants(t *testing.T) {
	tests := []struct {
		in    string
		want  Date
		lossy bool
	}{
		{in: `""`, want: Date{}},
		{in: `null`, want: Date{}},
		{in: `"2024-02-29"`, want: Date{Year: 2024, Month: time.February, Day: 29}},
		{in: `"2024-02-29T10:00:00Z"`, want: Date{Year: 2024, Month: time.February, Day: 29}},
		{in: `"29/02/2024"`, want: Date{}, lossy: true},
		{in: `"next friday"`, want: Date{}, lossy: true},
		{in: `20240229`, want: Date{}, lossy: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Date
			if err := json.Unmarshal([]byte(tt.in), &d); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.in, err)
			}
			if d != tt.want {
				t.Fatalf("got %#v, want %#v", d, tt.want)
			}
			var raw string
			if json.Unmarshal([]byte(tt.in), &raw) == nil && IsStoredDate(raw) == tt.lossy {
				t.Fatalf("IsStoredDate(%q) = %v", raw, !tt.lossy)
			}
		})
	}
}

func TestGoalsSurviveOneBadDeadline(t *testing.T) {
	payload := `[{"id":1,"text":"a","deadline":"2024-05-01"},{"id":2,"text":"b","deadline":"someday"}]`
	var goals []Goal
	if err := json.Unmarshal([]byte(payload), &goals); err != nil {
		t.Fatalf("unmarshal goals: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("expected both goals, got %d", len(goals))
	}
	if goals[0].Deadline != (Date{Year: 2024, Month: time.May, Day: 1}) {
		t.Fatalf("unexpected first deadline %#v", goals[0].Deadline)
	}
	if !goals[1].Deadline.IsZero() {
		t.Fatalf("expected unparseable deadline to decode as zero, got %#v", goals[1].Deadline)
	}
}

func TestParseInputs(t *testing.T) {
	if p, err := ParsePriority(""); err != nil || p != PriorityMedium {
		t.Fatalf("ParsePriority(\"\") = %q, %v", p, err)
	}
	if p, err := ParsePriority(" HIGH "); err != nil || p != PriorityHigh {
		t.Fatalf("ParsePriority(HIGH) = %q, %v", p, err)
	}
	if _, err := ParsePriority("urgent"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if c, err := ParseCategory(""); err != nil || c != CategoryPersonal {
		t.Fatalf("ParseCategory(\"\") = %q, %v", c, err)
	}
	if _, err := ParseCategory("hobby"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseFilter("done"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseDate("tomorrow"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := RequireText("text", "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
