package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category groups goals.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategoryFinance  Category = "finance"
)

// Categories lists the accepted goal categories in display order.
var Categories = []Category{CategoryPersonal, CategoryWork, CategoryHealth, CategoryLearning, CategoryFinance}

// ParseCategory normalizes raw input. An empty value selects CategoryPersonal.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" {
		return CategoryPersonal, nil
	}
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", raw)}
}

// Goal is a longer-lived objective with an optional deadline.
type Goal struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Deadline  Date      `json:"deadline"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day. The zero value means "no date"
// and is encoded as an empty string.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "YYYY-MM-DD". Blank input yields the zero Date.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, &ValidationError{Field: "deadline", Reason: "must be formatted as YYYY-MM-DD"}
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.In(time.UTC).Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD", full RFC 3339 timestamps, "" and null.
// Any other deadline decodes as the zero Date so one bad field cannot void a
// whole stored collection; IsStoredDate reports which values were dropped.
func (d *Date) UnmarshalJSON(data []byte) error {
	*d = Date{}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if parsed, ok := parseStoredDate(raw); ok {
		*d = parsed
	}
	return nil
}

// IsStoredDate reports whether raw decodes to a Date without loss.
func IsStoredDate(raw string) bool {
	_, ok := parseStoredDate(raw)
	return ok
}

func parseStoredDate(raw string) (Date, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, true
	}
	layout := dateLayout
	if len(raw) > len(dateLayout) {
		layout = time.RFC3339
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return Date{}, false
	}
	return DateOf(t), true
}
