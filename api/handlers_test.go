package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"

	"prism-tracker/domain"
	"prism-tracker/storage"
	"prism-tracker/tracker"
)

type brokenSubstrate struct {
	*storage.MemorySubstrate
}

func (brokenSubstrate) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func newTestServer(t *testing.T, sub storage.Substrate) (*echo.Echo, *tracker.Tracker) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	tr := tracker.New(storage.New(sub, "", logger), logger)
	tr.Load(context.Background())
	e := NewServer(tr, logger, ServerOptions{Deduper: NewMemoryDeduper(time.Minute)})
	return e, tr
}

func do(t *testing.T, e *echo.Echo, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := sonic.ConfigStd.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t, storage.NewMemorySubstrate())
	rec := do(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestTaskLifecycle(t *testing.T) {
	e, tr := newTestServer(t, storage.NewMemorySubstrate())

	rec := do(t, e, http.MethodPost, "/api/tasks", `{"text":" Buy milk ","priority":"high"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add task: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	task := decode[domain.Task](t, rec)
	if task.Text != "Buy milk" || task.Priority != domain.PriorityHigh || task.ID == 0 {
		t.Fatalf("unexpected task: %#v", task)
	}
	id := itoa(task.ID)

	if rec := do(t, e, http.MethodPost, "/api/tasks/"+id+"/toggle", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("toggle: expected 204, got %d", rec.Code)
	}

	rec = do(t, e, http.MethodGet, "/api/tasks?filter=completed", "")
	list := decode[tasksResponse](t, rec)
	if list.Filter != domain.FilterCompleted || len(list.Tasks) != 1 || !list.Tasks[0].Completed {
		t.Fatalf("unexpected completed list: %#v", list)
	}
	rec = do(t, e, http.MethodGet, "/api/tasks?filter=active", "")
	if list := decode[tasksResponse](t, rec); len(list.Tasks) != 0 {
		t.Fatalf("expected no active tasks, got %#v", list.Tasks)
	}

	rec = do(t, e, http.MethodGet, "/api/stats", "")
	stats := decode[statsResponse](t, rec)
	if stats.Tasks != (domain.TaskStats{Total: 1, Completed: 1, Active: 0}) {
		t.Fatalf("unexpected stats: %#v", stats.Tasks)
	}

	if rec := do(t, e, http.MethodDelete, "/api/tasks/"+id, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodDelete, "/api/tasks/"+id, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
	if got := tr.Tasks(); len(got) != 0 {
		t.Fatalf("expected empty tasks, got %#v", got)
	}
}

func TestAddTaskRejectsInvalidInput(t *testing.T) {
	e, tr := newTestServer(t, storage.NewMemorySubstrate())

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{name: "blank", body: `{"text":"   "}`, status: http.StatusUnprocessableEntity, field: "text"},
		{name: "priority", body: `{"text":"x","priority":"urgent"}`, status: http.StatusUnprocessableEntity, field: "priority"},
		{name: "unknownField", body: `{"text":"x","owner":"me"}`, status: http.StatusBadRequest},
		{name: "malformed", body: `{"text":`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/api/tasks", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.field != "" {
				if resp := decode[errorResponse](t, rec); resp.Field != tt.field {
					t.Fatalf("expected field %q, got %#v", tt.field, resp)
				}
			}
		})
	}
	if got := tr.Tasks(); len(got) != 0 {
		t.Fatalf("expected no tasks, got %#v", got)
	}
}

func TestInvalidIDRejected(t *testing.T) {
	e, _ := newTestServer(t, storage.NewMemorySubstrate())
	if rec := do(t, e, http.MethodPost, "/api/tasks/abc/toggle", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPost, "/api/goals/42/toggle", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	e, tr := newTestServer(t, storage.NewMemorySubstrate())
	ctx := context.Background()
	done, _ := tr.AddTask(ctx, "done", "")
	if _, err := tr.AddTask(ctx, "open", ""); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if _, err := tr.ToggleTask(ctx, done.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if rec := do(t, e, http.MethodPost, "/api/tasks/clear-completed", `{}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 without confirm, got %d", rec.Code)
	}
	if len(tr.Tasks()) != 2 {
		t.Fatalf("unconfirmed clear changed state: %#v", tr.Tasks())
	}

	rec := do(t, e, http.MethodPost, "/api/tasks/clear-completed", `{"confirm":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decode[clearResponse](t, rec); resp.Removed != 1 {
		t.Fatalf("expected 1 removed, got %d", resp.Removed)
	}
	if tasks := tr.Tasks(); len(tasks) != 1 || tasks[0].Text != "open" {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
}

func TestNoteEditFlow(t *testing.T) {
	e, tr := newTestServer(t, storage.NewMemorySubstrate())

	rec := do(t, e, http.MethodPost, "/api/notes", `{"title":"Groceries","content":"eggs"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add note: expected 201, got %d", rec.Code)
	}
	note := decode[domain.Note](t, rec)

	if rec := do(t, e, http.MethodPost, "/api/notes/edit/commit", `{"title":"x","content":"y"}`); rec.Code != http.StatusConflict {
		t.Fatalf("commit without edit: expected 409, got %d", rec.Code)
	}

	rec = do(t, e, http.MethodPost, "/api/notes/"+itoa(note.ID)+"/edit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("begin edit: expected 200, got %d", rec.Code)
	}
	draft := decode[domain.NoteDraft](t, rec)
	if draft.NoteID != note.ID || draft.Title != "Groceries" || draft.Content != "eggs" {
		t.Fatalf("unexpected draft: %#v", draft)
	}

	if rec := do(t, e, http.MethodPost, "/api/notes/edit/commit", `{"title":" ","content":"milk"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank title: expected 422, got %d", rec.Code)
	}
	if _, ok := tr.EditingNote(); !ok {
		t.Fatalf("expected edit lock to survive invalid commit")
	}

	rec = do(t, e, http.MethodPost, "/api/notes/edit/commit", `{"title":"Shopping","content":"milk"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: expected 200, got %d", rec.Code)
	}
	if got := decode[domain.Note](t, rec); got.Title != "Shopping" || got.Content != "milk" || got.ID != note.ID {
		t.Fatalf("unexpected note: %#v", got)
	}
	if _, ok := tr.EditingNote(); ok {
		t.Fatalf("expected edit lock released")
	}

	if rec := do(t, e, http.MethodPost, "/api/notes/999/edit", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown note: expected 404, got %d", rec.Code)
	}
	do(t, e, http.MethodPost, "/api/notes/"+itoa(note.ID)+"/edit", "")
	if rec := do(t, e, http.MethodDelete, "/api/notes/edit", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("cancel: expected 204, got %d", rec.Code)
	}
	if _, ok := tr.EditingNote(); ok {
		t.Fatalf("expected cancel to release lock")
	}

	if rec := do(t, e, http.MethodPost, "/api/notes/clear", `{"confirm":true}`); rec.Code != http.StatusOK {
		t.Fatalf("clear notes: expected 200, got %d", rec.Code)
	}
	if notes := decode[[]domain.Note](t, do(t, e, http.MethodGet, "/api/notes", "")); len(notes) != 0 {
		t.Fatalf("expected notes cleared, got %#v", notes)
	}
}

func TestGoalsAndStateView(t *testing.T) {
	prev := clock
	clock = func() time.Time { return time.Date(2026, time.October, 18, 9, 0, 0, 0, time.Local) }
	t.Cleanup(func() { clock = prev })

	e, _ := newTestServer(t, storage.NewMemorySubstrate())

	rec := do(t, e, http.MethodPost, "/api/goals", `{"text":"Run 5k","deadline":"2026-10-01","category":"health"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add goal: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	late := decode[domain.Goal](t, rec)
	if late.Category != domain.CategoryHealth || late.Deadline.String() != "2026-10-01" {
		t.Fatalf("unexpected goal: %#v", late)
	}
	if rec := do(t, e, http.MethodPost, "/api/goals", `{"text":"Read","deadline":"someday"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad deadline: expected 422, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPost, "/api/goals", `{"text":"Save"}`); rec.Code != http.StatusCreated {
		t.Fatalf("add goal: expected 201, got %d", rec.Code)
	}

	if rec := do(t, e, http.MethodPut, "/api/filter", `{"filter":"active"}`); rec.Code != http.StatusOK {
		t.Fatalf("set filter: expected 200, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPut, "/api/filter", `{"filter":"later"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad filter: expected 422, got %d", rec.Code)
	}

	view := decode[tracker.View](t, do(t, e, http.MethodGet, "/api/state", ""))
	if view.Filter != domain.FilterActive {
		t.Fatalf("expected active filter, got %q", view.Filter)
	}
	if len(view.Goals) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(view.Goals))
	}
	if !view.Goals[0].Overdue || view.Goals[1].Overdue {
		t.Fatalf("unexpected overdue flags: %#v", view.Goals)
	}
	if view.Goals[1].DeadlineText != "No deadline" || view.Goals[1].Category != domain.CategoryPersonal {
		t.Fatalf("unexpected goal view: %#v", view.Goals[1])
	}

	if rec := do(t, e, http.MethodPost, "/api/goals/"+itoa(late.ID)+"/toggle", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("toggle goal: expected 204, got %d", rec.Code)
	}
	goals := decode[[]tracker.GoalView](t, do(t, e, http.MethodGet, "/api/goals", ""))
	if !goals[0].Completed || goals[0].Overdue {
		t.Fatalf("completed goal must not be overdue: %#v", goals[0])
	}
	stats := decode[statsResponse](t, do(t, e, http.MethodGet, "/api/stats", ""))
	if stats.Goals != (domain.GoalStats{Total: 2, Completed: 1, Percentage: 50}) {
		t.Fatalf("unexpected goal stats: %#v", stats.Goals)
	}
	if rec := do(t, e, http.MethodPost, "/api/goals/clear-completed", `{"confirm":true}`); rec.Code != http.StatusOK {
		t.Fatalf("clear goals: expected 200, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodDelete, "/api/goals/"+itoa(late.ID), ""); rec.Code != http.StatusNotFound {
		t.Fatalf("cleared goal: expected 404, got %d", rec.Code)
	}
}

func TestPersistenceFailureReported(t *testing.T) {
	e, tr := newTestServer(t, brokenSubstrate{storage.NewMemorySubstrate()})

	rec := do(t, e, http.MethodPost, "/api/tasks", `{"text":"Buy milk"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decode[errorResponse](t, rec)
	if resp.Persisted == nil || *resp.Persisted {
		t.Fatalf("expected persisted=false, got %#v", resp)
	}
	if got := tr.Tasks(); len(got) != 1 {
		t.Fatalf("in-memory state must keep the task, got %#v", got)
	}
}

func TestGzipRequestBody(t *testing.T) {
	e, tr := newTestServer(t, storage.NewMemorySubstrate())

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(`{"text":"Compressed"}`)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if tasks := tr.Tasks(); len(tasks) != 1 || tasks[0].Text != "Compressed" {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}

	zw = gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(`{"text":"Listed"}`)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/api/tasks", &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderContentEncoding, "identity, GZIP")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for listed encoding, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("not gzip"))
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid gzip, got %d", rec.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	e, tr := newTestServer(t, storage.NewMemorySubstrate())
	body := `{"text":"` + strings.Repeat("a", postBodyMaxSize) + `"}`
	rec := do(t, e, http.MethodPost, "/api/tasks", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if len(tr.Tasks()) != 0 {
		t.Fatalf("oversized body must not create a task")
	}
}

func TestGzipEncoded(t *testing.T) {
	tests := map[string]bool{
		"":              false,
		"gzip":          true,
		"GZIP":          true,
		"deflate, gzip": true,
		"br":            false,
	}
	for header, want := range tests {
		if got := gzipEncoded(header); got != want {
			t.Fatalf("gzipEncoded(%q) = %v, want %v", header, got, want)
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
