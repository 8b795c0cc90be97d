package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"prism-tracker/domain"
)

// clock supplies the instant overdue flags are evaluated against.
var clock = time.Now

// Register wires up all tracker routes on the provided Echo instance.
func Register(e *echo.Echo, tr Tracker, deduper Deduper, logger *log.Logger) {
	e.Use(RequestMetrics(logger))
	e.Use(Idempotency(deduper, logger))

	e.GET("/healthz", healthz())
	e.GET("/stream", streamState(tr, logger))

	g := e.Group("/api")
	g.GET("/state", getState(tr))
	g.GET("/stats", getStats(tr))
	g.PUT("/filter", putFilter(tr))

	g.GET("/tasks", getTasks(tr))
	g.POST("/tasks", postTask(tr))
	g.POST("/tasks/clear-completed", clearCompletedTasks(tr))
	g.POST("/tasks/:id/toggle", toggleTask(tr))
	g.DELETE("/tasks/:id", deleteTask(tr))

	g.GET("/notes", getNotes(tr))
	g.POST("/notes", postNote(tr))
	g.POST("/notes/clear", clearNotes(tr))
	g.POST("/notes/edit/commit", commitEdit(tr))
	g.DELETE("/notes/edit", cancelEdit(tr))
	g.POST("/notes/:id/edit", beginEdit(tr))
	g.DELETE("/notes/:id", deleteNote(tr))

	g.GET("/goals", getGoals(tr))
	g.POST("/goals", postGoal(tr))
	g.POST("/goals/clear-completed", clearCompletedGoals(tr))
	g.POST("/goals/:id/toggle", toggleGoal(tr))
	g.DELETE("/goals/:id", deleteGoal(tr))
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getState(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, tr.View(clock()))
	}
}

func getStats(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, statsResponse{Tasks: tr.TaskStats(), Goals: tr.GoalStats()})
	}
}

func putFilter(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req filterRequest
		if err := decodeBody(c, &req); err != nil {
			return invalidBody(c, err)
		}
		if err := tr.SetFilter(req.Filter); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, filterResponse{Filter: tr.Filter()})
	}
}

func getTasks(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter := tr.Filter()
		if raw := strings.TrimSpace(c.QueryParam("filter")); raw != "" {
			f, err := domain.ParseFilter(raw)
			if err != nil {
				return writeError(c, err)
			}
			filter = f
		}
		return c.JSON(http.StatusOK, tasksResponse{
			Filter: filter,
			Tasks:  domain.FilterTasks(tr.Tasks(), filter),
		})
	}
}

func postTask(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req addTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return invalidBody(c, err)
		}
		task, err := tr.AddTask(c.Request().Context(), req.Text, req.Priority)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func toggleTask(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		found, err := tr.ToggleTask(c.Request().Context(), id)
		return mutationResult(c, found, err)
	}
}

func deleteTask(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		found, err := tr.DeleteTask(c.Request().Context(), id)
		return mutationResult(c, found, err)
	}
}

func clearCompletedTasks(tr Tracker) echo.HandlerFunc {
	return clearHandler(tr.ClearCompletedTasks)
}

func getNotes(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, tr.Notes())
	}
}

func postNote(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req addNoteRequest
		if err := decodeBody(c, &req); err != nil {
			return invalidBody(c, err)
		}
		note, err := tr.AddNote(c.Request().Context(), req.Title, req.Content)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, note)
	}
}

func deleteNote(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		found, err := tr.DeleteNote(c.Request().Context(), id)
		return mutationResult(c, found, err)
	}
}

func beginEdit(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		draft, ok := tr.BeginEditNote(id)
		if !ok {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, draft)
	}
}

func commitEdit(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req addNoteRequest
		if err := decodeBody(c, &req); err != nil {
			return invalidBody(c, err)
		}
		note, err := tr.CommitEditNote(c.Request().Context(), req.Title, req.Content)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, note)
	}
}

func cancelEdit(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		tr.CancelEditNote()
		return c.NoContent(http.StatusNoContent)
	}
}

func clearNotes(tr Tracker) echo.HandlerFunc {
	return clearHandler(tr.ClearAllNotes)
}

func getGoals(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, tr.View(clock()).Goals)
	}
}

func postGoal(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req addGoalRequest
		if err := decodeBody(c, &req); err != nil {
			return invalidBody(c, err)
		}
		goal, err := tr.AddGoal(c.Request().Context(), req.Text, req.Deadline, req.Category)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, goal)
	}
}

func toggleGoal(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		found, err := tr.ToggleGoal(c.Request().Context(), id)
		return mutationResult(c, found, err)
	}
}

func deleteGoal(tr Tracker) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		found, err := tr.DeleteGoal(c.Request().Context(), id)
		return mutationResult(c, found, err)
	}
}

func clearCompletedGoals(tr Tracker) echo.HandlerFunc {
	return clearHandler(tr.ClearCompletedGoals)
}

func clearHandler(clear func(ctx context.Context, confirmed bool) (int, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req confirmRequest
		if err := decodeBody(c, &req); err != nil && !errors.Is(err, io.EOF) {
			return invalidBody(c, err)
		}
		if !req.Confirm {
			setErrorStage(c, "unconfirmed")
			return c.JSON(http.StatusConflict, errorResponse{Error: "confirmation required"})
		}
		removed, err := clear(c.Request().Context(), true)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, clearResponse{Removed: removed})
	}
}

// decodeBody reads at most postBodyMaxSize bytes of JSON into v. Unknown
// fields are rejected.
func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, postBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		setErrorStage(c, "invalid_id")
		return 0, c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}
	return id, nil
}

func mutationResult(c echo.Context, found bool, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	if !found {
		return notFound(c)
	}
	return c.NoContent(http.StatusNoContent)
}

func notFound(c echo.Context) error {
	setErrorStage(c, "not_found")
	return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
}

func invalidBody(c echo.Context, err error) error {
	setErrorStage(c, "decode_body")
	recordError(c, err)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
}

// writeError maps tracker errors onto status codes.
func writeError(c echo.Context, err error) error {
	recordError(c, err)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		setErrorStage(c, "validation")
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, domain.ErrNoActiveEdit):
		setErrorStage(c, "no_active_edit")
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrPersistence):
		// memory already holds the change; only the durable write failed
		markApplied(c)
		setErrorStage(c, "storage")
		persisted := false
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), Persisted: &persisted})
	default:
		setErrorStage(c, "internal")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
