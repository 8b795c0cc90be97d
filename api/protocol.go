package api

import "prism-tracker/domain"

const postBodyMaxSize = 64 * 1024 // 64 KiB

type addTaskRequest struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

type addNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type addGoalRequest struct {
	Text     string `json:"text"`
	Deadline string `json:"deadline"`
	Category string `json:"category"`
}

type filterRequest struct {
	Filter string `json:"filter"`
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

type filterResponse struct {
	Filter domain.Filter `json:"filter"`
}

type tasksResponse struct {
	Filter domain.Filter `json:"filter"`
	Tasks  []domain.Task `json:"tasks"`
}

type clearResponse struct {
	Removed int `json:"removed"`
}

type statsResponse struct {
	Tasks domain.TaskStats `json:"tasks"`
	Goals domain.GoalStats `json:"goals"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Persisted *bool  `json:"persisted,omitempty"`
}
