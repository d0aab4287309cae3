// Package planner defines the contract with an external bulk scheduler: the
// request built from the backlog and the plan it answers with.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"weekplan/internal/task"
	"weekplan/internal/week"
)

// Assignment places one backlog task into a (day, category) slot.
type Assignment struct {
	ID       task.ID       `json:"id"`
	Day      week.Day      `json:"day"`
	Category week.Category `json:"category"`
}

type RequestTask struct {
	ID       task.ID `json:"id"`
	Text     string  `json:"text"`
	Duration int     `json:"duration"`
	Priority string  `json:"priority"`
}

type Request struct {
	WeekKey    week.Key         `json:"week"`
	Tasks      []RequestTask    `json:"tasks"`
	Load       map[week.Day]int `json:"load"`
	Capacity   int              `json:"capacity"`
	Categories []week.Category  `json:"categories"`
	Prompt     string           `json:"prompt"`
}

type Response struct {
	Plan []Assignment `json:"plan"`
}

// Planner produces a plan for a request. An empty plan means nothing to apply.
type Planner interface {
	Plan(ctx context.Context, req Request) ([]Assignment, error)
}

// PlanCategories are the slots a planner may fill; habits own basics.
var PlanCategories = []week.Category{week.Goal, week.Focus, week.Work, week.Leisure}

// NewRequest describes the backlog and the current load of w.
func NewRequest(key week.Key, backlog []task.Task, w week.Week, capacity int) Request {
	req := Request{
		WeekKey:    key,
		Tasks:      make([]RequestTask, 0, len(backlog)),
		Load:       make(map[week.Day]int, len(week.Days)),
		Capacity:   capacity,
		Categories: PlanCategories,
	}
	for _, t := range backlog {
		req.Tasks = append(req.Tasks, RequestTask{
			ID:       t.ID,
			Text:     t.Text,
			Duration: t.Duration,
			Priority: t.PriorityLabel(),
		})
	}
	for _, d := range week.Days {
		req.Load[d] = w.Minutes(d)
	}
	req.Prompt = Prompt(req)
	return req
}

// DecodeResponse parses {"plan": [...]}. Blank input or a missing plan is not an error.
func DecodeResponse(data []byte) ([]Assignment, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return resp.Plan, nil
}
