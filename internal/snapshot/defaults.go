package snapshot

import (
	"time"

	"weekplan/internal/task"
	"weekplan/internal/week"
)

// Seed is the backlog a fresh planner starts with.
func Seed() []task.Task {
	return []task.Task{
		{ID: 101, Text: "Review Report", Urgent: true, Important: true, Duration: 120},
		{ID: 102, Text: "Fix critical bugs", Urgent: true, Important: true, Duration: 180},
		{ID: 103, Text: "Client presentation", Urgent: true, Important: true, Duration: 90},
		{ID: 104, Text: "Brainstorm ideas", Important: true, Duration: 90},
		{ID: 105, Text: "Order calendar", Important: true, Duration: 60},
		{ID: 106, Text: "Research eBay auto", Important: true, Duration: 120},
		{ID: 108, Text: "Schedule dentist", Urgent: true, Duration: 15},
		{ID: 109, Text: "Pay electricity", Urgent: true, Duration: 10},
		{ID: 110, Text: "Check mails", Urgent: true, Duration: 30},
		{ID: 111, Text: "Organize Photos", Duration: 180},
		{ID: 113, Text: "Read one chapter", Duration: 30},
		{ID: 201, Text: "Vacuum", Habit: true, Duration: 20},
		{ID: 202, Text: "Clean Up", Habit: true, Duration: 15},
		{ID: 203, Text: "Trash Out", Habit: true, Duration: 5},
	}
}

// Default is the seeded backlog and an empty week for now.
func Default(now time.Time) State {
	return State{
		AllWeeks: map[week.Key]week.Week{week.KeyFor(now, 0): week.New()},
		TodoPool: Seed(),
	}
}
