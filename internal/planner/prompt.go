package planner

import (
	"fmt"
	"strings"

	"weekplan/internal/week"
)

// Prompt renders the instructions an AI-backed planner forwards to its model.
func Prompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an expert life planner. Create a scheduling plan for the backlog tasks below so they fit into a 7-day week.\n\n")
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "1. Each day holds at most %d minutes. Account for the time already scheduled.\n", req.Capacity)
	b.WriteString("2. Schedule ASAP and SOON tasks early in the week (Monday to Wednesday); lower priorities later.\n")
	fmt.Fprintf(&b, "3. Use only these categories: %s.\n", joinCategories(req.Categories))
	b.WriteString("4. The goal category holds AT MOST ONE task per day: the day's single most important task.\n")
	b.WriteString("5. Keep the original task ids.\n")
	b.WriteString("6. Leave out any task that does not fit.\n\n")

	b.WriteString("Backlog:\n")
	for _, t := range req.Tasks {
		fmt.Fprintf(&b, "- %q (ID: %d, Duration: %dm, Priority: %s)\n", t.Text, t.ID, t.Duration, t.Priority)
	}

	b.WriteString("\nAlready scheduled:\n")
	for _, d := range week.Days {
		fmt.Fprintf(&b, "%s: %d minutes\n", d, req.Load[d])
	}

	b.WriteString("\nAnswer with a JSON object {\"plan\": [{\"id\": <task id>, \"day\": <MONDAY..SUNDAY>, \"category\": <category>}]}.\n")
	return b.String()
}

func joinCategories(cats []week.Category) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
