package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"weekplan/internal/task"
	"weekplan/internal/week"
)

// parse decodes into untyped values so field types can be checked before
// anything is trusted. Numbers stay json.Number.
func parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, invalid("", "malformed JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, invalid("", "trailing data after document")
	}
	return v, nil
}

func parsePool(path string, v any) ([]task.Task, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, invalid(path, "must be an array")
	}
	tasks := make([]task.Task, 0, len(list))
	for i, item := range list {
		t, err := parseTask(fmt.Sprintf("%s[%d]", path, i), item)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func parseWeeks(path string, v any) (map[week.Key]week.Week, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, invalid(path, "must be an object")
	}
	weeks := make(map[week.Key]week.Week, len(obj))
	for key, rw := range obj {
		w, err := parseWeek(path+"."+key, rw)
		if err != nil {
			return nil, err
		}
		weeks[week.Key(key)] = w
	}
	return weeks, nil
}

func parseWeek(path string, v any) (week.Week, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, invalid(path, "must be an object")
	}
	for name := range obj {
		if !week.Day(name).Valid() {
			return nil, invalid(path+"."+name, "unknown day")
		}
	}
	w := make(week.Week, len(week.Days))
	for _, d := range week.Days {
		dayPath := path + "." + string(d)
		rd, ok := obj[string(d)]
		if !ok {
			return nil, invalid(dayPath, "missing day")
		}
		dayObj, ok := rd.(map[string]any)
		if !ok {
			return nil, invalid(dayPath, "must be an object")
		}
		for name := range dayObj {
			if !week.Category(name).Valid() {
				return nil, invalid(dayPath+"."+name, "unknown category")
			}
		}
		dt := make(week.DayTasks, len(week.Categories))
		for _, c := range week.Categories {
			catPath := dayPath + "." + string(c)
			rc, ok := dayObj[string(c)]
			if !ok {
				return nil, invalid(catPath, "missing category")
			}
			items, ok := rc.([]any)
			if !ok {
				return nil, invalid(catPath, "must be an array")
			}
			list := make([]task.Task, 0, len(items))
			for i, item := range items {
				t, err := parseTask(fmt.Sprintf("%s[%d]", catPath, i), item)
				if err != nil {
					return nil, err
				}
				list = append(list, t)
			}
			dt[c] = list
		}
		w[d] = dt
	}
	return w, nil
}

func parseTask(path string, v any) (task.Task, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return task.Task{}, invalid(path, "task must be an object")
	}
	var t task.Task

	id, err := intField(obj, path, "id")
	if err != nil {
		return task.Task{}, err
	}
	if id <= 0 {
		return task.Task{}, invalid(path+".id", "must be positive")
	}
	t.ID = task.ID(id)

	text, ok := obj["text"].(string)
	if !ok {
		return task.Task{}, invalid(path+".text", "must be a string")
	}
	if strings.TrimSpace(text) == "" {
		return task.Task{}, invalid(path+".text", "must not be empty")
	}
	t.Text = text

	dur, err := intField(obj, path, "duration")
	if err != nil {
		return task.Task{}, err
	}
	if dur <= 0 {
		return task.Task{}, invalid(path+".duration", "must be positive")
	}
	t.Duration = int(dur)

	flags := []struct {
		name string
		dst  *bool
	}{
		{"completed", &t.Completed},
		{"urgent", &t.Urgent},
		{"important", &t.Important},
		{"habit", &t.Habit},
	}
	for _, f := range flags {
		raw, ok := obj[f.name]
		if !ok {
			continue
		}
		b, ok := raw.(bool)
		if !ok {
			return task.Task{}, invalid(path+"."+f.name, "must be a boolean")
		}
		*f.dst = b
	}

	if raw, ok := obj["sourceId"]; ok && raw != nil {
		src, err := intField(obj, path, "sourceId")
		if err != nil {
			return task.Task{}, err
		}
		sid := task.ID(src)
		t.SourceID = &sid
	}
	return t, nil
}

// intField reads a required integral number. 30 and 30.0 are both accepted.
func intField(obj map[string]any, path, name string) (int64, error) {
	raw, ok := obj[name]
	if !ok {
		return 0, invalid(path+"."+name, "missing")
	}
	n, ok := raw.(json.Number)
	if !ok {
		return 0, invalid(path+"."+name, "must be a number")
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, invalid(path+"."+name, "must be an integer")
	}
	return int64(f), nil
}
