package week

import (
	"fmt"
	"time"
)

// Key identifies a calendar week, e.g. "2026-W43".
type Key string

// MondayOf returns local midnight of the Monday starting the week that
// contains now shifted by offset weeks.
func MondayOf(now time.Time, offset int) time.Time {
	d := now.AddDate(0, 0, offset*7)
	wd := int(d.Weekday())
	diff := 1 - wd
	if wd == 0 {
		diff = -6
	}
	m := d.AddDate(0, 0, diff)
	return time.Date(m.Year(), m.Month(), m.Day(), 0, 0, 0, 0, m.Location())
}

// KeyFor numbers weeks by the year of their Monday:
// week = ceil((days since Jan 1 + weekday of Jan 1 + 1) / 7), Sunday = 0.
func KeyFor(now time.Time, offset int) Key {
	m := MondayOf(now, offset)
	jan1 := time.Date(m.Year(), time.January, 1, 0, 0, 0, 0, m.Location())
	past := m.YearDay() - 1
	n := (past + int(jan1.Weekday()) + 1 + 6) / 7
	return Key(fmt.Sprintf("%d-W%02d", m.Year(), n))
}

func Dates(now time.Time, offset int) [7]time.Time {
	var out [7]time.Time
	m := MondayOf(now, offset)
	for i := range out {
		out[i] = m.AddDate(0, 0, i)
	}
	return out
}

// RangeLabel renders the week span as "DD.MM - DD.MM".
func RangeLabel(now time.Time, offset int) string {
	dates := Dates(now, offset)
	return fmt.Sprintf("%s - %s", dates[0].Format("02.01"), dates[6].Format("02.01"))
}

// Today is the Day of now, Monday first.
func Today(now time.Time) Day {
	wd := int(now.Weekday())
	if wd == 0 {
		return Sunday
	}
	return Days[wd-1]
}
