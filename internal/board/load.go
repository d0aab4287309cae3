package board

import (
	"fmt"
	"math"

	"weekplan/internal/week"
)

type DayLoad struct {
	Day     week.Day
	Minutes int
	Percent float64
	Color   string
}

// DailyLoad reports the scheduled minutes of each day of the viewed week.
func (b *Board) DailyLoad() [7]DayLoad {
	b.mu.Lock()
	w := b.weeks.Get(b.currentKey())
	var out [7]DayLoad
	for i, d := range week.Days {
		out[i] = newDayLoad(d, w.Minutes(d), b.capacity)
	}
	b.mu.Unlock()
	return out
}

func newDayLoad(d week.Day, minutes, capacity int) DayLoad {
	pct := 0.0
	if capacity > 0 {
		pct = math.Min(float64(minutes)/float64(capacity)*100, 100)
	}
	return DayLoad{Day: d, Minutes: minutes, Percent: pct, Color: LoadColor(pct)}
}

// LoadColor ramps from green at 0% to red at 100%.
func LoadColor(percent float64) string {
	p := math.Max(0, math.Min(percent, 100)) / 100
	return hslToHex(120*(1-p), 90, 55-20*p)
}

func hslToHex(h, s, l float64) string {
	l /= 100
	a := s * math.Min(l, 1-l) / 100
	f := func(n float64) int {
		k := math.Mod(n+h/30, 12)
		c := l - a*math.Max(math.Min(math.Min(k-3, 9-k), 1), -1)
		return int(math.Round(255 * c))
	}
	return fmt.Sprintf("#%02x%02x%02x", f(0), f(8), f(4))
}
