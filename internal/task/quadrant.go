package task

// Quadrant is the display partition of a pool task by (urgent, important).
type Quadrant int

const (
	QuadrantASAP Quadrant = iota
	QuadrantSoon
	QuadrantPending
	QuadrantLeisure
)

func Quadrants() []Quadrant {
	return []Quadrant{QuadrantASAP, QuadrantSoon, QuadrantPending, QuadrantLeisure}
}

func QuadrantOf(urgent, important bool) Quadrant {
	switch {
	case urgent && important:
		return QuadrantASAP
	case important:
		return QuadrantSoon
	case urgent:
		return QuadrantPending
	default:
		return QuadrantLeisure
	}
}

func (t Task) Quadrant() Quadrant {
	return QuadrantOf(t.Urgent, t.Important)
}

func (q Quadrant) String() string {
	switch q {
	case QuadrantASAP:
		return "ASAP"
	case QuadrantSoon:
		return "SOON"
	case QuadrantPending:
		return "PENDING"
	case QuadrantLeisure:
		return "LEISURE"
	default:
		return "UNKNOWN"
	}
}

// PriorityLabel is the label handed to the external planner.
func (t Task) PriorityLabel() string {
	if t.Habit {
		return "BASICS"
	}
	return t.Quadrant().String()
}
