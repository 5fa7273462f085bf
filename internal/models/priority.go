package models

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Level maps a priority onto 1 (low) through 3 (high); unknown values are 0.
func (p Priority) Level() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// Label returns the human readable name shown in pickers.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low Priority"
	case PriorityMedium:
		return "Medium Priority"
	case PriorityHigh:
		return "High Priority"
	default:
		return "Unknown Priority"
	}
}

// PriorityFromLevel is the inverse of Level.
func PriorityFromLevel(level int) (Priority, bool) {
	if level < 1 || level > len(Priorities) {
		return "", false
	}
	return Priorities[level-1], true
}
