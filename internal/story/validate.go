package story

import (
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// ValidateTiming checks the fields the schedule depends on: ids and durations.
func ValidateTiming(steps []Step) error {
	seen := make(map[string]int, len(steps))
	for i, s := range steps {
		if s.ID == "" {
			return &StepError{Index: i, Field: "id", Reason: "must not be empty"}
		}
		if prev, ok := seen[s.ID]; ok {
			return &StepError{Index: i, ID: s.ID, Field: "id", Reason: "duplicates step " + strconv.Itoa(prev)}
		}
		seen[s.ID] = i
		if s.DurationMs < 0 {
			return &StepError{Index: i, ID: s.ID, Field: "durationMs", Reason: "must not be negative"}
		}
	}
	return nil
}

// Validate checks timing plus the per-variant drawing attributes.
func Validate(steps []Step) error {
	if err := ValidateTiming(steps); err != nil {
		return err
	}
	for i, s := range steps {
		switch s.Kind {
		case KindPath:
			if !finitePositive(s.StrokeWidth) {
				return &StepError{Index: i, ID: s.ID, Field: "strokeWidth", Reason: "must be > 0"}
			}
			if _, err := ParseColor(s.Stroke); err != nil {
				return &StepError{Index: i, ID: s.ID, Field: "stroke", Reason: err.Error()}
			}
		case KindText:
			if !finitePositive(s.FontSize) {
				return &StepError{Index: i, ID: s.ID, Field: "fontSize", Reason: "must be > 0"}
			}
			if math.IsNaN(s.X) || math.IsInf(s.X, 0) || math.IsNaN(s.Y) || math.IsInf(s.Y, 0) {
				return &StepError{Index: i, ID: s.ID, Field: "position", Reason: "must be finite"}
			}
			switch s.TextAnchor() {
			case AnchorStart, AnchorMiddle, AnchorEnd:
			default:
				return &StepError{Index: i, ID: s.ID, Field: "anchor", Reason: "unknown anchor " + string(s.Anchor)}
			}
		default:
			return &StepError{Index: i, ID: s.ID, Field: "kind", Reason: "unknown kind " + string(s.Kind)}
		}
	}
	return nil
}

// ParseColor parses a CSS hex color (#rgb or #rrggbb)
func ParseColor(s string) (colorful.Color, error) {
	return colorful.Hex(s)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
