package story

// Kind tags the variant of a Step
type Kind string

const (
	KindPath Kind = "path"
	KindText Kind = "text"
)

// Anchor is the horizontal alignment of a text step relative to its X
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Storyboard is an ordered list of timed drawing steps for one animation
type Storyboard struct {
	Version string `yaml:"version"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Steps   []Step `yaml:"steps"`
}

// Step is either a path step or a text step, depending on Kind.
// Fields of the other variant are left zero.
type Step struct {
	Kind       Kind   `yaml:"kind"`
	ID         string `yaml:"id"`
	DurationMs int    `yaml:"durationMs"`

	// Path
	D           string  `yaml:"d,omitempty"`
	Stroke      string  `yaml:"stroke,omitempty"`
	StrokeWidth float64 `yaml:"strokeWidth,omitempty"`

	// Text
	X        float64 `yaml:"x,omitempty"`
	Y        float64 `yaml:"y,omitempty"`
	Content  string  `yaml:"content,omitempty"`
	FontSize float64 `yaml:"fontSize,omitempty"`
	Anchor   Anchor  `yaml:"anchor,omitempty"`
}

// PathStep builds a path step
func PathStep(id, d, stroke string, strokeWidth float64, durationMs int) Step {
	return Step{
		Kind:        KindPath,
		ID:          id,
		DurationMs:  durationMs,
		D:           d,
		Stroke:      stroke,
		StrokeWidth: strokeWidth,
	}
}

// TextStep builds a text step
func TextStep(id string, x, y float64, content string, fontSize float64, anchor Anchor, durationMs int) Step {
	return Step{
		Kind:       KindText,
		ID:         id,
		DurationMs: durationMs,
		X:          x,
		Y:          y,
		Content:    content,
		FontSize:   fontSize,
		Anchor:     anchor,
	}
}

// TextAnchor returns the anchor with the empty value resolved to start
func (s Step) TextAnchor() Anchor {
	if s.Anchor == "" {
		return AnchorStart
	}
	return s.Anchor
}

// Clone returns a copy of the step list so a run can own its input
func Clone(steps []Step) []Step {
	if steps == nil {
		return nil
	}
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// TotalDurationMs is the sum of all step durations
func (sb *Storyboard) TotalDurationMs() int {
	total := 0
	for _, s := range sb.Steps {
		total += s.DurationMs
	}
	return total
}
