// Package schedule turns an ordered step list into a contiguous timeline.
//
// Entry i covers [Start, End) in milliseconds; the first entry starts at 0
// and each entry starts where the previous one ended. A zero duration yields
// an instantaneous entry. The schedule is immutable once built.
package schedule

import (
	"sort"

	"github.com/ivlev/sketchstory/internal/story"
)

// Entry is one step's interval on the timeline
type Entry struct {
	ID    string
	Kind  story.Kind
	Index int // position in the storyboard
	Start int // ms
	End   int // ms
}

// Duration is End - Start
func (e Entry) Duration() int { return e.End - e.Start }

// Progress returns how far elapsedMs is through the entry, clamped to [0, 1].
// Zero-width entries are complete as soon as they start.
func (e Entry) Progress(elapsedMs float64) float64 {
	if e.End <= e.Start {
		if elapsedMs >= float64(e.Start) {
			return 1
		}
		return 0
	}
	p := (elapsedMs - float64(e.Start)) / float64(e.End-e.Start)
	return clamp(p, 0, 1)
}

// Schedule is the derived timeline of a storyboard
type Schedule struct {
	entries []Entry
	byID    map[string]int
	total   int
}

// Build validates ids and durations and lays the steps end to end.
func Build(steps []story.Step) (*Schedule, error) {
	if err := story.ValidateTiming(steps); err != nil {
		return nil, err
	}

	s := &Schedule{
		entries: make([]Entry, 0, len(steps)),
		byID:    make(map[string]int, len(steps)),
	}
	for i, step := range steps {
		start := s.total
		end := start + step.DurationMs
		s.entries = append(s.entries, Entry{
			ID:    step.ID,
			Kind:  step.Kind,
			Index: i,
			Start: start,
			End:   end,
		})
		s.byID[step.ID] = i
		s.total = end
	}
	return s, nil
}

// Entries returns a copy of the timeline
func (s *Schedule) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len is the number of entries
func (s *Schedule) Len() int { return len(s.entries) }

// At returns the entry at index i
func (s *Schedule) At(i int) Entry { return s.entries[i] }

// TotalMs is the end of the last entry, 0 for an empty schedule
func (s *Schedule) TotalMs() int { return s.total }

// Entry looks up an entry by step id
func (s *Schedule) Entry(id string) (Entry, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Started returns how many entries have Start <= elapsedMs. Because starts
// are non-decreasing these are always a prefix of the timeline.
func (s *Schedule) Started(elapsedMs float64) int {
	return sort.Search(len(s.entries), func(i int) bool {
		return float64(s.entries[i].Start) > elapsedMs
	})
}

// Current returns the index of the entry in progress at elapsedMs, i.e. the
// last entry with Start <= elapsedMs < End. It returns -1 before the first
// entry, after the end, or when only zero-width entries touch the instant.
func (s *Schedule) Current(elapsedMs float64) int {
	n := s.Started(elapsedMs)
	for i := n - 1; i >= 0; i-- {
		e := s.entries[i]
		if elapsedMs < float64(e.End) {
			return i
		}
		if e.End > e.Start {
			break
		}
	}
	return -1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
