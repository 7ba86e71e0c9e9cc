package geometry

import (
	"errors"
	"fmt"

	"github.com/ivlev/sketchstory/internal/story"
)

// Cache holds the flattened geometry of every path step of one run, keyed
// by step id. It is built once and only read afterwards.
type Cache struct {
	paths map[string]*Path
}

// NewCache flattens all path steps. Malformed path data does not stop the
// build: the step gets the geometry parsed so far and the errors are joined
// into the returned error for the caller to log.
func NewCache(steps []story.Step) (*Cache, error) {
	c := &Cache{paths: make(map[string]*Path)}
	var errs []error
	for _, s := range steps {
		if s.Kind != story.KindPath {
			continue
		}
		p, err := Parse(s.D)
		if err != nil {
			errs = append(errs, fmt.Errorf("step %q: %w", s.ID, err))
		}
		c.paths[s.ID] = p
	}
	return c, errors.Join(errs...)
}

// Get returns the geometry of a path step
func (c *Cache) Get(id string) (*Path, bool) {
	p, ok := c.paths[id]
	return p, ok
}

// Len is the number of cached paths
func (c *Cache) Len() int { return len(c.paths) }
