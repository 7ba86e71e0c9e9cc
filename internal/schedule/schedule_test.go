package schedule

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/sketchstory/internal/story"
)

func pathStep(id string, d int) story.Step {
	return story.PathStep(id, "M0 0 L10 0", "#111", 2, d)
}

func TestBuildExample(t *testing.T) {
	s, err := Build([]story.Step{
		pathStep("A", 1000),
		story.TextStep("B", 10, 10, "hi", 12, story.AnchorStart, 500),
	})
	require.NoError(t, err)

	assert.Equal(t, 1500, s.TotalMs())
	assert.Equal(t, []Entry{
		{ID: "A", Kind: story.KindPath, Index: 0, Start: 0, End: 1000},
		{ID: "B", Kind: story.KindText, Index: 1, Start: 1000, End: 1500},
	}, s.Entries())
}

func TestBuildIntervalsAreContiguous(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := r.Intn(20)
		steps := make([]story.Step, n)
		sum := 0
		for i := range steps {
			d := r.Intn(3000)
			if r.Intn(5) == 0 {
				d = 0
			}
			steps[i] = pathStep(string(rune('a'+i)), d)
			sum += d
		}

		s, err := Build(steps)
		require.NoError(t, err)
		require.Equal(t, sum, s.TotalMs())

		prefix := 0
		for i, e := range s.Entries() {
			assert.Equal(t, prefix, e.Start, "entry %d start", i)
			prefix += steps[i].DurationMs
			assert.Equal(t, prefix, e.End, "entry %d end", i)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	s, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.TotalMs())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, -1, s.Current(0))
}

func TestBuildRejectsInvalid(t *testing.T) {
	_, err := Build([]story.Step{pathStep("a", -10)})
	assert.ErrorIs(t, err, story.ErrInvalidStep)

	_, err = Build([]story.Step{pathStep("a", 10), pathStep("a", 10)})
	assert.ErrorIs(t, err, story.ErrInvalidStep)
}

func TestProgress(t *testing.T) {
	e := Entry{Start: 1000, End: 1500}
	assert.Equal(t, 0.0, e.Progress(999))
	assert.Equal(t, 0.0, e.Progress(1000))
	assert.InDelta(t, 0.5, e.Progress(1250), 1e-9)
	assert.Equal(t, 1.0, e.Progress(1500))
	assert.Equal(t, 1.0, e.Progress(9000))

	zero := Entry{Start: 200, End: 200}
	assert.Equal(t, 0.0, zero.Progress(199.9))
	assert.Equal(t, 1.0, zero.Progress(200))
}

func TestLookups(t *testing.T) {
	s, err := Build([]story.Step{pathStep("a", 100), pathStep("z", 0), pathStep("b", 100)})
	require.NoError(t, err)

	e, ok := s.Entry("b")
	require.True(t, ok)
	assert.Equal(t, 100, e.Start)
	_, ok = s.Entry("missing")
	assert.False(t, ok)

	assert.Equal(t, 0, s.Started(-1))
	assert.Equal(t, 1, s.Started(50))
	assert.Equal(t, 3, s.Started(100))

	assert.Equal(t, 0, s.Current(0))
	assert.Equal(t, 0, s.Current(99))
	assert.Equal(t, 2, s.Current(100))
	assert.Equal(t, -1, s.Current(200))
}
