package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreAppendKeepsArrivalOrder(t *testing.T) {
	s := NewStore()
	a := Line{Segment{EndX: 1}}
	b := Line{Segment{EndX: 2}}

	assert.Equal(t, 0, s.Append(a))
	assert.Equal(t, 1, s.Append(b))
	assert.Equal(t, []Shape{a, b}, s.Shapes())
	assert.Equal(t, 2, s.Len())
}

func TestStoreBootstrapMergesEarlyCommits(t *testing.T) {
	s := NewStore()
	early := Rect{Frame{X: 1, Width: 1, Height: 1}}
	s.Append(early)

	h1 := Circle{Frame{X: 5, Width: 2, Height: 2}}
	h2 := Pencil{Points: []Point{{0, 0}, {1, 1}}}
	assert.True(t, s.Bootstrap([]Entry{{Shape: h1}, {Shape: h2}}))
	assert.True(t, s.Bootstrapped())

	assert.Equal(t, []Shape{h1, h2, early}, s.Shapes())

	assert.False(t, s.Bootstrap([]Entry{{Shape: h1}}))
	assert.Equal(t, 3, s.Len())
}

func TestStoreBootstrapSkipsShapesAlreadyLogged(t *testing.T) {
	s := NewStore()
	local := Line{Segment{EndX: 5, EndY: 5}}
	remote := Arrow{Segment{EndX: 9}}
	unsent := Rect{Frame{Width: 3, Height: 3}}

	_, ok := s.Add(Entry{ID: "local", Shape: local})
	assert.True(t, ok)
	_, ok = s.Add(Entry{ID: "remote", Shape: remote})
	assert.True(t, ok)
	_, ok = s.Add(Entry{ID: "unsent", Shape: unsent})
	assert.True(t, ok)

	old := Circle{Frame{Width: 1, Height: 1}}
	history := []Entry{
		{ID: "old", Shape: old},
		{ID: "remote", Shape: remote},
		{ID: "local", Shape: local},
		{ID: "old", Shape: old},
	}
	assert.True(t, s.Bootstrap(history))

	assert.Equal(t, []Shape{old, remote, local, unsent}, s.Shapes())
	assert.Equal(t, []string{"old", "remote", "local", "unsent"}, idsOf(s.Entries()))
}

func TestStoreAddDropsRepeatedIDs(t *testing.T) {
	s := NewStore()
	a := Line{Segment{EndX: 1}}

	i, ok := s.Add(Entry{ID: "a", Shape: a})
	assert.Equal(t, 0, i)
	assert.True(t, ok)

	i, ok = s.Add(Entry{ID: "a", Shape: a})
	assert.Equal(t, -1, i)
	assert.False(t, ok)

	s.Bootstrap([]Entry{{ID: "h", Shape: a}})
	_, ok = s.Add(Entry{ID: "h", Shape: a})
	assert.False(t, ok, "id delivered live after the history that holds it")

	s.Append(a)
	s.Append(a)
	assert.Equal(t, 4, s.Len())
}

func idsOf(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestStoreSnapshotIsolated(t *testing.T) {
	s := NewStore()
	s.Append(Line{})
	snap := s.Shapes()
	snap[0] = Arrow{}
	assert.Equal(t, Line{}, s.Shapes()[0])
}

func TestClockStamps(t *testing.T) {
	c := NewClock()
	first := c.Tick()
	second := c.Tick()

	assert.Equal(t, c.SiteID(), first.Site)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.True(t, c.IsLocal(first.Site))
	assert.False(t, c.IsLocal(""))
	assert.False(t, c.IsLocal(NewClock().SiteID()))
}
