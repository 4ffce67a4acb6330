package coupling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMergesDirectedPairs(t *testing.T) {
	m, err := New("h", 3, [][2]int{{0, 1}, {1, 0}, {1, 2}, {2, 2}})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, m.Edges())
	assert.True(t, m.Connected(1, 0))
	assert.False(t, m.Connected(0, 2))
	assert.Equal(t, []int{0, 2}, m.Neighbors(1))

	_, err = New("bad", 2, [][2]int{{0, 5}})
	assert.ErrorIs(t, err, ErrQubitOutOfRange)
}

func TestDistanceAndShortestPathOnGrid(t *testing.T) {
	g, err := Grid(3, 4)
	require.NoError(t, err)
	assert.Equal(t, 12, g.Size())

	d, err := g.Distance(0, 11)
	require.NoError(t, err)
	assert.Equal(t, 5, d)

	path, err := g.ShortestPath(0, 11)
	require.NoError(t, err)
	require.Len(t, path, 6)
	assert.Equal(t, 0, path[0])
	assert.Equal(t, 11, path[len(path)-1])
	for i := 0; i+1 < len(path); i++ {
		assert.True(t, g.Connected(path[i], path[i+1]), "hop %d-%d", path[i], path[i+1])
	}

	same, err := g.ShortestPath(5, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, same)
}

func TestDisconnectedQubits(t *testing.T) {
	m, err := New("split", 4, [][2]int{{0, 1}, {2, 3}})
	require.NoError(t, err)
	_, err = m.Distance(0, 3)
	assert.ErrorIs(t, err, ErrDisconnected)
	_, err = m.ShortestPath(1, 2)
	assert.ErrorIs(t, err, ErrDisconnected)
	_, err = m.Distance(0, 9)
	assert.ErrorIs(t, err, ErrQubitOutOfRange)
}

func TestStridedMatchesFiftyQubitMap(t *testing.T) {
	m, err := Strided(50, 5)
	require.NoError(t, err)
	assert.Equal(t, 50, m.Size())
	assert.Len(t, m.Edges(), 49+45)
	assert.True(t, m.Connected(4, 9))
	assert.True(t, m.Connected(4, 5))
}

func TestParse(t *testing.T) {
	cases := map[string]int{
		"line:5":       5,
		"ring:6":       6,
		"grid:8x16":    128,
		"strided:50:5": 50,
	}
	for spec, size := range cases {
		m, err := Parse(spec, nil)
		require.NoError(t, err, spec)
		assert.Equal(t, size, m.Size(), spec)
		assert.Equal(t, spec, m.Name())
	}

	r, err := Ring(6)
	require.NoError(t, err)
	d, err := r.Distance(0, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, d)

	for _, bad := range []string{"line:x", "grid:3", "grid:0x2", "strided:5", "torus:3"} {
		_, err := Parse(bad, nil)
		assert.ErrorIs(t, err, ErrBadSpec, bad)
	}

	sentinel := errors.New("resolved")
	_, err = Parse("fake_oslo", func(name string) (*Map, error) {
		assert.Equal(t, "fake_oslo", name)
		return nil, sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestAverageDegree(t *testing.T) {
	l, err := Line(4)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, l.AverageDegree(), 1e-12)
}

func TestDistanceCacheIsBounded(t *testing.T) {
	m, err := Grid(40, 40)
	require.NoError(t, err)
	for q := 0; q < m.Size(); q++ {
		d, err := m.Distance(q, 0)
		require.NoError(t, err)
		assert.Equal(t, q/40+q%40, d)
	}
	assert.LessOrEqual(t, m.dist.Len(), DistanceCacheRows)

	d, err := m.Distance(0, 1599)
	require.NoError(t, err)
	assert.Equal(t, 78, d)
}
