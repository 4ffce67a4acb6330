// Package coupling models the physical qubit connectivity of a device: which qubit pairs
// support a direct two-qubit operation, and how far apart any two qubits are.
package coupling

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrQubitOutOfRange is returned when a physical qubit index is outside the map.
	ErrQubitOutOfRange = errors.New("coupling: qubit out of range")
	// ErrDisconnected is returned when no path joins two physical qubits.
	ErrDisconnected = errors.New("coupling: qubits are not connected")
	// ErrBadSpec is returned by Parse for malformed map descriptions.
	ErrBadSpec = errors.New("coupling: bad map spec")
)

// Unreachable is the distance reported between disconnected qubits.
const Unreachable = -1

// DistanceCacheRows bounds how many BFS rows a map keeps. A row holds Size() ints,
// so large generated maps would otherwise grow quadratically.
const DistanceCacheRows = 1024

// Map is an undirected coupling graph over physical qubits 0..Size()-1.
// Distances are computed lazily by BFS and cached per source qubit, least
// recently used rows evicted first.
type Map struct {
	name  string
	adj   [][]int
	edges [][2]int
	dist  *lru.Cache[int, []int]
}

// New builds a map over n qubits. Directed pairs are merged; self-loops and duplicates are dropped.
func New(name string, n int, pairs [][2]int) (*Map, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrBadSpec, n)
	}
	dist, err := lru.New[int, []int](min(n, DistanceCacheRows))
	if err != nil {
		return nil, err
	}
	m := &Map{name: name, adj: make([][]int, n), dist: dist}
	seen := make(map[[2]int]bool, len(pairs))
	for _, p := range pairs {
		a, b := p[0], p[1]
		if a < 0 || a >= n || b < 0 || b >= n {
			return nil, fmt.Errorf("%w: edge %v on %d qubits", ErrQubitOutOfRange, p, n)
		}
		if a == b {
			continue
		}
		key := [2]int{min(a, b), max(a, b)}
		if seen[key] {
			continue
		}
		seen[key] = true
		m.edges = append(m.edges, key)
		m.adj[a] = append(m.adj[a], b)
		m.adj[b] = append(m.adj[b], a)
	}
	for i := range m.adj {
		slices.Sort(m.adj[i])
	}
	return m, nil
}

func (m *Map) Name() string { return m.name }

// Size is the number of physical qubits.
func (m *Map) Size() int { return len(m.adj) }

// Edges returns the undirected edges with the smaller index first.
func (m *Map) Edges() [][2]int { return slices.Clone(m.edges) }

// Neighbors returns the qubits coupled to q.
func (m *Map) Neighbors(q int) []int {
	if q < 0 || q >= len(m.adj) {
		return nil
	}
	return slices.Clone(m.adj[q])
}

// Connected reports whether a and b share an edge.
func (m *Map) Connected(a, b int) bool {
	if a < 0 || a >= len(m.adj) {
		return false
	}
	_, found := slices.BinarySearch(m.adj[a], b)
	return found
}

// AverageDegree is the mean number of couplings per qubit.
func (m *Map) AverageDegree() float64 {
	return 2 * float64(len(m.edges)) / float64(len(m.adj))
}

func (m *Map) bfs(src int) []int {
	if d, ok := m.dist.Get(src); ok {
		return d
	}
	d := make([]int, len(m.adj))
	for i := range d {
		d[i] = Unreachable
	}
	d[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range m.adj[cur] {
			if d[nb] == Unreachable {
				d[nb] = d[cur] + 1
				queue = append(queue, nb)
			}
		}
	}
	m.dist.Add(src, d)
	return d
}

// Distance returns the number of couplings on a shortest path from a to b.
func (m *Map) Distance(a, b int) (int, error) {
	if err := m.check(a, b); err != nil {
		return 0, err
	}
	d := m.bfs(a)[b]
	if d == Unreachable {
		return 0, fmt.Errorf("%w: %d and %d", ErrDisconnected, a, b)
	}
	return d, nil
}

// ShortestPath returns the qubits on a shortest path from a to b, both ends included.
func (m *Map) ShortestPath(a, b int) ([]int, error) {
	if _, err := m.Distance(a, b); err != nil {
		return nil, err
	}
	// walk back from a using distances measured from b
	fromB := m.bfs(b)
	path := []int{a}
	for cur := a; cur != b; {
		for _, nb := range m.adj[cur] {
			if fromB[nb] == fromB[cur]-1 {
				cur = nb
				break
			}
		}
		path = append(path, cur)
	}
	return path, nil
}

func (m *Map) check(qs ...int) error {
	for _, q := range qs {
		if q < 0 || q >= len(m.adj) {
			return fmt.Errorf("%w: %d (map has %d)", ErrQubitOutOfRange, q, len(m.adj))
		}
	}
	return nil
}

// Line couples qubit i to i+1.
func Line(n int) (*Map, error) {
	var pairs [][2]int
	for i := 0; i+1 < n; i++ {
		pairs = append(pairs, [2]int{i, i + 1})
	}
	return New(fmt.Sprintf("line:%d", n), n, pairs)
}

// Ring is a line with its ends joined.
func Ring(n int) (*Map, error) {
	var pairs [][2]int
	for i := 0; i < n; i++ {
		pairs = append(pairs, [2]int{i, (i + 1) % n})
	}
	return New(fmt.Sprintf("ring:%d", n), n, pairs)
}

// Grid is a rows x cols nearest-neighbour lattice numbered row-major.
func Grid(rows, cols int) (*Map, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrBadSpec, rows, cols)
	}
	var pairs [][2]int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			q := r*cols + c
			if c+1 < cols {
				pairs = append(pairs, [2]int{q, q + 1})
			}
			if r+1 < rows {
				pairs = append(pairs, [2]int{q, q + cols})
			}
		}
	}
	return New(fmt.Sprintf("grid:%dx%d", rows, cols), rows*cols, pairs)
}

// Strided couples i to i+1 and i to i+stride. Strided(50, 5) is a 10x5 grid whose row ends
// wrap onto the next row.
func Strided(n, stride int) (*Map, error) {
	if stride <= 0 {
		return nil, fmt.Errorf("%w: stride %d", ErrBadSpec, stride)
	}
	var pairs [][2]int
	for i := 0; i+1 < n; i++ {
		pairs = append(pairs, [2]int{i, i + 1})
	}
	for i := 0; i+stride < n; i++ {
		pairs = append(pairs, [2]int{i, i + stride})
	}
	return New(fmt.Sprintf("strided:%d:%d", n, stride), n, pairs)
}

// Resolver maps a device name to its coupling map. Parse falls back to it for names that are
// not generator specs.
type Resolver func(name string) (*Map, error)

// Parse builds a map from "line:N", "ring:N", "grid:RxC", "strided:N:K", or hands the string
// to resolve when it is none of those.
func Parse(spec string, resolve Resolver) (*Map, error) {
	kind, rest, _ := strings.Cut(strings.TrimSpace(spec), ":")
	atoi := func(s string) (int, error) {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadSpec, spec)
		}
		return v, nil
	}
	switch kind {
	case "line", "ring":
		n, err := atoi(rest)
		if err != nil {
			return nil, err
		}
		if kind == "line" {
			return Line(n)
		}
		return Ring(n)
	case "grid":
		rs, cs, ok := strings.Cut(rest, "x")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrBadSpec, spec)
		}
		r, err := atoi(rs)
		if err != nil {
			return nil, err
		}
		c, err := atoi(cs)
		if err != nil {
			return nil, err
		}
		return Grid(r, c)
	case "strided":
		ns, ks, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrBadSpec, spec)
		}
		n, err := atoi(ns)
		if err != nil {
			return nil, err
		}
		k, err := atoi(ks)
		if err != nil {
			return nil, err
		}
		return Strided(n, k)
	}
	if resolve == nil {
		return nil, fmt.Errorf("%w: %q", ErrBadSpec, spec)
	}
	return resolve(spec)
}
