package kdtree

import (
	"fmt"
	"math"
	"strings"
)

// RadiusMode selects the traversal used by RadiusSearch.
type RadiusMode uint8

const (
	// RadiusExact returns every stored point within the cutoff of the
	// query, pruning a subtree only when the axis distance alone already
	// exceeds the cutoff.
	RadiusExact RadiusMode = iota
	// RadiusCompat reproduces the legacy traversal: each match tightens the
	// cutoff, children are followed only on the query's side of the split,
	// and the root additionally probes its gt child when the query is no
	// farther from the root on the root axis than the gt child is.
	RadiusCompat
)

func (m RadiusMode) String() string {
	switch m {
	case RadiusExact:
		return "EXACT"
	case RadiusCompat:
		return "COMPAT"
	default:
		return "UNKNOWN"
	}
}

// ParseRadiusMode is the inverse of RadiusMode.String, case-insensitive.
func ParseRadiusMode(s string) (RadiusMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "EXACT":
		return RadiusExact, nil
	case "COMPAT":
		return RadiusCompat, nil
	default:
		return 0, fmt.Errorf("unknown radius mode: %q", s)
	}
}

type RadiusOption func(*radiusOptions)

type radiusOptions struct {
	mode RadiusMode
}

func WithRadiusMode(m RadiusMode) RadiusOption {
	return func(o *radiusOptions) {
		o.mode = m
	}
}

// RadiusSearch returns the stored points whose squared Euclidean distance d
// to query satisfies 0 < d <= cutoff, in traversal order. A point equal to
// the query is never returned. Pass math.Inf(1) for an unbounded search.
func (t *Tree) RadiusSearch(query []float64, cutoff float64, opts ...RadiusOption) ([]Point, error) {
	if len(query) != t.dims {
		return nil, &QueryError{Op: "radius", Err: ErrDimMismatch}
	}
	if math.IsNaN(cutoff) || cutoff < 0 {
		return nil, &QueryError{Op: "radius", Err: ErrInvalidCutoff}
	}

	o := radiusOptions{mode: RadiusExact}
	for _, opt := range opts {
		opt(&o)
	}

	s := radiusSearch{tree: t, query: query, cutoff: cutoff}
	if t.root != nil {
		switch o.mode {
		case RadiusCompat:
			s.compat(t.root, 0)
		default:
			s.exact(t.root, 0)
		}
	}
	return s.found, nil
}

// radiusSearch carries the state of a single query.
type radiusSearch struct {
	tree   *Tree
	query  []float64
	cutoff float64
	found  []Point
}

func (s *radiusSearch) distance(key []float64) float64 {
	var d float64
	for i, v := range s.query {
		diff := v - key[i]
		d += diff * diff
	}
	return d
}

func (s *radiusSearch) exact(n *node, depth int) {
	key := s.tree.coords[n.ref]
	if d := s.distance(key); d > 0 && d <= s.cutoff {
		s.found = append(s.found, s.tree.items[n.ref])
	}

	axis := depth % s.tree.dims
	diff := s.query[axis] - key[axis]
	if n.lt != nil && (diff <= 0 || diff*diff <= s.cutoff) {
		s.exact(n.lt, depth+1)
	}
	if n.gt != nil && (diff >= 0 || diff*diff <= s.cutoff) {
		s.exact(n.gt, depth+1)
	}
}

func (s *radiusSearch) compat(n *node, depth int) {
	key := s.tree.coords[n.ref]
	if d := s.distance(key); d > 0 && d <= s.cutoff {
		s.found = append(s.found, s.tree.items[n.ref])
		s.cutoff = d
	}

	axis := depth % s.tree.dims
	lt := s.query[axis] <= key[axis]
	gt := s.query[axis] >= key[axis]
	if depth == 0 {
		lt = true
		if n.gt != nil {
			probe := s.tree.coords[n.gt.ref]
			if math.Abs(s.query[axis]-key[axis]) <= math.Abs(key[axis]-probe[axis]) {
				gt = true
			}
		}
	}
	if lt && n.lt != nil {
		s.compat(n.lt, depth+1)
	}
	if gt && n.gt != nil {
		s.compat(n.gt, depth+1)
	}
}
