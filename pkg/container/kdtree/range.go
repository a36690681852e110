package kdtree

// Range is a closed interval on one axis.
type Range struct {
	Min, Max float64
}

// Mode selects how RangeSearch reports matches.
type Mode uint8

const (
	// ModeSilent only counts matches and visited nodes.
	ModeSilent Mode = iota
	// ModeVerbose also hands each match to the caller's Sink.
	ModeVerbose
)

func (m Mode) String() string {
	switch m {
	case ModeSilent:
		return "silent"
	case ModeVerbose:
		return "verbose"
	default:
		return "unknown"
	}
}

// Sink receives matches of a verbose range search in traversal order.
type Sink func(Point)

// RangeResult holds the accounting of one range search.
type RangeResult struct {
	Matches int
	Visited int
}

// NewBox pairs the low and high corners of a box into one Range per axis.
func NewBox(lo, hi []float64) ([]Range, error) {
	if len(lo) != len(hi) {
		return nil, &QueryError{Op: "range", Err: ErrDimMismatch}
	}
	box := make([]Range, len(lo))
	for i := range lo {
		box[i] = Range{Min: lo[i], Max: hi[i]}
	}
	return box, nil
}

// RangeQuery is RangeSearch over the box spanned by the lo and hi corners.
func (t *Tree) RangeQuery(lo, hi []float64, mode Mode, sink Sink) (RangeResult, error) {
	box, err := NewBox(lo, hi)
	if err != nil {
		return RangeResult{}, err
	}
	return t.RangeSearch(box, mode, sink)
}

// RangeSearch finds the points p with box[i].Min <= p[i] <= box[i].Max on
// every axis. A box inverted on any axis is a valid query that matches
// nothing and visits nothing.
func (t *Tree) RangeSearch(box []Range, mode Mode, sink Sink) (RangeResult, error) {
	if len(box) != t.dims {
		return RangeResult{}, &QueryError{Op: "range", Err: ErrDimMismatch}
	}
	if mode == ModeVerbose && sink == nil {
		return RangeResult{}, &QueryError{Op: "range", Err: ErrNilSink}
	}
	for _, r := range box {
		if r.Min > r.Max {
			return RangeResult{}, nil
		}
	}

	s := rangeSearch{tree: t, box: box}
	if mode == ModeVerbose {
		s.sink = sink
	}
	if t.root != nil {
		s.search(t.root, 0)
	}
	return s.result, nil
}

// rangeSearch carries the state of a single query.
type rangeSearch struct {
	tree   *Tree
	box    []Range
	sink   Sink
	result RangeResult
}

func (s *rangeSearch) contains(key []float64) bool {
	for dim, limit := range s.box {
		if key[dim] < limit.Min || key[dim] > limit.Max {
			return false
		}
	}
	return true
}

func (s *rangeSearch) search(n *node, depth int) {
	key := s.tree.coords[n.ref]
	if s.contains(key) {
		s.result.Matches++
		if s.sink != nil {
			s.sink(s.tree.items[n.ref])
		}
	}
	s.result.Visited++

	axis := depth % s.tree.dims
	limit, v := s.box[axis], key[axis]
	switch {
	case v >= limit.Min && v <= limit.Max:
		if n.lt != nil {
			s.search(n.lt, depth+1)
		}
		if n.gt != nil {
			s.search(n.gt, depth+1)
		}
	case v < limit.Min:
		if n.gt != nil {
			s.search(n.gt, depth+1)
		}
	case v > limit.Max:
		if n.lt != nil {
			s.search(n.lt, depth+1)
		}
	}
}
