package kdtree

import (
	"errors"

	"github.com/go-sod/kdindex/pkg/pqueue"
)

var ErrInvalidK = errors.New("k must be positive")

// Neighbor is a KNN result; Distance is squared.
type Neighbor struct {
	Point    Point
	Distance float64
}

// KNN returns up to k stored points closest to query, nearest first. Unlike
// RadiusSearch it does not skip a point equal to the query.
func (t *Tree) KNN(query []float64, k int) ([]Neighbor, error) {
	if len(query) != t.dims {
		return nil, &QueryError{Op: "knn", Err: ErrDimMismatch}
	}
	if k < 1 {
		return nil, &QueryError{Op: "knn", Err: ErrInvalidK}
	}

	s := knnSearch{
		tree:  t,
		query: query,
		queue: pqueue.New(pqueue.WithCap[int](uint(k))),
	}
	if t.root != nil {
		s.search(t.root, 0)
	}

	out := make([]Neighbor, s.queue.Len())
	for i := range out {
		ref, d := s.queue.Seek(i)
		out[i] = Neighbor{Point: t.items[ref], Distance: d}
	}
	return out, nil
}

type knnSearch struct {
	tree  *Tree
	query []float64
	queue *pqueue.Queue[int]
}

// worst is the distance a candidate has to beat to enter a full queue.
func (s *knnSearch) worst() (float64, bool) {
	if !s.queue.Full() {
		return 0, false
	}
	_, d := s.queue.Seek(s.queue.Len() - 1)
	return d, true
}

func (s *knnSearch) search(n *node, depth int) {
	key := s.tree.coords[n.ref]
	var d float64
	for i, v := range s.query {
		diff := v - key[i]
		d += diff * diff
	}
	s.queue.Push(n.ref, d)

	axis := depth % s.tree.dims
	diff := s.query[axis] - key[axis]
	near, far := n.lt, n.gt
	if diff > 0 {
		near, far = n.gt, n.lt
	}
	if near != nil {
		s.search(near, depth+1)
	}
	if far != nil {
		if w, full := s.worst(); !full || diff*diff <= w {
			s.search(far, depth+1)
		}
	}
}
