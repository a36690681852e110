package pqueue

import (
	"sort"
)

// WithCap bounds the queue: pushing past the cap drops the lowest-priority item.
func WithCap[T any](size uint) Option[T] {
	return func(q *Queue[T]) {
		q.cap = int(size)
	}
}

type Option[T any] func(*Queue[T])

type item[T any] struct {
	value T
	prior float64
}

func New[T any](opts ...Option[T]) *Queue[T] {
	p := &Queue[T]{cap: -1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Queue keeps its items sorted by ascending priority. Items with equal
// priority keep their insertion order.
type Queue[T any] struct {
	cap   int
	items []item[T]
}

func (q *Queue[T]) Push(val T, priority float64) {
	idx := sort.Search(len(q.items), func(i int) bool {
		return priority < q.items[i].prior
	})
	if q.cap >= 0 && idx >= q.cap {
		return
	}
	q.items = append(q.items, item[T]{})
	copy(q.items[idx+1:], q.items[idx:])
	q.items[idx] = item[T]{value: val, prior: priority}
	if q.cap >= 0 && len(q.items) > q.cap {
		q.items = q.items[:q.cap]
	}
}

func (q *Queue[T]) Len() int { return len(q.items) }

// Full reports whether a bounded queue holds cap items.
func (q *Queue[T]) Full() bool { return q.cap >= 0 && len(q.items) >= q.cap }

func (q *Queue[T]) Seek(idx int) (T, float64) {
	x := q.items[idx]
	return x.value, x.prior
}
