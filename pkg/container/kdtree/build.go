package kdtree

import "fmt"

// builder owns the per-build arena: one reference sequence per dimension
// and a scratch buffer sized to the full point count.
type builder struct {
	coords [][]float64
	dims   int
	refs   [][]int
	tmp    []int
	nodes  int
}

func (b *builder) compare(i, j, p int) float64 {
	return SuperKeyCompare(b.coords[i], b.coords[j], p, b.dims)
}

func (b *builder) run() (*node, error) {
	n := len(b.coords)
	b.tmp = make([]int, n)
	b.refs = make([][]int, b.dims)
	for i := range b.refs {
		ref := make([]int, n)
		for j := range ref {
			ref[j] = j
		}
		b.mergeSort(ref, b.tmp, i)
		b.refs[i] = ref
	}

	end := -1
	for i, ref := range b.refs {
		e, err := b.removeDuplicates(ref, i)
		if err != nil {
			return nil, err
		}
		if i > 0 && e != end {
			return nil, &ConstructionError{
				Index: -1,
				Err:   fmt.Errorf("%w: reference %d keeps %d points, reference 0 keeps %d", ErrSortOrder, i, e+1, end+1),
			}
		}
		end = e
	}

	return b.build(0, end, 0), nil
}

func (b *builder) newNode(ref int) *node {
	b.nodes++
	return &node{ref: ref}
}

// build creates the subtree for refs[0][start..end]. At every level the
// sequences rotate: refs[i] is partitioned into refs[i-1] and the saved
// refs[0] closes the cycle in refs[dims-1], so refs[0] is always sorted by
// the current discriminant.
func (b *builder) build(start, end, depth int) *node {
	if end < start {
		return nil
	}
	axis := depth % b.dims
	refs0 := b.refs[0]

	switch {
	case end == start:
		return b.newNode(refs0[start])
	case end == start+1:
		n := b.newNode(refs0[start])
		n.gt = b.newNode(refs0[end])
		return n
	case end == start+2:
		n := b.newNode(refs0[start+1])
		n.lt = b.newNode(refs0[start])
		n.gt = b.newNode(refs0[end])
		return n
	}

	median := start + (end-start)/2
	n := b.newNode(refs0[median])

	copy(b.tmp[start:end+1], refs0[start:end+1])

	lower, upper := median-1, end
	for i := 1; i < b.dims; i++ {
		src, dst := b.refs[i], b.refs[i-1]
		lower, upper = start-1, median
		for j := start; j <= end; j++ {
			cmp := b.compare(src[j], n.ref, axis)
			if cmp < 0 {
				lower++
				dst[lower] = src[j]
			} else if cmp > 0 {
				upper++
				dst[upper] = src[j]
			}
		}
	}

	copy(b.refs[b.dims-1][start:end+1], b.tmp[start:end+1])

	n.lt = b.build(start, lower, depth+1)
	n.gt = b.build(median+1, upper, depth+1)
	return n
}
