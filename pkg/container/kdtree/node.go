package kdtree

// node refers to one point of the tree's storage and owns both subtrees.
type node struct {
	ref int
	lt  *node
	gt  *node
}

func (n *node) points(items []Point, dst []Point) []Point {
	if n.lt != nil {
		dst = n.lt.points(items, dst)
	}
	dst = append(dst, items[n.ref])
	if n.gt != nil {
		dst = n.gt.points(items, dst)
	}
	return dst
}

func (n *node) height() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.lt.height(), n.gt.height())
}

// each calls fn for every node of the subtree in pre-order until fn returns false.
func (n *node) each(fn func(*node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	return n.lt.each(fn) && n.gt.each(fn)
}
