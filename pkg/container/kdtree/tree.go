/*
 * Copyright 2020 Dennis Kuhnert
 * Copyright 2020 Ivanov Nikita
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package kdtree implements a static, duplicate-free k-d tree built by
// median partitioning of presorted reference sequences. The tree is
// read-only once built, so any number of goroutines may search it.
package kdtree

import "fmt"

// Point is the element interface for values stored in the tree.
type Point interface {
	Dimensions() int
	Points() []float64
}

// Tree is a balanced k-d tree over a fixed, duplicate-free point set. It is
// read-only after Build and safe for concurrent queries.
type Tree struct {
	root   *node
	dims   int
	len    int
	items  []Point
	coords [][]float64
}

// Build constructs a balanced tree from points, each of which must have
// exactly dims coordinates. Points that are equal in all coordinates are
// stored once. The tree keeps references to points and their coordinate
// slices, so callers must not mutate them afterwards.
func Build(points []Point, dims int) (*Tree, error) {
	if dims < 1 {
		return nil, &ConstructionError{Index: -1, Err: ErrInvalidDimensions}
	}
	if len(points) == 0 {
		return nil, &ConstructionError{Index: -1, Err: ErrEmptyInput}
	}

	coords := make([][]float64, len(points))
	for i, p := range points {
		if p == nil || p.Dimensions() != dims || len(p.Points()) != dims {
			return nil, &ConstructionError{Index: i, Err: ErrDimMismatch}
		}
		coords[i] = p.Points()
	}

	b := &builder{coords: coords, dims: dims}
	root, err := b.run()
	if err != nil {
		return nil, err
	}

	return &Tree{
		root:   root,
		dims:   dims,
		len:    b.nodes,
		items:  points,
		coords: coords,
	}, nil
}

// Len returns the number of stored points, i.e. the node count.
func (t *Tree) Len() int {
	return t.len
}

// Dimensions returns k, the number of coordinates of every stored point.
func (t *Tree) Dimensions() int {
	return t.dims
}

// Height returns the number of levels, which bounds the recursion depth of
// every search.
func (t *Tree) Height() int {
	return t.root.height()
}

// Points returns the stored points in order of the tree's in-order walk.
func (t *Tree) Points() []Point {
	if t.root == nil {
		return []Point{}
	}
	return t.root.points(t.items, make([]Point, 0, t.len))
}

// Verify walks the whole tree and checks that every point of a node's lt
// subtree compares less, and every point of its gt subtree greater, than
// the node under the super key led by the node's discriminant.
func (t *Tree) Verify() error {
	count, err := t.verify(t.root, 0)
	if err != nil {
		return err
	}
	if count != t.len {
		return fmt.Errorf("kdtree: verify: walked %d nodes, tree reports %d", count, t.len)
	}
	return nil
}

func (t *Tree) verify(n *node, depth int) (int, error) {
	if n == nil {
		return 0, nil
	}
	axis := depth % t.dims
	key := t.coords[n.ref]

	var err error
	n.lt.each(func(c *node) bool {
		if SuperKeyCompare(t.coords[c.ref], key, axis, t.dims) >= 0 {
			err = fmt.Errorf("kdtree: verify: %v in lt subtree of %v at depth %d", t.coords[c.ref], key, depth)
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	n.gt.each(func(c *node) bool {
		if SuperKeyCompare(t.coords[c.ref], key, axis, t.dims) <= 0 {
			err = fmt.Errorf("kdtree: verify: %v in gt subtree of %v at depth %d", t.coords[c.ref], key, depth)
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}

	lt, err := t.verify(n.lt, depth+1)
	if err != nil {
		return 0, err
	}
	gt, err := t.verify(n.gt, depth+1)
	if err != nil {
		return 0, err
	}
	return 1 + lt + gt, nil
}
