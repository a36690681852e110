package geom

import (
	"strconv"
	"strings"
)

// Point is a tuple of coordinates. It satisfies kdtree.Point.
type Point []float64

func (v Point) Dimensions() int {
	return len(v)
}

func (v Point) Points() []float64 {
	return v
}

// String formats the point the way point files store it: (x,y,z).
func (v Point) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, value := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}
