package kdtree

import (
	"fmt"
	"sort"

	"github.com/valyala/fastrand"
)

type vec []float64

func (v vec) Dimensions() int   { return len(v) }
func (v vec) Points() []float64 { return v }

func points(tuples ...[]float64) []Point {
	out := make([]Point, len(tuples))
	for i, t := range tuples {
		out[i] = vec(t)
	}
	return out
}

// randomPoints draws coordinates from a small integer grid so duplicates and
// ties on single axes are frequent.
func randomPoints(n, dims int, grid uint32) []Point {
	out := make([]Point, n)
	for i := range out {
		v := make(vec, dims)
		for d := range v {
			v[d] = float64(fastrand.Uint32n(grid)) - float64(grid/2)
		}
		out[i] = v
	}
	return out
}

func key(p Point) string {
	return fmt.Sprint(p.Points())
}

// unique returns the distinct tuples of pts, keyed for set comparison.
func unique(pts []Point) map[string]Point {
	set := make(map[string]Point, len(pts))
	for _, p := range pts {
		if _, ok := set[key(p)]; !ok {
			set[key(p)] = p
		}
	}
	return set
}

func keys(pts []Point) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = key(p)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]Point) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sqDist(a, b []float64) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}

func bruteRange(set map[string]Point, lo, hi []float64) []string {
	out := []string{}
	for k, p := range set {
		inside := true
		for i, v := range p.Points() {
			if v < lo[i] || v > hi[i] {
				inside = false
				break
			}
		}
		if inside {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func bruteRadius(set map[string]Point, q []float64, cutoff float64) []string {
	out := []string{}
	for k, p := range set {
		if d := sqDist(q, p.Points()); d > 0 && d <= cutoff {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func collect(dst *[]Point) Sink {
	return func(p Point) {
		*dst = append(*dst, p)
	}
}
