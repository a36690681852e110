package kdtree

// SuperKeyCompare compares a and b over all k dimensions, treating p as the
// most significant one and the rest in cyclic order p+1, p+2, ... mod k.
// It returns the signed difference at the first dimension where the tuples
// differ, or zero when all k coordinates match. Equal infinite coordinates
// count as equal; a finite and an infinite one differ by an infinity of the
// right sign.
func SuperKeyCompare(a, b []float64, p, k int) float64 {
	for i := 0; i < k; i++ {
		r := i + p
		if r >= k {
			r -= k
		}
		if a[r] != b[r] {
			return a[r] - b[r]
		}
	}
	return 0
}
