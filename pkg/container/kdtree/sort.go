package kdtree

// mergeSort sorts the reference sequence ref in place by the super key whose
// most significant dimension is p. It is a bottom-up stable merge sort that
// ping-pongs between ref and tmp, which must be at least as long as ref.
func (b *builder) mergeSort(ref, tmp []int, p int) {
	n := len(ref)
	src, dst := ref, tmp[:n]
	inTmp := false
	for width := 1; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			b.merge(src, dst, lo, mid, hi, p)
		}
		src, dst = dst, src
		inTmp = !inTmp
	}
	if inTmp {
		copy(ref, src)
	}
}

// merge combines the sorted runs src[lo:mid] and src[mid:hi] into dst[lo:hi].
// Ties take from the left run so equal keys keep their input order.
func (b *builder) merge(src, dst []int, lo, mid, hi, p int) {
	i, j := lo, mid
	for k := lo; k < hi; k++ {
		if i < mid && (j >= hi || b.compare(src[i], src[j], p) <= 0) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
	}
}

// removeDuplicates checks that ref is sorted by the super key led by p and
// compacts consecutive equal entries. It returns the index of the last
// retained element.
func (b *builder) removeDuplicates(ref []int, p int) (int, error) {
	end := 0
	for j := 1; j < len(ref); j++ {
		cmp := b.compare(ref[j], ref[j-1], p)
		if cmp < 0 {
			return 0, &ConstructionError{Index: j, Err: ErrSortOrder}
		}
		if cmp > 0 {
			end++
			ref[end] = ref[j]
		}
	}
	return end, nil
}
