package geom

import (
	"fmt"
	"math"
)

var ErrDimNotEqual = fmt.Errorf("vectors dimension is not equal")

// SquaredEuclideanDistance is the cutoff metric of radius searches.
func SquaredEuclideanDistance(vec, vec1 []float64) (float64, error) {
	var d float64
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}

	for i := 0; i < len(vec); i++ {
		diff := vec[i] - vec1[i]
		d += diff * diff
	}
	return d, nil
}

func EuclideanDistance(vec, vec1 []float64) (float64, error) {
	d, err := SquaredEuclideanDistance(vec, vec1)
	if err != nil {
		return 0.0, err
	}
	return math.Sqrt(d), nil
}
