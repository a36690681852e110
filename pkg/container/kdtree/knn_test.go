package kdtree

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

func TestKNN_MatchesBruteForce(t *testing.T) {
	t.Parallel()
	pts := randomPoints(2000, 3, 1000)
	tree, err := Build(pts, 3)
	require.NoError(t, err)

	stored := tree.Points()
	for i := 0; i < 30; i++ {
		q := []float64{
			float64(fastrand.Uint32n(1000)) - 500,
			float64(fastrand.Uint32n(1000)) - 500,
			float64(fastrand.Uint32n(1000)) - 500,
		}
		k := int(fastrand.Uint32n(10)) + 1

		got, err := tree.KNN(q, k)
		require.NoError(t, err)
		require.Len(t, got, k)

		dists := make([]float64, len(stored))
		for j, p := range stored {
			dists[j] = sqDist(q, p.Points())
		}
		sort.Float64s(dists)
		for j, n := range got {
			require.Equal(t, dists[j], n.Distance)
			require.Equal(t, sqDist(q, n.Point.Points()), n.Distance)
		}
	}
}

func TestKNN_IncludesExactMatchAndCapsAtLen(t *testing.T) {
	t.Parallel()
	tree, err := Build(points([]float64{0, 0, 0}, []float64{1, 1, 1}, []float64{5, 5, 5}), 3)
	require.NoError(t, err)

	got, err := tree.KNN([]float64{0, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 0.0, got[0].Distance)
	require.Equal(t, []float64{1, 1, 1}, got[1].Point.Points())

	_, err = tree.KNN([]float64{0, 0, 0}, 0)
	require.ErrorIs(t, err, ErrInvalidK)
	_, err = tree.KNN([]float64{0, 0}, 1)
	require.ErrorIs(t, err, ErrDimMismatch)
}
