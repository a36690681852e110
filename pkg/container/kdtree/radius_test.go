package kdtree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

func TestRadiusSearch_InfiniteCutoffReturnsAllOthers(t *testing.T) {
	t.Parallel()
	pts := randomPoints(1200, 3, 20)
	tree, err := Build(pts, 3)
	require.NoError(t, err)
	set := unique(pts)

	for i := 0; i < 20; i++ {
		q := pts[fastrand.Uint32n(uint32(len(pts)))]
		found, err := tree.RadiusSearch(q.Points(), math.Inf(1))
		require.NoError(t, err)
		require.Len(t, found, len(set)-1)
		for _, p := range found {
			require.NotEqual(t, key(q), key(p))
		}
	}
}

func TestRadiusSearch_ExactMatchesBruteForce(t *testing.T) {
	t.Parallel()
	pts := randomPoints(2500, 3, 40)
	tree, err := Build(pts, 3)
	require.NoError(t, err)
	set := unique(pts)

	for i := 0; i < 60; i++ {
		q := []float64{
			float64(fastrand.Uint32n(40)) - 20.5,
			float64(fastrand.Uint32n(40)) - 20,
			float64(fastrand.Uint32n(40)) - 19.5,
		}
		cutoff := float64(fastrand.Uint32n(120))
		found, err := tree.RadiusSearch(q, cutoff)
		require.NoError(t, err)
		require.Equal(t, bruteRadius(set, q, cutoff), keys(found), "query %v cutoff %v", q, cutoff)
	}
}

func TestRadiusSearch_ExcludesSelfAndHonorsBoundary(t *testing.T) {
	t.Parallel()
	tree, err := Build(points(
		[]float64{0, 0, 0},
		[]float64{1, 0, 0},
		[]float64{0, 2, 0},
		[]float64{3, 3, 3},
	), 3)
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    []float64
		cutoff   float64
		expected []string
	}{
		{name: "self_only", query: []float64{0, 0, 0}, cutoff: 0, expected: nil},
		{name: "boundary_inclusive", query: []float64{0, 0, 0}, cutoff: 1, expected: []string{"[1 0 0]"}},
		{name: "two_neighbours", query: []float64{0, 0, 0}, cutoff: 4, expected: []string{"[0 2 0]", "[1 0 0]"}},
		{name: "off_grid", query: []float64{3, 3, 2}, cutoff: 1, expected: []string{"[3 3 3]"}},
		{name: "nothing", query: []float64{10, 10, 10}, cutoff: 2, expected: nil},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			found, err := tree.RadiusSearch(test.query, test.cutoff)
			require.NoError(t, err)
			if test.expected == nil {
				require.Empty(t, found)
				return
			}
			require.Equal(t, test.expected, keys(found))
		})
	}
}

func TestRadiusSearch_Errors(t *testing.T) {
	t.Parallel()
	tree, err := Build(points([]float64{1, 2, 3}), 3)
	require.NoError(t, err)

	_, err = tree.RadiusSearch([]float64{1, 2}, 1)
	require.ErrorIs(t, err, ErrDimMismatch)
	_, err = tree.RadiusSearch([]float64{1, 2, 3}, -1)
	require.ErrorIs(t, err, ErrInvalidCutoff)
	_, err = tree.RadiusSearch([]float64{1, 2, 3}, math.NaN())
	require.ErrorIs(t, err, ErrInvalidCutoff)

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, "radius", qerr.Op)
}

func TestRadiusSearch_CompatTightensCutoff(t *testing.T) {
	t.Parallel()
	pts := randomPoints(1500, 3, 30)
	tree, err := Build(pts, 3)
	require.NoError(t, err)

	for i := 0; i < 40; i++ {
		q := pts[fastrand.Uint32n(uint32(len(pts)))].Points()
		cutoff := float64(fastrand.Uint32n(400)) + 1

		compat, err := tree.RadiusSearch(q, cutoff, WithRadiusMode(RadiusCompat))
		require.NoError(t, err)
		exact, err := tree.RadiusSearch(q, cutoff)
		require.NoError(t, err)

		within := make(map[string]bool, len(exact))
		for _, p := range exact {
			within[key(p)] = true
		}
		seen := make(map[string]bool, len(compat))
		last := cutoff
		for _, p := range compat {
			d := sqDist(q, p.Points())
			require.Greater(t, d, 0.0)
			require.LessOrEqual(t, d, last, "cutoff must never grow")
			require.True(t, within[key(p)])
			require.False(t, seen[key(p)], "point %v reported twice", p)
			seen[key(p)] = true
			last = d
		}
	}
}

func TestRadiusSearch_CompatRootProbe(t *testing.T) {
	t.Parallel()
	// root is (3,0,0); its gt child is (5,0,0). The query lies on the lt
	// side of the root, so only the root probe can reach the gt subtree.
	tree, err := Build(points(
		[]float64{1, 0, 0},
		[]float64{2, 0, 0},
		[]float64{3, 0, 0},
		[]float64{5, 0, 0},
		[]float64{6, 0, 0},
	), 3)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 0, 0}, tree.coords[tree.root.ref])
	require.Equal(t, []float64{5, 0, 0}, tree.coords[tree.root.gt.ref])

	found, err := tree.RadiusSearch([]float64{2.5, 0, 0}, math.Inf(1), WithRadiusMode(RadiusCompat))
	require.NoError(t, err)
	require.Equal(t, [][]float64{{3, 0, 0}, {2, 0, 0}}, coordsOf(found))

	far, err := tree.RadiusSearch([]float64{-4, 0, 0}, math.Inf(1), WithRadiusMode(RadiusCompat))
	require.NoError(t, err)
	require.Equal(t, [][]float64{{3, 0, 0}, {1, 0, 0}}, coordsOf(far))
}

func TestParseRadiusMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       string
		expected RadiusMode
		err      bool
	}{
		{in: "", expected: RadiusExact},
		{in: "exact", expected: RadiusExact},
		{in: " COMPAT ", expected: RadiusCompat},
		{in: "fast", err: true},
	}
	for _, test := range tests {
		got, err := ParseRadiusMode(test.in)
		if test.err {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, test.expected, got)
		require.Equal(t, got, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, s string) RadiusMode {
	t.Helper()
	m, err := ParseRadiusMode(s)
	require.NoError(t, err)
	return m
}

func coordsOf(pts []Point) [][]float64 {
	out := make([][]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Points()
	}
	return out
}
