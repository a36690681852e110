// Package index wraps the k-d tree with the timing, logging and stats the
// service and the cli report for each build and query.
package index

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/logging"
	"github.com/go-sod/kdindex/internal/stats"
	"github.com/go-sod/kdindex/pkg/container/kdtree"
)

type Option func(*Index)

func WithRadiusMode(mode kdtree.RadiusMode) Option {
	return func(ix *Index) {
		ix.radiusMode = mode
	}
}

type Index struct {
	tree       *kdtree.Tree
	radiusMode kdtree.RadiusMode
	built      time.Duration
	dropped    int
}

type RangeReport struct {
	Matches int
	Visited int
	// Points is filled for verbose queries only.
	Points  []geom.Point
	Elapsed time.Duration
}

type RadiusReport struct {
	Points  []geom.Point
	Elapsed time.Duration
}

type NearestReport struct {
	Neighbors []kdtree.Neighbor
	Elapsed   time.Duration
}

// New builds the index over points. Duplicate points are dropped.
func New(ctx context.Context, points []geom.Point, dims int, opts ...Option) (*Index, error) {
	logger := logging.FromContext(ctx)
	ix := &Index{}
	for _, f := range opts {
		f(ix)
	}

	items := make([]kdtree.Point, len(points))
	for i := range points {
		items[i] = points[i]
	}

	start := time.Now()
	tree, err := kdtree.Build(items, dims)
	if err != nil {
		return nil, fmt.Errorf("index.New: %w", err)
	}
	ix.built = time.Since(start)
	ix.tree = tree
	ix.dropped = len(points) - tree.Len()

	stats.RecordBuild(ctx, ix.built)
	logger.Infof(
		"index built in %v, points: %d, duplicates dropped: %d, height: %d, radius mode: %s",
		ix.built, tree.Len(), ix.dropped, tree.Height(), ix.radiusMode,
	)

	return ix, nil
}

func (ix *Index) Len() int {
	return ix.tree.Len()
}

func (ix *Index) Dimensions() int {
	return ix.tree.Dimensions()
}

func (ix *Index) Height() int {
	return ix.tree.Height()
}

func (ix *Index) BuildTime() time.Duration {
	return ix.built
}

func (ix *Index) Dropped() int {
	return ix.dropped
}

func (ix *Index) RadiusMode() kdtree.RadiusMode {
	return ix.radiusMode
}

// Range counts the points inside the box [lo, hi]. When verbose is set the
// points are returned too.
func (ix *Index) Range(ctx context.Context, lo, hi []float64, verbose bool) (RangeReport, error) {
	var report RangeReport
	if err := ctx.Err(); err != nil {
		return report, err
	}

	mode := kdtree.ModeSilent
	var sink kdtree.Sink
	if verbose {
		mode = kdtree.ModeVerbose
		sink = func(p kdtree.Point) {
			report.Points = append(report.Points, p.(geom.Point))
		}
	}

	start := time.Now()
	res, err := ix.tree.RangeQuery(lo, hi, mode, sink)
	if err != nil {
		return RangeReport{}, err
	}
	report.Elapsed = time.Since(start)
	report.Matches = res.Matches
	report.Visited = res.Visited

	stats.RecordQuery(ctx, stats.QueryRange, report.Elapsed, report.Matches, report.Visited)
	logging.FromContext(ctx).Debugf(
		"range %v..%v: matches: %d, visited: %d, took %v",
		lo, hi, report.Matches, report.Visited, report.Elapsed,
	)

	return report, nil
}

// Radius returns the points whose squared distance to q is within cutoff,
// q itself excluded. A NaN cutoff is rejected; use math.Inf(1) for no limit.
func (ix *Index) Radius(ctx context.Context, q []float64, cutoff float64) (RadiusReport, error) {
	if err := ctx.Err(); err != nil {
		return RadiusReport{}, err
	}

	start := time.Now()
	found, err := ix.tree.RadiusSearch(q, cutoff, kdtree.WithRadiusMode(ix.radiusMode))
	if err != nil {
		return RadiusReport{}, err
	}
	report := RadiusReport{
		Points:  make([]geom.Point, len(found)),
		Elapsed: time.Since(start),
	}
	for i, p := range found {
		report.Points[i] = p.(geom.Point)
	}

	stats.RecordQuery(ctx, stats.QueryRadius, report.Elapsed, len(report.Points), 0)
	logging.FromContext(ctx).Debugf(
		"radius %v cutoff %v: matches: %d, took %v",
		q, cutoff, len(report.Points), report.Elapsed,
	)

	return report, nil
}

// Nearest returns the k points closest to q ordered by distance.
func (ix *Index) Nearest(ctx context.Context, q []float64, k int) (NearestReport, error) {
	if err := ctx.Err(); err != nil {
		return NearestReport{}, err
	}

	start := time.Now()
	neighbors, err := ix.tree.KNN(q, k)
	if err != nil {
		return NearestReport{}, err
	}
	report := NearestReport{Neighbors: neighbors, Elapsed: time.Since(start)}

	stats.RecordQuery(ctx, stats.QueryKNN, report.Elapsed, len(neighbors), 0)
	return report, nil
}

// Unbounded is the cutoff used when a radius query gives none.
func Unbounded() float64 {
	return math.Inf(1)
}
