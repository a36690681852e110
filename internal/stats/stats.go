// Package stats defines the opencensus measures recorded by the index and
// exports them for prometheus.
package stats

import (
	"context"
	"fmt"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

const (
	QueryRange  = "range"
	QueryRadius = "radius"
	QueryKNN    = "knn"
)

var (
	BuildLatencyMs = stats.Float64("kdindex/build_latency", "time spent building the tree", stats.UnitMilliseconds)
	QueryLatencyMs = stats.Float64("kdindex/query_latency", "time spent answering a query", stats.UnitMilliseconds)
	RangeVisited   = stats.Int64("kdindex/range_visited", "nodes visited by a range search", stats.UnitDimensionless)
	QueryMatches   = stats.Int64("kdindex/query_matches", "points returned by a query", stats.UnitDimensionless)

	KeyQuery, _ = tag.NewKey("query")
)

var latencyBounds = view.Distribution(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000)

var countBounds = view.Distribution(0, 1, 10, 100, 1000, 10000, 100000, 1000000)

var Views = []*view.View{
	{
		Name:        "kdindex/build_latency",
		Measure:     BuildLatencyMs,
		Description: "distribution of tree build latency",
		Aggregation: latencyBounds,
	},
	{
		Name:        "kdindex/query_latency",
		Measure:     QueryLatencyMs,
		Description: "distribution of query latency by query kind",
		TagKeys:     []tag.Key{KeyQuery},
		Aggregation: latencyBounds,
	},
	{
		Name:        "kdindex/range_visited",
		Measure:     RangeVisited,
		Description: "distribution of visited nodes per range search",
		Aggregation: countBounds,
	},
	{
		Name:        "kdindex/query_matches",
		Measure:     QueryMatches,
		Description: "distribution of matches by query kind",
		TagKeys:     []tag.Key{KeyQuery},
		Aggregation: countBounds,
	},
}

func Register() error {
	if err := view.Register(Views...); err != nil {
		return fmt.Errorf("stats: register views: %w", err)
	}
	return nil
}

// NewExporter returns the prometheus exporter. It is an http.Handler for
// the /metrics endpoint.
func NewExporter(namespace string) (*prometheus.Exporter, error) {
	exporter, err := prometheus.NewExporter(prometheus.Options{
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("stats: create prometheus exporter: %w", err)
	}
	return exporter, nil
}

func RecordBuild(ctx context.Context, elapsed time.Duration) {
	stats.Record(ctx, BuildLatencyMs.M(ms(elapsed)))
}

// RecordQuery tags the measurements with the query kind. visited is only
// recorded for range searches.
func RecordQuery(ctx context.Context, kind string, elapsed time.Duration, matches, visited int) {
	ctx, err := tag.New(ctx, tag.Upsert(KeyQuery, kind))
	if err != nil {
		return
	}
	measurements := []stats.Measurement{
		QueryLatencyMs.M(ms(elapsed)),
		QueryMatches.M(int64(matches)),
	}
	if kind == QueryRange {
		measurements = append(measurements, RangeVisited.M(int64(visited)))
	}
	stats.Record(ctx, measurements...)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
