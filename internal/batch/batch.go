// Package batch runs range and radius queries listed in a toml file:
//
//	[[range]]
//	name = "origin"
//	lo = [0, 0, 0]
//	hi = [1, 1, 1]
//	verbose = true
//
//	[[radius]]
//	point = [1.5, 2.0, 0.5]
//	cutoff = 4.0
//
//	[[nearest]]
//	point = [1, 1, 1]
//	k = 5
//
// A radius query without cutoff is unbounded.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-sod/kdindex/internal/index"
	"github.com/go-sod/kdindex/pkg/rworker"
)

const (
	KindRange   = "range"
	KindRadius  = "radius"
	KindNearest = "nearest"
)

var ErrNotNumber = errors.New("value is not a number")

type Searcher interface {
	Range(ctx context.Context, lo, hi []float64, verbose bool) (index.RangeReport, error)
	Radius(ctx context.Context, q []float64, cutoff float64) (index.RadiusReport, error)
	Nearest(ctx context.Context, q []float64, k int) (index.NearestReport, error)
}

// Coords accepts integers and floats.
type Coords []interface{}

func (c Coords) Floats() ([]float64, error) {
	out := make([]float64, len(c))
	for i, v := range c {
		switch n := v.(type) {
		case int64:
			out[i] = float64(n)
		case float64:
			out[i] = n
		default:
			return nil, fmt.Errorf("%w: %v", ErrNotNumber, v)
		}
	}
	return out, nil
}

type RangeQuery struct {
	Name    string `toml:"name"`
	Lo      Coords `toml:"lo"`
	Hi      Coords `toml:"hi"`
	Verbose bool   `toml:"verbose"`
}

type RadiusQuery struct {
	Name   string      `toml:"name"`
	Point  Coords      `toml:"point"`
	Cutoff interface{} `toml:"cutoff"`
}

type NearestQuery struct {
	Name  string `toml:"name"`
	Point Coords `toml:"point"`
	K     int    `toml:"k"`
}

type File struct {
	Range   []RangeQuery   `toml:"range"`
	Radius  []RadiusQuery  `toml:"radius"`
	Nearest []NearestQuery `toml:"nearest"`
}

func (f *File) Len() int {
	return len(f.Range) + len(f.Radius) + len(f.Nearest)
}

func Parse(data string) (*File, error) {
	var f File
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("batch: decode: %w", err)
	}
	return &f, nil
}

func LoadFile(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("batch: decode %s: %w", path, err)
	}
	return &f, nil
}

// Result of one query. Exactly one report is set unless Err is.
type Result struct {
	Kind    string
	Name    string
	Range   *index.RangeReport
	Radius  *index.RadiusReport
	Nearest *index.NearestReport
	Err     error
}

// Run executes every query of f with at most concurrency in flight. The
// results keep file order: ranges, then radius, then nearest queries. Query errors are reported per
// result; the returned error is only set when ctx ends.
func Run(ctx context.Context, s Searcher, f *File, concurrency int) ([]Result, error) {
	results := make([]Result, f.Len())
	pool := rworker.New(concurrency)

	for i := range f.Range {
		i, q := i, f.Range[i]
		pool.Go(func() error {
			results[i] = runRange(ctx, s, q)
			return ctx.Err()
		})
	}
	radiusAt := len(f.Range)
	for i := range f.Radius {
		i, q := i, f.Radius[i]
		pool.Go(func() error {
			results[radiusAt+i] = runRadius(ctx, s, q)
			return ctx.Err()
		})
	}
	nearestAt := radiusAt + len(f.Radius)
	for i := range f.Nearest {
		i, q := i, f.Nearest[i]
		pool.Go(func() error {
			results[nearestAt+i] = runNearest(ctx, s, q)
			return ctx.Err()
		})
	}

	if err := pool.Wait(); err != nil {
		return results, fmt.Errorf("batch: %w", err)
	}
	return results, nil
}

func runRange(ctx context.Context, s Searcher, q RangeQuery) Result {
	res := Result{Kind: KindRange, Name: q.Name}
	lo, err := q.Lo.Floats()
	if err != nil {
		res.Err = fmt.Errorf("lo: %w", err)
		return res
	}
	hi, err := q.Hi.Floats()
	if err != nil {
		res.Err = fmt.Errorf("hi: %w", err)
		return res
	}
	report, err := s.Range(ctx, lo, hi, q.Verbose)
	if err != nil {
		res.Err = err
		return res
	}
	res.Range = &report
	return res
}

func runRadius(ctx context.Context, s Searcher, q RadiusQuery) Result {
	res := Result{Kind: KindRadius, Name: q.Name}
	point, err := q.Point.Floats()
	if err != nil {
		res.Err = fmt.Errorf("point: %w", err)
		return res
	}
	cutoff := index.Unbounded()
	if q.Cutoff != nil {
		c, err := Coords{q.Cutoff}.Floats()
		if err != nil {
			res.Err = fmt.Errorf("cutoff: %w", err)
			return res
		}
		cutoff = c[0]
	}
	report, err := s.Radius(ctx, point, cutoff)
	if err != nil {
		res.Err = err
		return res
	}
	res.Radius = &report
	return res
}

func runNearest(ctx context.Context, s Searcher, q NearestQuery) Result {
	res := Result{Kind: KindNearest, Name: q.Name}
	point, err := q.Point.Floats()
	if err != nil {
		res.Err = fmt.Errorf("point: %w", err)
		return res
	}
	report, err := s.Nearest(ctx, point, q.K)
	if err != nil {
		res.Err = err
		return res
	}
	res.Nearest = &report
	return res
}
