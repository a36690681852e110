// Package repl is the interactive query loop of the cli.
//
//	Q1 x1 x2 y1 y2 z1 z2   count the points in the box, then offer SHOW
//	Q2 x y z [cutoff]      list the points within the squared cutoff
//	QUIT                   leave
//
// Parameters left off a Q1 or Q2 line are read from the next line.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/index"
)

var (
	ErrArgCount = errors.New("wrong number of parameters")
	errQuit     = errors.New("quit")
)

type Searcher interface {
	Dimensions() int
	Range(ctx context.Context, lo, hi []float64, verbose bool) (index.RangeReport, error)
	Radius(ctx context.Context, q []float64, cutoff float64) (index.RadiusReport, error)
}

type Session struct {
	searcher Searcher
	in       *bufio.Scanner
	out      io.Writer
}

func New(searcher Searcher, in io.Reader, out io.Writer) *Session {
	return &Session{searcher: searcher, in: bufio.NewScanner(in), out: out}
}

// Run serves commands until QUIT, end of input or ctx ends.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.printf("Enter Q1 with %d range bounds, Q2 with a point and an optional cutoff, or QUIT:\n", 2*s.searcher.Dimensions())
		line, ok := s.readLine()
		if !ok {
			return s.in.Err()
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		err := s.dispatch(ctx, strings.ToUpper(fields[0]), fields[1:])
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			s.printf("error: %v\n", err)
		}
	}
}

func (s *Session) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "QUIT":
		return errQuit
	case "Q1":
		return s.rangeQuery(ctx, s.args(args, "range bounds as x1 x2 y1 y2 ..."))
	case "Q2":
		return s.radiusQuery(ctx, s.args(args, "a point and an optional squared cutoff"))
	default:
		s.printf("unrecognised input %q\n", cmd)
		return nil
	}
}

func (s *Session) rangeQuery(ctx context.Context, args []string) error {
	dims := s.searcher.Dimensions()
	values, err := parseFloats(args)
	if err != nil {
		return err
	}
	if len(values) != 2*dims {
		return fmt.Errorf("%w: got %d, expected %d", ErrArgCount, len(values), 2*dims)
	}
	lo := make([]float64, dims)
	hi := make([]float64, dims)
	for i := 0; i < dims; i++ {
		lo[i], hi[i] = values[2*i], values[2*i+1]
	}

	report, err := s.searcher.Range(ctx, lo, hi, false)
	if err != nil {
		return err
	}
	s.printf("range search took %v\n", report.Elapsed)
	s.printf("returned tuples: %d\n", report.Matches)
	s.printf("visited nodes: %d\n", report.Visited)
	if report.Matches == 0 {
		return nil
	}

	s.printf("Type SHOW to list the returned tuples:\n")
	answer, ok := s.readLine()
	if !ok || strings.ToUpper(strings.TrimSpace(answer)) != "SHOW" {
		return nil
	}
	verbose, err := s.searcher.Range(ctx, lo, hi, true)
	if err != nil {
		return err
	}
	for _, p := range verbose.Points {
		s.printf("%s\n", p)
	}
	return nil
}

func (s *Session) radiusQuery(ctx context.Context, args []string) error {
	dims := s.searcher.Dimensions()
	values, err := parseFloats(args)
	if err != nil {
		return err
	}
	cutoff := index.Unbounded()
	switch len(values) {
	case dims:
	case dims + 1:
		cutoff = values[dims]
		values = values[:dims]
	default:
		return fmt.Errorf("%w: got %d, expected %d or %d", ErrArgCount, len(values), dims, dims+1)
	}

	report, err := s.searcher.Radius(ctx, values, cutoff)
	if err != nil {
		return err
	}
	s.printf("radius search took %v\n", report.Elapsed)
	s.printf("%d points within %v of %v\n", len(report.Points), cutoff, values)
	for _, p := range report.Points {
		sq, err := geom.SquaredEuclideanDistance(values, p)
		if err != nil {
			return err
		}
		d, err := geom.EuclideanDistance(values, p)
		if err != nil {
			return err
		}
		s.printf("%s squared: %g, distance: %g\n", p, sq, d)
	}
	return nil
}

// args returns the inline parameters or reads them from the next line.
func (s *Session) args(inline []string, prompt string) []string {
	if len(inline) > 0 {
		return inline
	}
	s.printf("Enter %s:\n", prompt)
	line, _ := s.readLine()
	return strings.Fields(line)
}

func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Session) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
