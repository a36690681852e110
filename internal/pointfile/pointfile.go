// Package pointfile reads and writes text files of tuples, one per line,
// such as:
//
//	(1.5,2,-3)
//	[4 5 6]
//	7, 8, 9
package pointfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-sod/kdindex/internal/geom"
)

var (
	ErrDimMismatch = errors.New("wrong number of coordinates")
	ErrInvalidDims = errors.New("dimensions must be positive")
)

type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pointfile: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads every tuple from r. Blank lines and lines starting with # are
// skipped.
func Parse(r io.Reader, dims int) ([]geom.Point, error) {
	if dims < 1 {
		return nil, ErrInvalidDims
	}

	var (
		points  []geom.Point
		scanner = bufio.NewScanner(r)
		line    int
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		point, err := ParseLine(text, dims)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		points = append(points, point)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pointfile: read: %w", err)
	}

	return points, nil
}

// ParseLine parses a single tuple. The tuple may be wrapped in () or [] and
// its values separated by commas, whitespace or both.
func ParseLine(text string, dims int) (geom.Point, error) {
	text = strings.TrimSpace(text)
	if n := len(text); n >= 2 && (text[0] == '(' && text[n-1] == ')' || text[0] == '[' && text[n-1] == ']') {
		text = text[1 : n-1]
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) != dims {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimMismatch, len(fields), dims)
	}

	point := make(geom.Point, dims)
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		point[i] = value
	}

	return point, nil
}

func ReadFile(path string, dims int) ([]geom.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pointfile: %w", err)
	}
	defer f.Close()

	return Parse(f, dims)
}

// Write stores points one per line as (x,y,z).
func Write(w io.Writer, points []geom.Point) error {
	bw := bufio.NewWriter(w)
	for _, point := range points {
		if _, err := bw.WriteString(point.String()); err != nil {
			return fmt.Errorf("pointfile: write: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("pointfile: write: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("pointfile: flush: %w", err)
	}

	return nil
}

func WriteFile(path string, points []geom.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pointfile: %w", err)
	}
	if err := Write(f, points); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
