package geom

import "testing"

func TestPoint_Dimensions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		p        Point
		expected int
	}{
		{
			name:     "positive",
			p:        Point{1, 2, 3, 4, 5},
			expected: 5,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			cmp := test.p.Dimensions()
			if cmp != test.expected {
				t.Errorf("the comparison is incorrect got: %v, expected: %v", cmp, test.expected)
			}
		})
	}
}

func TestPoint_Points(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		p        Point
		slice    []float64
		expected bool
	}{
		{name: "positive", p: Point{1, 2, 3}, slice: []float64{1, 2, 3}, expected: true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			slice := test.p.Points()
			for i := range slice {
				if slice[i] != test.slice[i] {
					t.Errorf(
						"conversion to []float64 got: slice[%d] != test.slice[%d], "+
							"expected: slice[%d] == test.slice[%d]", i, i, i, i)
				}
			}
		})
	}
}

func TestPoint_String(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		p        Point
		expected string
	}{
		{name: "integers", p: Point{1, 2, 3}, expected: "(1,2,3)"},
		{name: "fractions", p: Point{-0.5, 2.25, 1e-7}, expected: "(-0.5,2.25,1e-07)"},
		{name: "empty", p: Point{}, expected: "()"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := test.p.String(); got != test.expected {
				t.Errorf("formatting the point got: %v, expected: %v", got, test.expected)
			}
		})
	}
}
