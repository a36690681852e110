package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/index"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *index.Index {
	t.Helper()
	ix, err := index.New(context.Background(), []geom.Point{
		{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {0, 0, 0},
	}, 3)
	require.NoError(t, err)
	return ix
}

func run(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	err := New(newIndex(t), strings.NewReader(input), &out).Run(context.Background())
	require.NoError(t, err)
	return out.String()
}

func TestSession(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "range_show",
			input:    "Q1 0 1 0 1 0 1\nSHOW\nQUIT\n",
			contains: []string{"returned tuples: 2", "visited nodes:", "(0,0,0)\n", "(1,1,1)\n"},
		},
		{
			name:     "range_no_show",
			input:    "Q1 0 1 0 1 0 1\nno\nQUIT\n",
			contains: []string{"returned tuples: 2"},
			excludes: []string{"(1,1,1)\n"},
		},
		{
			name:     "range_params_next_line",
			input:    "q1\n0 2 0 2 0 2\n\nQUIT\n",
			contains: []string{"Enter range bounds", "returned tuples: 3"},
		},
		{
			name:     "radius_unbounded",
			input:    "Q2 0 0 0\nQUIT\n",
			contains: []string{"2 points within +Inf of [0 0 0]", "(1,1,1) squared: 3, distance: 1.7320508075688772\n", "(2,2,2) squared: 12,"},
		},
		{
			name:     "radius_cutoff",
			input:    "Q2 0 0 0 3\nQUIT\n",
			contains: []string{"1 points within 3 of [0 0 0]", "(1,1,1) squared: 3"},
			excludes: []string{"(2,2,2)"},
		},
		{
			name:     "errors_keep_going",
			input:    "Q1 0 1\nQ2 a b c\nHELLO\nQ2 0 0 0 1\n",
			contains: []string{"wrong number of parameters", "invalid syntax", `unrecognised input "HELLO"`, "0 points within 1"},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			out := run(t, test.input)
			for _, s := range test.contains {
				require.Contains(t, out, s)
			}
			for _, s := range test.excludes {
				require.NotContains(t, out, s)
			}
		})
	}
}

func TestSession_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(newIndex(t), strings.NewReader("QUIT\n"), &bytes.Buffer{}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
