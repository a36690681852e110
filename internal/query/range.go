package query

import (
	"context"
	"net/http"

	"github.com/go-sod/kdindex/internal/cache"
	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/httputil"
)

type rangeRequest struct {
	Queries []struct {
		Lo      []float64 `json:"lo"`
		Hi      []float64 `json:"hi"`
		Verbose bool      `json:"verbose"`
	} `json:"queries"`
}

type rangeResult struct {
	Matches   int          `json:"matches"`
	Visited   int          `json:"visited"`
	Points    []geom.Point `json:"points,omitempty"`
	Truncated bool         `json:"truncated,omitempty"`
	Error     string       `json:"error,omitempty"`
}

type rangeResponse struct {
	Results []rangeResult `json:"results"`
}

// NewRangeHandler serves POST /range.
func NewRangeHandler(cfg *Config, searcher Searcher, opts ...Option) (http.Handler, error) {
	return &rangeHandler{handler: newHandler(cfg, searcher, opts...)}, nil
}

type rangeHandler struct {
	*handler
}

func (h *rangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	ctx, cancel, ok := h.begin(w, r, &req, func() int { return len(req.Queries) })
	defer cancel()
	if !ok {
		return
	}

	results := make([]rangeResult, len(req.Queries))
	if err := fanOut(ctx, len(req.Queries), func(ctx context.Context, i int) {
		q := req.Queries[i]

		var res rangeResult
		h.cached(ctx, cache.Key(h.namespace, "range", rangeParams(q.Lo, q.Hi, q.Verbose)), &res, func() bool {
			report, err := h.searcher.Range(ctx, q.Lo, q.Hi, q.Verbose)
			if err != nil {
				res = rangeResult{Error: errString(err)}
				return false
			}
			res = rangeResult{Matches: report.Matches, Visited: report.Visited, Points: report.Points}
			return true
		})
		res.Points, res.Truncated = h.limit(res.Points)
		results[i] = res
	}); err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "range processing error, %v"}`, err)
		return
	}

	h.respond(ctx, w, rangeResponse{Results: results})
}

func rangeParams(lo, hi []float64, verbose bool) []float64 {
	params := make([]float64, 0, len(lo)+len(hi)+3)
	params = append(params, float64(len(lo)))
	params = append(params, lo...)
	params = append(params, hi...)
	if verbose {
		params = append(params, 1)
	} else {
		params = append(params, 0)
	}
	return params
}
