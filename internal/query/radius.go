package query

import (
	"context"
	"net/http"

	"github.com/go-sod/kdindex/internal/cache"
	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/httputil"
	"github.com/go-sod/kdindex/internal/index"
)

type radiusRequest struct {
	Queries []struct {
		Point []float64 `json:"point"`
		// Cutoff is a squared distance, nil means unbounded.
		Cutoff *float64 `json:"cutoff"`
	} `json:"queries"`
}

type radiusResult struct {
	Matches   int          `json:"matches"`
	Points    []geom.Point `json:"points,omitempty"`
	Truncated bool         `json:"truncated,omitempty"`
	Error     string       `json:"error,omitempty"`
}

type radiusResponse struct {
	Results []radiusResult `json:"results"`
}

// NewRadiusHandler serves POST /radius.
func NewRadiusHandler(cfg *Config, searcher Searcher, opts ...Option) (http.Handler, error) {
	return &radiusHandler{handler: newHandler(cfg, searcher, opts...)}, nil
}

type radiusHandler struct {
	*handler
}

func (h *radiusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req radiusRequest
	ctx, cancel, ok := h.begin(w, r, &req, func() int { return len(req.Queries) })
	defer cancel()
	if !ok {
		return
	}

	results := make([]radiusResult, len(req.Queries))
	if err := fanOut(ctx, len(req.Queries), func(ctx context.Context, i int) {
		q := req.Queries[i]
		cutoff := index.Unbounded()
		if q.Cutoff != nil {
			cutoff = *q.Cutoff
		}
		params := append(append(make([]float64, 0, len(q.Point)+1), q.Point...), cutoff)
		kind := "radius:" + h.searcher.RadiusMode().String()

		var res radiusResult
		h.cached(ctx, cache.Key(h.namespace, kind, params), &res, func() bool {
			report, err := h.searcher.Radius(ctx, q.Point, cutoff)
			if err != nil {
				res = radiusResult{Error: errString(err)}
				return false
			}
			res = radiusResult{Matches: len(report.Points), Points: report.Points}
			return true
		})
		res.Points, res.Truncated = h.limit(res.Points)
		results[i] = res
	}); err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "radius processing error, %v"}`, err)
		return
	}

	h.respond(ctx, w, radiusResponse{Results: results})
}
