package query

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-sod/kdindex/internal/cache"
	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/httputil"
	"github.com/go-sod/kdindex/internal/index"
	"github.com/go-sod/kdindex/internal/logging"
	"github.com/go-sod/kdindex/pkg/container/kdtree"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const maxBodyBytes = 16 * 1024 * 1024

// Searcher is satisfied by *index.Index.
type Searcher interface {
	Range(ctx context.Context, lo, hi []float64, verbose bool) (index.RangeReport, error)
	Radius(ctx context.Context, q []float64, cutoff float64) (index.RadiusReport, error)
	RadiusMode() kdtree.RadiusMode
}

type handler struct {
	cfg       *Config
	searcher  Searcher
	cache     cache.Cache
	namespace string
}

type Option func(*handler)

// WithCache enables caching of per query results under namespace. Entries
// hold untruncated results, so instances with different point limits can
// share them.
func WithCache(c cache.Cache, namespace string) Option {
	return func(h *handler) {
		h.cache = c
		h.namespace = namespace
	}
}

func newHandler(cfg *Config, searcher Searcher, opts ...Option) *handler {
	h := &handler{
		cfg:      cfg,
		searcher: searcher,
		cache:    cache.Noop{},
	}
	for _, f := range opts {
		f(h)
	}
	return h
}

// begin checks and decodes the request into req. It returns a context
// carrying the request timeout and a request scoped logger.
func (h *handler) begin(w http.ResponseWriter, r *http.Request, req interface{}, batchLen func() int) (context.Context, context.CancelFunc, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	logger := logging.FromContext(ctx).With("request", uuid.New().String())
	ctx = logging.WithLogger(ctx, logger)

	if !httputil.RequirePostJSON(ctx, w, r) {
		return ctx, cancel, false
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return ctx, cancel, false
	}

	n := batchLen()
	if n == 0 {
		httputil.RespBadRequest(ctx, w, `{"error": "queries must not be empty"}`)
		return ctx, cancel, false
	}
	if n > h.cfg.MaxBatchLen {
		httputil.RespBadRequest(ctx, w, `{"error": "queries batch is too large, max allowed len is %d"}`, h.cfg.MaxBatchLen)
		return ctx, cancel, false
	}
	logger.Debugf("%s %s: %d queries", r.Method, r.URL.Path, n)

	return ctx, cancel, true
}

// cached runs fn unless a result for key is cached. Cache failures are
// logged and never fail the query.
func (h *handler) cached(ctx context.Context, key string, dst interface{}, fn func() bool) {
	logger := logging.FromContext(ctx)
	if raw, ok, err := h.cache.Get(ctx, key); err != nil {
		logger.Warnf("cache get: %v", err)
	} else if ok {
		if err := json.Unmarshal(raw, dst); err == nil {
			return
		}
		logger.Warnf("cache entry %s is corrupt", key)
	}

	if !fn() {
		return
	}
	raw, err := json.Marshal(dst)
	if err != nil {
		logger.Warnf("cache encode: %v", err)
		return
	}
	if err := h.cache.Set(ctx, key, raw); err != nil {
		logger.Warnf("cache set: %v", err)
	}
}

// fanOut runs fn for every query index concurrently.
func fanOut(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	errGrp, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		errGrp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(ctx, i)
			return nil
		})
	}
	return errGrp.Wait()
}

// limit cuts points to the configured maximum and reports whether it did.
func (h *handler) limit(points []geom.Point) ([]geom.Point, bool) {
	if len(points) > h.cfg.MaxVerbosePoints {
		return points[:h.cfg.MaxVerbosePoints], true
	}
	return points, false
}

func (h *handler) respond(ctx context.Context, w http.ResponseWriter, resp interface{}) {
	bytes, err := json.Marshal(resp)
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	httputil.RespJSON(w, http.StatusOK, bytes)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprint(err)
}
