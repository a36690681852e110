package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sod/kdindex/internal/cache"
	"github.com/go-sod/kdindex/internal/database"
	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/index"
	"github.com/go-sod/kdindex/internal/logging"
	"github.com/go-sod/kdindex/internal/pointfile"
	"github.com/go-sod/kdindex/internal/pointstore"
	"github.com/go-sod/kdindex/internal/srvenv"
	"github.com/go-sod/kdindex/internal/stats"
	"github.com/go-sod/kdindex/pkg/container/kdtree"
	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

var ErrNoPointSource = errors.New("either a points file or a dataset must be configured")

// provideCache is swapped in tests that run without redis.
var provideCache = ProvideCacheFor

type IndexConfigProvider interface {
	IndexConfig() *index.Config
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type CacheConfigProvider interface {
	CacheConfig() *cache.Config
}

func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := stats.Register(); err != nil {
		return nil, err
	}

	var db *database.DB
	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok && dbConfigProvider.DatabaseConfig().Enabled() {
		logger.Info("Configuring db")
		dbFromEnv, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		db = dbFromEnv
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	var c cache.Cache
	if cacheConfigProvider, ok := config.(CacheConfigProvider); ok && cacheConfigProvider.CacheConfig().Enabled() {
		logger.Info("Configuring cache")
		cacheFromEnv, err := provideCache(ctx, cacheConfigProvider)
		if err != nil {
			closeDB(ctx, db)
			return nil, err
		}
		c = cacheFromEnv
		serverEnvOpts = append(serverEnvOpts, srvenv.WithCache(c))
	}

	if indexConfigProvider, ok := config.(IndexConfigProvider); ok {
		logger.Info("Configuring index")
		ix, namespace, err := ProvideIndexFor(ctx, indexConfigProvider.IndexConfig(), db)
		if err != nil {
			closeCache(ctx, c)
			closeDB(ctx, db)
			return nil, fmt.Errorf("unable create index: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithIndex(ix, namespace))
	}

	return srvenv.New(serverEnvOpts...), nil
}

func ProvideCacheFor(ctx context.Context, provider CacheConfigProvider) (cache.Cache, error) {
	r := cache.NewRedis(provider.CacheConfig())
	if err := r.Ping(ctx); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("unable reach redis: %w", err)
	}
	return r, nil
}

// ProvideIndexFor loads the configured point set and builds the index over
// it. The returned namespace is the dataset id, or a fresh id for a file.
func ProvideIndexFor(ctx context.Context, cfg *index.Config, db *database.DB) (*index.Index, string, error) {
	logger := logging.FromContext(ctx)
	mode, err := kdtree.ParseRadiusMode(cfg.RadiusMode)
	if err != nil {
		return nil, "", err
	}

	var (
		points    []geom.Point
		dims      = cfg.Dimensions
		namespace string
	)
	switch {
	case cfg.PointsFile != "":
		logger.Infof("reading points from %s", cfg.PointsFile)
		points, err = pointfile.ReadFile(cfg.PointsFile, dims)
		if err != nil {
			return nil, "", err
		}
		namespace = uuid.New().String()
	case cfg.Dataset != "" && db != nil:
		logger.Infof("loading dataset %s", cfg.Dataset)
		var meta pointstore.Meta
		points, meta, err = pointstore.New(db).Load(ctx, cfg.Dataset)
		if err != nil {
			return nil, "", err
		}
		dims = meta.Dims
		namespace = meta.ID.String()
	default:
		return nil, "", ErrNoPointSource
	}

	ix, err := index.New(ctx, points, dims, index.WithRadiusMode(mode))
	if err != nil {
		return nil, "", err
	}
	return ix, namespace, nil
}

func closeDB(ctx context.Context, db *database.DB) {
	if db == nil {
		return
	}
	if err := db.Close(ctx); err != nil {
		logging.FromContext(ctx).Errorf("close db: %v", err)
	}
}

func closeCache(ctx context.Context, c cache.Cache) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.FromContext(ctx).Errorf("close cache: %v", err)
	}
}
