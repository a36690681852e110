package setup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-sod/kdindex/internal/cache"
	"github.com/go-sod/kdindex/internal/database"
	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/index"
	"github.com/go-sod/kdindex/internal/pointfile"
	"github.com/go-sod/kdindex/internal/pointstore"
	"github.com/go-sod/kdindex/pkg/container/kdtree"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Index    index.Config
	Database database.Config
	Cache    cache.Config
}

func (c *testConfig) IndexConfig() *index.Config       { return &c.Index }
func (c *testConfig) DatabaseConfig() *database.Config { return &c.Database }
func (c *testConfig) CacheConfig() *cache.Config       { return &c.Cache }

func TestSetup_PointsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.txt")
	require.NoError(t, pointfile.WriteFile(path, []geom.Point{{0, 0, 0}, {1, 1, 1}, {0, 0, 0}}))
	t.Setenv("KDINDEX_POINTS_FILE", path)
	t.Setenv("KDINDEX_RADIUS_MODE", "compat")

	ctx := context.Background()
	cfg := testConfig{}
	env, err := Setup(ctx, &cfg)
	require.NoError(t, err)
	defer env.Close(ctx)

	require.Equal(t, 3, cfg.Index.Dimensions)
	require.Nil(t, env.Database())
	require.IsType(t, cache.Noop{}, env.Cache())
	require.NotEmpty(t, env.Namespace())
	require.Equal(t, 2, env.Index().Len())
	require.Equal(t, kdtree.RadiusCompat, env.Index().RadiusMode())
}

func TestSetup_Dataset(t *testing.T) {
	ctx := context.Background()
	dbFile := filepath.Join(t.TempDir(), "kdindex.db")
	db, err := database.NewFromEnv(ctx, &database.Config{FileName: dbFile})
	require.NoError(t, err)
	meta, err := pointstore.New(db).Save(ctx, "plane", 2, []geom.Point{{0, 0}, {1, 2}, {3, 4}})
	require.NoError(t, err)
	require.NoError(t, db.Close(ctx))

	t.Setenv("KDINDEX_DB_FILE", dbFile)
	t.Setenv("KDINDEX_DATASET", "plane")

	cfg := testConfig{}
	env, err := Setup(ctx, &cfg)
	require.NoError(t, err)
	defer env.Close(ctx)

	require.NotNil(t, env.Database())
	require.Equal(t, meta.ID.String(), env.Namespace())
	require.Equal(t, 2, env.Index().Dimensions())
	require.Equal(t, 3, env.Index().Len())
}

func TestSetup_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		err  error
	}{
		{name: "no_source", env: map[string]string{}, err: ErrNoPointSource},
		{name: "bad_mode", env: map[string]string{"KDINDEX_POINTS_FILE": "x", "KDINDEX_RADIUS_MODE": "fast"}},
		{name: "missing_file", env: map[string]string{"KDINDEX_POINTS_FILE": filepath.Join(t.TempDir(), "none")}},
		{name: "bad_dims", env: map[string]string{"KDINDEX_DIMENSIONS": "three"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			cfg := testConfig{}
			_, err := Setup(context.Background(), &cfg)
			require.Error(t, err)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
			}
		})
	}
}

type closingCache struct {
	cache.Noop
	closed bool
}

func (c *closingCache) Close() error {
	c.closed = true
	return nil
}

func TestSetup_ClosesCacheWhenIndexFails(t *testing.T) {
	opened := &closingCache{}
	provideCache = func(context.Context, CacheConfigProvider) (cache.Cache, error) {
		return opened, nil
	}
	defer func() { provideCache = ProvideCacheFor }()

	t.Setenv("KDINDEX_REDIS_ADDR", "localhost:6379")
	cfg := testConfig{}
	_, err := Setup(context.Background(), &cfg)
	require.ErrorIs(t, err, ErrNoPointSource)
	require.True(t, opened.closed)
}
