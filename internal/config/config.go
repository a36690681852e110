package kdindex

import (
	"github.com/go-sod/kdindex/internal/cache"
	"github.com/go-sod/kdindex/internal/database"
	"github.com/go-sod/kdindex/internal/index"
	"github.com/go-sod/kdindex/internal/query"
	"github.com/go-sod/kdindex/internal/setup"
)

var (
	_ setup.IndexConfigProvider    = (*Config)(nil)
	_ setup.DatabaseConfigProvider = (*Config)(nil)
	_ setup.CacheConfigProvider    = (*Config)(nil)
)

type Config struct {
	SrvAddr  string `envconfig:"KDINDEX_ADDR" default:":8787"`
	GRPCAddr string `envconfig:"KDINDEX_GRPC_ADDR" default:":8788"`
	MaxConns int    `envconfig:"KDINDEX_MAX_CONNS" default:"0"`
	Index    index.Config
	Query    query.Config
	Database database.Config
	Cache    cache.Config
}

func (c *Config) IndexConfig() *index.Config {
	return &c.Index
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) CacheConfig() *cache.Config {
	return &c.Cache
}

func (c *Config) QueryConfig() *query.Config {
	return &c.Query
}
