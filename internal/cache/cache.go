// Package cache stores encoded query responses in redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-sod/kdindex/internal/util"
)

type Config struct {
	Addr        string        `envconfig:"KDINDEX_REDIS_ADDR"`
	Password    string        `envconfig:"KDINDEX_REDIS_PASSWORD"`
	DB          int           `envconfig:"KDINDEX_REDIS_DB" default:"0"`
	TTL         time.Duration `envconfig:"KDINDEX_CACHE_TTL" default:"5m"`
	DialTimeout time.Duration `envconfig:"KDINDEX_REDIS_DIAL_TIMEOUT" default:"2s"`
}

func (c *Config) Enabled() bool {
	return c != nil && c.Addr != ""
}

type Cache interface {
	// Get reports a miss with ok == false and a nil error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key builds kdindex:<namespace>:<kind>:<sha256 of params>. The namespace
// separates results of different index builds.
func Key(namespace, kind string, params []float64) string {
	var b strings.Builder
	b.WriteString("kdindex:")
	b.WriteString(namespace)
	b.WriteByte(':')
	b.WriteString(kind)
	b.WriteByte(':')
	b.WriteString(util.HashVectorHex(params))
	return b.String()
}

var _ Cache = (*Redis)(nil)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(cfg *Config) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:        cfg.Addr,
			Password:    cfg.Password,
			DB:          cfg.DB,
			DialTimeout: cfg.DialTimeout,
		}),
		ttl: cfg.TTL,
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Cache = Noop{}

// Noop is used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, string, []byte) error {
	return nil
}

func (Noop) Close() error {
	return nil
}
