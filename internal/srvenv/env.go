package srvenv

import (
	"context"
	"fmt"

	"github.com/go-sod/kdindex/internal/cache"
	"github.com/go-sod/kdindex/internal/database"
	"github.com/go-sod/kdindex/internal/index"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{cache: cache.Noop{}}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

// SrvEnv holds the resources shared by the servers of a process.
type SrvEnv struct {
	database  *database.DB
	index     *index.Index
	cache     cache.Cache
	namespace string
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

func (s *SrvEnv) Index() *index.Index {
	return s.index
}

func (s *SrvEnv) Cache() cache.Cache {
	return s.cache
}

// Namespace identifies the loaded point set in cache keys.
func (s *SrvEnv) Namespace() string {
	return s.namespace
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

func WithIndex(ix *index.Index, namespace string) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.index = ix
		s.namespace = namespace
		return s
	}
}

func WithCache(c cache.Cache) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.cache = c
		return s
	}
}

func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			return fmt.Errorf("close cache: %w", err)
		}
	}
	if s.database != nil {
		return s.database.Close(ctx)
	}
	return nil
}
