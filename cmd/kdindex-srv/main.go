package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-sod/kdindex/internal/buildinfo"
	kdindex "github.com/go-sod/kdindex/internal/config"
	"github.com/go-sod/kdindex/internal/logging"
	"github.com/go-sod/kdindex/internal/query"
	"github.com/go-sod/kdindex/internal/server"
	"github.com/go-sod/kdindex/internal/setup"
	"github.com/go-sod/kdindex/internal/shutdown"
	"github.com/go-sod/kdindex/internal/stats"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	buildinfo.Info.Banner(os.Stdout)

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	err := run(ctx)
	done()
	if err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	config := kdindex.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer func() {
		if err := env.Close(context.Background()); err != nil {
			logger.Errorf("env.Close: %v", err)
		}
	}()

	exporter, err := stats.NewExporter("kdindex")
	if err != nil {
		return fmt.Errorf("stats.NewExporter: %w", err)
	}

	var opts []query.Option
	opts = append(opts, query.WithCache(env.Cache(), env.Namespace()))
	rangeHandler, err := query.NewRangeHandler(config.QueryConfig(), env.Index(), opts...)
	if err != nil {
		return fmt.Errorf("query.NewRangeHandler: %w", err)
	}
	radiusHandler, err := query.NewRadiusHandler(config.QueryConfig(), env.Index(), opts...)
	if err != nil {
		return fmt.Errorf("query.NewRadiusHandler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/range", rangeHandler)
	mux.Handle("/radius", radiusHandler)
	mux.Handle("/health", server.HandleHealth(ctx))
	mux.Handle("/metrics", exporter)

	srv, err := server.New(config.SrvAddr, server.WithMaxConns(config.MaxConns))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	grpcSrv, err := server.New(config.GRPCAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	g := grpc.NewServer()
	healthpb.RegisterHealthServer(g, healthSrv)

	errGrp, ctx := errgroup.WithContext(ctx)
	errGrp.Go(func() error {
		return srv.ServeHTTPHandler(ctx, mux)
	})
	errGrp.Go(func() error {
		return grpcSrv.ServeGRPC(ctx, g)
	})
	errGrp.Go(func() error {
		<-ctx.Done()
		healthSrv.Shutdown()
		return nil
	})

	logger.Infof("index ready, points: %d, dimensions: %d", env.Index().Len(), env.Index().Dimensions())
	return errGrp.Wait()
}
