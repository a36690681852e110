package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-sod/kdindex/internal/buildinfo"
	"github.com/go-sod/kdindex/internal/database"
	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/index"
	"github.com/go-sod/kdindex/internal/logging"
	"github.com/go-sod/kdindex/internal/pointfile"
	"github.com/go-sod/kdindex/internal/pointstore"
	"github.com/go-sod/kdindex/internal/shutdown"
	"github.com/go-sod/kdindex/pkg/container/kdtree"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, done := shutdown.New()
	err := newApp().RunContext(ctx, os.Args)
	done()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := &cli.App{
		Name:    "kdindex",
		Usage:   "build k-d tree indexes over point files and query them",
		Version: buildinfo.Info.Tag(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level: debug, info, warn or error",
			Value:   "warn",
			EnvVars: []string{"LOG_LEVEL"},
		},
		&cli.IntFlag{
			Name:    "dims",
			Usage:   "number of coordinates per point",
			Value:   3,
			EnvVars: []string{"KDINDEX_DIMENSIONS"},
		},
	}
	app.Before = func(cctx *cli.Context) error {
		logger := logging.NewLogger(cctx.String("log-level"), true)
		cctx.Context = logging.WithLogger(cctx.Context, logger)
		return nil
	}
	app.Commands = []*cli.Command{
		genCmd,
		importCmd,
		datasetsCmd,
		replCmd,
		batchCmd,
	}
	return app
}

var sourceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "in",
		Usage:   "point file to index",
		EnvVars: []string{"KDINDEX_POINTS_FILE"},
	},
	&cli.StringFlag{
		Name:    "db",
		Usage:   "bolt database holding datasets",
		EnvVars: []string{"KDINDEX_DB_FILE"},
	},
	&cli.StringFlag{
		Name:    "dataset",
		Usage:   "dataset name inside --db",
		EnvVars: []string{"KDINDEX_DATASET"},
	},
	&cli.StringFlag{
		Name:    "radius-mode",
		Usage:   "EXACT or COMPAT",
		Value:   kdtree.RadiusExact.String(),
		EnvVars: []string{"KDINDEX_RADIUS_MODE"},
	},
}

// openDB opens the --db file. The caller closes it.
func openDB(cctx *cli.Context) (*database.DB, error) {
	path := cctx.String("db")
	if path == "" {
		return nil, fmt.Errorf("--db is required")
	}
	return database.NewFromEnv(cctx.Context, &database.Config{FileName: path})
}

// loadIndex builds the index from --in or from --db and --dataset.
func loadIndex(cctx *cli.Context) (*index.Index, error) {
	ctx := cctx.Context
	mode, err := kdtree.ParseRadiusMode(cctx.String("radius-mode"))
	if err != nil {
		return nil, err
	}

	var (
		points []geom.Point
		dims   = cctx.Int("dims")
	)
	switch {
	case cctx.String("in") != "":
		points, err = pointfile.ReadFile(cctx.String("in"), dims)
		if err != nil {
			return nil, err
		}
	case cctx.String("dataset") != "":
		points, dims, err = loadDataset(ctx, cctx)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("either --in or --db with --dataset is required")
	}

	ix, err := index.New(ctx, points, dims, index.WithRadiusMode(mode))
	if err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintf(cctx.App.Writer, "indexed %d points (%d duplicates dropped) in %v, height %d\n",
		ix.Len(), ix.Dropped(), ix.BuildTime(), ix.Height())
	return ix, nil
}

func loadDataset(ctx context.Context, cctx *cli.Context) ([]geom.Point, int, error) {
	db, err := openDB(cctx)
	if err != nil {
		return nil, 0, err
	}
	defer db.Close(ctx)

	points, meta, err := pointstore.New(db).Load(ctx, cctx.String("dataset"))
	if err != nil {
		return nil, 0, err
	}
	return points, meta.Dims, nil
}
