package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-sod/kdindex/internal/batch"
	"github.com/go-sod/kdindex/internal/geom"
	"github.com/go-sod/kdindex/internal/pointfile"
	"github.com/go-sod/kdindex/internal/pointstore"
	"github.com/go-sod/kdindex/internal/repl"
	"github.com/urfave/cli/v2"
	"github.com/valyala/fastrand"
)

var genCmd = &cli.Command{
	Name:  "gen",
	Usage: "write random points on an integer grid",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "count", Value: 1000, Usage: "number of points"},
		&cli.UintFlag{Name: "max", Value: 1000, Usage: "coordinates are drawn from [0, max)"},
		&cli.StringFlag{Name: "out", Usage: "output file, stdout when empty"},
	},
	Action: func(cctx *cli.Context) error {
		dims, count, limit := cctx.Int("dims"), cctx.Int("count"), uint32(cctx.Uint("max"))
		if limit == 0 {
			return fmt.Errorf("--max must be positive")
		}
		if count < 0 {
			return fmt.Errorf("--count must not be negative")
		}
		if dims < 1 {
			return fmt.Errorf("--dims must be positive")
		}
		points := make([]geom.Point, count)
		for i := range points {
			p := make(geom.Point, dims)
			for d := range p {
				p[d] = float64(fastrand.Uint32n(limit))
			}
			points[i] = p
		}
		if out := cctx.String("out"); out != "" {
			return pointfile.WriteFile(out, points)
		}
		return pointfile.Write(cctx.App.Writer, points)
	},
}

var importCmd = &cli.Command{
	Name:  "import",
	Usage: "store a point file as a dataset",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "in", Required: true, Usage: "point file"},
		&cli.StringFlag{Name: "db", Required: true, Usage: "bolt database file", EnvVars: []string{"KDINDEX_DB_FILE"}},
		&cli.StringFlag{Name: "dataset", Required: true, Usage: "dataset name"},
	},
	Action: func(cctx *cli.Context) error {
		dims := cctx.Int("dims")
		points, err := pointfile.ReadFile(cctx.String("in"), dims)
		if err != nil {
			return err
		}
		db, err := openDB(cctx)
		if err != nil {
			return err
		}
		defer db.Close(cctx.Context)

		meta, err := pointstore.New(db).Save(cctx.Context, cctx.String("dataset"), dims, points)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cctx.App.Writer, "stored %d points as %s (%s)\n", meta.Count, meta.Name, meta.ID)
		return nil
	},
}

var datasetsCmd = &cli.Command{
	Name:  "datasets",
	Usage: "list stored datasets",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "db", Required: true, Usage: "bolt database file", EnvVars: []string{"KDINDEX_DB_FILE"}},
		&cli.StringFlag{Name: "delete", Usage: "delete the named dataset instead"},
	},
	Action: func(cctx *cli.Context) error {
		db, err := openDB(cctx)
		if err != nil {
			return err
		}
		defer db.Close(cctx.Context)
		store := pointstore.New(db)

		if name := cctx.String("delete"); name != "" {
			return store.Delete(cctx.Context, name)
		}
		metas, err := store.List(cctx.Context)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cctx.App.Writer, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tDIMS\tPOINTS\tCREATED\tID")
		for _, m := range metas {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", m.Name, m.Dims, m.Count, m.CreatedAt.Format(time.RFC3339), m.ID)
		}
		return w.Flush()
	},
}

var replCmd = &cli.Command{
	Name:  "repl",
	Usage: "query an index interactively",
	Flags: sourceFlags,
	Action: func(cctx *cli.Context) error {
		ix, err := loadIndex(cctx)
		if err != nil {
			return err
		}
		return repl.New(ix, os.Stdin, cctx.App.Writer).Run(cctx.Context)
	},
}

var batchCmd = &cli.Command{
	Name:  "batch",
	Usage: "run the queries of a toml file",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "queries", Required: true, Usage: "toml query file"},
		&cli.IntFlag{Name: "concurrency", Value: 4, Usage: "queries in flight"},
	}, sourceFlags...),
	Action: func(cctx *cli.Context) error {
		f, err := batch.LoadFile(cctx.String("queries"))
		if err != nil {
			return err
		}
		ix, err := loadIndex(cctx)
		if err != nil {
			return err
		}
		results, err := batch.Run(cctx.Context, ix, f, cctx.Int("concurrency"))
		if err != nil {
			return err
		}
		for i, res := range results {
			printResult(cctx, i, res)
		}
		return nil
	},
}

func printResult(cctx *cli.Context, i int, res batch.Result) {
	w := cctx.App.Writer
	name := res.Name
	if name == "" {
		name = fmt.Sprintf("#%d", i)
	}
	switch {
	case res.Err != nil:
		_, _ = fmt.Fprintf(w, "%s %s: error: %v\n", res.Kind, name, res.Err)
	case res.Range != nil:
		_, _ = fmt.Fprintf(w, "%s %s: matches %d, visited %d, took %v\n",
			res.Kind, name, res.Range.Matches, res.Range.Visited, res.Range.Elapsed)
		for _, p := range res.Range.Points {
			_, _ = fmt.Fprintf(w, "  %s\n", p)
		}
	case res.Radius != nil:
		_, _ = fmt.Fprintf(w, "%s %s: matches %d, took %v\n", res.Kind, name, len(res.Radius.Points), res.Radius.Elapsed)
		for _, p := range res.Radius.Points {
			_, _ = fmt.Fprintf(w, "  %s\n", p)
		}
	case res.Nearest != nil:
		_, _ = fmt.Fprintf(w, "%s %s: found %d, took %v\n", res.Kind, name, len(res.Nearest.Neighbors), res.Nearest.Elapsed)
		for _, n := range res.Nearest.Neighbors {
			_, _ = fmt.Fprintf(w, "  %v squared: %g\n", n.Point, n.Distance)
		}
	}
}
