// Package main is the planbench command: benchmark runs, visualization export, map
// generation and the HTTP planning server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"planbench/bench"
	"planbench/environment"
	"planbench/mapgen"
	"planbench/registry"
)

const (
	flagDebug        = "debug"
	flagAddr         = "addr"
	flagConfig       = "config"
	flagOut          = "out"
	flagParallel     = "parallel"
	flagExperiment   = "experiment"
	flagWidth        = "width"
	flagHeight       = "height"
	flagDensity      = "density"
	flagSeed         = "seed"
	flagKind         = "kind"
	flagPassageWidth = "passage-width"
)

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func main() {
	var logger *zap.SugaredLogger

	app := &cli.App{
		Name:  "planbench",
		Usage: "benchmark 2D motion planners",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			logger, err = newLogger(c.Bool(flagDebug))
			return err
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP planning server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagAddr, Value: ":8080", Usage: "listen address"},
				},
				Action: func(c *cli.Context) error {
					return serveAction(c, logger)
				},
			},
			{
				Name:  "bench",
				Usage: "run the experiments of a config file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Required: true, Usage: "experiment config `FILE` (.json, .yaml)"},
					&cli.StringFlag{Name: flagOut, Aliases: []string{"o"}, Usage: "results base path, defaults to the config path without extension"},
					&cli.IntFlag{Name: flagParallel, Value: runtime.NumCPU(), Usage: "experiments run at once"},
				},
				Action: func(c *cli.Context) error {
					return benchAction(c, logger)
				},
			},
			{
				Name:  "export",
				Usage: "solve one experiment once and write its visualization document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Required: true, Usage: "experiment config `FILE`"},
					&cli.StringFlag{Name: flagExperiment, Aliases: []string{"e"}, Usage: "experiment name, defaults to the first"},
					&cli.StringFlag{Name: flagOut, Aliases: []string{"o"}, Value: "visualization.json", Usage: "output `FILE`"},
				},
				Action: func(c *cli.Context) error {
					return exportAction(c, logger)
				},
			},
			{
				Name:  "genmap",
				Usage: "generate a grid map and write its description",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagWidth, Value: 50},
					&cli.IntFlag{Name: flagHeight, Value: 50},
					&cli.Float64Flag{Name: flagDensity, Value: 0.2},
					&cli.Int64Flag{Name: flagSeed, Value: 42},
					&cli.StringFlag{Name: flagKind, Value: string(mapgen.RandomUniform), Usage: "random_uniform, maze or narrow_passage"},
					&cli.IntFlag{Name: flagPassageWidth, Value: 1},
					&cli.StringFlag{Name: flagOut, Aliases: []string{"o"}, Usage: "output `FILE`, stdout when empty"},
				},
				Action: func(c *cli.Context) error {
					return genmapAction(c, logger)
				},
			},
			{
				Name:  "planners",
				Usage: "list the available planners",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, strings.Join(registry.Names(), "\n"))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveAction(c *cli.Context, logger *zap.SugaredLogger) error {
	addr := c.String(flagAddr)
	srv := &http.Server{Addr: addr, Handler: newServer(logger).routes()}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Infow("server starting", "addr", addr,
		"endpoints", []string{"POST /solve", "POST /generateMap", "GET /planners", "GET /health"})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func benchAction(c *cli.Context, logger *zap.SugaredLogger) error {
	path := c.String(flagConfig)
	cfg, err := bench.LoadConfig(path)
	if err != nil {
		return err
	}
	base := c.String(flagOut)
	if base == "" {
		base = strings.TrimSuffix(path, filepath.Ext(path))
	}

	report, err := bench.NewEngine(c.Int(flagParallel), logger).Run(c.Context, cfg)
	if err != nil {
		return err
	}
	return bench.WriteResults(base, report, logger)
}

func exportAction(c *cli.Context, logger *zap.SugaredLogger) error {
	cfg, err := bench.LoadConfig(c.String(flagConfig))
	if err != nil {
		return err
	}
	name := c.String(flagExperiment)
	if name == "" {
		name = cfg.Experiments[0].Name
	}
	viz, err := bench.Export(cfg, name, logger)
	if err != nil {
		return err
	}
	out := c.String(flagOut)
	if err := bench.WriteVisualization(out, viz); err != nil {
		return err
	}
	logger.Infow("visualization written", "file", out, "planner", viz.Planner, "success", viz.Path.Success)
	return nil
}

func genmapAction(c *cli.Context, logger *zap.SugaredLogger) error {
	grid, err := mapgen.Generate(mapgen.Params{
		Width:           c.Int(flagWidth),
		Height:          c.Int(flagHeight),
		ObstacleDensity: c.Float64(flagDensity),
		Seed:            c.Int64(flagSeed),
		Kind:            mapgen.Kind(c.String(flagKind)),
		PassageWidth:    c.Int(flagPassageWidth),
	})
	if err != nil {
		return err
	}
	data, err := environment.MarshalDescription(grid)
	if err != nil {
		return err
	}

	out := c.String(flagOut)
	if out == "" {
		_, err = fmt.Fprintln(c.App.Writer, string(data))
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", out)
	}
	logger.Infow("map written", "file", out, "width", grid.Width(), "height", grid.Height(), "obstacles", grid.ObstacleCount())
	return nil
}
