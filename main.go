package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/iancoleman/strcase"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdok/parkgeom/processing"
	"github.com/pdok/parkgeom/processing/gpkg"
	"github.com/pdok/parkgeom/processing/pngplot"
	"github.com/pdok/parkgeom/processing/wktfile"
	"github.com/pdok/parkgeom/scene"
)

const SCENE string = `scene`
const WKT string = `wkt`
const GPKG string = `gpkg`
const PNG string = `png`
const OVERWRITE string = `overwrite`
const TRUNCATE string = `truncate`
const PAGESIZE string = `pagesize`
const VERBOSE string = `verbose`

const stdout = "-"

//nolint:funlen
func main() {
	app := cli.NewApp()
	app.Name = "parkgeom"
	app.Usage = "Answers 2D geometry queries (distances, projections, intersections) about a parking scene"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     SCENE,
			Aliases:  []string{"s"},
			Usage:    "Scene file (.yaml, .yml or .json) with segments, points, polygons and queries",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(SCENE)},
		},
		&cli.StringFlag{
			Name:     WKT,
			Aliases:  []string{"w"},
			Usage:    "Write the results as tab separated WKT lines to this file, - for stdout, empty for none",
			Value:    stdout,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(WKT)},
		},
		&cli.StringFlag{
			Name:     GPKG,
			Aliases:  []string{"g"},
			Usage:    "Write the results to a table in this GeoPackage",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(GPKG)},
		},
		&cli.StringFlag{
			Name:     PNG,
			Aliases:  []string{"p"},
			Usage:    "Plot the scene and the results to this PNG",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(PNG)},
		},
		&cli.BoolFlag{
			Name:     OVERWRITE,
			Aliases:  []string{"o"},
			Usage:    "Overwrite target files if they exist",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(OVERWRITE)},
		},
		&cli.UintFlag{
			Name:     TRUNCATE,
			Aliases:  []string{"t"},
			Usage:    "Truncate WKT geometries to this many characters, 0 for no truncation",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(TRUNCATE)},
		},
		&cli.IntFlag{
			Name:     PAGESIZE,
			Usage:    "Page Size, how many results are written per transaction to the GeoPackage",
			Value:    gpkg.DefaultPagesize,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(PAGESIZE)},
		},
		&cli.BoolFlag{
			Name:     VERBOSE,
			Aliases:  []string{"v"},
			Usage:    "Log every evaluated query",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(VERBOSE)},
		},
	}

	app.Action = func(c *cli.Context) error {
		logger, err := newLogger(c.Bool(VERBOSE))
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		s, err := scene.Load(c.String(SCENE))
		if err != nil {
			return err
		}
		if len(s.Unknown) > 0 {
			logger.Warnw("ignoring unknown scene keys", "keys", s.Unknown)
		}
		logger.Infow("loaded scene", "file", c.String(SCENE), "frame", s.Header.FrameID,
			"segments", s.LineSegments().Len(), "queries", len(s.Queries()))

		overwrite := c.Bool(OVERWRITE)
		var targets []processing.Target

		if wktPath := c.String(WKT); wktPath != "" {
			w, closeWKT, err := openWKT(wktPath, overwrite)
			if err != nil {
				return err
			}
			defer closeWKT()
			targets = append(targets, wktfile.NewTarget(w, c.Uint(TRUNCATE)))
		}
		if gpkgPath := c.String(GPKG); gpkgPath != "" {
			if err = prepareTargetPath(gpkgPath, overwrite); err != nil {
				return err
			}
			target, err := gpkg.NewTarget(gpkgPath, c.Int(PAGESIZE))
			if err != nil {
				return err
			}
			defer target.Close()
			targets = append(targets, target)
		}
		if pngPath := c.String(PNG); pngPath != "" {
			if err = prepareTargetPath(pngPath, overwrite); err != nil {
				return err
			}
			targets = append(targets, pngplot.NewTarget(pngPath, c.String(SCENE), s.Header))
		}
		if len(targets) == 0 {
			return errors.New("no targets, set at least one of --wkt, --gpkg or --png")
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("=== start evaluating ===")
		if err = processing.Run(ctx, s, targets, logger); err != nil {
			return err
		}
		logger.Info("=== done evaluating ===")
		return nil
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func openWKT(path string, overwrite bool) (io.Writer, func(), error) {
	if path == stdout {
		return os.Stdout, func() {}, nil
	}
	if err := prepareTargetPath(path, overwrite); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create WKT target: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// prepareTargetPath removes an existing target when overwriting, and refuses to touch it otherwise.
func prepareTargetPath(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("target %s already exists, use --%s", path, OVERWRITE)
		}
		return nil
	}
	err := os.Remove(path)
	var pathError *os.PathError
	if err != nil {
		if !(errors.As(err, &pathError) && errors.Is(pathError.Err, syscall.ENOENT)) {
			return fmt.Errorf("could not remove target file: %w", err)
		}
	}
	return nil
}
