// Package bench runs benchmark experiments described by config files and writes
// their aggregated results and visualization documents.
package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"planbench/environment"
	"planbench/geometry"
	"planbench/mapgen"
	"planbench/registry"
)

// ErrInvalidConfig is returned for malformed experiment configs
var ErrInvalidConfig = errors.New("invalid benchmark config")

const (
	defaultRepeats  = 30
	defaultDensity  = 0.2
	defaultSeed     = 42
	defaultPlanner  = "astar"
	generatorConvex = "random_convex"
)

// Config is a list of experiments
type Config struct {
	Experiments []Experiment `json:"experiments" yaml:"experiments"`
}

// Experiment is one planner on one environment, solved Repeats times
type Experiment struct {
	Name          string                 `json:"name" yaml:"name"`
	Environment   EnvironmentConfig      `json:"environment" yaml:"environment"`
	Planner       string                 `json:"planner" yaml:"planner"`
	PlannerParams map[string]interface{} `json:"planner_params" yaml:"planner_params"`
	// Start and Goal are [x, y]
	Start   [2]float64 `json:"start" yaml:"start"`
	Goal    [2]float64 `json:"goal" yaml:"goal"`
	Repeats int        `json:"repeats" yaml:"repeats"`
}

// EnvironmentConfig selects how an experiment's environment is built.
//
// Grids come from an explicit occupancy matrix or from a generator (random_uniform,
// maze, narrow_passage). Continuous environments take explicit obstacles, obstacles
// from a directory of GeoJSON files, or the random_convex generator.
type EnvironmentConfig struct {
	Type            environment.Kind `json:"type" yaml:"type"`
	Width           int              `json:"width" yaml:"width"`
	Height          int              `json:"height" yaml:"height"`
	Generator       string           `json:"generator" yaml:"generator"`
	ObstacleDensity *float64         `json:"obstacle_density" yaml:"obstacle_density"`
	Seed            *int64           `json:"seed" yaml:"seed"`
	PassageWidth    int              `json:"passage_width" yaml:"passage_width"`
	Occupancy       [][]int          `json:"occupancy" yaml:"occupancy"`

	Bounds        *environment.Bounds               `json:"bounds" yaml:"bounds"`
	Obstacles     []environment.ObstacleDescription `json:"obstacles" yaml:"obstacles"`
	GeoJSONDir    string                            `json:"geojson_dir" yaml:"geojson_dir"`
	ObstacleCount int                               `json:"obstacle_count" yaml:"obstacle_count"`
	MinRadius     float64                           `json:"min_radius" yaml:"min_radius"`
	MaxRadius     float64                           `json:"max_radius" yaml:"max_radius"`

	// SimplifyTolerance is the Douglas-Peucker tolerance applied to GeoJSON polygons
	SimplifyTolerance float64 `json:"simplify_tolerance" yaml:"simplify_tolerance"`
}

// LoadConfig reads a JSON or YAML config, chosen by file extension, and fills in
// defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "failed to parse %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies defaults and reports every problem of every experiment
func (c *Config) Validate() error {
	if len(c.Experiments) == 0 {
		return errors.Wrap(ErrInvalidConfig, "config must contain a non-empty experiments list")
	}
	var err error
	seen := make(map[string]bool, len(c.Experiments))
	for i := range c.Experiments {
		e := &c.Experiments[i]
		if e.Name == "" {
			e.Name = fmt.Sprintf("experiment_%d", i)
		}
		if e.Planner == "" {
			e.Planner = defaultPlanner
		}
		if e.Repeats == 0 {
			e.Repeats = defaultRepeats
		}
		if seen[e.Name] {
			err = multierr.Append(err, errors.Errorf("%s: duplicate experiment name", e.Name))
		}
		seen[e.Name] = true
		if e.Repeats < 0 {
			err = multierr.Append(err, errors.Errorf("%s: repeats must be positive, got %d", e.Name, e.Repeats))
		}
		if !knownPlanner(e.Planner) {
			err = multierr.Append(err, errors.Errorf("%s: unknown planner %q", e.Name, e.Planner))
		}
		if envErr := e.Environment.validate(); envErr != nil {
			err = multierr.Append(err, errors.Wrap(envErr, e.Name))
		}
	}
	if err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

func knownPlanner(name string) bool {
	for _, n := range registry.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func (e *EnvironmentConfig) validate() error {
	if e.Type == "" {
		e.Type = environment.KindGrid
	}
	switch e.Type {
	case environment.KindGrid:
		if e.Occupancy == nil && e.Generator == "" {
			e.Generator = string(mapgen.RandomUniform)
		}
		if e.Occupancy == nil && (e.Width <= 0 || e.Height <= 0) {
			return errors.Errorf("grid needs positive width and height, got %dx%d", e.Width, e.Height)
		}
	case environment.KindContinuous:
		if e.Bounds == nil {
			return errors.New("continuous environment needs bounds")
		}
		if e.Generator != "" && e.Generator != generatorConvex {
			return errors.Errorf("unknown continuous generator %q", e.Generator)
		}
	default:
		return errors.Errorf("unknown environment type %q", e.Type)
	}
	return nil
}

func (e EnvironmentConfig) density() float64 {
	if e.ObstacleDensity == nil {
		return defaultDensity
	}
	return *e.ObstacleDensity
}

func (e EnvironmentConfig) seed() int64 {
	if e.Seed == nil {
		return defaultSeed
	}
	return *e.Seed
}

// Build constructs the environment
func (e EnvironmentConfig) Build(logger *zap.SugaredLogger) (environment.Environment, error) {
	switch e.Type {
	case environment.KindContinuous:
		return e.buildContinuous(logger)
	case environment.KindGrid, "":
	default:
		return nil, errors.Wrapf(environment.ErrUnknownKind, "%q", e.Type)
	}

	if e.Occupancy != nil {
		height := len(e.Occupancy)
		width := 0
		if height > 0 {
			width = len(e.Occupancy[0])
		}
		return environment.FromDescription(environment.Description{
			Type: environment.KindGrid, Width: width, Height: height, Occupancy: e.Occupancy,
		})
	}
	generator := e.Generator
	if generator == "" {
		generator = string(mapgen.RandomUniform)
	}
	return mapgen.Generate(mapgen.Params{
		Width:           e.Width,
		Height:          e.Height,
		ObstacleDensity: e.density(),
		Seed:            e.seed(),
		Kind:            mapgen.Kind(generator),
		PassageWidth:    e.PassageWidth,
	})
}

func (e EnvironmentConfig) buildContinuous(logger *zap.SugaredLogger) (environment.Environment, error) {
	if e.Bounds == nil {
		return nil, errors.Wrap(environment.ErrInvalidEnvironment, "continuous environment without bounds")
	}
	if e.Generator == generatorConvex {
		return mapgen.GenerateContinuous(mapgen.ContinuousParams{
			Bounds:    *e.Bounds,
			Count:     e.ObstacleCount,
			MinRadius: e.MinRadius,
			MaxRadius: e.MaxRadius,
			Seed:      e.seed(),
		})
	}

	shapes := make([]geometry.Shape, 0, len(e.Obstacles))
	for i, o := range e.Obstacles {
		s, err := o.Shape()
		if err != nil {
			return nil, errors.Wrapf(err, "obstacle %d", i)
		}
		shapes = append(shapes, s)
	}
	if e.GeoJSONDir != "" {
		loaded, err := environment.LoadGeoJSONDir(e.GeoJSONDir, logger)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, geometry.SimplifyShapes(loaded, e.SimplifyTolerance)...)
	}
	return environment.NewContinuous(*e.Bounds, shapes)
}
