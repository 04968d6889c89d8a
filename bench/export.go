package bench

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"planbench/environment"
	"planbench/geometry"
	"planbench/metrics"
	"planbench/planner"
	"planbench/registry"
)

// VisualizationType tags visualization documents
const VisualizationType = "visualization"

// Visualization is a single solve in the form the web viewer loads
type Visualization struct {
	Type          string                  `json:"type"`
	Environment   environment.Description `json:"environment"`
	Start         geometry.State          `json:"start"`
	Goal          geometry.State          `json:"goal"`
	Path          planner.Path            `json:"path"`
	Planner       string                  `json:"planner"`
	TimeMs        float64                 `json:"time_ms"`
	NodesExpanded int                     `json:"nodes_expanded"`
	// Convergence is only present for anytime planners that found a solution
	Convergence []planner.ConvergencePoint `json:"convergence,omitempty"`
}

// NewVisualization assembles the document for one solve
func NewVisualization(env environment.Environment, name string, start, goal geometry.State, path planner.Path, m metrics.Metrics) *Visualization {
	return &Visualization{
		Type:          VisualizationType,
		Environment:   env.Describe(),
		Start:         start,
		Goal:          goal,
		Path:          path,
		Planner:       name,
		TimeMs:        m.TimeMs,
		NodesExpanded: m.NodesExpanded,
		Convergence:   m.Convergence,
	}
}

// Solve runs p once and returns its visualization
func Solve(p planner.Planner, env environment.Environment, start, goal geometry.State) (*Visualization, error) {
	path, m, err := metrics.Measure(p, env, start, goal)
	if err != nil {
		return nil, err
	}
	return NewVisualization(env, p.Name(), start, goal, path, m), nil
}

// Export solves the named experiment of cfg once
func Export(cfg *Config, name string, logger *zap.SugaredLogger) (*Visualization, error) {
	for _, exp := range cfg.Experiments {
		if exp.Name != name {
			continue
		}
		env, err := exp.Environment.Build(logger)
		if err != nil {
			return nil, err
		}
		p, err := registry.New(exp.Planner, exp.PlannerParams, logger)
		if err != nil {
			return nil, err
		}
		return Solve(p, env, geometry.FromXY(exp.Start), geometry.FromXY(exp.Goal))
	}
	return nil, errors.Wrapf(ErrInvalidConfig, "no experiment named %q", name)
}

// WriteVisualization writes v as indented JSON to path
func WriteVisualization(path string, v *Visualization) error {
	return writeJSON(path, v)
}
