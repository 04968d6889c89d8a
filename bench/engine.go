package bench

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"planbench/environment"
	"planbench/geometry"
	"planbench/metrics"
	"planbench/registry"
)

// Result aggregates the repeats of one experiment
type Result struct {
	RunID       string           `json:"run_id"`
	Name        string           `json:"name"`
	Planner     string           `json:"planner"`
	Environment environment.Kind `json:"environment"`
	metrics.Aggregate
}

// Report is the outcome of one engine run. Results keep the config order.
type Report struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Duration float64   `json:"duration_s"`
	Results  []Result  `json:"results"`
}

// Engine runs experiments concurrently. Each experiment gets its own environment
// and planner instance; its repeats run sequentially on that instance so seeded
// planners advance their generator from one repeat to the next.
type Engine struct {
	parallelism int
	logger      *zap.SugaredLogger
}

// NewEngine creates an engine running at most parallelism experiments at once,
// one when parallelism < 1
func NewEngine(parallelism int, logger *zap.SugaredLogger) *Engine {
	if parallelism < 1 {
		parallelism = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{parallelism: parallelism, logger: logger}
}

// Run executes every experiment of cfg. The first failing experiment cancels the
// others.
func (e *Engine) Run(ctx context.Context, cfg *Config) (*Report, error) {
	report := &Report{
		RunID:   uuid.New().String(),
		Started: time.Now(),
		Results: make([]Result, len(cfg.Experiments)),
	}
	logger := e.logger.With("run_id", report.RunID)
	logger.Infow("benchmark started", "experiments", len(cfg.Experiments), "parallelism", e.parallelism)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, exp := range cfg.Experiments {
		i, exp := i, exp // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			res, err := runExperiment(ctx, exp, logger.With("experiment", exp.Name))
			if err != nil {
				return errors.Wrapf(err, "experiment %s", exp.Name)
			}
			res.RunID = report.RunID
			report.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(report.Started).Seconds()
	logger.Infow("benchmark finished", "duration_s", report.Duration)
	return report, nil
}

func runExperiment(ctx context.Context, exp Experiment, logger *zap.SugaredLogger) (Result, error) {
	env, err := exp.Environment.Build(logger)
	if err != nil {
		return Result{}, err
	}
	p, err := registry.New(exp.Planner, exp.PlannerParams, logger)
	if err != nil {
		return Result{}, err
	}
	start, goal := geometry.FromXY(exp.Start), geometry.FromXY(exp.Goal)
	logger.Infow("experiment started", "planner", exp.Planner, "environment", env.Kind(),
		"start", start, "goal", goal, "repeats", exp.Repeats)

	runs := make([]metrics.Metrics, 0, exp.Repeats)
	for r := 0; r < exp.Repeats; r++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		_, m, err := metrics.Measure(p, env, start, goal)
		if err != nil {
			return Result{}, errors.Wrapf(err, "repeat %d", r)
		}
		runs = append(runs, m)
	}

	agg := metrics.AggregateRuns(runs)
	logger.Infow("experiment finished", "success_rate", agg.SuccessRate,
		"mean_path_length", agg.PathLength.Mean, "mean_time_ms", agg.TimeMs.Mean)
	return Result{Name: exp.Name, Planner: exp.Planner, Environment: env.Kind(), Aggregate: agg}, nil
}
