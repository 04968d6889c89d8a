// Package registry constructs planners by name from untyped parameter bags, as
// they arrive from experiment configs and HTTP requests.
package registry

import (
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"planbench/planner"
)

// ErrUnknownPlanner is returned for names that are not registered
var ErrUnknownPlanner = errors.New("unknown planner")

type constructor func(params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error)

var constructors = map[string]constructor{
	planner.NameDijkstra: func(params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error) {
		opts, err := decode(planner.DefaultDijkstraOptions(), params)
		if err != nil {
			return nil, err
		}
		return planner.NewDijkstra(opts, logger)
	},
	planner.NameAStar: func(params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error) {
		opts, err := decode(planner.DefaultAStarOptions(), params)
		if err != nil {
			return nil, err
		}
		return planner.NewAStar(opts, logger)
	},
	planner.NameWeightedAStar: func(params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error) {
		opts, err := decode(planner.DefaultWeightedAStarOptions(), params)
		if err != nil {
			return nil, err
		}
		return planner.NewWeightedAStar(opts, logger)
	},
	planner.NameThetaStar: func(params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error) {
		opts, err := decode(planner.DefaultThetaStarOptions(), params)
		if err != nil {
			return nil, err
		}
		return planner.NewThetaStar(opts, logger)
	},
	planner.NamePRM: func(params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error) {
		opts, err := decode(planner.DefaultRoadmapOptions(), params)
		if err != nil {
			return nil, err
		}
		return planner.NewPRM(opts, logger)
	},
	planner.NameLazyPRM: func(params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error) {
		opts, err := decode(planner.DefaultRoadmapOptions(), params)
		if err != nil {
			return nil, err
		}
		return planner.NewLazyPRM(opts, logger)
	},
	planner.NameRRT: func(params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error) {
		opts, err := decode(planner.DefaultRRTOptions(), params)
		if err != nil {
			return nil, err
		}
		return planner.NewRRT(opts, logger)
	},
	planner.NameRRTStar: func(params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error) {
		opts, err := decode(planner.DefaultRRTStarOptions(), params)
		if err != nil {
			return nil, err
		}
		return planner.NewRRTStar(opts, logger)
	},
	planner.NameInformedRRTStar: func(params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error) {
		opts, err := decode(planner.DefaultRRTStarOptions(), params)
		if err != nil {
			return nil, err
		}
		return planner.NewInformedRRTStar(opts, logger)
	},
}

// New builds the planner registered under name. Keys of params are the json names
// of the planner's options; missing keys keep their defaults and unknown keys are
// an error.
func New(name string, params map[string]interface{}, logger *zap.SugaredLogger) (planner.Planner, error) {
	build, ok := constructors[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPlanner, "%q", name)
	}
	p, err := build(params, logger)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	return p, nil
}

// Names lists the registered planners in sorted order
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decode overlays params onto defaults
func decode[T any](defaults T, params map[string]interface{}) (T, error) {
	opts := defaults
	if len(params) == 0 {
		return opts, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &opts,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return defaults, err
	}
	if err := decoder.Decode(params); err != nil {
		return defaults, errors.Wrapf(planner.ErrInvalidConfig, "%v", err)
	}
	return opts, nil
}
