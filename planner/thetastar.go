package planner

import "go.uber.org/zap"

// ThetaStarOptions configure Theta*
type ThetaStarOptions struct {
	Heuristic    Heuristic `json:"heuristic"`
	Connectivity int       `json:"connectivity"`
}

// DefaultThetaStarOptions uses the Euclidean heuristic, the only one of the three
// that never overestimates an any-angle path and the only one NewThetaStar accepts
func DefaultThetaStarOptions() ThetaStarOptions {
	return ThetaStarOptions{Heuristic: Euclidean, Connectivity: 8}
}

// NewThetaStar creates an any-angle A*. A neighbour is attached to its
// grandparent whenever the two see each other, so path vertices are grid cells
// but segments need not follow grid directions.
func NewThetaStar(opts ThetaStarOptions, logger *zap.SugaredLogger) (*GridSearch, error) {
	v := &validator{}
	checkConnectivity(v, opts.Connectivity)
	v.check(opts.Heuristic == Euclidean, "any-angle search needs the euclidean heuristic, got %q", opts.Heuristic)
	if err := v.result(NameThetaStar); err != nil {
		return nil, err
	}
	return &GridSearch{
		name:      NameThetaStar,
		heuristic: opts.Heuristic,
		weight:    1,
		moves:     movesFor(opts.Connectivity),
		anyAngle:  true,
		logger:    nopIfNil(logger),
	}, nil
}
