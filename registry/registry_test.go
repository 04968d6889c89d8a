package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"planbench/environment"
	"planbench/geometry"
	"planbench/planner"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"astar", "dijkstra", "informed_rrt_star", "lazy_prm", "prm",
		"rrt", "rrt_star", "thetastar", "weighted_astar",
	}, Names())
}

func TestNewEveryPlanner(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	for _, name := range Names() {
		p, err := New(name, nil, logger)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
	}
}

func TestNewUnknown(t *testing.T) {
	_, err := New("bug2", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownPlanner)
}

func TestNewDecodesParams(t *testing.T) {
	env, err := environment.NewEmptyGrid(12, 12)
	require.NoError(t, err)

	// JSON numbers arrive as float64
	p, err := New("weighted_astar", map[string]interface{}{"weight": 1.0, "heuristic": "euclidean", "connectivity": float64(4)}, nil)
	require.NoError(t, err)
	path, err := p.Solve(env, geometry.NewState(0, 0), geometry.NewState(3, 4))
	require.NoError(t, err)
	require.True(t, path.Success)
	// 4-connected moves only
	assert.InDelta(t, 7.0, path.Length, 1e-12)

	// Weakly typed input accepts strings from query parameters or YAML
	_, err = New("rrt", map[string]interface{}{"step_size": "0.5", "max_iter": "100", "seed": 7}, nil)
	require.NoError(t, err)
}

func TestNewRejectsBadParams(t *testing.T) {
	cases := []struct {
		name   string
		params map[string]interface{}
	}{
		{"prm", map[string]interface{}{"num_samples": -5}},
		{"prm", map[string]interface{}{"samples": 100}},
		{"rrt_star", map[string]interface{}{"rewiring_radius_factor": 0.0}},
		{"weighted_astar", map[string]interface{}{"weight": 0.9}},
		{"astar", map[string]interface{}{"heuristic": "zigzag"}},
		{"rrt", map[string]interface{}{"step_size": "fast"}},
	}
	for _, tc := range cases {
		_, err := New(tc.name, tc.params, nil)
		assert.ErrorIs(t, err, planner.ErrInvalidConfig, "%s %v", tc.name, tc.params)
	}
}

func TestDefaultsSurviveEmptyParams(t *testing.T) {
	opts, err := decode(planner.DefaultRRTStarOptions(), map[string]interface{}{"max_iter": 10})
	require.NoError(t, err)
	want := planner.DefaultRRTStarOptions()
	want.MaxIter = 10
	assert.Equal(t, want, opts)
}
