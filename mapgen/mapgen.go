// Package mapgen builds grid and continuous environments from seeded parameters.
// Every generator draws from its own rand.Rand, so identical parameters always
// produce identical maps.
package mapgen

import (
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"planbench/environment"
)

// ErrInvalidParams is returned for out-of-range generator parameters
var ErrInvalidParams = errors.New("invalid map generator params")

// Kind selects a grid generation algorithm
type Kind string

const (
	RandomUniform Kind = "random_uniform"
	Maze          Kind = "maze"
	NarrowPassage Kind = "narrow_passage"
)

// Params for grid generation. For Maze, Width and Height count maze rooms and the
// resulting grid is (2*Height+1) rows by (2*Width+1) columns; ObstacleDensity is ignored.
type Params struct {
	Width           int     `json:"width" yaml:"width"`
	Height          int     `json:"height" yaml:"height"`
	ObstacleDensity float64 `json:"obstacle_density" yaml:"obstacle_density"`
	Seed            int64   `json:"seed" yaml:"seed"`
	Kind            Kind    `json:"kind" yaml:"kind"`
	// PassageWidth is the opening of the NarrowPassage wall, 1 when zero
	PassageWidth int `json:"passage_width,omitempty" yaml:"passage_width,omitempty"`
}

// Validate checks every field and reports all problems together
func (p Params) Validate() error {
	var err error
	if p.Width <= 0 {
		err = multierr.Append(err, errors.Errorf("width must be positive, got %d", p.Width))
	}
	if p.Height <= 0 {
		err = multierr.Append(err, errors.Errorf("height must be positive, got %d", p.Height))
	}
	if !(p.ObstacleDensity >= 0 && p.ObstacleDensity < 1) {
		err = multierr.Append(err, errors.Errorf("obstacle density must be in [0,1), got %g", p.ObstacleDensity))
	}
	switch p.Kind {
	case RandomUniform, Maze:
	case NarrowPassage:
		if p.Width < 3 {
			err = multierr.Append(err, errors.Errorf("narrow passage needs width >= 3, got %d", p.Width))
		}
		if p.PassageWidth < 0 || p.PassageWidth > p.Height {
			err = multierr.Append(err, errors.Errorf("passage width must be in [0,%d], got %d", p.Height, p.PassageWidth))
		}
	default:
		err = multierr.Append(err, errors.Errorf("unknown generator kind %q", p.Kind))
	}
	if err != nil {
		return errors.Wrap(ErrInvalidParams, err.Error())
	}
	return nil
}

// Generate builds a grid environment
func Generate(p Params) (*environment.Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(p.Seed))

	var occ [][]bool
	switch p.Kind {
	case RandomUniform:
		occ = randomUniform(rng, p.Width, p.Height, p.ObstacleDensity)
	case Maze:
		var err error
		if occ, err = maze(rng, p.Width, p.Height); err != nil {
			return nil, err
		}
	case NarrowPassage:
		occ = narrowPassage(rng, p)
	}
	return environment.NewGrid(len(occ[0]), len(occ), occ)
}

func newOccupancy(width, height int, fill bool) [][]bool {
	occ := make([][]bool, height)
	for r := range occ {
		occ[r] = make([]bool, width)
		if fill {
			for c := range occ[r] {
				occ[r][c] = true
			}
		}
	}
	return occ
}

// randomUniform marks each cell with probability density. The two corners
// (0,0) and (height-1,width-1) are kept free.
func randomUniform(rng *rand.Rand, width, height int, density float64) [][]bool {
	occ := newOccupancy(width, height, false)
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			occ[r][c] = rng.Float64() < density
		}
	}
	occ[0][0] = false
	occ[height-1][width-1] = false
	return occ
}

// narrowPassage splits the map with a wall in the middle column, leaving an
// opening of PassageWidth rows at a random height
func narrowPassage(rng *rand.Rand, p Params) [][]bool {
	occ := randomUniform(rng, p.Width, p.Height, p.ObstacleDensity)
	gap := p.PassageWidth
	if gap == 0 {
		gap = 1
	}
	wall := p.Width / 2
	top := rng.Intn(p.Height - gap + 1)
	for r := 0; r < p.Height; r++ {
		occ[r][wall] = r < top || r >= top+gap
	}
	return occ
}
