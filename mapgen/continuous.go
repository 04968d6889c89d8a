package mapgen

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"planbench/environment"
	"planbench/geometry"
)

// ContinuousParams describe a field of random convex polygon obstacles
type ContinuousParams struct {
	Bounds environment.Bounds `json:"bounds" yaml:"bounds"`
	Count  int                `json:"count" yaml:"count"`
	// MinRadius and MaxRadius bound the distance of hull points from each obstacle centre
	MinRadius float64 `json:"min_radius" yaml:"min_radius"`
	MaxRadius float64 `json:"max_radius" yaml:"max_radius"`
	// Points sampled per obstacle before taking the hull, 6 when zero
	Points int   `json:"points,omitempty" yaml:"points,omitempty"`
	Seed   int64 `json:"seed" yaml:"seed"`
}

func (p ContinuousParams) Validate() error {
	var err error
	if !(p.Bounds.MinX < p.Bounds.MaxX && p.Bounds.MinY < p.Bounds.MaxY) {
		err = multierr.Append(err, errors.Errorf("bounds must satisfy min < max, got %+v", p.Bounds))
	}
	if p.Count < 0 {
		err = multierr.Append(err, errors.Errorf("count must not be negative, got %d", p.Count))
	}
	if !(p.MinRadius > 0 && p.MinRadius <= p.MaxRadius) {
		err = multierr.Append(err, errors.Errorf("radii must satisfy 0 < min <= max, got %g and %g", p.MinRadius, p.MaxRadius))
	}
	if p.Points != 0 && p.Points < 3 {
		err = multierr.Append(err, errors.Errorf("points must be at least 3, got %d", p.Points))
	}
	if err != nil {
		return errors.Wrap(ErrInvalidParams, err.Error())
	}
	return nil
}

// GenerateContinuous scatters Count convex polygons over the bounds. Each one is the
// convex hull of random points around a random centre.
func GenerateContinuous(p ContinuousParams) (*environment.Continuous, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	points := p.Points
	if points == 0 {
		points = 6
	}
	rng := rand.New(rand.NewSource(p.Seed))

	shapes := make([]geometry.Shape, 0, p.Count)
	for len(shapes) < p.Count {
		center := geometry.NewState(
			p.Bounds.MinX+rng.Float64()*p.Bounds.Width(),
			p.Bounds.MinY+rng.Float64()*p.Bounds.Height(),
		)
		radius := p.MinRadius + rng.Float64()*(p.MaxRadius-p.MinRadius)

		cloud := make([]geometry.State, points)
		for i := range cloud {
			theta := rng.Float64() * 2 * math.Pi
			d := radius * (0.5 + 0.5*rng.Float64())
			cloud[i] = center.Add(geometry.NewState(d*math.Cos(theta), d*math.Sin(theta)))
		}
		poly, err := geometry.NewPolygon(geometry.ConvexHull(cloud))
		if err != nil {
			// collinear draw, sample again
			continue
		}
		shapes = append(shapes, poly)
	}
	return environment.NewContinuous(p.Bounds, shapes)
}
