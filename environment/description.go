package environment

import (
	"encoding/json"

	"github.com/pkg/errors"

	"planbench/geometry"
)

// Description is the serializable form of an environment.
//
//	grid:       {"type":"grid","width":W,"height":H,"occupancy":[[0,1,...],...]}
//	continuous: {"type":"continuous","bounds":{...},"obstacles":[...]}
type Description struct {
	Type      Kind                  `json:"type" yaml:"type"`
	Width     int                   `json:"width,omitempty" yaml:"width,omitempty"`
	Height    int                   `json:"height,omitempty" yaml:"height,omitempty"`
	Occupancy [][]int               `json:"occupancy,omitempty" yaml:"occupancy,omitempty"`
	Bounds    *Bounds               `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Obstacles []ObstacleDescription `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`
}

// Obstacle description types
const (
	ObstaclePolygon = "polygon"
	ObstacleCircle  = "circle"
)

// ObstacleDescription describes one polygon or circle
type ObstacleDescription struct {
	Type     string           `json:"type" yaml:"type"`
	Vertices []geometry.State `json:"vertices,omitempty" yaml:"vertices,omitempty"`
	Center   *geometry.State  `json:"center,omitempty" yaml:"center,omitempty"`
	Radius   float64          `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// Shape builds the geometric shape
func (o ObstacleDescription) Shape() (geometry.Shape, error) {
	switch o.Type {
	case ObstaclePolygon, "":
		return geometry.NewPolygon(o.Vertices)
	case ObstacleCircle:
		if o.Center == nil {
			return nil, errors.Wrap(ErrInvalidEnvironment, "circle obstacle without center")
		}
		return geometry.NewCircle(*o.Center, o.Radius)
	}
	return nil, errors.Wrapf(ErrInvalidEnvironment, "unknown obstacle type %q", o.Type)
}

func describeShape(s geometry.Shape) ObstacleDescription {
	switch shape := s.(type) {
	case geometry.Polygon:
		return ObstacleDescription{Type: ObstaclePolygon, Vertices: shape.Vertices()}
	case geometry.Circle:
		c := shape.Center
		return ObstacleDescription{Type: ObstacleCircle, Center: &c, Radius: shape.Radius}
	}
	// only the shapes above can be constructed from descriptions
	b := s.Bound()
	return ObstacleDescription{Type: ObstaclePolygon, Vertices: []geometry.State{
		{X: b.Min[0], Y: b.Min[1]}, {X: b.Max[0], Y: b.Min[1]},
		{X: b.Max[0], Y: b.Max[1]}, {X: b.Min[0], Y: b.Max[1]},
	}}
}

// FromDescription rebuilds the environment a description was produced from
func FromDescription(d Description) (Environment, error) {
	switch d.Type {
	case KindGrid:
		var occ [][]bool
		if d.Occupancy != nil {
			if len(d.Occupancy) != d.Height {
				return nil, errors.Wrapf(ErrInvalidEnvironment, "occupancy has %d rows, want %d", len(d.Occupancy), d.Height)
			}
			occ = make([][]bool, len(d.Occupancy))
			for r, row := range d.Occupancy {
				occ[r] = make([]bool, len(row))
				for c, v := range row {
					occ[r][c] = v != 0
				}
			}
		}
		return NewGrid(d.Width, d.Height, occ)
	case KindContinuous:
		if d.Bounds == nil {
			return nil, errors.Wrap(ErrInvalidEnvironment, "continuous description without bounds")
		}
		shapes := make([]geometry.Shape, 0, len(d.Obstacles))
		for i, o := range d.Obstacles {
			s, err := o.Shape()
			if err != nil {
				return nil, errors.Wrapf(err, "obstacle %d", i)
			}
			shapes = append(shapes, s)
		}
		return NewContinuous(*d.Bounds, shapes)
	}
	return nil, errors.Wrapf(ErrUnknownKind, "%q", d.Type)
}

// MarshalDescription encodes an environment's description as JSON
func MarshalDescription(env Environment) ([]byte, error) {
	return json.Marshal(env.Describe())
}

// UnmarshalDescription decodes JSON produced by MarshalDescription
func UnmarshalDescription(data []byte) (Environment, error) {
	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment description")
	}
	return FromDescription(d)
}
