package environment

import (
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"planbench/geometry"
)

// RadiusProperty is the feature property that turns a GeoJSON Point into a circle
const RadiusProperty = "radius"

// ObstaclesFromGeoJSON converts a feature collection into obstacles. Polygon and
// MultiPolygon outer rings become polygons, Points with a positive radius property
// become circles. Other geometries are skipped with a warning.
func ObstaclesFromGeoJSON(data []byte, logger *zap.SugaredLogger) ([]geometry.Shape, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse feature collection")
	}

	var shapes []geometry.Shape
	for i, feature := range fc.Features {
		switch g := feature.Geometry.(type) {
		case orb.Polygon:
			s, err := polygonFromOrb(g)
			if err != nil {
				return nil, errors.Wrapf(err, "feature %d", i)
			}
			shapes = append(shapes, s)
		case orb.MultiPolygon:
			for j, poly := range g {
				s, err := polygonFromOrb(poly)
				if err != nil {
					return nil, errors.Wrapf(err, "feature %d polygon %d", i, j)
				}
				shapes = append(shapes, s)
			}
		case orb.Point:
			radius := feature.Properties.MustFloat64(RadiusProperty, 0)
			c, err := geometry.NewCircle(geometry.FromPoint(g), radius)
			if err != nil {
				return nil, errors.Wrapf(err, "feature %d", i)
			}
			shapes = append(shapes, c)
		default:
			logger.Warnf("skipping unsupported geojson geometry %T in feature %d", feature.Geometry, i)
		}
	}
	return shapes, nil
}

// polygonFromOrb keeps the outer ring and ignores holes
func polygonFromOrb(p orb.Polygon) (geometry.Polygon, error) {
	if len(p) == 0 {
		return geometry.Polygon{}, errors.Wrap(geometry.ErrDegenerateShape, "polygon without rings")
	}
	vertices := make([]geometry.State, 0, len(p[0]))
	for _, pt := range p[0] {
		vertices = append(vertices, geometry.FromPoint(pt))
	}
	return geometry.NewPolygon(vertices)
}

// ObstaclesToGeoJSON writes obstacles in the form ObstaclesFromGeoJSON reads
func ObstaclesToGeoJSON(shapes []geometry.Shape) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, s := range shapes {
		switch shape := s.(type) {
		case geometry.Polygon:
			ring := append(orb.Ring(nil), shape.Ring...)
			fc.Append(geojson.NewFeature(orb.Polygon{ring}))
		case geometry.Circle:
			f := geojson.NewFeature(shape.Center.Point())
			f.Properties[RadiusProperty] = shape.Radius
			fc.Append(f)
		default:
			return nil, errors.Errorf("cannot encode obstacle of type %T", s)
		}
	}
	return fc.MarshalJSON()
}

// LoadGeoJSONDir loads every *.geojson file of a directory as one obstacle list.
// Unreadable files are logged and skipped.
func LoadGeoJSONDir(dir string, logger *zap.SugaredLogger) ([]geometry.Shape, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, err
	}
	logger.Infof("loading obstacles from %d geojson files", len(files))

	var all []geometry.Shape
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warnw("failed to read geojson file", "file", file, "error", err)
			continue
		}
		shapes, err := ObstaclesFromGeoJSON(data, logger)
		if err != nil {
			logger.Warnw("failed to parse geojson file", "file", file, "error", err)
			continue
		}
		all = append(all, shapes...)
		logger.Debugf("loaded %d obstacles from %s", len(shapes), filepath.Base(file))
	}
	logger.Infof("total obstacles loaded: %d", len(all))
	return all, nil
}
