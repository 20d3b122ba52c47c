// Package scene loads named segments, points and polygons plus the queries to ask about them
// from a YAML or JSON file.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/perimeterx/marshmallow"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/pdok/parkgeom/geom2d"
	"github.com/pdok/parkgeom/mapslicehelp"
	"github.com/pdok/parkgeom/processing"
	"github.com/pdok/parkgeom/viz"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported scene format")
	ErrUnknownSegment    = errors.New("unknown segment")
	ErrUnknownPoint      = errors.New("unknown point")
	ErrUnknownPolygon    = errors.New("unknown polygon")
	ErrMissingReference  = errors.New("missing reference")
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

var topLevelKeys = mapslicehelp.AsKeys([]string{"header", "segments", "points", "polygons", "queries"})

type SegmentSpec struct {
	Start []float64 `json:"start" yaml:"start" validate:"len=2"`
	End   []float64 `json:"end" yaml:"end" validate:"len=2"`
}

type QuerySpec struct {
	Name    string `json:"name" yaml:"name" validate:"required"`
	Kind    string `json:"kind" yaml:"kind" validate:"required,oneof=distance nearest project product foot contains intersect center rotate segmentDistance polygonDistance"` //nolint:lll
	Segment string `json:"segment,omitempty" yaml:"segment,omitempty"`
	Other   string `json:"other,omitempty" yaml:"other,omitempty"`
	Point   string `json:"point,omitempty" yaml:"point,omitempty"`
	Polygon string `json:"polygon,omitempty" yaml:"polygon,omitempty"`
	// radians
	Angle    *float64 `json:"angle,omitempty" yaml:"angle,omitempty" validate:"excluded_with=AngleDeg"`
	AngleDeg *float64 `json:"angleDeg,omitempty" yaml:"angleDeg,omitempty"`
}

// File is a scene as it is written down.
type File struct {
	Header   viz.Header                                  `json:"header" yaml:"header"`
	Segments *orderedmap.OrderedMap[string, SegmentSpec] `json:"segments" yaml:"segments" validate:"required"`
	Points   *orderedmap.OrderedMap[string, []float64]   `json:"points,omitempty" yaml:"points,omitempty"`
	Polygons *orderedmap.OrderedMap[string, [][]float64] `json:"polygons,omitempty" yaml:"polygons,omitempty"`
	Queries  []QuerySpec                                 `json:"queries" yaml:"queries" validate:"dive"`

	// top level keys that aren't part of a scene
	Unknown []string `json:"-" yaml:"-"`
}

func (f *File) UnmarshalJSON(data []byte) error {
	err := defaults.Set(f)
	if err != nil {
		return err
	}

	// named geometry keeps its file order, which marshmallow doesn't preserve
	var ordered struct {
		Segments *orderedmap.OrderedMap[string, SegmentSpec] `json:"segments"`
		Points   *orderedmap.OrderedMap[string, []float64]   `json:"points"`
		Polygons *orderedmap.OrderedMap[string, [][]float64] `json:"polygons"`
	}
	if err = json.Unmarshal(data, &ordered); err != nil {
		return err
	}
	f.Segments, f.Points, f.Polygons = ordered.Segments, ordered.Points, ordered.Polygons

	rest := struct {
		Header  viz.Header  `json:"header"`
		Queries []QuerySpec `json:"queries"`
	}{Header: f.Header}
	specials, err := marshmallow.Unmarshal(data, &rest, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}
	f.Header, f.Queries = rest.Header, rest.Queries
	// marshmallow replaces the whole header, fields it lacks are zero again
	if err = defaults.Set(&f.Header); err != nil {
		return err
	}
	f.Unknown = unknownKeys(specials)
	return nil
}

func (f *File) UnmarshalYAML(value *yaml.Node) error {
	err := defaults.Set(f)
	if err != nil {
		return err
	}
	type plain File // drops the methods, otherwise this recurses
	if err = value.Decode((*plain)(f)); err != nil {
		return err
	}
	var all map[string]any
	if err = value.Decode(&all); err != nil {
		return err
	}
	f.Unknown = unknownKeys(all)
	return nil
}

func unknownKeys[V any](m map[string]V) []string {
	var unknown []string
	for key := range m {
		if _, ok := topLevelKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Scene is a validated scene with every reference of its queries resolved.
type Scene struct {
	File
	segments *orderedmap.OrderedMap[string, geom2d.LineSegment]
	points   map[string]geom2d.Vector
	polygons map[string]viz.Polygon2f
	queries  []processing.Query
}

// Load reads a scene file, the format is picked by extension (.yaml, .yml or .json).
func Load(path string) (*Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read scene: %w", err)
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte, format Format) (*Scene, error) {
	var f File
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return New(f)
}

// New validates the file and resolves its queries.
func New(f File) (*Scene, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(f); err != nil {
		return nil, err
	}
	s := &Scene{
		File:     f,
		segments: orderedmap.New[string, geom2d.LineSegment](f.Segments.Len()),
		points:   make(map[string]geom2d.Vector),
		polygons: make(map[string]viz.Polygon2f),
	}
	for p := f.Segments.Oldest(); p != nil; p = p.Next() {
		if err := validate.Struct(p.Value); err != nil {
			return nil, fmt.Errorf("segment %q: %w", p.Key, err)
		}
		s.segments.Set(p.Key, geom2d.NewLineSegment(toVector(p.Value.Start), toVector(p.Value.End)))
	}
	if f.Points != nil {
		for p := f.Points.Oldest(); p != nil; p = p.Next() {
			if err := validate.Var(p.Value, "len=2"); err != nil {
				return nil, fmt.Errorf("point %q: %w", p.Key, err)
			}
			s.points[p.Key] = toVector(p.Value)
		}
	}
	if f.Polygons != nil {
		for p := f.Polygons.Oldest(); p != nil; p = p.Next() {
			if err := validate.Var(p.Value, "min=3,dive,len=2"); err != nil {
				return nil, fmt.Errorf("polygon %q: %w", p.Key, err)
			}
			vs := make([]geom2d.Vector, len(p.Value))
			for i := range p.Value {
				vs[i] = toVector(p.Value[i])
			}
			s.polygons[p.Key] = viz.PolygonFromVectors(f.Header, vs)
		}
	}
	s.queries = make([]processing.Query, 0, len(f.Queries))
	for _, spec := range f.Queries {
		q, err := s.resolve(spec)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", spec.Name, err)
		}
		s.queries = append(s.queries, q)
	}
	return s, nil
}

func toVector(xy []float64) geom2d.Vector {
	return geom2d.Vector{X: xy[0], Y: xy[1]}
}

type references struct {
	segment, other, point, polygon bool
}

var requiredReferences = map[processing.Kind]references{
	processing.KindDistance:        {segment: true, point: true},
	processing.KindNearest:         {point: true},
	processing.KindProject:         {segment: true, point: true},
	processing.KindProduct:         {segment: true, point: true},
	processing.KindFoot:            {segment: true, point: true},
	processing.KindContains:        {segment: true, point: true},
	processing.KindIntersect:       {segment: true, other: true},
	processing.KindCenter:          {segment: true},
	processing.KindRotate:          {segment: true},
	processing.KindSegmentDistance: {segment: true, other: true},
	processing.KindPolygonDistance: {point: true, polygon: true},
}

func (s *Scene) resolve(spec QuerySpec) (processing.Query, error) {
	q := processing.Query{Name: spec.Name, Kind: processing.Kind(spec.Kind)}
	required := requiredReferences[q.Kind]
	var err error
	if required.segment {
		if q.Segment, err = s.segment("segment", spec.Segment); err != nil {
			return q, err
		}
	}
	if required.other {
		if q.Other, err = s.segment("other", spec.Other); err != nil {
			return q, err
		}
	}
	if required.point {
		if q.Point, err = s.point(spec.Point); err != nil {
			return q, err
		}
	}
	if required.polygon {
		if q.Polygon, err = s.polygon(spec.Polygon); err != nil {
			return q, err
		}
	}
	switch q.Kind {
	case processing.KindNearest:
		q.Candidates = s.segments
	case processing.KindRotate:
		switch {
		case spec.Angle != nil:
			q.Angle = *spec.Angle
		case spec.AngleDeg != nil:
			q.Angle = *spec.AngleDeg * math.Pi / 180
		default:
			return q, fmt.Errorf("%w: angle or angleDeg", ErrMissingReference)
		}
	}
	return q, nil
}

func (s *Scene) segment(field, name string) (geom2d.LineSegment, error) {
	if name == "" {
		return geom2d.LineSegment{}, fmt.Errorf("%w: %s", ErrMissingReference, field)
	}
	ls, ok := s.segments.Get(name)
	if !ok {
		return geom2d.LineSegment{}, fmt.Errorf("%w: %q", ErrUnknownSegment, name)
	}
	return ls, nil
}

func (s *Scene) point(name string) (geom2d.Vector, error) {
	if name == "" {
		return geom2d.Vector{}, fmt.Errorf("%w: point", ErrMissingReference)
	}
	p, ok := s.points[name]
	if !ok {
		return geom2d.Vector{}, fmt.Errorf("%w: %q", ErrUnknownPoint, name)
	}
	return p, nil
}

func (s *Scene) polygon(name string) (viz.Polygon2f, error) {
	if name == "" {
		return viz.Polygon2f{}, fmt.Errorf("%w: polygon", ErrMissingReference)
	}
	p, ok := s.polygons[name]
	if !ok {
		return viz.Polygon2f{}, fmt.Errorf("%w: %q", ErrUnknownPolygon, name)
	}
	return p, nil
}

// LineSegments returns the named segments in file order.
func (s *Scene) LineSegments() *orderedmap.OrderedMap[string, geom2d.LineSegment] {
	return s.segments
}

func (s *Scene) Queries() []processing.Query {
	return s.queries
}

// ReadQueries implements processing.Source.
func (s *Scene) ReadQueries(queries chan<- processing.Query) {
	for _, q := range s.queries {
		queries <- q
	}
	close(queries)
}
