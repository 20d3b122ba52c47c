package processing

import (
	"github.com/go-spatial/geom"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/pdok/parkgeom/geom2d"
	"github.com/pdok/parkgeom/mapslicehelp"
	"github.com/pdok/parkgeom/viz"
)

type Kind string

const (
	KindDistance        Kind = "distance"
	KindNearest         Kind = "nearest"
	KindProject         Kind = "project"
	KindProduct         Kind = "product"
	KindFoot            Kind = "foot"
	KindContains        Kind = "contains"
	KindIntersect       Kind = "intersect"
	KindCenter          Kind = "center"
	KindRotate          Kind = "rotate"
	KindSegmentDistance Kind = "segmentDistance"
	KindPolygonDistance Kind = "polygonDistance"
)

// Kinds lists every supported query kind.
var Kinds = []Kind{
	KindDistance, KindNearest, KindProject, KindProduct, KindFoot, KindContains,
	KindIntersect, KindCenter, KindRotate, KindSegmentDistance, KindPolygonDistance,
}

// Query is a single geometric question with all referenced geometry resolved.
// Which fields are used depends on Kind.
type Query struct {
	Name    string
	Kind    Kind
	Segment geom2d.LineSegment
	Other   geom2d.LineSegment
	Point   geom2d.Vector
	Angle   float64
	Polygon viz.Polygon2f
	// Candidates are the segments a nearest query chooses from, in scene order.
	Candidates *orderedmap.OrderedMap[string, geom2d.LineSegment]
}

// Result is the answer to a Query. OK is false when the query has no answer
// (e.g. no intersection) or when the predicate asked for does not hold.
type Result struct {
	Query   Query
	Value   float64
	OK      bool
	Point   *geom2d.Vector
	Segment *geom2d.LineSegment
	// Ranking of the candidates of a nearest query, closest first.
	Ranking []mapslicehelp.Ranked[string]
}

// Geometry returns what a result should be drawn or stored as:
// its point if it has one, otherwise its segment, otherwise the queried segment.
func (r Result) Geometry() geom.Geometry {
	switch {
	case r.Point != nil:
		return r.Point.ToGeomPoint()
	case r.Segment != nil:
		return lineString(*r.Segment)
	case r.Query.Kind == KindPolygonDistance:
		return r.Query.Polygon.ToGeomPolygon()
	default:
		return lineString(r.Query.Segment)
	}
}

func lineString(s geom2d.LineSegment) geom.LineString {
	l := s.ToGeomLine()
	return l[:]
}

// Source sends its queries and closes the channel when done.
type Source interface {
	ReadQueries(chan<- Query)
}

// Target consumes results until the channel is closed.
type Target interface {
	WriteResults(<-chan Result) error
}
