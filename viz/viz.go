// Package viz holds the message types handed to the visualization bridge:
// stamped poses, paths, polygons, point clouds and transforms.
// Building them from geom2d values is done here; publishing them is not.
package viz

import (
	"math"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-spatial/geom"

	"github.com/pdok/parkgeom/geom2d"
	"github.com/pdok/parkgeom/geomhelp"
	"github.com/pdok/parkgeom/mapslicehelp"
	"github.com/pdok/parkgeom/mathhelp"
)

type Header struct {
	// seconds since the unix epoch
	TimeStamp float64 `json:"timeStamp" yaml:"timeStamp"`
	Seq       uint32  `default:"2" json:"seq" yaml:"seq"`
	FrameID   string  `default:"world" json:"frameId" yaml:"frameId"`
}

// NewHeader returns a header stamped with t and the bridge's default seq and frame id.
func NewHeader(t time.Time) Header {
	var h Header
	if err := defaults.Set(&h); err != nil {
		panic(err) // only fails on a malformed default tag
	}
	h.TimeStamp = float64(t.UnixNano()) / float64(time.Second)
	return h
}

func (h Header) Time() time.Time {
	sec, frac := math.Modf(h.TimeStamp)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

type Pose struct {
	Header Header
	X      float64
	Y      float64
	Yaw    float64
}

func (p Pose) Position() geom2d.Vector {
	return geom2d.Vector{X: p.X, Y: p.Y}
}

// Transform is the transform from the pose's frame into the header's frame.
func (p Pose) Transform() Transform {
	return NewTransform(p.Position(), p.Yaw)
}

type Path2f struct {
	Header Header
	Points []geom2d.Vector
}

// PathFromSegments chains the segments into a path. A segment that starts where the previous
// one ended only contributes its end point.
func PathFromSegments(h Header, segments []geom2d.LineSegment) Path2f {
	path := Path2f{Header: h, Points: make([]geom2d.Vector, 0, len(segments)+1)}
	for _, s := range segments {
		last := mapslicehelp.LastElement(path.Points)
		if last == nil || !last.Equal(s.Start()) {
			path.Points = append(path.Points, s.Start())
		}
		path.Points = append(path.Points, s.End())
	}
	return path
}

func PathFromVectors(h Header, points []geom2d.Vector) Path2f {
	return Path2f{Header: h, Points: points}
}

func (p Path2f) Segments() []geom2d.LineSegment {
	if len(p.Points) < 2 {
		return nil
	}
	segments := make([]geom2d.LineSegment, len(p.Points)-1)
	for i := range segments {
		segments[i] = geom2d.NewLineSegment(p.Points[i], p.Points[i+1])
	}
	return segments
}

func (p Path2f) Length() float64 {
	l := 0.
	for i := 1; i < len(p.Points); i++ {
		l += p.Points[i-1].DistanceTo(p.Points[i])
	}
	return l
}

func (p Path2f) Reversed() Path2f {
	return Path2f{Header: p.Header, Points: mapslicehelp.ReverseClone(p.Points)}
}

func (p Path2f) ToGeomLineString() geom.LineString {
	return geom2d.VectorsToGeomPoints(p.Points)
}

// Polygon2f is an open ring: the last point is not a copy of the first.
type Polygon2f struct {
	Header Header
	Points []geom2d.Vector
}

func PolygonFromVectors(h Header, points []geom2d.Vector) Polygon2f {
	if n := len(points); n > 1 && points[0].Equal(points[n-1]) {
		points = points[:n-1]
	}
	return Polygon2f{Header: h, Points: points}
}

// Edge returns the edge ending in vertex i, wrapping around the ring.
func (p Polygon2f) Edge(i int) geom2d.LineSegment {
	n := len(p.Points)
	return geom2d.NewLineSegment(p.Points[mathhelp.EuclidianMod(i-1, n)], p.Points[mathhelp.EuclidianMod(i, n)])
}

func (p Polygon2f) Segments() []geom2d.LineSegment {
	if len(p.Points) < 2 {
		return nil
	}
	segments := make([]geom2d.LineSegment, len(p.Points))
	for i := range segments {
		segments[i] = p.Edge(i + 1)
	}
	return segments
}

func (p Polygon2f) Area() float64 {
	return geomhelp.Shoelace(geom2d.VectorsToGeomPoints(p.Points))
}

// Contains reports whether pt is inside the polygon or on its boundary.
func (p Polygon2f) Contains(pt geom2d.Vector) bool {
	return geomhelp.RingContains(geom2d.VectorsToGeomPoints(p.Points), pt.XY())
}

// DistanceTo is 0 inside the polygon, otherwise the distance to the closest edge.
func (p Polygon2f) DistanceTo(pt geom2d.Vector) float64 {
	if p.Contains(pt) {
		return 0
	}
	d := math.Inf(1)
	for _, s := range p.Segments() {
		d = min(d, s.DistanceTo(pt))
	}
	return d
}

// ToGeomPolygon returns a go-spatial polygon, counterclockwise as go-spatial expects outer rings.
func (p Polygon2f) ToGeomPolygon() geom.Polygon {
	ring := geom2d.VectorsToGeomPoints(p.Points)
	if len(ring) > 2 && !geomhelp.IsCounterClockwise(ring) {
		ring = mapslicehelp.ReverseClone(ring)
	}
	return geom.Polygon{ring}
}

type Polygons2f struct {
	Header   Header
	Polygons []Polygon2f
}

func (ps Polygons2f) ToGeomMultiPolygon() geom.MultiPolygon {
	mp := make(geom.MultiPolygon, len(ps.Polygons))
	for i := range ps.Polygons {
		mp[i] = ps.Polygons[i].ToGeomPolygon()
	}
	return mp
}

type PointCloud2f struct {
	Header Header
	Points []geom2d.Vector
}

func (pc PointCloud2f) ToGeomMultiPoint() geom.MultiPoint {
	return geom2d.VectorsToGeomPoints(pc.Points)
}

type Circle struct {
	Header Header
	Center geom2d.Vector
	Radius float64
}

// ToPolygon approximates the circle with n vertices, counterclockwise starting at angle 0.
func (c Circle) ToPolygon(n int) Polygon2f {
	n = max(n, 3)
	points := make([]geom2d.Vector, n)
	for i := range points {
		points[i] = c.Center.Add(geom2d.UnitVectorFromAngle(mathhelp.TwoPi * float64(i) / float64(n)).Scale(c.Radius))
	}
	return Polygon2f{Header: c.Header, Points: points}
}

// Rot is a rotation stored as its sine and cosine. The zero value is not a rotation, use NewRot.
type Rot struct {
	Sin float64
	Cos float64
}

func NewRot(angle float64) Rot {
	sin, cos := math.Sincos(angle)
	return Rot{Sin: sin, Cos: cos}
}

func IdentityRot() Rot {
	return Rot{Sin: 0, Cos: 1}
}

func (r Rot) Angle() float64 {
	return math.Atan2(r.Sin, r.Cos)
}

func (r Rot) XAxis() geom2d.Vector {
	return geom2d.Vector{X: r.Cos, Y: r.Sin}
}

func (r Rot) YAxis() geom2d.Vector {
	return geom2d.Vector{X: -r.Sin, Y: r.Cos}
}

func (r Rot) Apply(v geom2d.Vector) geom2d.Vector {
	return geom2d.Vector{X: r.Cos*v.X - r.Sin*v.Y, Y: r.Sin*v.X + r.Cos*v.Y}
}

func (r Rot) ApplyInverse(v geom2d.Vector) geom2d.Vector {
	return geom2d.Vector{X: r.Cos*v.X + r.Sin*v.Y, Y: -r.Sin*v.X + r.Cos*v.Y}
}

// Transform maps a point from a child frame into its parent frame: rotate, then translate.
type Transform struct {
	Translation geom2d.Vector
	Rotation    Rot
}

func NewTransform(translation geom2d.Vector, angle float64) Transform {
	return Transform{Translation: translation, Rotation: NewRot(angle)}
}

func IdentityTransform() Transform {
	return Transform{Rotation: IdentityRot()}
}

func (t Transform) Apply(v geom2d.Vector) geom2d.Vector {
	return t.Rotation.Apply(v).Add(t.Translation)
}

func (t Transform) ApplyInverse(v geom2d.Vector) geom2d.Vector {
	return t.Rotation.ApplyInverse(v.Sub(t.Translation))
}

func (t Transform) ApplySegment(s geom2d.LineSegment) geom2d.LineSegment {
	return geom2d.NewLineSegment(t.Apply(s.Start()), t.Apply(s.End()))
}

// Compose returns the transform that first applies inner, then t.
func (t Transform) Compose(inner Transform) Transform {
	return NewTransform(t.Apply(inner.Translation), mathhelp.NormalizeAngle(t.Rotation.Angle()+inner.Rotation.Angle()))
}
