package geom2d

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"

	"github.com/pdok/parkgeom/mathhelp"
)

// LineSegment is a directed segment from start to end.
// The unit direction, heading and length are derived once by NewLineSegment.
// The fields are unexported so they can never get out of sync with the endpoints:
// to change the geometry, construct a new segment.
//
// The zero value is the degenerate segment at the origin with heading 0.
type LineSegment struct {
	start         Vector
	end           Vector
	unitDirection Vector
	heading       float64
	length        float64
}

func NewLineSegment(start, end Vector) LineSegment {
	ls := LineSegment{start: start, end: end}
	direction := end.Sub(start)
	ls.length = direction.Length()
	if ls.length > Epsilon {
		ls.unitDirection = direction.Div(ls.length)
	}
	ls.heading = ls.unitDirection.Angle()
	return ls
}

func LineSegmentFromGeomLine(l geom.Line) LineSegment {
	return NewLineSegment(FromGeomPoint(l[0]), FromGeomPoint(l[1]))
}

func (ls LineSegment) ToGeomLine() geom.Line {
	return geom.Line{ls.start.XY(), ls.end.XY()}
}

/* ========================= ATTRIBUTES ========================= */

func (ls LineSegment) Start() Vector { return ls.start }

func (ls LineSegment) End() Vector { return ls.end }

// UnitDirection is the normalized start→end vector, or the zero vector for a degenerate segment.
func (ls LineSegment) UnitDirection() Vector { return ls.unitDirection }

// Heading is the angle of the unit direction in (−π, π]. 0 for a degenerate segment.
func (ls LineSegment) Heading() float64 { return ls.heading }

func (ls LineSegment) Length() float64 { return ls.length }

// IsDegenerate reports whether start and end coincide (length ≤ Epsilon).
func (ls LineSegment) IsDegenerate() bool { return ls.length <= Epsilon }

func (ls LineSegment) Center() Vector {
	return ls.start.Add(ls.end).Scale(0.5)
}

// Rotate rotates end around start by angle and returns the new end point.
// The segment itself is not changed, see RotatedSegment.
func (ls LineSegment) Rotate(angle float64) Vector {
	return ls.start.Add(ls.end.Sub(ls.start).Rotate(angle))
}

func (ls LineSegment) RotatedSegment(angle float64) LineSegment {
	return NewLineSegment(ls.start, ls.Rotate(angle))
}

func (ls LineSegment) Reversed() LineSegment {
	return NewLineSegment(ls.end, ls.start)
}

func (ls LineSegment) String() string {
	return fmt.Sprintf("%v->%v", ls.start, ls.end)
}

/* ========================= PROJECTION ========================= */

// ProjectOntoUnit returns the distance from start to the perpendicular foot of point,
// measured along the unit direction (the projection parameter).
func (ls LineSegment) ProjectOntoUnit(point Vector) float64 {
	return ls.unitDirection.InnerProd(point.Sub(ls.start))
}

// ProductOntoUnit returns the signed perpendicular component of point:
// positive left of the direction, negative right of it.
func (ls LineSegment) ProductOntoUnit(point Vector) float64 {
	return ls.unitDirection.CrossProd(point.Sub(ls.start))
}

// GetPerpendicularFoot returns the signed distance (see ProductOntoUnit) from point to
// the infinite line through the segment and the foot of the perpendicular on that line.
// The foot is not clamped to the segment.
// For a degenerate segment the foot is start and the distance to start is returned, which is
// unsigned since there is no line to be on either side of.
func (ls LineSegment) GetPerpendicularFoot(point Vector) (float64, Vector) {
	x0 := point.X - ls.start.X
	y0 := point.Y - ls.start.Y
	proj := mathhelp.InnerProd(ls.unitDirection.X, ls.unitDirection.Y, x0, y0)
	foot := ls.start.Add(ls.unitDirection.Scale(proj))
	if ls.IsDegenerate() {
		return math.Hypot(x0, y0), foot
	}
	return mathhelp.CrossProd(ls.unitDirection.X, ls.unitDirection.Y, x0, y0), foot
}

/* ========================= DISTANCE ========================= */

// DistanceTo returns the distance from point to the closest point of the segment.
func (ls LineSegment) DistanceTo(point Vector) float64 {
	d, _ := ls.DistanceToWithNearest(point)
	return d
}

// DistanceToWithNearest is DistanceTo that also returns the closest point on the segment.
func (ls LineSegment) DistanceToWithNearest(point Vector) (float64, Vector) {
	if ls.IsDegenerate() {
		return point.DistanceTo(ls.start), ls.start
	}
	x0 := point.X - ls.start.X
	y0 := point.Y - ls.start.Y
	proj := mathhelp.InnerProd(x0, y0, ls.unitDirection.X, ls.unitDirection.Y)
	if proj <= 0 {
		return math.Hypot(x0, y0), ls.start
	}
	if proj >= ls.length {
		return point.DistanceTo(ls.end), ls.end
	}
	return math.Abs(mathhelp.CrossProd(x0, y0, ls.unitDirection.X, ls.unitDirection.Y)),
		ls.start.Add(ls.unitDirection.Scale(proj))
}

// DistanceSquareTo is the square of DistanceTo, computed without a square root.
func (ls LineSegment) DistanceSquareTo(point Vector) float64 {
	d, _ := ls.DistanceSquareToWithNearest(point)
	return d
}

// DistanceSquareToWithNearest selects the nearest point exactly like DistanceToWithNearest.
func (ls LineSegment) DistanceSquareToWithNearest(point Vector) (float64, Vector) {
	if ls.IsDegenerate() {
		return point.DistanceSquareTo(ls.start), ls.start
	}
	x0 := point.X - ls.start.X
	y0 := point.Y - ls.start.Y
	proj := mathhelp.InnerProd(x0, y0, ls.unitDirection.X, ls.unitDirection.Y)
	if proj <= 0 {
		return mathhelp.Sqr(x0) + mathhelp.Sqr(y0), ls.start
	}
	if proj >= ls.length {
		return point.DistanceSquareTo(ls.end), ls.end
	}
	return mathhelp.Sqr(mathhelp.CrossProd(x0, y0, ls.unitDirection.X, ls.unitDirection.Y)),
		ls.start.Add(ls.unitDirection.Scale(proj))
}

// DistanceToSegment returns the smallest distance between any two points of both segments,
// 0 if they intersect.
func (ls LineSegment) DistanceToSegment(other LineSegment) float64 {
	if ls.HasIntersect(other) {
		return 0
	}
	return min(
		ls.DistanceTo(other.start),
		ls.DistanceTo(other.end),
		other.DistanceTo(ls.start),
		other.DistanceTo(ls.end),
	)
}

/* ========================= CONTAINMENT & INTERSECTION ========================= */

// IsPointIn reports whether point lies on the segment, within Epsilon.
func (ls LineSegment) IsPointIn(point Vector) bool {
	if ls.IsDegenerate() {
		return point.DistanceTo(ls.start) <= Epsilon
	}
	if math.Abs(ls.ProductOntoUnit(point)) > Epsilon {
		return false
	}
	return mathhelp.IsWithin(ls.ProjectOntoUnit(point), 0, ls.length, Epsilon)
}

// HasIntersect reports whether both segments share at least one point.
// Touching endpoints and collinear overlap count as intersecting.
func (ls LineSegment) HasIntersect(other LineSegment) bool {
	if ls.touches(other) {
		return true
	}
	if ls.IsDegenerate() || other.IsDegenerate() {
		return false
	}
	return ls.straddles(other)
}

// GetIntersect returns the single point both segments share.
// ok is false when they don't intersect, and also when they are parallel:
// collinear overlapping segments don't have a unique intersection point.
// A degenerate segment lying on the other one intersects in its start.
func (ls LineSegment) GetIntersect(other LineSegment) (point Vector, ok bool) {
	switch {
	case ls.IsDegenerate():
		if other.IsPointIn(ls.start) {
			return ls.start, true
		}
		return Vector{}, false
	case other.IsDegenerate():
		if ls.IsPointIn(other.start) {
			return other.start, true
		}
		return Vector{}, false
	}
	if math.Abs(ls.unitDirection.CrossProd(other.unitDirection)) <= Epsilon {
		return Vector{}, false
	}
	if !ls.HasIntersect(other) {
		return Vector{}, false
	}
	// start + t·d = other.start + s·e  =>  t = ((other.start − start) x e) / (d x e)
	d := ls.end.Sub(ls.start)
	e := other.end.Sub(other.start)
	t := other.start.Sub(ls.start).CrossProd(e) / d.CrossProd(e)
	t = mathhelp.Clamp(t, 0, 1)
	return ls.start.Add(d.Scale(t)), true
}

// touches is true when an endpoint of either segment lies on the other one.
func (ls LineSegment) touches(other LineSegment) bool {
	return ls.IsPointIn(other.start) ||
		ls.IsPointIn(other.end) ||
		other.IsPointIn(ls.start) ||
		other.IsPointIn(ls.end)
}

// straddles reports whether the endpoints of each segment lie strictly on opposite sides
// of the other's supporting line, each signed distance being further than Epsilon from it.
func (ls LineSegment) straddles(other LineSegment) bool {
	return oppositeSides(ls.ProductOntoUnit(other.start), ls.ProductOntoUnit(other.end)) &&
		oppositeSides(other.ProductOntoUnit(ls.start), other.ProductOntoUnit(ls.end))
}

func oppositeSides(d1, d2 float64) bool {
	return (d1 > Epsilon && d2 < -Epsilon) || (d1 < -Epsilon && d2 > Epsilon)
}
