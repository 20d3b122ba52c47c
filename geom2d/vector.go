// Package geom2d holds the planar primitives used by the parking planners:
// a Vector (which doubles as a point) and a LineSegment built from two of them.
//
// All comparisons use a fixed absolute tolerance (Epsilon), not exact predicates.
// Degenerate input (zero-length vectors and segments, parallel lines) never panics,
// it results in a documented fallback value or a false "ok" return.
// NaN and Inf are not checked for and simply propagate.
// Signed distances lose their sign on a degenerate segment: GetPerpendicularFoot then returns
// the unsigned distance to its start.
//
// Interop with github.com/go-spatial/geom is provided through ToGeom*/FromGeom* functions,
// so results can be encoded (WKT, GeoPackage) by the same tooling.
package geom2d

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
)

// Epsilon is the absolute tolerance used for all geometric comparisons.
const Epsilon = 1e-10

// Vector is a 2D vector or point. It is a plain value, copy it freely.
type Vector struct {
	X float64
	Y float64
}

func NewVector(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// UnitVectorFromAngle returns (cos(angle), sin(angle)).
func UnitVectorFromAngle(angle float64) Vector {
	return Vector{X: math.Cos(angle), Y: math.Sin(angle)}
}

func FromGeomPoint(p geom.Point) Vector {
	return Vector{X: p[0], Y: p[1]}
}

func (v Vector) ToGeomPoint() geom.Point {
	return geom.Point{v.X, v.Y}
}

// XY returns an array of 2D coordinates
func (v Vector) XY() [2]float64 {
	return [2]float64{v.X, v.Y}
}

/* ========================= ALGEBRA ========================= */

func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vector) Sub(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vector) Scale(ratio float64) Vector {
	return Vector{X: v.X * ratio, Y: v.Y * ratio}
}

// Div divides both components by ratio. Dividing by zero yields Inf/NaN components.
func (v Vector) Div(ratio float64) Vector {
	return Vector{X: v.X / ratio, Y: v.Y / ratio}
}

// AddInPlace adds other to v and returns v for chaining.
func (v *Vector) AddInPlace(other Vector) *Vector {
	v.X += other.X
	v.Y += other.Y
	return v
}

func (v *Vector) SubInPlace(other Vector) *Vector {
	v.X -= other.X
	v.Y -= other.Y
	return v
}

func (v *Vector) ScaleInPlace(ratio float64) *Vector {
	v.X *= ratio
	v.Y *= ratio
	return v
}

func (v *Vector) DivInPlace(ratio float64) *Vector {
	v.X /= ratio
	v.Y /= ratio
	return v
}

/* ========================= ATTRIBUTES ========================= */

func (v Vector) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vector) LengthSquare() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Angle returns the angle in relation to the x-axis in radians, in (−π, π].
func (v Vector) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// IsZero reports whether both components are within Epsilon of zero.
func (v Vector) IsZero() bool {
	return v.Equal(Vector{})
}

// Normalize scales v to unit length. Vectors not longer than Epsilon are left untouched.
func (v *Vector) Normalize() {
	l := v.Length()
	if l > Epsilon {
		v.X /= l
		v.Y /= l
	}
}

// Normalized is the copying variant of Normalize.
func (v Vector) Normalized() Vector {
	v.Normalize()
	return v
}

func (v Vector) DistanceTo(other Vector) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

func (v Vector) DistanceSquareTo(other Vector) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return dx*dx + dy*dy
}

// CrossProd is the z component of v x other: positive when other lies counterclockwise of v.
func (v Vector) CrossProd(other Vector) float64 {
	return v.X*other.Y - v.Y*other.X
}

func (v Vector) InnerProd(other Vector) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Rotate returns v rotated counterclockwise around the origin by angle (radians).
func (v Vector) Rotate(angle float64) Vector {
	sin, cos := math.Sincos(angle)
	return Vector{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// SelfRotate is the in place variant of Rotate.
func (v *Vector) SelfRotate(angle float64) {
	*v = v.Rotate(angle)
}

// Equal compares per component with an absolute tolerance of Epsilon.
func (v Vector) Equal(other Vector) bool {
	return math.Abs(v.X-other.X) < Epsilon && math.Abs(v.Y-other.Y) < Epsilon
}

func (v Vector) String() string {
	return fmt.Sprintf("(%v, %v)", v.X, v.Y)
}

/* ========================= HELPERS ========================= */

// CrossProd returns (end1 − start) x (end2 − start).
// Positive when end2 lies to the left of the directed line start→end1.
func CrossProd(start, end1, end2 Vector) float64 {
	return end1.Sub(start).CrossProd(end2.Sub(start))
}

// InnerProd returns (end1 − start) · (end2 − start).
func InnerProd(start, end1, end2 Vector) float64 {
	return end1.Sub(start).InnerProd(end2.Sub(start))
}

// VectorsToGeomPoints converts to the go-spatial representation, e.g. for a LineString or ring.
func VectorsToGeomPoints(vs []Vector) [][2]float64 {
	pts := make([][2]float64, len(vs))
	for i := range vs {
		pts[i] = vs[i].XY()
	}
	return pts
}

func VectorsFromGeomPoints(pts [][2]float64) []Vector {
	vs := make([]Vector, len(pts))
	for i := range pts {
		vs[i] = Vector{X: pts[i][0], Y: pts[i][1]}
	}
	return vs
}
