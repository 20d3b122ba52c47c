// Package mathhelp holds the scalar and angle helpers shared by the geometry packages.
// Everything in here is a pure function.
package mathhelp

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

const (
	TwoPi = 2 * math.Pi

	// MachineEpsilon is the difference between 1.0 and the next representable float64.
	MachineEpsilon = 2.220446049250313e-16
	// SmallestNormal is the smallest positive normal float64 (math.SmallestNonzeroFloat64 is subnormal).
	SmallestNormal = 2.2250738585072014e-308
)

type Number interface {
	constraints.Integer | constraints.Float
}

func Square[T Number](v T) T {
	return v * v
}

// Sqr is Square for float64, for readability in long formulas.
func Sqr(x float64) float64 { return x * x }

// Clamp limits v to the range spanned by bound1 and bound2. The bounds may be given in either order.
func Clamp[T constraints.Ordered](v, bound1, bound2 T) T {
	if bound1 > bound2 {
		bound1, bound2 = bound2, bound1
	}
	if v < bound1 {
		return bound1
	}
	if v > bound2 {
		return bound2
	}
	return v
}

func BetweenInc[T constraints.Ordered](f, p, q T) bool {
	if p <= q {
		return p <= f && f <= q
	}
	return q <= f && f <= p
}

// IsWithin is BetweenInc with both bounds widened by tolerance.
func IsWithin(v, bound1, bound2, tolerance float64) bool {
	if bound1 > bound2 {
		bound1, bound2 = bound2, bound1
	}
	return v >= bound1-tolerance && v <= bound2+tolerance
}

// CrossProd is the z component of (x0,y0) x (x1,y1).
func CrossProd(x0, y0, x1, y1 float64) float64 {
	return x0*y1 - x1*y0
}

func InnerProd(x0, y0, x1, y1 float64) float64 {
	return x0*x1 + y0*y1
}

func EuclidianMod(d, m int) int {
	r := d % m
	if (r < 0 && m > 0) || (r > 0 && m < 0) {
		return r + m
	}
	return r
}

// FloatMod is EuclidianMod for a positive float modulus: the result is in [0, m).
func FloatMod(d, m float64) float64 {
	r := math.Mod(d, m)
	if r < 0 {
		r += m
	}
	if r >= m { // r was a tiny negative number
		return 0
	}
	return r
}

// WrapAngle maps an angle in radians onto [0, 2π).
func WrapAngle(angle float64) float64 {
	return FloatMod(angle, TwoPi)
}

// NormalizeAngle maps an angle in radians onto (−π, π].
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle+math.Pi, TwoPi)
	if a <= 0 {
		a += TwoPi
	}
	a -= math.Pi
	if a <= -math.Pi {
		return math.Pi
	}
	return a
}

// AngleDiff returns the signed shortest rotation from `from` to `to`, in (−π, π].
func AngleDiff(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// Gaussian is the normal probability density. std must not be zero.
func Gaussian(mean, std, x float64) float64 {
	return (1.0 / math.Sqrt(TwoPi*std*std)) * math.Exp(-(x-mean)*(x-mean)/(2*std*std))
}

func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// RFUToFLU converts right-front-up coordinates into front-left-up coordinates.
func RFUToFLU(x, y float64) (float64, float64) {
	return y, -x
}

// FLUToRFU is the inverse of RFUToFLU.
func FLUToRFU(x, y float64) (float64, float64) {
	return -y, x
}

// CartesianToPolar returns radius and angle (atan2) of (x,y).
func CartesianToPolar(x, y float64) (r, theta float64) {
	return math.Hypot(x, y), math.Atan2(y, x)
}

func PolarToCartesian(r, theta float64) (x, y float64) {
	return r * math.Cos(theta), r * math.Sin(theta)
}

// L2Norm normalizes data in place. An all-zero vector becomes the constant 1/√len(data).
func L2Norm(data []float64) {
	if len(data) == 0 {
		return
	}
	norm := floats.Norm(data, 2)
	if norm == 0 {
		val := 1.0 / math.Sqrt(float64(len(data)))
		for i := range data {
			data[i] = val
		}
		return
	}
	floats.Scale(1/norm, data)
}

// AlmostEqual reports whether x and y are equal up to ulp units in the last place,
// scaled to their magnitude. Differences smaller than the smallest normal float always count as equal.
func AlmostEqual(x, y float64, ulp int) bool {
	diff := math.Abs(x - y)
	return diff <= MachineEpsilon*math.Abs(x+y)*float64(ulp) || diff < SmallestNormal
}

func Bool2int(b bool) int {
	if b {
		return 1
	}
	return 0
}
