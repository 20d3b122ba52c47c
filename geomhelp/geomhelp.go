package geomhelp

import (
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/muesli/reflow/truncate"
)

// https://en.wikipedia.org/wiki/Shoelace_formula
// SignedArea is positive for a counterclockwise ring. The ring does not need to be closed.
func SignedArea(pts [][2]float64) float64 {
	sum := 0.
	if len(pts) == 0 {
		return 0.
	}

	p0 := pts[len(pts)-1]
	for _, p1 := range pts {
		sum += p0[0]*p1[1] - p1[0]*p0[1]
		p0 = p1
	}
	return sum / 2
}

func Shoelace(pts [][2]float64) float64 {
	return math.Abs(SignedArea(pts))
}

func IsCounterClockwise(pts [][2]float64) bool {
	return SignedArea(pts) > 0
}

// RingContains reports whether pt lies inside the ring or on its boundary.
// The ring does not need to be closed.
func RingContains(ring [][2]float64, pt [2]float64) bool {
	if len(ring) == 0 {
		return false
	}
	in := false
	start := ring[len(ring)-1]
	for _, end := range ring {
		intersects, on := RayIntersect(pt, start, end)
		if on {
			return true
		}
		if intersects {
			in = !in
		}
		start = end
	}
	return in
}

// from paulmach/orb
// Adapted from http://rosettacode.org/wiki/Ray-casting_algorithm#Go
//
//nolint:cyclop,nestif
func RayIntersect(pt, start, end [2]float64) (intersects, on bool) {
	if start[0] > end[0] {
		start, end = end, start
	}

	if pt[0] == start[0] {
		if pt[1] == start[1] {
			// pt == start
			return false, true
		} else if start[0] == end[0] {
			// vertical segment (start -> end)
			// return true if within the line, check to see if start or end is greater.
			if start[1] > end[1] && start[1] >= pt[1] && pt[1] >= end[1] {
				return false, true
			}

			if end[1] > start[1] && end[1] >= pt[1] && pt[1] >= start[1] {
				return false, true
			}
		}

		// Move the y coordinate to deal with degenerate case
		pt[0] = math.Nextafter(pt[0], math.Inf(1))
	} else if pt[0] == end[0] {
		if pt[1] == end[1] {
			// matching the end point
			return false, true
		}

		pt[0] = math.Nextafter(pt[0], math.Inf(1))
	}

	if pt[0] < start[0] || pt[0] > end[0] {
		return false, false
	}

	if start[1] > end[1] {
		if pt[1] > start[1] {
			return false, false
		} else if pt[1] < end[1] {
			return true, false
		}
	} else {
		if pt[1] > end[1] {
			return false, false
		} else if pt[1] < start[1] {
			return true, false
		}
	}

	rs := (pt[1] - start[1]) / (pt[0] - start[0])
	ds := (end[1] - start[1]) / (end[0] - start[0])

	if rs == ds {
		return false, true
	}

	return rs <= ds, false
}

// WktMustEncode encodes g as WKT, truncated to maxLen characters (0 means no limit).
// Polygons with collapsed rings are split up into a polygon, lines and points,
// because WKT can't represent rings with less than 3 points.
func WktMustEncode(g geom.Geometry, maxLen uint) (s string) {
	p, isPoly := g.(geom.Polygon)
	if !isPoly {
		return wktMustEncodeTruncated(g, maxLen)
	}

	var lines []geom.LineString
	var points []geom.Point
	pp := make(geom.Polygon, 0, len(p))
	for _, ring := range p {
		switch len(ring) {
		case 0:
		case 1:
			points = append(points, ring[0])
		case 2:
			lines = append(lines, ring)
		default:
			pp = append(pp, ring)
		}
	}

	if len(pp) > 0 {
		s = wktMustEncodeTruncated(pp, maxLen)
	}
	for i := range lines {
		s += wktMustEncodeTruncated(lines[i], maxLen)
	}
	for i := range points {
		s += wktMustEncodeTruncated(points[i], maxLen)
	}
	return s
}

func wktMustEncodeTruncated(g geom.Geometry, width uint) string {
	if width == 0 {
		return wkt.MustEncode(g)
	}
	return truncate.StringWithTail(wkt.MustEncode(g), width, "...")
}
