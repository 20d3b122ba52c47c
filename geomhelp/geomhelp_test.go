package geomhelp

import (
	"strings"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
)

func TestShoelace(t *testing.T) {
	var tests = []struct {
		pts  [][2]float64
		area float64
		ccw  bool
	}{
		// Rectangle, clockwise
		0: {pts: [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}, area: float64(100)},
		// Triangle, counterclockwise
		1: {pts: [][2]float64{{0, 0}, {5, 10}, {0, 10}, {0, 0}}, area: float64(25), ccw: true},
		// Missing 'official closing point
		2: {pts: [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}}, area: float64(100)},
		// Counterclockwise rectangle
		3: {pts: [][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, area: float64(100), ccw: true},
		// Single point
		4: {pts: [][2]float64{{1234, 4321}}, area: float64(0.000000)},
		// No point
		5: {pts: nil, area: float64(0.000000)},
		// Empty point
		6: {pts: [][2]float64{}, area: float64(0.000000)},
	}

	for k, test := range tests {
		area := Shoelace(test.pts)
		if area != test.area {
			t.Errorf("test: %d, expected: %f \ngot: %f", k, test.area, area)
		}
		if ccw := IsCounterClockwise(test.pts); ccw != test.ccw {
			t.Errorf("test: %d, expected counterclockwise: %v \ngot: %v", k, test.ccw, ccw)
		}
	}
}

func TestRingContains(t *testing.T) {
	square := [][2]float64{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	tests := []struct {
		name string
		pt   [2]float64
		want bool
	}{
		{name: "inside", pt: [2]float64{2, 2}, want: true},
		{name: "outside", pt: [2]float64{5, 2}, want: false},
		{name: "on edge", pt: [2]float64{4, 2}, want: true},
		{name: "on vertex", pt: [2]float64{0, 0}, want: true},
		{name: "left of vertical edge", pt: [2]float64{-1, 2}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RingContains(square, tt.pt))
		})
	}
	assert.False(t, RingContains(nil, [2]float64{0, 0}))
}

func TestWktMustEncode(t *testing.T) {
	tests := []struct {
		name     string
		g        geom.Geometry
		maxLen   uint
		prefix   string
		contains string
	}{
		{name: "point", g: geom.Point{1, 2}, prefix: "POINT", contains: "1 2"},
		{name: "linestring", g: geom.LineString{{0, 0}, {10, 0}}, prefix: "LINESTRING", contains: "10 0"},
		{name: "collapsed polygon", g: geom.Polygon{{{0, 0}, {1, 0}}}, prefix: "LINESTRING", contains: "1 0"},
		{name: "polygon", g: geom.Polygon{{{0, 0}, {1, 0}, {1, 1}}}, prefix: "POLYGON", contains: "1 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WktMustEncode(tt.g, tt.maxLen)
			assert.True(t, strings.HasPrefix(got, tt.prefix), got)
			assert.Contains(t, got, tt.contains)
		})
	}

	truncated := WktMustEncode(geom.LineString{{0, 0}, {10, 0}, {20, 0}, {30, 0}}, 12)
	assert.LessOrEqual(t, len(truncated), 12)
	assert.True(t, strings.HasSuffix(truncated, "..."), truncated)
}
