package pngplot

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdok/parkgeom/geom2d"
	"github.com/pdok/parkgeom/processing"
	"github.com/pdok/parkgeom/viz"
)

func TestWriteResults(t *testing.T) {
	base := geom2d.NewLineSegment(geom2d.Vector{X: 0, Y: 0}, geom2d.Vector{X: 4, Y: 0})
	other := geom2d.NewLineSegment(geom2d.Vector{X: 2, Y: -1}, geom2d.Vector{X: 2, Y: 1})
	queries := []processing.Query{
		{Name: "cross", Kind: processing.KindIntersect, Segment: base, Other: other},
		{Name: "far", Kind: processing.KindDistance, Segment: base, Point: geom2d.Vector{X: 6, Y: 3}},
		{Name: "turn", Kind: processing.KindRotate, Segment: base, Angle: 1},
		{Name: "room", Kind: processing.KindPolygonDistance, Point: geom2d.Vector{X: 9, Y: 9},
			Polygon: viz.PolygonFromVectors(viz.Header{}, []geom2d.Vector{{X: 5, Y: 5}, {X: 7, Y: 5}, {X: 7, Y: 7}})},
	}
	results := make(chan processing.Result, len(queries))
	for _, q := range queries {
		r, err := processing.Evaluate(q)
		require.NoError(t, err)
		results <- r
	}
	close(results)

	file := filepath.Join(t.TempDir(), "results.png")
	target := NewTarget(file, "test", viz.NewHeader(time.Unix(0, 0)))
	require.NoError(t, target.WriteResults(results))

	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, 0)
	assert.Greater(t, cfg.Height, 0)
}

func TestWriteResultsEmpty(t *testing.T) {
	results := make(chan processing.Result)
	close(results)

	file := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, NewTarget(file, "empty", viz.Header{}).WriteResults(results))
	assert.FileExists(t, file)
}

func TestWriteResultsBadPath(t *testing.T) {
	results := make(chan processing.Result)
	close(results)

	file := filepath.Join(t.TempDir(), "missing", "dir", "out.png")
	require.Error(t, NewTarget(file, "bad", viz.Header{}).WriteResults(results))
}
