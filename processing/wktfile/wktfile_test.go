package wktfile

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdok/parkgeom/geom2d"
	"github.com/pdok/parkgeom/processing"
)

func TestWriteResults(t *testing.T) {
	foot := geom2d.Vector{X: 1, Y: 0}
	results := make(chan processing.Result, 2)
	results <- processing.Result{
		Query: processing.Query{Name: "foot-1", Kind: processing.KindFoot},
		Value: 2.5,
		OK:    true,
		Point: &foot,
	}
	results <- processing.Result{
		Query: processing.Query{
			Name:    "apart",
			Kind:    processing.KindIntersect,
			Segment: geom2d.NewLineSegment(geom2d.Vector{X: 0, Y: 0}, geom2d.Vector{X: 4, Y: 0}),
		},
	}
	close(results)

	var buf bytes.Buffer
	require.NoError(t, NewTarget(&buf, 0).WriteResults(results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, Header, lines[0])

	fields := strings.Split(lines[1], "\t")
	require.Len(t, fields, 5)
	assert.Equal(t, []string{"foot-1", "foot", "2.5", "1"}, fields[:4])
	assert.True(t, strings.HasPrefix(fields[4], "POINT"), fields[4])

	fields = strings.Split(lines[2], "\t")
	require.Len(t, fields, 5)
	assert.Equal(t, []string{"apart", "intersect", "0", "0"}, fields[:4])
	assert.True(t, strings.HasPrefix(fields[4], "LINESTRING"), fields[4])
}

func TestWriteResultsTruncated(t *testing.T) {
	results := make(chan processing.Result, 1)
	results <- processing.Result{Query: processing.Query{
		Name:    "long",
		Kind:    processing.KindCenter,
		Segment: geom2d.NewLineSegment(geom2d.Vector{X: 123456.789, Y: 98765.4321}, geom2d.Vector{X: 234567.891, Y: 87654.321}),
	}}
	close(results)

	var buf bytes.Buffer
	require.NoError(t, NewTarget(&buf, 12).WriteResults(results))
	line := strings.Split(strings.TrimSpace(buf.String()), "\n")[1]
	geometry := line[strings.LastIndex(line, "\t")+1:]
	assert.LessOrEqual(t, len(geometry), 12)
	assert.True(t, strings.HasSuffix(geometry, "..."), geometry)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteResultsWriterError(t *testing.T) {
	results := make(chan processing.Result)
	close(results)
	require.Error(t, NewTarget(failingWriter{}, 0).WriteResults(results))
}
