package scene

import (
	"math"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdok/parkgeom/geom2d"
	"github.com/pdok/parkgeom/mapslicehelp"
	"github.com/pdok/parkgeom/processing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantUnknown []string
	}{
		{name: "yaml", path: "testdata/parking.yaml"},
		{name: "json", path: "testdata/parking.json", wantUnknown: []string{"owner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(tt.path)
			require.NoError(t, err)

			assert.Equal(t, "map", s.Header.FrameID)
			assert.Equal(t, uint32(2), s.Header.Seq)
			assert.InDelta(t, 1704830863.5, s.Header.TimeStamp, 1e-6)
			assert.Equal(t, tt.wantUnknown, s.Unknown)

			assert.Equal(t, []string{"lane", "slot-1", "slot-2", "curb"}, mapslicehelp.OrderedMapKeys(s.LineSegments()))
			lane, ok := s.LineSegments().Get("lane")
			require.True(t, ok)
			assert.Equal(t, 10.0, lane.Length())

			queries := s.Queries()
			require.Len(t, queries, 5)
			names := make([]string, len(queries))
			for i, q := range queries {
				names[i] = q.Name
			}
			assert.Equal(t, []string{"car-to-lane", "closest-slot", "lane-crosses-slot", "turn-slot", "car-in-spot"}, names)

			assert.Equal(t, geom2d.Vector{X: 3, Y: 2}, queries[0].Point)
			assert.Equal(t, lane, queries[0].Segment)
			assert.Equal(t, 4, queries[1].Candidates.Len())
			assert.Equal(t, processing.KindIntersect, queries[2].Kind)
			assert.InDelta(t, math.Pi/2, queries[3].Angle, 1e-12)
			assert.Len(t, queries[4].Polygon.Points, 4)
			assert.Equal(t, "map", queries[4].Polygon.Header.FrameID)
		})
	}
}

func TestParseHeaderDefaults(t *testing.T) {
	const segments = `"segments": {"a": {"start": [0, 0], "end": [1, 0]}}`
	tests := []struct {
		name      string
		data      string
		format    Format
		wantFrame string
		wantSeq   uint32
	}{
		{name: "json without seq", data: `{"header": {"frameId": "map"}, ` + segments + `}`, format: FormatJSON, wantFrame: "map", wantSeq: 2},
		{name: "json without header", data: `{` + segments + `}`, format: FormatJSON, wantFrame: "world", wantSeq: 2},
		{name: "json with seq", data: `{"header": {"seq": 7}, ` + segments + `}`, format: FormatJSON, wantFrame: "world", wantSeq: 7},
		{name: "yaml without seq", data: "header: {frameId: map}\nsegments:\n  a: {start: [0, 0], end: [1, 0]}\n", format: FormatYAML, wantFrame: "map", wantSeq: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrame, s.Header.FrameID)
			assert.Equal(t, tt.wantSeq, s.Header.Seq)
		})
	}
}

func TestLoadedQueriesEvaluate(t *testing.T) {
	s, err := Load("testdata/parking.yaml")
	require.NoError(t, err)

	results := make(map[string]processing.Result)
	for _, q := range s.Queries() {
		r, err := processing.Evaluate(q)
		require.NoError(t, err)
		results[q.Name] = r
	}

	assert.InDelta(t, 2, results["car-to-lane"].Value, 1e-9)

	closest := results["closest-slot"]
	require.NotEmpty(t, closest.Ranking)
	assert.Equal(t, "slot-1", closest.Ranking[0].Key)
	assert.InDelta(t, 1, closest.Value, 1e-9)

	assert.False(t, results["lane-crosses-slot"].OK)
	assert.InDelta(t, 1, results["lane-crosses-slot"].Value, 1e-9)

	turned := results["turn-slot"].Segment
	require.NotNil(t, turned)
	assert.InDelta(t, 1, turned.End().X, 1e-9)
	assert.InDelta(t, 1, turned.End().Y, 1e-9)

	assert.True(t, results["car-in-spot"].OK)
}

func TestParseErrors(t *testing.T) {
	const segments = "segments:\n  a: {start: [0, 0], end: [1, 0]}\n  b: {start: [0, 1], end: [1, 1]}\npoints:\n  p: [0, 0]\n"
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "unknown segment",
			data:    segments + "queries:\n  - {name: q, kind: distance, segment: c, point: p}\n",
			wantErr: ErrUnknownSegment,
		},
		{
			name:    "unknown other segment",
			data:    segments + "queries:\n  - {name: q, kind: intersect, segment: a, other: z}\n",
			wantErr: ErrUnknownSegment,
		},
		{
			name:    "unknown point",
			data:    segments + "queries:\n  - {name: q, kind: foot, segment: a, point: nowhere}\n",
			wantErr: ErrUnknownPoint,
		},
		{
			name:    "unknown polygon",
			data:    segments + "queries:\n  - {name: q, kind: polygonDistance, polygon: lot, point: p}\n",
			wantErr: ErrUnknownPolygon,
		},
		{
			name:    "missing point",
			data:    segments + "queries:\n  - {name: q, kind: project, segment: a}\n",
			wantErr: ErrMissingReference,
		},
		{
			name:    "rotate without angle",
			data:    segments + "queries:\n  - {name: q, kind: rotate, segment: a}\n",
			wantErr: ErrMissingReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatYAML)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no segments", data: "queries: []\n"},
		{name: "unknown kind", data: "segments:\n  a: {start: [0, 0], end: [1, 0]}\nqueries:\n  - {name: q, kind: area, segment: a}\n"},
		{name: "nameless query", data: "segments:\n  a: {start: [0, 0], end: [1, 0]}\nqueries:\n  - {kind: center, segment: a}\n"},
		{name: "both angles", data: "segments:\n  a: {start: [0, 0], end: [1, 0]}\nqueries:\n  - {name: q, kind: rotate, segment: a, angle: 1, angleDeg: 90}\n"},
		{name: "3d segment", data: "segments:\n  a: {start: [0, 0, 0], end: [1, 0]}\n"},
		{name: "3d point", data: "segments:\n  a: {start: [0, 0], end: [1, 0]}\npoints:\n  p: [1, 2, 3]\n"},
		{name: "polygon too small", data: "segments:\n  a: {start: [0, 0], end: [1, 0]}\npolygons:\n  lot: [[0, 0], [1, 1]]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatYAML)
			var validationErrors validator.ValidationErrors
			require.ErrorAs(t, err, &validationErrors)
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("testdata/parking.toml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Parse([]byte("{}"), "toml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	require.Error(t, err)
}

func TestReadQueries(t *testing.T) {
	s, err := Load("testdata/parking.json")
	require.NoError(t, err)

	queries := make(chan processing.Query, len(s.Queries()))
	s.ReadQueries(queries)
	var names []string
	for q := range queries {
		names = append(names, q.Name)
	}
	assert.Len(t, names, 5)
	assert.Equal(t, "car-to-lane", names[0])
}
