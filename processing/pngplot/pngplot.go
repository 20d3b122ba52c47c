// Package pngplot draws query results onto a single PNG.
package pngplot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pdok/parkgeom/geom2d"
	"github.com/pdok/parkgeom/processing"
	"github.com/pdok/parkgeom/viz"
)

const circleVertices = 48

var (
	queryColor   = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	segmentColor = color.RGBA{R: 30, G: 90, B: 200, A: 255}
	pointColor   = color.RGBA{R: 210, G: 40, B: 40, A: 255}
	radiusColor  = color.RGBA{R: 240, G: 160, B: 30, A: 255}
)

type Target struct {
	file   string
	title  string
	header viz.Header
	width  vg.Length
	height vg.Length
}

// NewTarget plots to file when the results channel is closed.
func NewTarget(file, title string, header viz.Header) *Target {
	return &Target{file: file, title: title, header: header, width: 8 * vg.Inch, height: 8 * vg.Inch}
}

func (t *Target) WriteResults(results <-chan processing.Result) error {
	var queried, answered []geom2d.LineSegment
	var polygons []viz.Polygon2f
	var circles []viz.Circle
	points := viz.PointCloud2f{Header: t.header}

	for r := range results {
		q := r.Query
		switch q.Kind {
		case processing.KindNearest:
		case processing.KindPolygonDistance:
			polygons = append(polygons, q.Polygon)
		default:
			queried = append(queried, q.Segment)
		}
		switch q.Kind {
		case processing.KindIntersect, processing.KindSegmentDistance:
			queried = append(queried, q.Other)
		case processing.KindDistance, processing.KindPolygonDistance, processing.KindNearest:
			if r.Value > geom2d.Epsilon {
				circles = append(circles, viz.Circle{Header: t.header, Center: q.Point, Radius: r.Value})
			}
		}
		if r.Segment != nil {
			answered = append(answered, *r.Segment)
		}
		if r.Point != nil {
			points.Points = append(points.Points, *r.Point)
		}
	}

	p := plot.New()
	p.Title.Text = t.title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	if err := t.addSegments(p, "queried", queried, queryColor); err != nil {
		return err
	}
	if err := t.addSegments(p, "answer", answered, segmentColor); err != nil {
		return err
	}
	for i, polygon := range polygons {
		if err := addRing(p, polygon, queryColor, i == 0, "polygon"); err != nil {
			return err
		}
	}
	for i, c := range circles {
		if err := addRing(p, c.ToPolygon(circleVertices), radiusColor, i == 0, "distance"); err != nil {
			return err
		}
	}
	if len(points.Points) > 0 {
		scatter, err := plotter.NewScatter(toXYs(points.Points))
		if err != nil {
			return fmt.Errorf("could not plot points: %w", err)
		}
		scatter.GlyphStyle.Color = pointColor
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add("point", scatter)
	}

	if err := p.Save(t.width, t.height, t.file); err != nil {
		return fmt.Errorf("could not save plot %s: %w", t.file, err)
	}
	return nil
}

// addSegments draws every segment as its own line, only the first one gets a legend entry.
func (t *Target) addSegments(p *plot.Plot, name string, segments []geom2d.LineSegment, c color.Color) error {
	for i, s := range segments {
		path := viz.PathFromSegments(t.header, []geom2d.LineSegment{s})
		line, err := plotter.NewLine(toXYs(path.Points))
		if err != nil {
			return fmt.Errorf("could not plot segment %v: %w", s, err)
		}
		line.Color = c
		line.Width = vg.Points(1)
		p.Add(line)
		if i == 0 {
			p.Legend.Add(name, line)
		}
	}
	return nil
}

func addRing(p *plot.Plot, polygon viz.Polygon2f, c color.Color, legend bool, name string) error {
	if len(polygon.Points) == 0 {
		return nil
	}
	closed := append(append([]geom2d.Vector{}, polygon.Points...), polygon.Points[0])
	line, err := plotter.NewLine(toXYs(closed))
	if err != nil {
		return fmt.Errorf("could not plot ring: %w", err)
	}
	line.Color = c
	line.Width = vg.Points(1)
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(line)
	if legend {
		p.Legend.Add(name, line)
	}
	return nil
}

func toXYs(vs []geom2d.Vector) plotter.XYs {
	xys := make(plotter.XYs, len(vs))
	for i, v := range vs {
		xys[i] = plotter.XY{X: v.X, Y: v.Y}
	}
	return xys
}
