// Package processing takes care of the logistics around evaluating queries from a Source
// and writing the results to one or more Targets.
package processing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/pdok/parkgeom/geom2d"
	"github.com/pdok/parkgeom/mapslicehelp"
)

var ErrUnknownKind = errors.New("unknown query kind")

// Evaluate answers a single query.
//
//nolint:cyclop,funlen
func Evaluate(q Query) (Result, error) {
	r := Result{Query: q, OK: true}
	switch q.Kind {
	case KindDistance:
		d, nearest := q.Segment.DistanceToWithNearest(q.Point)
		r.Value, r.Point = d, &nearest
	case KindNearest:
		r.Ranking = rankCandidates(q.Candidates, q.Point)
		if len(r.Ranking) == 0 {
			r.OK = false
			break
		}
		best := r.Ranking[0]
		s, _ := q.Candidates.Get(best.Key)
		r.Value, r.Segment = best.Value, &s
	case KindProject:
		r.Value = q.Segment.ProjectOntoUnit(q.Point)
		p := q.Segment.Start().Add(q.Segment.UnitDirection().Scale(r.Value))
		r.Point = &p
	case KindProduct:
		r.Value = q.Segment.ProductOntoUnit(q.Point)
	case KindFoot:
		d, foot := q.Segment.GetPerpendicularFoot(q.Point)
		r.Value, r.Point = d, &foot
	case KindContains:
		r.OK = q.Segment.IsPointIn(q.Point)
		r.Value = q.Segment.DistanceTo(q.Point)
	case KindIntersect:
		p, ok := q.Segment.GetIntersect(q.Other)
		r.OK = ok
		r.Value = q.Segment.DistanceToSegment(q.Other)
		if ok {
			r.Point = &p
		}
	case KindCenter:
		c := q.Segment.Center()
		r.Value, r.Point = q.Segment.Length(), &c
	case KindRotate:
		rotated := q.Segment.RotatedSegment(q.Angle)
		r.Value, r.Segment = rotated.Heading(), &rotated
	case KindSegmentDistance:
		r.Value = q.Segment.DistanceToSegment(q.Other)
	case KindPolygonDistance:
		r.Value = q.Polygon.DistanceTo(q.Point)
		r.OK = q.Polygon.Contains(q.Point)
	default:
		return Result{}, fmt.Errorf("query %q: %w: %q", q.Name, ErrUnknownKind, q.Kind)
	}
	return r, nil
}

func rankCandidates(candidates *orderedmap.OrderedMap[string, geom2d.LineSegment], point geom2d.Vector) []mapslicehelp.Ranked[string] {
	if candidates == nil {
		return nil
	}
	distances := orderedmap.New[string, float64](candidates.Len())
	for p := candidates.Oldest(); p != nil; p = p.Next() {
		distances.Set(p.Key, p.Value.DistanceTo(point))
	}
	return mapslicehelp.RankByValue(distances)
}

// readQueriesFromSource reads the queries from the source
func readQueriesFromSource(source Source, queries chan<- Query) {
	source.ReadQueries(queries)
}

// evaluateQueries evaluates the incoming queries until the channel is drained or the context is done.
// A query that cannot be evaluated is logged and skipped.
func evaluateQueries(ctx context.Context, queries <-chan Query, results chan<- Result, logger *zap.SugaredLogger) {
	var total, answered, failed uint64
	defer func() {
		close(results)
		// keep the source unblocked
		for range queries { //nolint:revive
		}
		logger.Infow("evaluated queries", "total", total, "answered", answered, "failed", failed)
	}()
	for {
		var q Query
		var hasMore bool
		select {
		case <-ctx.Done():
			return
		case q, hasMore = <-queries:
		}
		if !hasMore {
			return
		}
		total++
		r, err := Evaluate(q)
		if err != nil {
			failed++
			logger.Warnw("skipping query", "error", err)
			continue
		}
		if r.OK {
			answered++
		}
		logger.Debugw("evaluated", "query", q.Name, "kind", q.Kind, "value", r.Value, "ok", r.OK)
		select {
		case <-ctx.Done():
			return
		case results <- r:
		}
	}
}

// writeResultsToTargets hands every result to every target, each target writing on its own goroutine.
func writeResultsToTargets(results <-chan Result, targets []Target) error {
	targetChannels := make([]chan Result, len(targets))
	errs := make([]error, len(targets))
	wg := sync.WaitGroup{}

	for i, target := range targets {
		targetChannel := make(chan Result)
		targetChannels[i] = targetChannel
		wg.Add(1)
		go func(i int, target Target) {
			defer wg.Done()
			errs[i] = target.WriteResults(targetChannel)
			// a failed target still has to drain its channel
			for range targetChannel { //nolint:revive
			}
		}(i, target)
	}

	for result := range results {
		for _, channel := range targetChannels {
			channel <- result
		}
	}

	// close the channels, the targets will do their last writing
	for _, targetChannel := range targetChannels {
		close(targetChannel)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Run evaluates all queries of the source and writes the results to all targets.
func Run(ctx context.Context, source Source, targets []Target, logger *zap.SugaredLogger) error {
	queries := make(chan Query)
	results := make(chan Result)

	var err error
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		err = writeResultsToTargets(results, targets)
	}()
	go evaluateQueries(ctx, queries, results, logger)
	go readQueriesFromSource(source, queries)

	wg.Wait()
	if err != nil {
		return err
	}
	return ctx.Err()
}
