// Package wktfile writes query results as tab separated lines ending in a WKT geometry.
package wktfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pdok/parkgeom/geomhelp"
	"github.com/pdok/parkgeom/mathhelp"
	"github.com/pdok/parkgeom/processing"
)

const Header = "name\tkind\tvalue\tok\tgeometry"

type Target struct {
	w        *bufio.Writer
	maxWidth uint
}

// NewTarget writes to w. A maxWidth > 0 truncates every geometry to that many characters.
func NewTarget(w io.Writer, maxWidth uint) *Target {
	return &Target{w: bufio.NewWriter(w), maxWidth: maxWidth}
}

func (t *Target) WriteResults(results <-chan processing.Result) error {
	if _, err := fmt.Fprintln(t.w, Header); err != nil {
		return err
	}
	for r := range results {
		if _, err := fmt.Fprintln(t.w, t.line(r)); err != nil {
			return fmt.Errorf("writing result %q: %w", r.Query.Name, err)
		}
	}
	return t.w.Flush()
}

func (t *Target) line(r processing.Result) string {
	return fmt.Sprintf("%s\t%s\t%s\t%d\t%s",
		r.Query.Name,
		r.Query.Kind,
		strconv.FormatFloat(r.Value, 'g', -1, 64),
		mathhelp.Bool2int(r.OK),
		geomhelp.WktMustEncode(r.Geometry(), t.maxWidth),
	)
}
