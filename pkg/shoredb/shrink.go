package shoredb

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dyuri/shoredb/internal/binary"
	"github.com/dyuri/shoredb/internal/simplify"
)

// Tolerance is a simplification tolerance. See ParseTolerance.
type Tolerance = simplify.Tolerance

// NoOp keeps every point.
var NoOp = simplify.NoOp

// ParseTolerance accepts "none" or a positive number of kilometers with an
// optional "km" suffix.
func ParseTolerance(s string) (Tolerance, error) {
	return simplify.Parse(s)
}

// ShrinkResult describes one input polygon after simplification.
type ShrinkResult struct {
	ID     int
	Before int
	After  int  // 0 when Lost
	Lost   bool // At most one point survived; nothing was written
}

// Reduction returns the percentage of points removed.
func (r ShrinkResult) Reduction() float64 {
	if r.Before == 0 {
		return 0
	}
	return 100 * float64(r.Before-r.After) / float64(r.Before)
}

// ShrinkStats totals a Shrink run.
type ShrinkStats struct {
	Polygons  int
	Written   int
	Lost      int
	PointsIn  int
	PointsOut int
}

// Reduction returns the percentage of points removed overall.
func (s ShrinkStats) Reduction() float64 {
	if s.PointsIn == 0 {
		return 0
	}
	return 100 * float64(s.PointsIn-s.PointsOut) / float64(s.PointsIn)
}

// Shrink simplifies every polygon read from r and writes the survivors to w
// as a new polygon file. onPolygon, when not nil, sees every input polygon.
// Output already written stays written if a later polygon fails.
func Shrink(r io.Reader, w io.Writer, t Tolerance, onPolygon func(ShrinkResult)) (ShrinkStats, error) {
	var stats ShrinkStats

	bw := bufio.NewWriter(w)
	out, err := binary.NewWriter(bw, binary.KindPolygon)
	if err != nil {
		return stats, err
	}

	err = ReadPolygons(r, func(p *Polygon) error {
		res := ShrinkResult{ID: p.Header.ID, Before: len(p.Points)}
		stats.Polygons++
		stats.PointsIn += len(p.Points)

		reduced, err := simplify.Polygon(p, t)
		if err != nil {
			return fmt.Errorf("simplify polygon %d: %w", p.Header.ID, err)
		}
		if reduced == nil {
			res.Lost = true
			stats.Lost++
		} else {
			if err := out.WritePolygon(reduced); err != nil {
				return fmt.Errorf("write polygon %d: %w", p.Header.ID, err)
			}
			res.After = len(reduced.Points)
			stats.Written++
			stats.PointsOut += res.After
		}

		if onPolygon != nil {
			onPolygon(res)
		}
		return nil
	})

	if ferr := bw.Flush(); ferr != nil && err == nil {
		err = fmt.Errorf("flush output: %w", ferr)
	}
	return stats, err
}
