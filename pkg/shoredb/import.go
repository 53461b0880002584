package shoredb

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dyuri/shoredb/internal/binary"
	"github.com/dyuri/shoredb/internal/geometry"
	"github.com/dyuri/shoredb/internal/model"
	"github.com/dyuri/shoredb/internal/text"
)

// ImportText converts multi-segment lon/lat text to a polygon file. Each
// ring is normalized to stored longitudes, gets its bounding box and area
// computed and is reversed if its winding does not match its level. It
// returns the number of polygons written.
func ImportText(r io.Reader, w io.Writer) (int, error) {
	records, err := text.NewReader(r).Read()
	if err != nil {
		return 0, fmt.Errorf("parse text: %w", err)
	}

	bw := bufio.NewWriter(w)
	out, err := binary.NewWriter(bw, binary.KindPolygon)
	if err != nil {
		return 0, err
	}

	seen := make(map[int]int, len(records))
	for i := range records {
		rec := &records[i]
		if line, dup := seen[rec.Header.ID]; dup {
			return i, model.Errorf(model.CodeInvalidArgument, nil, "line %d: id %d already used on line %d", rec.Line, rec.Header.ID, line)
		}
		seen[rec.Header.ID] = rec.Line

		p := BuildPolygon(rec.Header, rec.Coords)
		if err := out.WritePolygon(p); err != nil {
			return i, fmt.Errorf("write polygon %d: %w", p.Header.ID, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return len(records), model.Errorf(model.CodeIO, err, "flush output")
	}
	return len(records), nil
}

// BuildPolygon turns a (lon, lat) ring in degrees into a stored polygon with
// derived header fields filled in and winding matching h.Level.
func BuildPolygon(h Header, coords [][2]float64) *Polygon {
	p := geometry.BuildPolygon(h, coords)
	sign := geometry.Orientation(p.Header.Unwrap(p.Points))
	if sign != geometry.Degenerate && sign != geometry.RequiredOrientation(p.Header.Level) {
		model.Reverse(p.Points)
	}
	return p
}
