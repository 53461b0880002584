package text

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dyuri/shoredb/internal/model"
)

// Writer prints polygons as lon<TAB>lat lines in degrees
type Writer struct {
	w     *bufio.Writer
	multi bool
}

// NewWriter creates a text writer. In multi-segment mode every polygon is
// preceded by a '>' header line that Reader understands.
func NewWriter(w io.Writer, multi bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), multi: multi}
}

// WritePolygon writes the polygon's points unwrapped into its continuous
// longitude frame.
func (w *Writer) WritePolygon(p *model.Polygon) error {
	h := &p.Header
	if w.multi {
		fmt.Fprintf(w.w, "> id=%d n=%d level=%d source=%d parent=%d ancestor=%d area=%.3f\n",
			h.ID, h.N, h.Level, h.Source, h.Parent, h.Ancestor, h.Area)
	}
	for _, pt := range p.Points {
		writePoint(w.w, model.UnwrapLongitude(pt.X, h), pt.Y)
	}
	return w.check()
}

// WriteSegment writes one raw segment.
func (w *Writer) WriteSegment(s *model.Segment) error {
	if w.multi {
		fmt.Fprintf(w.w, "> rank=%d n=%d\n", s.Header.Rank, s.Header.N)
	}
	for _, pt := range s.Points {
		writePoint(w.w, pt.X, pt.Y)
	}
	return w.check()
}

// Flush writes any buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) check() error {
	// bufio.Writer keeps the first error; surface it without flushing.
	if _, err := w.w.Write(nil); err != nil {
		return model.Errorf(model.CodeIO, err, "write text")
	}
	return nil
}

func writePoint(w *bufio.Writer, x, y int32) {
	writeDegrees(w, x)
	w.WriteByte('\t')
	writeDegrees(w, y)
	w.WriteByte('\n')
}

// writeDegrees prints micro-degrees exactly with six decimals.
func writeDegrees(w *bufio.Writer, v int32) {
	sign := ""
	u := int64(v)
	if u < 0 {
		sign = "-"
		u = -u
	}
	fmt.Fprintf(w, "%s%d.%06d", sign, u/model.Mill, u%model.Mill)
}
