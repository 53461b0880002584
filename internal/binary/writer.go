package binary

import (
	"encoding/binary"
	"io"

	"github.com/dyuri/shoredb/internal/model"
)

// Writer encodes records sequentially to a database stream
type Writer struct {
	w      io.Writer
	endian binary.ByteOrder
	kind   Kind
	offset int64
	hbuf   []byte
}

// NewWriter writes the preamble for a file of the given kind.
func NewWriter(w io.Writer, kind Kind) (*Writer, error) {
	buf := make([]byte, PreambleSize)
	encodePreamble(buf, kind)
	wr := &Writer{
		w:      w,
		endian: ByteOrder,
		kind:   kind,
		hbuf:   make([]byte, HeaderSize),
	}
	if err := wr.write(buf, "preamble"); err != nil {
		return nil, err
	}
	return wr, nil
}

// NewLegacyWriter writes the legacy layout: no preamble, given byte order.
func NewLegacyWriter(w io.Writer, order binary.ByteOrder, kind Kind) *Writer {
	return &Writer{
		w:      w,
		endian: order,
		kind:   kind,
		hbuf:   make([]byte, HeaderSize),
	}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 {
	return w.offset
}

func (w *Writer) write(buf []byte, what string) error {
	n, err := w.w.Write(buf)
	w.offset += int64(n)
	if err != nil {
		return model.Errorf(model.CodeIO, err, "write %s", what)
	}
	if n != len(buf) {
		return model.Errorf(model.CodeIO, io.ErrShortWrite, "write %s: %d of %d bytes", what, n, len(buf))
	}
	return nil
}

// WriteHeader appends one polygon header.
func (w *Writer) WriteHeader(h *model.Header) error {
	if w.kind != KindPolygon {
		return model.Errorf(model.CodeInvalidArgument, nil, "write polygon header to %s file", w.kind)
	}
	encodeHeader(w.endian, w.hbuf, h)
	return w.write(w.hbuf[:HeaderSize], "header")
}

// WriteSegmentHeader appends one raw segment header.
func (w *Writer) WriteSegmentHeader(h *model.SegmentHeader) error {
	if w.kind != KindSegment {
		return model.Errorf(model.CodeInvalidArgument, nil, "write segment header to %s file", w.kind)
	}
	encodeSegmentHeader(w.endian, w.hbuf, h)
	return w.write(w.hbuf[:SegmentHeaderSize], "segment header")
}

// WritePoints appends points verbatim.
func (w *Writer) WritePoints(pts []model.Point) error {
	if len(pts) == 0 {
		return nil
	}
	buf := make([]byte, len(pts)*PointSize)
	encodePoints(w.endian, buf, pts)
	return w.write(buf, "points")
}

// WritePolygon appends a header and its points. Header.N must match.
func (w *Writer) WritePolygon(p *model.Polygon) error {
	if p.Header.N != len(p.Points) {
		return model.Errorf(model.CodeInvalidArgument, nil, "polygon %d: header n=%d but %d points", p.Header.ID, p.Header.N, len(p.Points))
	}
	if err := w.WriteHeader(&p.Header); err != nil {
		return err
	}
	return w.WritePoints(p.Points)
}

// WriteSegment appends a raw segment header and its points.
func (w *Writer) WriteSegment(s *model.Segment) error {
	if s.Header.N != len(s.Points) {
		return model.Errorf(model.CodeInvalidArgument, nil, "segment: header n=%d but %d points", s.Header.N, len(s.Points))
	}
	if err := w.WriteSegmentHeader(&s.Header); err != nil {
		return err
	}
	return w.WritePoints(s.Points)
}

// WriteLevelAt overwrites only the level field of the header starting at off.
func WriteLevelAt(w io.WriterAt, off int64, level int) error {
	buf := make([]byte, 4)
	putInt(ByteOrder, buf, level)
	return writeFullAt(w, buf, off+offLevel, "level")
}

// WriteLinksAt overwrites only the parent and ancestor fields of the header
// starting at off.
func WriteLinksAt(w io.WriterAt, off int64, parent, ancestor int) error {
	buf := make([]byte, 8)
	putInt(ByteOrder, buf[0:], parent)
	putInt(ByteOrder, buf[4:], ancestor)
	return writeFullAt(w, buf, off+offParent, "parent/ancestor")
}

// WritePointsAt overwrites len(pts) points starting at off.
func WritePointsAt(w io.WriterAt, off int64, pts []model.Point) error {
	if len(pts) == 0 {
		return nil
	}
	buf := make([]byte, len(pts)*PointSize)
	encodePoints(ByteOrder, buf, pts)
	return writeFullAt(w, buf, off, "points")
}

func writeFullAt(w io.WriterAt, buf []byte, off int64, what string) error {
	n, err := w.WriteAt(buf, off)
	if err != nil {
		return model.Errorf(model.CodeIO, err, "write %s at offset %d", what, off)
	}
	if n != len(buf) {
		return model.Errorf(model.CodeIO, io.ErrShortWrite, "write %s at offset %d: %d of %d bytes", what, off, n, len(buf))
	}
	return nil
}
