package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dyuri/shoredb/internal/model"
)

// Reader decodes records sequentially from a database stream
type Reader struct {
	r      io.Reader
	endian binary.ByteOrder
	kind   Kind
	offset int64 // Bytes consumed so far
	hbuf   []byte
}

// NewReader reads and checks the file preamble.
func NewReader(r io.Reader) (*Reader, error) {
	buf := make([]byte, PreambleSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, model.Errorf(model.CodeCorruptHeader, err, "read preamble")
		}
		return nil, model.Errorf(model.CodeIO, err, "read preamble")
	}
	kind, err := decodePreamble(buf)
	if err != nil {
		return nil, err
	}
	return &Reader{
		r:      r,
		endian: ByteOrder,
		kind:   kind,
		offset: PreambleSize,
		hbuf:   make([]byte, HeaderSize),
	}, nil
}

// NewLegacyReader reads a file in the legacy layout: no preamble and the
// given byte order. Only migration uses it.
func NewLegacyReader(r io.Reader, order binary.ByteOrder, kind Kind) *Reader {
	return &Reader{
		r:      r,
		endian: order,
		kind:   kind,
		hbuf:   make([]byte, HeaderSize),
	}
}

// Kind returns the kind of records the file holds.
func (r *Reader) Kind() Kind {
	return r.kind
}

// Offset returns the number of bytes consumed, i.e. the file position of the
// next record.
func (r *Reader) Offset() int64 {
	return r.offset
}

// ReadHeader reads one polygon header. It returns io.EOF, unwrapped, at a
// clean end of file and a CorruptHeader error on a short read.
func (r *Reader) ReadHeader() (*model.Header, error) {
	if r.kind != KindPolygon {
		return nil, model.Errorf(model.CodeInvalidArgument, nil, "read polygon header from %s file", r.kind)
	}
	if err := r.fill(r.hbuf[:HeaderSize]); err != nil {
		return nil, err
	}
	return decodeHeader(r.endian, r.hbuf)
}

// ReadSegmentHeader reads one raw segment header, with the same end of file
// rules as ReadHeader.
func (r *Reader) ReadSegmentHeader() (*model.SegmentHeader, error) {
	if r.kind != KindSegment {
		return nil, model.Errorf(model.CodeInvalidArgument, nil, "read segment header from %s file", r.kind)
	}
	if err := r.fill(r.hbuf[:SegmentHeaderSize]); err != nil {
		return nil, err
	}
	return decodeSegmentHeader(r.endian, r.hbuf)
}

func (r *Reader) fill(buf []byte) error {
	n, err := io.ReadFull(r.r, buf)
	r.offset += int64(n)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return model.Errorf(model.CodeCorruptHeader, err, "short header at offset %d (%d of %d bytes)", r.offset-int64(n), n, len(buf))
	default:
		return model.Errorf(model.CodeIO, err, "read header")
	}
}

// pointChunk bounds the points decoded per read, so a corrupt count cannot
// allocate more than the stream actually holds plus one chunk.
const pointChunk = 64 * 1024

// ReadPoints reads exactly n points. Any short read is a TruncatedPointArray
// error, including a clean end of file.
func (r *Reader) ReadPoints(n int) ([]model.Point, error) {
	if n == 0 {
		return []model.Point{}, nil
	}
	pts := make([]model.Point, 0, min(n, pointChunk))
	buf := make([]byte, min(n, pointChunk)*PointSize)
	for len(pts) < n {
		k := min(n-len(pts), pointChunk)
		got, err := io.ReadFull(r.r, buf[:k*PointSize])
		r.offset += int64(got)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, model.Errorf(model.CodeTruncatedPointArray, err, "read %d points: got %d bytes of %d",
					n, len(pts)*PointSize+got, int64(n)*PointSize)
			}
			return nil, model.Errorf(model.CodeIO, err, "read %d points", n)
		}
		pts = append(pts, decodePoints(r.endian, buf, k)...)
	}
	return pts, nil
}

// ReadPolygon reads a header and its points.
func (r *Reader) ReadPolygon() (*model.Polygon, error) {
	h, err := r.ReadHeader()
	if err != nil {
		return nil, err
	}
	pts, err := r.ReadPoints(h.N)
	if err != nil {
		return nil, fmt.Errorf("polygon %d: %w", h.ID, err)
	}
	return &model.Polygon{Header: *h, Points: pts}, nil
}

// ReadSegment reads a raw segment header and its points.
func (r *Reader) ReadSegment() (*model.Segment, error) {
	h, err := r.ReadSegmentHeader()
	if err != nil {
		return nil, err
	}
	pts, err := r.ReadPoints(h.N)
	if err != nil {
		return nil, fmt.Errorf("segment rank %d: %w", h.Rank, err)
	}
	return &model.Segment{Header: *h, Points: pts}, nil
}

// ReadPreamble checks the preamble of a random access file.
func ReadPreamble(r io.ReaderAt) (Kind, error) {
	buf := make([]byte, PreambleSize)
	if err := readFullAt(r, buf, 0); err != nil {
		return 0, model.Errorf(model.CodeCorruptHeader, err, "read preamble")
	}
	return decodePreamble(buf)
}

// ReadHeaderAt decodes the polygon header starting at off.
func ReadHeaderAt(r io.ReaderAt, off int64) (*model.Header, error) {
	buf := make([]byte, HeaderSize)
	if err := readFullAt(r, buf, off); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, model.Errorf(model.CodeCorruptHeader, err, "read header at offset %d", off)
		}
		return nil, model.Errorf(model.CodeIO, err, "read header at offset %d", off)
	}
	return decodeHeader(ByteOrder, buf)
}

// ReadPointsAt decodes n points starting at off.
func ReadPointsAt(r io.ReaderAt, off int64, n int) ([]model.Point, error) {
	if n == 0 {
		return []model.Point{}, nil
	}
	buf := make([]byte, n*PointSize)
	if err := readFullAt(r, buf, off); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, model.Errorf(model.CodeTruncatedPointArray, err, "read %d points at offset %d", n, off)
		}
		return nil, model.Errorf(model.CodeIO, err, "read %d points at offset %d", n, off)
	}
	return decodePoints(ByteOrder, buf, n), nil
}

// readFullAt treats a full read that also reports io.EOF as success.
func readFullAt(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		if n == 0 {
			return io.EOF
		}
		return io.ErrUnexpectedEOF
	}
	return err
}
