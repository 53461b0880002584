package binary

import (
	"encoding/binary"
	"math"

	"github.com/dyuri/shoredb/internal/model"
)

// Record sizes in bytes.
const (
	PreambleSize      = 8
	HeaderSize        = 80
	PointSize         = 8
	SegmentHeaderSize = 8
)

// Version is the format version written into every preamble.
const Version = 1

// Kind identifies what a file holds.
type Kind uint16

const (
	KindPolygon Kind = 1 // Polygon headers + points
	KindSegment Kind = 2 // Raw segment headers + points
)

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "polygon"
	case KindSegment:
		return "segment"
	default:
		return "unknown"
	}
}

var magic = [4]byte{'S', 'H', 'D', 'B'}

// Polygon header layout:
//
//	0x00 id        int32
//	0x04 n         int32
//	0x08 level     int32
//	0x0C source    int32
//	0x10 greenwich int32
//	0x14 datelon   int32 (micro-degrees)
//	0x18 west      float64
//	0x20 east      float64
//	0x28 south     float64
//	0x30 north     float64
//	0x38 area      float64
//	0x40 area_res  float64
//	0x48 parent    int32
//	0x4C ancestor  int32
const (
	offID        = 0x00
	offN         = 0x04
	offLevel     = 0x08
	offSource    = 0x0C
	offGreenwich = 0x10
	offDatelon   = 0x14
	offWest      = 0x18
	offEast      = 0x20
	offSouth     = 0x28
	offNorth     = 0x30
	offArea      = 0x38
	offAreaRes   = 0x40
	offParent    = 0x48
	offAncestor  = 0x4C
)

// ByteOrder is the byte order of every file written by this package.
var ByteOrder binary.ByteOrder = binary.LittleEndian

func putInt(order binary.ByteOrder, b []byte, v int) {
	order.PutUint32(b, uint32(int32(v)))
}

func getInt(order binary.ByteOrder, b []byte) int {
	return int(int32(order.Uint32(b)))
}

func putFloat(order binary.ByteOrder, b []byte, v float64) {
	order.PutUint64(b, math.Float64bits(v))
}

func getFloat(order binary.ByteOrder, b []byte) float64 {
	return math.Float64frombits(order.Uint64(b))
}

func encodeHeader(order binary.ByteOrder, b []byte, h *model.Header) {
	putInt(order, b[offID:], h.ID)
	putInt(order, b[offN:], h.N)
	putInt(order, b[offLevel:], h.Level)
	putInt(order, b[offSource:], h.Source)
	putInt(order, b[offGreenwich:], h.Greenwich)
	putInt(order, b[offDatelon:], h.Datelon)
	putFloat(order, b[offWest:], h.West)
	putFloat(order, b[offEast:], h.East)
	putFloat(order, b[offSouth:], h.South)
	putFloat(order, b[offNorth:], h.North)
	putFloat(order, b[offArea:], h.Area)
	putFloat(order, b[offAreaRes:], h.AreaRes)
	putInt(order, b[offParent:], h.Parent)
	putInt(order, b[offAncestor:], h.Ancestor)
}

func decodeHeader(order binary.ByteOrder, b []byte) (*model.Header, error) {
	h := &model.Header{
		ID:        getInt(order, b[offID:]),
		N:         getInt(order, b[offN:]),
		Level:     getInt(order, b[offLevel:]),
		Source:    getInt(order, b[offSource:]),
		Greenwich: getInt(order, b[offGreenwich:]),
		Datelon:   getInt(order, b[offDatelon:]),
		West:      getFloat(order, b[offWest:]),
		East:      getFloat(order, b[offEast:]),
		South:     getFloat(order, b[offSouth:]),
		North:     getFloat(order, b[offNorth:]),
		Area:      getFloat(order, b[offArea:]),
		AreaRes:   getFloat(order, b[offAreaRes:]),
		Parent:    getInt(order, b[offParent:]),
		Ancestor:  getInt(order, b[offAncestor:]),
	}

	if h.N < 0 {
		return nil, model.Errorf(model.CodeCorruptHeader, nil, "polygon %d: negative point count %d", h.ID, h.N)
	}
	if h.Level < 0 {
		return nil, model.Errorf(model.CodeCorruptHeader, nil, "polygon %d: negative level %d", h.ID, h.Level)
	}
	if math.IsNaN(h.West) || math.IsNaN(h.East) || math.IsNaN(h.South) || math.IsNaN(h.North) {
		return nil, model.Errorf(model.CodeCorruptHeader, nil, "polygon %d: NaN in bounding box", h.ID)
	}
	return h, nil
}

func encodeSegmentHeader(order binary.ByteOrder, b []byte, h *model.SegmentHeader) {
	putInt(order, b[0:], h.N)
	putInt(order, b[4:], h.Rank)
}

func decodeSegmentHeader(order binary.ByteOrder, b []byte) (*model.SegmentHeader, error) {
	h := &model.SegmentHeader{
		N:    getInt(order, b[0:]),
		Rank: getInt(order, b[4:]),
	}
	if h.N < 0 {
		return nil, model.Errorf(model.CodeCorruptHeader, nil, "segment: negative point count %d", h.N)
	}
	return h, nil
}

func encodePoints(order binary.ByteOrder, b []byte, pts []model.Point) {
	for i, p := range pts {
		order.PutUint32(b[i*PointSize:], uint32(p.X))
		order.PutUint32(b[i*PointSize+4:], uint32(p.Y))
	}
}

func decodePoints(order binary.ByteOrder, b []byte, n int) []model.Point {
	pts := make([]model.Point, n)
	for i := range pts {
		pts[i].X = int32(order.Uint32(b[i*PointSize:]))
		pts[i].Y = int32(order.Uint32(b[i*PointSize+4:]))
	}
	return pts
}

func encodePreamble(b []byte, kind Kind) {
	copy(b[0:4], magic[:])
	ByteOrder.PutUint16(b[4:], Version)
	ByteOrder.PutUint16(b[6:], uint16(kind))
}

func decodePreamble(b []byte) (Kind, error) {
	if [4]byte(b[0:4]) != magic {
		return 0, model.Errorf(model.CodeCorruptHeader, nil, "missing SHDB signature (legacy file? try migrate)")
	}
	if v := ByteOrder.Uint16(b[4:]); v != Version {
		return 0, model.Errorf(model.CodeCorruptHeader, nil, "unsupported format version %d", v)
	}
	kind := Kind(ByteOrder.Uint16(b[6:]))
	if kind != KindPolygon && kind != KindSegment {
		return 0, model.Errorf(model.CodeCorruptHeader, nil, "unknown file kind %d", kind)
	}
	return kind, nil
}
