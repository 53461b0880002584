package model

import "math"

// Coordinates are stored as fixed-point micro-degrees.
const (
	Mill = 1000000
	M90  = 90 * Mill
	M180 = 180 * Mill
	M360 = 360 * Mill
)

// NoParent is the Parent/Ancestor value of a top-level polygon.
const NoParent = -1

// GreenwichFlag is bit 0 of Header.Greenwich. When set, stored longitudes
// greater than Header.Datelon must be shifted down by 360 degrees.
const GreenwichFlag = 1

// Point is one vertex in micro-degrees.
type Point struct {
	X int32 // longitude
	Y int32 // latitude
}

// PointFromDegrees rounds a geographic position to the nearest micro-degree.
func PointFromDegrees(lon, lat float64) Point {
	return Point{
		X: int32(math.Round(lon * Mill)),
		Y: int32(math.Round(lat * Mill)),
	}
}

// Lon returns the longitude in degrees.
func (p Point) Lon() float64 { return float64(p.X) / Mill }

// Lat returns the latitude in degrees.
func (p Point) Lat() float64 { return float64(p.Y) / Mill }

// Header describes one polygon in a database file.
type Header struct {
	ID        int     // Unique, stable identifier
	N         int     // Number of points following the header
	Level     int     // 0 land, 1 lake, 2 island in lake, 3 pond in island...
	Source    int     // Provenance code of the digitized data
	Greenwich int     // Bit 0: longitudes above Datelon need unwrapping
	Datelon   int     // Unwrap threshold in micro-degrees
	West      float64 // Bounding box in degrees, unwrapped frame
	East      float64
	South     float64
	North     float64
	Area      float64 // km², magnitude
	AreaRes   float64 // Simplification tolerance (km) the area was computed at; 0 = full resolution
	Parent    int     // Enclosing polygon id or NoParent
	Ancestor  int     // Top-level polygon id or NoParent
}

// CrossesGreenwich reports whether the header's points need unwrapping.
func (h *Header) CrossesGreenwich() bool {
	return h.Greenwich&GreenwichFlag != 0
}

// IsTopLevel reports whether the polygon has no enclosing polygon.
func (h *Header) IsTopLevel() bool {
	return h.Parent == NoParent
}

// Contains reports whether a position in degrees lies inside the bounding box.
func (h *Header) Contains(lon, lat float64) bool {
	return lon >= h.West && lon <= h.East && lat >= h.South && lat <= h.North
}

// SegmentHeader describes one unclosed raw segment.
type SegmentHeader struct {
	N    int
	Rank int // Same hierarchical role as Header.Level
}

// Polygon is a header with its stored points.
type Polygon struct {
	Header Header
	Points []Point
}

// Segment is a raw segment header with its points.
type Segment struct {
	Header SegmentHeader
	Points []Point
}

// Reverse reverses points in place.
func Reverse(points []Point) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}
