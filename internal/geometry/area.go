// Package geometry computes areas, orientations, centroids and distances on
// unwrapped polygon points.
package geometry

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/dyuri/shoredb/internal/model"
)

// EarthRadiusKm is the mean Earth radius used for areas and projections.
const EarthRadiusKm = 6371.0088

// KmPerDegree is the length of one degree of arc on the mean sphere.
const KmPerDegree = EarthRadiusKm * math.Pi / 180

// Orientation signs returned by SignedArea.
const (
	Clockwise        = -1
	Degenerate       = 0
	CounterClockwise = 1
)

// SignedArea returns the spherical area of the ring in km² and its winding
// sign in the (lon, lat) plane. Points must already be unwrapped. A repeated
// closing point is ignored. Rings with fewer than three distinct vertices
// have zero area and Degenerate sign.
func SignedArea(points []model.Point) (float64, int) {
	loop := loopFromPoints(points)
	if loop == nil {
		return 0, Degenerate
	}

	// s2 measures the region to the left of the loop. A clockwise ring
	// therefore reports the complement; invert it to measure the small side
	// without cancellation.
	sign := CounterClockwise
	area := loop.Area()
	if area > 2*math.Pi {
		loop.Invert()
		area = loop.Area()
		sign = Clockwise
	}
	if area == 0 {
		return 0, Degenerate
	}
	return area * EarthRadiusKm * EarthRadiusKm, sign
}

// Orientation returns only the winding sign of SignedArea.
func Orientation(points []model.Point) int {
	_, sign := SignedArea(points)
	return sign
}

// RequiredOrientation returns the winding a polygon at level must have.
// Even levels (land, islands) run counter-clockwise, odd levels (lakes,
// ponds) clockwise.
func RequiredOrientation(level int) int {
	if level%2 == 0 {
		return CounterClockwise
	}
	return Clockwise
}

func loopFromPoints(points []model.Point) *s2.Loop {
	distinct := make([]model.Point, 0, len(points))
	for i, p := range points {
		if i > 0 && p == points[i-1] {
			continue
		}
		distinct = append(distinct, p)
	}
	for len(distinct) > 1 && distinct[0] == distinct[len(distinct)-1] {
		distinct = distinct[:len(distinct)-1]
	}
	if len(distinct) < 3 || planarArea2(distinct) == 0 {
		return nil
	}

	vertices := make([]s2.Point, len(distinct))
	for i, p := range distinct {
		vertices[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon()))
	}
	return s2.LoopFromPoints(vertices)
}

// planarArea2 is twice the shoelace area in micro-degree units, relative to
// the first vertex. Zero means every vertex is collinear.
func planarArea2(points []model.Point) float64 {
	x0, y0 := float64(points[0].X), float64(points[0].Y)
	var sum float64
	for i := 1; i+1 < len(points); i++ {
		ax, ay := float64(points[i].X)-x0, float64(points[i].Y)-y0
		bx, by := float64(points[i+1].X)-x0, float64(points[i+1].Y)-y0
		sum += ax*by - bx*ay
	}
	return sum
}

// Centroid returns the arithmetic mean of the points in degrees. It is a
// proximity heuristic, not an area centroid.
func Centroid(points []model.Point) (lon, lat float64) {
	if len(points) == 0 {
		return 0, 0
	}
	var sx, sy float64
	for _, p := range points {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	n := float64(len(points))
	return sx / n / model.Mill, sy / n / model.Mill
}

// AreaAgrees reports whether a recomputed area matches a stored one within
// the relative tolerance rel.
func AreaAgrees(stored, computed, rel float64) bool {
	stored, computed = math.Abs(stored), math.Abs(computed)
	largest := math.Max(stored, computed)
	if largest == 0 {
		return true
	}
	return math.Abs(stored-computed) <= rel*largest
}
