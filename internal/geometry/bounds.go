package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/dyuri/shoredb/internal/model"
)

// Ring converts unwrapped points to an orb ring in degrees.
func Ring(points []model.Point) orb.Ring {
	ring := make(orb.Ring, len(points))
	for i, p := range points {
		ring[i] = orb.Point{p.Lon(), p.Lat()}
	}
	return ring
}

// Bound returns the bounding box of unwrapped points.
func Bound(points []model.Point) orb.Bound {
	return Ring(points).Bound()
}

// HeaderBound returns the stored bounding box of a header.
func HeaderBound(h *model.Header) orb.Bound {
	return orb.Bound{
		Min: orb.Point{h.West, h.South},
		Max: orb.Point{h.East, h.North},
	}
}

// SetBound stores b as the header's bounding box.
func SetBound(h *model.Header, b orb.Bound) {
	h.West, h.South = b.Min[0], b.Min[1]
	h.East, h.North = b.Max[0], b.Max[1]
}

// BBoxOverlap reports whether two headers' bounding boxes intersect.
// Touching edges count as overlap.
func BBoxOverlap(h1, h2 *model.Header) bool {
	return HeaderBound(h1).Intersects(HeaderBound(h2))
}

// BBoxContains reports whether every unwrapped point lies inside the
// header's bounding box.
func BBoxContains(h *model.Header, points []model.Point) bool {
	b := HeaderBound(h)
	for _, p := range points {
		if !b.Contains(orb.Point{p.Lon(), p.Lat()}) {
			return false
		}
	}
	return true
}

// GreatCircleDistance returns the haversine distance in meters between two
// positions given in degrees.
func GreatCircleDistance(lon1, lat1, lon2, lat2 float64) float64 {
	return geo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}
