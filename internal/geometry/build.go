package geometry

import (
	"math"
	"sort"

	"github.com/dyuri/shoredb/internal/model"
)

// Refresh recomputes a polygon's derived header fields (n, bounding box,
// area) from its stored points and records the resolution the area was
// computed at.
func Refresh(p *model.Polygon, areaRes float64) {
	p.Header.N = len(p.Points)
	unwrapped := p.Header.Unwrap(p.Points)
	if len(unwrapped) > 0 {
		SetBound(&p.Header, Bound(unwrapped))
	}
	p.Header.Area, _ = SignedArea(unwrapped)
	p.Header.AreaRes = areaRes
}

// BuildPolygon turns a ring of (lon, lat) degrees in any longitude frame into
// a stored polygon. Longitudes are normalized to [0, 360); if the ring spans
// the 0/360 seam, the greenwich flag is set and Datelon is placed in the
// widest longitude gap so that unwrapping restores a continuous ring.
func BuildPolygon(h model.Header, lonlat [][2]float64) *model.Polygon {
	stored := make([]model.Point, len(lonlat))
	for i, c := range lonlat {
		stored[i] = model.PointFromDegrees(normalizeLon(c[0]), c[1])
		if stored[i].X >= model.M360 {
			stored[i].X -= model.M360
		}
	}

	h.Greenwich &^= model.GreenwichFlag
	h.Datelon = model.M180
	if datelon, ok := seamDatelon(stored); ok {
		h.Greenwich |= model.GreenwichFlag
		h.Datelon = datelon
	}

	p := &model.Polygon{Header: h, Points: stored}
	Refresh(p, 0)
	return p
}

func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}

// seamDatelon finds the widest gap between consecutive distinct longitudes.
// When that gap is the one across 0/360 no unwrapping is needed; otherwise
// the midpoint of the gap becomes the unwrap threshold.
func seamDatelon(points []model.Point) (int, bool) {
	if len(points) < 2 {
		return 0, false
	}
	xs := make([]int, len(points))
	for i, p := range points {
		xs[i] = int(p.X)
	}
	sort.Ints(xs)

	seamGap := xs[0] + model.M360 - xs[len(xs)-1]
	widest, at := 0, -1
	for i := 1; i < len(xs); i++ {
		if gap := xs[i] - xs[i-1]; gap > widest {
			widest, at = gap, i
		}
	}
	if at < 0 || seamGap >= widest {
		return 0, false
	}
	return xs[at-1] + widest/2, true
}
