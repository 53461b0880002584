// Package simplify reduces polygon point counts with the Douglas-Peucker
// algorithm under a tolerance in kilometres.
package simplify

import (
	"math"
	"strconv"
	"strings"

	"github.com/dyuri/shoredb/internal/geometry"
	"github.com/dyuri/shoredb/internal/model"
)

// Tolerance is a Douglas-Peucker distance threshold. The zero value is
// invalid; use NoOp to keep every point.
type Tolerance struct {
	km   float64
	noop bool
}

// NoOp keeps every point.
var NoOp = Tolerance{noop: true}

// Kilometers returns a tolerance of km kilometres. km must be positive and
// finite.
func Kilometers(km float64) (Tolerance, error) {
	if !(km > 0) || math.IsInf(km, 1) {
		return Tolerance{}, model.Errorf(model.CodeInvalidArgument, nil, "tolerance must be a positive number of km, got %v", km)
	}
	return Tolerance{km: km}, nil
}

// Parse accepts "none" for NoOp or a positive number of kilometres.
func Parse(s string) (Tolerance, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "none") {
		return NoOp, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "km"), 64)
	if err != nil {
		return Tolerance{}, model.Errorf(model.CodeInvalidArgument, err, "parse tolerance %q", s)
	}
	return Kilometers(v)
}

// Km returns the tolerance in kilometres, 0 for NoOp.
func (t Tolerance) Km() float64 {
	return t.km
}

// IsNoOp reports whether t keeps every point.
func (t Tolerance) IsNoOp() bool {
	return t.noop
}

func (t Tolerance) String() string {
	if t.noop {
		return "none"
	}
	return strconv.FormatFloat(t.km, 'g', -1, 64) + "km"
}

func (t Tolerance) valid() bool {
	return t.noop || t.km > 0
}

// Simplify returns the indices of the points kept, always including 0 and
// len(points)-1. Points must be unwrapped into one continuous frame.
func Simplify(points []model.Point, t Tolerance) ([]int, error) {
	if !t.valid() {
		return nil, model.Errorf(model.CodeInvalidArgument, nil, "tolerance must be positive or none")
	}
	n := len(points)
	if t.noop || n <= 2 {
		keep := make([]int, n)
		for i := range keep {
			keep[i] = i
		}
		return keep, nil
	}

	xy := project(points)
	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true
	douglasPeucker(xy, 0, n-1, t.km, keep)

	out := make([]int, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, i)
		}
	}
	return out, nil
}

type vec struct{ x, y float64 }

// project maps points to a local equirectangular plane in km, scaled at the
// mean latitude of the points.
func project(points []model.Point) []vec {
	var sumLat float64
	for _, p := range points {
		sumLat += p.Lat()
	}
	scale := math.Cos(sumLat / float64(len(points)) * math.Pi / 180)

	xy := make([]vec, len(points))
	for i, p := range points {
		xy[i] = vec{
			x: p.Lon() * scale * geometry.KmPerDegree,
			y: p.Lat() * geometry.KmPerDegree,
		}
	}
	return xy
}

type span struct{ lo, hi int }

// douglasPeucker marks kept points in [lo, hi]. It uses an explicit stack;
// the order ranges are visited in does not change the result.
func douglasPeucker(xy []vec, lo, hi int, tol float64, keep []bool) {
	stack := []span{{lo, hi}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo < 2 {
			continue
		}

		dmax, index := -1.0, -1
		for i := s.lo + 1; i < s.hi; i++ {
			if d := perpendicularDistance(xy[i], xy[s.lo], xy[s.hi]); d > dmax {
				dmax, index = d, i
			}
		}
		if dmax > tol {
			keep[index] = true
			stack = append(stack, span{s.lo, index}, span{index, s.hi})
		}
	}
}

// perpendicularDistance is the distance from p to the line through a and b,
// or to a when a and b coincide.
func perpendicularDistance(p, a, b vec) float64 {
	dx, dy := b.x-a.x, b.y-a.y
	mag := math.Hypot(dx, dy)
	if mag == 0 {
		return math.Hypot(p.x-a.x, p.y-a.y)
	}
	return math.Abs(dy*(p.x-a.x)-dx*(p.y-a.y)) / mag
}

// Polygon simplifies p. It returns the reduced polygon with n, bounding box,
// area and area resolution refreshed, or nil when at most one point would
// remain. Kept points keep their stored representation, so the greenwich
// and datelon contract of the header is preserved.
func Polygon(p *model.Polygon, t Tolerance) (*model.Polygon, error) {
	keep, err := Simplify(p.Header.Unwrap(p.Points), t)
	if err != nil {
		return nil, err
	}
	if len(keep) <= 1 {
		return nil, nil
	}

	out := &model.Polygon{Header: p.Header, Points: make([]model.Point, len(keep))}
	for i, k := range keep {
		out.Points[i] = p.Points[k]
	}
	if t.IsNoOp() {
		out.Header.N = len(out.Points)
		return out, nil
	}
	geometry.Refresh(out, t.Km())
	return out, nil
}
