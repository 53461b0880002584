package geometry

import (
	"math"
	"testing"

	"github.com/dyuri/shoredb/internal/model"
)

func square() []model.Point {
	return []model.Point{
		{X: 0, Y: 0},
		{X: 0, Y: 1000000},
		{X: 1000000, Y: 1000000},
		{X: 1000000, Y: 0},
	}
}

func TestSignedAreaUnitSquare(t *testing.T) {
	area, sign := SignedArea(square())

	// One degree squared at the equator is about 111.2 km x 111.2 km.
	if area < 12000 || area > 12700 {
		t.Errorf("area = %f, want about 12364", area)
	}
	if sign != Clockwise {
		t.Errorf("sign = %d, want Clockwise", sign)
	}
}

func TestSignedAreaReversalFlipsSign(t *testing.T) {
	pts := []model.Point{
		{X: 10000000, Y: 40000000},
		{X: 12500000, Y: 40200000},
		{X: 13000000, Y: 42000000},
		{X: 11000000, Y: 43500000},
		{X: 9500000, Y: 41000000},
	}
	a1, s1 := SignedArea(pts)

	rev := append([]model.Point(nil), pts...)
	model.Reverse(rev)
	a2, s2 := SignedArea(rev)

	if s1 != -s2 || s1 == Degenerate {
		t.Errorf("signs = %d, %d, want opposite and non-zero", s1, s2)
	}
	if math.Abs(a1-a2) > 1e-6*a1 {
		t.Errorf("areas = %f, %f, want equal", a1, a2)
	}
}

func TestSignedAreaIgnoresClosingPoint(t *testing.T) {
	open := square()
	closed := append(square(), open[0])

	a1, _ := SignedArea(open)
	a2, _ := SignedArea(closed)
	if math.Abs(a1-a2) > 1e-9 {
		t.Errorf("closed ring area %f != open ring area %f", a2, a1)
	}
}

func TestSignedAreaDegenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []model.Point
	}{
		{"empty", nil},
		{"one point", []model.Point{{X: 1, Y: 1}}},
		{"two distinct", []model.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 1}}},
		{"collinear", []model.Point{{X: 0, Y: 0}, {X: 1000000, Y: 0}, {X: 2000000, Y: 0}, {X: 4000000, Y: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, sign := SignedArea(tt.pts)
			if area != 0 || sign != Degenerate {
				t.Errorf("SignedArea = (%f, %d), want (0, Degenerate)", area, sign)
			}
		})
	}
}

func TestRequiredOrientation(t *testing.T) {
	if RequiredOrientation(0) != CounterClockwise || RequiredOrientation(2) != CounterClockwise {
		t.Errorf("even levels should be counter-clockwise")
	}
	if RequiredOrientation(1) != Clockwise || RequiredOrientation(3) != Clockwise {
		t.Errorf("odd levels should be clockwise")
	}
}

func TestCentroid(t *testing.T) {
	lon, lat := Centroid(square())
	if lon != 0.5 || lat != 0.5 {
		t.Errorf("Centroid = (%f, %f), want (0.5, 0.5)", lon, lat)
	}
}

func TestBBoxOverlap(t *testing.T) {
	a := &model.Header{West: 0, East: 2, South: 0, North: 2}
	tests := []struct {
		name string
		b    *model.Header
		want bool
	}{
		{"inside", &model.Header{West: 0.5, East: 1, South: 0.5, North: 1}, true},
		{"crossing", &model.Header{West: 1, East: 3, South: 1, North: 3}, true},
		{"touching", &model.Header{West: 2, East: 3, South: 0, North: 1}, true},
		{"east of", &model.Header{West: 2.1, East: 3, South: 0, North: 1}, false},
		{"north of", &model.Header{West: 0, East: 1, South: 3, North: 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BBoxOverlap(a, tt.b); got != tt.want {
				t.Errorf("BBoxOverlap = %v, want %v", got, tt.want)
			}
			if got := BBoxOverlap(tt.b, a); got != tt.want {
				t.Errorf("BBoxOverlap reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGreatCircleDistance(t *testing.T) {
	if d := GreatCircleDistance(3, 4, 3, 4); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
	d := GreatCircleDistance(0, 0, 0, 1)
	if d < 110000 || d > 112000 {
		t.Errorf("one degree of latitude = %f m, want about 111 km", d)
	}
	if GreatCircleDistance(10, 20, 30, 40) != GreatCircleDistance(30, 40, 10, 20) {
		t.Errorf("distance is not symmetric")
	}
}

func TestBuildPolygonAcrossSeam(t *testing.T) {
	h := model.Header{ID: 3, Level: 1, Parent: model.NoParent, Ancestor: model.NoParent}
	ring := [][2]float64{{-1, 50}, {1, 50}, {1, 51}, {-1, 51}}

	p := BuildPolygon(h, ring)
	if !p.Header.CrossesGreenwich() {
		t.Fatalf("greenwich flag not set")
	}
	if p.Points[0].X != 359*model.Mill {
		t.Errorf("stored x = %d, want %d", p.Points[0].X, 359*model.Mill)
	}
	if p.Header.West != -1 || p.Header.East != 1 {
		t.Errorf("bbox west/east = %f/%f, want -1/1", p.Header.West, p.Header.East)
	}
	if p.Header.N != 4 || p.Header.Area <= 0 {
		t.Errorf("n = %d area = %f", p.Header.N, p.Header.Area)
	}
	if !BBoxContains(&p.Header, p.Header.Unwrap(p.Points)) {
		t.Errorf("bbox does not contain unwrapped points")
	}
}

func TestBuildPolygonNoSeam(t *testing.T) {
	ring := [][2]float64{{10, 0}, {11, 0}, {11, 1}}
	p := BuildPolygon(model.Header{ID: 1}, ring)
	if p.Header.CrossesGreenwich() {
		t.Errorf("greenwich flag set for a ring away from the seam")
	}
	if p.Header.West != 10 || p.Header.East != 11 {
		t.Errorf("bbox = %f..%f, want 10..11", p.Header.West, p.Header.East)
	}
}

func TestAreaAgrees(t *testing.T) {
	if !AreaAgrees(100, 101, 0.02) {
		t.Errorf("1%% difference should agree at 2%%")
	}
	if AreaAgrees(100, 110, 0.02) {
		t.Errorf("10%% difference should not agree at 2%%")
	}
	if !AreaAgrees(0, 0, 0) {
		t.Errorf("zero areas should agree")
	}
}
