package text

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dyuri/shoredb/internal/model"
)

func TestReadRecords(t *testing.T) {
	input := `# two islands
> id=7 level=1 source=1 parent=-1 area=12.5
0.5	1.0
2.0	1.0
2.0	3.0

> id=8 foo=bar
-1.25 -2.5
`
	records, err := NewReader(strings.NewReader(input)).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	r := records[0]
	if r.Header.ID != 7 || r.Header.Level != 1 || r.Header.Source != 1 {
		t.Errorf("header = %+v, want id 7 level 1 source 1", r.Header)
	}
	if r.Header.Ancestor != model.NoParent {
		t.Errorf("Ancestor = %d, want %d", r.Header.Ancestor, model.NoParent)
	}
	if r.Line != 2 {
		t.Errorf("Line = %d, want 2", r.Line)
	}
	if len(r.Coords) != 3 || r.Coords[2] != [2]float64{2, 3} {
		t.Errorf("Coords = %v", r.Coords)
	}

	if got := records[1].Coords; len(got) != 1 || got[0] != [2]float64{-1.25, -2.5} {
		t.Errorf("second Coords = %v", got)
	}
	if records[1].Header.Parent != model.NoParent {
		t.Errorf("default Parent = %d, want %d", records[1].Header.Parent, model.NoParent)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"points before header", "1 2\n"},
		{"header without id", "> level=1\n"},
		{"bad header value", "> id=x\n"},
		{"single column", "> id=1\n5\n"},
		{"bad longitude", "> id=1\nabc 5\n"},
		{"latitude out of range", "> id=1\n5 91\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input)).Read()
			if !errors.Is(err, model.ErrInvalidArgument) {
				t.Errorf("Read error = %v, want invalid argument", err)
			}
		})
	}
}

func TestWriterRoundTrip(t *testing.T) {
	h := model.Header{ID: 3, Level: 2, Source: 0, Parent: 1, Ancestor: -1, Area: 4.25}
	p := &model.Polygon{Header: h, Points: []model.Point{
		{X: 1000000, Y: -500000},
		{X: 2500000, Y: -500000},
		{X: 2500000, Y: 1},
	}}
	p.Header.N = len(p.Points)

	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	if err := w.WritePolygon(p); err != nil {
		t.Fatalf("WritePolygon failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	want := "> id=3 n=3 level=2 source=0 parent=1 ancestor=-1 area=4.250\n" +
		"1.000000\t-0.500000\n" +
		"2.500000\t-0.500000\n" +
		"2.500000\t0.000001\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}

	records, err := NewReader(&buf).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(records) != 1 || records[0].Header.Parent != 1 || len(records[0].Coords) != 3 {
		t.Fatalf("round trip = %+v", records)
	}
	for i, c := range records[0].Coords {
		got := model.PointFromDegrees(c[0], c[1])
		if got != p.Points[i] {
			t.Errorf("point %d = %+v, want %+v", i, got, p.Points[i])
		}
	}
}

func TestWriterUnwrapsGreenwich(t *testing.T) {
	h := model.Header{ID: 1, Greenwich: model.GreenwichFlag, Datelon: model.M180}
	p := &model.Polygon{Header: h, Points: []model.Point{
		{X: model.M360 - 1000000, Y: 0},
		{X: 1000000, Y: 0},
	}}

	var buf bytes.Buffer
	w := NewWriter(&buf, false)
	if err := w.WritePolygon(p); err != nil {
		t.Fatalf("WritePolygon failed: %v", err)
	}
	w.Flush()

	want := "-1.000000\t0.000000\n1.000000\t0.000000\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteSegment(t *testing.T) {
	s := &model.Segment{
		Header: model.SegmentHeader{N: 2, Rank: 3},
		Points: []model.Point{{X: 0, Y: 0}, {X: -1500000, Y: 2000000}},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	if err := w.WriteSegment(s); err != nil {
		t.Fatalf("WriteSegment failed: %v", err)
	}
	w.Flush()

	want := "> rank=3 n=2\n0.000000\t0.000000\n-1.500000\t2.000000\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
