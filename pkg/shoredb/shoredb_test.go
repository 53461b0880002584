package shoredb

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyuri/shoredb/internal/binary"
	"github.com/dyuri/shoredb/internal/geometry"
)

const twoRings = `> id=1 level=0
0 0
0 1
1 1
1 0
> id=2 level=1 parent=1
0.2 0.2
0.8 0.2
0.8 0.8
0.2 0.8
`

// importDB writes text as a polygon file in a temp dir and returns its path.
func importDB(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.b")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := ImportText(strings.NewReader(text), f); err != nil {
		t.Fatalf("ImportText failed: %v", err)
	}
	return path
}

// writeDB writes polygons verbatim as a polygon file.
func writeDB(t *testing.T, polys ...*Polygon) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.b")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w, err := binary.NewWriter(f, binary.KindPolygon)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range polys {
		if err := w.WritePolygon(p); err != nil {
			t.Fatalf("WritePolygon failed: %v", err)
		}
	}
	return path
}

func TestImportAndOpen(t *testing.T) {
	db, err := Open(importDB(t, twoRings))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Len() != 2 {
		t.Fatalf("Len = %d, want 2", db.Len())
	}

	for _, id := range []int{1, 2} {
		p, err := db.Polygon(id)
		if err != nil {
			t.Fatalf("Polygon(%d) failed: %v", id, err)
		}
		got := geometry.Orientation(p.Header.Unwrap(p.Points))
		if want := geometry.RequiredOrientation(p.Header.Level); got != want {
			t.Errorf("polygon %d orientation = %d, want %d", id, got, want)
		}
		if p.Header.Area <= 0 {
			t.Errorf("polygon %d area = %f, want > 0", id, p.Header.Area)
		}
	}

	p, _ := db.Polygon(2)
	if p.Header.Parent != 1 || p.Header.West != 0.2 || p.Header.North != 0.8 {
		t.Errorf("header = %+v", p.Header)
	}

	if _, err := db.Polygon(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Polygon(99) error = %v, want not found", err)
	}
	if _, err := db.PolygonAt(2); !errors.Is(err, ErrNotFound) {
		t.Errorf("PolygonAt(2) error = %v, want not found", err)
	}

	var ids []int
	if err := db.Each(func(p *Polygon) error {
		ids = append(ids, p.Header.ID)
		return nil
	}); err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("Each ids = %v, want [1 2]", ids)
	}
}

func TestImportRejectsDuplicateIDs(t *testing.T) {
	var buf bytes.Buffer
	_, err := ImportText(strings.NewReader("> id=1\n0 0\n> id=1\n1 1\n"), &buf)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ImportText error = %v, want invalid argument", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.b"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Open error = %v, want not found", err)
	}
	if CodeOf(err) != "not_found" {
		t.Errorf("CodeOf = %q, want not_found", CodeOf(err))
	}
}

func TestShrinkCollinearLine(t *testing.T) {
	in, err := os.Open(importDB(t, "> id=5\n0 0\n1 0\n2 0\n3 0\n4 0\n> id=6\n10 10\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	tol, err := ParseTolerance("1")
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	var results []ShrinkResult
	stats, err := Shrink(in, &out, tol, func(r ShrinkResult) {
		results = append(results, r)
	})
	if err != nil {
		t.Fatalf("Shrink failed: %v", err)
	}

	if stats.Polygons != 2 || stats.Written != 1 || stats.Lost != 1 {
		t.Errorf("stats = %+v, want 2 polygons, 1 written, 1 lost", stats)
	}
	if stats.PointsIn != 6 || stats.PointsOut != 2 {
		t.Errorf("points = %d -> %d, want 6 -> 2", stats.PointsIn, stats.PointsOut)
	}
	if len(results) != 2 || results[0].After != 2 || !results[1].Lost {
		t.Errorf("results = %+v", results)
	}
	if r := results[0].Reduction(); r != 60 {
		t.Errorf("Reduction = %v, want 60", r)
	}

	var got []*Polygon
	if err := ReadPolygons(&out, func(p *Polygon) error {
		got = append(got, p)
		return nil
	}); err != nil {
		t.Fatalf("ReadPolygons failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("output has %d polygons, want 1", len(got))
	}
	p := got[0]
	if p.Header.N != 2 || p.Header.ID != 5 {
		t.Errorf("header = %+v, want id 5 with 2 points", p.Header)
	}
	if p.Points[0].X != 0 || p.Points[1].X != 4000000 {
		t.Errorf("points = %+v, want start and end", p.Points)
	}
	if p.Header.AreaRes != 1 {
		t.Errorf("AreaRes = %v, want 1", p.Header.AreaRes)
	}
}

func TestShrinkNoOpKeepsEverything(t *testing.T) {
	in, err := os.Open(importDB(t, twoRings))
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	var out bytes.Buffer
	stats, err := Shrink(in, &out, NoOp, nil)
	if err != nil {
		t.Fatalf("Shrink failed: %v", err)
	}
	if stats.PointsIn != stats.PointsOut || stats.Reduction() != 0 {
		t.Errorf("stats = %+v, want no reduction", stats)
	}

	orig, _ := os.ReadFile(in.Name())
	if !bytes.Equal(out.Bytes(), orig) {
		t.Error("no-op shrink changed the file")
	}
}

func TestValidateClean(t *testing.T) {
	db, err := Open(importDB(t, twoRings))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	r, err := Validate(db, ValidateOptions{AreaTolerance: 0.02})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !r.OK(true) {
		t.Errorf("report = %+v, want clean", r)
	}
}

func TestValidateFindings(t *testing.T) {
	square := [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	badArea := BuildPolygon(Header{ID: 1, Parent: -1, Ancestor: -1}, square)
	badArea.Header.Area *= 2

	badBox := BuildPolygon(Header{ID: 2, Parent: 7, Ancestor: -1}, square)
	badBox.Header.East = 0.5

	badWinding := BuildPolygon(Header{ID: 3, Level: 1, Parent: -1, Ancestor: -1}, square)
	badWinding.Header.Level = 0

	dup := BuildPolygon(Header{ID: 3, Level: 1, Parent: -1, Ancestor: -1}, square)

	db, err := Open(writeDB(t, badArea, badBox, badWinding, dup))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	r, err := Validate(db, ValidateOptions{AreaTolerance: 0.02})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	errs := map[int]int{}
	for _, e := range r.Errors {
		errs[e.ID]++
	}
	warns := map[int]int{}
	for _, w := range r.Warnings {
		warns[w.ID]++
	}

	if warns[1] != 1 {
		t.Errorf("area warnings for 1 = %d, want 1", warns[1])
	}
	if errs[2] != 1 || warns[2] != 1 {
		t.Errorf("polygon 2: %d errors, %d warnings, want bbox error and dangling parent warning", errs[2], warns[2])
	}
	if errs[3] != 2 {
		t.Errorf("polygon 3 errors = %d, want duplicate id and winding", errs[3])
	}

	if r.OK(false) {
		t.Error("report with errors passed")
	}
	if err := r.Err(false); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("Err = %v, want invariant violation", err)
	}
}

func TestReportStrict(t *testing.T) {
	r := &Report{}
	r.add(SeverityWarning, "invariant_violation", 1, "area off")
	if !r.OK(false) {
		t.Error("warnings failed without strict")
	}
	if r.OK(true) || r.Err(true) == nil {
		t.Error("warnings passed in strict mode")
	}
}

func TestValidateInvertedBox(t *testing.T) {
	square := [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	inverted := BuildPolygon(Header{ID: 4, Parent: -1, Ancestor: -1}, square)
	inverted.Header.West, inverted.Header.East = inverted.Header.East, inverted.Header.West

	db, err := Open(writeDB(t, inverted))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	r, err := Validate(db, ValidateOptions{AreaTolerance: 0.02})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(r.Errors) != 1 || !strings.Contains(r.Errors[0].Message, "inverted bounding box") {
		t.Errorf("Errors = %+v, want one inverted box error", r.Errors)
	}
}
