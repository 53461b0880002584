package hierarchy

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyuri/shoredb/internal/binary"
	"github.com/dyuri/shoredb/internal/catalog"
	"github.com/dyuri/shoredb/internal/model"
)

func triangle(id, level int) *model.Polygon {
	return &model.Polygon{
		Header: model.Header{
			ID: id, N: 3, Level: level, Source: 2,
			East: 1, North: 1, Area: 6000,
			Parent: model.NoParent, Ancestor: model.NoParent,
		},
		Points: []model.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}},
	}
}

func writeDB(t *testing.T, polys ...*model.Polygon) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := binary.NewWriter(&buf, binary.KindPolygon)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	for _, p := range polys {
		if err := w.WritePolygon(p); err != nil {
			t.Fatalf("WritePolygon failed: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "db.b")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readDB(t *testing.T, path string) (*catalog.Catalog, []byte) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	c, err := catalog.Build(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return c, data
}

func pointsOf(t *testing.T, path string, id int) []model.Point {
	t.Helper()
	c, data := readDB(t, path)
	i, err := c.Find(id)
	if err != nil {
		t.Fatalf("Find(%d) failed: %v", id, err)
	}
	pts, err := c.Points(bytes.NewReader(data), i)
	if err != nil {
		t.Fatalf("Points failed: %v", err)
	}
	return pts
}

func TestSetLevelOddDifferenceReverses(t *testing.T) {
	path := writeDB(t, triangle(1, 0), triangle(3, 1), triangle(4, 0))

	var change *LevelChange
	err := Apply(path, Staged, func(e *Editor) error {
		var err error
		change, err = e.SetLevel(3, 2)
		return err
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !change.Reversed || change.OldLevel != 1 || change.NewLevel != 2 {
		t.Errorf("change = %+v", change)
	}

	got := pointsOf(t, path, 3)
	want := []model.Point{{X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("points = %v, want %v", got, want)
		}
	}

	c, _ := readDB(t, path)
	i, _ := c.Find(3)
	h := c.Entries[i].Header
	wantHeader := triangle(3, 2).Header
	if h != wantHeader {
		t.Errorf("header = %+v, want %+v", h, wantHeader)
	}
	if pts := pointsOf(t, path, 4); pts[0] != (model.Point{X: 0, Y: 0}) {
		t.Errorf("neighbouring polygon changed: %v", pts)
	}
}

func TestSetLevelWindingInvariant(t *testing.T) {
	for _, tt := range []struct{ from, to int }{{0, 1}, {1, 0}, {0, 2}, {2, 0}, {1, 4}, {3, 1}, {0, 3}} {
		path := writeDB(t, triangle(9, tt.from))
		before := pointsOf(t, path, 9)

		err := Apply(path, InPlace, func(e *Editor) error {
			_, err := e.SetLevel(9, tt.to)
			return err
		})
		if err != nil {
			t.Fatalf("%d->%d: Apply failed: %v", tt.from, tt.to, err)
		}
		after := pointsOf(t, path, 9)

		odd := (tt.to-tt.from)%2 != 0
		for i := range before {
			want := before[i]
			if odd {
				want = before[len(before)-1-i]
			}
			if after[i] != want {
				t.Errorf("%d->%d: points = %v, before = %v", tt.from, tt.to, after, before)
				break
			}
		}
	}
}

func TestSetLevelErrors(t *testing.T) {
	path := writeDB(t, triangle(3, 1))
	original, _ := os.ReadFile(path)

	tests := []struct {
		name  string
		id    int
		level int
		want  error
	}{
		{"no-op", 3, 1, model.ErrInvalidArgument},
		{"negative", 3, -1, model.ErrInvalidArgument},
		{"missing id", 77, 2, model.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Apply(path, Staged, func(e *Editor) error {
				_, err := e.SetLevel(tt.id, tt.level)
				return err
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	after, _ := os.ReadFile(path)
	if !bytes.Equal(original, after) {
		t.Errorf("failed edits modified the database")
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("staging files left behind: %d entries", len(entries))
	}
}

func TestDryRunLeavesFileUntouched(t *testing.T) {
	path := writeDB(t, triangle(3, 1))
	original, _ := os.ReadFile(path)

	var change *LevelChange
	err := Apply(path, DryRun, func(e *Editor) error {
		var err error
		change, err = e.SetLevel(3, 2)
		return err
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if change == nil || !change.Reversed {
		t.Errorf("dry run did not report the change: %+v", change)
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(original, after) {
		t.Errorf("dry run modified the database")
	}
}

func TestApplyMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.b")
	err := Apply(path, Staged, func(e *Editor) error { return nil })
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestSetLinks(t *testing.T) {
	path := writeDB(t, triangle(1, 0), triangle(2, 1))

	err := Apply(path, Staged, func(e *Editor) error {
		_, err := e.SetLinks(2, 1, 1)
		return err
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	c, _ := readDB(t, path)
	h := c.Entries[1].Header
	if h.Parent != 1 || h.Ancestor != 1 || h.Level != 1 {
		t.Errorf("header = %+v", h)
	}

	tests := []struct {
		name             string
		parent, ancestor int
		want             error
	}{
		{"unchanged", 1, 1, model.ErrInvalidArgument},
		{"self", 2, 1, model.ErrInvalidArgument},
		{"dangling", 99, 1, model.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Apply(path, Staged, func(e *Editor) error {
				_, err := e.SetLinks(2, tt.parent, tt.ancestor)
				return err
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Staged, DryRun, InPlace} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("sometimes"); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("ParseMode error = %v, want invalid argument", err)
	}
}
