// Package hierarchy edits the level and containment links of polygons in a
// database file.
package hierarchy

import (
	"fmt"
	"io"

	"github.com/dyuri/shoredb/internal/binary"
	"github.com/dyuri/shoredb/internal/catalog"
	"github.com/dyuri/shoredb/internal/model"
)

// File is random read/write access to a database file.
type File interface {
	io.ReaderAt
	io.WriterAt
}

// LevelChange describes an applied level edit.
type LevelChange struct {
	ID       int
	OldLevel int
	NewLevel int
	Reversed bool // Point order was reversed to keep winding consistent
	Points   int
}

// LinkChange describes an applied parent/ancestor edit.
type LinkChange struct {
	ID          int
	OldParent   int
	OldAncestor int
	NewParent   int
	NewAncestor int
}

// Editor mutates polygons of one file in place. The catalog must describe
// the file and is kept current with each edit.
type Editor struct {
	f   File
	cat *catalog.Catalog
}

// NewEditor returns an editor over f.
func NewEditor(f File, cat *catalog.Catalog) *Editor {
	return &Editor{f: f, cat: cat}
}

// SetLevel rewrites the level of polygon id. Only the level field of the
// header changes. When the level changes by an odd amount the stored points
// are written back in reverse order. Between the two writes the file is
// consistent but wound wrong for the new level.
func (e *Editor) SetLevel(id, level int) (*LevelChange, error) {
	i, err := e.cat.Find(id)
	if err != nil {
		return nil, err
	}
	entry := &e.cat.Entries[i]
	old := entry.Header.Level

	if level < 0 {
		return nil, model.Errorf(model.CodeInvalidArgument, nil, "polygon %d: level must be >= 0, got %d", id, level)
	}
	if old == level {
		return nil, model.Errorf(model.CodeInvalidArgument, nil, "polygon %d is already at level %d", id, level)
	}

	if err := binary.WriteLevelAt(e.f, entry.HeaderOffset(), level); err != nil {
		return nil, fmt.Errorf("polygon %d: %w", id, err)
	}
	entry.Header.Level = level

	change := &LevelChange{ID: id, OldLevel: old, NewLevel: level, Points: entry.Header.N}
	if (level-old)%2 != 0 {
		pts, err := binary.ReadPointsAt(e.f, entry.Offset, entry.Header.N)
		if err != nil {
			return nil, fmt.Errorf("polygon %d: level written, points not reversed: %w", id, err)
		}
		model.Reverse(pts)
		if err := binary.WritePointsAt(e.f, entry.Offset, pts); err != nil {
			return nil, fmt.Errorf("polygon %d: level written, points not reversed: %w", id, err)
		}
		change.Reversed = true
	}
	return change, nil
}

// SetLinks rewrites the parent and ancestor of polygon id. Both must be
// model.NoParent or ids present in the catalog, and neither may be id.
func (e *Editor) SetLinks(id, parent, ancestor int) (*LinkChange, error) {
	i, err := e.cat.Find(id)
	if err != nil {
		return nil, err
	}
	for _, ref := range []int{parent, ancestor} {
		if ref == id {
			return nil, model.Errorf(model.CodeInvalidArgument, nil, "polygon %d cannot enclose itself", id)
		}
		if ref != model.NoParent && !e.cat.Has(ref) {
			return nil, model.Errorf(model.CodeNotFound, nil, "polygon %d: referenced polygon %d not found", id, ref)
		}
	}

	entry := &e.cat.Entries[i]
	change := &LinkChange{
		ID:          id,
		OldParent:   entry.Header.Parent,
		OldAncestor: entry.Header.Ancestor,
		NewParent:   parent,
		NewAncestor: ancestor,
	}
	if change.OldParent == parent && change.OldAncestor == ancestor {
		return nil, model.Errorf(model.CodeInvalidArgument, nil, "polygon %d already has parent %d and ancestor %d", id, parent, ancestor)
	}
	if err := binary.WriteLinksAt(e.f, entry.HeaderOffset(), parent, ancestor); err != nil {
		return nil, fmt.Errorf("polygon %d: %w", id, err)
	}
	entry.Header.Parent = parent
	entry.Header.Ancestor = ancestor
	return change, nil
}
