// Package catalog indexes the polygons of a database file for random access.
package catalog

import (
	"fmt"
	"io"

	"github.com/dyuri/shoredb/internal/binary"
	"github.com/dyuri/shoredb/internal/model"
)

// Entry is one polygon header and the file offset of its point array.
type Entry struct {
	Header model.Header
	Offset int64
}

// HeaderOffset returns the file offset of the entry's header record.
func (e *Entry) HeaderOffset() int64 {
	return e.Offset - binary.HeaderSize
}

// Catalog is the in-memory index of a polygon file, in scan order.
type Catalog struct {
	Entries []Entry
	Size    int64 // File size the catalog was built from

	byID       map[int]int
	duplicates []int
	spatial    *Index
}

// Build scans every header of a polygon file. Point arrays are skipped, not
// decoded. A header or point array running past size is a TruncatedFile
// error.
func Build(r io.ReaderAt, size int64) (*Catalog, error) {
	kind, err := binary.ReadPreamble(r)
	if err != nil {
		return nil, err
	}
	if kind != binary.KindPolygon {
		return nil, model.Errorf(model.CodeInvalidArgument, nil, "catalog of %s file", kind)
	}

	c := &Catalog{
		Size: size,
		byID: make(map[int]int),
	}
	off := int64(binary.PreambleSize)
	for off < size {
		if size-off < binary.HeaderSize {
			return nil, model.Errorf(model.CodeTruncatedFile, nil, "partial header at offset %d (%d bytes left)", off, size-off)
		}
		h, err := binary.ReadHeaderAt(r, off)
		if err != nil {
			return nil, fmt.Errorf("header %d: %w", len(c.Entries), err)
		}
		points := off + binary.HeaderSize
		end := points + int64(h.N)*binary.PointSize
		if end > size {
			return nil, model.Errorf(model.CodeTruncatedFile, nil, "polygon %d: %d points need %d bytes past offset %d, file has %d",
				h.ID, h.N, int64(h.N)*binary.PointSize, points, size)
		}

		if _, seen := c.byID[h.ID]; seen {
			c.duplicates = append(c.duplicates, h.ID)
		} else {
			c.byID[h.ID] = len(c.Entries)
		}
		c.Entries = append(c.Entries, Entry{Header: *h, Offset: points})
		off = end
	}
	return c, nil
}

// Len returns the number of polygons.
func (c *Catalog) Len() int {
	return len(c.Entries)
}

// Find returns the index of the first entry with the given id.
func (c *Catalog) Find(id int) (int, error) {
	i, ok := c.byID[id]
	if !ok {
		return -1, model.Errorf(model.CodeNotFound, nil, "polygon %d not found", id)
	}
	return i, nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id int) bool {
	_, ok := c.byID[id]
	return ok
}

// DuplicateIDs lists ids that occur more than once, once per extra
// occurrence, in scan order.
func (c *Catalog) DuplicateIDs() []int {
	return c.duplicates
}

// Points reads the stored points of entry i.
func (c *Catalog) Points(r io.ReaderAt, i int) ([]model.Point, error) {
	e := &c.Entries[i]
	pts, err := binary.ReadPointsAt(r, e.Offset, e.Header.N)
	if err != nil {
		return nil, fmt.Errorf("polygon %d: %w", e.Header.ID, err)
	}
	return pts, nil
}

// Polygon reads entry i with its points.
func (c *Catalog) Polygon(r io.ReaderAt, i int) (*model.Polygon, error) {
	pts, err := c.Points(r, i)
	if err != nil {
		return nil, err
	}
	return &model.Polygon{Header: c.Entries[i].Header, Points: pts}, nil
}

// Spatial returns the catalog's bounding box index, building it on first use.
func (c *Catalog) Spatial() *Index {
	if c.spatial == nil {
		c.spatial = NewIndex(c)
	}
	return c.spatial
}
