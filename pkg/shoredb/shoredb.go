// Package shoredb provides functions for working with shoreline polygon
// databases.
//
// This package can be used as a library to scan, read, simplify, validate
// and import polygon files programmatically.
//
// Example usage:
//
//	db, err := shoredb.Open("coast.b")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	p, err := db.Polygon(7)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(p.Header.Area)
package shoredb

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dyuri/shoredb/internal/binary"
	"github.com/dyuri/shoredb/internal/catalog"
	"github.com/dyuri/shoredb/internal/model"
)

// Re-exported data model.
type (
	Point         = model.Point
	Header        = model.Header
	Polygon       = model.Polygon
	Segment       = model.Segment
	SegmentHeader = model.SegmentHeader
	Catalog       = catalog.Catalog
	Entry         = catalog.Entry
)

// Error is a classified database error. Use errors.Is with the sentinels
// below or CodeOf to branch on the kind.
type Error = model.Error

// Code classifies an Error.
type Code = model.Code

// Common errors
var (
	ErrNotFound            = model.ErrNotFound
	ErrTruncatedFile       = model.ErrTruncatedFile
	ErrTruncatedPointArray = model.ErrTruncatedPointArray
	ErrCorruptHeader       = model.ErrCorruptHeader
	ErrIO                  = model.ErrIO
	ErrInvalidArgument     = model.ErrInvalidArgument
	ErrInvariantViolation  = model.ErrInvariantViolation
)

// CodeOf returns the Code of the first Error in err's chain, or "".
func CodeOf(err error) Code {
	return model.CodeOf(err)
}

// DB is an open polygon file with its catalog.
type DB struct {
	Path string

	f   *os.File
	cat *catalog.Catalog
}

// Open opens a polygon file read-only and builds its catalog.
func Open(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.Errorf(model.CodeNotFound, err, "open %s", path)
		}
		return nil, model.Errorf(model.CodeIO, err, "open %s", path)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, model.Errorf(model.CodeIO, err, "stat %s", path)
	}

	cat, err := catalog.Build(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("build catalog of %s: %w", path, err)
	}

	return &DB{Path: path, f: f, cat: cat}, nil
}

// Close closes the underlying file.
func (db *DB) Close() error {
	return db.f.Close()
}

// Catalog returns the in-memory index of the file.
func (db *DB) Catalog() *Catalog {
	return db.cat
}

// Len returns the number of polygons.
func (db *DB) Len() int {
	return db.cat.Len()
}

// Size returns the file size in bytes.
func (db *DB) Size() int64 {
	return db.cat.Size
}

// Polygon reads the first polygon with the given id.
func (db *DB) Polygon(id int) (*Polygon, error) {
	i, err := db.cat.Find(id)
	if err != nil {
		return nil, err
	}
	return db.cat.Polygon(db.f, i)
}

// PolygonAt reads the i-th polygon in scan order.
func (db *DB) PolygonAt(i int) (*Polygon, error) {
	if i < 0 || i >= db.cat.Len() {
		return nil, model.Errorf(model.CodeNotFound, nil, "polygon index %d out of range [0, %d)", i, db.cat.Len())
	}
	return db.cat.Polygon(db.f, i)
}

// Each calls fn for every polygon in scan order, stopping at the first error.
func (db *DB) Each(fn func(*Polygon) error) error {
	for i := range db.cat.Entries {
		p, err := db.cat.Polygon(db.f, i)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// ReaderAt exposes the file for positioned reads.
func (db *DB) ReaderAt() io.ReaderAt {
	return db.f
}

// ReadPolygons streams every polygon of a polygon file in order.
func ReadPolygons(r io.Reader, fn func(*Polygon) error) error {
	br, err := binary.NewReader(r)
	if err != nil {
		return err
	}
	if br.Kind() != binary.KindPolygon {
		return model.Errorf(model.CodeInvalidArgument, nil, "expected polygon file, got %s file", br.Kind())
	}
	for {
		p, err := br.ReadPolygon()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read polygon at offset %d: %w", br.Offset(), err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
}

// ReadSegments streams every segment of a raw segment file in order.
func ReadSegments(r io.Reader, fn func(*Segment) error) error {
	br, err := binary.NewReader(r)
	if err != nil {
		return err
	}
	if br.Kind() != binary.KindSegment {
		return model.Errorf(model.CodeInvalidArgument, nil, "expected segment file, got %s file", br.Kind())
	}
	for {
		s, err := br.ReadSegment()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read segment at offset %d: %w", br.Offset(), err)
		}
		if err := fn(s); err != nil {
			return err
		}
	}
}
