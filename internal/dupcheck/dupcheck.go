// Package dupcheck flags pairs of near-identical polygons for manual review.
// It never resolves anything itself.
package dupcheck

import (
	"fmt"
	"io"
	"math"

	"github.com/dyuri/shoredb/internal/catalog"
	"github.com/dyuri/shoredb/internal/geometry"
	"github.com/dyuri/shoredb/internal/model"
)

// DefaultMinRatio is the smallest area ratio still considered a candidate.
const DefaultMinRatio = 0.5

// Class grades a flagged pair.
type Class int

const (
	// Probable pairs need a human to compare ratio and point counts.
	Probable Class = iota
	// Exact pairs have equal area, equal point counts and coincident centroids.
	Exact
)

func (c Class) String() string {
	if c == Exact {
		return "exact"
	}
	return "probable"
}

// Pair is one flagged duplicate. Other is the authoritative polygon, Dup the
// suspect.
type Pair struct {
	Dup      model.Header
	Other    model.Header
	Ratio    float64 // min(area) / max(area)
	Distance float64 // Centroid separation in meters
	Radius   float64 // sqrt(larger area / pi) in meters
	Class    Class
}

// Options tune the detector.
type Options struct {
	MinRatio float64 // Defaults to DefaultMinRatio when zero
	Resume   bool    // Start at StartID instead of the first polygon
	StartID  int
	Progress func(done, total, id int)
}

// Detector compares catalog entries pairwise
type Detector struct {
	cat       *catalog.Catalog
	r         io.ReaderAt
	opts      Options
	centroids map[int][2]float64
}

// New returns a detector over the polygons of cat, reading points from r.
func New(cat *catalog.Catalog, r io.ReaderAt, opts Options) *Detector {
	if opts.MinRatio == 0 {
		opts.MinRatio = DefaultMinRatio
	}
	return &Detector{
		cat:       cat,
		r:         r,
		opts:      opts,
		centroids: make(map[int][2]float64),
	}
}

// Run checks every entry from StartID onward against every later entry whose
// bounding box overlaps it.
func (d *Detector) Run() ([]Pair, error) {
	start := 0
	if d.opts.Resume {
		i, err := d.cat.Find(d.opts.StartID)
		if err != nil {
			return nil, fmt.Errorf("start polygon: %w", err)
		}
		start = i
	}

	index := d.cat.Spatial()
	var pairs []Pair
	for i := start; i < d.cat.Len(); i++ {
		if d.opts.Progress != nil {
			d.opts.Progress(i-start, d.cat.Len()-start, d.cat.Entries[i].Header.ID)
		}
		for _, j := range index.Overlapping(&d.cat.Entries[i].Header) {
			if j <= i {
				continue
			}
			p, ok, err := d.Compare(i, j)
			if err != nil {
				return nil, err
			}
			if ok {
				pairs = append(pairs, *p)
			}
		}
	}
	return pairs, nil
}

// Compare tests entries i and j. The result does not depend on argument
// order.
func (d *Detector) Compare(i, j int) (*Pair, bool, error) {
	if i == j {
		return nil, false, nil
	}
	if i > j {
		i, j = j, i
	}
	a, b := &d.cat.Entries[i].Header, &d.cat.Entries[j].Header

	if !geometry.BBoxOverlap(a, b) {
		return nil, false, nil
	}

	small, large := math.Abs(a.Area), math.Abs(b.Area)
	if small > large {
		small, large = large, small
	}
	if large == 0 {
		return nil, false, nil
	}
	ratio := small / large
	if ratio < d.opts.MinRatio {
		return nil, false, nil
	}

	ca, err := d.centroid(i)
	if err != nil {
		return nil, false, err
	}
	cb, err := d.centroid(j)
	if err != nil {
		return nil, false, err
	}
	dist := geometry.GreatCircleDistance(ca[0], ca[1], cb[0], cb[1])
	radius := math.Sqrt(large/math.Pi) * 1000
	if dist > radius {
		return nil, false, nil
	}

	// The lower level is authoritative; on a tie the first scanned is.
	other, dup := a, b
	if b.Level < a.Level {
		other, dup = b, a
	}
	p := &Pair{
		Dup:      *dup,
		Other:    *other,
		Ratio:    ratio,
		Distance: dist,
		Radius:   radius,
		Class:    Probable,
	}
	if ratio == 1 && a.N == b.N && dist == 0 {
		p.Class = Exact
	}
	return p, true, nil
}

func (d *Detector) centroid(i int) ([2]float64, error) {
	if c, ok := d.centroids[i]; ok {
		return c, nil
	}
	pts, err := d.cat.Points(d.r, i)
	if err != nil {
		return [2]float64{}, err
	}
	lon, lat := geometry.Centroid(d.cat.Entries[i].Header.Unwrap(pts))
	c := [2]float64{lon, lat}
	d.centroids[i] = c
	return c, nil
}
