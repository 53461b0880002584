package catalog

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/dyuri/shoredb/internal/model"
)

// boxPad widens degenerate boxes and query windows so that rtreego, which
// rejects zero lengths and ignores touching rectangles, returns a superset
// of the closed-box overlaps.
const boxPad = 1e-9

type entryBox struct {
	index int
	rect  rtreego.Rect
}

func (e *entryBox) Bounds() rtreego.Rect {
	return e.rect
}

// Index is an R-tree over the bounding boxes of catalog entries
type Index struct {
	tree    *rtreego.Rtree
	skipped []int
}

// NewIndex builds the R-tree for every entry of c. Entries with an inverted
// box cannot be indexed and are listed by Skipped instead.
func NewIndex(c *Catalog) *Index {
	ix := &Index{tree: rtreego.NewTree(2, 25, 50)}
	for i := range c.Entries {
		rect, err := headerRect(&c.Entries[i].Header, 0)
		if err != nil {
			ix.skipped = append(ix.skipped, i)
			continue
		}
		ix.tree.Insert(&entryBox{index: i, rect: rect})
	}
	return ix
}

// Skipped returns the indices of entries left out of the tree, in ascending
// order.
func (ix *Index) Skipped() []int {
	return ix.skipped
}

// Overlapping returns, in ascending order, the indices of entries whose
// boxes may intersect h's box. Callers confirm with an exact test.
func (ix *Index) Overlapping(h *model.Header) []int {
	rect, err := headerRect(h, boxPad)
	if err != nil {
		return nil
	}
	hits := ix.tree.SearchIntersect(rect)
	out := make([]int, 0, len(hits))
	for _, s := range hits {
		out = append(out, s.(*entryBox).index)
	}
	sort.Ints(out)
	return out
}

// Size returns the number of indexed entries.
func (ix *Index) Size() int {
	return ix.tree.Size()
}

func headerRect(h *model.Header, pad float64) (rtreego.Rect, error) {
	w := h.East - h.West
	ht := h.North - h.South
	return rtreego.NewRect(
		rtreego.Point{h.West - pad, h.South - pad},
		[]float64{w + 2*pad + boxPad, ht + 2*pad + boxPad},
	)
}
