// Package world indexes evaluated brushes in an R-tree so that picking
// and overlap queries only test brushes whose bounds are close.
package world

import (
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
)

// R-tree node fan-out.
const (
	minChildren = 8
	maxChildren = 32
)

// Entry is a named brush stored in the index.
type Entry struct {
	Name  string
	Brush *brush.Brush

	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *Entry) Bounds() rtreego.Rect { return e.rect }

// Hit is the result of a pick.
type Hit struct {
	Entry    *Entry
	Face     brush.FaceID
	Distance float64
	Point    v3.Vec
}

// Overlap is a pair of indexed brushes that share interior points.
// A.Name sorts before B.Name.
type Overlap struct {
	A, B *Entry
}

// Index is an R-tree of brushes keyed by name. It is not safe for
// concurrent mutation.
type Index struct {
	tree    *rtreego.Rtree
	entries map[string]*Entry
	log     *zap.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(x *Index) { x.log = l }
}

// NewIndex returns an empty index.
func NewIndex(opts ...Option) *Index {
	x := &Index{
		tree:    rtreego.NewTree(3, minChildren, maxChildren),
		entries: make(map[string]*Entry),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(x)
	}
	return x
}

// toRect converts bounds to an R-tree rectangle, padded so flat boxes keep
// a positive extent.
func toRect(b sdf.Box3) rtreego.Rect {
	b = geom.ExpandBounds(b, geom.AlmostZero)
	r, err := rtreego.NewRectFromPoints(
		rtreego.Point{b.Min.X, b.Min.Y, b.Min.Z},
		rtreego.Point{b.Max.X, b.Max.Y, b.Max.Z})
	if err != nil {
		panic("world: " + err.Error())
	}
	return r
}

// Insert adds b under name, replacing any brush already stored there.
func (x *Index) Insert(name string, b *brush.Brush) *Entry {
	x.Remove(name)
	e := &Entry{Name: name, Brush: b, rect: toRect(b.Bounds())}
	x.tree.Insert(e)
	x.entries[name] = e
	x.log.Debug("indexed brush", zap.String("name", name), zap.Int("faces", b.FaceCount()))
	return e
}

// Remove deletes the brush stored under name.
func (x *Index) Remove(name string) bool {
	e, ok := x.entries[name]
	if !ok {
		return false
	}
	x.tree.Delete(e)
	delete(x.entries, name)
	return true
}

// Get returns the entry stored under name, or nil.
func (x *Index) Get(name string) *Entry { return x.entries[name] }

// Len returns the number of indexed brushes.
func (x *Index) Len() int { return len(x.entries) }

// Entries returns all entries sorted by name.
func (x *Index) Entries() []*Entry {
	return sortByName(lo.Values(x.entries))
}

// Bounds returns the union of all indexed brush bounds.
func (x *Index) Bounds() (sdf.Box3, bool) {
	if len(x.entries) == 0 {
		return sdf.Box3{}, false
	}
	all := x.Entries()
	b := all[0].Brush.Bounds()
	for _, e := range all[1:] {
		b = geom.MergeBounds(b, e.Brush.Bounds())
	}
	return b, true
}

// Query returns the entries whose bounds intersect box, sorted by name.
// Touching bounds count.
func (x *Index) Query(box sdf.Box3) []*Entry {
	found := x.tree.SearchIntersect(toRect(box))
	out := make([]*Entry, 0, len(found))
	for _, s := range found {
		e := s.(*Entry)
		if geom.BoundsIntersect(e.Brush.Bounds(), box, geom.AlmostZero) {
			out = append(out, e)
		}
	}
	return sortByName(out)
}

// Pick returns the closest face hit by r.
func (x *Index) Pick(r geom.Ray) (Hit, bool) {
	all, ok := x.Bounds()
	if !ok {
		return Hit{}, false
	}
	enter := geom.IntersectBoundsWithRay(all, r)
	if math.IsNaN(enter) {
		return Hit{}, false
	}
	far := enter + geom.BoundsSize(all).Length()
	segment, _ := geom.BoundsOf([]v3.Vec{r.PointAtDistance(enter), r.PointAtDistance(far)})

	best := Hit{Distance: math.Inf(1)}
	for _, e := range x.Query(segment) {
		id, d, hit := e.Brush.FindFaceHit(r)
		if hit && d < best.Distance {
			best = Hit{Entry: e, Face: id, Distance: d, Point: r.PointAtDistance(d)}
		}
	}
	if best.Entry == nil {
		return Hit{}, false
	}
	x.log.Debug("picked face",
		zap.String("brush", best.Entry.Name),
		zap.Int("face", int(best.Face)),
		zap.Float64("distance", best.Distance))
	return best, true
}

// Overlaps returns every pair of brushes that share interior points.
// Brushes that only touch do not overlap.
func (x *Index) Overlaps() []Overlap {
	var out []Overlap
	for _, a := range x.Entries() {
		for _, b := range x.Query(a.Brush.Bounds()) {
			if a.Name >= b.Name {
				continue
			}
			if a.Brush.IntersectsBrush(b.Brush) {
				out = append(out, Overlap{A: a, B: b})
			}
		}
	}
	return out
}

// OutsideMargin returns the entries that come within margin of the world
// bounds, or leave them.
func (x *Index) OutsideMargin(worldBounds sdf.Box3, margin float64) []*Entry {
	inner := geom.ExpandBounds(worldBounds, -margin)
	return lo.Filter(x.Entries(), func(e *Entry, _ int) bool {
		return !geom.BoundsContains(inner, e.Brush.Bounds(), 0)
	})
}

func sortByName(es []*Entry) []*Entry {
	sort.Slice(es, func(i, j int) bool { return es[i].Name < es[j].Name })
	return es
}
