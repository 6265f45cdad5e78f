package boolean

import (
	"sort"

	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/deadsy/sdfx/sdf"
	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"
)

// faceIndex is an R-tree over the bounding boxes of a set of faceuses.
type faceIndex struct {
	tree *rtreego.Rtree
	pad  float64
}

type faceItem struct {
	fu   nmg.FaceuseID
	rect rtreego.Rect
}

func (f *faceItem) Bounds() rtreego.Rect { return f.rect }

// boxRect converts b into an R-tree rectangle grown by pad on every side,
// which also gives flat boxes the non-zero extent the tree requires.
func boxRect(b sdf.Box3, pad float64) (rtreego.Rect, error) {
	p := rtreego.Point{b.Min.X - pad, b.Min.Y - pad, b.Min.Z - pad}
	lengths := []float64{
		b.Max.X - b.Min.X + 2*pad,
		b.Max.Y - b.Min.Y + 2*pad,
		b.Max.Z - b.Min.Z + 2*pad,
	}
	return rtreego.NewRect(p, lengths)
}

func faceBox(s *nmg.Store, fu nmg.FaceuseID) (sdf.Box3, error) {
	f := s.Face(s.Faceuse(fu).Face)
	if f.BBox == nil {
		if err := s.ComputeFaceBBox(s.Faceuse(fu).Face); err != nil {
			return sdf.Box3{}, err
		}
	}
	return *f.BBox, nil
}

func newFaceIndex(s *nmg.Store, fus []nmg.FaceuseID, tol nmg.Tol) (*faceIndex, error) {
	pad := tol.Dist
	if pad <= 0 {
		pad = nmg.DefaultDist
	}
	x := &faceIndex{tree: rtreego.NewTree(3, 4, 16), pad: pad}
	for _, fu := range fus {
		b, err := faceBox(s, fu)
		if err != nil {
			return nil, err
		}
		r, err := boxRect(b, pad)
		if err != nil {
			return nil, errors.Wrapf(nmg.ErrDegenerateGeometry, "faceuse %d: %v", fu, err)
		}
		x.tree.Insert(&faceItem{fu: fu, rect: r})
	}
	return x, nil
}

// overlapping returns the indexed faceuses whose boxes meet b, in ID
// order.
func (x *faceIndex) overlapping(b sdf.Box3) ([]nmg.FaceuseID, error) {
	r, err := boxRect(b, x.pad)
	if err != nil {
		return nil, err
	}
	var out []nmg.FaceuseID
	for _, hit := range x.tree.SearchIntersect(r) {
		out = append(out, hit.(*faceItem).fu)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func boxesOverlap(a, b sdf.Box3, pad float64) bool {
	return a.Min.X-pad <= b.Max.X && b.Min.X-pad <= a.Max.X &&
		a.Min.Y-pad <= b.Max.Y && b.Min.Y-pad <= a.Max.Y &&
		a.Min.Z-pad <= b.Max.Z && b.Min.Z-pad <= a.Max.Z
}
