package boolean

import (
	"fmt"

	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Op is a Boolean operation between two closed shells.
type Op int

const (
	Union Op = iota
	Intersect
	Subtract
)

func (op Op) String() string {
	switch op {
	case Union:
		return "union"
	case Intersect:
		return "intersect"
	case Subtract:
		return "subtract"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// ParseOp maps "union", "intersect" or "subtract" to an Op.
func ParseOp(name string) (Op, error) {
	for _, op := range []Op{Union, Intersect, Subtract} {
		if op.String() == name {
			return op, nil
		}
	}
	return 0, errors.Wrapf(nmg.ErrUnsupported, "boolean operation %q", name)
}

// Result is the outcome of Evaluate.
type Result struct {
	Region  nmg.RegionID // zero when the result is empty
	Shell   nmg.ShellID
	Report  *CrackReport
	Kept    int // loops copied into the result
	Dropped int
}

// Evaluate combines the closed shells s1 and s2 with op and builds the
// result as a new shell in a new region of s1's model. The operands are
// cracked against each other and left in place.
//
// Every edge loop of both shells is classified by a point just inside it.
// A union keeps the parts of each shell outside the other; an intersection
// the parts inside. A subtraction keeps the parts of s1 outside s2 and the
// parts of s2 inside s1, turned over. Where the shells share a surface a
// single copy is kept: the one from s1, provided the two faces point the
// same way (union, intersection) or opposite ways (subtraction).
func Evaluate(s *nmg.Store, s1, s2 nmg.ShellID, op Op, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	tol, tr := opts.Tol, opts.Tracer
	if op != Union && op != Intersect && op != Subtract {
		return nil, errors.Wrapf(nmg.ErrUnsupported, "boolean operation %v", op)
	}
	report, err := CrackShells(s, s1, s2, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{Report: report}

	var loops [][]v3.Vec
	for _, side := range []struct {
		sh, other nmg.ShellID
		first     bool
	}{{s1, s2, true}, {s2, s1, false}} {
		tris, err := shellTriangles(s, side.other)
		if err != nil {
			return nil, err
		}
		for _, fu := range s.OrientedFaceuses(side.sh) {
			n, err := s.FaceuseNormal(fu)
			if err != nil {
				return nil, err
			}
			for _, lu := range s.Loopuses(fu) {
				if s.Loopuse(lu).Vertexuse != 0 {
					continue
				}
				keep, flip, err := decide(s, lu, n, tris, op, side.first, tol)
				if err != nil {
					return nil, errors.WithMessagef(err, "evaluate %v: loopuse %d", op, lu)
				}
				if !keep {
					res.Dropped++
					continue
				}
				pts, err := s.LoopCoords(lu)
				if err != nil {
					return nil, err
				}
				if flip {
					pts = reversed(pts)
				}
				loops = append(loops, pts)
				res.Kept++
			}
		}
	}
	tr.Tracef("Evaluate(%d %v %d): kept %d loops, dropped %d", s1, op, s2, res.Kept, res.Dropped)
	if len(loops) == 0 {
		return res, nil
	}

	m := s.Region(s.Shell(s1).Region).Model
	r, sh, err := rebuild(s, m, loops, tol, tr)
	if err != nil {
		return nil, err
	}
	res.Region, res.Shell = r, sh
	return res, nil
}

// rebuild makes a region in m holding one glued shell with a face per
// loop. Degenerate loops are skipped; if none survive the region is
// killed and zero IDs are returned. A failure kills the partial region.
func rebuild(s *nmg.Store, m nmg.ModelID, loops [][]v3.Vec, tol nmg.Tol, tr nmg.Tracer) (r nmg.RegionID, sh nmg.ShellID, err error) {
	r, sh, err = s.MakeRegion(m)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err == nil && sh != 0 {
			return
		}
		if _, kerr := s.KillRegion(r); kerr != nil {
			if err == nil {
				err = kerr
			} else {
				err = errors.WithMessagef(err, "discarding region %d: %v", r, kerr)
			}
		}
		r, sh = 0, 0
	}()
	b := nmg.NewBuilder(s, sh, tol)
	for i, pts := range loops {
		if _, err := b.Face(pts...); err != nil {
			if errors.Is(err, nmg.ErrDegenerateGeometry) {
				tr.Tracef("Evaluate: result face %d dropped: %v", i, err)
				continue
			}
			return r, sh, err
		}
	}
	if len(s.ShellFaceuses(sh)) == 0 {
		return r, 0, nil
	}
	if err := b.Glue(); err != nil {
		return r, sh, err
	}
	if err := s.ComputeShellBBox(sh); err != nil {
		return r, sh, err
	}
	return r, sh, nil
}

// decide classifies loop lu, whose face has outward normal n, against the
// other operand's triangles and reports whether it belongs in the result
// and whether it must be turned over.
func decide(s *nmg.Store, lu nmg.LoopuseID, n v3.Vec, other []faceTri, op Op, first bool, tol nmg.Tol) (keep, flip bool, err error) {
	p, err := interiorPoint(s, lu)
	if err != nil {
		return false, false, err
	}
	class, on, err := classify(other, p, tol)
	if err != nil {
		return false, false, err
	}
	if class == ClassOn {
		if !first {
			return false, false, nil
		}
		nrm, err := s.FaceuseNormal(on)
		if err != nil {
			return false, false, err
		}
		same := nrm.Dot(n) > 0
		if op == Subtract {
			return !same, false, nil
		}
		return same, false, nil
	}
	switch op {
	case Union:
		return class == ClassOut, false, nil
	case Intersect:
		return class == ClassIn, false, nil
	default:
		if first {
			return class == ClassOut, false, nil
		}
		return class == ClassIn, true, nil
	}
}

// interiorPoint returns the centroid of the largest triangle of lu, which
// lies strictly inside the loop.
func interiorPoint(s *nmg.Store, lu nmg.LoopuseID) (v3.Vec, error) {
	tris, err := s.TriangulateLoop(lu)
	if err != nil {
		return v3.Vec{}, err
	}
	if len(tris) == 0 {
		return v3.Vec{}, errors.Wrapf(nmg.ErrDegenerateGeometry, "loopuse %d has no area", lu)
	}
	best := lo.MaxBy(tris, func(a, b *sdf.Triangle3) bool {
		return triArea(a) > triArea(b)
	})
	return best[0].Add(best[1]).Add(best[2]).MulScalar(1.0 / 3), nil
}

func triArea(t *sdf.Triangle3) float64 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Length() / 2
}

func reversed(pts []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// SignedVolume returns the volume enclosed by the outward faces of sh,
// negative when the faces point inward.
func SignedVolume(s *nmg.Store, sh nmg.ShellID) (float64, error) {
	tris, err := s.TriangulateShell(sh)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(tris, func(t *sdf.Triangle3) float64 {
		return t[0].Dot(t[1].Cross(t[2])) / 6
	}), nil
}
