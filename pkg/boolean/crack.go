// Package boolean implements Boolean evaluation between closed NMG
// shells: mutual subdivision of faces along their intersection lines,
// followed by classification of the resulting loops against the other
// shell.
package boolean

import (
	"fmt"
	"math"

	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/pkg/errors"
)

// Options configure a Boolean pass.
type Options struct {
	Tol    nmg.Tol
	Tracer nmg.Tracer
}

func (o Options) withDefaults() Options {
	if o.Tol.Dist == 0 {
		o.Tol = nmg.DefaultTol()
	}
	if o.Tracer == nil {
		o.Tracer = nmg.NopTracer{}
	}
	return o
}

// PairFailure records a face pair that could not be processed.
type PairFailure struct {
	A, B nmg.FaceuseID
	Err  error
}

func (f PairFailure) Error() string {
	return fmt.Sprintf("faceuses %d/%d: %v", f.A, f.B, f.Err)
}

// CrackReport summarises a CrackShells pass.
type CrackReport struct {
	Pairs    int           // face pairs intersected
	Skipped  int           // overlapping pairs with parallel planes
	Failures []PairFailure // pairs abandoned because of degenerate or unsupported geometry
}

// CrackShells subdivides the faces of s1 and s2 along every line where a
// face of one crosses a face of the other, so that afterwards no face of
// either shell straddles a face of the other.
//
// Face pairs are found through an R-tree of s2's face boxes and visited in
// ID order. Pairs with parallel planes are skipped. A pair that fails with
// degenerate or unsupported geometry is recorded in the report and the
// pass continues; a broken topology invariant aborts it. Finally edges
// that were unglued while splitting are glued again.
func CrackShells(s *nmg.Store, s1, s2 nmg.ShellID, opts Options) (*CrackReport, error) {
	opts = opts.withDefaults()
	tol, tr := opts.Tol, opts.Tracer
	for _, sh := range []nmg.ShellID{s1, s2} {
		if s.Shell(sh) == nil {
			return nil, errors.Wrapf(nmg.ErrNotFound, "crack shells: shell %d", sh)
		}
		if err := s.ComputeShellBBox(sh); err != nil {
			return nil, err
		}
	}
	report := &CrackReport{}
	b1, b2 := s.Shell(s1).BBox, s.Shell(s2).BBox
	if !boxesOverlap(*b1, *b2, tol.Dist) {
		tr.Tracef("CrackShells(%d, %d): bounding boxes do not overlap", s1, s2)
		return report, nil
	}

	fus1 := s.OrientedFaceuses(s1)
	fus2 := s.OrientedFaceuses(s2)
	index, err := newFaceIndex(s, fus2, tol)
	if err != nil {
		return nil, err
	}
	for _, fa := range fus1 {
		ba, err := faceBox(s, fa)
		if err != nil {
			return nil, err
		}
		cands, err := index.overlapping(ba)
		if err != nil {
			return nil, err
		}
		for _, fb := range cands {
			err := crackPair(s, fa, fb, tol, tr)
			switch {
			case err == nil:
				report.Pairs++
			case errors.Is(err, errParallel):
				report.Skipped++
			case errors.Is(err, nmg.ErrDegenerateGeometry), errors.Is(err, nmg.ErrUnsupported):
				tr.Tracef("CrackShells: faceuses %d/%d skipped: %v", fa, fb, err)
				report.Failures = append(report.Failures, PairFailure{A: fa, B: fb, Err: err})
			default:
				return report, errors.WithMessagef(err, "crack shells: faceuses %d/%d", fa, fb)
			}
		}
	}

	for _, sh := range []nmg.ShellID{s1, s2} {
		if err := nmg.GlueFaces(s, sh); err != nil {
			return report, err
		}
		if err := s.ComputeShellBBox(sh); err != nil {
			return report, err
		}
	}
	tr.Tracef("CrackShells(%d, %d): %d pairs, %d parallel, %d failed",
		s1, s2, report.Pairs, report.Skipped, len(report.Failures))
	return report, nil
}

var errParallel = errors.New("parallel planes")

func crackPair(s *nmg.Store, fa, fb nmg.FaceuseID, tol nmg.Tol, tr nmg.Tracer) error {
	pa, err := s.FaceusePlane(fa)
	if err != nil {
		return err
	}
	pb, err := s.FaceusePlane(fb)
	if err != nil {
		return err
	}
	if math.Abs(pa.N.Dot(pb.N)) > tol.Para {
		return errParallel
	}
	ta, tb, err := IntersectFaces(s, fa, fb, tol, tr)
	if err != nil {
		return err
	}
	if err := CutFace(s, fa, pb, ta, tol, tr); err != nil {
		return err
	}
	return CutFace(s, fb, pa, tb, tol, tr)
}
