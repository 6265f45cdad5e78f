package nmg

import (
	"github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"
)

// CopyShell rebuilds the faces of sh as a new shell in region r. Each edge
// loop of an outward faceuse becomes a face of its own; vertices are
// shared within tolerance and common edges are glued.
func (s *Store) CopyShell(sh ShellID, r RegionID, tol Tol) (ShellID, error) {
	if s.Shell(sh) == nil {
		return 0, notFound(KindShell, int32(sh))
	}
	fus := s.OrientedFaceuses(sh)
	if len(fus) == 0 {
		return 0, unsupportedf("copy shell: shell %d has no faces", sh)
	}
	dst, err := s.MakeShell(r)
	if err != nil {
		return 0, err
	}
	b := NewBuilder(s, dst, tol)
	for _, fu := range fus {
		for _, lu := range s.Loopuses(fu) {
			if s.loopuses.recs[lu].Vertexuse != 0 {
				continue
			}
			pts, err := s.LoopCoords(lu)
			if err != nil {
				return 0, err
			}
			if s.faceuses.recs[fu].Orient == OTOpposite {
				return 0, invariantf("copy shell: faceuse %d faces inward", fu)
			}
			if _, err := b.Face(pts...); err != nil {
				return 0, errors.WithMessagef(err, "copy shell: faceuse %d", fu)
			}
		}
	}
	if err := b.Glue(); err != nil {
		return 0, err
	}
	if err := s.ComputeShellBBox(dst); err != nil {
		return 0, err
	}
	s.tracef("CopyShell(s=%d) -> s=%d", sh, dst)
	return dst, nil
}

// TransformShell maps every vertex of sh through m and refits the face
// planes and bounding boxes.
func (s *Store) TransformShell(sh ShellID, m sdf.M44) error {
	if s.Shell(sh) == nil {
		return notFound(KindShell, int32(sh))
	}
	for _, v := range s.ShellVertices(sh) {
		rec := s.vertices.recs[v]
		if rec.Coord == nil {
			continue
		}
		p := m.MulPosition(*rec.Coord)
		rec.Coord = &p
	}
	tol := DefaultTol()
	for _, fu := range s.OrientedFaceuses(sh) {
		var pl Plane
		var err error
		for _, lu := range s.Loopuses(fu) {
			if s.loopuses.recs[lu].Vertexuse != 0 {
				continue
			}
			if pl, err = s.FacePlaneFromLoop(lu, tol); err == nil {
				break
			}
		}
		if err != nil {
			return err
		}
		if err := s.SetFacePlane(fu, pl); err != nil {
			return err
		}
	}
	return s.ComputeShellBBox(sh)
}
