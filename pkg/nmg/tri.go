package nmg

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// TriangulateFace ear-clips each edge loop of fu and returns triangles
// wound counter-clockwise about fu's normal. Point loops are ignored.
// Loops marking holes are not bridged and are reported as unsupported.
func (s *Store) TriangulateFace(fu FaceuseID) ([]*sdf.Triangle3, error) {
	var out []*sdf.Triangle3
	for _, lu := range s.Loopuses(fu) {
		if s.loopuses.recs[lu].Vertexuse != 0 {
			continue
		}
		tris, err := s.TriangulateLoop(lu)
		if err != nil {
			return nil, err
		}
		out = append(out, tris...)
	}
	return out, nil
}

// TriangulateLoop ear-clips a single edge loop of a faceuse about the
// faceuse normal.
func (s *Store) TriangulateLoop(lu LoopuseID) ([]*sdf.Triangle3, error) {
	rec := s.Loopuse(lu)
	if rec == nil {
		return nil, notFound(KindLoopuse, int32(lu))
	}
	fu := rec.Parent.Faceuse()
	if fu == 0 {
		return nil, unsupportedf("loopuse %d is not part of a face", lu)
	}
	if rec.Vertexuse != 0 {
		return nil, degeneratef("loopuse %d is a point loop", lu)
	}
	if rec.Orient == OTOpposite {
		return nil, unsupportedf("faceuse %d: hole loop %d cannot be triangulated", fu, lu)
	}
	n, err := s.FaceuseNormal(fu)
	if err != nil {
		return nil, err
	}
	pts, err := s.LoopCoords(lu)
	if err != nil {
		return nil, err
	}
	return earClip(pts, n)
}

// TriangulateShell triangulates one use of every face of sh, choosing the
// use that faces outward.
func (s *Store) TriangulateShell(sh ShellID) ([]*sdf.Triangle3, error) {
	var out []*sdf.Triangle3
	for _, fu := range s.OrientedFaceuses(sh) {
		tris, err := s.TriangulateFace(fu)
		if err != nil {
			return nil, err
		}
		out = append(out, tris...)
	}
	return out, nil
}

const earEps = 1e-12

func earClip(pts []v3.Vec, n v3.Vec) ([]*sdf.Triangle3, error) {
	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}
	turn := func(a, b, c v3.Vec) float64 {
		return b.Sub(a).Cross(c.Sub(b)).Dot(n)
	}
	inside := func(p, a, b, c v3.Vec) bool {
		return turn(a, b, p) >= 0 && turn(b, c, p) >= 0 && turn(c, a, p) >= 0
	}

	var out []*sdf.Triangle3
	for len(idx) > 3 {
		k := len(idx)
		clipped := false
		for i := 0; i < k; i++ {
			a, b, c := pts[idx[(i+k-1)%k]], pts[idx[i]], pts[idx[(i+1)%k]]
			t := turn(a, b, c)
			if t < earEps && t > -earEps {
				// b is collinear with its neighbours and adds nothing.
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
			if t < 0 {
				continue
			}
			ear := true
			for j := 0; j < k; j++ {
				if j == i || j == (i+k-1)%k || j == (i+1)%k {
					continue
				}
				p := pts[idx[j]]
				if p == a || p == b || p == c {
					continue
				}
				if inside(p, a, b, c) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			out = append(out, &sdf.Triangle3{a, b, c})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, degeneratef("polygon of %d points has no ear", len(pts))
		}
	}
	if len(idx) == 3 {
		a, b, c := pts[idx[0]], pts[idx[1]], pts[idx[2]]
		if t := turn(a, b, c); t > earEps {
			out = append(out, &sdf.Triangle3{a, b, c})
		}
	}
	return out, nil
}
