package nmg

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Builder constructs planar faces in one shell from point lists. Points
// closer than the tolerance distance share a vertex, so adjacent faces
// built through the same Builder meet at common vertices and can then be
// glued along common edges.
type Builder struct {
	s     *Store
	shell ShellID
	tol   Tol
	verts []VertexID
}

// NewBuilder returns a Builder adding faces to sh.
func NewBuilder(s *Store, sh ShellID, tol Tol) *Builder {
	return &Builder{s: s, shell: sh, tol: tol}
}

// Shell returns the shell being built.
func (b *Builder) Shell() ShellID { return b.shell }

// lookup returns a known vertex within tolerance of p, or zero.
func (b *Builder) lookup(p v3.Vec) VertexID {
	live := b.verts[:0]
	var hit VertexID
	for _, v := range b.verts {
		c, ok := b.s.Coord(v)
		if !ok {
			continue
		}
		live = append(live, v)
		if hit == 0 {
			d := c.Sub(p)
			if d.Dot(d) < b.tol.DistSq {
				hit = v
			}
		}
	}
	b.verts = live
	return hit
}

// locate places a vertex the builder created.
func (b *Builder) locate(v VertexID, p v3.Vec) error {
	if err := b.s.SetVertexGeometry(v, p); err != nil {
		return err
	}
	b.verts = append(b.verts, v)
	return nil
}

// Face adds a face bounded by pts, which must wind counter-clockwise when
// seen from the side the face should point to. Consecutive duplicate
// points are dropped. It returns the faceuse whose orientation matches the
// winding.
func (b *Builder) Face(pts ...v3.Vec) (FaceuseID, error) {
	var ring []v3.Vec
	for _, p := range pts {
		if n := len(ring); n > 0 {
			d := ring[n-1].Sub(p)
			if d.Dot(d) < b.tol.DistSq {
				continue
			}
		}
		ring = append(ring, p)
	}
	if n := len(ring); n > 1 {
		d := ring[n-1].Sub(ring[0])
		if d.Dot(d) < b.tol.DistSq {
			ring = ring[:n-1]
		}
	}
	if len(ring) < 3 {
		return 0, degeneratef("face needs 3 distinct points, have %d", len(ring))
	}
	pl, err := PlaneFromPoints(ring, b.tol)
	if err != nil {
		return 0, err
	}

	vs := make([]VertexID, len(ring))
	seen := make(map[VertexID]bool)
	for i, p := range ring {
		v := b.lookup(p)
		if v != 0 && seen[v] {
			return 0, degeneratef("face revisits vertex %d", v)
		}
		if v != 0 {
			seen[v] = true
		}
		vs[i] = v
	}

	s := b.s
	lu, err := s.MakeLoopOnVertex(ShellParent(b.shell), vs[0], OTUnspec)
	if err != nil {
		return 0, err
	}
	vu := s.loopuses.recs[lu].Vertexuse
	if vs[0] == 0 {
		if err := b.locate(s.vertexuses.recs[vu].Vertex, ring[0]); err != nil {
			return 0, err
		}
	}
	eu, err := s.MakeEdgeOnVertexuse(vu)
	if err != nil {
		return 0, err
	}
	for i := 1; i < len(ring); i++ {
		eu, err = s.SplitEdge(vs[i], eu)
		if err != nil {
			return 0, errors.WithMessagef(err, "face point %d", i)
		}
		if vs[i] == 0 {
			if err := b.locate(s.euVertex(eu), ring[i]); err != nil {
				return 0, err
			}
		}
	}
	fu, err := s.MakeFace(lu)
	if err != nil {
		return 0, err
	}
	if err := s.SetFacePlane(fu, pl); err != nil {
		return 0, err
	}
	return fu, nil
}

// Glue joins the edges of faces in the shell that run between the same
// pair of vertices, making them radial uses of a single edge.
func (b *Builder) Glue() error {
	return GlueFaces(b.s, b.shell)
}

// GlueFaces merges every pair of face edges in sh that connect the same
// two vertices into one edge.
func GlueFaces(s *Store, sh ShellID) error {
	type key struct{ a, b VertexID }
	first := make(map[key]EdgeuseID)
	for _, fu := range s.OrientedFaceuses(sh) {
		for _, lu := range s.Loopuses(fu) {
			for _, eu := range s.LoopEdgeuses(lu) {
				a, c := s.euVertex(eu), s.EdgeuseEndVertex(eu)
				if a == c {
					continue
				}
				if c < a {
					a, c = c, a
				}
				k := key{a, c}
				dst, ok := first[k]
				if !ok {
					first[k] = eu
					continue
				}
				if s.edgeuses.recs[dst].Edge == s.edgeuses.recs[eu].Edge {
					continue
				}
				if err := s.MoveEdgeuseToEdge(dst, eu); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// MakeBox adds the six faces of the axis-aligned box [min, max] with
// outward normals and glues them into a closed shell.
func MakeBox(b *Builder, min, max v3.Vec) ([]FaceuseID, error) {
	if max.X-min.X <= b.tol.Dist || max.Y-min.Y <= b.tol.Dist || max.Z-min.Z <= b.tol.Dist {
		return nil, degeneratef("box %v-%v has no volume", min, max)
	}
	c := func(i, j, k int) v3.Vec {
		p := min
		if i == 1 {
			p.X = max.X
		}
		if j == 1 {
			p.Y = max.Y
		}
		if k == 1 {
			p.Z = max.Z
		}
		return p
	}
	faces := [][]v3.Vec{
		{c(0, 0, 0), c(0, 1, 0), c(1, 1, 0), c(1, 0, 0)}, // -z
		{c(0, 0, 1), c(1, 0, 1), c(1, 1, 1), c(0, 1, 1)}, // +z
		{c(0, 0, 0), c(1, 0, 0), c(1, 0, 1), c(0, 0, 1)}, // -y
		{c(0, 1, 0), c(0, 1, 1), c(1, 1, 1), c(1, 1, 0)}, // +y
		{c(0, 0, 0), c(0, 0, 1), c(0, 1, 1), c(0, 1, 0)}, // -x
		{c(1, 0, 0), c(1, 1, 0), c(1, 1, 1), c(1, 0, 1)}, // +x
	}
	return buildClosed(b, faces)
}

// MakePrism extrudes the planar polygon base along h. The base may wind
// either way; faces come out with outward normals.
func MakePrism(b *Builder, base []v3.Vec, h v3.Vec) ([]FaceuseID, error) {
	if len(base) < 3 {
		return nil, degeneratef("prism base needs 3 points, have %d", len(base))
	}
	n := NewellNormal(base)
	dot := n.Dot(h)
	if dot == 0 || h.Length() < b.tol.Dist {
		return nil, degeneratef("prism height %v lies in the base plane", h)
	}
	p := append([]v3.Vec(nil), base...)
	if dot < 0 {
		for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
			p[i], p[j] = p[j], p[i]
		}
	}
	bottom := make([]v3.Vec, len(p))
	top := make([]v3.Vec, len(p))
	for i := range p {
		bottom[len(p)-1-i] = p[i]
		top[i] = p[i].Add(h)
	}
	faces := [][]v3.Vec{bottom, top}
	for i := range p {
		j := (i + 1) % len(p)
		faces = append(faces, []v3.Vec{p[i], p[j], p[j].Add(h), p[i].Add(h)})
	}
	return buildClosed(b, faces)
}

// MakePolyhedron adds one face per index list in faces, each winding
// counter-clockwise seen from outside, and glues them.
func MakePolyhedron(b *Builder, verts []v3.Vec, faces [][]int) ([]FaceuseID, error) {
	polys := make([][]v3.Vec, len(faces))
	for i, f := range faces {
		for _, k := range f {
			if k < 0 || k >= len(verts) {
				return nil, errors.Errorf("polyhedron face %d: vertex index %d out of range", i, k)
			}
			polys[i] = append(polys[i], verts[k])
		}
	}
	return buildClosed(b, polys)
}

func buildClosed(b *Builder, faces [][]v3.Vec) ([]FaceuseID, error) {
	out := make([]FaceuseID, 0, len(faces))
	for i, f := range faces {
		fu, err := b.Face(f...)
		if err != nil {
			return nil, errors.WithMessagef(err, "face %d", i)
		}
		out = append(out, fu)
	}
	if err := b.Glue(); err != nil {
		return nil, err
	}
	if err := b.s.ComputeShellBBox(b.shell); err != nil {
		return nil, err
	}
	return out, nil
}
