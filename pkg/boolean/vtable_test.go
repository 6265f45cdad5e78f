package boolean

import (
	"testing"

	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/cheekybits/is"
)

func TestVertexTableKeepsFirstInsertion(t *testing.T) {
	is := is.New(t)
	s := nmg.NewStore()
	_, _, sh := s.MakeModel()
	eu, err := s.MakeEdge(0, 0, sh)
	is.NoErr(err)
	a := s.Edgeuse(eu).Vertexuse
	b := s.Edgeuse(s.Edgeuse(eu).Mate).Vertexuse

	tab := NewVertexTable()
	is.True(tab.Add(b))
	is.True(tab.Add(a))
	is.True(!tab.Add(b))
	is.True(!tab.Add(0))
	is.Equal(tab.Len(), 2)
	is.Equal(tab.Vertexuses(), []nmg.VertexuseID{b, a})
	is.Equal(len(tab.Vertices(s)), 2)
}

func TestVertexTableSkipsFreedUses(t *testing.T) {
	is := is.New(t)
	s := nmg.NewStore()
	_, _, sh := s.MakeModel()
	eu, err := s.MakeEdge(0, 0, sh)
	is.NoErr(err)
	v := s.EdgeuseVertex(eu)

	lu, err := s.MakeLoopOnVertex(nmg.ShellParent(sh), v, nmg.OTSame)
	is.NoErr(err)
	point := s.Loopuse(lu).Vertexuse

	tab := NewVertexTable()
	tab.Add(s.Edgeuse(eu).Vertexuse)
	tab.Add(point)
	is.Equal(tab.Vertices(s), []nmg.VertexID{v})

	_, err = s.KillLoop(lu)
	is.NoErr(err)
	is.Equal(tab.Vertices(s), []nmg.VertexID{v})
}
