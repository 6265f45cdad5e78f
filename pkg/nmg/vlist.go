package nmg

import v3 "github.com/deadsy/sdfx/vec/v3"

// VCmd is a plotting pen command.
type VCmd uint8

const (
	VMove VCmd = iota // lift the pen and move
	VDraw             // draw a line to the point
)

func (c VCmd) String() string {
	if c == VMove {
		return "move"
	}
	return "draw"
}

// VPoint is one entry of a vector list.
type VPoint struct {
	Cmd VCmd
	Pt  v3.Vec
}

// VList flattens sh into pen commands: every face loop (one use per face)
// as a closed polyline, then wire loops, then wire edges, then the lone
// vertex. Each loop starts with a move. Point loops and lone vertices
// produce a single move.
func (s *Store) VList(sh ShellID) ([]VPoint, error) {
	shell := s.Shell(sh)
	if shell == nil {
		return nil, notFound(KindShell, int32(sh))
	}
	var out []VPoint
	loop := func(lu LoopuseID) error {
		pts, err := s.LoopCoords(lu)
		if err != nil {
			return err
		}
		for i, p := range pts {
			cmd := VDraw
			if i == 0 {
				cmd = VMove
			}
			out = append(out, VPoint{cmd, p})
		}
		if len(pts) > 1 {
			out = append(out, VPoint{VDraw, pts[0]})
		}
		return nil
	}
	for _, fu := range s.OrientedFaceuses(sh) {
		for _, lu := range s.Loopuses(fu) {
			if err := loop(lu); err != nil {
				return nil, err
			}
		}
	}
	seen := make(map[LoopID]bool)
	for _, lu := range s.ShellLoopuses(sh) {
		l := s.loopuses.recs[lu].Loop
		if seen[l] {
			continue
		}
		seen[l] = true
		if err := loop(lu); err != nil {
			return nil, err
		}
	}
	drawn := make(map[EdgeID]bool)
	for _, eu := range s.ShellEdgeuses(sh) {
		e := s.edgeuses.recs[eu].Edge
		if drawn[e] {
			continue
		}
		drawn[e] = true
		a, ok1 := s.Coord(s.euVertex(eu))
		b, ok2 := s.Coord(s.EdgeuseEndVertex(eu))
		if !ok1 || !ok2 {
			return nil, degeneratef("wire edgeuse %d has unlocated vertices", eu)
		}
		out = append(out, VPoint{VMove, a}, VPoint{VDraw, b})
	}
	if shell.Vertexuse != 0 {
		if p, ok := s.Coord(s.vertexuses.recs[shell.Vertexuse].Vertex); ok {
			out = append(out, VPoint{VMove, p})
		}
	}
	return out, nil
}
