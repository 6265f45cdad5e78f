package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/nmgkernel/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/pkg/errors"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms design script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: make-box -> make_box
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPrimitive wraps primitive node data so it can be returned from `box`,
// `prism` and `polyhedron` and named by `defpart`. Any other builtin that
// consumes a solid turns it into an anonymous node.
type sexpPrimitive struct {
	data graph.NodeData
}

func (p *sexpPrimitive) SexpString(ps *zygo.PrintState) string {
	switch d := p.data.(type) {
	case graph.BoxData:
		return fmt.Sprintf("(box %s)", d.Size)
	case graph.PrismData:
		return fmt.Sprintf("(prism %d points)", len(d.Base))
	case graph.PolyhedronData:
		return fmt.Sprintf("(polyhedron %d faces)", len(d.Faces))
	}
	return "(primitive)"
}
func (p *sexpPrimitive) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, errors.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer index from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, errors.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", errors.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, errors.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toVec3List extracts a list of vec3 values.
func toVec3List(s zygo.Sexp) ([]graph.Vec3, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]graph.Vec3, 0, len(items))
	for i, item := range items {
		v, err := toVec3(item)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, errors.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Graph construction
// ---------------------------------------------------------------------------

// builder accumulates nodes for a single evaluation. Anonymous node IDs are
// numbered per evaluation so the same source always yields the same IDs.
type builder struct {
	g     *graph.DesignGraph
	seq   int
	order []graph.NodeID
	used  map[graph.NodeID]bool
}

func newBuilder() *builder {
	return &builder{g: graph.New(), used: make(map[graph.NodeID]bool)}
}

// nodeID derives the ID for a new node from prefix/name, falling back to a
// numbered anonymous path when the node is unnamed or the path is taken.
func (b *builder) nodeID(prefix, name string) graph.NodeID {
	if name != "" {
		if id := graph.NewNodeID(prefix + "/" + name); b.g.Get(id) == nil {
			return id
		}
	}
	b.seq++
	return graph.NewNodeID(fmt.Sprintf("%s/_anon_%d", prefix, b.seq))
}

func (b *builder) add(n *graph.Node) *sexpNodeRef {
	b.g.AddNode(n)
	b.order = append(b.order, n.ID)
	for _, c := range n.Children {
		b.used[c] = true
	}
	return &sexpNodeRef{id: n.ID, name: n.Name}
}

func (b *builder) primitive(name string, data graph.NodeData) *sexpNodeRef {
	kind, _ := graph.PrimitiveOf(data)
	return b.add(&graph.Node{
		ID:   b.nodeID(kind.String(), name),
		Kind: graph.NodePrimitive,
		Name: name,
		Data: data,
	})
}

// solid resolves a builtin argument to a node, materialising bare
// primitives as anonymous nodes.
func (b *builder) solid(s zygo.Sexp) (graph.NodeID, error) {
	switch v := s.(type) {
	case *sexpNodeRef:
		return v.id, nil
	case *sexpPrimitive:
		return b.primitive("", v.data).id, nil
	}
	return graph.NodeID{}, errors.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

func (b *builder) solids(args []zygo.Sexp) ([]graph.NodeID, error) {
	ids := make([]graph.NodeID, 0, len(args))
	for i, a := range args {
		id, err := b.solid(a)
		if err != nil {
			return nil, errors.Wrapf(err, "operand %d", i+1)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// finish returns the graph. A script that declares no assembly gets every
// top-level solid, in creation order, as a root.
func (b *builder) finish() *graph.DesignGraph {
	if len(b.g.Roots) == 0 {
		for _, id := range b.order {
			if !b.used[id] {
				b.g.AddRoot(id)
			}
		}
	}
	return b.g
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the design DSL builtins into a zygomys
// environment. The builtins populate b's graph during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (tolerance :dist 0.001 :units "mm")
	// -----------------------------------------------------------------------
	env.AddFunction("tolerance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if v, ok := pa.kw["dist"]; ok {
			d, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, errors.Wrap(err, "tolerance: dist")
			}
			if d <= 0 {
				return zygo.SexpNull, errors.Errorf("tolerance: dist must be positive, got %g", d)
			}
			b.g.Defaults.Tolerance = d
		}
		if v, ok := pa.kw["units"]; ok {
			u, err := toString(v)
			if err != nil {
				return zygo.SexpNull, errors.Wrap(err, "tolerance: units")
			}
			b.g.Defaults.Units = u
		}
		return &zygo.SexpFloat{Val: b.g.Defaults.Tolerance}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, errors.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "vec3: x")
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "vec3: y")
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "vec3: z")
		}

		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 10 20 30))  or  (box 10 20 30)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var bd graph.BoxData

		if v, ok := pa.kw["size"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, errors.Wrap(err, "box: size")
			}
			bd.Size = vec
		} else if len(pa.positional) == 3 {
			var dims [3]float64
			for i, a := range pa.positional {
				f, err := toFloat64(a)
				if err != nil {
					return zygo.SexpNull, errors.Wrapf(err, "box: dimension %d", i+1)
				}
				dims[i] = f
			}
			bd.Size = graph.Vec3{X: dims[0], Y: dims[1], Z: dims[2]}
		} else {
			return zygo.SexpNull, errors.New("box requires :size or three dimensions")
		}

		return &sexpPrimitive{data: bd}, nil
	})

	// -----------------------------------------------------------------------
	// (prism :base (list (vec3 0 0 0) ...) :height (vec3 0 0 10))
	// -----------------------------------------------------------------------
	env.AddFunction("prism", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var pd graph.PrismData

		v, ok := pa.kw["base"]
		if !ok {
			return zygo.SexpNull, errors.New("prism requires :base")
		}
		base, err := toVec3List(v)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "prism: base")
		}
		pd.Base = base

		v, ok = pa.kw["height"]
		if !ok {
			return zygo.SexpNull, errors.New("prism requires :height")
		}
		if pd.Height, err = toVec3(v); err != nil {
			return zygo.SexpNull, errors.Wrap(err, "prism: height")
		}

		return &sexpPrimitive{data: pd}, nil
	})

	// -----------------------------------------------------------------------
	// (polyhedron :vertices (list (vec3 ...) ...) :faces (list (list 0 2 1) ...))
	// -----------------------------------------------------------------------
	env.AddFunction("polyhedron", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var pd graph.PolyhedronData

		v, ok := pa.kw["vertices"]
		if !ok {
			return zygo.SexpNull, errors.New("polyhedron requires :vertices")
		}
		verts, err := toVec3List(v)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "polyhedron: vertices")
		}
		pd.Vertices = verts

		v, ok = pa.kw["faces"]
		if !ok {
			return zygo.SexpNull, errors.New("polyhedron requires :faces")
		}
		faces, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "polyhedron: faces")
		}
		for i, f := range faces {
			idx, err := sexpListToSlice(f)
			if err != nil {
				return zygo.SexpNull, errors.Wrapf(err, "polyhedron: face %d", i)
			}
			face := make([]int, 0, len(idx))
			for _, s := range idx {
				k, err := toInt(s)
				if err != nil {
					return zygo.SexpNull, errors.Wrapf(err, "polyhedron: face %d", i)
				}
				face = append(face, k)
			}
			pd.Faces = append(pd.Faces, face)
		}

		return &sexpPrimitive{data: pd}, nil
	})

	// -----------------------------------------------------------------------
	// (defpart "name" (box ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, errors.New("defpart requires a name and a body expression")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "defpart: name")
		}
		if b.g.Lookup(partName) != nil {
			return zygo.SexpNull, errors.Errorf("defpart: %q is already defined", partName)
		}

		body, ok := args[1].(*sexpPrimitive)
		if !ok {
			return zygo.SexpNull, errors.Errorf("defpart: expected primitive expression, got %T", args[1])
		}

		return b.primitive(partName, body.data), nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, errors.New("part requires a name argument")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "part: name")
		}

		n := b.g.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, errors.Errorf("part: no part named %q", partName)
		}

		return &sexpNodeRef{id: n.ID, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (place (part "front") :at (vec3 0 0 19) :rotate (vec3 0 0 90))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, errors.New("place requires a solid as first argument")
		}

		childID, err := b.solid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "place")
		}

		td := graph.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, errors.Wrap(err, "place: at")
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, errors.Wrap(err, "place: rotate")
			}
			td.Rotation = &vec
		}

		childName := ""
		if child := b.g.Get(childID); child != nil {
			childName = child.Name
		}

		return b.add(&graph.Node{
			ID:       b.nodeID("place", childName),
			Kind:     graph.NodeTransform,
			Children: []graph.NodeID{childID},
			Data:     td,
		}), nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...)  (intersect a b ...)  (subtract a b ...)
	// An optional :name labels the result so `part` can find it.
	// -----------------------------------------------------------------------
	for _, op := range []graph.BoolOp{graph.OpUnion, graph.OpIntersect, graph.OpSubtract} {
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			var label string
			if v, ok := pa.kw["name"]; ok {
				s, err := toString(v)
				if err != nil {
					return zygo.SexpNull, errors.Wrapf(err, "%s: name", op)
				}
				label = s
			}
			if len(pa.positional) < 2 {
				return zygo.SexpNull, errors.Errorf("%s requires at least 2 solids, got %d", op, len(pa.positional))
			}
			children, err := b.solids(pa.positional)
			if err != nil {
				return zygo.SexpNull, errors.Wrap(err, op.String())
			}

			return b.add(&graph.Node{
				ID:       b.nodeID(op.String(), label),
				Kind:     graph.NodeBoolean,
				Name:     label,
				Children: children,
				Data:     graph.BooleanData{Op: op},
			}), nil
		})
	}

	// -----------------------------------------------------------------------
	// (assembly "name" (place ...) (union ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, errors.New("assembly requires a name argument")
		}

		asmName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "assembly: name")
		}

		children, err := b.solids(args[1:])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "assembly")
		}

		ref := b.add(&graph.Node{
			ID:       b.nodeID("assembly", asmName),
			Kind:     graph.NodeGroup,
			Name:     asmName,
			Children: children,
			Data:     graph.GroupData{},
		})
		b.g.AddRoot(ref.id)

		return ref, nil
	})
}
