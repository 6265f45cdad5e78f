package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chazu/nmgkernel/pkg/kernel"
	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
)

// Output formats accepted by -format.
const (
	FormatSTL     = "stl"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

func main() {
	in := flag.String("in", "-", "script to evaluate, - for stdin")
	out := flag.String("out", "", "output file; required for stl, stdout otherwise")
	format := flag.String("format", FormatSTL, "output format: stl, json or msgpack")
	tol := flag.Float64("tol", 0, "distance tolerance; 0 uses the script's setting")
	kern := flag.String("kernel", KernelNMG, "geometry kernel: nmg or sdfx")
	cells := flag.Int("cells", 0, "marching cubes resolution for the sdfx kernel")
	trace := flag.Bool("trace", false, "log kernel trace messages to stderr")
	validate := flag.Bool("validate", false, "check the topology of every solid")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("nmgkernel: ")

	source, err := readSource(*in)
	if err != nil {
		log.Fatal(err)
	}

	cfg := Config{Kernel: *kern, Tol: *tol, Cells: *cells, Check: *validate}
	if *trace {
		cfg.Tracer = nmg.NewLogTracer(log.New(os.Stderr, "", log.Lmicroseconds))
	}
	result := NewAppWithConfig(cfg).Evaluate(string(source))

	for _, w := range result.Warnings {
		log.Printf("warning: %s", describe(w))
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			log.Printf("error: %s", describe(e))
		}
		os.Exit(1)
	}

	if err := writeResult(result, *format, *out); err != nil {
		log.Fatal(err)
	}
}

func describe(e EvalErrorData) string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func readSource(path string) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return b, errors.Wrap(err, "reading stdin")
	}
	b, err := os.ReadFile(path)
	return b, errors.Wrapf(err, "reading %s", path)
}

// writeResult writes the meshes of result in the given format. STL merges
// every part into one file; the codec formats keep parts separate.
func writeResult(result EvalResult, format, path string) error {
	switch format {
	case FormatSTL:
		if path == "" {
			return errors.New("stl output needs -out")
		}
		return errors.Wrapf(render.SaveSTL(path, triangles(result.Meshes)), "writing %s", path)
	case FormatJSON:
		return encode(result.Meshes, &codec.JsonHandle{Indent: 2}, path)
	case FormatMsgpack:
		return encode(result.Meshes, &codec.MsgpackHandle{}, path)
	}
	return errors.Errorf("unknown output format %q", format)
}

func encode(v interface{}, h codec.Handle, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer f.Close()
		w = f
	}
	return errors.Wrap(codec.NewEncoder(w, h).Encode(v), "encoding meshes")
}

// triangles flattens every part into one triangle list.
func triangles(meshes []MeshData) []*sdf.Triangle3 {
	var all []*sdf.Triangle3
	for _, m := range meshes {
		km := kernel.Mesh{Vertices: m.Vertices, Normals: m.Normals, Indices: m.Indices}
		all = append(all, km.Triangles()...)
	}
	return all
}
