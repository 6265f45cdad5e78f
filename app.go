package main

import (
	"fmt"
	"log"

	"github.com/chazu/nmgkernel/pkg/boolean"
	"github.com/chazu/nmgkernel/pkg/engine"
	"github.com/chazu/nmgkernel/pkg/graph"
	"github.com/chazu/nmgkernel/pkg/kernel"
	"github.com/chazu/nmgkernel/pkg/kernel/nmgk"
	"github.com/chazu/nmgkernel/pkg/kernel/sdfx"
	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/chazu/nmgkernel/pkg/tessellate"
	"github.com/pkg/errors"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Kernel names accepted by Config.Kernel.
const (
	KernelNMG  = "nmg"
	KernelSDFX = "sdfx"
)

// Config selects the geometry backend and its settings.
type Config struct {
	Kernel string     // KernelNMG (default) or KernelSDFX
	Tol    float64    // distance tolerance; 0 takes the script's (tolerance ...) setting
	Cells  int        // marching cubes resolution for the SDF kernel
	Check  bool       // run the topology checker on every B-rep solid before meshing
	Tracer nmg.Tracer // nil disables tracing
}

// App drives the pipeline from script source to meshes.
type App struct {
	engine *engine.Engine
	cfg    Config
}

// MeshData is the serializable mesh format the CLI writes.
type MeshData struct {
	Vertices []float32 `json:"vertices" codec:"vertices"`
	Normals  []float32 `json:"normals" codec:"normals"`
	Indices  []uint32  `json:"indices" codec:"indices"`
	PartName string    `json:"partName" codec:"partName"`
	Color    string    `json:"color" codec:"color"`
}

// EvalErrorData is a serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line" codec:"line"`
	Col     int    `json:"col" codec:"col"`
	Message string `json:"message" codec:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes" codec:"meshes"`
	Errors   []EvalErrorData `json:"errors" codec:"errors"`
	Warnings []EvalErrorData `json:"warnings" codec:"warnings"`
}

// NewApp creates a new App on the NMG kernel with default settings.
func NewApp() *App {
	return NewAppWithConfig(Config{})
}

// NewAppWithConfig creates a new App with the given settings.
func NewAppWithConfig(cfg Config) *App {
	if cfg.Kernel == "" {
		cfg.Kernel = KernelNMG
	}
	return &App{
		engine: engine.NewEngine(),
		cfg:    cfg,
	}
}

// newKernel builds a fresh kernel for one evaluation. Each evaluation gets
// its own store so nothing leaks between runs.
func (a *App) newKernel(g *graph.DesignGraph) (kernel.Kernel, error) {
	tol := a.cfg.Tol
	if tol <= 0 {
		tol = g.Defaults.Tolerance
	}
	switch a.cfg.Kernel {
	case KernelNMG:
		k := nmgk.New(boolean.Options{Tol: nmg.NewTol(tol), Tracer: a.cfg.Tracer})
		k.SetCheck(a.cfg.Check)
		return k, nil
	case KernelSDFX:
		return sdfx.New(a.cfg.Cells), nil
	}
	return nil, errors.Errorf("unknown kernel %q", a.cfg.Kernel)
}

// Evaluate takes script source and returns mesh data plus errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	fail := func(msg string) EvalResult {
		result.Errors = append(result.Errors, EvalErrorData{Message: msg})
		return result
	}

	// Step 1: Evaluate the script into a validated design graph.
	res, err := a.engine.EvaluateAll(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		return fail(err.Error())
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    w.Line,
			Col:     w.Col,
			Message: w.Message,
		})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 2: Tessellate the design graph into triangle meshes.
	k, err := a.newKernel(res.Graph)
	if err != nil {
		return fail(err.Error())
	}
	meshes, err := tessellate.Tessellate(res.Graph, k)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		return fail("tessellation failed: " + err.Error())
	}

	// Step 3: Surface what the B-rep kernel had to skip.
	if nk, ok := k.(*nmgk.Kernel); ok {
		for _, f := range nk.Failures() {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: fmt.Sprintf("face pair not intersected: %v", f),
			})
		}
		for _, f := range nk.Findings() {
			if f.Severity == nmg.SeverityError {
				result.Errors = append(result.Errors, EvalErrorData{Message: f.Error()})
			} else {
				result.Warnings = append(result.Warnings, EvalErrorData{Message: f.Error()})
			}
		}
	}

	// Step 4: Convert kernel meshes to the output format.
	for _, m := range meshes {
		if m.IsEmpty() {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: fmt.Sprintf("part %q is empty", m.PartName),
			})
			continue
		}
		color := colorPalette[len(result.Meshes)%len(colorPalette)]
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    color,
		})
	}

	return result
}
