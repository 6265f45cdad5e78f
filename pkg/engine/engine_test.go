package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/nmgkernel/pkg/graph"
)

func TestEvaluateBuildsBooleanGraph(t *testing.T) {
	eng := NewEngine()

	g, evalErrs, err := eng.Evaluate(`
(def stock (box 20 20 10))
(def bore (place (box 4 4 30) :at (vec3 8 8 -10)))
(subtract :name "bored" stock bore)
`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if len(g.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(g.Roots))
	}
	root := g.Get(g.Roots[0])
	if root.Kind != graph.NodeBoolean || root.Name != "bored" {
		t.Errorf("root = %s %q, want Boolean \"bored\"", root.Kind, root.Name)
	}
}

func TestEvaluateReportsScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unclosed union", `(union (box 1 1 1) (box 2 2 2)`},
		{"unknown operand", `(subtract (box 2 2 2) drill)`},
		{"missing part", `(intersect (part "jaw") (box 1 1 1))`},
		{"single operand", `(union (box 1 1 1))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if g != nil {
				t.Error("expected nil graph on eval error")
			}
			if len(evalErrs) == 0 || evalErrs[0].Message == "" {
				t.Fatalf("expected a described eval error, got %v", evalErrs)
			}
		})
	}
}

func TestEvaluateSandboxesEachCall(t *testing.T) {
	eng := NewEngine()

	if _, evalErrs, err := eng.Evaluate(`(def post (box 1 1 5))`); err != nil || len(evalErrs) > 0 {
		t.Fatalf("first evaluation failed: %v %v", err, evalErrs)
	}
	// Definitions do not leak into the next run.
	g, evalErrs, err := eng.Evaluate(`(subtract (box 4 4 4) post)`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if g != nil || len(evalErrs) == 0 {
		t.Errorf("expected post to be undefined, got graph=%v errors=%v", g, evalErrs)
	}
}

func TestEvalErrorString(t *testing.T) {
	tests := []struct {
		err  EvalError
		want string
	}{
		{EvalError{Line: 5, Message: "union requires at least 2 solids"}, "line 5: union requires at least 2 solids"},
		{EvalError{Message: "no location"}, "no location"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short form", "line 3: box requires a size", 3, "box requires a size"},
		{"no line info", "  some generic error\n", 0, "some generic error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d", len(errs))
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if errs[0].Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestWaitWithTimeout(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(1)
	done := make(chan error, 1)

	// A channel that never delivers stands in for a runaway script.
	go func() {
		_, _, err := waitWithTimeout(make(chan evalResult), 1, &mu, &gen)
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "timed out") {
			t.Errorf("expected timeout error, got %v", err)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("waitWithTimeout did not give up")
	}
}

func TestWaitDiscardsSupersededResult(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)
	ch := make(chan evalResult, 1)
	ch <- evalResult{graph: graph.New()}

	g, _, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil || !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got %v", err)
	}
	if g != nil {
		t.Error("a superseded result should not return its graph")
	}
}

func TestEvaluateAllReportsValidation(t *testing.T) {
	eng := NewEngine()

	res, err := eng.EvaluateAll(`(defpart "flat" (box 0 10 10))`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if res.Graph == nil {
		t.Fatal("expected the graph to be returned alongside validation errors")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 validation error, got %v", res.Errors)
	}
	if !strings.Contains(res.Errors[0].Message, "must be positive") {
		t.Errorf("unexpected message %q", res.Errors[0].Message)
	}
}

func TestEvaluateAllWarnings(t *testing.T) {
	eng := NewEngine()

	res, err := eng.EvaluateAll(`(place (box 1 1 1) :at (vec3 0 0 0))`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].Message, "no translation") {
		t.Errorf("expected identity transform warning, got %v", res.Warnings)
	}
}

func TestEvaluateAllPassesScriptErrorsThrough(t *testing.T) {
	res, err := NewEngine().EvaluateAll(`(prism :base (list (vec3 0 0 0)))`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if res.Graph != nil {
		t.Error("expected no graph when the script fails")
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0].Message, "requires :height") {
		t.Errorf("expected the prism error, got %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("validation should not run on a failed script, got %v", res.Warnings)
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
