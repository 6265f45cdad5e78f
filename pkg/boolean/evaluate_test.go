package boolean

import (
	"errors"
	"testing"

	"github.com/chazu/nmgkernel/pkg/nmg"
	"github.com/cheekybits/is"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestEvaluateVolumes(t *testing.T) {
	tests := []struct {
		name     string
		min, max v3.Vec
		op       Op
		want     float64
	}{
		{"shifted union", vec(0.5, 0, 0), vec(1.5, 1, 1), Union, 1.5},
		{"shifted intersect", vec(0.5, 0, 0), vec(1.5, 1, 1), Intersect, 0.5},
		{"shifted subtract", vec(0.5, 0, 0), vec(1.5, 1, 1), Subtract, 0.5},
		{"poke through subtract", vec(0.5, 0.25, 0.25), vec(1.5, 0.75, 0.75), Subtract, 1 - 0.125},
		{"poke through union", vec(0.5, 0.25, 0.25), vec(1.5, 0.75, 0.75), Union, 1 + 0.125},
		{"poke through intersect", vec(0.5, 0.25, 0.25), vec(1.5, 0.75, 0.75), Intersect, 0.125},
		{"contained subtract", vec(0.25, 0.25, 0.25), vec(0.75, 0.75, 0.75), Subtract, 1 - 0.125},
		{"contained intersect", vec(0.25, 0.25, 0.25), vec(0.75, 0.75, 0.75), Intersect, 0.125},
		{"disjoint union", vec(3, 3, 3), vec(4, 4, 4), Union, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := nmg.NewStore()
			_, a, b := twoBoxes(t, s, tt.min, tt.max)
			res, err := Evaluate(s, a, b, tt.op, Options{})
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if len(res.Report.Failures) != 0 {
				t.Errorf("Evaluate: %d face pairs failed: %v", len(res.Report.Failures), res.Report.Failures)
			}
			if res.Shell == 0 {
				t.Fatal("Evaluate returned an empty result")
			}
			vol, err := SignedVolume(s, res.Shell)
			if err != nil {
				t.Fatalf("SignedVolume: %v", err)
			}
			if !near(vol, tt.want) {
				t.Errorf("volume = %v, want %v", vol, tt.want)
			}
		})
	}
}

func TestEvaluateEmptyIntersection(t *testing.T) {
	is := is.New(t)
	s := nmg.NewStore()
	_, a, b := twoBoxes(t, s, vec(3, 3, 3), vec(4, 4, 4))
	regions := s.Live().Regions

	res, err := Evaluate(s, a, b, Intersect, Options{})
	is.NoErr(err)
	is.Equal(res.Shell, nmg.ShellID(0))
	is.Equal(res.Kept, 0)
	is.Equal(res.Dropped, 12)
	is.Equal(s.Live().Regions, regions)
}

func TestEvaluateResultIsValid(t *testing.T) {
	is := is.New(t)
	s := nmg.NewStore()
	m, a, b := twoBoxes(t, s, vec(0.5, 0, 0), vec(1.5, 1, 1))
	res, err := Evaluate(s, a, b, Union, Options{})
	is.NoErr(err)
	is.True(res.Kept > 0)
	is.True(res.Dropped > 0)
	is.Equal(s.Region(res.Region).Model, m)
	mustValid(t, s, m)
}

func TestParseOp(t *testing.T) {
	for _, op := range []Op{Union, Intersect, Subtract} {
		got, err := ParseOp(op.String())
		if err != nil || got != op {
			t.Errorf("ParseOp(%q) = %v, %v, want %v", op.String(), got, err, op)
		}
	}
	if _, err := ParseOp("xor"); !errors.Is(err, nmg.ErrUnsupported) {
		t.Errorf("ParseOp(xor) error = %v, want unsupported", err)
	}
}
