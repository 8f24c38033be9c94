package solver

import (
	"math"
	"testing"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/transform"
)

func baseParams() transform.Params {
	return transform.DefaultParams(screen.Paget, 100, 100,
		colorscreen.Vec2{X: 8, Y: 0}, colorscreen.Vec2{X: 0, Y: 8})
}

func TestRunInsufficientPoints(t *testing.T) {
	s := New()
	s.AddPoint(colorscreen.Point{X: 1, Y: 1}, colorscreen.Point{X: 1, Y: 1}, TagDetected, false)
	_, err := s.Run(baseParams(), Freedoms{Translation: true, Basis: true})
	if err != colorscreen.ErrInsufficientPoints {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
}

func TestRunRecoversKnownAffineTransform(t *testing.T) {
	want := transform.DefaultParams(screen.Paget, 120, 90,
		colorscreen.Vec2{X: 9.5, Y: 0.3}, colorscreen.Vec2{X: -0.2, Y: 9.7})
	tr, err := transform.New(want)
	if err != nil {
		t.Fatalf("transform.New(want) failed: %v", err)
	}

	s := New()
	scrPts := []colorscreen.Point{
		{X: -5, Y: -5}, {X: 5, Y: -5}, {X: -5, Y: 5}, {X: 5, Y: 5}, {X: 0, Y: 0},
	}
	for _, sp := range scrPts {
		s.AddPoint(tr.ToImg(sp), sp, TagDetected, false)
	}

	seed := transform.DefaultParams(screen.Paget, 100, 100,
		colorscreen.Vec2{X: 8, Y: 0}, colorscreen.Vec2{X: 0, Y: 8})
	result, err := s.Run(seed, Freedoms{Translation: true, Basis: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, r := range result.Residuals {
		if r > 1e-2 {
			t.Errorf("residual[%d] = %v, want < 1e-2", i, r)
		}
	}

	gotTr, err := transform.New(result.Params)
	if err != nil {
		t.Fatalf("transform.New(result.Params) failed: %v", err)
	}
	for _, sp := range scrPts {
		got := gotTr.ToImg(sp)
		want := tr.ToImg(sp)
		if math.Abs(got.X-want.X) > 1e-2 || math.Abs(got.Y-want.Y) > 1e-2 {
			t.Errorf("ToImg(%v) = %v, want %v", sp, got, want)
		}
	}
}

func TestRunWithK1Stage(t *testing.T) {
	want := baseParams()
	want.K1 = 1e-5
	tr, err := transform.New(want)
	if err != nil {
		t.Fatalf("transform.New(want) failed: %v", err)
	}

	s := New()
	for _, sp := range []colorscreen.Point{
		{X: -6, Y: -6}, {X: 6, Y: -6}, {X: -6, Y: 6}, {X: 6, Y: 6}, {X: 0, Y: 0}, {X: 3, Y: -3},
	} {
		s.AddPoint(tr.ToImg(sp), sp, TagDetected, false)
	}

	result, err := s.Run(baseParams(), Freedoms{Translation: true, Basis: true, K1: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, r := range result.Residuals {
		if r > 1e-1 {
			t.Errorf("residual[%d] = %v, want < 1e-1", i, r)
		}
	}
}

func TestRemovePoint(t *testing.T) {
	s := New()
	s.AddPoint(colorscreen.Point{X: 1, Y: 1}, colorscreen.Point{X: 1, Y: 1}, TagDetected, false)
	s.AddPoint(colorscreen.Point{X: 2, Y: 2}, colorscreen.Point{X: 2, Y: 2}, TagDetected, false)
	s.RemovePoint(0)
	pts := s.Points()
	if len(pts) != 1 || pts[0].ImagePoint.X != 2 {
		t.Fatalf("unexpected points after RemovePoint: %+v", pts)
	}
}

func TestNelderMeadMinimizesSimpleQuadratic(t *testing.T) {
	objective := func(v []float64) float64 {
		dx, dy := v[0]-3, v[1]-(-2)
		return dx*dx + dy*dy
	}
	fitted, ok := nelderMead(objective, []float64{0, 0})
	if !ok {
		t.Fatal("expected convergence")
	}
	if math.Abs(fitted[0]-3) > 1e-3 || math.Abs(fitted[1]+2) > 1e-3 {
		t.Errorf("fitted = %v, want [3, -2]", fitted)
	}
}
