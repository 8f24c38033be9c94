package transform

import (
	"math"
	"testing"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/screen"
)

func affineParams() Params {
	return DefaultParams(screen.Dufay, 100, 100,
		colorscreen.Vec2{X: 19, Y: 0}, colorscreen.Vec2{X: 0, Y: 24.5})
}

func TestRoundTripAffineOnly(t *testing.T) {
	tr, err := New(affineParams())
	if err != nil {
		t.Fatal(err)
	}
	pts := []colorscreen.Point{{X: 0, Y: 0}, {X: 5.5, Y: -3.2}, {X: -10, Y: 10}}
	for _, scr := range pts {
		img := tr.ToImg(scr)
		back := tr.ToScr(img)
		if math.Abs(back.X-scr.X) > 1e-4 || math.Abs(back.Y-scr.Y) > 1e-4 {
			t.Errorf("round trip failed for %+v: got %+v", scr, back)
		}
	}
}

func TestDegenerateBasisRejected(t *testing.T) {
	p := DefaultParams(screen.Paget, 0, 0,
		colorscreen.Vec2{X: 1, Y: 1}, colorscreen.Vec2{X: 2, Y: 2})
	_, err := New(p)
	if err != colorscreen.ErrDegenerate {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
}

func TestPixelSizePositive(t *testing.T) {
	tr, _ := New(affineParams())
	for _, scr := range []colorscreen.Point{{X: 0, Y: 0}, {X: 50, Y: -20}} {
		ps := tr.PixelSize(scr)
		if ps <= 0 {
			t.Errorf("pixel size must be positive, got %v at %+v", ps, scr)
		}
	}
}

func TestRoundTripWithRadialDistortion(t *testing.T) {
	p := affineParams()
	p.K1 = 1e-6
	tr, err := New(p)
	if err != nil {
		t.Fatal(err)
	}
	scr := colorscreen.Point{X: 20, Y: 15}
	img := tr.ToImg(scr)
	back := tr.ToScr(img)
	if math.Abs(back.X-scr.X) > 1e-3 || math.Abs(back.Y-scr.Y) > 1e-3 {
		t.Errorf("radial round trip drifted too far: want %+v got %+v", scr, back)
	}
}

func TestPatchProportionsNonDufayIsFull(t *testing.T) {
	p := DefaultParams(screen.Paget, 0, 0, colorscreen.Vec2{X: 1, Y: 0}, colorscreen.Vec2{X: 0, Y: 1})
	tr, _ := New(p)
	r, g, b := tr.PatchProportions()
	if r != 1 || g != 1 || b != 1 {
		t.Errorf("expected full proportions for non-Dufay screen, got %v %v %v", r, g, b)
	}
}

func TestMeshDisplacementBilinear(t *testing.T) {
	m := NewMesh(2, 2, 0, 0, 10, 10)
	m.SetDisplacement(1, 1, 2, 4)
	dx, dy := m.Displacement(5, 5)
	if math.Abs(dx-0.5) > 1e-9 || math.Abs(dy-1) > 1e-9 {
		t.Errorf("expected bilinear midpoint (0.5,1), got (%v,%v)", dx, dy)
	}
}
