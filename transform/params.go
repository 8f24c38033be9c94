package transform

import (
	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/screen"
)

// Params is the screen-to-image transform parameter record (§3
// "Screen-to-image transform parameters"): a screen type, a 2D anchor
// in image pixels, two basis vectors mapping one screen step to image
// pixels, a small tilt matrix, a single radial-distortion coefficient,
// and optional Dufay-style sub-pixel strip widths.
type Params struct {
	ScreenType screen.Type

	CenterX, CenterY float64

	Coordinate1 colorscreen.Vec2
	Coordinate2 colorscreen.Vec2

	// TiltXX..TiltYY is the 2x2 tilt matrix applied after the lattice
	// basis and before the center translation.
	TiltXX, TiltXY, TiltYX, TiltYY float64

	K1 float64 // radial distortion coefficient

	StripWidth float64 // Dufay-style sub-pixel red-strip fraction, 0 if unused

	Mesh *Mesh // optional deformation mesh, nil if none
}

// DefaultParams returns a transform with an identity tilt, zero
// distortion, and the given lattice basis and anchor.
func DefaultParams(t screen.Type, centerX, centerY float64, c1, c2 colorscreen.Vec2) Params {
	return Params{
		ScreenType:  t,
		CenterX:     centerX,
		CenterY:     centerY,
		Coordinate1: c1,
		Coordinate2: c2,
		TiltXX:      1, TiltYY: 1,
	}
}

// Validate checks the "basis vectors must be linearly independent"
// invariant from §3.
func (p Params) Validate() error {
	cross := p.Coordinate1.X*p.Coordinate2.Y - p.Coordinate1.Y*p.Coordinate2.X
	if cross > -1e-9 && cross < 1e-9 {
		return colorscreen.ErrDegenerate
	}
	return nil
}
