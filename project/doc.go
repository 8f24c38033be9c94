// Package project implements the CSP text project format (§4.K,§6) and
// the minimal Hugin .pto subset a stitcher can emit for cpfind-assisted
// registration. CSP round-trips a Document losslessly through Parse/
// Write; PTO is write-only, for an external cpfind pass. Nothing in this
// module reads cpfind's output back.
package project

import (
	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/detect"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/solver"
)

// Version is the only screen_alignment_version this package reads or
// writes.
const Version = 1

// Document is the in-memory form of one CSP project: the transform,
// detector and render parameters the original author tuned by hand, the
// solver's accumulated control points, and (for a stitch project) one
// record per tile.
type Document struct {
	ScreenType screen.Type

	ScreenShift              colorscreen.Vec2
	Coordinate1, Coordinate2 colorscreen.Vec2
	TiltX, TiltY             colorscreen.Vec2 // tilt_x = (TiltXX,TiltXY), tilt_y = (TiltYX,TiltYY)
	K1                       float64

	Gamma            float64
	Presaturation    colorscreen.ColorMatrix
	Saturation       float64
	Brightness       float64
	ScreenBlurRadius float64
	GrayMin, GrayMax int

	// Precise selects analyze.Precise over analyze.Fast; the CSP keyword
	// is a bare boolean, not the full analyzer Mode enumeration.
	Precise bool

	ScreenCompensation bool
	AdjustLuminosity   bool
	MixGamma           float64
	MixWeights         colorscreen.Rgb

	// Detector and ControlPoints are the "detector/solver blocks" §6
	// mentions without detailing a keyword set; this package invents one
	// (documented in DESIGN.md) rather than leaving solver state
	// unpersisted.
	Detector     detect.Parameters
	ControlPoints []solver.ControlPoint

	// StitchTiles is empty for a single-image project.
	StitchTiles []StitchImageRecord
}

// StitchImageRecord is one tile's `stitch_image_*` record group (§6).
type StitchImageRecord struct {
	Filename           string
	Angle, Ratio       float64
	Position, Size     colorscreen.Vec2
	ScrSize, ScrShift  colorscreen.Vec2
}

// Default returns a Document with the same conservative defaults
// render.DefaultParameters/transform.DefaultParams/detect.DefaultParameters
// use elsewhere in this module.
func Default(t screen.Type) Document {
	return Document{
		ScreenType:    t,
		Coordinate1:   colorscreen.Vec2{X: 1, Y: 0},
		Coordinate2:   colorscreen.Vec2{X: 0, Y: 1},
		TiltX:         colorscreen.Vec2{X: 1, Y: 0},
		TiltY:         colorscreen.Vec2{X: 0, Y: 1},
		Gamma:         1,
		Presaturation: colorscreen.IdentityColorMatrix(),
		Saturation:    1,
		GrayMax:       255,
		MixWeights:    colorscreen.Rgb{Red: 1, Green: 1, Blue: 1},
		Detector:      detect.DefaultParameters(),
	}
}
