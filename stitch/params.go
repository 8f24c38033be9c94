package stitch

import "github.com/janhubicka/colorscreen/screen"

// Direction names which side of a tile its neighbor sits on, used by
// FindBestMatch to orient the overlap band it searches.
type Direction uint8

const (
	Right Direction = iota
	Down
)

// Params is the shared registration/placement configuration §4.J names
// ("StitchingParams{type, borders, overlap %, min/max overlap %, num
// control points, max average/max pixel residual, ...}").
type Params struct {
	ScreenType screen.Type

	// Overlap is the nominal expected overlap fraction between adjacent
	// tiles; MinOverlap/MaxOverlap bound the brute-force search range
	// around it.
	Overlap, MinOverlap, MaxOverlap float64

	// NumControlPoints is a count of cpfind-style matched points; no code
	// in this package reads it.
	NumControlPoints int

	MaxAverageResidual float64
	MaxPixelResidual   float64

	// DiffAverageThreshold/DiffMaxThreshold gate §4.J.7's diff mode: an
	// overlap whose reported average or max per-channel difference
	// exceeds either is a fatal mismatch.
	DiffAverageThreshold float64
	DiffMaxThreshold     float64

	// CombinedOutput selects one merged TIFF; when false each tile is
	// written individually with position tags (§4.J.5).
	CombinedOutput bool

	// ResidentImageBudget is the maximum number of source images kept
	// decoded at once outside of an active stitching pass (§4.J.6: "at
	// most one ... image resident"). ResidencyCache.SetBudget changes the
	// budget; nothing in this package scales it during a pass.
	ResidentImageBudget int
}

// DefaultParams returns the conservative defaults spec.md implies:
// search the full [min,max] overlap band, a single resident image
// outside of an active pass, and zero tolerance for diagonal mismatch.
func DefaultParams(t screen.Type) Params {
	return Params{
		ScreenType:           t,
		Overlap:              0.1,
		MinOverlap:           0.03,
		MaxOverlap:           0.25,
		NumControlPoints:     8,
		MaxAverageResidual:   1.0,
		MaxPixelResidual:     3.0,
		DiffAverageThreshold: 0.05,
		DiffMaxThreshold:     0.25,
		ResidentImageBudget:  1,
	}
}
