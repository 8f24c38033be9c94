package stitch

import (
	"fmt"
	"math"

	"github.com/janhubicka/colorscreen/analyze"
	"github.com/janhubicka/colorscreen/imagebuf"
	"github.com/janhubicka/colorscreen/screen"
	"github.com/janhubicka/colorscreen/transform"
)

// TileSpec names one grid cell's source file before it has been loaded
// or analyzed.
type TileSpec struct {
	Path     string
	Row, Col int
}

// PlacedTile is one analyzed, registered grid cell (§4.J.1-3).
type PlacedTile struct {
	Spec       TileSpec
	Image      *imagebuf.Image
	Transform  *transform.Transform
	ScreenTile *screen.Tile
	Analyzer   *analyze.Result

	// XPos, YPos is this tile's offset, in image pixels, within the
	// shared screen frame (§4.J.3: "tile (0,0) is origin; others inherit
	// (xpos,ypos) ... by chained addition").
	XPos, YPos int
}

// AnalyzeFunc runs the detector/solver/analyzer pipeline (§4.E/F/G) over
// one loaded tile image and returns its screen-to-image transform,
// screen tile, and analyzer result.
type AnalyzeFunc func(img *imagebuf.Image) (*transform.Transform, *screen.Tile, *analyze.Result, error)

// Loader opens and decodes a tile's source image by path.
type Loader func(path string) (*imagebuf.Image, error)

// Project is an N×M grid of tiles sharing one set of StitchingParams
// (§4.J). Tiles is row-major, length Rows*Cols.
type Project struct {
	Params Params
	Rows   int
	Cols   int
	Tiles  []*PlacedTile

	Residency *ResidencyCache

	// PixelSize and RotationAdjustment are fixed by the first
	// successfully analyzed tile; every later tile must agree (§4.J.1).
	PixelSize          float64
	RotationAdjustment float64
	fixed              bool
}

// NewProject allocates a Project for the given grid shape. specs must
// have exactly rows*cols entries in row-major order.
func NewProject(p Params, rows, cols int, specs []TileSpec) (*Project, error) {
	if rows <= 0 || cols <= 0 || len(specs) != rows*cols {
		return nil, fmt.Errorf("stitch: grid shape %dx%d does not match %d specs", rows, cols, len(specs))
	}
	tiles := make([]*PlacedTile, len(specs))
	for i, s := range specs {
		tiles[i] = &PlacedTile{Spec: s}
	}
	return &Project{
		Params:    p,
		Rows:      rows,
		Cols:      cols,
		Tiles:     tiles,
		Residency: NewResidencyCache(p.ResidentImageBudget, nil),
	}, nil
}

// At returns the tile at (row,col), or nil if out of range.
func (pr *Project) At(row, col int) *PlacedTile {
	if row < 0 || col < 0 || row >= pr.Rows || col >= pr.Cols {
		return nil
	}
	return pr.Tiles[row*pr.Cols+col]
}

// AnalyzeAll loads and analyzes every tile in row-major order (§4.J.1).
// The first tile's pixel size and rotation adjustment (derived from its
// transform's tilt matrix) become the baseline stored on the Project; any later
// tile whose own values disagree beyond tolerance is a fatal error.
func (pr *Project) AnalyzeAll(load Loader, analyzeFn AnalyzeFunc) error {
	const tolerance = 1e-3
	for i, t := range pr.Tiles {
		img, err := load(t.Spec.Path)
		if err != nil {
			return fmt.Errorf("stitch: loading tile %q: %w", t.Spec.Path, err)
		}
		tr, tile, result, err := analyzeFn(img)
		if err != nil {
			return fmt.Errorf("stitch: analyzing tile %q: %w", t.Spec.Path, err)
		}
		t.Image, t.Transform, t.ScreenTile, t.Analyzer = img, tr, tile, result

		pixelSize := tr.PixelSize(tr.Params().Coordinate1.ToPoint())
		rotation := rotationOf(tr.Params())

		if !pr.fixed {
			pr.PixelSize, pr.RotationAdjustment, pr.fixed = pixelSize, rotation, true
			continue
		}
		if math.Abs(pixelSize-pr.PixelSize) > tolerance*pr.PixelSize {
			return fmt.Errorf("stitch: tile %d (%q) pixel size %.6f disagrees with baseline %.6f", i, t.Spec.Path, pixelSize, pr.PixelSize)
		}
		if math.Abs(rotation-pr.RotationAdjustment) > tolerance {
			return fmt.Errorf("stitch: tile %d (%q) rotation %.6f disagrees with baseline %.6f", i, t.Spec.Path, rotation, pr.RotationAdjustment)
		}
	}
	return nil
}

// rotationOf derives an overall rotation angle, in radians, from a
// transform's tilt matrix.
func rotationOf(p transform.Params) float64 {
	return math.Atan2(p.TiltYX, p.TiltXX)
}
