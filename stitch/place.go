package stitch

import (
	"fmt"

	"github.com/janhubicka/colorscreen/transform"
)

// RegisterAll finds the best match between every horizontal and
// vertical pair of grid neighbors (§4.J.2), returning the matches keyed
// by the left/up tile's (row,col). Diagonal neighbors are cross-checked
// for consistency: the (dx,dy) reached via right-then-down must equal
// the one reached via down-then-right exactly, or the grid is
// inconsistent (§4.J.2: "mismatch is fatal").
func (pr *Project) RegisterAll() (horizontal, vertical map[[2]int]MatchResult, err error) {
	horizontal = make(map[[2]int]MatchResult)
	vertical = make(map[[2]int]MatchResult)

	for row := 0; row < pr.Rows; row++ {
		for col := 0; col < pr.Cols; col++ {
			if col+1 < pr.Cols {
				m, err := FindBestMatch(pr.At(row, col), pr.At(row, col+1), Right, pr.Params)
				if err != nil {
					return nil, nil, fmt.Errorf("stitch: registering (%d,%d)-(%d,%d): %w", row, col, row, col+1, err)
				}
				horizontal[[2]int{row, col}] = m
			}
			if row+1 < pr.Rows {
				m, err := FindBestMatch(pr.At(row, col), pr.At(row+1, col), Down, pr.Params)
				if err != nil {
					return nil, nil, fmt.Errorf("stitch: registering (%d,%d)-(%d,%d): %w", row, col, row+1, col, err)
				}
				vertical[[2]int{row, col}] = m
			}
		}
	}

	if err := checkDiagonals(pr, horizontal, vertical); err != nil {
		return nil, nil, err
	}
	return horizontal, vertical, nil
}

// checkDiagonals verifies that every 2x2 block of registered matches
// agrees on where its diagonal neighbor lands, whether reached via
// right-then-down or down-then-right (§4.J.2: mismatch is fatal).
func checkDiagonals(pr *Project, horizontal, vertical map[[2]int]MatchResult) error {
	for row := 0; row+1 < pr.Rows; row++ {
		for col := 0; col+1 < pr.Cols; col++ {
			right := horizontal[[2]int{row, col}]
			down := vertical[[2]int{row, col}]
			viaRightThenDown := vertical[[2]int{row, col + 1}]
			viaDownThenRight := horizontal[[2]int{row + 1, col}]

			dx1, dy1 := right.DX+viaRightThenDown.DX, right.DY+viaRightThenDown.DY
			dx2, dy2 := down.DX+viaDownThenRight.DX, down.DY+viaDownThenRight.DY
			if dx1 != dx2 || dy1 != dy2 {
				return fmt.Errorf("%w: diagonal at (%d,%d) disagrees: right-then-down=(%d,%d) down-then-right=(%d,%d)",
					ErrRegistrationMismatch, row, col, dx1, dy1, dx2, dy2)
			}
		}
	}
	return nil
}

// Place assigns every tile's XPos/YPos by chained addition of the
// registered shifts, with tile (0,0) fixed at the origin (§4.J.3).
func (pr *Project) Place(horizontal, vertical map[[2]int]MatchResult) {
	pr.At(0, 0).XPos, pr.At(0, 0).YPos = 0, 0

	for col := 1; col < pr.Cols; col++ {
		prev := pr.At(0, col-1)
		m := horizontal[[2]int{0, col - 1}]
		t := pr.At(0, col)
		t.XPos, t.YPos = prev.XPos+m.DX, prev.YPos+m.DY
	}
	for row := 1; row < pr.Rows; row++ {
		for col := 0; col < pr.Cols; col++ {
			var prev *PlacedTile
			var m MatchResult
			if col == 0 {
				prev = pr.At(row-1, 0)
				m = vertical[[2]int{row - 1, 0}]
			} else {
				// Every non-leftmost row derives its position from the
				// tile above once the leftmost column is placed, keeping
				// placement a single top-to-bottom, left-to-right sweep.
				prev = pr.At(row-1, col)
				m = vertical[[2]int{row - 1, col}]
			}
			t := pr.At(row, col)
			t.XPos, t.YPos = prev.XPos+m.DX, prev.YPos+m.DY
		}
	}
}

// Viewport is the union, in final output-image coordinates, of every
// placed tile's image range (§4.J.4).
type Viewport struct {
	XShift, YShift int
	Width, Height  int
}

// ComputeViewport unions every tile's transform.GetRange over its full
// screen-space extent, offset by its placement.
func (pr *Project) ComputeViewport() Viewport {
	minX, minY := int(^uint(0)>>1), int(^uint(0)>>1)
	maxX, maxY := -minX-1, -minY-1

	for _, t := range pr.Tiles {
		if t.Transform == nil || t.Analyzer == nil {
			continue
		}
		w, h := t.Analyzer.Dimensions()
		r := rangeOf(t.Transform, t.Analyzer.OriginX, t.Analyzer.OriginY, float64(w), float64(h))
		x0, y0 := r.XShift+t.XPos, r.YShift+t.YPos
		x1, y1 := x0+r.Width, y0+r.Height
		if x0 < minX {
			minX = x0
		}
		if y0 < minY {
			minY = y0
		}
		if x1 > maxX {
			maxX = x1
		}
		if y1 > maxY {
			maxY = y1
		}
	}
	if minX > maxX || minY > maxY {
		return Viewport{}
	}
	return Viewport{XShift: minX, YShift: minY, Width: maxX - minX, Height: maxY - minY}
}

func rangeOf(tr *transform.Transform, originX, originY, width, height float64) transform.Range {
	return tr.GetRange(originX, originY, width, height)
}
