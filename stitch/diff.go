package stitch

import (
	"fmt"

	"github.com/janhubicka/colorscreen/render"
)

// DiffReport is one pairwise overlap comparison (§4.J.7).
type DiffReport struct {
	TileA, TileB         TileSpec
	AverageDiff, MaxDiff [3]float64 // per-channel, over the shared overlap region
	Width, Height, X, Y  int        // tile A's analyzer grid size and tile A's canvas position
}

// Diff compares every pair of registered grid neighbors over their
// shared overlap region, producing a difference image ((tileA-tileB)+mid,
// §4.J.7) and returning per-channel average/max statistics. It returns
// an error wrapping ErrRegistrationMismatch if any pair's average or max
// difference exceeds the configured thresholds.
//
// writeDiffImage, if non-nil, is called once per compared pair with the
// difference-image pixels (one row-major RGB plane at 8 bits per
// channel, mid-gray 128 is "no difference") so the caller can persist it
// to a file; it is never called when the pair has no overlap.
func Diff(pr *Project, renderers []*render.Renderer, horizontal, vertical map[[2]int]MatchResult, writeDiffImage func(a, b TileSpec, pixels []uint8, w, h int) error) ([]DiffReport, error) {
	var reports []DiffReport
	for row := 0; row < pr.Rows; row++ {
		for col := 0; col < pr.Cols; col++ {
			if col+1 < pr.Cols {
				m := horizontal[[2]int{row, col}]
				rep, err := diffPair(pr, renderers, row, col, row, col+1, m, writeDiffImage)
				if err != nil {
					return reports, err
				}
				if rep != nil {
					reports = append(reports, *rep)
				}
			}
			if row+1 < pr.Rows {
				m := vertical[[2]int{row, col}]
				rep, err := diffPair(pr, renderers, row, col, row+1, col, m, writeDiffImage)
				if err != nil {
					return reports, err
				}
				if rep != nil {
					reports = append(reports, *rep)
				}
			}
		}
	}
	return reports, nil
}

func diffPair(pr *Project, renderers []*render.Renderer, rowA, colA, rowB, colB int, m MatchResult, writeDiffImage func(a, b TileSpec, pixels []uint8, w, h int) error) (*DiffReport, error) {
	ta, tb := pr.At(rowA, colA), pr.At(rowB, colB)
	idxA, idxB := rowA*pr.Cols+colA, rowB*pr.Cols+colB
	ra, rb := renderers[idxA], renderers[idxB]
	if ra == nil || rb == nil || ta.Analyzer == nil || tb.Analyzer == nil {
		return nil, nil
	}

	aw, ah := ta.Analyzer.Dimensions()
	bw, bh := tb.Analyzer.Dimensions()
	if aw == 0 || ah == 0 || bw == 0 || bh == 0 {
		return nil, nil
	}

	var count int
	var sumAbs, maxAbs [3]float64
	var pixels []uint8
	var w, h int

	for ey := 0; ey < ah; ey++ {
		ry := ey - m.DY
		if ry < 0 || ry >= bh {
			continue
		}
		for ex := 0; ex < aw; ex++ {
			rx := ex - m.DX
			if rx < 0 || rx >= bw {
				continue
			}
			if !ta.Analyzer.KnownAt(ex, ey) || !tb.Analyzer.KnownAt(rx, ry) {
				continue
			}
			ca := ta.Analyzer.RGBAt(ta.Analyzer.OriginX+float64(ex), ta.Analyzer.OriginY+float64(ey))
			cb := tb.Analyzer.RGBAt(tb.Analyzer.OriginX+float64(rx), tb.Analyzer.OriginY+float64(ry))
			va, vb := [3]float32{ca.Red, ca.Green, ca.Blue}, [3]float32{cb.Red, cb.Green, cb.Blue}
			for ch := 0; ch < 3; ch++ {
				d := float64(va[ch] - vb[ch])
				ad := d
				if ad < 0 {
					ad = -ad
				}
				sumAbs[ch] += ad
				if ad > maxAbs[ch] {
					maxAbs[ch] = ad
				}
			}
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}

	rep := &DiffReport{TileA: ta.Spec, TileB: tb.Spec, X: ta.XPos, Y: ta.YPos, Width: aw, Height: ah}
	for ch := 0; ch < 3; ch++ {
		rep.AverageDiff[ch] = sumAbs[ch] / float64(count)
		rep.MaxDiff[ch] = maxAbs[ch]
	}

	if writeDiffImage != nil {
		w, h = aw, ah
		pixels = make([]uint8, w*h*3)
		for ey := 0; ey < ah; ey++ {
			ry := ey - m.DY
			if ry < 0 || ry >= bh {
				continue
			}
			for ex := 0; ex < aw; ex++ {
				rx := ex - m.DX
				if rx < 0 || rx >= bw {
					continue
				}
				if !ta.Analyzer.KnownAt(ex, ey) || !tb.Analyzer.KnownAt(rx, ry) {
					continue
				}
				ca := ta.Analyzer.RGBAt(ta.Analyzer.OriginX+float64(ex), ta.Analyzer.OriginY+float64(ey))
				cb := tb.Analyzer.RGBAt(tb.Analyzer.OriginX+float64(rx), tb.Analyzer.OriginY+float64(ry))
				va, vb := [3]float32{ca.Red, ca.Green, ca.Blue}, [3]float32{cb.Red, cb.Green, cb.Blue}
				off := (ey*w + ex) * 3
				for ch := 0; ch < 3; ch++ {
					d := float64(va[ch]-vb[ch]) + 0.5 // (tileA-tileB) + mid, mid = 0.5 in linear units
					pixels[off+ch] = quantize8(d)
				}
			}
		}
		if err := writeDiffImage(ta.Spec, tb.Spec, pixels, w, h); err != nil {
			return rep, fmt.Errorf("stitch: writing diff image for %q/%q: %w", ta.Spec.Path, tb.Spec.Path, err)
		}
	}

	for ch := 0; ch < 3; ch++ {
		if rep.AverageDiff[ch] > pr.Params.DiffAverageThreshold {
			return rep, fmt.Errorf("%w: %q/%q average diff %.4f exceeds threshold %.4f on channel %d",
				ErrRegistrationMismatch, ta.Spec.Path, tb.Spec.Path, rep.AverageDiff[ch], pr.Params.DiffAverageThreshold, ch)
		}
		if rep.MaxDiff[ch] > pr.Params.DiffMaxThreshold {
			return rep, fmt.Errorf("%w: %q/%q max diff %.4f exceeds threshold %.4f on channel %d",
				ErrRegistrationMismatch, ta.Spec.Path, tb.Spec.Path, rep.MaxDiff[ch], pr.Params.DiffMaxThreshold, ch)
		}
	}
	return rep, nil
}

func quantize8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
