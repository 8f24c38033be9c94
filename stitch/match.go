package stitch

import (
	"fmt"
	"math"

	"github.com/janhubicka/colorscreen/screen"
)

// ErrRegistrationMismatch is returned when no integer offset within the
// configured overlap band scores acceptably, or a parity/diagonal
// consistency check fails (§4.J.2).
var ErrRegistrationMismatch = fmt.Errorf("stitch: registration mismatch")

// MatchResult is one pairwise registration outcome.
type MatchResult struct {
	DX, DY int
	Score  float64 // lower is better: weighted per-channel SSE after gain compensation
}

// FindBestMatch brute-forces the integer (dx,dy) pixel offset that best
// aligns right against left along direction, scoring by per-channel
// weighted SSE with per-channel gain compensation over each candidate's
// overlap band (§4.J.2). For Paget screens only offsets with even x+y
// are considered, matching the lattice's own periodicity.
func FindBestMatch(left, right *PlacedTile, direction Direction, p Params) (MatchResult, error) {
	if left.Analyzer == nil || right.Analyzer == nil {
		return MatchResult{}, fmt.Errorf("stitch: both tiles must be analyzed before registration")
	}
	lw, lh := left.Analyzer.Dimensions()

	var axisExtent int
	if direction == Right {
		axisExtent = lw
	} else {
		axisExtent = lh
	}
	minShift := int(float64(axisExtent) * p.MinOverlap)
	maxShift := int(float64(axisExtent) * p.MaxOverlap)
	if maxShift <= minShift {
		maxShift = minShift + 1
	}

	const perpSearch = 4 // small perpendicular search band to absorb minor misalignment
	best := MatchResult{Score: math.Inf(1)}
	found := false

	for shift := minShift; shift <= maxShift; shift++ {
		for perp := -perpSearch; perp <= perpSearch; perp++ {
			var dx, dy int
			if direction == Right {
				dx, dy = axisExtent-shift, perp
			} else {
				dx, dy = perp, axisExtent-shift
			}
			if p.ScreenType == screen.Paget && (dx+dy)%2 != 0 {
				continue
			}
			score, ok := overlapScore(left, right, dx, dy, lw, lh)
			if !ok {
				continue
			}
			found = true
			if score < best.Score {
				best = MatchResult{DX: dx, DY: dy, Score: score}
			}
		}
	}
	if !found {
		return MatchResult{}, ErrRegistrationMismatch
	}
	return best, nil
}

// overlapScore computes the gain-compensated weighted SSE between left
// and right's analyzer grids over the region where, shifted by (dx,dy),
// both tiles claim knowledge of the same screen-space cell.
func overlapScore(left, right *PlacedTile, dx, dy, lw, lh int) (float64, bool) {
	var sumSq [3]float64
	var sumL, sumR [3]float64
	var n [3]int

	for ey := 0; ey < lh; ey++ {
		ry := ey - dy
		if ry < 0 || ry >= lh {
			continue
		}
		for ex := 0; ex < lw; ex++ {
			rx := ex - dx
			if rx < 0 || rx >= lw {
				continue
			}
			if !left.Analyzer.KnownAt(ex, ey) || !right.Analyzer.KnownAt(rx, ry) {
				continue
			}
			lc := left.Analyzer.RGBAt(left.Analyzer.OriginX+float64(ex), left.Analyzer.OriginY+float64(ey))
			rc := right.Analyzer.RGBAt(right.Analyzer.OriginX+float64(rx), right.Analyzer.OriginY+float64(ry))
			lv, rv := [3]float32{lc.Red, lc.Green, lc.Blue}, [3]float32{rc.Red, rc.Green, rc.Blue}
			for ch := 0; ch < 3; ch++ {
				sumL[ch] += float64(lv[ch])
				sumR[ch] += float64(rv[ch])
				n[ch]++
			}
		}
	}

	total := n[0] + n[1] + n[2]
	if total == 0 {
		return 0, false
	}

	var gain [3]float64
	for ch := 0; ch < 3; ch++ {
		if sumL[ch] > 1e-9 {
			gain[ch] = sumR[ch] / sumL[ch]
		} else {
			gain[ch] = 1
		}
		if gain[ch] <= 0 {
			gain[ch] = 1
		}
	}

	for ey := 0; ey < lh; ey++ {
		ry := ey - dy
		if ry < 0 || ry >= lh {
			continue
		}
		for ex := 0; ex < lw; ex++ {
			rx := ex - dx
			if rx < 0 || rx >= lw {
				continue
			}
			if !left.Analyzer.KnownAt(ex, ey) || !right.Analyzer.KnownAt(rx, ry) {
				continue
			}
			lc := left.Analyzer.RGBAt(left.Analyzer.OriginX+float64(ex), left.Analyzer.OriginY+float64(ey))
			rc := right.Analyzer.RGBAt(right.Analyzer.OriginX+float64(rx), right.Analyzer.OriginY+float64(ry))
			lv, rv := [3]float32{lc.Red, lc.Green, lc.Blue}, [3]float32{rc.Red, rc.Green, rc.Blue}
			for ch := 0; ch < 3; ch++ {
				d := float64(lv[ch])*gain[ch] - float64(rv[ch])
				sumSq[ch] += d * d
			}
		}
	}

	score := (sumSq[0] + sumSq[1] + sumSq[2]) / float64(total)
	return score, true
}
