package detect

import "github.com/janhubicka/colorscreen"

// Class is a per-pixel color classification.
type Class uint8

const (
	Unknown Class = iota
	ClassRed
	ClassGreen
	ClassBlue
	ClassBlack
)

// Parameters carries the known "signature colors" of the black/red/
// green/blue patches plus a gamma, and the alternate-overlap-metric flag
// (§9 Open Question; default false matches the historical #if 1 path).
type Parameters struct {
	Black, Red, Green, Blue colorscreen.Rgb
	Gamma                   float64

	MinPatchArea int // minimum surviving component size, default 5 (§4.E.2)

	BorderX, BorderY int // pixels excluded near the scan border (§4.E edge policy)

	// UseAlternateOverlapMetric is carried for project round-tripping;
	// no detection code reads it, so detection behaves the same either way.
	UseAlternateOverlapMetric bool
}

// DefaultParameters returns sensible defaults matching §4.E's stated
// minimum patch area of 5 pixels.
func DefaultParameters() Parameters {
	return Parameters{Gamma: 2.2, MinPatchArea: 5}
}

// classifyPixel projects c onto the dye basis (nearest of the four
// signature colors by squared Euclidean distance) and returns that class.
func classifyPixel(c colorscreen.Rgb, p Parameters) Class {
	best := Unknown
	bestDist := float32(-1)
	check := func(cl Class, ref colorscreen.Rgb) {
		d := sqDist(c, ref)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = cl
		}
	}
	check(ClassBlack, p.Black)
	check(ClassRed, p.Red)
	check(ClassGreen, p.Green)
	check(ClassBlue, p.Blue)
	return best
}

func sqDist(a, b colorscreen.Rgb) float32 {
	dr, dg, db := a.Red-b.Red, a.Green-b.Green, a.Blue-b.Blue
	return dr*dr + dg*dg + db*db
}

// Classify builds the per-pixel classification map for an image sampled
// via getPixel(x,y), agreeing with a pixel's 3x3 neighborhood before
// committing to a class (§4.E.1: "pixel is classified only when its 3x3
// neighbors agree").
func Classify(width, height int, getPixel func(x, y int) colorscreen.Rgb, p Parameters) []Class {
	raw := make([]Class, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			raw[y*width+x] = classifyPixel(getPixel(x, y), p)
		}
	}

	out := make([]Class, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			center := raw[y*width+x]
			agree := true
			for dy := -1; dy <= 1 && agree; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					if raw[ny*width+nx] != center {
						agree = false
						break
					}
				}
			}
			if agree {
				out[y*width+x] = center
			} else {
				out[y*width+x] = Unknown
			}
		}
	}
	return out
}
