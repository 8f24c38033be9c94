package analyze

import (
	"io"
	"math"

	"github.com/janhubicka/colorscreen/imagebuf"
)

// WriteDiagnosticTIFF emits the analyzer's RGB grids as a 16-bit TIFF
// (§4.G ancillary: "write a diagnostic TIFF of its screen"). When
// maskKnownOnly is set, cells the known-pixels bitmap marks as having no
// contributing sample are written as zero; otherwise every cell is
// written. Grid dimensions
// across channels can differ (Dufay doubles red), so the image is
// rasterized at the green channel's resolution and the other channels
// resampled onto it.
func (r *Result) WriteDiagnosticTIFF(w io.Writer, maskKnownOnly bool) error {
	width, height := r.green.width, r.green.height
	samples := make([]uint16, width*height*3)
	for ey := 0; ey < height; ey++ {
		for ex := 0; ex < width; ex++ {
			sx := float64(ex)/r.Geometry.ScaleY[1] + r.OriginX
			sy := float64(ey)/r.Geometry.ScaleY[1] + r.OriginY

			known := r.KnownAt(floorInt(sx-r.OriginX), floorInt(sy-r.OriginY))
			idx := (ey*width + ex) * 3
			if maskKnownOnly && !known {
				continue
			}
			rgb := r.RGBAt(sx, sy)
			samples[idx+0] = toUint16(rgb.Red)
			samples[idx+1] = toUint16(rgb.Green)
			samples[idx+2] = toUint16(rgb.Blue)
		}
	}
	return imagebuf.WriteTIFF16(w, samples, width, height, nil)
}

func toUint16(v float32) uint16 {
	f := float64(v) * 65535
	if f < 0 {
		return 0
	}
	if f > 65535 {
		return 65535
	}
	return uint16(math.Round(f))
}
