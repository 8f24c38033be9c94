package render

import (
	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/internal/parallel"
)

// supersample is the per-axis sample count used to antialias each
// downscaled output pixel (§4.H: "each destination pixel integrates
// several evenly spaced samples of the source function rather than
// point-sampling it").
const supersample = 3

// Downscale fills dst (dstW x dstH, row-major) by supersampling getPixel
// over image-space coordinates, starting at (originX,originY) with a
// fixed pixelSize step between destination pixels. This is the shared
// downscale template named in §4.H, used by Renderer.GetColorData for
// every variant; package stitch does not call it. Rows are
// banded across pool's workers when pool is non-nil; pool may be nil for
// small or single-threaded call sites.
func Downscale(dst []colorscreen.Rgb, originX, originY float64, dstW, dstH int, pixelSize float64, getPixel func(x, y float64) colorscreen.Rgb, pool *parallel.WorkerPool) {
	if len(dst) != dstW*dstH || dstW <= 0 || dstH <= 0 {
		return
	}
	step := pixelSize / supersample
	half := step * (supersample - 1) / 2

	paintRow := func(row int) {
		py := originY + float64(row)*pixelSize
		for col := 0; col < dstW; col++ {
			px := originX + float64(col)*pixelSize
			var acc colorscreen.Rgb
			for sy := 0; sy < supersample; sy++ {
				sampleY := py - half + float64(sy)*step
				for sx := 0; sx < supersample; sx++ {
					sampleX := px - half + float64(sx)*step
					acc = acc.Add(getPixel(sampleX, sampleY))
				}
			}
			dst[row*dstW+col] = acc.Scale(1.0 / float32(supersample*supersample))
		}
	}

	if pool == nil || dstH < 2 {
		for row := 0; row < dstH; row++ {
			paintRow(row)
		}
		return
	}

	work := make([]func(), dstH)
	for row := 0; row < dstH; row++ {
		row := row
		work[row] = func() { paintRow(row) }
	}
	pool.ExecuteAll(work)
}
