package render

import "github.com/janhubicka/colorscreen"

// RenderTile paints an 8-bit-per-channel RGB tile of width x height
// pixels into pixelsOut, starting at image coordinates (xoffset,yoffset)
// with step image-pixels between output pixels, implementing the
// render_tile tile-painting API of §4.H. pixelsOut must hold at least
// stride*height bytes; stride may exceed width*3 to allow callers to
// paint into a larger backing buffer. Progress may be nil.
func RenderTile(r *Renderer, pixelsOut []byte, stride, width, height, xoffset, yoffset int, step float64, progress *colorscreen.ProgressHandle) error {
	if r == nil || pixelsOut == nil || width <= 0 || height <= 0 || stride < width*3 {
		return colorscreen.ErrInvalidParameters
	}
	if err := r.PrecomputeAll(progress); err != nil {
		return err
	}
	if progress != nil {
		progress.SetTask("render_tile", height)
	}

	for row := 0; row < height; row++ {
		if progress != nil && progress.CancelRequested() {
			return colorscreen.ErrCancelled
		}
		y := float64(yoffset) + float64(row)*step
		base := row * stride
		for col := 0; col < width; col++ {
			x := float64(xoffset) + float64(col)*step
			rgb := quantize(r.SamplePixelImg(x, y), 8)
			i := base + col*3
			pixelsOut[i] = byte(rgb[0])
			pixelsOut[i+1] = byte(rgb[1])
			pixelsOut[i+2] = byte(rgb[2])
		}
		if progress != nil {
			progress.IncProgress()
		}
	}
	return nil
}
