package render

import "github.com/janhubicka/colorscreen"

// BlurRGBPlane applies a separable Gaussian blur to a row-major RGB
// plane, used by the Realistic variant to soften a screen tile's hard
// element edges before superposing it on the scan (§4.H: "the blurred
// screen tile at that position"). Edge pixels are clamped (replicated)
// rather than wrapped, since this operates in image space rather than
// over one periodic tile.
func BlurRGBPlane(src []colorscreen.Rgb, width, height int, radiusX, radiusY float64) []colorscreen.Rgb {
	if len(src) != width*height {
		return src
	}
	if radiusX <= 0 && radiusY <= 0 {
		out := make([]colorscreen.Rgb, len(src))
		copy(out, src)
		return out
	}

	kernelX := cachedGaussianKernel(radiusX)
	kernelY := cachedGaussianKernel(radiusY)

	temp := make([]colorscreen.Rgb, width*height)
	blurHorizontalRGB(src, temp, width, height, kernelX)

	out := make([]colorscreen.Rgb, width*height)
	blurVerticalRGB(temp, out, width, height, kernelY)
	return out
}

func blurHorizontalRGB(src, dst []colorscreen.Rgb, width, height int, kernel []float32) {
	half := len(kernel) / 2
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			var acc colorscreen.Rgb
			for k, w := range kernel {
				sx := clampInt(x+k-half, 0, width-1)
				acc = acc.Add(src[row+sx].Scale(w))
			}
			dst[row+x] = acc
		}
	}
}

func blurVerticalRGB(src, dst []colorscreen.Rgb, width, height int, kernel []float32) {
	half := len(kernel) / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var acc colorscreen.Rgb
			for k, w := range kernel {
				sy := clampInt(y+k-half, 0, height-1)
				acc = acc.Add(src[sy*width+x].Scale(w))
			}
			dst[y*width+x] = acc
		}
	}
}

// BlurGrayPlane is BlurRGBPlane's scalar counterpart, used to soften a
// luminosity-only plane (e.g. a Fast-mode analyzer grid).
func BlurGrayPlane(src []float32, width, height int, radiusX, radiusY float64) []float32 {
	if len(src) != width*height {
		return src
	}
	if radiusX <= 0 && radiusY <= 0 {
		out := make([]float32, len(src))
		copy(out, src)
		return out
	}
	kernelX := cachedGaussianKernel(radiusX)
	kernelY := cachedGaussianKernel(radiusY)

	temp := make([]float32, width*height)
	halfX := len(kernelX) / 2
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			var acc float32
			for k, w := range kernelX {
				sx := clampInt(x+k-halfX, 0, width-1)
				acc += src[row+sx] * w
			}
			temp[row+x] = acc
		}
	}

	out := make([]float32, width*height)
	halfY := len(kernelY) / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var acc float32
			for k, w := range kernelY {
				sy := clampInt(y+k-halfY, 0, height-1)
				acc += temp[sy*width+x] * w
			}
			out[y*width+x] = acc
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
