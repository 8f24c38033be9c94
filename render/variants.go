package render

import (
	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/screen"
)

// originalColor returns the source scan's gamma-encoded pixel, bypassing
// the dye pipeline entirely (§4.H Variant "original": "the plain
// gamma-corrected scan, no screen model involved").
func originalColor(r *Renderer, x, y float64) colorscreen.Rgb {
	if r.Image.HasRGB() {
		return colorscreen.LinearToSRGBRgb(r.Image.GetImgRGBPixel(x, y))
	}
	v := sampleSourceLuminosityNearest(r, x, y)
	enc := colorscreen.LinearToSRGB(v)
	return colorscreen.Rgb{Red: enc, Green: enc, Blue: enc}
}

// previewGridColor blends the original scan with a schematic overlay of
// the screen lattice, for eyeballing registration (§4.H Variant
// "preview_grid").
func previewGridColor(r *Renderer, x, y float64) colorscreen.Rgb {
	base := originalColor(r, x, y)
	if r.Tile == nil {
		return base
	}
	scr := r.Transform.ToScr(colorscreen.Point{X: x, Y: y})
	fx := scr.X - floorF(scr.X)
	fy := scr.Y - floorF(scr.Y)
	const lineWidth = 0.03
	onGrid := fx < lineWidth || fx > 1-lineWidth || fy < lineWidth || fy > 1-lineWidth
	if !onGrid {
		return base
	}
	overlay := colorscreen.Rgb{Red: 1, Green: 1, Blue: 0}
	return base.Scale(0.5).Add(overlay.Scale(0.5))
}

// realisticDye multiplies the source scan's luminosity by the blurred
// screen tile color at that position, approximating what the emulsion
// dyes actually looked like under the screen (§4.H Variant "realistic").
func realisticDye(r *Renderer, x, y float64) colorscreen.Rgb {
	lum := sampleSourceLuminosity(r, x, y)
	if r.Tile == nil {
		return colorscreen.Rgb{Red: lum, Green: lum, Blue: lum}
	}
	scr := r.Transform.ToScr(colorscreen.Point{X: x, Y: y})
	tileColor := sampleBlurredTile(r, scr.X, scr.Y)
	return tileColor.Scale(lum)
}

// fastDye approximates realisticDye cheaply by averaging four corner
// samples of the covering screen element instead of running a blur
// (§4.H Variant "fast").
func fastDye(r *Renderer, x, y float64) colorscreen.Rgb {
	lum := sampleSourceLuminosity(r, x, y)
	if r.Tile == nil {
		return colorscreen.Rgb{Red: lum, Green: lum, Blue: lum}
	}
	scr := r.Transform.ToScr(colorscreen.Point{X: x, Y: y})
	const n = screen.TileSize
	ix := int(scr.X * n)
	iy := int(scr.Y * n)
	c00 := r.Tile.ApplyRGB(ix, iy, 1)
	c10 := r.Tile.ApplyRGB(ix+1, iy, 1)
	c01 := r.Tile.ApplyRGB(ix, iy+1, 1)
	c11 := r.Tile.ApplyRGB(ix+1, iy+1, 1)
	avg := c00.Add(c10).Add(c01).Add(c11).Scale(0.25)
	return avg.Scale(lum)
}

// interpolatedDye reads the analyzer's continuous per-channel estimate
// directly, weighted by each screen element's area proportion (§4.H
// Variant "interpolated").
func interpolatedDye(r *Renderer, x, y float64) colorscreen.Rgb {
	if r.Analyzer == nil {
		lum := sampleSourceLuminosity(r, x, y)
		return colorscreen.Rgb{Red: lum, Green: lum, Blue: lum}
	}
	scr := r.Transform.ToScr(colorscreen.Point{X: x, Y: y})
	pr, pg, pb := r.Transform.PatchProportions()
	return r.Analyzer.BicubicInterpolate(scr.X, scr.Y, pr, pg, pb)
}

// predictiveColor multiplies the interpolated dye estimate back by the
// screen tile and gamma-encodes it directly rather than running the full
// white-balance/presaturation/dye-model pipeline, approximating what a
// scanner with no color-dye deconvolution would have captured (§4.H
// Variant "predictive").
func predictiveColor(r *Renderer, x, y float64) colorscreen.Rgb {
	dye := interpolatedDye(r, x, y)
	if r.Tile == nil {
		return colorscreen.LinearToSRGBRgb(dye.Clamp01())
	}
	scr := r.Transform.ToScr(colorscreen.Point{X: x, Y: y})
	tileColor := sampleBlurredTile(r, scr.X, scr.Y)
	predicted := dye.Mul(tileColor)
	return colorscreen.LinearToSRGBRgb(predicted.Clamp01())
}

// combinedDye rescales the interpolated dye estimate's luminance to
// match the actual scan luminance at that point, combining the
// analyzer's color estimate with the scan's native sharpness (§4.H
// Variant "combined").
func combinedDye(r *Renderer, x, y float64) colorscreen.Rgb {
	dye := interpolatedDye(r, x, y)
	actualLum := sampleSourceLuminosity(r, x, y)
	dyeLum := dye.Luminance()
	if dyeLum < 1e-6 {
		return colorscreen.Rgb{Red: actualLum, Green: actualLum, Blue: actualLum}
	}
	return dye.Scale(actualLum / dyeLum)
}

// diffColor visualizes where the interpolated estimate departs from the
// original scan, centered at mid-gray (§4.H Variant "diff"):
// 0.25 + 4*brightness*(interpolated-original), clamped to [0,1].
func diffColor(r *Renderer, x, y float64) colorscreen.Rgb {
	interp := interpolatedDye(r, x, y)
	orig := originalColor(r, x, y)
	brightness := float32(r.Params.Brightness)
	if brightness == 0 {
		brightness = 1
	}
	mix := func(i, o float32) float32 {
		v := 0.25 + 4*brightness*(i-o)
		return clampF(v, 0, 1)
	}
	return colorscreen.Rgb{
		Red:   mix(interp.Red, orig.Red),
		Green: mix(interp.Green, orig.Green),
		Blue:  mix(interp.Blue, orig.Blue),
	}
}

func sampleSourceLuminosity(r *Renderer, x, y float64) float32 {
	if r.Image.HasRGB() {
		return r.Image.GetImgRGBPixel(x, y).Luminance()
	}
	return r.Image.GetGrayPixel(int(x+0.5), int(y+0.5))
}

func sampleSourceLuminosityNearest(r *Renderer, x, y float64) float32 {
	ix, iy := int(x+0.5), int(y+0.5)
	if ix < 0 {
		ix = 0
	}
	if iy < 0 {
		iy = 0
	}
	return r.Image.GetGrayPixel(ix, iy)
}

// sampleBlurredTile bilinearly samples the renderer's precomputed
// blurred tile plane, falling back to an unblurred sample if no blur
// radius was configured.
func sampleBlurredTile(r *Renderer, scrX, scrY float64) colorscreen.Rgb {
	if r.blurredTile == nil {
		const n = screen.TileSize
		ix := int(scrX * n)
		iy := int(scrY * n)
		return r.Tile.ApplyRGB(ix, iy, 1)
	}
	fx := scrX * float64(r.blurredW)
	fy := scrY * float64(r.blurredH)
	x0 := clampInt(int(fx), 0, r.blurredW-1)
	y0 := clampInt(int(fy), 0, r.blurredH-1)
	x1 := clampInt(x0+1, 0, r.blurredW-1)
	y1 := clampInt(y0+1, 0, r.blurredH-1)
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	c00 := r.blurredTile[y0*r.blurredW+x0]
	c10 := r.blurredTile[y0*r.blurredW+x1]
	c01 := r.blurredTile[y1*r.blurredW+x0]
	c11 := r.blurredTile[y1*r.blurredW+x1]
	top := c00.Lerp(c10, tx)
	bottom := c01.Lerp(c11, tx)
	return top.Lerp(bottom, ty)
}

func floorF(v float64) float64 {
	i := float64(int64(v))
	if v < 0 && i != v {
		i--
	}
	return i
}
