package render

import "github.com/janhubicka/colorscreen"

// pipeline holds the precomputed state of the §4.H color pipeline:
// white-balance multiply -> presaturation matrix -> dye->XYZ ->
// XYZ->sRGB -> optional characteristics curve -> clamp -> output gamma.
type pipeline struct {
	whiteBalance  colorscreen.ColorMatrix
	presaturation colorscreen.ColorMatrix
	model         colorscreen.ColorModel
	curve         func(float32) float32
	outputLUT     *colorscreen.GammaLUT
}

func buildPipeline(p Parameters, outputLUT *colorscreen.GammaLUT) pipeline {
	wb := colorscreen.ScaleColorMatrix(p.WhiteBalance.Red, p.WhiteBalance.Green, p.WhiteBalance.Blue)
	sat := saturationMatrix(p.Saturation)
	bright := colorscreen.TranslateColorMatrix(float32(p.Brightness), float32(p.Brightness), float32(p.Brightness))
	pre := p.Presaturation.Compose(sat).Compose(bright)
	return pipeline{
		whiteBalance:  wb,
		presaturation: pre,
		model:         p.ColorModel,
		curve:         p.CharacteristicsCurve,
		outputLUT:     outputLUT,
	}
}

// saturationMatrix builds a matrix that scales chroma around Rec. 709
// luminance by s (s=1 leaves the color unchanged, s=0 desaturates to
// gray).
func saturationMatrix(s float32) colorscreen.ColorMatrix {
	const lr, lg, lb = 0.2126, 0.7152, 0.0722
	inv := 1 - s
	return colorscreen.NewColorMatrix([4][4]float32{
		{inv*lr + s, inv * lg, inv * lb, 0},
		{inv * lr, inv*lg + s, inv * lb, 0},
		{inv * lr, inv * lg, inv*lb + s, 0},
		{0, 0, 0, 1},
	})
}

// apply runs dye through the full pipeline and returns a clamped,
// gamma-encoded color ready for quantization.
func (pl pipeline) apply(dye colorscreen.Rgb) colorscreen.Rgb {
	balanced := pl.whiteBalance.Apply(dye)
	presaturated := pl.presaturation.Apply(balanced)
	xyz := pl.model.DyeToXYZ(presaturated)
	srgbLinear := colorscreen.XyzToLinearRgb(xyz)

	if pl.curve != nil {
		srgbLinear = colorscreen.Rgb{
			Red:   pl.curve(srgbLinear.Red),
			Green: pl.curve(srgbLinear.Green),
			Blue:  pl.curve(srgbLinear.Blue),
		}
	}

	clamped := srgbLinear.Clamp01()
	return colorscreen.LinearToSRGBRgb(clamped)
}

// quantize converts a [0,1]-range sRGB color to the output bit depth.
func quantize(c colorscreen.Rgb, bitDepth int) [3]uint16 {
	max := float32((1 << uint(bitDepth)) - 1)
	return [3]uint16{
		uint16(clampF(c.Red*max, 0, max) + 0.5),
		uint16(clampF(c.Green*max, 0, max) + 0.5),
		uint16(clampF(c.Blue*max, 0, max) + 0.5),
	}
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
