package colorscreen

import "math"

// SRGBToLinear converts a single sRGB component in [0,1] to linear light
// (the EOTF: Electro-Optical Transfer Function).
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

// LinearToSRGB converts a single linear component in [0,1] to sRGB
// (the OETF: Opto-Electronic Transfer Function).
func LinearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*float32(math.Pow(float64(l), 1.0/2.4)) - 0.055
}

// SRGBToLinearRgb converts a whole color from sRGB to linear space.
func SRGBToLinearRgb(c Rgb) Rgb {
	return Rgb{SRGBToLinear(c.Red), SRGBToLinear(c.Green), SRGBToLinear(c.Blue)}
}

// LinearToSRGBRgb converts a whole color from linear to sRGB space.
func LinearToSRGBRgb(c Rgb) Rgb {
	return Rgb{LinearToSRGB(c.Red), LinearToSRGB(c.Green), LinearToSRGB(c.Blue)}
}

// GammaToLinear applies a simple power-law gamma (as opposed to the
// two-segment sRGB curve) to a single raw component already normalized
// to [0,1]. gamma is the scan gamma tag (§4.B), e.g. 2.2 for sGray scans
// and 1.0 for scans that are already linear.
func GammaToLinear(v float32, gamma float64) float32 {
	if gamma <= 0 || v <= 0 {
		return 0
	}
	return float32(math.Pow(float64(v), gamma))
}

// xyzToSRGBMatrix is the standard CIE XYZ (D65) to linear sRGB matrix.
var xyzToSRGBMatrix = [3][3]float32{
	{3.2404542, -1.5371385, -0.4985314},
	{-0.9692660, 1.8760108, 0.0415560},
	{0.0556434, -0.2040259, 1.0572252},
}

// sRGBToXYZMatrix is its inverse, linear sRGB to CIE XYZ (D65).
var sRGBToXYZMatrix = [3][3]float32{
	{0.4124564, 0.3575761, 0.1804375},
	{0.2126729, 0.7151522, 0.0721750},
	{0.0193339, 0.1191920, 0.9503041},
}

// XyzToLinearRgb converts a CIE XYZ tristimulus value to linear sRGB.
// The result is not clamped; out-of-gamut inputs produce components
// outside [0,1].
func XyzToLinearRgb(c Xyz) Rgb {
	m := &xyzToSRGBMatrix
	return Rgb{
		Red:   m[0][0]*c.X + m[0][1]*c.Y + m[0][2]*c.Z,
		Green: m[1][0]*c.X + m[1][1]*c.Y + m[1][2]*c.Z,
		Blue:  m[2][0]*c.X + m[2][1]*c.Y + m[2][2]*c.Z,
	}
}

// LinearRgbToXyz converts a linear sRGB color to CIE XYZ.
func LinearRgbToXyz(c Rgb) Xyz {
	m := &sRGBToXYZMatrix
	return Xyz{
		X: m[0][0]*c.Red + m[0][1]*c.Green + m[0][2]*c.Blue,
		Y: m[1][0]*c.Red + m[1][1]*c.Green + m[1][2]*c.Blue,
		Z: m[2][0]*c.Red + m[2][1]*c.Green + m[2][2]*c.Blue,
	}
}
