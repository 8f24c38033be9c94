package colorscreen

// Rgb is a color with single-precision components, logically in 0..1 but
// allowed to exceed that range during intermediate math (e.g. before a
// renderer clamps to its output curve).
type Rgb struct {
	Red, Green, Blue float32
}

// MakeRgb constructs an Rgb from its three components.
func MakeRgb(r, g, b float32) Rgb {
	return Rgb{Red: r, Green: g, Blue: b}
}

// Gray returns an achromatic Rgb with all channels set to l.
func Gray(l float32) Rgb {
	return Rgb{Red: l, Green: l, Blue: l}
}

// Add returns the component-wise sum of two colors.
func (c Rgb) Add(o Rgb) Rgb {
	return Rgb{c.Red + o.Red, c.Green + o.Green, c.Blue + o.Blue}
}

// Sub returns the component-wise difference of two colors.
func (c Rgb) Sub(o Rgb) Rgb {
	return Rgb{c.Red - o.Red, c.Green - o.Green, c.Blue - o.Blue}
}

// Mul returns the component-wise product of two colors.
func (c Rgb) Mul(o Rgb) Rgb {
	return Rgb{c.Red * o.Red, c.Green * o.Green, c.Blue * o.Blue}
}

// Scale returns the color scaled uniformly by s.
func (c Rgb) Scale(s float32) Rgb {
	return Rgb{c.Red * s, c.Green * s, c.Blue * s}
}

// MulAdd returns c*mult + add, the elementwise operation a screen tile
// entry applies to an unadjusted luminosity (see package screen).
func (c Rgb) MulAdd(mult, add Rgb) Rgb {
	return Rgb{
		Red:   c.Red*mult.Red + add.Red,
		Green: c.Green*mult.Green + add.Green,
		Blue:  c.Blue*mult.Blue + add.Blue,
	}
}

// Lerp performs component-wise linear interpolation between c and o.
func (c Rgb) Lerp(o Rgb, t float32) Rgb {
	return Rgb{
		Red:   c.Red + (o.Red-c.Red)*t,
		Green: c.Green + (o.Green-c.Green)*t,
		Blue:  c.Blue + (o.Blue-c.Blue)*t,
	}
}

// Luminance returns the Rec. 709 relative luminance of the color.
func (c Rgb) Luminance() float32 {
	return 0.2126*c.Red + 0.7152*c.Green + 0.0722*c.Blue
}

// Clamp01 clamps every component to [0,1].
func (c Rgb) Clamp01() Rgb {
	return Rgb{clamp32(c.Red, 0, 1), clamp32(c.Green, 0, 1), clamp32(c.Blue, 0, 1)}
}

// Xyz is a CIE XYZ tristimulus value with single-precision components.
type Xyz struct {
	X, Y, Z float32
}

// Add returns the component-wise sum of two tristimulus values.
func (x Xyz) Add(o Xyz) Xyz {
	return Xyz{x.X + o.X, x.Y + o.Y, x.Z + o.Z}
}

// Scale returns x scaled uniformly by s.
func (x Xyz) Scale(s float32) Xyz {
	return Xyz{x.X * s, x.Y * s, x.Z * s}
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
