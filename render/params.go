package render

import "github.com/janhubicka/colorscreen"

// ScannerBlurMode selects which physical quantity ScannerBlurMap's
// scalars represent (§3 "Scanner-blur correction").
type ScannerBlurMode uint8

const (
	DeconvolutionRadius ScannerBlurMode = iota
	MTFDefocus
	BlurDiameter
)

// ScannerBlurMap is a regular 2D grid of per-region blur scalars,
// bilinearly interpolated the same way transform.Mesh interpolates
// displacement.
type ScannerBlurMap struct {
	Cols, Rows                     int
	OriginX, OriginY                float64
	StepX, StepY                    float64
	Mode                            ScannerBlurMode
	Values                           []float64
}

// NewScannerBlurMap allocates a zeroed grid covering [originX,originY]
// with the given step between samples.
func NewScannerBlurMap(cols, rows int, originX, originY, stepX, stepY float64, mode ScannerBlurMode) *ScannerBlurMap {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &ScannerBlurMap{
		Cols: cols, Rows: rows,
		OriginX: originX, OriginY: originY,
		StepX: stepX, StepY: stepY,
		Mode:   mode,
		Values: make([]float64, cols*rows),
	}
}

// Set assigns the scalar at grid cell (col,row).
func (m *ScannerBlurMap) Set(col, row int, v float64) {
	if col < 0 || row < 0 || col >= m.Cols || row >= m.Rows {
		return
	}
	m.Values[row*m.Cols+col] = v
}

// At bilinearly samples the map at image coordinates (x,y).
func (m *ScannerBlurMap) At(x, y float64) float64 {
	if m.StepX == 0 || m.StepY == 0 {
		return 0
	}
	fx := (x - m.OriginX) / m.StepX
	fy := (y - m.OriginY) / m.StepY
	c0 := clampInt(int(fx), 0, m.Cols-1)
	r0 := clampInt(int(fy), 0, m.Rows-1)
	c1 := clampInt(c0+1, 0, m.Cols-1)
	r1 := clampInt(r0+1, 0, m.Rows-1)
	tx := clamp01f(fx - float64(c0))
	ty := clamp01f(fy - float64(r0))

	v00 := m.Values[r0*m.Cols+c0]
	v10 := m.Values[r0*m.Cols+c1]
	v01 := m.Values[r1*m.Cols+c0]
	v11 := m.Values[r1*m.Cols+c1]
	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return top + (bottom-top)*ty
}

func clamp01f(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Parameters is the render parameter record of §3 ("Render
// parameters"): user-tunable knobs shared by every renderer variant.
type Parameters struct {
	GrayMin, GrayMax int // invariant: GrayMin <= GrayMax, else Validate substitutes a safe fallback

	WhiteBalance  colorscreen.Rgb
	Presaturation colorscreen.ColorMatrix
	ColorModel    colorscreen.ColorModel
	Brightness    float64 // additive, folded into a ColorMatrix translation
	Saturation    float64 // 1.0 = unchanged

	Gamma          float64
	OutputBitDepth int // 8 or 16

	// CharacteristicsCurve optionally remaps luminance after XYZ->sRGB,
	// e.g. a per-emulsion contrast curve; nil applies no remapping.
	CharacteristicsCurve func(float32) float32

	ScreenBlurRadius float64        // radius used to soften the screen tile for Realistic (§4.H)
	ScannerBlur      *ScannerBlurMap // optional; no renderer variant reads it
}

// DefaultParameters returns a sensible parameter set: full gray range at
// the given bit depth, no white-balance/saturation adjustment, sRGB
// color model.
func DefaultParameters(maxRaw int, bitDepth int) Parameters {
	return Parameters{
		GrayMin: 0, GrayMax: maxRaw,
		WhiteBalance:  colorscreen.Rgb{Red: 1, Green: 1, Blue: 1},
		Presaturation: colorscreen.IdentityColorMatrix(),
		ColorModel:    colorscreen.ColorModelNone,
		Saturation:    1,
		Gamma:         1,
		OutputBitDepth: bitDepth,
	}
}

// Validate enforces the gray_min <= gray_max invariant (§3), returning a
// corrected copy rather than an error: "output curve is forced to a
// safe fallback" per spec, not a hard failure.
func (p Parameters) Validate() Parameters {
	if p.GrayMin > p.GrayMax {
		p.GrayMin, p.GrayMax = 0, p.GrayMax
		if p.GrayMax <= 0 {
			p.GrayMax = 255
		}
	}
	if p.OutputBitDepth != 8 && p.OutputBitDepth != 16 {
		p.OutputBitDepth = 8
	}
	return p
}
