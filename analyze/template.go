package analyze

// Geometry is a static per-screen-type descriptor: the entry-grid scale
// relative to one screen-space unit, per channel. It carries no
// range-check policy; entries outside a channel grid are dropped by the
// grid itself. Dufay
// stores its red channel at twice the horizontal resolution of green
// and blue to match the physical strip aspect ratio (§3 "Analyzer
// result").
type Geometry struct {
	Name string

	// ScaleX, ScaleY give entries per unit screen-space coordinate for
	// each channel, indexed 0=red,1=green,2=blue.
	ScaleX [3]float64
	ScaleY [3]float64
}

// unitGeometry is the geometry shared by every mosaic-style screen
// (Paget, Finlay, Thames, WarnerPowrie, Autochrome): one entry per
// screen-space unit on all three channels.
var unitGeometry = Geometry{
	Name:   "mosaic",
	ScaleX: [3]float64{1, 1, 1},
	ScaleY: [3]float64{1, 1, 1},
}

// dufayGeometry doubles the red channel's horizontal resolution (§3).
var dufayGeometry = Geometry{
	Name:   "dufay",
	ScaleX: [3]float64{2, 1, 1},
	ScaleY: [3]float64{1, 1, 1},
}

// stripsGeometry is for pure vertical-strip screens with no green/blue
// distinction in the horizontal axis.
var stripsGeometry = Geometry{
	Name:   "strips",
	ScaleX: [3]float64{1, 1, 1},
	ScaleY: [3]float64{1, 1, 1},
}

// TemplateFor returns the geometry template for a screen type name, one
// of "mosaic", "dufay" or "strips" (the three templates named in §4.G).
func TemplateFor(name string) Geometry {
	switch name {
	case "dufay":
		return dufayGeometry
	case "strips":
		return stripsGeometry
	default:
		return unitGeometry
	}
}

// entryCoord maps a screen-space coordinate to an entry-grid index for
// channel ch, flooring toward negative infinity so coordinates just
// below zero map to entry -1 rather than wrapping.
func (g Geometry) entryCoord(ch int, sx, sy float64) (ex, ey int) {
	fx := sx * g.ScaleX[ch]
	fy := sy * g.ScaleY[ch]
	return floorInt(fx), floorInt(fy)
}

func floorInt(v float64) int {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return i
}
