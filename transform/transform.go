package transform

import (
	"math"

	"github.com/janhubicka/colorscreen"
)

// maxNewtonSteps and newtonTolerance bound the inverse-map Newton
// iteration for the radial term (§4.D: "≤ 6 steps, convergence test
// 1e-6 image pixels").
const (
	maxNewtonSteps  = 6
	newtonTolerance = 1e-6
)

// Transform evaluates the forward and inverse screen<->image maps for a
// fixed Params value. It is immutable once constructed; build a new
// Transform (cheap: it only caches the inverted affine basis) whenever
// Params change.
type Transform struct {
	p Params

	// invA..invD are the analytic inverse of [Coordinate1 Coordinate2] used
	// by ToScr's affine step and by the inverse-map Newton iteration.
	invA, invB, invC, invD float64
}

// New builds a Transform from p, validating the linear-independence
// invariant (§3, §4.D Degenerate failure mode).
func New(p Params) (*Transform, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	a, b := p.Coordinate1.X, p.Coordinate2.X
	c, d := p.Coordinate1.Y, p.Coordinate2.Y
	det := a*d - b*c
	return &Transform{
		p:    p,
		invA: d / det, invB: -b / det,
		invC: -c / det, invD: a / det,
	}, nil
}

// Params returns the transform's parameter record.
func (t *Transform) Params() Params { return t.p }

// ToImg maps a screen-space point to image pixel coordinates (§4.D
// forward map: lattice basis -> tilt -> center translate -> radial
// distortion -> mesh).
func (t *Transform) ToImg(scr colorscreen.Point) colorscreen.Point {
	p := &t.p

	// Apply lattice basis.
	ix := scr.X*p.Coordinate1.X + scr.Y*p.Coordinate2.X
	iy := scr.X*p.Coordinate1.Y + scr.Y*p.Coordinate2.Y

	// Apply tilt.
	tx := ix*p.TiltXX + iy*p.TiltXY
	ty := ix*p.TiltYX + iy*p.TiltYY

	// Translate by center.
	tx += p.CenterX
	ty += p.CenterY

	// Apply radial distortion around the center.
	if p.K1 != 0 {
		dx, dy := tx-p.CenterX, ty-p.CenterY
		r2 := dx*dx + dy*dy
		f := 1 + p.K1*r2
		tx = p.CenterX + dx*f
		ty = p.CenterY + dy*f
	}

	// Add mesh displacement.
	if p.Mesh != nil {
		mdx, mdy := p.Mesh.Displacement(tx, ty)
		tx += mdx
		ty += mdy
	}

	return colorscreen.Point{X: tx, Y: ty}
}

// ToScr maps an image pixel point back to screen-space coordinates, via
// analytic affine inversion plus Newton iteration for the radial term and
// a single fixed-point correction for the mesh (§4.D).
func (t *Transform) ToScr(img colorscreen.Point) colorscreen.Point {
	p := &t.p
	tx, ty := img.X, img.Y

	// Undo mesh displacement first: invert by fixed point, since the
	// mesh is queried in image space at the *output* of its own
	// application. One fixed-point pass is sufficient because scanner
	// warp displacements are small relative to the grid step.
	if p.Mesh != nil {
		mdx, mdy := p.Mesh.Displacement(tx, ty)
		tx -= mdx
		ty -= mdy
	}

	// Undo radial distortion via Newton iteration on the scale factor f
	// such that center + (orig)*f = (tx,ty), solving for orig.
	ox, oy := tx, ty
	if p.K1 != 0 {
		dx, dy := tx-p.CenterX, ty-p.CenterY
		targetR2 := dx*dx + dy*dy
		// Solve r*(1+k1*r^2) = sqrt(targetR2) for r via Newton on r.
		targetR := math.Sqrt(targetR2)
		r := targetR
		for i := 0; i < maxNewtonSteps; i++ {
			f := r*(1+p.K1*r*r) - targetR
			df := 1 + 3*p.K1*r*r
			if df == 0 {
				break
			}
			next := r - f/df
			if math.Abs(next-r) < newtonTolerance {
				r = next
				break
			}
			r = next
		}
		var scale float64
		if targetR > 1e-12 {
			scale = r / targetR
		} else {
			scale = 1
		}
		ox = p.CenterX + dx*scale
		oy = p.CenterY + dy*scale
	}

	// Undo tilt + translate.
	ux := ox - p.CenterX
	uy := oy - p.CenterY
	det := p.TiltXX*p.TiltYY - p.TiltXY*p.TiltYX
	var preX, preY float64
	if det != 0 {
		preX = (ux*p.TiltYY - uy*p.TiltXY) / det
		preY = (uy*p.TiltXX - ux*p.TiltYX) / det
	} else {
		preX, preY = ux, uy
	}

	// Undo lattice basis via the precomputed inverse.
	sx := preX*t.invA + preY*t.invB
	sy := preX*t.invC + preY*t.invD
	return colorscreen.Point{X: sx, Y: sy}
}

// PixelSize returns the local derivative magnitude of the forward map at
// scr: the area (in image pixels²) covered by one unit of screen-space
// area, approximated via finite differences (§4.D: "continuous and
// strictly positive on the image domain").
func (t *Transform) PixelSize(scr colorscreen.Point) float64 {
	const eps = 1e-3
	p0 := t.ToImg(scr)
	px := t.ToImg(colorscreen.Point{X: scr.X + eps, Y: scr.Y})
	py := t.ToImg(colorscreen.Point{X: scr.X, Y: scr.Y + eps})

	dudx, dvdx := (px.X-p0.X)/eps, (px.Y-p0.Y)/eps
	dudy, dvdy := (py.X-p0.X)/eps, (py.Y-p0.Y)/eps
	area := math.Abs(dudx*dvdy - dudy*dvdx)
	if area <= 0 {
		return 1e-9
	}
	return area
}

// Range is the axis-aligned image-space bounding box returned by
// GetRange.
type Range struct {
	XShift, YShift int
	Width, Height  int
}

// GetRange returns the bounding box, in image pixel coordinates, of the
// forward map applied to a screen-space rectangle's four corners (§4.D
// get_range). Corners are sampled along a coarse grid rather than just
// the four extremes to stay correct under mesh/radial warping.
func (t *Transform) GetRange(scrX, scrY, scrW, scrH float64) Range {
	const samples = 8
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for i := 0; i <= samples; i++ {
		for j := 0; j <= samples; j++ {
			sx := scrX + scrW*float64(i)/samples
			sy := scrY + scrH*float64(j)/samples
			pt := t.ToImg(colorscreen.Point{X: sx, Y: sy})
			minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
			minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
		}
	}

	return Range{
		XShift: int(math.Floor(minX)),
		YShift: int(math.Floor(minY)),
		Width:  int(math.Ceil(maxX)) - int(math.Floor(minX)),
		Height: int(math.Ceil(maxY)) - int(math.Floor(minY)),
	}
}

// PatchProportions returns the sub-pixel widths of the R, G, B patches in
// screen-space units, for analyzers to weight partial-element coverage
// (§4.D patch_proportions). For non-Dufay screens the three channels
// share the full element, so all three proportions are 1.
func (t *Transform) PatchProportions() (r, g, b float64) {
	if t.p.StripWidth > 0 && t.p.StripWidth < 1 {
		return t.p.StripWidth, (1 - t.p.StripWidth) / 2, (1 - t.p.StripWidth) / 2
	}
	return 1, 1, 1
}
