package solver

import (
	"math"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/transform"
)

// Tag labels a control point's origin, mainly for GUI display and outlier
// triage; it carries no numeric meaning to the solver itself.
type Tag uint8

const (
	TagUnknown Tag = iota
	TagDetected
	TagUserPlaced
)

// ControlPoint is one correspondence between a screen-space coordinate and
// an observed image-space coordinate (§3 "Solver state"). Locked points
// are held fixed as anchors and always contribute to the residual but are
// never perturbed by freedom flags that would otherwise move them
// (locking is honored by the caller choosing not to vary them through
// Freedoms; the solver itself is pure on its inputs).
type ControlPoint struct {
	ImagePoint  colorscreen.Point
	ScreenPoint colorscreen.Point
	Tag         Tag
	Locked      bool
}

// Freedoms selects which parameter groups the solver is allowed to vary,
// enabled in stages per §4.F.
type Freedoms struct {
	Translation bool
	Basis       bool
	Tilt        bool
	K1          bool
	Mesh        bool
}

// StagedFreedoms returns the canonical stage sequence affine -> k1 ->
// tilt -> mesh, each stage a superset of the previous one's freedoms.
func StagedFreedoms() []Freedoms {
	return []Freedoms{
		{Translation: true, Basis: true},
		{Translation: true, Basis: true, K1: true},
		{Translation: true, Basis: true, K1: true, Tilt: true},
		{Translation: true, Basis: true, K1: true, Tilt: true, Mesh: true},
	}
}

// minPointsFor returns the minimum control points §4.F requires for a
// freedom set (InsufficientPoints failure mode).
func minPointsFor(f Freedoms) int {
	switch {
	case f.Mesh:
		return 10
	case f.K1 || f.Tilt:
		return 5
	default:
		return 3
	}
}

// Solver accumulates control points and fits transform parameters against
// them. It does not mutate any image; it is pure on its inputs (§4.F).
type Solver struct {
	points []ControlPoint
}

// New creates an empty solver.
func New() *Solver { return &Solver{} }

// AddPoint appends a control point.
func (s *Solver) AddPoint(imgPt, scrPt colorscreen.Point, tag Tag, locked bool) {
	s.points = append(s.points, ControlPoint{ImagePoint: imgPt, ScreenPoint: scrPt, Tag: tag, Locked: locked})
}

// RemovePoint removes the control point at index i.
func (s *Solver) RemovePoint(i int) {
	if i < 0 || i >= len(s.points) {
		return
	}
	s.points = append(s.points[:i], s.points[i+1:]...)
}

// Points returns the current control points.
func (s *Solver) Points() []ControlPoint { return s.points }

// Result is returned by Run: the fitted parameters plus a per-point
// residual (image-pixel distance between F(screen_point_i) and
// image_point_i) so callers can flag outliers.
type Result struct {
	Params    transform.Params
	Residuals []float64
}

// paramVector packs the subset of transform.Params selected by f into a
// flat vector for the optimizer, in a fixed canonical order.
func paramVector(p transform.Params, f Freedoms) []float64 {
	var v []float64
	if f.Translation {
		v = append(v, p.CenterX, p.CenterY)
	}
	if f.Basis {
		v = append(v, p.Coordinate1.X, p.Coordinate1.Y, p.Coordinate2.X, p.Coordinate2.Y)
	}
	if f.Tilt {
		v = append(v, p.TiltXX, p.TiltXY, p.TiltYX, p.TiltYY)
	}
	if f.K1 {
		v = append(v, p.K1)
	}
	return v
}

func unpackParams(base transform.Params, f Freedoms, v []float64) transform.Params {
	p := base
	i := 0
	if f.Translation {
		p.CenterX, p.CenterY = v[i], v[i+1]
		i += 2
	}
	if f.Basis {
		p.Coordinate1 = colorscreen.Vec2{X: v[i], Y: v[i+1]}
		p.Coordinate2 = colorscreen.Vec2{X: v[i+2], Y: v[i+3]}
		i += 4
	}
	if f.Tilt {
		p.TiltXX, p.TiltXY, p.TiltYX, p.TiltYY = v[i], v[i+1], v[i+2], v[i+3]
		i += 4
	}
	if f.K1 {
		p.K1 = v[i]
		i++
	}
	return p
}

func (s *Solver) residualSumSquares(base transform.Params, f Freedoms, v []float64) (float64, bool) {
	p := unpackParams(base, f, v)
	tr, err := transform.New(p)
	if err != nil {
		return 0, false
	}
	var sum float64
	for _, cp := range s.points {
		img := tr.ToImg(cp.ScreenPoint)
		dx := img.X - cp.ImagePoint.X
		dy := img.Y - cp.ImagePoint.Y
		sum += dx*dx + dy*dy
	}
	return sum, true
}

// Run fits parameters starting from paramsIn, running the staged
// Nelder-Mead sequence: each canonical stage runs only if all of its
// freedoms are set in flags, and is skipped otherwise. It returns the
// fitted parameters and per-point residuals.
func (s *Solver) Run(paramsIn transform.Params, flags Freedoms) (Result, error) {
	if len(s.points) < minPointsFor(flags) {
		return Result{}, colorscreen.ErrInsufficientPoints
	}

	params := paramsIn
	for _, stage := range StagedFreedoms() {
		if !subsetOf(stage, flags) {
			continue
		}
		fitted, ok := nelderMead(func(v []float64) float64 {
			sum, valid := s.residualSumSquares(params, stage, v)
			if !valid {
				return math1e18
			}
			return sum
		}, paramVector(params, stage))
		if !ok {
			return Result{}, colorscreen.ErrDidNotConverge
		}
		params = unpackParams(params, stage, fitted)
	}

	tr, err := transform.New(params)
	if err != nil {
		return Result{}, err
	}
	residuals := make([]float64, len(s.points))
	for i, cp := range s.points {
		img := tr.ToImg(cp.ScreenPoint)
		dx, dy := img.X-cp.ImagePoint.X, img.Y-cp.ImagePoint.Y
		residuals[i] = math.Sqrt(dx*dx + dy*dy)
	}
	return Result{Params: params, Residuals: residuals}, nil
}

// subsetOf reports whether every freedom set in a is also set in b,
// i.e. stage a should run given the caller only requested up to stage b.
func subsetOf(a, b Freedoms) bool {
	if a.Translation && !b.Translation {
		return false
	}
	if a.Basis && !b.Basis {
		return false
	}
	if a.Tilt && !b.Tilt {
		return false
	}
	if a.K1 && !b.K1 {
		return false
	}
	if a.Mesh && !b.Mesh {
		return false
	}
	return true
}

const math1e18 = 1e18
