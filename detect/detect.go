package detect

import (
	"math"

	"github.com/janhubicka/colorscreen"
)

// Screen is the result of detection (§4.E.4 DetectedScreen): the bounding
// box in image pixels, an estimated pixel size, a bitmap of every pixel
// the classifier assigned a class (black and pixels of rejected small
// components included), and the surviving patches themselves (ready to
// seed a solver.Solver).
type Screen struct {
	XShift, YShift int
	Width, Height  int
	PixelSize      float64
	PatchBitmap    *Bitmap
	Patches        []Patch
	Nearest        []Nearest
}

// Detect runs the full pipeline of §4.E: classify, flood fill, reject
// small components, and build the nearest-patch search structure.
// getPixel samples the (already linearized) image at integer coordinates.
// progress is checked for cancellation once, after classification.
func Detect(width, height int, getPixel func(x, y int) colorscreen.Rgb, p Parameters, progress *colorscreen.ProgressHandle) (*Screen, error) {
	if progress == nil {
		progress = colorscreen.NewProgressHandle(nil)
	}
	progress.SetTask("detect: classify", height)

	classes := Classify(width, height, getPixel, p)
	if progress.CancelRequested() {
		return nil, colorscreen.ErrCancelled
	}

	minArea := p.MinPatchArea
	if minArea <= 0 {
		minArea = 5
	}
	patches := FloodFill(classes, width, height, p.BorderX, p.BorderY, minArea)
	if len(patches) == 0 {
		return nil, colorscreen.ErrNoPatchesFound
	}

	bitmap := NewBitmap(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if classes[y*width+x] != Unknown {
				bitmap.Set(x, y)
			}
		}
	}

	nearest := NearestSearch(width, height, patches, maxSearchRadius(width, height))

	minX, minY, maxX, maxY := width, height, 0, 0
	for _, patch := range patches {
		if patch.MinX < minX {
			minX = patch.MinX
		}
		if patch.MinY < minY {
			minY = patch.MinY
		}
		if patch.MaxX > maxX {
			maxX = patch.MaxX
		}
		if patch.MaxY > maxY {
			maxY = patch.MaxY
		}
	}

	return &Screen{
		XShift: minX, YShift: minY,
		Width: maxX - minX + 1, Height: maxY - minY + 1,
		PixelSize:   estimatePixelSize(patches),
		PatchBitmap: bitmap,
		Patches:     patches,
		Nearest:     nearest,
	}, nil
}

func maxSearchRadius(width, height int) int {
	r := width
	if height > r {
		r = height
	}
	if r > 64 {
		r = 64
	}
	return r
}

// estimatePixelSize approximates the screen pitch in image pixels from
// the smallest centroid spacing between any two same-class patches, giving
// the solver (transform.Params) a reasonable seed before a full fit.
func estimatePixelSize(patches []Patch) float64 {
	if len(patches) < 2 {
		return 1
	}
	var bestDist float64 = -1
	for i := range patches {
		for j := range patches {
			if i == j || patches[i].Class != patches[j].Class {
				continue
			}
			dx := patches[i].CentroidX - patches[j].CentroidX
			dy := patches[i].CentroidY - patches[j].CentroidY
			d := dx*dx + dy*dy
			if bestDist < 0 || d < bestDist {
				bestDist = d
			}
		}
	}
	if bestDist <= 0 {
		return 1
	}
	return math.Sqrt(bestDist)
}
