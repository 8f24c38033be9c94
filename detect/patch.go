package detect

// Patch is a connected component of same-class pixels (§4.E.2): its
// centroid, pixel count, and a "projected" count used downstream for
// solver weighting (the area of the component's bounding box, so a patch
// with pixels lost to classification still weights roughly by its
// physical extent).
type Patch struct {
	Class          Class
	CentroidX      float64
	CentroidY      float64
	PixelCount     int
	ProjectedCount int
	MinX, MinY     int
	MaxX, MaxY     int
}

// FloodFill finds connected components of identically classified pixels
// in classes (row-major, width x height), excluding a border of
// (borderX,borderY) pixels and rejecting components with fewer than
// minArea pixels (§4.E.2).
func FloodFill(classes []Class, width, height, borderX, borderY, minArea int) []Patch {
	visited := make([]bool, width*height)
	var patches []Patch

	var stackX, stackY []int
	for y0 := borderY; y0 < height-borderY; y0++ {
		for x0 := borderX; x0 < width-borderX; x0++ {
			idx0 := y0*width + x0
			cls := classes[idx0]
			if cls == Unknown || cls == ClassBlack || visited[idx0] {
				continue
			}

			stackX, stackY = stackX[:0], stackY[:0]
			stackX, stackY = append(stackX, x0), append(stackY, y0)
			visited[idx0] = true

			var sumX, sumY float64
			count := 0
			minX, minY, maxX, maxY := x0, y0, x0, y0

			for len(stackX) > 0 {
				x, y := stackX[len(stackX)-1], stackY[len(stackY)-1]
				stackX, stackY = stackX[:len(stackX)-1], stackY[:len(stackY)-1]

				sumX += float64(x)
				sumY += float64(y)
				count++
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}

				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := x+d[0], y+d[1]
					if nx < borderX || ny < borderY || nx >= width-borderX || ny >= height-borderY {
						continue
					}
					nidx := ny*width + nx
					if visited[nidx] || classes[nidx] != cls {
						continue
					}
					visited[nidx] = true
					stackX, stackY = append(stackX, nx), append(stackY, ny)
				}
			}

			if count < minArea {
				continue
			}

			// Projected count extrapolates from the component's bounding
			// box rather than its raw pixel count, so a patch partly
			// clipped by noisy classification still weights the solver
			// roughly in proportion to its true physical area.
			projected := (maxX - minX + 1) * (maxY - minY + 1)

			patches = append(patches, Patch{
				Class:          cls,
				CentroidX:      sumX / float64(count),
				CentroidY:      sumY / float64(count),
				PixelCount:     count,
				ProjectedCount: projected,
				MinX:           minX, MinY: minY, MaxX: maxX, MaxY: maxY,
			})
		}
	}

	return patches
}
