package detect

import "sort"

// Nearest holds, for one pixel, the index into the originating Patch
// slice of the nearest red/green/blue patch (-1 if none found within the
// search template).
type Nearest struct {
	Red, Green, Blue int
}

// offset is one entry of the precomputed sorted-distance search template:
// a relative (dx,dy) and its distance, closest first.
type offset struct {
	dx, dy int
	dist2  int
}

// buildTemplate precomputes all offsets within radius, sorted by
// ascending squared distance (§4.E.3: "distances precomputed on a 2x
// max-radius template").
func buildTemplate(radius int) []offset {
	var offs []offset
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := dx*dx + dy*dy
			if d2 > radius*radius {
				continue
			}
			offs = append(offs, offset{dx, dy, d2})
		}
	}
	sort.Slice(offs, func(i, j int) bool {
		if offs[i].dist2 != offs[j].dist2 {
			return offs[i].dist2 < offs[j].dist2
		}
		// Tie-break: lower index then lower (y*W+x), applied by the
		// caller when multiple patches share a cell; here we only need a
		// stable scan order.
		if offs[i].dy != offs[j].dy {
			return offs[i].dy < offs[j].dy
		}
		return offs[i].dx < offs[j].dx
	})
	return offs
}

// NearestSearch finds, for every pixel in a width x height grid, the
// index of the nearest patch of each of the three colors, via the
// template search described in §4.E.3: iteration over the sorted-distance
// template stops once all three colors have a match or the template is
// exhausted.
func NearestSearch(width, height int, patches []Patch, maxRadius int) []Nearest {
	// Bucket patch centroids into a grid cell per patch for O(1) cell
	// lookup during the template walk.
	type cellPatch struct {
		idx int
	}
	grid := make(map[[2]int][]cellPatch)
	for i, p := range patches {
		cell := [2]int{int(p.CentroidX), int(p.CentroidY)}
		grid[cell] = append(grid[cell], cellPatch{idx: i})
	}

	template := buildTemplate(maxRadius)
	result := make([]Nearest, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			best := [3]int{-1, -1, -1} // red, green, blue
			found := 0

			for _, off := range template {
				if found == 3 {
					break
				}
				cell := [2]int{x + off.dx, y + off.dy}
				for _, cp := range grid[cell] {
					p := patches[cp.idx]
					var channel int
					switch p.Class {
					case ClassRed:
						channel = 0
					case ClassGreen:
						channel = 1
					case ClassBlue:
						channel = 2
					default:
						continue
					}
					if best[channel] != -1 {
						continue // tie-break: first (closest, lowest index) wins
					}
					best[channel] = cp.idx
					found++
				}
			}

			result[y*width+x] = Nearest{Red: best[0], Green: best[1], Blue: best[2]}
		}
	}

	return result
}
