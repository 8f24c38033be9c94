package stitch

import (
	"fmt"
	"io"

	"github.com/janhubicka/colorscreen"
	"github.com/janhubicka/colorscreen/imagebuf"
	"github.com/janhubicka/colorscreen/render"
)

// Canvas is a painted stitch-project output: one RGB plane plus the
// placement geometry it was painted against (§4.J.5).
type Canvas struct {
	Viewport Viewport
	Pixels   []colorscreen.Rgb // row-major, Viewport.Width * Viewport.Height
}

// ownerAt walks tiles in row-major order (Project.Tiles is already
// row-major) and returns the first one whose known_pixels bitmap claims
// the given absolute canvas pixel, plus that tile's own image-space
// coordinate for it (§4.J.5: "the first tile, in row-major order, whose
// known_pixels bitmap contains that point wins").
func ownerAt(pr *Project, renderers []*render.Renderer, absX, absY int) (tileIdx int, imgX, imgY float64, ok bool) {
	for i, t := range pr.Tiles {
		if t.Transform == nil || t.Analyzer == nil || renderers[i] == nil {
			continue
		}
		lx, ly := float64(absX-t.XPos), float64(absY-t.YPos)
		scr := t.Transform.ToScr(colorscreen.Point{X: lx, Y: ly})
		ex := int(scr.X - t.Analyzer.OriginX)
		ey := int(scr.Y - t.Analyzer.OriginY)
		if !t.Analyzer.KnownAt(ex, ey) {
			continue
		}
		return i, lx, ly, true
	}
	return 0, 0, 0, false
}

// Paint renders the full stitched canvas over pr's viewport, one
// renderer per tile (indices aligned with pr.Tiles), picking each output
// pixel's color from its owning tile (§4.J.5). Pixels outside every
// tile's known_pixels bitmap are left at the zero value.
func Paint(pr *Project, renderers []*render.Renderer, vp Viewport) (*Canvas, error) {
	if len(renderers) != len(pr.Tiles) {
		return nil, fmt.Errorf("stitch: need one renderer per tile, got %d for %d tiles", len(renderers), len(pr.Tiles))
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		return nil, fmt.Errorf("stitch: empty viewport %+v", vp)
	}
	pixels := make([]colorscreen.Rgb, vp.Width*vp.Height)
	for oy := 0; oy < vp.Height; oy++ {
		absY := vp.YShift + oy
		for ox := 0; ox < vp.Width; ox++ {
			absX := vp.XShift + ox
			idx, lx, ly, ok := ownerAt(pr, renderers, absX, absY)
			if !ok {
				continue
			}
			pixels[oy*vp.Width+ox] = renderers[idx].SamplePixelImg(lx, ly)
		}
	}
	return &Canvas{Viewport: vp, Pixels: pixels}, nil
}

// WriteTileFiles writes every tile's own rendered image as an individual
// TIFF, tagged with its position within the full mosaic so external
// viewers can overlay them without a combined canvas (§4.J.5: "written
// as individual -tile.tif/-demosaicedtile.tif/-predictivetile.tif files
// with position and full-size hints"). suffix selects which of the three
// file roles is being written (e.g. "-tile", "-demosaicedtile",
// "-predictivetile"); open is called once per tile to obtain its writer.
func WriteTileFiles(pr *Project, renderers []*render.Renderer, vp Viewport, suffix string, open func(t *PlacedTile) (io.WriteCloser, error)) error {
	if len(renderers) != len(pr.Tiles) {
		return fmt.Errorf("stitch: need one renderer per tile, got %d for %d tiles", len(renderers), len(pr.Tiles))
	}
	for i, t := range pr.Tiles {
		r := renderers[i]
		if r == nil || t.Image == nil {
			continue
		}
		w, h := t.Image.Width(), t.Image.Height()
		samples := make([]uint16, w*h*3)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				px := r.RenderPixelRGB8(float64(x), float64(y))
				off := (y*w + x) * 3
				samples[off] = uint16(px[0]) << 8
				samples[off+1] = uint16(px[1]) << 8
				samples[off+2] = uint16(px[2]) << 8
			}
		}
		out, err := open(t)
		if err != nil {
			return fmt.Errorf("stitch: opening %s%s: %w", t.Spec.Path, suffix, err)
		}
		opts := &imagebuf.TileWriteOptions{
			XPosition:      float64(t.XPos),
			YPosition:      float64(t.YPos),
			FullWidth:      vp.Width,
			FullHeight:     vp.Height,
			ResolutionUnit: 2,
		}
		err = imagebuf.WriteTIFF16(out, samples, w, h, opts)
		closeErr := out.Close()
		if err != nil {
			return fmt.Errorf("stitch: writing %s%s: %w", t.Spec.Path, suffix, err)
		}
		if closeErr != nil {
			return fmt.Errorf("stitch: closing %s%s: %w", t.Spec.Path, suffix, closeErr)
		}
	}
	return nil
}
