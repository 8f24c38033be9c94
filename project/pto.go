package project

import (
	"fmt"
	"io"

	"golang.org/x/text/transform"
)

// crStripper is a transform.Transformer that drops every CR byte, so a
// PTO file written on any platform reaches disk with LF-only line
// endings, which is what Hugin's cpfind expects.
type crStripper struct{}

func (crStripper) Reset() {}

func (crStripper) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		b := src[nSrc]
		if b == '\r' {
			nSrc++
			continue
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = b
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}

// WritePTO emits the minimal Hugin .pto subset needed to hand a stitch
// project's tile list to an external cpfind pass: a panorama line, one
// image line per tile carrying its approximate position and size, and
// the optimizer variable line cpfind itself ignores but pto2mk expects
// to find. cpfind recomputes its own control points from the pixel
// data; this writer does not attempt to emit any (§4.K "write-only, for
// external cpfind consumption").
func (doc *Document) WritePTO(w io.Writer) error {
	if len(doc.StitchTiles) == 0 {
		return fmt.Errorf("project: WritePTO: document has no stitch tiles")
	}
	sink := transform.NewWriter(w, crStripper{})

	fmt.Fprintf(sink, "# hugin project file generated for cpfind registration\n")
	fmt.Fprintf(sink, "p f0 w%d h%d v360 n\"TIFF_m\"\n", ptoCanvasWidth(doc), ptoCanvasHeight(doc))
	fmt.Fprintf(sink, "m g1 i0\n")

	for _, tile := range doc.StitchTiles {
		fmt.Fprintf(sink, "i w%d h%d f0 v0 y%s p0 r%s TrX%s TrY%s n\"%s\"\n",
			int(tile.Size.X), int(tile.Size.Y),
			fmtFloat(tile.Angle),
			fmtFloat(tile.Angle),
			fmtFloat(tile.Position.X),
			fmtFloat(tile.Position.Y),
			tile.Filename)
	}

	fmt.Fprintf(sink, "v\n")

	return sink.Close()
}

func ptoCanvasWidth(doc *Document) int {
	max := 0
	for _, t := range doc.StitchTiles {
		if v := int(t.Position.X) + int(t.Size.X); v > max {
			max = v
		}
	}
	return max
}

func ptoCanvasHeight(doc *Document) int {
	max := 0
	for _, t := range doc.StitchTiles {
		if v := int(t.Position.Y) + int(t.Size.Y); v > max {
			max = v
		}
	}
	return max
}
