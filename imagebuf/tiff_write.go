package imagebuf

import (
	"encoding/binary"
	"io"
)

// TileWriteOptions carries the per-tile tags §6 requires when stitch
// output is written as individual files rather than one combined image:
// position within the full mosaic and the full mosaic's own dimensions,
// so viewers can overlay the tiles without external bookkeeping.
type TileWriteOptions struct {
	XPosition, YPosition     float64 // inches, per TIFFTAG_XPOSITION/YPOSITION
	FullWidth, FullHeight    int     // PIXAR_IMAGEFULLWIDTH/LENGTH; 0 disables the tag pair
	ResolutionUnit           uint16  // 2 = inches, matching XPosition/YPosition units
	HasAlpha                 bool    // writes a coverage alpha channel (§6: 0 = uncovered)
}

// WriteError reports a failure while emitting TIFF output.
type WriteError struct{ Reason string }

func (e *WriteError) Error() string { return "imagebuf: write failed: " + e.Reason }

// tiff tag ids used below (Baseline + the two Pixar private tags).
const (
	tagImageWidth          = 256
	tagImageLength         = 257
	tagBitsPerSample       = 258
	tagCompression         = 259
	tagPhotometric         = 262
	tagStripOffsets        = 273
	tagSamplesPerPixel     = 277
	tagRowsPerStrip        = 278
	tagStripByteCounts     = 279
	tagXPosition           = 286
	tagYPosition           = 287
	tagResolutionUnit      = 296
	tagExtraSamples        = 338
	tagSampleFormat        = 339
	tagPixarImageFullWidth = 32997
	tagPixarImageFullLen   = 32998
)

type ifdEntry struct {
	tag      uint16
	typ      uint16
	count    uint32
	valueRaw [4]byte // inline value, or offset if it does not fit
}

// WriteTIFF16 writes rows of 16-bit-per-channel samples (RGB, or RGBA if
// opts.HasAlpha) as an uncompressed, planar-contiguous, top-left-origin
// TIFF, with the tile-position tags §6 requires when opts is non-nil.
// samples is row-major, samplesPerPixel*width*height long.
//
// No available TIFF encoder supports the custom position tags this format
// needs (x/image/tiff.Encode exposes only Predictor/Compression), so this
// writer is hand-rolled rather than reaching for LZW compression; see
// DESIGN.md.
func WriteTIFF16(w io.Writer, samples []uint16, width, height int, opts *TileWriteOptions) error {
	samplesPerPixel := 3
	if opts != nil && opts.HasAlpha {
		samplesPerPixel = 4
	}
	if len(samples) != width*height*samplesPerPixel {
		return &WriteError{Reason: "sample count does not match width*height*samplesPerPixel"}
	}

	var entries []ifdEntry
	addShort := func(tag uint16, v uint16) {
		var b [4]byte
		binary.LittleEndian.PutUint16(b[:2], v)
		entries = append(entries, ifdEntry{tag: tag, typ: 3, count: 1, valueRaw: b})
	}
	addLong := func(tag uint16, v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		entries = append(entries, ifdEntry{tag: tag, typ: 4, count: 1, valueRaw: b})
	}

	addLong(tagImageWidth, uint32(width))
	addLong(tagImageLength, uint32(height))
	addShort(tagCompression, 1) // uncompressed
	addShort(tagPhotometric, 2) // RGB
	addLong(tagSamplesPerPixel, uint32(samplesPerPixel))
	addLong(tagRowsPerStrip, uint32(height))
	if samplesPerPixel == 4 {
		addShort(tagExtraSamples, 2) // unassociated alpha = coverage, not premultiplied
	}
	if opts != nil {
		if opts.FullWidth > 0 && opts.FullHeight > 0 {
			addLong(tagPixarImageFullWidth, uint32(opts.FullWidth))
			addLong(tagPixarImageFullLen, uint32(opts.FullHeight))
		}
		if opts.ResolutionUnit != 0 {
			addShort(tagResolutionUnit, opts.ResolutionUnit)
		}
	}

	// BitsPerSample and StripOffsets/ByteCounts need layout computed after
	// entry count is known, since BitsPerSample's 3 shorts don't fit
	// inline and push later offsets. Two passes: compute header size,
	// then emit with final offsets.
	headerSize := 8 // TIFF byte-order + magic + first IFD offset
	bitsOffsetPlaceholderIdx := len(entries)
	entries = append(entries, ifdEntry{tag: tagBitsPerSample, typ: 3, count: uint32(samplesPerPixel)})
	xposIdx, yposIdx := -1, -1
	if opts != nil && (opts.XPosition != 0 || opts.YPosition != 0) {
		xposIdx = len(entries)
		entries = append(entries, ifdEntry{tag: tagXPosition, typ: 5, count: 1})
		yposIdx = len(entries)
		entries = append(entries, ifdEntry{tag: tagYPosition, typ: 5, count: 1})
	}
	stripOffIdx := len(entries)
	entries = append(entries, ifdEntry{tag: tagStripOffsets, typ: 4, count: 1})
	stripCountIdx := len(entries)
	entries = append(entries, ifdEntry{tag: tagStripByteCounts, typ: 4, count: 1})

	numEntries := len(entries)
	ifdSize := 2 + numEntries*12 + 4 // count + entries + next-IFD offset

	extra := 0
	bitsOffset := uint32(headerSize + ifdSize)
	extra += samplesPerPixel * 2
	var xposOffset, yposOffset uint32
	if xposIdx >= 0 {
		xposOffset = bitsOffset + uint32(extra)
		extra += 8
		yposOffset = bitsOffset + uint32(extra)
		extra += 8
	}
	stripOffset := bitsOffset + uint32(extra)
	pixelBytes := width * height * samplesPerPixel * 2

	binary.LittleEndian.PutUint32(entries[bitsOffsetPlaceholderIdx].valueRaw[:], bitsOffset)
	if xposIdx >= 0 {
		binary.LittleEndian.PutUint32(entries[xposIdx].valueRaw[:], xposOffset)
		binary.LittleEndian.PutUint32(entries[yposIdx].valueRaw[:], yposOffset)
	}
	binary.LittleEndian.PutUint32(entries[stripOffIdx].valueRaw[:], stripOffset)
	binary.LittleEndian.PutUint32(entries[stripCountIdx].valueRaw[:], uint32(pixelBytes))

	buf := make([]byte, 0, headerSize+ifdSize+extra+pixelBytes)
	buf = append(buf, 'I', 'I', 42, 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(headerSize))

	buf = binary.LittleEndian.AppendUint16(buf, uint16(numEntries))
	for _, e := range entries {
		buf = binary.LittleEndian.AppendUint16(buf, e.tag)
		buf = binary.LittleEndian.AppendUint16(buf, e.typ)
		buf = binary.LittleEndian.AppendUint32(buf, e.count)
		buf = append(buf, e.valueRaw[:]...)
	}
	buf = binary.LittleEndian.AppendUint32(buf, 0) // no next IFD

	for range samplesPerPixel {
		buf = binary.LittleEndian.AppendUint16(buf, 16)
	}
	if xposIdx >= 0 {
		buf = appendRational(buf, opts.XPosition)
		buf = appendRational(buf, opts.YPosition)
	}
	for _, s := range samples {
		buf = binary.LittleEndian.AppendUint16(buf, s)
	}

	_, err := w.Write(buf)
	if err != nil {
		return &WriteError{Reason: err.Error()}
	}
	return nil
}

// appendRational encodes v as a TIFF RATIONAL (two uint32: numerator,
// denominator), using a fixed 1/10000 denominator for sub-pixel position
// precision.
func appendRational(buf []byte, v float64) []byte {
	const denom = 10000
	num := uint32(v * denom)
	buf = binary.LittleEndian.AppendUint32(buf, num)
	buf = binary.LittleEndian.AppendUint32(buf, denom)
	return buf
}
