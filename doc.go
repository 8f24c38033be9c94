// Package colorscreen reconstructs full-color photographs from grayscale
// scans of early additive color-screen plates (Dufaycolor, Paget, Finlay,
// Thames, Autochrome, Warner-Powrie, ...).
//
// Such plates placed a fine mosaic of red/green/blue filter elements (the
// "screen") in front of a panchromatic emulsion; each developed silver grain
// records how much light passed through one colored element. Given a scan
// plus a geometric description of the screen, the pipeline:
//
//  1. registers the regular screen lattice to the scanned pixels with
//     sub-pixel precision (package transform, package detect, package solver);
//  2. estimates the dye density under each screen element (package analyze);
//  3. reconstructs a continuous-tone color image (package render);
//  4. stitches multiple partially overlapping scans into one image
//     (package stitch).
//
// This root package holds the primitives shared by every other package:
// color and numeric types (component A), the process-wide gamma LUT cache,
// structured error kinds, cooperative cancellation, and logging.
//
// Raster I/O, the desktop GUI, and thin CLI wrappers are deliberately out of
// scope: this library consumes decoded pixmaps with metadata and emits
// decoded rows or tiles; a file reader/writer layer wraps it.
package colorscreen
