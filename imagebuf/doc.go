// Package imagebuf owns the scanned plate pixmap: width, height, max raw
// value, an optional grayscale plane, an optional interleaved RGB plane, a
// linearization lookup table shared by all channels, and the metadata a loader
// attaches (ICC bytes, gamma tag, camera/lens/DPI, a crop rectangle, and a
// stable content id used as a cache key downstream).
//
// An Image is created by a loader, mutated only by Crop or Linearize, and
// is read-only once linearized: multiple renderers may hold it
// concurrently (§5 of the design: "the image is read-only after
// linearization").
package imagebuf
