// Package analyze collects per-screen-element intensity and color
// estimates from a linearized image, for a given screen geometry and
// screen-to-image transform (§4.G). It supports Fast (nominal-center
// sample), Precise (weighted coverage accumulation, luminosity only) and
// PreciseRGB/Color (same accumulation, full RGB) modes, parallelized
// across rows via internal/parallel's work-stealing pool.
package analyze
