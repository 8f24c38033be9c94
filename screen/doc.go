// Package screen builds and caches the one-period screen tile: a 128x128
// grid of per-pixel (multiplier, add) RGB weights describing a color
// screen's physical layout, such that the rendered color at an in-tile
// position (ix,iy) given an unadjusted luminosity l is
// l*mult[iy][ix] + add[iy][ix] (§4.C).
package screen
