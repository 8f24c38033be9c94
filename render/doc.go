// Package render implements the renderer family of §4.H: a shared
// sample_pixel_* contract over eight variants (Original, PreviewGrid,
// Realistic, Fast, Interpolated, Predictive, Combined, Diff), a common
// color pipeline (white balance, presaturation, dye->XYZ, XYZ->sRGB,
// characteristics curve, output gamma), a generic row-parallel
// downscale template, and the RenderTile entry point. Package stitch
// paints through SamplePixelImg and RenderPixelRGB8, not RenderTile.
package render
