// Package stitch assembles an N×M grid of independently scanned plates
// into one combined image (§4.J). It analyzes each tile, registers
// neighbor pairs by integer pixel offset, places the grid in a shared
// screen frame, and paints a final canvas by picking, for each output
// pixel, the first tile (in row-major order) whose analyzer result
// claims it.
package stitch
