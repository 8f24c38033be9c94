// Package detect classifies scan pixels into color classes, grows
// connected patches, and derives the screen lattice parameters a solver
// can refine (§4.E).
package detect
