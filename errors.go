package colorscreen

import "fmt"

// Error kinds returned across package boundaries (§7). Every fallible
// operation in this module returns one of these (wrapped with fmt.Errorf
// %w where extra context helps) instead of mixing booleans and out
// parameters the way the original C++ did.
var (
	// ErrCancelled is returned whenever a ProgressHandle reports
	// cancellation; it is always distinguishable from a successful result.
	ErrCancelled = fmt.Errorf("colorscreen: operation cancelled")

	// ErrOutOfMemory is returned when a large allocation is rejected
	// before it is attempted.
	ErrOutOfMemory = fmt.Errorf("colorscreen: out of memory")

	// ErrInvalidParameters signals a precondition violation (e.g. a
	// degenerate transform basis, or gray_min > gray_max where the
	// caller asked for strict validation rather than the safe fallback).
	ErrInvalidParameters = fmt.Errorf("colorscreen: invalid parameters")

	// ErrNoPatchesFound is returned by the screen detector when no
	// connected component survives the minimum-area filter.
	ErrNoPatchesFound = fmt.Errorf("colorscreen: no patches found")

	// ErrDidNotConverge is returned by the solver when the optimizer
	// exhausts its iteration budget without reaching the convergence
	// tolerance.
	ErrDidNotConverge = fmt.Errorf("colorscreen: solver did not converge")

	// ErrInsufficientPoints is returned by the solver when fewer control
	// points are available than the requested freedoms require.
	ErrInsufficientPoints = fmt.Errorf("colorscreen: insufficient control points")

	// ErrDegenerate is returned by transform construction when the two
	// basis vectors are collinear (not linearly independent).
	ErrDegenerate = fmt.Errorf("colorscreen: degenerate transform basis")

	// ErrUnsupportedScreenType is returned when a screen.Type has no
	// known analytic construction.
	ErrUnsupportedScreenType = fmt.Errorf("colorscreen: unsupported screen type")
)

// LoadError reports a failure to decode or validate an externally supplied
// image or project file.
type LoadError struct {
	Reason string
}

func (e *LoadError) Error() string { return "colorscreen: load failed: " + e.Reason }

// WriteError reports a failure while emitting output (TIFF rows, a CSP
// file, a Hugin project).
type WriteError struct {
	Reason string
}

func (e *WriteError) Error() string { return "colorscreen: write failed: " + e.Reason }

// MetadataMissingError reports that a required field was absent from
// image metadata handed to the core.
type MetadataMissingError struct {
	Field string
}

func (e *MetadataMissingError) Error() string {
	return "colorscreen: metadata missing: " + e.Field
}

// ParseError reports a malformed CSP/PTO project file, naming the keyword
// or line where parsing failed.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return "colorscreen: parse error: " + e.Message }

// StitchMismatchError is fatal during stitching: two tiles disagree on a
// process-wide invariant (pixel size or rotation baseline) that every tile
// in a project must share.
type StitchMismatchError struct {
	TileA, TileB   string
	Got, Expected any
}

func (e *StitchMismatchError) Error() string {
	return fmt.Sprintf("colorscreen: stitch mismatch between %q and %q: got %v, expected %v",
		e.TileA, e.TileB, e.Got, e.Expected)
}

// DetectionFailedError wraps a screen-detection failure with its cause.
type DetectionFailedError struct {
	Reason string
}

func (e *DetectionFailedError) Error() string {
	return "colorscreen: detection failed: " + e.Reason
}
