// Package errs defines the sentinel error values shared across the crinex
// packages.
//
// Callers match them with errors.Is; the failure sites wrap them with
// fmt.Errorf("%w: ...") to add context.
package errs

import "errors"

var (
	// ErrOrderTooLarge indicates a requested compression order exceeds the
	// session maximum. Fatal to that field's re-initialization only; the
	// caller may retry with a clamped order.
	ErrOrderTooLarge = errors.New("compression order exceeds session maximum")

	// ErrKernelNotInitialized indicates Recover or Difference was called on a
	// kernel that never received a Reset. The field must be treated as
	// missing for the current epoch.
	ErrKernelNotInitialized = errors.New("kernel used before initialization")

	// ErrMalformedToken indicates a compressed field token does not match the
	// ["<order>&"]<signed-decimal> grammar. Fatal for the current line.
	ErrMalformedToken = errors.New("malformed compressed token")

	// ErrFieldWidthOverflow indicates a recovered value's decimal text does
	// not fit the canonical column width. Surfaced, never silently truncated.
	ErrFieldWidthOverflow = errors.New("value does not fit field width")

	// ErrMalformedEpochLine indicates an epoch descriptor line could not be
	// parsed (flag, satellite count or satellite list).
	ErrMalformedEpochLine = errors.New("malformed epoch line")

	// ErrUnknownObservables indicates the header contract defines no
	// observable list for a satellite's constellation.
	ErrUnknownObservables = errors.New("no observables defined for constellation")

	// ErrHashCollision indicates two distinct field keys hashed to the same
	// 64-bit registry identifier.
	ErrHashCollision = errors.New("field key hash collision")

	// ErrInvalidSatellite indicates a satellite identifier could not be
	// parsed from its three-character field.
	ErrInvalidSatellite = errors.New("invalid satellite identifier")

	// ErrInvalidConfig indicates an invalid session option value.
	ErrInvalidConfig = errors.New("invalid session configuration")
)
