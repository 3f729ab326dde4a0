// SPDX-License-Identifier: MIT
package rtff

import (
	"errors"

	windowpkg "github.com/p-hlp/rtff/internal/window"

	fftpkg "github.com/p-hlp/rtff/internal/fft"
)

// Sentinel errors returned by NewEngine/NewFilter. Use errors.Is to test
// for them; the underlying internal packages return wrapped variants
// that satisfy the same Is relationship.
var (
	// ErrConfigInvalid is returned when a Config's fields fail basic
	// sanity checks: zero or negative fft size/block size, an fft size
	// that is not a power of two, overlap outside [0, fftSize), or
	// channel counts outside [1, 255].
	ErrConfigInvalid = errors.New("rtff: invalid configuration")

	// ErrWindowInvalid is returned when the COLA normalization envelope
	// implied by the chosen fft size, overlap and window type is
	// degenerate (contains a value at or below the validity epsilon).
	ErrWindowInvalid = windowpkg.ErrWindowInvalid

	// ErrFFTInitFailed is returned when the underlying transform fails
	// to initialize. A non-power-of-two fft size is rejected earlier,
	// by Config validation, with ErrConfigInvalid.
	ErrFFTInitFailed = fftpkg.ErrFFTInitFailed
)
