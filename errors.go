package glyphart

import "errors"

var (
	// ErrRenderingUnavailable is returned when a sampling surface cannot be
	// acquired or has already been released.
	ErrRenderingUnavailable = errors.New("rendering surface unavailable")

	// ErrUnsupportedImageFormat is returned when the input cannot be decoded
	// as an image.
	ErrUnsupportedImageFormat = errors.New("unsupported image format")

	// ErrDegenerateDimensions is returned when the source image or the
	// normalized buffer would have a zero dimension.
	ErrDegenerateDimensions = errors.New("degenerate dimensions")

	// ErrSuperseded is returned for a load whose result was discarded
	// because a newer load was submitted to the same session.
	ErrSuperseded = errors.New("load superseded by a newer image")
)
