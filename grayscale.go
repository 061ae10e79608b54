package glyphart

import (
	"fmt"
	"math"

	"github.com/wbrown/glyphart/imageutil"
)

const (
	// MinWidth and MaxWidth bound the width of a glyph grid in characters.
	MinWidth = 1
	MaxWidth = 300

	// DefaultWidth is the width used when none is configured.
	DefaultWidth = 200
)

// ClampWidth limits a requested character width to [MinWidth, MaxWidth].
func ClampWidth(w int) int {
	return min(max(w, MinWidth), MaxWidth)
}

// GrayscaleBuffer is a resized, channel-averaged copy of a source image.
// It is the sampling input of glyph mapping.
type GrayscaleBuffer struct {
	intensity *imageutil.GrayImage
	alpha     *imageutil.GrayImage
}

// NormalizeOptions control how a source image becomes a GrayscaleBuffer.
type NormalizeOptions struct {
	Interpolation imageutil.Interpolation
	Adjustments   imageutil.Adjustments
	Sharpen       bool
}

// TargetHeight returns the buffer height for a source of srcW x srcH
// scaled to width columns: round(width * srcH / srcW).
func TargetHeight(width, srcW, srcH int) int {
	if srcW <= 0 {
		return 0
	}
	return int(math.Round(float64(width) * float64(srcH) / float64(srcW)))
}

// Normalize resizes src to the clamped width, keeping the aspect ratio, and
// averages the color channels of every pixel.
func Normalize(src *imageutil.RGBAImage, width int, opts NormalizeOptions) (*GrayscaleBuffer, error) {
	if src == nil || src.Width() <= 0 || src.Height() <= 0 {
		return nil, fmt.Errorf("%w: empty source image", ErrDegenerateDimensions)
	}

	w := ClampWidth(width)
	h := TargetHeight(w, src.Width(), src.Height())
	if h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d source at width %d gives %dx%d",
			ErrDegenerateDimensions, src.Width(), src.Height(), w, w, h)
	}

	img := imageutil.Adjust(src, opts.Adjustments)
	if opts.Sharpen {
		img = imageutil.Sharpen(img)
	}
	resized := imageutil.Resize(img, w, h, opts.Interpolation)
	intensity, alpha := imageutil.Channels(imageutil.AverageGrayscale(resized))

	Logger().Debug("normalized source",
		"src_width", src.Width(), "src_height", src.Height(),
		"width", w, "height", h, "interpolation", opts.Interpolation.String())

	return &GrayscaleBuffer{intensity: intensity, alpha: alpha}, nil
}

// Width returns the buffer width in pixels, which is the grid width in
// characters.
func (b *GrayscaleBuffer) Width() int {
	return b.intensity.Width()
}

// Height returns the buffer height.
func (b *GrayscaleBuffer) Height() int {
	return b.intensity.Height()
}

// Intensity returns the gray level at (x, y) in [0, 255].
func (b *GrayscaleBuffer) Intensity(x, y int) uint8 {
	return b.intensity.GetGray(x, y)
}

// Alpha returns the preserved alpha at (x, y). Mapping does not use it.
func (b *GrayscaleBuffer) Alpha(x, y int) uint8 {
	return b.alpha.GetGray(x, y)
}
