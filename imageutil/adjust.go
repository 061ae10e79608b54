package imageutil

import (
	"image"

	"github.com/disintegration/gift"
)

// Adjustments are optional tonal corrections applied to a source image
// before it is resampled. The zero value changes nothing.
type Adjustments struct {
	// Contrast in percent, -100..100.
	Contrast float32
	// Brightness in percent, -100..100.
	Brightness float32
	// Gamma correction; 0 and 1 leave the image unchanged.
	Gamma float32
	// Invert swaps light and dark.
	Invert bool
}

// IsZero reports whether a leaves images unchanged.
func (a Adjustments) IsZero() bool {
	return a.Contrast == 0 && a.Brightness == 0 &&
		(a.Gamma == 0 || a.Gamma == 1) && !a.Invert
}

func (a Adjustments) filters() []gift.Filter {
	var filters []gift.Filter
	if a.Brightness != 0 {
		filters = append(filters, gift.Brightness(a.Brightness))
	}
	if a.Contrast != 0 {
		filters = append(filters, gift.Contrast(a.Contrast))
	}
	if a.Gamma != 0 && a.Gamma != 1 {
		filters = append(filters, gift.Gamma(a.Gamma))
	}
	if a.Invert {
		filters = append(filters, gift.Invert())
	}
	return filters
}

// Adjust returns a copy of img with a applied. When a is the zero value
// img itself is returned.
func Adjust(img *RGBAImage, a Adjustments) *RGBAImage {
	if a.IsZero() {
		return img
	}
	g := gift.New(a.filters()...)
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img.RGBA)
	return RGBAImageFromImage(dst)
}
