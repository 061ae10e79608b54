package imageutil

import (
	"image"
	"image/color"
)

// AverageGrayscale sets the three color channels of every pixel to the
// truncated mean of its straight (non-premultiplied) R, G and B. Alpha is
// copied unchanged. The result is a new image; img is not modified.
func AverageGrayscale(img *RGBAImage) *image.NRGBA {
	width, height := img.Width(), img.Height()
	out := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.RGBAAt(x, y)).(color.NRGBA)
			avg := uint8((int(c.R) + int(c.G) + int(c.B)) / 3)
			c.R, c.G, c.B = avg, avg, avg
			out.SetNRGBA(x, y, c)
		}
	}

	return out
}

// Channels splits a channel-averaged image into its intensity and alpha
// planes.
func Channels(img *image.NRGBA) (intensity, alpha *GrayImage) {
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	intensity = NewGrayImage(width, height)
	alpha = NewGrayImage(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.NRGBAAt(x, y)
			intensity.Pix[y*intensity.Stride+x] = c.R
			alpha.Pix[y*alpha.Stride+x] = c.A
		}
	}

	return intensity, alpha
}
