package glyphart

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/wbrown/glyphart/imageutil"
)

// DefaultExportFilename is the name a download is saved under.
const DefaultExportFilename = "ascii-art.jpg"

// ExportOptions control how a GlyphGrid is drawn to a raster.
type ExportOptions struct {
	// FontSize in pixels.
	FontSize float64
	// LetterSpacing added after every glyph, as a fraction of FontSize.
	LetterSpacing float64
	// LineHeight as a fraction of FontSize.
	LineHeight float64
	// Background and Foreground are hex colors such as "#000000".
	Background string
	Foreground string
	// Format of the encoded image. Empty selects JPEG, or the file
	// extension for ExportFile.
	Format imageutil.Format
	// Quality is the JPEG quality, 1..100.
	Quality int
}

// DefaultExportOptions returns white 10px glyphs on black, spaced 0.28em
// apart with lines compressed to 0.9 of the font size, saved as JPEG at
// quality 90.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		FontSize:      10,
		LetterSpacing: 0.28,
		LineHeight:    0.9,
		Background:    "#000000",
		Foreground:    "#ffffff",
		Quality:       imageutil.DefaultJPEGQuality,
	}
}

// parseHexColor converts a hex color string to an opaque color.RGBA.
func parseHexColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// gridLayout holds the pixel metrics of an export.
type gridLayout struct {
	advance    float64
	lineHeight float64
	width      int
	height     int
}

func layoutGrid(g *GlyphGrid, face font.Face, opts ExportOptions) gridLayout {
	base, ok := face.GlyphAdvance('M')
	if !ok {
		base = fixed.I(int(math.Ceil(opts.FontSize * 0.6)))
	}
	advance := float64(base)/64 + opts.LetterSpacing*opts.FontSize
	lineHeight := opts.LineHeight * opts.FontSize

	return gridLayout{
		advance:    advance,
		lineHeight: lineHeight,
		width:      int(math.Ceil(float64(g.Width()) * advance)),
		height:     int(math.Ceil(float64(g.Height()) * lineHeight)),
	}
}

// RenderGrid draws g onto a solid background, one glyph per cell, with no
// wrapping. An empty grid yields a nil image and no error.
func RenderGrid(g *GlyphGrid, opts ExportOptions) (*imageutil.RGBAImage, error) {
	if g.Empty() {
		return nil, nil
	}
	if opts.FontSize <= 0 || opts.LineHeight <= 0 {
		return nil, fmt.Errorf("%w: font size %g, line height %g",
			ErrDegenerateDimensions, opts.FontSize, opts.LineHeight)
	}

	bg, err := parseHexColor(opts.Background)
	if err != nil {
		return nil, err
	}
	fg, err := parseHexColor(opts.Foreground)
	if err != nil {
		return nil, err
	}

	otf, err := defaultExportFont()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	defer face.Close()

	layout := layoutGrid(g, face, opts)
	img := imageutil.NewRGBAImage(layout.width, layout.height)
	draw.Draw(img.RGBA, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	ascent := face.Metrics().Ascent
	drawer := font.Drawer{
		Dst:  img.RGBA,
		Src:  image.NewUniform(fg),
		Face: face,
	}
	for y, line := range g.lines {
		top := fixed.Int26_6(math.Round(float64(y) * layout.lineHeight * 64))
		for x, r := range line {
			if r == ' ' {
				continue
			}
			drawer.Dot = fixed.Point26_6{
				X: fixed.Int26_6(math.Round(float64(x) * layout.advance * 64)),
				Y: top + ascent,
			}
			drawer.DrawString(string(r))
		}
	}

	Logger().Debug("rendered grid",
		"columns", g.Width(), "lines", g.Height(),
		"width", layout.width, "height", layout.height)
	return img, nil
}

// Export renders g and encodes it to w. An empty grid writes nothing.
func Export(w io.Writer, g *GlyphGrid, opts ExportOptions) error {
	img, err := RenderGrid(g, opts)
	if err != nil || img == nil {
		return err
	}
	format := opts.Format
	if format == "" {
		format = imageutil.FormatJPEG
	}
	return imageutil.Encode(w, img, format, opts.Quality)
}

// ExportFile renders g to path. The format comes from opts.Format or, when
// empty, from the file extension. An empty grid creates no file.
func ExportFile(path string, g *GlyphGrid, opts ExportOptions) error {
	if g.Empty() {
		return nil
	}
	if opts.Format == "" {
		opts.Format = imageutil.FormatFromPath(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Export(f, g, opts); err != nil {
		f.Close()
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	return f.Close()
}
