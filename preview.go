package glyphart

import (
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/wbrown/glyphart/imageutil"
)

const (
	// MinZoom and MaxZoom bound the display zoom factor.
	MinZoom = 0.05
	MaxZoom = 3.0

	// DefaultZoom shows the export at its natural size.
	DefaultZoom = 1.0
)

// ClampZoom limits a zoom factor to [MinZoom, MaxZoom]. NaN selects
// DefaultZoom.
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return DefaultZoom
	}
	return min(max(z, MinZoom), MaxZoom)
}

// RenderPreview renders g as RenderGrid does and scales the result by the
// clamped zoom factor. Zoom only affects the preview raster, never the
// grid or the export.
func RenderPreview(g *GlyphGrid, opts ExportOptions, zoom float64) (*imageutil.RGBAImage, error) {
	img, err := RenderGrid(g, opts)
	if err != nil || img == nil {
		return nil, err
	}
	return imageutil.Zoom(img, ClampZoom(zoom), imageutil.InterpolationLinear), nil
}

// DetectProfile returns the color profile supported by w. Writers that are
// not terminals get termenv.Ascii.
func DetectProfile(w io.Writer) termenv.Profile {
	return termenv.NewOutput(w).EnvColorProfile()
}

// WriteTerminal prints g to w styled with the export colors. With the
// Ascii profile the output is the plain grid text.
func WriteTerminal(w io.Writer, g *GlyphGrid, profile termenv.Profile, opts ExportOptions) error {
	if profile == termenv.Ascii {
		_, err := g.WriteTo(w)
		return err
	}

	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)
	style := renderer.NewStyle().
		Foreground(lipgloss.Color(opts.Foreground)).
		Background(lipgloss.Color(opts.Background))

	for _, line := range g.Lines() {
		if _, err := io.WriteString(w, style.Render(line)+"\n"); err != nil {
			return err
		}
	}
	return nil
}
