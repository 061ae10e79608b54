package glyphart

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// DefaultFontName names the embedded reference font.
const DefaultFontName = "Go Mono"

var (
	defaultFontOnce sync.Once
	defaultFont     *truetype.Font
	defaultFontErr  error

	exportFontOnce sync.Once
	exportFont     *opentype.Font
	exportFontErr  error
)

// DefaultFont returns the embedded Go Mono font parsed for the density
// sampling surface. The font is parsed once and shared; *truetype.Font is
// read-only after parsing.
func DefaultFont() (*truetype.Font, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = freetype.ParseFont(gomono.TTF)
		if defaultFontErr != nil {
			defaultFontErr = fmt.Errorf("%w: parse %s: %v",
				ErrRenderingUnavailable, DefaultFontName, defaultFontErr)
		}
	})
	return defaultFont, defaultFontErr
}

// LoadFont loads a TrueType font from a file.
func LoadFont(path string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}

	f, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderingUnavailable, path, err)
	}
	return f, nil
}

// defaultExportFont returns Go Mono parsed through the opentype package,
// which provides the font.Face used by the exporter.
func defaultExportFont() (*opentype.Font, error) {
	exportFontOnce.Do(func() {
		exportFont, exportFontErr = opentype.Parse(gomono.TTF)
		if exportFontErr != nil {
			exportFontErr = fmt.Errorf("%w: parse %s: %v",
				ErrRenderingUnavailable, DefaultFontName, exportFontErr)
		}
	})
	return exportFont, exportFontErr
}
