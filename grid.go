package glyphart

import (
	"io"
	"strings"
)

// GlyphGrid is the text rendering of an image: one line per buffer row,
// one rune per pixel.
type GlyphGrid struct {
	lines [][]rune
}

// NewGlyphGrid wraps lines as a grid. The lines are not copied.
func NewGlyphGrid(lines [][]rune) *GlyphGrid {
	return &GlyphGrid{lines: lines}
}

// MapGlyphs converts every pixel of buf to the glyph its intensity selects
// on the ramp built from table. The result depends only on its inputs.
func MapGlyphs(buf *GrayscaleBuffer, table *DensityTable) *GlyphGrid {
	ramp := NewRamp(table)
	width, height := buf.Width(), buf.Height()

	store := make([]rune, width*height)
	lines := make([][]rune, height)
	for y := 0; y < height; y++ {
		line := store[y*width : (y+1)*width]
		for x := 0; x < width; x++ {
			line[x] = ramp.Glyph(buf.Intensity(x, y))
		}
		lines[y] = line
	}
	return &GlyphGrid{lines: lines}
}

// Width returns the length of the longest line.
func (g *GlyphGrid) Width() int {
	if g == nil {
		return 0
	}
	w := 0
	for _, line := range g.lines {
		w = max(w, len(line))
	}
	return w
}

// Height returns the number of lines.
func (g *GlyphGrid) Height() int {
	if g == nil {
		return 0
	}
	return len(g.lines)
}

// Empty reports whether the grid has nothing to draw.
func (g *GlyphGrid) Empty() bool {
	return g.Width() == 0
}

// Line returns row y as a string.
func (g *GlyphGrid) Line(y int) string {
	return string(g.lines[y])
}

// At returns the glyph at column x of row y.
func (g *GlyphGrid) At(x, y int) rune {
	return g.lines[y][x]
}

// Lines returns every row as a string.
func (g *GlyphGrid) Lines() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.lines))
	for i, line := range g.lines {
		out[i] = string(line)
	}
	return out
}

// String joins the rows, each terminated by a newline.
func (g *GlyphGrid) String() string {
	if g == nil {
		return ""
	}
	var sb strings.Builder
	for _, line := range g.lines {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteTo writes the grid as text.
func (g *GlyphGrid) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, g.String())
	return int64(n), err
}
