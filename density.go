package glyphart

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"image"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// SurfaceGeometry describes the sampling surface a glyph is rendered onto
// when its density is measured.
type SurfaceGeometry struct {
	Width    int
	Height   int
	FontSize float64 // pixels, rendered at 72 DPI
}

// DefaultSurfaceGeometry is one 16px monospace cell.
var DefaultSurfaceGeometry = SurfaceGeometry{Width: 12, Height: 16, FontSize: 16}

// Cells returns the number of sample cells on the surface.
func (g SurfaceGeometry) Cells() int {
	return g.Width * g.Height
}

// Surface is a scoped drawing surface for measuring glyph ink coverage.
// A Surface must not be used after Release; Sample on a released surface
// returns ErrRenderingUnavailable.
type Surface struct {
	geometry SurfaceGeometry
	img      *image.Alpha
	ctx      *freetype.Context
	baseline int
}

// AcquireSurface prepares an alpha surface and a freetype context drawing
// white ink onto it. The baseline sits the font's descent above the bottom
// edge so descenders and underscores stay on the surface. The origin is at
// x=0.
func AcquireSurface(f *truetype.Font, g SurfaceGeometry) (*Surface, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: no font", ErrRenderingUnavailable)
	}
	if g.Width <= 0 || g.Height <= 0 || g.FontSize <= 0 {
		return nil, fmt.Errorf("%w: invalid surface %dx%d at %gpx",
			ErrRenderingUnavailable, g.Width, g.Height, g.FontSize)
	}

	face := truetype.NewFace(f, &truetype.Options{
		Size:    g.FontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	metrics := face.Metrics()
	face.Close()
	baseline := g.Height - metrics.Descent.Ceil()
	if baseline <= 0 {
		baseline = metrics.Ascent.Ceil()
	}

	img := image.NewAlpha(image.Rect(0, 0, g.Width, g.Height))

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(g.FontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingNone)

	return &Surface{
		geometry: g,
		img:      img,
		ctx:      ctx,
		baseline: baseline,
	}, nil
}

// Sample clears the surface, draws r and returns the number of cells with
// any ink.
func (s *Surface) Sample(r rune) (int, error) {
	if s == nil || s.img == nil {
		return 0, ErrRenderingUnavailable
	}
	clear(s.img.Pix)

	if _, err := s.ctx.DrawString(string(r), freetype.Pt(0, s.baseline)); err != nil {
		return 0, fmt.Errorf("%w: draw %q: %v", ErrRenderingUnavailable, r, err)
	}

	lit := 0
	for _, a := range s.img.Pix {
		if a > 0 {
			lit++
		}
	}
	return lit, nil
}

// Release drops the surface's buffers.
func (s *Surface) Release() {
	s.img = nil
	s.ctx = nil
}

// DensityEntry pairs a glyph with its ink coverage in [0, 1].
type DensityEntry struct {
	Char  rune
	Score float64
}

// DensityTable holds the ink coverage of every glyph of a CharacterSet,
// in set order. It is immutable once built and safe to share.
type DensityTable struct {
	entries  []DensityEntry
	scores   map[rune]float64
	key      string
	fontName string
	geometry SurfaceGeometry
}

// NewDensityTable builds a table from explicit entries. Scores are clamped
// to [0, 1]. A rune appearing twice keeps the score of its first entry.
func NewDensityTable(entries []DensityEntry) *DensityTable {
	t := &DensityTable{
		entries: make([]DensityEntry, len(entries)),
		scores:  make(map[rune]float64, len(entries)),
	}
	chars := make([]rune, len(entries))
	for i, e := range entries {
		if s, ok := t.scores[e.Char]; ok {
			e.Score = s
		} else {
			e.Score = min(max(e.Score, 0), 1)
			t.scores[e.Char] = e.Score
		}
		t.entries[i] = e
		chars[i] = e.Char
	}
	t.key = string(chars)
	return t
}

// BuildDensityTable measures every glyph of cs on a fresh sampling surface.
// Repeated runes are measured once.
func BuildDensityTable(cs CharacterSet, f *truetype.Font, g SurfaceGeometry) (*DensityTable, error) {
	surface, err := AcquireSurface(f, g)
	if err != nil {
		return nil, err
	}
	defer surface.Release()

	total := float64(g.Cells())
	measured := make(map[rune]float64, len(cs))
	entries := make([]DensityEntry, len(cs))
	for i, r := range cs {
		score, ok := measured[r]
		if !ok {
			lit, err := surface.Sample(r)
			if err != nil {
				return nil, err
			}
			score = float64(lit) / total
			measured[r] = score
		}
		entries[i] = DensityEntry{Char: r, Score: score}
	}

	t := NewDensityTable(entries)
	t.fontName = f.Name(truetype.NameIDFontFullName)
	t.geometry = g
	Logger().Debug("density table built",
		"glyphs", len(cs), "distinct", len(measured), "font", t.fontName)
	return t, nil
}

// BuildDefaultDensityTable measures cs with the embedded reference font on
// the default surface.
func BuildDefaultDensityTable(cs CharacterSet) (*DensityTable, error) {
	f, err := DefaultFont()
	if err != nil {
		return nil, err
	}
	return BuildDensityTable(cs, f, DefaultSurfaceGeometry)
}

// Len returns the number of entries, duplicates included.
func (t *DensityTable) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in CharacterSet order.
func (t *DensityTable) Entries() []DensityEntry {
	return append([]DensityEntry(nil), t.entries...)
}

// Score returns the density of r.
func (t *DensityTable) Score(r rune) (float64, bool) {
	s, ok := t.scores[r]
	return s, ok
}

// Matches reports whether the table was built for cs.
func (t *DensityTable) Matches(cs CharacterSet) bool {
	return t != nil && t.key == cs.Key()
}

// FontName returns the name of the font the table was measured with.
func (t *DensityTable) FontName() string {
	return t.fontName
}

// Geometry returns the sampling surface the table was measured on.
func (t *DensityTable) Geometry() SurfaceGeometry {
	return t.geometry
}

// densityTableData is the serialized form of a DensityTable.
type densityTableData struct {
	FontName string
	Geometry SurfaceGeometry
	Chars    []rune
	Scores   []float64
}

// SaveDensityTable writes t to path as gzip-compressed gob.
func SaveDensityTable(t *DensityTable, path string) error {
	data := densityTableData{
		FontName: t.fontName,
		Geometry: t.geometry,
		Chars:    make([]rune, len(t.entries)),
		Scores:   make([]float64, len(t.entries)),
	}
	for i, e := range t.entries {
		data.Chars[i] = e.Char
		data.Scores[i] = e.Score
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(&data); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode density table: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write density table: %w", err)
	}
	return nil
}

// LoadDensityTable reads a table written by SaveDensityTable.
func LoadDensityTable(path string) (*DensityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read density table: %w", err)
	}

	gr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	var data densityTableData
	if err := gob.NewDecoder(gr).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode density table: %w", err)
	}
	if len(data.Chars) != len(data.Scores) {
		return nil, fmt.Errorf("corrupt density table: %d glyphs, %d scores",
			len(data.Chars), len(data.Scores))
	}

	entries := make([]DensityEntry, len(data.Chars))
	for i := range data.Chars {
		entries[i] = DensityEntry{Char: data.Chars[i], Score: data.Scores[i]}
	}
	t := NewDensityTable(entries)
	t.fontName = data.FontName
	t.geometry = data.Geometry
	return t, nil
}
