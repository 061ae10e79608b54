package glyphart

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"

	"github.com/wbrown/glyphart/imageutil"
)

// Session holds the derived-state chain of one conversion: character set,
// density table, source image, grayscale buffer and glyph grid. Each link
// is recomputed only when one of its inputs changes.
//
// A Session is safe for concurrent use. Recomputes run under its lock, so
// two pipeline runs never overlap. Sessions share nothing mutable; the
// only state that may be shared between them is an immutable DensityTable.
type Session struct {
	mu sync.Mutex

	chars     CharacterSet
	width     int
	zoom      float64
	normalize NormalizeOptions
	font      *truetype.Font
	table     *DensityTable

	source *imageutil.RGBAImage
	buffer *GrayscaleBuffer
	grid   *GlyphGrid

	// generation is bumped for every submitted image. A decode finishing
	// with an older generation is discarded.
	generation uint64
}

// SessionOption is a functional option for configuring a Session.
type SessionOption func(*Session)

// NewSession creates a Session with the given options.
// Default values: DefaultCharacters, Width=200, Zoom=1.0, bilinear
// resampling, no adjustments, Go Mono.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		chars: append(CharacterSet(nil), DefaultCharacters...),
		width: DefaultWidth,
		zoom:  DefaultZoom,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.table.Matches(s.chars) {
		Logger().Debug("reusing density table", "glyphs", s.table.Len())
		return s, nil
	}
	if err := s.rebuildTable(); err != nil {
		return nil, err
	}
	return s, nil
}

// WithCharacters sets the candidate glyphs.
func WithCharacters(cs CharacterSet) SessionOption {
	return func(s *Session) {
		s.chars = append(CharacterSet(nil), cs...)
	}
}

// WithWidth sets the grid width in characters, clamped to [1, 300].
func WithWidth(width int) SessionOption {
	return func(s *Session) {
		s.width = ClampWidth(width)
	}
}

// WithZoom sets the preview zoom, clamped to [0.05, 3.0].
func WithZoom(zoom float64) SessionOption {
	return func(s *Session) {
		s.zoom = ClampZoom(zoom)
	}
}

// WithInterpolation sets the resampling method used for normalization.
func WithInterpolation(interp imageutil.Interpolation) SessionOption {
	return func(s *Session) {
		s.normalize.Interpolation = interp
	}
}

// WithAdjustments enables the tonal pre-pass.
func WithAdjustments(a imageutil.Adjustments) SessionOption {
	return func(s *Session) {
		s.normalize.Adjustments = a
	}
}

// WithSharpen enables the sharpening pre-pass.
func WithSharpen(sharpen bool) SessionOption {
	return func(s *Session) {
		s.normalize.Sharpen = sharpen
	}
}

// WithFont measures densities with f instead of the embedded Go Mono.
func WithFont(f *truetype.Font) SessionOption {
	return func(s *Session) {
		s.font = f
	}
}

// WithDensityTable reuses a table built elsewhere. It is ignored unless it
// was built for the session's character set.
func WithDensityTable(t *DensityTable) SessionOption {
	return func(s *Session) {
		s.table = t
	}
}

// rebuildTable measures the current character set. Caller holds mu or
// owns s exclusively.
func (s *Session) rebuildTable() error {
	f := s.font
	if f == nil {
		var err error
		if f, err = DefaultFont(); err != nil {
			return err
		}
	}
	t, err := BuildDensityTable(s.chars, f, DefaultSurfaceGeometry)
	if err != nil {
		return err
	}
	s.table = t
	return nil
}

// remap rebuilds the grid from the current buffer and table.
func (s *Session) remap() {
	if s.buffer == nil {
		return
	}
	s.grid = MapGlyphs(s.buffer, s.table)
}

// SetCharacters replaces the character set. The density table is rebuilt
// only when the set differs from the current one; the grid is remapped
// without touching the grayscale buffer.
func (s *Session) SetCharacters(cs CharacterSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table.Matches(cs) {
		Logger().Debug("reusing density table", "glyphs", s.table.Len())
		return nil
	}

	prev := s.chars
	s.chars = append(CharacterSet(nil), cs...)
	if err := s.rebuildTable(); err != nil {
		s.chars = prev
		return err
	}
	s.remap()
	return nil
}

// SetWidth changes the grid width. The buffer and grid are recomputed
// when an image is loaded. A width at which the image would have no rows
// is rejected and the previous width is kept.
func (s *Session) SetWidth(width int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	width = ClampWidth(width)
	if width == s.width {
		return nil
	}
	if s.source == nil {
		s.width = width
		return nil
	}

	buf, err := Normalize(s.source, width, s.normalize)
	if err != nil {
		return err
	}
	s.width = width
	s.buffer = buf
	s.remap()
	return nil
}

// SetZoom sets the preview zoom. It never changes the grid.
func (s *Session) SetZoom(zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = ClampZoom(zoom)
}

// Submit decodes r in the background and commits the image to the session
// when the decode finishes, unless a newer image was submitted meanwhile
// or ctx was canceled. The returned channel receives the outcome exactly
// once: nil on commit, ErrSuperseded, ctx.Err(), or a decode or
// normalization error. On any error the previous grid stays in place.
func (s *Session) Submit(ctx context.Context, r io.Reader) <-chan error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.load(ctx, gen, r)
	}()
	return done
}

func (s *Session) load(ctx context.Context, gen uint64, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	img, format, err := imageutil.Decode(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedImageFormat, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		Logger().Warn("discarding superseded image",
			"generation", gen, "current", s.generation)
		return ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	Logger().Debug("decoded image", "format", format,
		"width", img.Width(), "height", img.Height(), "generation", gen)
	return s.commit(img)
}

// commit installs img as the source and recomputes buffer and grid.
// Caller holds mu.
func (s *Session) commit(img *imageutil.RGBAImage) error {
	buf, err := Normalize(img, s.width, s.normalize)
	if err != nil {
		return err
	}
	s.source = img
	s.buffer = buf
	s.remap()
	return nil
}

// LoadImage decodes r and waits for the result to be committed.
func (s *Session) LoadImage(ctx context.Context, r io.Reader) error {
	return <-s.Submit(ctx, r)
}

// LoadFile opens path and loads it like LoadImage.
func (s *Session) LoadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return s.LoadImage(ctx, f)
}

// SetImage commits an already decoded image synchronously. Pending
// submissions are superseded.
func (s *Session) SetImage(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	return s.commit(imageutil.RGBAImageFromImage(img))
}

// Grid returns the current glyph grid, or nil before the first image.
func (s *Session) Grid() *GlyphGrid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// Densities returns the density table of the current character set.
func (s *Session) Densities() *DensityTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Characters returns a copy of the current character set.
func (s *Session) Characters() CharacterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(CharacterSet(nil), s.chars...)
}

// Width returns the grid width in characters.
func (s *Session) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// Zoom returns the preview zoom.
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// Export encodes the current grid to w. Nothing is written before the
// first image or when the grid is empty.
func (s *Session) Export(w io.Writer, opts ExportOptions) error {
	return Export(w, s.Grid(), opts)
}

// ExportFile writes the current grid to path. No file is created when
// there is nothing to export.
func (s *Session) ExportFile(path string, opts ExportOptions) error {
	return ExportFile(path, s.Grid(), opts)
}

// Preview renders the current grid scaled by the session zoom.
func (s *Session) Preview(opts ExportOptions) (*imageutil.RGBAImage, error) {
	s.mu.Lock()
	g, zoom := s.grid, s.zoom
	s.mu.Unlock()
	return RenderPreview(g, opts, zoom)
}
