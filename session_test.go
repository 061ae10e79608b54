package glyphart

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/wbrown/glyphart/imageutil"
)

// encodePNG returns img encoded as PNG.
func encodePNG(t *testing.T, img *imageutil.RGBAImage) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imageutil.Encode(&buf, img, imageutil.FormatPNG, 0); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func solidPNG(t *testing.T, w, h int, c imageutil.RGB) []byte {
	t.Helper()
	return encodePNG(t, imageutil.CreateSolidImage(w, h, c))
}

var (
	black = imageutil.RGB{}
	white = imageutil.RGB{R: 255, G: 255, B: 255}
)

func TestSessionBlackAndWhite(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithWidth(2))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.LoadImage(ctx, bytes.NewReader(solidPNG(t, 2, 2, black))); err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	grid := s.Grid()
	if grid.Width() != 2 || grid.Height() != 2 {
		t.Fatalf("grid is %dx%d, want 2x2", grid.Width(), grid.Height())
	}
	_, densest := NewRamp(s.Densities()).DensityRange()
	first := grid.At(0, 0)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if grid.At(x, y) != first {
				t.Errorf("black cell (%d,%d) = %q, want %q", x, y, grid.At(x, y), first)
			}
		}
	}
	if score, _ := s.Densities().Score(first); score != densest {
		t.Errorf("black maps to %q with density %f, want densest %f", first, score, densest)
	}

	if err := s.LoadImage(ctx, bytes.NewReader(solidPNG(t, 2, 2, white))); err != nil {
		t.Fatal(err)
	}
	for _, line := range s.Grid().Lines() {
		if line != "  " {
			t.Errorf("white row = %q, want two blanks", line)
		}
	}
}

func TestSessionDimensionLaw(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithWidth(40))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetImage(imageutil.CreateGradientImage(160, 90)); err != nil {
		t.Fatal(err)
	}
	grid := s.Grid()
	if grid.Height() != 23 {
		t.Errorf("height = %d, want round(40*90/160) = 23", grid.Height())
	}
	for y, line := range grid.Lines() {
		if n := len([]rune(line)); n != 40 {
			t.Errorf("line %d has %d glyphs, want 40", y, n)
		}
	}

	if err := s.SetWidth(1000); err != nil {
		t.Fatal(err)
	}
	if s.Width() != MaxWidth || s.Grid().Width() != MaxWidth {
		t.Errorf("width 1000 gave %d columns", s.Grid().Width())
	}
	if err := s.SetWidth(-3); err != nil {
		t.Fatal(err)
	}
	if s.Grid().Width() != 1 || s.Grid().Height() != 1 {
		t.Errorf("width -3 gave %dx%d", s.Grid().Width(), s.Grid().Height())
	}
}

func TestSessionRejectsDegenerateWidth(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithWidth(100))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetImage(imageutil.CreateGradientImage(100, 2)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetWidth(10); !errors.Is(err, ErrDegenerateDimensions) {
		t.Fatalf("SetWidth(10) = %v, want ErrDegenerateDimensions", err)
	}
	if s.Width() != 100 || s.Grid().Width() != 100 {
		t.Errorf("failed resize changed width to %d", s.Width())
	}
}

func TestSessionEmptyCharacterSet(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithCharacters(NewCharacterSet(ModeCustom, "")), WithWidth(6))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetImage(imageutil.CreateCheckerboardImage(12, 6, 2)); err != nil {
		t.Fatal(err)
	}
	grid := s.Grid()
	if grid.Width() != 6 || grid.Height() != 3 {
		t.Fatalf("grid is %dx%d, want 6x3", grid.Width(), grid.Height())
	}
	for _, line := range grid.Lines() {
		if line != strings.Repeat(" ", 6) {
			t.Errorf("line %q is not blank", line)
		}
	}
}

func TestSessionCharacterChange(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithWidth(8))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetImage(imageutil.CreateSolidImage(8, 8, black)); err != nil {
		t.Fatal(err)
	}
	before := s.Densities()

	// Same set: table kept.
	if err := s.SetCharacters(NewCharacterSet(ModeDefault, "")); err != nil {
		t.Fatal(err)
	}
	if s.Densities() != before {
		t.Error("unchanged character set rebuilt the density table")
	}

	if err := s.SetCharacters(CharacterSet("x")); err != nil {
		t.Fatal(err)
	}
	if s.Densities() == before {
		t.Error("new character set kept the old density table")
	}
	for _, line := range s.Grid().Lines() {
		if line != "xxxxxxxx" {
			t.Errorf("line %q, want all 'x'", line)
		}
	}
	if string(s.Characters()) != "x" {
		t.Errorf("Characters() = %q", string(s.Characters()))
	}
}

func TestSessionSharedDensityTable(t *testing.T) {
	t.Parallel()

	table, err := BuildDefaultDensityTable(DefaultCharacters)
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(WithDensityTable(table))
	if err != nil {
		t.Fatal(err)
	}
	if s.Densities() != table {
		t.Error("matching table was not reused")
	}

	other, err := NewSession(WithDensityTable(table), WithCharacters(CharacterSet(" #")))
	if err != nil {
		t.Fatal(err)
	}
	if other.Densities() == table || other.Densities().Len() != 2 {
		t.Error("mismatched table should have been rebuilt")
	}
}

func TestSessionBadImageKeepsGrid(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithWidth(4))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.LoadImage(ctx, bytes.NewReader(solidPNG(t, 4, 4, black))); err != nil {
		t.Fatal(err)
	}
	before := s.Grid()

	err = s.LoadImage(ctx, strings.NewReader("definitely not an image"))
	if !errors.Is(err, ErrUnsupportedImageFormat) {
		t.Fatalf("garbage input: got %v, want ErrUnsupportedImageFormat", err)
	}
	if s.Grid() != before {
		t.Error("failed decode replaced the grid")
	}

	if err := s.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("loading a missing file should fail")
	}
	if s.Grid() != before {
		t.Error("failed open replaced the grid")
	}
}

func TestSessionSupersededLoad(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithWidth(4))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	stale := solidPNG(t, 4, 4, black)
	pr, pw := io.Pipe()
	slow := s.Submit(ctx, pr)

	if err := s.LoadImage(ctx, bytes.NewReader(solidPNG(t, 4, 4, white))); err != nil {
		t.Fatal(err)
	}
	want := s.Grid().String()

	go func() {
		pw.Write(stale)
		pw.Close()
	}()
	if err := <-slow; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("stale load returned %v, want ErrSuperseded", err)
	}
	if got := s.Grid().String(); got != want {
		t.Errorf("stale load replaced the grid:\n%s", got)
	}
	if _, ok := <-slow; ok {
		t.Error("result channel should be closed after one value")
	}
}

func TestSessionCanceledLoad(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithWidth(4))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.LoadImage(ctx, bytes.NewReader(solidPNG(t, 4, 4, black)))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("canceled load returned %v", err)
	}
	if s.Grid() != nil {
		t.Error("canceled load committed a grid")
	}
}

func TestSessionConcurrentLoads(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithWidth(8))
	if err != nil {
		t.Fatal(err)
	}
	data := solidPNG(t, 8, 8, black)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.LoadImage(context.Background(), bytes.NewReader(data))
			if err != nil && !errors.Is(err, ErrSuperseded) {
				t.Errorf("concurrent load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if grid := s.Grid(); grid == nil || grid.Width() != 8 || grid.Height() != 8 {
		t.Error("no load was committed")
	}
}

func TestSessionExport(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithWidth(10), WithZoom(0.5))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultExportFilename)

	// Nothing loaded yet.
	if err := s.ExportFile(path, DefaultExportOptions()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("export before the first image created a file")
	}

	if err := s.SetImage(imageutil.CreateCheckerboardImage(20, 20, 4)); err != nil {
		t.Fatal(err)
	}
	if err := s.ExportFile(path, DefaultExportOptions()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export did not create %s: %v", path, err)
	}

	full, err := RenderGrid(s.Grid(), DefaultExportOptions())
	if err != nil {
		t.Fatal(err)
	}
	preview, err := s.Preview(DefaultExportOptions())
	if err != nil {
		t.Fatal(err)
	}
	if preview.Width() >= full.Width() {
		t.Errorf("zoom 0.5 preview is %d wide, full export %d", preview.Width(), full.Width())
	}

	grid := s.Grid()
	s.SetZoom(3)
	if s.Zoom() != 3 || s.Grid() != grid {
		t.Error("zoom changed the grid")
	}
}

func TestSessionTranslucentWhiteIsBlank(t *testing.T) {
	t.Parallel()

	s, err := NewSession(WithWidth(2))
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
		}
	}
	if err := s.SetImage(src); err != nil {
		t.Fatal(err)
	}
	if got := s.Grid().String(); got != "  \n  \n" {
		t.Errorf("half transparent white grid = %q, want blanks", got)
	}
}
