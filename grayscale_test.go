package glyphart

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/wbrown/glyphart/imageutil"
)

func TestClampWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{200, 200},
		{300, 300},
		{301, 300},
		{1000, 300},
	}
	for _, tt := range tests {
		if got := ClampWidth(tt.in); got != tt.want {
			t.Errorf("ClampWidth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTargetHeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		width, srcW, srcH, want int
	}{
		{200, 400, 300, 150},
		{3, 10, 5, 2}, // 1.5 rounds up
		{10, 100, 4, 0},
		{2, 2, 2, 2},
		{7, 0, 10, 0},
	}
	for _, tt := range tests {
		if got := TargetHeight(tt.width, tt.srcW, tt.srcH); got != tt.want {
			t.Errorf("TargetHeight(%d, %d, %d) = %d, want %d",
				tt.width, tt.srcW, tt.srcH, got, tt.want)
		}
	}
}

func TestNormalizeDimensions(t *testing.T) {
	t.Parallel()

	src := imageutil.CreateGradientImage(64, 48)
	tests := []struct {
		width         int
		wantW, wantH  int
		interpolation imageutil.Interpolation
	}{
		{32, 32, 24, imageutil.InterpolationLinear},
		{0, 1, 1, imageutil.InterpolationLinear},
		{1000, 300, 225, imageutil.InterpolationNearest},
		{10, 10, 8, imageutil.InterpolationArea},
		{20, 20, 15, imageutil.InterpolationLanczos},
	}

	for _, tt := range tests {
		buf, err := Normalize(src, tt.width, NormalizeOptions{Interpolation: tt.interpolation})
		if err != nil {
			t.Fatalf("Normalize(width=%d) failed: %v", tt.width, err)
		}
		if buf.Width() != tt.wantW || buf.Height() != tt.wantH {
			t.Errorf("Normalize(width=%d, %s) = %dx%d, want %dx%d", tt.width,
				tt.interpolation, buf.Width(), buf.Height(), tt.wantW, tt.wantH)
		}
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	t.Parallel()

	if _, err := Normalize(nil, 10, NormalizeOptions{}); !errors.Is(err, ErrDegenerateDimensions) {
		t.Errorf("nil source: got %v", err)
	}
	empty := imageutil.NewRGBAImage(0, 0)
	if _, err := Normalize(empty, 10, NormalizeOptions{}); !errors.Is(err, ErrDegenerateDimensions) {
		t.Errorf("empty source: got %v", err)
	}
	wide := imageutil.CreateGradientImage(100, 1)
	if _, err := Normalize(wide, 10, NormalizeOptions{}); !errors.Is(err, ErrDegenerateDimensions) {
		t.Errorf("zero computed height: got %v", err)
	}
}

func TestNormalizeChannelAverage(t *testing.T) {
	t.Parallel()

	src := imageutil.CreateSolidImage(4, 4, imageutil.RGB{R: 10, G: 20, B: 31})
	buf, err := Normalize(src, 2, NormalizeOptions{Interpolation: imageutil.InterpolationNearest})
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			if got := buf.Intensity(x, y); got != 20 {
				t.Errorf("intensity at (%d,%d) = %d, want 20", x, y, got)
			}
			if got := buf.Alpha(x, y); got != 255 {
				t.Errorf("alpha at (%d,%d) = %d, want 255", x, y, got)
			}
		}
	}
}

func TestNormalizeInvert(t *testing.T) {
	t.Parallel()

	src := imageutil.CreateSolidImage(4, 4, imageutil.RGB{})
	buf, err := Normalize(src, 4, NormalizeOptions{
		Interpolation: imageutil.InterpolationNearest,
		Adjustments:   imageutil.Adjustments{Invert: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.Intensity(1, 1); got != 255 {
		t.Errorf("inverted black intensity = %d, want 255", got)
	}
}

func TestNormalizeTranslucentKeepsColor(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
		}
	}

	buf, err := Normalize(imageutil.RGBAImageFromImage(src), 2, NormalizeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			if got := buf.Intensity(x, y); got != 255 {
				t.Errorf("intensity at (%d,%d) = %d, want 255", x, y, got)
			}
			if got := buf.Alpha(x, y); got != 128 {
				t.Errorf("alpha at (%d,%d) = %d, want 128", x, y, got)
			}
		}
	}
}
