package glyphart

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Ramp is a density table ordered from the lightest glyph (index 0) to
// the densest (last index). Darker pixels select later entries.
type Ramp struct {
	glyphs     []rune
	minDensity float64
	maxDensity float64
}

// NewRamp sorts the table's entries by ascending density. Equal densities
// keep their CharacterSet order.
func NewRamp(t *DensityTable) *Ramp {
	entries := t.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score < entries[j].Score
	})

	r := &Ramp{glyphs: make([]rune, len(entries))}
	scores := make([]float64, len(entries))
	for i, e := range entries {
		r.glyphs[i] = e.Char
		scores[i] = e.Score
	}
	if len(scores) > 0 {
		r.minDensity = floats.Min(scores)
		r.maxDensity = floats.Max(scores)
	}
	return r
}

// Len returns the number of glyphs on the ramp.
func (r *Ramp) Len() int {
	return len(r.glyphs)
}

// Glyphs returns a copy of the ramp, lightest first.
func (r *Ramp) Glyphs() []rune {
	return append([]rune(nil), r.glyphs...)
}

// DensityRange returns the smallest and largest density on the ramp.
func (r *Ramp) DensityRange() (minDensity, maxDensity float64) {
	return r.minDensity, r.maxDensity
}

// Index maps an intensity to a ramp position:
// round((1 - I/255) * (n - 1)), clamped to [0, n-1]. Density only fixes
// the order of the ramp; it does not scale the index.
func (r *Ramp) Index(intensity uint8) int {
	n := len(r.glyphs)
	if n <= 1 {
		return 0
	}
	b := float64(intensity) / 255
	idx := int(math.Round((1 - b) * float64(n-1)))
	return min(max(idx, 0), n-1)
}

// Glyph returns the glyph for an intensity, or BlankGlyph for an empty
// ramp.
func (r *Ramp) Glyph(intensity uint8) rune {
	if len(r.glyphs) == 0 {
		return BlankGlyph
	}
	return r.glyphs[r.Index(intensity)]
}
