package glyphart

import (
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// CharacterMode selects where a CharacterSet comes from.
type CharacterMode int

const (
	// ModeDefault uses the built-in keyboard set.
	ModeDefault CharacterMode = iota
	// ModeCustom uses a caller supplied string.
	ModeCustom
)

// String returns the mode name used on the command line.
func (m CharacterMode) String() string {
	switch m {
	case ModeCustom:
		return "custom"
	default:
		return "default"
	}
}

// KeyboardCharacters are the 94 visible printable ASCII characters.
const KeyboardCharacters = "!\"#$%&'()*+,-./0123456789:;<=>?@" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"

// BlankGlyph is written for every cell when a CharacterSet is empty.
const BlankGlyph = ' '

// DefaultCharacters is the keyboard set with the blank glyph in front.
// The blank renders with zero ink, which anchors the light end of the ramp.
var DefaultCharacters = CharacterSet(string(BlankGlyph) + KeyboardCharacters)

// CharacterSet is an ordered sequence of candidate glyphs. Duplicates are
// allowed; they only reduce the number of distinct tones.
type CharacterSet []rune

// NewCharacterSet returns the set for the given mode. Custom strings are
// NFC-normalized and fullwidth forms are folded to their narrow
// equivalents so each rune occupies one monospace cell.
func NewCharacterSet(mode CharacterMode, custom string) CharacterSet {
	if mode == ModeDefault {
		return append(CharacterSet(nil), DefaultCharacters...)
	}
	folded := width.Fold.String(norm.NFC.String(custom))
	return CharacterSet(folded)
}

// Len returns the number of runes in the set, duplicates included.
func (cs CharacterSet) Len() int {
	return len(cs)
}

// Key returns a comparable identity for the set, used to decide when a
// density table must be rebuilt.
func (cs CharacterSet) Key() string {
	return string(cs)
}

// Distinct returns the runes of the set with duplicates removed, keeping
// first occurrence order.
func (cs CharacterSet) Distinct() []rune {
	seen := make(map[rune]bool, len(cs))
	out := make([]rune, 0, len(cs))
	for _, r := range cs {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
