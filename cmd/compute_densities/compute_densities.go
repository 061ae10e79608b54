package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/jessevdk/go-flags"

	"github.com/wbrown/glyphart"
)

// Options are the command line flags of compute_densities.
type Options struct {
	Font     string  `short:"f" long:"font" description:"Path to a TTF font (default: embedded Go Mono)"`
	Output   string  `short:"o" long:"output" description:"Path to save the density table" required:"yes"`
	Mode     string  `short:"m" long:"mode" description:"Character set" choice:"default" choice:"custom" default:"default"`
	Chars    string  `short:"c" long:"chars" description:"Characters to measure when --mode=custom"`
	Width    int     `long:"cell-width" description:"Sampling surface width in pixels" default:"12"`
	Height   int     `long:"cell-height" description:"Sampling surface height in pixels" default:"16"`
	FontSize float64 `long:"font-size" description:"Sampling font size in pixels" default:"16"`
	Print    bool    `short:"p" long:"print" description:"Print the glyphs ordered from lightest to densest"`
}

func main() {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	mode := glyphart.ModeDefault
	if opts.Mode == glyphart.ModeCustom.String() {
		mode = glyphart.ModeCustom
	}
	chars := glyphart.NewCharacterSet(mode, opts.Chars)
	geometry := glyphart.SurfaceGeometry{
		Width:    opts.Width,
		Height:   opts.Height,
		FontSize: opts.FontSize,
	}

	fontName := opts.Font
	if fontName == "" {
		fontName = glyphart.DefaultFontName
	}
	log.Printf("Computing densities for %d glyphs with font: %s", chars.Len(), fontName)

	table, err := computeDensities(opts.Font, chars, geometry)
	if err != nil {
		log.Fatalf("Failed to compute densities: %v", err)
	}

	lo, hi := glyphart.NewRamp(table).DensityRange()
	log.Printf("Computed %d densities, range %.4f..%.4f", table.Len(), lo, hi)

	if opts.Print {
		printRamp(table)
	}

	if err := glyphart.SaveDensityTable(table, opts.Output); err != nil {
		log.Fatalf("Failed to save density table: %v", err)
	}

	fileInfo, err := os.Stat(opts.Output)
	if err == nil {
		log.Printf("Saved density table to %s (%.2f KB)", opts.Output, float64(fileInfo.Size())/1024)
	}
}

// computeDensities measures chars with the font at fontPath, or the
// embedded font when fontPath is empty.
func computeDensities(fontPath string, chars glyphart.CharacterSet, geometry glyphart.SurfaceGeometry) (*glyphart.DensityTable, error) {
	if fontPath == "" {
		f, err := glyphart.DefaultFont()
		if err != nil {
			return nil, err
		}
		return glyphart.BuildDensityTable(chars, f, geometry)
	}

	f, err := glyphart.LoadFont(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	return glyphart.BuildDensityTable(chars, f, geometry)
}

// printRamp lists the distinct glyphs of t by ascending density.
func printRamp(t *glyphart.DensityTable) {
	entries := t.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score < entries[j].Score
	})

	seen := make(map[rune]bool, len(entries))
	for _, e := range entries {
		if seen[e.Char] {
			continue
		}
		seen[e.Char] = true
		fmt.Printf("%q\t%.4f\n", e.Char, e.Score)
	}
}
