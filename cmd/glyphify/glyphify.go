package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/wbrown/glyphart"
	"github.com/wbrown/glyphart/imageutil"
)

// Options are the command line flags of glyphify.
type Options struct {
	Width     int    `short:"w" long:"width" description:"Output width in characters (1-300)" default:"200"`
	Mode      string `short:"m" long:"mode" description:"Character set" choice:"default" choice:"custom" default:"default"`
	Chars     string `short:"c" long:"chars" description:"Characters to draw with when --mode=custom"`
	Densities string `short:"d" long:"densities" description:"Density table written by compute_densities"`
	Font      string `short:"f" long:"font" description:"TTF font to measure densities with (default: embedded Go Mono)"`

	Interpolation string  `short:"i" long:"interpolation" description:"Resampling method" choice:"linear" choice:"nearest" choice:"area" choice:"lanczos" default:"linear"`
	Contrast      float32 `long:"contrast" description:"Contrast adjustment in percent (-100..100)"`
	Brightness    float32 `long:"brightness" description:"Brightness adjustment in percent (-100..100)"`
	Gamma         float32 `long:"gamma" description:"Gamma correction (1 = unchanged)"`
	Invert        bool    `long:"invert" description:"Invert the image before mapping"`
	Sharpen       bool    `long:"sharpen" description:"Sharpen the image before mapping"`

	Output     string  `short:"o" long:"output" description:"Export the art as an image (single input; format from extension)"`
	OutDir     string  `long:"outdir" description:"Export every input to this directory as <name>.jpg (repeated names get -2, -3, ...)"`
	ZoomOutput string  `long:"zoom-output" description:"Write the zoomed preview image to this file (single input)"`
	Zoom       float64 `short:"z" long:"zoom" description:"Preview zoom (0.05-3.0)" default:"1.0"`
	FontSize   float64 `long:"font-size" description:"Export font size in pixels" default:"10"`
	Background string  `long:"bg" description:"Export background color" default:"#000000"`
	Foreground string  `long:"fg" description:"Export glyph color" default:"#ffffff"`
	Quality    int     `long:"quality" description:"JPEG quality (1-100)" default:"90"`

	Preview bool `short:"p" long:"preview" description:"Print with terminal colors"`
	Quiet   bool `short:"q" long:"quiet" description:"Do not print the art"`
	Jobs    int  `short:"j" long:"jobs" description:"Images converted concurrently" default:"4"`
	Verbose bool `short:"v" long:"verbose" description:"Log pipeline details to stderr"`

	Args struct {
		Images []string `positional-arg-name:"IMAGE" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	if opts.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
		glyphart.SetLogger(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts Options) error {
	inputs := opts.Args.Images
	if len(inputs) > 1 && (opts.Output != "" || opts.ZoomOutput != "") {
		return fmt.Errorf("--output and --zoom-output take a single image, got %d; use --outdir", len(inputs))
	}

	mode := glyphart.ModeDefault
	if opts.Mode == glyphart.ModeCustom.String() {
		mode = glyphart.ModeCustom
	}
	chars := glyphart.NewCharacterSet(mode, opts.Chars)

	interp, err := imageutil.ParseInterpolation(opts.Interpolation)
	if err != nil {
		return err
	}

	beginInit := time.Now()
	table, err := loadDensities(opts, chars)
	if err != nil {
		return err
	}
	slog.Debug("densities ready", "glyphs", table.Len(), "font", table.FontName(),
		"elapsed", time.Since(beginInit))

	exportOpts := glyphart.DefaultExportOptions()
	exportOpts.FontSize = opts.FontSize
	exportOpts.Background = opts.Background
	exportOpts.Foreground = opts.Foreground
	exportOpts.Quality = opts.Quality

	sessionOpts := []glyphart.SessionOption{
		glyphart.WithCharacters(chars),
		glyphart.WithDensityTable(table),
		glyphart.WithWidth(opts.Width),
		glyphart.WithZoom(opts.Zoom),
		glyphart.WithInterpolation(interp),
		glyphart.WithAdjustments(imageutil.Adjustments{
			Contrast:   opts.Contrast,
			Brightness: opts.Brightness,
			Gamma:      opts.Gamma,
			Invert:     opts.Invert,
		}),
		glyphart.WithSharpen(opts.Sharpen),
	}

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var outPaths []string
	if opts.OutDir != "" {
		outPaths = exportPaths(opts.OutDir, inputs)
	}

	sessions := make([]*glyphart.Session, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Jobs))
	for i, path := range inputs {
		i, path := i, path
		g.Go(func() error {
			s, err := glyphart.NewSession(sessionOpts...)
			if err != nil {
				return err
			}
			if err := s.LoadFile(gctx, path); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if opts.OutDir != "" {
				if err := s.ExportFile(outPaths[i], exportOpts); err != nil {
					return err
				}
			}
			sessions[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if !opts.Quiet {
		if err := printAll(inputs, sessions, opts.Preview, exportOpts); err != nil {
			return err
		}
	}

	if opts.Output != "" {
		if err := sessions[0].ExportFile(opts.Output, exportOpts); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Image written to %s\n", opts.Output)
	}
	if opts.ZoomOutput != "" {
		img, err := sessions[0].Preview(exportOpts)
		if err != nil {
			return err
		}
		if img != nil {
			if err := imageutil.SaveImage(img, opts.ZoomOutput); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Preview written to %s at zoom %.2f\n",
				opts.ZoomOutput, sessions[0].Zoom())
		}
	}
	return nil
}

// loadDensities returns a precomputed table when one matching chars was
// given, and otherwise measures chars with the selected font.
func loadDensities(opts Options, chars glyphart.CharacterSet) (*glyphart.DensityTable, error) {
	if opts.Densities != "" {
		table, err := glyphart.LoadDensityTable(opts.Densities)
		if err != nil {
			return nil, err
		}
		if table.Matches(chars) {
			return table, nil
		}
		slog.Warn("density table was built for another character set, remeasuring",
			"path", opts.Densities)
	}

	if opts.Font == "" {
		return glyphart.BuildDefaultDensityTable(chars)
	}
	f, err := glyphart.LoadFont(opts.Font)
	if err != nil {
		return nil, err
	}
	return glyphart.BuildDensityTable(chars, f, glyphart.DefaultSurfaceGeometry)
}

// outDirPath names the export of input inside dir.
func outDirPath(dir, input string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return filepath.Join(dir, glyphart.DefaultExportFilename)
	}
	return filepath.Join(dir, name+".jpg")
}

// exportPaths names the exports of inputs inside dir. Inputs sharing a base
// name get -2, -3, ... suffixes in argument order so no export overwrites
// another.
func exportPaths(dir string, inputs []string) []string {
	paths := make([]string, len(inputs))
	used := make(map[string]bool, len(inputs))
	for i, input := range inputs {
		p := outDirPath(dir, input)
		stem := strings.TrimSuffix(p, filepath.Ext(p))
		for n := 2; used[p]; n++ {
			p = fmt.Sprintf("%s-%d%s", stem, n, filepath.Ext(p))
		}
		used[p] = true
		paths[i] = p
	}
	return paths
}

// printAll writes every grid to stdout in argument order.
func printAll(inputs []string, sessions []*glyphart.Session, colored bool, opts glyphart.ExportOptions) error {
	profile := glyphart.DetectProfile(os.Stdout)
	for i, s := range sessions {
		if len(inputs) > 1 {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("==> %s <==\n", inputs[i])
		}
		grid := s.Grid()
		if colored {
			if err := glyphart.WriteTerminal(os.Stdout, grid, profile, opts); err != nil {
				return err
			}
			continue
		}
		if _, err := grid.WriteTo(os.Stdout); err != nil {
			return err
		}
	}
	return nil
}
