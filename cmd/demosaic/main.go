package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"demosaic/pkg/demosaic"
	"demosaic/pkg/rawio"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	cfa     string
	output  string
	preview string
	gamma   float64
	tile    string
	workers int
	stats   bool
	verbose bool
}

func run(args []string) error {
	fs := flag.NewFlagSet("demosaic", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.cfa, "cfa", "", "CFA pattern (RGGB, GRBG, GBRG, BGGR); defaults to the FITS BAYERPAT or RGGB")
	fs.StringVar(&opts.output, "o", "", "output image (.tif, .png, or any OpenCV format); defaults to <input>.tif")
	fs.StringVar(&opts.preview, "preview", "", "write an 8-bit JPEG preview to this path")
	fs.Float64Var(&opts.gamma, "gamma", 2.2, "preview display gamma")
	fs.StringVar(&opts.tile, "tile", "", "tile size as WxH, e.g. 128x16")
	fs.IntVar(&opts.workers, "workers", 0, "number of worker goroutines (0 = one per CPU)")
	fs.BoolVar(&opts.stats, "stats", false, "print per-channel statistics")
	fs.BoolVar(&opts.verbose, "v", false, "print per-stage timing")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: demosaic [flags] <input-file>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one input file")
	}
	inputFilePath := fs.Arg(0)

	strategy := demosaic.DefaultStrategy()
	if opts.tile != "" {
		w, h, err := parseTile(opts.tile)
		if err != nil {
			return err
		}
		strategy.TileWidth, strategy.TileHeight = w, h
	}
	if opts.workers > 0 {
		strategy.Workers = opts.workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Loading: %s\n", inputFilePath)
	loadStart := time.Now()
	in, err := rawio.Load(inputFilePath)
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Printf("Load: %.3fs\n", time.Since(loadStart).Seconds())
	}

	pattern, source, err := resolvePattern(opts.cfa, in)
	if err != nil {
		return err
	}

	startTime := time.Now()
	img, err := demosaic.DemosaicContext(ctx, in.Raw, pattern, strategy)
	if err != nil {
		return errors.Wrap(err, "demosaicing")
	}
	elapsed := time.Since(startTime)

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputFilePath, filepath.Ext(inputFilePath)) + ".tif"
	}
	writeStart := time.Now()
	if err := rawio.WriteImage(outputPath, img); err != nil {
		return err
	}
	if opts.verbose {
		fmt.Printf("Write: %.3fs\n", time.Since(writeStart).Seconds())
	}

	if opts.preview != "" {
		previewOpts := rawio.DefaultPreviewOptions()
		previewOpts.Pattern = pattern
		previewOpts.Gamma = float32(opts.gamma)
		if err := rawio.WritePreview(img, previewOpts, opts.preview); err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Printf("=== Demosaic Results (%.3fs) ===\n", elapsed.Seconds())
	fmt.Printf("  Image size:   %d x %d\n", img.Width, img.Height)
	fmt.Printf("  CFA pattern:  %s (%s)\n", pattern, source)
	if in.Metadata != nil {
		if camera := in.Metadata.CameraName(); camera != "" {
			fmt.Printf("  Camera:       %s\n", camera)
		}
		if exp, ok := in.Metadata.ExposureTime(); ok {
			fmt.Printf("  Exposure:     %.2fs\n", exp)
		}
	}
	fmt.Printf("  Tiles:        %d (workers=%d)\n", len(strategy.Tiles(img.Bounds())), strategy.Workers)
	fmt.Printf("  Output:       %s\n", outputPath)
	if opts.preview != "" {
		fmt.Printf("  Preview:      %s\n", opts.preview)
	}

	if opts.stats {
		fmt.Println()
		for _, c := range demosaic.Channels {
			st := demosaic.ChannelStatistics(img, c, nil, demosaic.StatAll)
			fmt.Printf("  %s  median=%.1f +/- %.1f  mean=%.2f  std=%.2f  range=[%d, %d]\n",
				c, st.Median, st.MAD, st.Mean, st.StdDev, st.Min, st.Max)
			if st.NegativeCount > 0 {
				fmt.Printf("     %d samples wrapped negative\n", st.NegativeCount)
			}
		}
	}
	fmt.Println("==============================")

	return nil
}

// resolvePattern prefers the flag, then file metadata, then RGGB.
func resolvePattern(flagValue string, in *rawio.Input) (demosaic.CFAPattern, string, error) {
	if flagValue != "" {
		p, err := demosaic.ParseCFAPattern(flagValue)
		return p, "flag", err
	}
	if in.HasPattern {
		return in.Pattern, "header", nil
	}
	return demosaic.RGGB, "default", nil
}

func parseTile(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, errors.Errorf("invalid tile size %q, want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, errors.Errorf("invalid tile width %q", ws)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, errors.Errorf("invalid tile height %q", hs)
	}
	return w, h, nil
}
