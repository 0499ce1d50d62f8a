package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/teslashibe/go-centroid/pkg/centroid"
)

// errUsage is returned after usage has been printed.
var errUsage = errors.New("usage")

type options struct {
	input     string
	output    string
	color     centroid.RGB
	threshold float64
	workers   int
	logLevel  string
	logFormat string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("centroid-finder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.workers, "workers", 1, "Frames analyzed concurrently")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: centroid-finder [flags] <inputPath> <outputCsv> <targetColor> <threshold>")
		fmt.Fprintln(stderr, "  targetColor  hex RGB, e.g. FF0000")
		fmt.Fprintln(stderr, "  threshold    non-negative color distance")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, errUsage
	}
	if fs.NArg() != 4 {
		fs.Usage()
		return opts, errUsage
	}

	opts.input, opts.output = fs.Arg(0), fs.Arg(1)

	info, err := os.Stat(opts.input)
	if err != nil {
		return opts, fmt.Errorf("input video %q not found", opts.input)
	}
	if !info.Mode().IsRegular() {
		return opts, fmt.Errorf("input path %q is not a file", opts.input)
	}

	if opts.color, err = centroid.ParseRGB(fs.Arg(2)); err != nil {
		return opts, fmt.Errorf("invalid target color %q: expected 6 hex digits", fs.Arg(2))
	}

	opts.threshold, err = strconv.ParseFloat(fs.Arg(3), 64)
	if err != nil || !(opts.threshold >= 0) || math.IsInf(opts.threshold, 1) {
		return opts, fmt.Errorf("threshold must be a non-negative number, got %q", fs.Arg(3))
	}

	if opts.workers < 1 {
		return opts, fmt.Errorf("-workers must be at least 1, got %d", opts.workers)
	}
	return opts, nil
}
