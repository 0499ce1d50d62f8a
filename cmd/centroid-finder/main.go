// centroid-finder writes the centroid of the largest region matching a
// target color, for every frame of a video, to a CSV file.
//
// Usage:
//
//	centroid-finder [flags] <inputPath> <outputCsv> <targetColor> <threshold>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-centroid/internal/log"
	"github.com/teslashibe/go-centroid/pkg/centroid"
	"github.com/teslashibe/go-centroid/pkg/processor"
	"github.com/teslashibe/go-centroid/pkg/sink"
	"github.com/teslashibe/go-centroid/pkg/video"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	cancel()
	os.Exit(code)
}

// run returns the process exit code: 0 on success, 1 on processing
// failure, 2 on bad usage.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, errUsage) {
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 2
	}

	log.Init(opts.logLevel, opts.logFormat)

	src, err := video.OpenFile(opts.input)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 1
	}
	defer src.Close()

	out, err := sink.CreateCSV(opts.output)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 1
	}

	log.Info("processing video",
		"input", opts.input,
		"output", opts.output,
		"color", opts.color.Hex(),
		"threshold", opts.threshold,
		"fps", src.FrameRate(),
		"frames", src.FrameCount(),
		"workers", opts.workers,
	)

	cfg := processor.DefaultConfig()
	cfg.Workers = opts.workers
	p := processor.New(centroid.NewPipeline(opts.color, opts.threshold), cfg)

	sum, err := p.Run(ctx, src, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(stderr, "❌ Processing failed: %v\n", err)
		return 1
	}

	log.Info("processing complete",
		"frames", sum.Frames,
		"detected", sum.Detected,
		"gaps", sum.Gaps,
		"elapsed", sum.Elapsed.Round(time.Millisecond),
	)
	return 0
}
