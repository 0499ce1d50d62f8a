// video-player shows a video in a window. With -color and -threshold it
// shows the binarized mask and marks the largest matching region.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-centroid/internal/log"
	"github.com/teslashibe/go-centroid/pkg/centroid"
	"github.com/teslashibe/go-centroid/pkg/preview"
	"github.com/teslashibe/go-centroid/pkg/video"
)

func main() {
	colorArg := flag.String("color", "", "Target color as RRGGBB; enables mask view")
	threshold := flag.Float64("threshold", 0, "Color distance threshold for the mask view")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: video-player [flags] <videoPath>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	log.Init(*logLevel, "text")

	var binarizer *centroid.Binarizer
	if *colorArg != "" {
		target, err := centroid.ParseRGB(*colorArg)
		if err != nil {
			fatalf("invalid -color %q: %v", *colorArg, err)
		}
		if !(*threshold >= 0) || math.IsInf(*threshold, 1) {
			fatalf("-threshold must be a non-negative number")
		}
		binarizer = centroid.NewBinarizer(nil, target, *threshold)
	}

	path := flag.Arg(0)
	src, err := video.OpenFile(path)
	if err != nil {
		fatalf("%v", err)
	}
	defer src.Close()

	window := preview.NewWindow("Video Player - " + path)
	defer window.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("playing", "path", path, "fps", src.FrameRate(), "frames", src.FrameCount(), "mask", binarizer != nil)
	shown, err := preview.NewPlayer(window, binarizer).Play(ctx, src)
	if err != nil && ctx.Err() == nil {
		log.Error("playback failed", "frames", shown, "error", err)
		return
	}
	log.Info("playback finished", "frames", shown)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
	os.Exit(1)
}
