// Package processor runs the per-frame centroid analysis over a video and
// forwards one record per frame to a sink.
package processor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/teslashibe/go-centroid/internal/log"
	"github.com/teslashibe/go-centroid/internal/metrics"
	"github.com/teslashibe/go-centroid/pkg/centroid"
	"github.com/teslashibe/go-centroid/pkg/sink"
	"github.com/teslashibe/go-centroid/pkg/video"
)

// Sentinel errors for invalid arguments.
var (
	ErrNilAnalyzer = errors.New("processor: nil analyzer")
	ErrNilSource   = errors.New("processor: nil source")
	ErrNilSink     = errors.New("processor: nil sink")
)

// Summary describes a completed run.
type Summary struct {
	Frames   int           `json:"frames"`
	Detected int           `json:"detected"`
	Gaps     int           `json:"gaps"`
	Elapsed  time.Duration `json:"elapsed"`
}

// ProgressFunc is called after every ProgressEvery frames.
type ProgressFunc func(s Summary)

// Processor drives an Analyzer over a video.Source.
type Processor struct {
	analyzer   centroid.Analyzer
	config     Config
	metrics    *metrics.Collector
	logger     *slog.Logger
	onProgress ProgressFunc
}

// Option configures a Processor.
type Option func(*Processor)

// WithMetrics records frame metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Processor) { p.metrics = c }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Processor) { p.onProgress = fn }
}

// New creates a processor.
func New(a centroid.Analyzer, cfg Config, opts ...Option) *Processor {
	p := &Processor{
		analyzer: a,
		config:   cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.L()
	}
	return p
}

// result is the outcome of analyzing one frame.
type result struct {
	index    int
	gap      bool
	centroid *centroid.Coordinate
	err      error
}

// Run reads every frame from src, analyzes it and writes one record per
// frame to dst in frame order. Frames without an image produce a record
// with no centroid. Analysis errors abort the run.
func (p *Processor) Run(ctx context.Context, src video.Source, dst sink.Sink) (Summary, error) {
	switch {
	case p.analyzer == nil:
		return Summary{}, ErrNilAnalyzer
	case src == nil:
		return Summary{}, ErrNilSource
	case dst == nil:
		return Summary{}, ErrNilSink
	}

	fps := src.FrameRate()
	if fps <= 0 {
		return Summary{}, pkgerrors.Wrapf(video.ErrNoFrameRate, "%v fps", fps)
	}

	p.logger.Info("processing started", "fps", fps, "workers", p.config.Workers)

	start := time.Now()
	var (
		sum Summary
		err error
	)
	if p.config.Workers > 1 {
		sum, err = p.runParallel(ctx, src, dst, fps)
	} else {
		sum, err = p.runSequential(ctx, src, dst, fps)
	}
	sum.Elapsed = time.Since(start)

	if ferr := flush(dst); err == nil && ferr != nil {
		err = pkgerrors.Wrap(ferr, "flush sink")
	}
	if err != nil {
		p.logger.Error("processing failed", "frames", sum.Frames, "error", err)
		return sum, err
	}

	p.logger.Info("processing finished",
		"frames", sum.Frames,
		"detected", sum.Detected,
		"gaps", sum.Gaps,
		"elapsed", sum.Elapsed.Round(time.Millisecond))
	return sum, nil
}

func (p *Processor) runSequential(ctx context.Context, src video.Source, dst sink.Sink, fps float64) (Summary, error) {
	var sum Summary
	for {
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return sum, nil
		}
		if err != nil {
			return sum, pkgerrors.Wrapf(err, "read frame %d", sum.Frames)
		}

		res := p.analyze(f)
		if err := p.emit(dst, res, fps, &sum); err != nil {
			return sum, err
		}
	}
}

// analyze runs the pipeline on one frame.
func (p *Processor) analyze(f video.Frame) result {
	res := result{index: f.Index}
	if f.Image == nil {
		res.gap = true
		p.metrics.ObserveGap()
		return res
	}

	start := time.Now()
	groups, err := p.analyzer.Analyze(f.Image)
	if err != nil {
		res.err = pkgerrors.Wrapf(err, "analyze frame %d", f.Index)
		return res
	}
	if c, ok := centroid.Largest(groups); ok {
		res.centroid = &c
	}
	p.metrics.ObserveFrame(time.Since(start), res.centroid != nil)
	return res
}

// emit writes the record for res and updates the running summary.
func (p *Processor) emit(dst sink.Sink, res result, fps float64, sum *Summary) error {
	if res.err != nil {
		return res.err
	}

	rec := sink.Record{
		Timestamp: video.Frame{Index: res.index}.Timestamp(fps),
		Centroid:  res.centroid,
	}
	if err := dst.WriteRecord(rec); err != nil {
		return pkgerrors.Wrapf(err, "write frame %d", res.index)
	}

	sum.Frames++
	switch {
	case res.gap:
		sum.Gaps++
	case res.centroid != nil:
		sum.Detected++
	}

	if every := p.config.ProgressEvery; every > 0 && sum.Frames%every == 0 {
		p.logger.Info("progress", "frames", sum.Frames, "seconds", rec.Timestamp)
		if err := flush(dst); err != nil {
			return pkgerrors.Wrap(err, "flush sink")
		}
		if p.onProgress != nil {
			p.onProgress(*sum)
		}
	}
	return nil
}

func flush(dst sink.Sink) error {
	if f, ok := dst.(sink.Flusher); ok {
		return f.Flush()
	}
	return nil
}
