package processor

import (
	"context"
	"errors"
	"io"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/teslashibe/go-centroid/pkg/sink"
	"github.com/teslashibe/go-centroid/pkg/video"
)

type frameJob struct {
	seq   int
	frame video.Frame
}

type frameDone struct {
	seq int
	res result
}

// runParallel fans frames out to Workers goroutines and writes results back
// in read order. At most 2*Workers frames are in flight.
func (p *Processor) runParallel(ctx context.Context, src video.Source, dst sink.Sink, fps float64) (Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := p.config.Workers
	jobs := make(chan frameJob, workers)
	results := make(chan frameDone, workers)
	window := make(chan struct{}, 2*workers)
	readErr := make(chan error, 1)

	// Reader: the only goroutine touching src.
	go func() {
		defer close(jobs)
		for seq := 0; ; seq++ {
			select {
			case window <- struct{}{}:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}

			f, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				readErr <- nil
				return
			}
			if err != nil {
				readErr <- pkgerrors.Wrapf(err, "read frame %d", seq)
				return
			}

			select {
			case jobs <- frameJob{seq: seq, frame: f}:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case results <- frameDone{seq: j.seq, res: p.analyze(j.frame)}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		sum     Summary
		err     error
		next    int
		pending = make(map[int]result)
	)
	for d := range results {
		if err != nil {
			continue
		}
		pending[d.seq] = d.res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			<-window

			if err = p.emit(dst, r, fps, &sum); err != nil {
				cancel()
				break
			}
		}
	}

	rerr := <-readErr
	if err != nil {
		return sum, err
	}
	if rerr != nil {
		return sum, rerr
	}
	// Workers drop results once the parent context is cancelled.
	if cerr := ctx.Err(); cerr != nil {
		return sum, cerr
	}
	return sum, nil
}
