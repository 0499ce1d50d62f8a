package jobs

import (
	"context"
	"math"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/teslashibe/go-centroid/internal/log"
	"github.com/teslashibe/go-centroid/internal/metrics"
	"github.com/teslashibe/go-centroid/pkg/centroid"
	"github.com/teslashibe/go-centroid/pkg/processor"
	"github.com/teslashibe/go-centroid/pkg/sink"
	"github.com/teslashibe/go-centroid/pkg/video"
)

// Config holds manager settings.
type Config struct {
	// VideoDir is where submitted file names are resolved.
	VideoDir string

	// ResultsDir receives one <job id>.csv per job.
	ResultsDir string

	// MaxConcurrent bounds the number of jobs processing at once.
	MaxConcurrent int

	// Processor configures each run.
	Processor processor.Config
}

// DefaultConfig returns two concurrent jobs with sequential frame processing.
func DefaultConfig() Config {
	return Config{
		ResultsDir:    "./results",
		MaxConcurrent: 2,
		Processor:     processor.DefaultConfig(),
	}
}

// Request describes a job submission.
type Request struct {
	Filename  string
	Color     centroid.RGB
	Threshold float64
}

// OpenFunc opens a frame source for a video path.
type OpenFunc func(path string) (video.Source, error)

// UpdateFunc receives a copy of a job whenever it changes.
type UpdateFunc func(job Job)

// Manager runs processing jobs in the background.
type Manager struct {
	store    Store
	config   Config
	open     OpenFunc
	metrics  *metrics.Collector
	onUpdate UpdateFunc

	sem    chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithOpener replaces the video opener (gocv by default).
func WithOpener(fn OpenFunc) Option {
	return func(m *Manager) { m.open = fn }
}

// WithMetrics records job and frame metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(m *Manager) { m.metrics = c }
}

// WithUpdates registers a callback for job changes.
func WithUpdates(fn UpdateFunc) Option {
	return func(m *Manager) { m.onUpdate = fn }
}

// NewManager creates a manager persisting jobs to store.
func NewManager(store Store, cfg Config, opts ...Option) *Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		store:  store,
		config: cfg,
		open:   openCapture,
		sem:    make(chan struct{}, cfg.MaxConcurrent),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func openCapture(path string) (video.Source, error) {
	src, err := video.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// Submit validates the request, records a new job and starts it. The
// returned job is in the processing state.
func (m *Manager) Submit(req Request) (Job, error) {
	path, err := video.Resolve(m.config.VideoDir, req.Filename)
	if err != nil {
		return Job{}, err
	}
	if !ValidThreshold(req.Threshold) {
		return Job{}, errors.Wrapf(ErrInvalidThreshold, "%v", req.Threshold)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Job{}, ErrShutdown
	}

	job := Job{
		Filename:    req.Filename,
		Status:      StatusProcessing,
		TargetColor: req.Color.Hex(),
		Threshold:   req.Threshold,
	}
	if err := m.store.Save(&job); err != nil {
		return Job{}, errors.Wrap(err, "save job")
	}
	m.notify(job)

	m.wg.Add(1)
	go m.run(job, path, req)
	return job, nil
}

// ValidThreshold reports whether t is usable as a color distance threshold.
func ValidThreshold(t float64) bool {
	return t >= 0 && !math.IsInf(t, 1)
}

// Get returns a job by ID.
func (m *Manager) Get(id string) (Job, error) {
	return m.store.Get(id)
}

// List returns all jobs, newest first.
func (m *Manager) List() ([]Job, error) {
	return m.store.List()
}

// ResultPath returns where the CSV for job id is written.
func (m *Manager) ResultPath(id string) string {
	return filepath.Join(m.config.ResultsDir, id+".csv")
}

// Wait blocks until all submitted jobs have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Shutdown stops accepting jobs, cancels running ones and waits for them
// or for ctx to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) run(job Job, path string, req Request) {
	defer m.wg.Done()
	logger := log.With("job", job.ID, "file", job.Filename)

	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-m.ctx.Done():
		m.finish(job, processor.Summary{}, m.ctx.Err(), false)
		return
	}

	m.metrics.JobStarted()
	logger.Info("job started", "color", job.TargetColor, "threshold", job.Threshold)

	sum, err := m.process(job, path, req)
	m.finish(job, sum, err, true)
}

func (m *Manager) process(job Job, path string, req Request) (processor.Summary, error) {
	src, err := m.open(path)
	if err != nil {
		return processor.Summary{}, errors.Wrap(err, "open video")
	}
	defer src.Close()

	out, err := sink.CreateCSV(m.ResultPath(job.ID))
	if err != nil {
		return processor.Summary{}, err
	}

	p := processor.New(
		centroid.NewPipeline(req.Color, req.Threshold),
		m.config.Processor,
		processor.WithMetrics(m.metrics),
		processor.WithLogger(log.With("job", job.ID)),
		processor.WithProgress(func(s processor.Summary) {
			job.Frames, job.Detected = s.Frames, s.Detected
			if err := m.store.Save(&job); err != nil {
				log.Warn("job progress not saved", "job", job.ID, "error", err)
			}
			m.notify(job)
		}),
	)

	sum, err := p.Run(m.ctx, src, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "close result file")
	}
	return sum, err
}

// finish records the terminal state of a job. started is false for jobs
// cancelled while queued.
func (m *Manager) finish(job Job, sum processor.Summary, err error, started bool) {
	job.Frames, job.Detected = sum.Frames, sum.Detected
	status := metrics.StatusDone
	if err != nil {
		job.Status = StatusError
		job.Error = err.Error()
		status = metrics.StatusError
		log.Error("job failed", "job", job.ID, "error", err)
	} else {
		job.Status = StatusDone
		job.Result = filepath.Base(m.ResultPath(job.ID))
		log.Info("job finished", "job", job.ID, "frames", sum.Frames, "detected", sum.Detected)
	}

	if started {
		m.metrics.JobFinished(status)
	}
	if serr := m.store.Save(&job); serr != nil {
		log.Error("job state not saved", "job", job.ID, "error", serr)
	}
	m.notify(job)
}

func (m *Manager) notify(job Job) {
	if m.onUpdate != nil {
		m.onUpdate(job)
	}
}
