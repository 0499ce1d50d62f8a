// centroid-server exposes video processing jobs over HTTP.
//
// Configuration comes from the environment: VIDEO_DIR, RESULTS_DIR,
// JOBS_FILE, PORT, FFMPEG_PATH, LOG_LEVEL and LOG_FORMAT.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/teslashibe/go-centroid/internal/config"
	"github.com/teslashibe/go-centroid/internal/log"
	"github.com/teslashibe/go-centroid/internal/metrics"
	"github.com/teslashibe/go-centroid/pkg/hub"
	"github.com/teslashibe/go-centroid/pkg/jobs"
	"github.com/teslashibe/go-centroid/pkg/processor"
	"github.com/teslashibe/go-centroid/pkg/video"
	"github.com/teslashibe/go-centroid/pkg/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	debug := flag.Bool("debug", false, "Log every request")
	workers := flag.Int("workers", 1, "Frames analyzed concurrently per job")
	maxJobs := flag.Int("max-jobs", jobs.DefaultConfig().MaxConcurrent, "Jobs processed at once")
	flag.Parse()

	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, *debug, *workers, *maxJobs); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, debug bool, workers, maxJobs int) error {
	if cfg.VideoDir == "" {
		log.Warn("VIDEO_DIR not set; video endpoints will answer 500")
	}

	collector, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	store, err := jobs.NewJSONStore(cfg.JobsFile)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	events := hub.New("jobs")
	go events.Run(ctx)

	jobCfg := jobs.DefaultConfig()
	jobCfg.VideoDir = cfg.VideoDir
	jobCfg.ResultsDir = cfg.ResultsDir
	jobCfg.MaxConcurrent = maxJobs
	jobCfg.Processor = processor.DefaultConfig()
	jobCfg.Processor.Workers = workers

	mgr := jobs.NewManager(store, jobCfg,
		jobs.WithMetrics(collector),
		jobs.WithUpdates(func(j jobs.Job) { web.PublishJob(events, j) }),
	)

	srv := web.NewServer(web.Config{
		VideoDir:   cfg.VideoDir,
		ResultsDir: cfg.ResultsDir,
		Debug:      debug,
	}, mgr, video.NewFFmpegThumbnailer(cfg.FFmpegPath), collector, events)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	log.Info("centroid server started",
		"port", cfg.Port,
		"videos", cfg.VideoDir,
		"results", cfg.ResultsDir,
		"jobs", store.Count(),
	)

	select {
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	if err := mgr.Shutdown(shutdownCtx); err != nil {
		log.Warn("jobs still running at exit", "error", err)
	}
	<-events.Done()
	return nil
}
