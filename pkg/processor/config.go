package processor

import "runtime"

// Config holds processing options.
type Config struct {
	// Workers is the number of frames analyzed concurrently. Values below 2
	// analyze frames on the calling goroutine.
	Workers int

	// ProgressEvery logs progress and flushes the sink every N frames (0 disables).
	ProgressEvery int
}

// DefaultConfig returns sequential processing with progress every 100 frames.
func DefaultConfig() Config {
	return Config{
		Workers:       1,
		ProgressEvery: 100,
	}
}

// ParallelConfig returns a config using one worker per CPU.
func ParallelConfig() Config {
	cfg := DefaultConfig()
	cfg.Workers = runtime.NumCPU()
	return cfg
}
