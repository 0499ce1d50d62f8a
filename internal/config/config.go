// Package config provides environment-based configuration for go-centroid commands.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultPort       = 3000
	DefaultResultsDir = "./results"
	DefaultJobsFile   = "./jobs.json"
	DefaultFFmpeg     = "ffmpeg"
	DefaultLogLevel   = "info"
)

// Server holds the job server settings.
type Server struct {
	Port       int
	VideoDir   string
	ResultsDir string
	JobsFile   string
	FFmpegPath string
	LogLevel   string
	LogFormat  string
}

// LoadServer reads server settings from the environment:
// PORT, VIDEO_DIR, RESULTS_DIR, JOBS_FILE, FFMPEG_PATH, LOG_LEVEL, LOG_FORMAT.
func LoadServer() (Server, error) {
	cfg := Server{
		Port:       DefaultPort,
		VideoDir:   os.Getenv("VIDEO_DIR"),
		ResultsDir: Env("RESULTS_DIR", DefaultResultsDir),
		JobsFile:   Env("JOBS_FILE", DefaultJobsFile),
		FFmpegPath: Env("FFMPEG_PATH", DefaultFFmpeg),
		LogLevel:   Env("LOG_LEVEL", DefaultLogLevel),
		LogFormat:  Env("LOG_FORMAT", "text"),
	}

	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return cfg, fmt.Errorf("config: invalid PORT %q", p)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Env returns the value of key, or def when it is unset or empty.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
