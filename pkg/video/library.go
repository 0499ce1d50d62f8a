package video

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Library errors.
var (
	// ErrInvalidName is returned for names that are empty or escape the library directory.
	ErrInvalidName = errors.New("video: invalid file name")

	// ErrNoLibrary is returned when no video directory is configured.
	ErrNoLibrary = errors.New("video: library directory not set")

	// ErrNotFound is returned when a named video does not exist.
	ErrNotFound = errors.New("video: not found")
)

var videoExt = regexp.MustCompile(`(?i)\.(mp4|mov|avi|mkv|webm)$`)

// IsVideoFile reports whether name has a supported video extension.
func IsVideoFile(name string) bool {
	return videoExt.MatchString(name)
}

// ListVideos returns the names of video files directly inside dir, sorted.
func ListVideos(dir string) ([]string, error) {
	if dir == "" {
		return nil, errors.New("video: library directory not configured")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read video directory")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsVideoFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Resolve returns the path of the video called name inside dir. The name
// must be a plain file name with a video extension.
func Resolve(dir, name string) (string, error) {
	if dir == "" {
		return "", ErrNoLibrary
	}
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name || !IsVideoFile(name) {
		return "", errors.Wrapf(ErrInvalidName, "%q", name)
	}

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", errors.Wrapf(ErrNotFound, "%s", name)
	}
	return path, nil
}
