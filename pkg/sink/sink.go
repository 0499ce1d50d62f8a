// Package sink writes per-frame centroid records.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/teslashibe/go-centroid/pkg/centroid"
)

// Record is the result for one frame. Centroid is nil when no region matched.
type Record struct {
	Timestamp float64
	Centroid  *centroid.Coordinate
}

// Sink consumes records in frame order.
type Sink interface {
	WriteRecord(rec Record) error
}

// Flusher is implemented by sinks that buffer output.
type Flusher interface {
	Flush() error
}

// CSVWriter writes records as "timestamp,x,y" lines with the timestamp in
// seconds to two decimals. A missing centroid is written as -1,-1.
type CSVWriter struct {
	w      *bufio.Writer
	closer io.Closer
	rows   int
}

// NewCSVWriter writes to w. Close flushes but does not close w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: bufio.NewWriter(w)}
}

// CreateCSV creates (or truncates) the file at path, creating parent
// directories as needed.
func CreateCSV(path string) (*CSVWriter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create output directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create output file")
	}
	return &CSVWriter{w: bufio.NewWriter(f), closer: f}, nil
}

// WriteRecord implements Sink.
func (c *CSVWriter) WriteRecord(rec Record) error {
	x, y := -1, -1
	if rec.Centroid != nil {
		x, y = rec.Centroid.X, rec.Centroid.Y
	}
	if _, err := fmt.Fprintf(c.w, "%s,%d,%d\n", FormatTimestamp(rec.Timestamp), x, y); err != nil {
		return errors.Wrap(err, "write record")
	}
	c.rows++
	return nil
}

// Rows returns the number of records written.
func (c *CSVWriter) Rows() int { return c.rows }

// Flush implements Flusher.
func (c *CSVWriter) Flush() error {
	return c.w.Flush()
}

// Close flushes buffered records and closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	err := c.w.Flush()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// FormatTimestamp renders seconds with two decimals. Rounding is half-up on
// the shortest decimal form of seconds, so 1.005 becomes "1.01".
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Sprintf("%.2f", seconds)
	}

	s := strconv.FormatFloat(seconds, 'f', -1, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	frac += "000"

	// digits holds the value in hundredths.
	digits := []byte(whole + frac[:2])
	if frac[2] >= '5' {
		i := len(digits) - 1
		for ; i >= 0 && digits[i] == '9'; i-- {
			digits[i] = '0'
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		} else {
			digits[i]++
		}
	}

	n := len(digits)
	return sign + string(digits[:n-2]) + "." + string(digits[n-2:])
}
