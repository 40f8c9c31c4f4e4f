package pipeline

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Progress reports periodic pipeline status to a caller-supplied
// ProgressFunc. It carries enough to drive both a one-line progress
// meter and a final summary.
type Progress struct {
	Phase           string // "compress", "decompress", "done", "error"
	BlocksProcessed int64
	BytesIn         int64
	BytesOut        int64
	StartTime       time.Time
	Error           error
}

// ProgressFunc is called periodically with a Progress snapshot. It must
// return quickly — it runs on the pipeline's producer goroutine.
type ProgressFunc func(Progress)

// CountingReader wraps r, adding n to counter for every byte actually
// read. Used to drive byte-level progress for the input side of a
// pipeline without the pipeline itself needing to know about reporting.
type CountingReader struct {
	R       io.Reader
	Counter *atomic.Int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.Counter.Add(int64(n))
	return n, err
}

// CountingWriter is CountingReader's write-side counterpart.
type CountingWriter struct {
	W       io.Writer
	Counter *atomic.Int64
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.W.Write(p)
	c.Counter.Add(int64(n))
	return n, err
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats a duration as a human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// DefaultProgressFunc prints a one-line progress meter to the given
// writer, matching the phase-switch style the rest of the pipeline's
// reporting uses.
func DefaultProgressFunc(w io.Writer) ProgressFunc {
	return func(p Progress) {
		switch p.Phase {
		case "compress", "decompress":
			fmt.Fprintf(w, "\r[%s] %s in, %s out, %d blocks",
				p.Phase, FormatBytes(p.BytesIn), FormatBytes(p.BytesOut), p.BlocksProcessed)
		case "done":
			fmt.Fprintf(w, "\n[done] %s -> %s in %s\n",
				FormatBytes(p.BytesIn), FormatBytes(p.BytesOut), FormatDuration(time.Since(p.StartTime)))
		case "error":
			fmt.Fprintf(w, "\n[error] %v\n", p.Error)
		}
	}
}
