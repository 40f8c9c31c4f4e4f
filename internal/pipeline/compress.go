package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/lz4mt-go/lz4mt/internal/blockcodec"
	"github.com/lz4mt-go/lz4mt/internal/frame"
	"github.com/lz4mt-go/lz4mt/internal/stats"
	"github.com/lz4mt-go/lz4mt/internal/xxhash32"
)

// CompressConfig configures one Compress call.
type CompressConfig struct {
	// Descriptor is written as the frame header. It must satisfy
	// Validate; Compress does not mutate it.
	Descriptor frame.Descriptor
	// Mode selects sequential or parallel block dispatch. The zero value
	// is ModeParallel.
	Mode Mode
	// Stats receives per-block and per-frame counters. A nil Stats uses
	// stats.NewNoop().
	Stats stats.Collector
	// Logger receives diagnostic, non-error logging. A nil Logger uses
	// zap.NewNop().
	Logger *zap.Logger
	// Progress, if non-nil, is called from the producer goroutine after
	// every dispatched block and once more with Phase "done" or "error".
	Progress ProgressFunc
	// MaxInFlight caps the number of blocks whose compress step may be
	// running at once in ModeParallel. Zero means unbounded — the
	// executor, not this package, decides whether to bound it.
	MaxInFlight int64
}

// Compress reads uncompressed bytes from r, writes an LZ4 frame to w, and
// returns once the frame (including EOS and, if enabled, the stream
// checksum) has been fully written or an error has halted the pipeline.
//
// Blocks are read from r in input order by a single producer goroutine.
// Each block's compression may run concurrently with its neighbors (in
// ModeParallel), but the three write steps for block i — size, payload,
// optional checksum — happen strictly after block i-1's writes, enforced
// by a chain of per-block completion channels rather than a shared mutex
// or an indexed slice of gates.
func Compress(ctx context.Context, w io.Writer, r io.Reader, cfg CompressConfig) error {
	d := cfg.Descriptor
	if err := d.Validate(); err != nil {
		return err
	}
	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewNoop()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := frame.WriteHeader(w, &d); err != nil {
		return err
	}
	logger.Debug("wrote frame header",
		zap.String("mode", cfg.Mode.String()),
		zap.String("blockMaximumSize", d.BlockMaximumSize.String()),
		zap.Bool("blockChecksum", d.BlockChecksum),
		zap.Bool("streamChecksum", d.StreamChecksum),
	)

	blockSize := d.BlockMaximumSize.Bytes()
	var streamHasher *xxhash32.Hasher
	if d.StreamChecksum {
		streamHasher = xxhash32.New()
	}

	sticky := &Sticky{}
	var wg sync.WaitGroup
	var prevDone chan struct{}
	var blocksProcessed, bytesIn, bytesOut atomic.Int64
	startTime := time.Now()

	var sem *semaphore.Weighted
	if cfg.Mode != ModeSequential && cfg.MaxInFlight > 0 {
		sem = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	reportProgress := func(phase string, err error) {
		if cfg.Progress == nil {
			return
		}
		cfg.Progress(Progress{
			Phase:           phase,
			BlocksProcessed: blocksProcessed.Load(),
			BytesIn:         bytesIn.Load(),
			BytesOut:        bytesOut.Load(),
			StartTime:       startTime,
			Error:           err,
		})
	}

	for i := 0; ; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			sticky.Set(ctxErr)
			break
		}

		buf := make([]byte, blockSize)
		n, readErr := readBlockInput(r, buf)
		if n == 0 && readErr == io.EOF {
			break
		}
		if readErr != nil && readErr != io.EOF {
			sticky.Set(fmt.Errorf("lz4mt: reading block %d: %w", i, readErr))
			break
		}
		buf = buf[:n]
		bytesIn.Add(int64(n))
		if streamHasher != nil {
			streamHasher.Update(buf)
		}

		myDone := make(chan struct{})
		curPrev := prevDone
		index := i

		work := func() {
			defer close(myDone)
			written := compressBlock(w, sticky, curPrev, index, buf, d.BlockChecksum, collector)
			bytesOut.Add(written)
		}

		blocksProcessed.Add(1)
		if cfg.Mode == ModeSequential {
			work()
		} else {
			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					close(myDone)
					sticky.Set(err)
					break
				}
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if sem != nil {
						sem.Release(1)
					}
				}()
				work()
			}()
		}
		prevDone = myDone

		reportProgress("compress", nil)

		if readErr == io.EOF {
			break
		}
	}

	wg.Wait()

	if err := sticky.Get(); err != nil {
		reportProgress("error", err)
		return err
	}

	gate(prevDone)

	if err := writeU32(w, frame.EOS); err != nil {
		wrapped := frame.New(frame.ResultCannotWriteEOS, err)
		reportProgress("error", wrapped)
		return wrapped
	}
	if d.StreamChecksum {
		if err := writeU32(w, streamHasher.Sum32()); err != nil {
			wrapped := frame.New(frame.ResultCannotWriteStreamChecksum, err)
			reportProgress("error", wrapped)
			return wrapped
		}
	}

	collector.IncCounter(stats.MetricFramesProcessed, 1)
	logger.Debug("frame compressed",
		zap.Int64("blocks", blocksProcessed.Load()),
		zap.Int64("bytesIn", bytesIn.Load()),
		zap.Int64("bytesOut", bytesOut.Load()),
	)
	reportProgress("done", nil)
	return nil
}

// compressBlock is the worker body for one compress-path block: it runs
// the CPU-bound compress step (which may overlap with neighboring
// blocks), then waits at its order gate before writing size, payload, and
// optional checksum. It returns the number of bytes written to w so the
// caller can fold them into a byte counter without a second pass.
func compressBlock(w io.Writer, sticky *Sticky, prevDone <-chan struct{}, i int, src []byte, blockChecksum bool, collector stats.Collector) int64 {
	if sticky.Get() != nil {
		return 0
	}

	payload, incompressible, err := blockcodec.Compress(src)
	if err != nil {
		sticky.Set(fmt.Errorf("lz4mt: compressing block %d: %w", i, err))
		return 0
	}

	var checksum uint32
	if blockChecksum {
		checksum = xxhash32.Checksum(payload)
	}

	collector.IncCounter(stats.MetricBlocksCompressed, 1)
	collector.ObserveHistogram(stats.MetricBlockSize, float64(len(src)))
	if incompressible {
		collector.IncCounter(stats.MetricBlocksIncompressible, 1)
	}

	gate(prevDone)

	if sticky.Get() != nil {
		return 0
	}

	if err := writeBlockSize(w, len(payload), incompressible); err != nil {
		sticky.Set(fmt.Errorf("lz4mt: writing block %d size: %w", i, err))
		return 0
	}
	if _, err := w.Write(payload); err != nil {
		sticky.Set(fmt.Errorf("lz4mt: writing block %d payload: %w", i, err))
		return 4
	}
	written := int64(4 + len(payload))
	if blockChecksum {
		if err := writeU32(w, checksum); err != nil {
			sticky.Set(fmt.Errorf("lz4mt: writing block %d checksum: %w", i, err))
			return written
		}
		written += 4
	}

	collector.IncCounter(stats.MetricBytesOut, written)
	return written
}
