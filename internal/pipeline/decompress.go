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

// DecompressConfig configures one DecompressBlocks call.
type DecompressConfig struct {
	// Descriptor is the already-parsed, already-validated header of the
	// frame whose block sequence is about to be read.
	Descriptor frame.Descriptor
	Mode       Mode
	Stats      stats.Collector
	Logger     *zap.Logger
	Progress   ProgressFunc
	// MaxInFlight caps the number of blocks whose decode step may be
	// running at once in ModeParallel. Zero means unbounded.
	MaxInFlight int64
}

// DecompressBlocks reads one frame's block sequence from r (positioned
// immediately after the frame header) — block headers, payloads, and
// optional block checksums — decompresses each block, writes the
// recovered bytes to w in input order, and, if the descriptor enables a
// stream checksum, verifies it against the trailing checksum on r.
//
// It returns once EOS has been read and every dispatched block has either
// written its output or failed. A quit flag, set the moment any worker
// detects a checksum or decode failure, stops the producer from reading
// further blocks and makes workers that have not started yet return
// without verifying or decompressing; workers that already decoded their
// block skip their write once the sticky error is recorded, and writes
// already made are not unwound.
func DecompressBlocks(ctx context.Context, w io.Writer, r io.Reader, cfg DecompressConfig) error {
	d := cfg.Descriptor
	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewNoop()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug("decoding frame block sequence",
		zap.String("mode", cfg.Mode.String()),
		zap.String("blockMaximumSize", d.BlockMaximumSize.String()),
		zap.Bool("blockChecksum", d.BlockChecksum),
		zap.Bool("streamChecksum", d.StreamChecksum),
	)

	blockMax := d.BlockMaximumSize.Bytes()
	var streamHasher *xxhash32.Hasher
	var hashMu sync.Mutex
	if d.StreamChecksum {
		streamHasher = xxhash32.New()
	}

	sticky := &Sticky{}
	var quit atomic.Bool
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
		if quit.Load() {
			break
		}

		sizeField, err := readU32(r)
		if err != nil {
			sticky.Set(frame.New(frame.ResultCannotReadBlockSize, err))
			break
		}
		if sizeField == frame.EOS {
			break
		}

		incompressible := sizeField&frame.IncompressibleBit != 0
		srcSize := int(sizeField &^ frame.IncompressibleBit)

		src := make([]byte, srcSize)
		if _, err := io.ReadFull(r, src); err != nil {
			sticky.Set(frame.New(frame.ResultCannotReadBlockData, err))
			break
		}
		bytesIn.Add(int64(srcSize))

		var srcHash uint32
		if d.BlockChecksum {
			srcHash, err = readU32(r)
			if err != nil {
				sticky.Set(frame.New(frame.ResultCannotReadBlockChecksum, err))
				break
			}
		}

		myDone := make(chan struct{})
		curPrev := prevDone
		index := i

		work := func() {
			defer close(myDone)
			n := decompressBlock(w, sticky, &quit, curPrev, index, src, incompressible, d.BlockChecksum, srcHash, blockMax, streamHasher, &hashMu, collector)
			bytesOut.Add(n)
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

		reportProgress("decompress", nil)
	}

	wg.Wait()

	if err := sticky.Get(); err != nil {
		reportProgress("error", err)
		return err
	}

	if d.StreamChecksum {
		want, err := readU32(r)
		if err != nil {
			wrapped := frame.New(frame.ResultCannotReadStreamChecksum, err)
			reportProgress("error", wrapped)
			return wrapped
		}
		if got := streamHasher.Sum32(); got != want {
			collector.IncCounter(stats.MetricChecksumMismatches, 1)
			reportProgress("error", frame.ErrStreamChecksumMismatch)
			return frame.ErrStreamChecksumMismatch
		}
	}

	collector.IncCounter(stats.MetricFramesProcessed, 1)
	logger.Debug("frame decoded",
		zap.Int64("blocks", blocksProcessed.Load()),
		zap.Int64("bytesIn", bytesIn.Load()),
		zap.Int64("bytesOut", bytesOut.Load()),
	)
	reportProgress("done", nil)
	return nil
}

// decompressBlock is the worker body for one decompress-path block. Block
// checksum verification happens before the order gate (it needs nothing
// but src); decompression of a compressed block also happens before the
// gate, since its only input is src. Only the write and the stream-hash
// fold — both of which must observe strict input order — happen after
// gate. It returns the number of uncompressed bytes written.
func decompressBlock(w io.Writer, sticky *Sticky, quit *atomic.Bool, prevDone <-chan struct{}, i int, src []byte, incompressible, blockChecksum bool, srcHash uint32, blockMax int, streamHasher *xxhash32.Hasher, hashMu *sync.Mutex, collector stats.Collector) int64 {
	if sticky.Get() != nil || quit.Load() {
		return 0
	}

	if blockChecksum {
		if xxhash32.Checksum(src) != srcHash {
			quit.Store(true)
			collector.IncCounter(stats.MetricChecksumMismatches, 1)
			sticky.Set(frame.New(frame.ResultBlockChecksumMismatch, fmt.Errorf("block %d", i)))
			return 0
		}
	}

	var payload []byte
	if incompressible {
		payload = src
	} else {
		decoded, err := blockcodec.Decompress(src, blockMax)
		if err != nil {
			quit.Store(true)
			sticky.Set(frame.New(frame.ResultBlockDecodeFailed, fmt.Errorf("block %d: %w", i, err)))
			return 0
		}
		payload = decoded
	}

	collector.IncCounter(stats.MetricBlocksDecompressed, 1)
	collector.ObserveHistogram(stats.MetricBlockSize, float64(len(payload)))

	gate(prevDone)

	if sticky.Get() != nil {
		return 0
	}

	if _, err := w.Write(payload); err != nil {
		sticky.Set(fmt.Errorf("lz4mt: writing block %d: %w", i, err))
		return 0
	}

	if streamHasher != nil {
		hashMu.Lock()
		streamHasher.Update(payload)
		hashMu.Unlock()
	}

	collector.IncCounter(stats.MetricBytesOut, int64(len(payload)))
	return int64(len(payload))
}
