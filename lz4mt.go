// Package lz4mt implements parallel streaming compression and
// decompression of the LZ4 frame format.
//
// The LZ4 frame splits its payload into independently compressible
// blocks. Compress and Decompress exploit that independence by running
// each block's codec work on its own goroutine while still writing the
// frame's bytes to the sink in strict block order and folding a
// frame-wide stream checksum over the uncompressed bytes in input order.
//
// Example usage:
//
//	err := lz4mt.Compress(ctx, dst, src,
//	    lz4mt.WithMode(lz4mt.ModeParallel),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = lz4mt.Decompress(ctx, dst, src)
//	if err != nil {
//	    log.Fatal(err)
//	}
package lz4mt

import (
	"bufio"
	"context"
	"io"

	"github.com/lz4mt-go/lz4mt/internal/frame"
	"github.com/lz4mt-go/lz4mt/internal/pipeline"
)

// Result and Error are re-exported from internal/frame, the canonical
// source of the taxonomy, so callers never need to import an internal
// package to write an errors.Is check.
type (
	Result = frame.Result
	Error  = frame.Error
)

// Result codes, mirroring internal/frame.Result.
const (
	ResultInvalidMagicNumber          = frame.ResultInvalidMagicNumber
	ResultInvalidHeader               = frame.ResultInvalidHeader
	ResultInvalidVersion              = frame.ResultInvalidVersion
	ResultInvalidBlockMaximumSize     = frame.ResultInvalidBlockMaximumSize
	ResultInvalidHeaderChecksum       = frame.ResultInvalidHeaderChecksum
	ResultPresetDictionaryUnsupported = frame.ResultPresetDictionaryUnsupported
	ResultBlockDependenceUnsupported  = frame.ResultBlockDependenceUnsupported
	ResultCannotWriteHeader           = frame.ResultCannotWriteHeader
	ResultCannotWriteEOS              = frame.ResultCannotWriteEOS
	ResultCannotWriteStreamChecksum   = frame.ResultCannotWriteStreamChecksum
	ResultCannotReadBlockSize         = frame.ResultCannotReadBlockSize
	ResultCannotReadBlockData         = frame.ResultCannotReadBlockData
	ResultCannotReadBlockChecksum     = frame.ResultCannotReadBlockChecksum
	ResultCannotReadStreamChecksum    = frame.ResultCannotReadStreamChecksum
	ResultStreamChecksumMismatch      = frame.ResultStreamChecksumMismatch
	ResultBlockChecksumMismatch       = frame.ResultBlockChecksumMismatch
	ResultBlockDecodeFailed           = frame.ResultBlockDecodeFailed
)

// Sentinel errors, one per Result, for errors.Is-style matching.
var (
	ErrInvalidMagicNumber          = frame.ErrInvalidMagicNumber
	ErrInvalidHeader               = frame.ErrInvalidHeader
	ErrInvalidVersion              = frame.ErrInvalidVersion
	ErrInvalidBlockMaximumSize     = frame.ErrInvalidBlockMaximumSize
	ErrInvalidHeaderChecksum       = frame.ErrInvalidHeaderChecksum
	ErrPresetDictionaryUnsupported = frame.ErrPresetDictionaryUnsupported
	ErrBlockDependenceUnsupported  = frame.ErrBlockDependenceUnsupported
	ErrCannotWriteHeader           = frame.ErrCannotWriteHeader
	ErrCannotWriteEOS              = frame.ErrCannotWriteEOS
	ErrCannotWriteStreamChecksum   = frame.ErrCannotWriteStreamChecksum
	ErrCannotReadBlockSize         = frame.ErrCannotReadBlockSize
	ErrCannotReadBlockData         = frame.ErrCannotReadBlockData
	ErrCannotReadBlockChecksum     = frame.ErrCannotReadBlockChecksum
	ErrCannotReadStreamChecksum    = frame.ErrCannotReadStreamChecksum
	ErrStreamChecksumMismatch      = frame.ErrStreamChecksumMismatch
	ErrBlockChecksumMismatch       = frame.ErrBlockChecksumMismatch
	ErrBlockDecodeFailed           = frame.ErrBlockDecodeFailed
)

// Compress reads uncompressed bytes from r and writes a complete LZ4
// frame to w: header, block sequence, EOS marker, and — unless the
// descriptor disables it — a trailing stream checksum.
//
// ctx is checked at each block dispatch boundary; cancellation surfaces
// as ctx.Err() once in-flight blocks have finished.
func Compress(ctx context.Context, w io.Writer, r io.Reader, opts ...Option) error {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return pipeline.Compress(ctx, w, r, pipeline.CompressConfig{
		Descriptor:  cfg.descriptor,
		Mode:        cfg.mode,
		Stats:       cfg.stats,
		Logger:      cfg.logger,
		Progress:    cfg.progress,
		MaxInFlight: cfg.maxInFlight,
	})
}

// Decompress reads zero or more concatenated LZ4 frames (with any number
// of interleaved skippable frames) from r, writes each frame's decoded
// payload to w in order, and returns nil once r is cleanly exhausted at a
// frame boundary.
//
// r is wrapped in a *bufio.Reader if it is not already one — ReadHeader
// needs to peek the next four bytes without consuming them to detect a
// magic-number mismatch without an io.Seeker.
func Decompress(ctx context.Context, w io.Writer, r io.Reader, opts ...Option) error {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	for {
		hdr, err := frame.ReadHeader(br, cfg.onSkippable)
		if err != nil {
			return err
		}
		if hdr.EOF {
			return nil
		}

		if err := pipeline.DecompressBlocks(ctx, w, br, pipeline.DecompressConfig{
			Descriptor:  hdr.Descriptor,
			Mode:        cfg.mode,
			Stats:       cfg.stats,
			Logger:      cfg.logger,
			Progress:    cfg.progress,
			MaxInFlight: cfg.maxInFlight,
		}); err != nil {
			return err
		}
	}
}
