package lz4mt

import (
	"go.uber.org/zap"

	"github.com/lz4mt-go/lz4mt/internal/frame"
	"github.com/lz4mt-go/lz4mt/internal/pipeline"
	"github.com/lz4mt-go/lz4mt/internal/stats"
)

// Mode selects how the block pipeline schedules per-block compression or
// decompression work.
type Mode = pipeline.Mode

const (
	// ModeParallel spawns one goroutine per block. This is the default.
	ModeParallel = pipeline.ModeParallel
	// ModeSequential runs every block inline on the caller's goroutine.
	ModeSequential = pipeline.ModeSequential
)

// Descriptor describes the frame header Compress writes, field for field.
// Use DefaultDescriptor for the settings this package's examples and CLI
// use when the caller doesn't need anything unusual.
type Descriptor = frame.Descriptor

// DefaultDescriptor returns the descriptor Compress uses when the caller
// supplies no WithDescriptor option: version 1, block-independent, stream
// checksum on, 4MiB blocks, block checksum off.
func DefaultDescriptor() Descriptor {
	return frame.Default()
}

// BlockSize identifies one of the four block sizes the frame format
// supports.
type BlockSize = frame.BlockSize

// The four block sizes the frame format defines.
const (
	BlockSize64KB  = frame.BlockSize64KB
	BlockSize256KB = frame.BlockSize256KB
	BlockSize1MB   = frame.BlockSize1MB
	BlockSize4MB   = frame.BlockSize4MB
)

// SkippableHandler is invoked by Decompress for each skippable frame it
// walks past while looking for an LZ4 frame header. r is bounded to the
// chunk's declared size; returning an error halts decoding.
type SkippableHandler = frame.SkippableHandler

// options holds the configuration built up by a chain of Option values.
type options struct {
	descriptor  Descriptor
	mode        Mode
	stats       stats.Collector
	logger      *zap.Logger
	progress    pipeline.ProgressFunc
	onSkippable SkippableHandler
	maxInFlight int64
}

func defaultOptions() options {
	return options{
		descriptor: DefaultDescriptor(),
		mode:       ModeParallel,
		stats:      stats.NewNoop(),
		logger:     zap.NewNop(),
	}
}

// Option configures a Compress or Decompress call.
type Option interface {
	apply(*options)
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithDescriptor sets the frame descriptor Compress writes. Ignored by
// Decompress, which always parses the descriptor from the frame header.
// The zero value of Descriptor is invalid; start from DefaultDescriptor()
// and override individual fields.
func WithDescriptor(d Descriptor) Option {
	return optionFunc(func(o *options) { o.descriptor = d })
}

// WithMode selects sequential or parallel block dispatch. The default is
// ModeParallel.
func WithMode(m Mode) Option {
	return optionFunc(func(o *options) { o.mode = m })
}

// WithStats sets the metrics collector. If not set, a no-op collector is
// used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) { o.stats = c })
}

// WithLogger sets the logger. If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) { o.logger = l })
}

// WithProgress registers a callback invoked periodically during Compress
// or Decompress. It runs on the producer goroutine and must return
// quickly.
func WithProgress(fn pipeline.ProgressFunc) Option {
	return optionFunc(func(o *options) { o.progress = fn })
}

// WithSkippableHandler registers the handler Decompress invokes for each
// skippable frame it encounters before the next LZ4 frame header. Ignored
// by Compress, which never emits skippable frames.
func WithSkippableHandler(h SkippableHandler) Option {
	return optionFunc(func(o *options) { o.onSkippable = h })
}

// WithMaxInFlight bounds how many blocks may have their compress or
// decompress step running concurrently in ModeParallel. The zero value
// (the default) leaves dispatch unbounded; the caller decides whether its
// workload needs a ceiling on concurrent goroutines or peak memory.
func WithMaxInFlight(n int64) Option {
	return optionFunc(func(o *options) { o.maxInFlight = n })
}
