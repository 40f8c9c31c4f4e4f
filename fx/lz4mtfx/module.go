// Package lz4mtfx provides an fx module wiring a configured lz4mt codec
// for host applications already using go.uber.org/fx.
package lz4mtfx

import (
	"context"
	"io"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lz4mt-go/lz4mt"
	"github.com/lz4mt-go/lz4mt/internal/stats"
	"github.com/lz4mt-go/lz4mt/internal/stats/logger"
)

// Config holds the defaults a provided Codec compresses and decompresses
// with. The zero value uses lz4mt's own defaults (parallel mode, 4MiB
// blocks, stream checksum on).
type Config struct {
	// Mode selects sequential or parallel block dispatch.
	Mode lz4mt.Mode
	// Descriptor is the frame header Compress writes. Ignored if its
	// VersionNumber is zero, since that's not a value a caller would
	// deliberately choose — in that case lz4mt.DefaultDescriptor() is
	// used instead.
	Descriptor lz4mt.Descriptor
}

// Module provides a *Codec built from a *zap.Logger and an optional
// Config. Requires a *zap.Logger to be provided by the host application.
var Module = fx.Module("lz4mt",
	fx.Provide(
		newStatsCollector,
		newCodec,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("lz4mt.stats"))
}

// Params holds dependencies for creating the Codec.
type Params struct {
	fx.In

	Config    Config `optional:"true"`
	Logger    *zap.Logger
	Collector stats.Collector
}

// Result holds the provided Codec.
type Result struct {
	fx.Out

	Codec *Codec
}

func newCodec(p Params) Result {
	descriptor := p.Config.Descriptor
	if descriptor.VersionNumber == 0 {
		descriptor = lz4mt.DefaultDescriptor()
	}

	return Result{Codec: &Codec{
		descriptor: descriptor,
		mode:       p.Config.Mode,
		stats:      p.Collector,
		logger:     p.Logger.Named("lz4mt"),
	}}
}

// Codec compresses and decompresses LZ4 frames using the descriptor,
// mode, stats collector, and logger it was constructed with, so callers
// wired up via fx don't need to repeat lz4mt.Option boilerplate at every
// call site.
type Codec struct {
	descriptor lz4mt.Descriptor
	mode       lz4mt.Mode
	stats      stats.Collector
	logger     *zap.Logger
}

// Compress writes a complete LZ4 frame for r's contents to w.
func (c *Codec) Compress(ctx context.Context, w io.Writer, r io.Reader) error {
	return lz4mt.Compress(ctx, w, r,
		lz4mt.WithDescriptor(c.descriptor),
		lz4mt.WithMode(c.mode),
		lz4mt.WithStats(c.stats),
		lz4mt.WithLogger(c.logger),
	)
}

// Decompress writes the decoded payload of every frame in r to w.
func (c *Codec) Decompress(ctx context.Context, w io.Writer, r io.Reader) error {
	return lz4mt.Decompress(ctx, w, r,
		lz4mt.WithMode(c.mode),
		lz4mt.WithStats(c.stats),
		lz4mt.WithLogger(c.logger),
	)
}
