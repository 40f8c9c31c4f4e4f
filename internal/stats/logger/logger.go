// Package logger provides a zap-based stats collector that logs metrics.
// Block-pipeline metrics fire far more often than the request-scoped
// metrics a typical zap-backed collector logs (one entry per block, not
// per request), so the log level is configurable — defaulting to Debug,
// but callers instrumenting a large transfer will usually want it left
// at Debug and simply disabled via their zap level, rather than sampled
// here.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lz4mt-go/lz4mt/internal/stats"
)

// Collector implements stats.Collector by logging metrics via zap.
type Collector struct {
	logger *zap.Logger
	level  zapcore.Level
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new logger-based collector logging at Debug level.
// If logger is nil, a no-op logger is used.
func New(logger *zap.Logger) *Collector {
	return NewAtLevel(logger, zapcore.DebugLevel)
}

// NewAtLevel is New with an explicit log level, for callers who want
// pipeline metrics visible at Info without turning on Debug logging
// globally.
func NewAtLevel(logger *zap.Logger, level zapcore.Level) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger, level: level}
}

// IncCounter logs a counter increment.
func (c *Collector) IncCounter(name string, delta int64) {
	c.logger.Check(c.level, "counter").Write(
		zap.String("metric", name),
		zap.Int64("delta", delta),
	)
}

// SetGauge logs a gauge value.
func (c *Collector) SetGauge(name string, value int64) {
	c.logger.Check(c.level, "gauge").Write(
		zap.String("metric", name),
		zap.Int64("value", value),
	)
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.logger.Check(c.level, "histogram").Write(
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}
