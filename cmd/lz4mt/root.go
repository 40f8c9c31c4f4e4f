package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags.
	verbose bool

	// logger is built once in root's PersistentPreRunE, after verbose has
	// been parsed, so every subcommand sees the right level.
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lz4mt",
	Short: "Parallel streaming compression and decompression of LZ4 frames",
	Long: `lz4mt compresses and decompresses the LZ4 frame format, running
independent blocks' compression or decompression concurrently while
keeping the written frame byte-identical to a sequential encoder.

Examples:
  # Compress a file
  lz4mt compress -o out.lz4 in.bin

  # Decompress a file
  lz4mt decompress -o out.bin out.lz4

  # Verify a frame's checksums without writing output
  lz4mt verify out.lz4`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level.SetLevel(zap.DebugLevel)
		} else {
			cfg.Level.SetLevel(zap.WarnLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
