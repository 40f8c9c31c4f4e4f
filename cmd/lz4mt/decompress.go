package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lz4mt-go/lz4mt"
)

var decompressCmd = &cobra.Command{
	Use:   "decompress [input]",
	Short: "Decompress an LZ4 frame (or stdin) to raw bytes",
	Long: `Decompress reads one or more concatenated LZ4 frames from the given
file, or stdin if no file is given, and writes every frame's decoded
payload in order.

Examples:
  # Decompress a file to another file
  lz4mt decompress -o out.bin in.lz4

  # Decompress stdin to stdout
  cat in.lz4 | lz4mt decompress > out.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecompress,
}

var (
	decompressOutput     string
	decompressSequential bool
	decompressMaxInFlight int64
)

func init() {
	decompressCmd.Flags().StringVarP(&decompressOutput, "output", "o", "", "output file (default stdout)")
	decompressCmd.Flags().BoolVar(&decompressSequential, "sequential", false, "disable block-level parallelism")
	decompressCmd.Flags().Int64Var(&decompressMaxInFlight, "max-in-flight", 0, "cap concurrent in-flight blocks (0 = unbounded)")
	rootCmd.AddCommand(decompressCmd)
}

func runDecompress(cmd *cobra.Command, args []string) error {
	in, closeIn, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(decompressOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	mode := lz4mt.ModeParallel
	if decompressSequential {
		mode = lz4mt.ModeSequential
	}

	return lz4mt.Decompress(context.Background(), out, in,
		lz4mt.WithMode(mode),
		lz4mt.WithLogger(logger),
		lz4mt.WithProgress(progressFunc()),
		lz4mt.WithMaxInFlight(decompressMaxInFlight),
	)
}
