package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lz4mt-go/lz4mt"
	"github.com/lz4mt-go/lz4mt/internal/blockcodec"
	"github.com/lz4mt-go/lz4mt/internal/pipeline"
)

var compressCmd = &cobra.Command{
	Use:   "compress [input]",
	Short: "Compress a file (or stdin) into an LZ4 frame",
	Long: `Compress reads uncompressed bytes from the given file, or stdin if
no file is given, and writes a complete LZ4 frame.

Examples:
  # Compress a file to another file
  lz4mt compress -o out.lz4 in.bin

  # Compress stdin to stdout
  cat in.bin | lz4mt compress > out.lz4`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompress,
}

var (
	compressOutput        string
	compressBlockSizeFlag string
	compressBlockChecksum bool
	compressNoStreamSum   bool
	compressSequential    bool
	compressDryRunBound   bool
	compressMaxInFlight   int64
)

func init() {
	compressCmd.Flags().StringVarP(&compressOutput, "output", "o", "", "output file (default stdout)")
	compressCmd.Flags().StringVar(&compressBlockSizeFlag, "block-size", "4mb", "block size: 64kb, 256kb, 1mb, 4mb")
	compressCmd.Flags().BoolVar(&compressBlockChecksum, "block-checksum", false, "write a checksum after every block")
	compressCmd.Flags().BoolVar(&compressNoStreamSum, "no-stream-checksum", false, "omit the trailing stream checksum")
	compressCmd.Flags().BoolVar(&compressSequential, "sequential", false, "disable block-level parallelism")
	compressCmd.Flags().BoolVar(&compressDryRunBound, "dry-run-bound", false, "print the worst-case compressed size and exit without compressing")
	compressCmd.Flags().Int64Var(&compressMaxInFlight, "max-in-flight", 0, "cap concurrent in-flight blocks (0 = unbounded)")
	rootCmd.AddCommand(compressCmd)
}

func parseBlockSizeFlag(s string) (lz4mt.BlockSize, error) {
	switch s {
	case "64kb":
		return lz4mt.BlockSize64KB, nil
	case "256kb":
		return lz4mt.BlockSize256KB, nil
	case "1mb":
		return lz4mt.BlockSize1MB, nil
	case "4mb":
		return lz4mt.BlockSize4MB, nil
	default:
		return 0, fmt.Errorf("unknown block size %q: want one of 64kb, 256kb, 1mb, 4mb", s)
	}
}

func runCompress(cmd *cobra.Command, args []string) error {
	in, closeIn, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeIn()

	if compressDryRunBound {
		return runDryRunBound(in)
	}

	out, closeOut, err := openOutput(compressOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	blockSize, err := parseBlockSizeFlag(compressBlockSizeFlag)
	if err != nil {
		return err
	}

	descriptor := lz4mt.DefaultDescriptor()
	descriptor.BlockMaximumSize = blockSize
	descriptor.BlockChecksum = compressBlockChecksum
	descriptor.StreamChecksum = !compressNoStreamSum

	mode := lz4mt.ModeParallel
	if compressSequential {
		mode = lz4mt.ModeSequential
	}

	return lz4mt.Compress(context.Background(), out, in,
		lz4mt.WithDescriptor(descriptor),
		lz4mt.WithMode(mode),
		lz4mt.WithLogger(logger),
		lz4mt.WithProgress(progressFunc()),
		lz4mt.WithMaxInFlight(compressMaxInFlight),
	)
}

// runDryRunBound reports the worst-case compressed size of the entire
// input without running any block through the compressor, using
// internal/blockcodec.CompressBound (the same bound blockcodec.Compress
// uses to size each block's destination buffer).
func runDryRunBound(in io.Reader) error {
	size, err := io.Copy(io.Discard, in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	fmt.Printf("input: %d bytes, worst-case compressed bound: %d bytes\n", size, blockcodec.CompressBound(int(size)))
	return nil
}

func progressFunc() pipeline.ProgressFunc {
	if !verbose {
		return nil
	}
	return pipeline.DefaultProgressFunc(os.Stderr)
}
