package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lz4mt-go/lz4mt"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [input]",
	Short: "Verify an LZ4 frame's block and stream checksums",
	Long: `Verify decodes the given file, or stdin if no file is given,
discarding the output, and reports whether every block checksum and the
trailing stream checksum (if present) matched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	in, closeIn, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeIn()

	err = lz4mt.Decompress(context.Background(), io.Discard, in, lz4mt.WithLogger(logger))
	if err != nil {
		var frameErr *lz4mt.Error
		if errors.As(err, &frameErr) {
			fmt.Printf("FAIL: %s\n", frameErr.Result)
		} else {
			fmt.Printf("FAIL: %v\n", err)
		}
		return err
	}

	fmt.Println("OK")
	return nil
}
