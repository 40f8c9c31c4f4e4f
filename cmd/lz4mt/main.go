// Package main provides the lz4mt CLI tool for compressing, decompressing,
// and verifying LZ4 frames with the parallel block pipeline.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
