package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// openInput opens args[0] if given, else wraps stdin. The returned close
// function is always safe to call, even for stdin.
func openInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 {
		return bufio.NewReader(os.Stdin), func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", args[0], err)
	}
	return bufio.NewReader(f), func() { f.Close() }, nil
}

// openOutput opens path for writing, truncating it, or wraps stdout if
// path is empty. The returned writer is buffered; the returned close
// function flushes the buffer before closing the underlying file.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		bw := bufio.NewWriter(os.Stdout)
		return bw, func() { bw.Flush() }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	return bw, func() {
		bw.Flush()
		f.Close()
	}, nil
}
