// Package blockcodec wraps github.com/pierrec/lz4/v4's block-level
// compress/decompress functions behind the two pure functions the frame
// pipeline treats as an external collaborator: bounded-output compress
// (reporting incompressible rather than growing the output) and
// known-capacity decompress.
package blockcodec

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// CompressBound returns the worst-case compressed size of an n-byte
// block, per the underlying block codec. The block pipeline does not
// need it for correctness (it sizes destination buffers off
// CompressBound itself before deciding incompressibility) — it is
// exposed for callers that want to pre-size their own buffers, and for
// the "report the bound without compressing" CLI mode.
func CompressBound(n int) int {
	return lz4.CompressBlockBound(n)
}

// Compress compresses src into a freshly allocated buffer. It reports
// incompressible (and returns the original bytes) whenever the
// compressed size would not actually be smaller than src — matching the
// frame format's "non-positive result means incompressible" contract,
// adapted to a Go API that returns a length rather than a signed size.
func Compress(src []byte) (payload []byte, incompressible bool, err error) {
	dst := make([]byte, CompressBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		return nil, false, fmt.Errorf("blockcodec: compress: %w", err)
	}
	if n == 0 || n >= len(src) {
		return src, true, nil
	}
	return dst[:n], false, nil
}

// Decompress decompresses src into a buffer of exactly maxSize bytes
// (the frame's block-maximum-size) and returns the slice of that buffer
// holding the decoded bytes. An error here — including one where the
// underlying codec claims success but the semantics are otherwise
// inconsistent — must be treated by the caller as ResultBlockDecodeFailed,
// not proceeded past: see the pipeline package's handling of this return.
func Decompress(src []byte, maxSize int) ([]byte, error) {
	dst := make([]byte, maxSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("blockcodec: decompress: %w", err)
	}
	if n < 0 || n > maxSize {
		return nil, fmt.Errorf("blockcodec: decompress: invalid decoded length %d", n)
	}
	return dst[:n], nil
}
