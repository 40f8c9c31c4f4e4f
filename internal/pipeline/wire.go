package pipeline

import (
	"encoding/binary"
	"io"

	"github.com/lz4mt-go/lz4mt/internal/frame"
)

// readBlockInput fills buf as completely as possible, looping on short
// reads, and reports io.EOF only once the source is genuinely exhausted —
// the frame format permits short reads solely at true EOF, and io.ReadFull
// already distinguishes "some bytes, then EOF" (io.ErrUnexpectedEOF) from
// "nothing left to read" (io.EOF) for us.
func readBlockInput(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

// writeBlockSize writes a block-size field: the low 31 bits hold the
// payload length, the high bit marks the block as stored uncompressed.
func writeBlockSize(w io.Writer, size int, incompressible bool) error {
	v := uint32(size)
	if incompressible {
		v |= frame.IncompressibleBit
	}
	return writeU32(w, v)
}

// writeU32 writes v as a little-endian uint32.
func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// readU32 reads a little-endian uint32.
func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// gate blocks until prevDone is closed. A nil prevDone (block 0) passes
// immediately.
func gate(prevDone <-chan struct{}) {
	if prevDone != nil {
		<-prevDone
	}
}
