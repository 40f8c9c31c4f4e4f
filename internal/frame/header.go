package frame

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/lz4mt-go/lz4mt/internal/xxhash32"
)

// WriteHeader writes one frame header — magic, FLG, BD, optional
// extensions, and the header-checksum byte — to w as a single Write
// call, per the frame format's requirement that the header appear
// atomically on the wire.
//
// d must already satisfy Validate; WriteHeader does not re-check it.
func WriteHeader(w io.Writer, d *Descriptor) error {
	buf := make([]byte, 0, 4+maxHeaderExtraSize)
	buf = binary.LittleEndian.AppendUint32(buf, MagicNumber)

	sumStart := len(buf)
	buf = append(buf, packFLG(d), packBD(d))
	if d.StreamSize {
		buf = binary.LittleEndian.AppendUint64(buf, d.StreamSizeValue)
	}
	if d.PresetDictionary {
		buf = binary.LittleEndian.AppendUint32(buf, d.DictID)
	}

	checksum := xxhash32.Checksum(buf[sumStart:])
	buf = append(buf, headerChecksumByte(checksum))

	if _, err := w.Write(buf); err != nil {
		return New(ResultCannotWriteHeader, err)
	}
	return nil
}

// headerChecksumByte extracts bits 8..15 of an xxHash32 digest, the byte
// the frame format stores as a header's checksum.
func headerChecksumByte(h uint32) byte {
	return byte((h >> 8) & 0xFF)
}

// ReadResult is the outcome of one ReadHeader call.
type ReadResult struct {
	// Descriptor is populated when ReadHeader returns a nil error and EOF
	// is false.
	Descriptor Descriptor
	// EOF is true when the source was cleanly exhausted before any frame
	// header began — not an error, just "nothing more to decode".
	EOF bool
}

// SkippableHandler is invoked for each skippable frame ReadHeader walks
// past. r is bounded to exactly size bytes via io.LimitReader; the
// handler need not read all of them — ReadHeader discards whatever is
// left once the handler returns.
type SkippableHandler func(magic uint32, r io.Reader, size uint32) error

// ReadHeader reads one frame header from r, tolerating any number of
// leading skippable frames (each delegated to onSkippable, or discarded
// if onSkippable is nil). It returns ReadResult{EOF: true} if the source
// is cleanly exhausted before a frame begins, and a structural *Error
// otherwise.
//
// r must be a *bufio.Reader so a magic-number mismatch can be reported
// without consuming the mismatched bytes: ReadHeader peeks 4 bytes and
// only discards them once it has confirmed they are a magic number it
// understands. This stands in for the original implementation's
// readSeek(ctx, -4) rewind, without requiring the caller's source to
// support seeking.
func ReadHeader(r *bufio.Reader, onSkippable SkippableHandler) (ReadResult, error) {
	for {
		magicBytes, err := r.Peek(4)
		if err != nil {
			if len(magicBytes) == 0 && err == io.EOF {
				return ReadResult{EOF: true}, nil
			}
			return ReadResult{}, New(ResultInvalidHeader, err)
		}
		magic := binary.LittleEndian.Uint32(magicBytes)

		if IsSkippableMagic(magic) {
			if _, err := r.Discard(4); err != nil {
				return ReadResult{}, New(ResultInvalidHeader, err)
			}
			size, err := readU32(r)
			if err != nil {
				return ReadResult{}, New(ResultInvalidHeader, err)
			}
			if err := consumeSkippable(r, magic, size, onSkippable); err != nil {
				return ReadResult{}, New(ResultInvalidHeader, err)
			}
			continue
		}

		if magic != MagicNumber {
			// Leave the mismatched bytes unconsumed.
			return ReadResult{}, ErrInvalidMagicNumber
		}
		if _, err := r.Discard(4); err != nil {
			return ReadResult{}, New(ResultInvalidHeader, err)
		}

		d, err := readDescriptor(r)
		if err != nil {
			return ReadResult{}, err
		}
		return ReadResult{Descriptor: d}, nil
	}
}

// readDescriptor reads and validates FLG, BD, and any optional
// extensions, then verifies the header-checksum byte.
func readDescriptor(r io.Reader) (Descriptor, error) {
	var d Descriptor

	flgbd := make([]byte, 2)
	if _, err := io.ReadFull(r, flgbd); err != nil {
		return d, New(ResultInvalidHeader, err)
	}
	unpackFLG(&d, flgbd[0])
	unpackBD(&d, flgbd[1])

	if err := d.Validate(); err != nil {
		return d, err
	}

	exLen := 1 // header-checksum byte
	if d.StreamSize {
		exLen += 8
	}
	if d.PresetDictionary {
		exLen += 4
	}

	ext := make([]byte, exLen)
	if _, err := io.ReadFull(r, ext); err != nil {
		return d, New(ResultInvalidHeader, err)
	}

	p := ext
	if d.StreamSize {
		d.StreamSizeValue = binary.LittleEndian.Uint64(p)
		p = p[8:]
	}
	if d.PresetDictionary {
		d.DictID = binary.LittleEndian.Uint32(p)
		p = p[4:]
	}
	headerChecksum := p[0]

	sum := make([]byte, 0, 2+exLen-1)
	sum = append(sum, flgbd...)
	sum = append(sum, ext[:exLen-1]...)
	calculated := headerChecksumByte(xxhash32.Checksum(sum))
	if calculated != headerChecksum {
		return d, ErrInvalidHeaderChecksum
	}

	return d, nil
}

// consumeSkippable hands a skippable chunk's body to handler (or discards
// it if handler is nil), then drains any bytes the handler left
// unconsumed so the stream is correctly positioned at the next frame.
func consumeSkippable(r io.Reader, magic, size uint32, handler SkippableHandler) error {
	lr := io.LimitReader(r, int64(size))
	if handler == nil {
		_, err := io.Copy(io.Discard, lr)
		return err
	}
	if err := handler(magic, lr, size); err != nil {
		return err
	}
	_, err := io.Copy(io.Discard, lr)
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// WriteSkippableHeader writes a skippable-frame header (magic, size) to
// w. It exists for symmetry with ReadHeader's skippable handling and for
// tests that synthesize frames with embedded skippable chunks; the
// compress pipeline itself never emits skippable frames.
func WriteSkippableHeader(w io.Writer, magic, size uint32) error {
	if !IsSkippableMagic(magic) {
		return fmt.Errorf("frame: %#x is not a skippable magic number", magic)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], size)
	_, err := w.Write(buf[:])
	return err
}
