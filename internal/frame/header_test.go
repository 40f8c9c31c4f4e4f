package frame

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestWriteReadHeader_RoundTrip(t *testing.T) {
	tests := []Descriptor{
		Default(),
		{VersionNumber: 1, BlockIndependence: true, BlockMaximumSize: BlockSize64KB},
		{VersionNumber: 1, BlockIndependence: true, BlockMaximumSize: BlockSize1MB, BlockChecksum: true},
		{VersionNumber: 1, BlockIndependence: true, BlockMaximumSize: BlockSize256KB, StreamSize: true, StreamSizeValue: 12345},
	}

	for _, d := range tests {
		var buf bytes.Buffer
		if err := WriteHeader(&buf, &d); err != nil {
			t.Fatalf("WriteHeader(%+v) = %v", d, err)
		}

		r := bufio.NewReader(&buf)
		res, err := ReadHeader(r, nil)
		if err != nil {
			t.Fatalf("ReadHeader() after WriteHeader(%+v) = %v", d, err)
		}
		if res.EOF {
			t.Fatalf("ReadHeader() reported EOF for a written header")
		}
		if res.Descriptor != d {
			t.Errorf("round-tripped descriptor = %+v, want %+v", res.Descriptor, d)
		}
	}
}

func TestReadHeader_CleanEOF(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader(nil))
	res, err := ReadHeader(r, nil)
	if err != nil {
		t.Fatalf("ReadHeader(empty) = %v, want nil", err)
	}
	if !res.EOF {
		t.Error("ReadHeader(empty).EOF = false, want true")
	}
}

func TestReadHeader_InvalidMagicNumber(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(0xDEADBEEF))
	buf.WriteString("trailing bytes")

	r := bufio.NewReader(&buf)
	_, err := ReadHeader(r, nil)
	if err != ErrInvalidMagicNumber {
		t.Fatalf("ReadHeader() = %v, want ErrInvalidMagicNumber", err)
	}

	// The mismatched bytes must not have been consumed.
	peeked, err := r.Peek(4)
	if err != nil {
		t.Fatalf("Peek() after mismatch = %v", err)
	}
	if binary.LittleEndian.Uint32(peeked) != 0xDEADBEEF {
		t.Error("ReadHeader consumed the mismatched magic bytes")
	}
}

func TestReadHeader_InvalidHeaderChecksum(t *testing.T) {
	d := Default()
	var buf bytes.Buffer
	if err := WriteHeader(&buf, &d); err != nil {
		t.Fatalf("WriteHeader() = %v", err)
	}

	// Flip the last byte: the header-checksum byte.
	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF

	r := bufio.NewReader(bytes.NewReader(raw))
	_, err := ReadHeader(r, nil)
	if err != ErrInvalidHeaderChecksum {
		t.Fatalf("ReadHeader() = %v, want ErrInvalidHeaderChecksum", err)
	}
}

func TestReadHeader_SkippableFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSkippableHeader(&buf, MagicNumberSkippableMin, 4); err != nil {
		t.Fatalf("WriteSkippableHeader() = %v", err)
	}
	buf.WriteString("ABCD")

	d := Default()
	if err := WriteHeader(&buf, &d); err != nil {
		t.Fatalf("WriteHeader() = %v", err)
	}

	var handled []byte
	handler := func(magic uint32, r io.Reader, size uint32) error {
		b := make([]byte, size)
		if _, err := io.ReadFull(r, b); err != nil {
			return err
		}
		handled = b
		return nil
	}

	res, err := ReadHeader(bufio.NewReader(&buf), handler)
	if err != nil {
		t.Fatalf("ReadHeader() = %v", err)
	}
	if string(handled) != "ABCD" {
		t.Errorf("skippable handler saw %q, want %q", handled, "ABCD")
	}
	if res.Descriptor != d {
		t.Errorf("descriptor after skippable frame = %+v, want %+v", res.Descriptor, d)
	}
}

func TestReadHeader_SkippableFrame_NilHandlerDiscards(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSkippableHeader(&buf, MagicNumberSkippableMin+1, 6); err != nil {
		t.Fatalf("WriteSkippableHeader() = %v", err)
	}
	buf.WriteString("ignore")

	d := Default()
	if err := WriteHeader(&buf, &d); err != nil {
		t.Fatalf("WriteHeader() = %v", err)
	}

	res, err := ReadHeader(bufio.NewReader(&buf), nil)
	if err != nil {
		t.Fatalf("ReadHeader() = %v", err)
	}
	if res.Descriptor != d {
		t.Errorf("descriptor after discarded skippable frame = %+v, want %+v", res.Descriptor, d)
	}
}

func TestWriteSkippableHeader_RejectsNonSkippableMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSkippableHeader(&buf, MagicNumber, 4); err == nil {
		t.Error("WriteSkippableHeader(MagicNumber) = nil, want error")
	}
}
