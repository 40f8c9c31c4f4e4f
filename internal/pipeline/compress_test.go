package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/lz4mt-go/lz4mt/internal/frame"
)

// decodeFrame is a small test-only harness that replays a frame written by
// Compress back through frame.ReadHeader + DecompressBlocks, returning the
// recovered bytes. It exercises both pipeline halves against each other,
// which is exactly the round-trip property this package must satisfy.
func decodeFrame(t *testing.T, encoded []byte, mode Mode) []byte {
	t.Helper()

	r := bufio.NewReader(bytes.NewReader(encoded))
	hdr, err := frame.ReadHeader(r, nil)
	if err != nil {
		t.Fatalf("ReadHeader() = %v", err)
	}
	if hdr.EOF {
		t.Fatal("ReadHeader() reported EOF on a compressed frame")
	}

	var out bytes.Buffer
	if err := DecompressBlocks(context.Background(), &out, r, DecompressConfig{
		Descriptor: hdr.Descriptor,
		Mode:       mode,
	}); err != nil {
		t.Fatalf("DecompressBlocks() = %v", err)
	}
	return out.Bytes()
}

func testDescriptors() []frame.Descriptor {
	mk := func(bs frame.BlockSize, blockChecksum, streamChecksum bool) frame.Descriptor {
		return frame.Descriptor{
			VersionNumber:     1,
			BlockIndependence: true,
			BlockMaximumSize:  bs,
			BlockChecksum:     blockChecksum,
			StreamChecksum:    streamChecksum,
		}
	}
	return []frame.Descriptor{
		mk(frame.BlockSize64KB, false, true),
		mk(frame.BlockSize64KB, true, true),
		mk(frame.BlockSize64KB, true, false),
		mk(frame.BlockSize256KB, false, false),
	}
}

func TestCompress_RoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	inputs := map[string][]byte{
		"empty":                  {},
		"single byte":            {0x42},
		"one block exact":        bytes.Repeat([]byte{0xAB}, frame.BlockSize64KB.Bytes()),
		"one block plus one":     bytes.Repeat([]byte{0xCD}, frame.BlockSize64KB.Bytes()+1),
		"several blocks":         randomBytes(rnd, frame.BlockSize64KB.Bytes()*3+777),
		"ascii":                  []byte("Hello, world!"),
		"highly compressible":    bytes.Repeat([]byte{0}, 1<<20),
	}

	for name, src := range inputs {
		for _, d := range testDescriptors() {
			for _, mode := range []Mode{ModeSequential, ModeParallel} {
				t.Run(name, func(t *testing.T) {
					var buf bytes.Buffer
					err := Compress(context.Background(), &buf, bytes.NewReader(src), CompressConfig{
						Descriptor: d,
						Mode:       mode,
					})
					if err != nil {
						t.Fatalf("Compress() = %v", err)
					}

					got := decodeFrame(t, buf.Bytes(), mode)
					if !bytes.Equal(got, src) {
						t.Errorf("round-trip mismatch for %q (mode=%v): got %d bytes, want %d bytes", name, mode, len(got), len(src))
					}
				})
			}
		}
	}
}

func TestCompress_ParallelMatchesSequentialByteForByte(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	src := randomBytes(rnd, frame.BlockSize64KB.Bytes()*5+123)
	d := frame.Descriptor{
		VersionNumber:     1,
		BlockIndependence: true,
		BlockMaximumSize:  frame.BlockSize64KB,
		BlockChecksum:     true,
		StreamChecksum:    true,
	}

	var seq, par bytes.Buffer
	if err := Compress(context.Background(), &seq, bytes.NewReader(src), CompressConfig{Descriptor: d, Mode: ModeSequential}); err != nil {
		t.Fatalf("Compress(sequential) = %v", err)
	}
	if err := Compress(context.Background(), &par, bytes.NewReader(src), CompressConfig{Descriptor: d, Mode: ModeParallel}); err != nil {
		t.Fatalf("Compress(parallel) = %v", err)
	}

	if !bytes.Equal(seq.Bytes(), par.Bytes()) {
		t.Errorf("sequential and parallel output differ: %d vs %d bytes", seq.Len(), par.Len())
	}
}

func TestCompress_EmptyInputHasEOSAndStreamHash(t *testing.T) {
	d := frame.Default()
	var buf bytes.Buffer
	if err := Compress(context.Background(), &buf, bytes.NewReader(nil), CompressConfig{Descriptor: d}); err != nil {
		t.Fatalf("Compress() = %v", err)
	}

	got := decodeFrame(t, buf.Bytes(), ModeParallel)
	if len(got) != 0 {
		t.Errorf("decoded %d bytes from empty input, want 0", len(got))
	}
}

func TestCompress_PropagatesWriteFailure(t *testing.T) {
	d := frame.Default()
	failing := &failingWriter{failAfter: 0}
	err := Compress(context.Background(), failing, bytes.NewReader([]byte("some data")), CompressConfig{Descriptor: d})
	if err == nil {
		t.Fatal("Compress() = nil, want error from a failing writer")
	}
}

func TestCompress_RejectsInvalidDescriptor(t *testing.T) {
	d := frame.Descriptor{VersionNumber: 2}
	err := Compress(context.Background(), &bytes.Buffer{}, bytes.NewReader(nil), CompressConfig{Descriptor: d})
	if !errors.Is(err, frame.ErrInvalidVersion) {
		t.Errorf("Compress() with bad version = %v, want ErrInvalidVersion", err)
	}
}

func TestCompress_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := frame.Default()
	rnd := rand.New(rand.NewSource(3))
	src := randomBytes(rnd, frame.BlockSize4MB.Bytes()*2)

	err := Compress(ctx, &bytes.Buffer{}, bytes.NewReader(src), CompressConfig{Descriptor: d})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Compress() with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestCompress_MaxInFlightBoundsConcurrency(t *testing.T) {
	rnd := rand.New(rand.NewSource(21))
	src := randomBytes(rnd, frame.BlockSize64KB.Bytes()*8+99)
	d := frame.Descriptor{
		VersionNumber:     1,
		BlockIndependence: true,
		BlockMaximumSize:  frame.BlockSize64KB,
		StreamChecksum:    true,
	}

	var buf bytes.Buffer
	err := Compress(context.Background(), &buf, bytes.NewReader(src), CompressConfig{
		Descriptor:  d,
		Mode:        ModeParallel,
		MaxInFlight: 2,
	})
	if err != nil {
		t.Fatalf("Compress() with MaxInFlight = %v", err)
	}

	got := decodeFrame(t, buf.Bytes(), ModeParallel)
	if !bytes.Equal(got, src) {
		t.Error("round-trip mismatch with MaxInFlight bound")
	}
}

func randomBytes(rnd *rand.Rand, n int) []byte {
	b := make([]byte, n)
	rnd.Read(b)
	return b
}

// failingWriter fails every Write call after failAfter successful writes.
type failingWriter struct {
	failAfter int
	writes    int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.writes >= f.failAfter {
		return 0, io.ErrClosedPipe
	}
	f.writes++
	return len(p), nil
}
