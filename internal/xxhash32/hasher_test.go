package xxhash32

import "testing"

func TestChecksum_Deterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	a := Checksum(data)
	b := Checksum(data)
	if a != b {
		t.Errorf("Checksum() not deterministic: %d != %d", a, b)
	}
}

func TestChecksum_DiffersOnDifferentInput(t *testing.T) {
	a := Checksum([]byte("alpha"))
	b := Checksum([]byte("beta"))
	if a == b {
		t.Error("Checksum() produced identical digests for different inputs")
	}
}

func TestHasher_MatchesOneShotChecksum(t *testing.T) {
	data := []byte("LZ4 frame format block checksum")

	h := New()
	h.Update(data)
	incremental := h.Sum32()

	oneShot := Checksum(data)
	if incremental != oneShot {
		t.Errorf("incremental Sum32() = %d, one-shot Checksum() = %d", incremental, oneShot)
	}
}

func TestHasher_UpdateInChunksMatchesWholeUpdate(t *testing.T) {
	data := []byte("this is split across several Update calls for the same hasher")

	whole := New()
	whole.Update(data)

	chunked := New()
	for i := 0; i < len(data); i += 7 {
		end := i + 7
		if end > len(data) {
			end = len(data)
		}
		chunked.Update(data[i:end])
	}

	if whole.Sum32() != chunked.Sum32() {
		t.Errorf("chunked Update() digest = %d, whole Update() digest = %d", chunked.Sum32(), whole.Sum32())
	}
}

func TestHasher_Sum32IsAPeek(t *testing.T) {
	h := New()
	h.Update([]byte("abc"))
	first := h.Sum32()
	second := h.Sum32()
	if first != second {
		t.Errorf("Sum32() changed between calls with no intervening Update: %d != %d", first, second)
	}

	h.Update([]byte("def"))
	third := h.Sum32()
	if third == second {
		t.Error("Sum32() did not change after a further Update")
	}
}

func TestHasher_Reset(t *testing.T) {
	h := New()
	h.Update([]byte("some data"))
	h.Reset()

	fresh := New()
	if h.Sum32() != fresh.Sum32() {
		t.Errorf("Sum32() after Reset() = %d, want digest of empty input %d", h.Sum32(), fresh.Sum32())
	}
}

func TestChecksum_EmptyInput(t *testing.T) {
	// An empty input must hash deterministically too, since a frame for
	// empty input still carries a stream checksum: the digest of zero
	// bytes.
	a := Checksum(nil)
	b := Checksum([]byte{})
	if a != b {
		t.Errorf("Checksum(nil) = %d, Checksum([]byte{}) = %d", a, b)
	}
}
