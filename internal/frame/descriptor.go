package frame

// Descriptor holds every field of an LZ4 frame's FLG and BD bytes, plus
// the optional StreamSize/DictID extensions. It is deliberately a 1:1
// mirror of the wire layout — including fields this implementation
// always rejects or always forces to zero — so the header reader can
// describe any syntactically valid frame it encounters, and the header
// writer can be driven by a value built entirely from the bits it will
// emit.
type Descriptor struct {
	// FLG fields.
	PresetDictionary bool
	Reserved1        bool
	StreamChecksum   bool
	StreamSize       bool
	BlockChecksum    bool
	BlockIndependence bool
	VersionNumber    uint8 // 2 bits

	// BD fields.
	Reserved3        uint8 // 4 bits
	BlockMaximumSize BlockSize
	Reserved2        bool

	// Optional extensions, present only when the corresponding flag is
	// set.
	StreamSizeValue uint64
	DictID          uint32
}

// packFLG encodes the FLG byte from d's FLG fields.
func packFLG(d *Descriptor) byte {
	var b byte
	if d.PresetDictionary {
		b |= 1 << 0
	}
	if d.Reserved1 {
		b |= 1 << 1
	}
	if d.StreamChecksum {
		b |= 1 << 2
	}
	if d.StreamSize {
		b |= 1 << 3
	}
	if d.BlockChecksum {
		b |= 1 << 4
	}
	if d.BlockIndependence {
		b |= 1 << 5
	}
	b |= (d.VersionNumber & 0x3) << 6
	return b
}

// unpackFLG decodes b into d's FLG fields.
func unpackFLG(d *Descriptor, b byte) {
	d.PresetDictionary = b&(1<<0) != 0
	d.Reserved1 = b&(1<<1) != 0
	d.StreamChecksum = b&(1<<2) != 0
	d.StreamSize = b&(1<<3) != 0
	d.BlockChecksum = b&(1<<4) != 0
	d.BlockIndependence = b&(1<<5) != 0
	d.VersionNumber = (b >> 6) & 0x3
}

// packBD encodes the BD byte from d's BD fields.
func packBD(d *Descriptor) byte {
	var b byte
	b |= d.Reserved3 & 0xF
	b |= (byte(d.BlockMaximumSize) & 0x7) << 4
	if d.Reserved2 {
		b |= 1 << 7
	}
	return b
}

// unpackBD decodes b into d's BD fields.
func unpackBD(d *Descriptor, b byte) {
	d.Reserved3 = b & 0xF
	d.BlockMaximumSize = BlockSize((b >> 4) & 0x7)
	d.Reserved2 = b&(1<<7) != 0
}

// Validate checks d against the subset of the frame format this
// implementation supports, returning the single most specific *Error for
// the first violation found, in the order the original frame decoder
// checks them.
func (d *Descriptor) Validate() error {
	if d.VersionNumber != 1 {
		return ErrInvalidVersion
	}
	if d.PresetDictionary {
		return ErrPresetDictionaryUnsupported
	}
	if d.Reserved1 {
		return ErrInvalidHeader
	}
	if !d.BlockIndependence {
		return ErrBlockDependenceUnsupported
	}
	if !d.BlockMaximumSize.Valid() {
		return ErrInvalidBlockMaximumSize
	}
	if d.Reserved3 != 0 {
		return ErrInvalidHeader
	}
	if d.Reserved2 {
		return ErrInvalidHeader
	}
	return nil
}

// Default returns the descriptor this package's Compress path emits when
// the caller asks for defaults: version 1, block-independent, stream
// checksum on, 4MiB blocks, everything else off.
func Default() Descriptor {
	return Descriptor{
		VersionNumber:     1,
		BlockIndependence: true,
		StreamChecksum:    true,
		BlockMaximumSize:  BlockSize4MB,
	}
}
