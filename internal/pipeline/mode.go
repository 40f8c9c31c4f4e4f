package pipeline

// Mode selects how the block pipeline schedules per-block work.
type Mode int

const (
	// ModeParallel spawns one goroutine per block and lets the Go
	// runtime's scheduler decide how many run at once — the library
	// imposes no internal worker-pool size.
	ModeParallel Mode = iota
	// ModeSequential runs every block's worker body inline on the
	// producer goroutine: no goroutines are spawned and only one block is
	// in flight at a time. The per-block completion channels, the sticky
	// result's mutex and (on decompress) the stream-hash mutex are still
	// created and used, uncontended.
	// Useful for deterministic tests and for byte-for-byte comparison
	// against ModeParallel output.
	ModeSequential
)

func (m Mode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModeParallel:
		return "parallel"
	default:
		return "unknown"
	}
}
