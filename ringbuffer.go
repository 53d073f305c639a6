package godc

// ringbuffer.go implements the circular-buffer arithmetic shared by every
// header-first and dump-then-extract download (spec §2, §4.1.2). A ring
// region is the half-open window [begin, end) within a device's declared
// memory map; RBMode disambiguates the degenerate a==b case, which is
// genuinely ambiguous (empty ring vs completely full ring) without extra
// context from the caller.
type RBMode int

const (
	// RBEmptyWhenEqual treats a==b as an empty region (mode 0).
	RBEmptyWhenEqual RBMode = 0
	// RBFullWhenEqual treats a==b as a completely full region (mode 1).
	RBFullWhenEqual RBMode = 1
)

// RBDistance returns the number of bytes from a to b, walking forward
// through the ring (wrapping at end back to begin) within [begin, end).
// When a == b, mode selects whether the result is 0 (empty) or the full
// region size end-begin (full).
func RBDistance(a, b uint32, mode RBMode, begin, end uint32) uint32 {
	size := end - begin
	if a == b {
		if mode == RBFullWhenEqual {
			return size
		}
		return 0
	}
	if b > a {
		return b - a
	}
	return size - (a - b)
}

// RBIncrement advances a by n bytes, wrapping within [begin, end). It does
// not check that a lies inside the region; a device-reported pointer is
// validated with RBContains first and rejected as DataFormat (spec §8:
// "∀ ring pointer p reported by the device: begin ≤ p < end else
// DataFormat").
func RBIncrement(a, n, begin, end uint32) uint32 {
	size := end - begin
	offset := (a - begin + n) % size
	return begin + offset
}

// RBContains reports whether p lies within the half-open region
// [begin, end). Used at every point a device-reported pointer needs to be
// validated before use (spec §8 invariant).
func RBContains(p, begin, end uint32) bool {
	return p >= begin && p < end
}

// RBDecrement moves a backward by n bytes, wrapping within [begin, end).
// Used when a download walks a ring buffer end-to-start (spec §4.1.2
// shape A: "scans the image backward from an end-of-profile pointer").
func RBDecrement(a, n, begin, end uint32) uint32 {
	size := end - begin
	n %= size
	return RBIncrement(a, size-n, begin, end)
}

// RBRead reassembles length bytes starting at addr from a circular memory
// region backed by mem (the full flash image, memsize == len(mem)),
// handling the wrap at end back to begin. This is the generic shape of
// spec §8 scenario 2 (Atomics Cobalt-style ring traversal): a profile
// whose begin/end straddle the ring boundary is stitched from two reads.
func RBRead(mem []byte, addr, length, begin, end uint32) []byte {
	size := end - begin
	out := make([]byte, 0, length)
	pos := addr
	remaining := length
	for remaining > 0 {
		until := remaining
		if room := end - pos; until > room {
			until = room
		}
		out = append(out, mem[pos:pos+until]...)
		remaining -= until
		pos += until
		if pos >= end {
			pos = begin
		}
	}
	_ = size
	return out
}
