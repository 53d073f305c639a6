package godc

import (
	"bytes"
	"sync/atomic"
)

// DiveCallback receives one downloaded dive's raw bytes and the
// fingerprint extracted from it. Returning (false, nil) terminates
// Foreach early but successfully (spec §4.1.2 step 4); returning a
// non-nil error aborts the whole download with that error.
type DiveCallback func(data []byte, fingerprint []byte) (bool, error)

// Device is the polymorphic download-side entity (spec §4.1). Not every
// family implements every method; unimplemented slots return an error
// with Kind == KindUnsupported.
type Device interface {
	// Family reports the immutable family tag this Device talks to.
	Family() Family

	// SetFingerprint records the fingerprint of a previously seen dive;
	// an empty slice clears it. Foreach stops enumeration at the first
	// dive whose own fingerprint matches.
	SetFingerprint(fp []byte) error

	// Read fetches length bytes starting at addr from device memory.
	Read(addr, length uint32) ([]byte, error)

	// Write stores bytes at addr in device memory, where supported.
	Write(addr uint32, data []byte) error

	// Dump reads the device's entire memory image into buf.
	Dump(buf *Buffer) error

	// Foreach downloads dives newest-first, invoking cb for each, and
	// stops at the first dive matching the fingerprint set via
	// SetFingerprint (spec §3 Fingerprint invariant).
	Foreach(cb DiveCallback) error

	// Close releases the transport, flushing any vendor "exit" sequence.
	Close() error

	// Cancel requests that any operation currently in progress stop at its
	// next protocol turn. The flag stays set until an operation that calls
	// ResetCancel begins (the download templates do so on entry), so a
	// Cancel issued before such an operation does not affect it.
	Cancel()
}

// BaseDevice implements the common bookkeeping every family's Device
// embeds: family tag, transport handle, optional identity/clock
// snapshots, fingerprint, and cancellation (spec §3 Device attributes).
// Concrete families embed *BaseDevice and only implement the vtable slots
// they actually support; the rest come from BaseDevice's stub methods,
// which all return KindUnsupported, matching spec §4.1's "missing slots
// are advertised by returning Unsupported."
type BaseDevice struct {
	family      Family
	ctx         *Context
	transport   Transport
	devinfo     *DevInfo
	clock       *ClockSnapshot
	fingerprint []byte
	cancelled   atomic.Bool
}

// NewBaseDevice constructs the shared bookkeeping for a concrete family
// Device.
func NewBaseDevice(ctx *Context, family Family, transport Transport) *BaseDevice {
	return &BaseDevice{ctx: ctx, family: family, transport: transport}
}

func (b *BaseDevice) Family() Family { return b.family }

func (b *BaseDevice) Context() *Context   { return b.ctx }
func (b *BaseDevice) Transport() Transport { return b.transport }

// SetFingerprint implements Device.SetFingerprint; every family supports it
// since it only touches BaseDevice state.
func (b *BaseDevice) SetFingerprint(fp []byte) error {
	if len(fp) == 0 {
		b.fingerprint = nil
		return nil
	}
	if len(fp) > 32 {
		return newErr("device.set_fingerprint", KindInvalidArgs, nil)
	}
	b.fingerprint = append([]byte(nil), fp...)
	return nil
}

func (b *BaseDevice) Fingerprint() []byte { return b.fingerprint }

// Cancel sets the cancellation flag consulted at every protocol turn
// (spec §4.1.1, §5).
func (b *BaseDevice) Cancel() { b.cancelled.Store(true) }

// Cancelled reports whether Cancel has been called since the last reset.
func (b *BaseDevice) Cancelled() bool { return b.cancelled.Load() }

// ResetCancel clears the cancellation flag, called at the start of a new
// top-level operation so a stale Cancel from a previous call doesn't leak
// into the next one (spec §5: "leaves the Device in a recoverable state").
func (b *BaseDevice) ResetCancel() { b.cancelled.Store(false) }

// CheckCancelled returns a KindCancelled error if Cancel has been called,
// otherwise nil. Protocol helpers call this before every send and after
// every receive (spec §4.1.1).
func (b *BaseDevice) CheckCancelled(op string) error {
	if b.cancelled.Load() {
		return newErr(op, KindCancelled, nil)
	}
	return nil
}

func (b *BaseDevice) SetDevInfo(info DevInfo) {
	b.devinfo = &info
	if b.ctx != nil {
		b.ctx.emitDevInfo(info)
	}
}

func (b *BaseDevice) DevInfo() (DevInfo, bool) {
	if b.devinfo == nil {
		return DevInfo{}, false
	}
	return *b.devinfo, true
}

func (b *BaseDevice) SetClock(clock ClockSnapshot) {
	b.clock = &clock
	if b.ctx != nil {
		b.ctx.emitClock(clock)
	}
}

func (b *BaseDevice) Clock() (ClockSnapshot, bool) {
	if b.clock == nil {
		return ClockSnapshot{}, false
	}
	return *b.clock, true
}

// Read is the BaseDevice default: Unsupported. Families that can read
// arbitrary memory addresses override it.
func (b *BaseDevice) Read(addr, length uint32) ([]byte, error) {
	return nil, newErr("device.read", KindUnsupported, nil)
}

// Write is the BaseDevice default: Unsupported.
func (b *BaseDevice) Write(addr uint32, data []byte) error {
	return newErr("device.write", KindUnsupported, nil)
}

// Dump is the BaseDevice default: Unsupported.
func (b *BaseDevice) Dump(buf *Buffer) error {
	return newErr("device.dump", KindUnsupported, nil)
}

// Foreach is the BaseDevice default: Unsupported.
func (b *BaseDevice) Foreach(cb DiveCallback) error {
	return newErr("device.foreach", KindUnsupported, nil)
}

// Close releases the transport. Families that need to send a vendor "exit"
// byte first should override Close, call it, then delegate here.
func (b *BaseDevice) Close() error {
	if b.transport == nil {
		return nil
	}
	if err := b.transport.Close(); err != nil {
		return newErr("device.close", KindIO, err)
	}
	return nil
}

// --- generic download templates (spec §4.1.2) ---

// HeaderSlot is one decoded entry of a header-first family's logbook ring
// (spec §4.1.2 shape B). InternalNumber == 0 marks an empty slot.
type HeaderSlot struct {
	InternalNumber uint32
	ProfileBegin   uint32
	ProfileLength  uint32
	Fingerprint    []byte
}

// HeaderFirstConfig parameterizes HeaderFirstDownload. ReadDive issues the
// vendor "read dive N" command and returns exactly ProfileLength bytes.
// RegionSize, if non-zero, is the profile ring's total capacity: when the
// aggregated length of all candidate dives would exceed it, the oldest
// ones are dropped since they are unreachable due to overwrite (spec
// §4.1.2 edge case).
type HeaderFirstConfig struct {
	Slots      []HeaderSlot
	RegionSize uint32
	ReadDive   func(slot HeaderSlot) ([]byte, error)
}

// HeaderFirstDownload implements the generic header-first download
// algorithm (spec §4.1.2 shape B, steps 1-4): find the slot with the
// highest internal dive number, walk backward from it modulo the slot
// count, stop at the first fingerprint match, then read and emit each
// candidate dive newest-first.
func HeaderFirstDownload(b *BaseDevice, cfg HeaderFirstConfig, cb DiveCallback) error {
	b.ResetCancel()
	n := len(cfg.Slots)
	if n == 0 {
		return nil
	}

	latest := -1
	count := 0
	for i, s := range cfg.Slots {
		if s.InternalNumber == 0 {
			continue
		}
		count++
		if latest == -1 || s.InternalNumber > cfg.Slots[latest].InternalNumber {
			latest = i
		}
	}
	if latest == -1 {
		return nil
	}

	order := make([]HeaderSlot, 0, count)
	for i := 0; i < count; i++ {
		idx := ((latest-i)%n + n) % n
		s := cfg.Slots[idx]
		if s.InternalNumber == 0 {
			break
		}
		if len(b.fingerprint) > 0 && bytes.Equal(s.Fingerprint, b.fingerprint) {
			break
		}
		order = append(order, s)
	}

	if dups := DuplicateFingerprints(order); len(dups) > 0 && b.ctx != nil {
		b.ctx.Log(SeverityWarning).Strs("fingerprints", dups).Msg("logbook ring repeats a fingerprint across live slots")
	}

	if cfg.RegionSize > 0 {
		if minLen, maxLen := ProfileLengthDomain(order); maxLen > cfg.RegionSize && b.ctx != nil {
			b.ctx.Log(SeverityDebug).
				Uint32("min", minLen).Uint32("max", maxLen).Uint32("region", cfg.RegionSize).
				Msg("candidate dive length domain exceeds the profile region")
		}
		var acc uint32
		kept := 0
		for kept < len(order) {
			next := acc + order[kept].ProfileLength
			if next > cfg.RegionSize {
				break
			}
			acc = next
			kept++
		}
		if kept < len(order) && b.ctx != nil {
			b.ctx.Log(SeverityWarning).
				Int("dropped", len(order)-kept).
				Msg("profile region would overflow; truncating oldest dives")
		}
		order = order[:kept]
	}

	total := AggregateProfileLength(order)
	if b.ctx != nil {
		b.ctx.emitProgress(0, total)
	}

	var current uint64
	for _, s := range order {
		if err := b.CheckCancelled("device.foreach"); err != nil {
			return err
		}
		data, err := cfg.ReadDive(s)
		if err != nil {
			return err
		}
		current += uint64(len(data))
		if b.ctx != nil {
			b.ctx.emitProgress(current, total)
		}
		if err := b.CheckCancelled("device.foreach"); err != nil {
			return err
		}
		cont, err := cb(data, s.Fingerprint)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// DumpThenExtractConfig parameterizes DumpThenExtractDownload. DiveAt
// decodes the dive ending at pos (walking backward through the ring),
// returning its length and fingerprint, or ok=false at the first
// empty/erased page (spec §4.1.2 shape A: "Empty or all-0xFF pages mark
// 'no dive here'").
type DumpThenExtractConfig struct {
	Mem                      []byte
	ProfileBegin, ProfileEnd uint32
	EndPointer               uint32
	DiveAt                   func(mem []byte, end uint32) (length uint32, fingerprint []byte, ok bool)
}

// DumpThenExtractDownload implements the generic dump-then-extract
// algorithm (spec §4.1.2 shape A) for older memory-mapped devices: walk
// the profile ring backward from EndPointer, stitching each dive's bytes
// across the ring boundary where needed (RBRead), until an empty page or
// a fingerprint match is found.
func DumpThenExtractDownload(b *BaseDevice, cfg DumpThenExtractConfig, cb DiveCallback) error {
	b.ResetCancel()

	type found struct {
		data []byte
		fp   []byte
	}
	var dives []found
	pos := cfg.EndPointer

	for {
		if err := b.CheckCancelled("device.foreach"); err != nil {
			return err
		}
		length, fp, ok := cfg.DiveAt(cfg.Mem, pos)
		if !ok {
			break
		}
		if pos != cfg.ProfileEnd && !RBContains(pos, cfg.ProfileBegin, cfg.ProfileEnd) {
			return newErr("device.foreach", KindDataFormat, nil)
		}
		if len(b.fingerprint) > 0 && bytes.Equal(fp, b.fingerprint) {
			break
		}
		start := RBDecrement(pos, length, cfg.ProfileBegin, cfg.ProfileEnd)
		data := RBRead(cfg.Mem, start, length, cfg.ProfileBegin, cfg.ProfileEnd)
		dives = append(dives, found{data: data, fp: fp})
		pos = start
	}

	var total uint64
	for _, d := range dives {
		total += uint64(len(d.data))
	}
	if b.ctx != nil {
		b.ctx.emitProgress(0, total)
	}

	var current uint64
	for _, d := range dives {
		if err := b.CheckCancelled("device.foreach"); err != nil {
			return err
		}
		current += uint64(len(d.data))
		if b.ctx != nil {
			b.ctx.emitProgress(current, total)
		}
		cont, err := cb(d.data, d.fp)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}
