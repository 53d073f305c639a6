package godc

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport replays a scripted sequence of reads and records writes,
// the same shape as a real serial port but driven entirely by an
// in-memory script (no example repo in the pack ships a fake transport
// of its own, so this one is written from scratch in the spirit of the
// teacher's table-driven tests).
type fakeTransport struct {
	readQueue [][]byte
	writes    [][]byte
}

func (f *fakeTransport) Configure(int, int, Parity, StopBits, Flow) error { return nil }
func (f *fakeTransport) SetTimeout(int) error                            { return nil }

func (f *fakeTransport) Read(buf []byte) (int, error) {
	if len(f.readQueue) == 0 {
		return 0, errors.New("no more scripted reads")
	}
	next := f.readQueue[0]
	n := copy(buf, next)
	if n == len(next) {
		f.readQueue = f.readQueue[1:]
	} else {
		f.readQueue[0] = next[n:]
	}
	return n, nil
}

func (f *fakeTransport) Write(buf []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), buf...))
	return len(buf), nil
}

func (f *fakeTransport) Flush(Queue) error       { return nil }
func (f *fakeTransport) SetDTR(bool) error       { return nil }
func (f *fakeTransport) SetRTS(bool) error       { return nil }
func (f *fakeTransport) GetLine(Line) (bool, error) { return false, nil }
func (f *fakeTransport) GetReceived() (int, error)  { return 0, nil }
func (f *fakeTransport) Sleep(time.Duration) error  { return nil }
func (f *fakeTransport) Close() error               { return nil }

func TestHeaderFirstDownloadOrdersNewestFirst(t *testing.T) {
	b := NewBaseDevice(NopContext(), FamilyHWFrog, &fakeTransport{})

	slots := []HeaderSlot{
		{InternalNumber: 3, ProfileBegin: 0, ProfileLength: 4, Fingerprint: []byte{0x03}},
		{InternalNumber: 1, ProfileBegin: 4, ProfileLength: 4, Fingerprint: []byte{0x01}},
		{InternalNumber: 2, ProfileBegin: 8, ProfileLength: 4, Fingerprint: []byte{0x02}},
	}

	var seen []byte
	cfg := HeaderFirstConfig{
		Slots: slots,
		ReadDive: func(slot HeaderSlot) ([]byte, error) {
			return []byte{byte(slot.InternalNumber)}, nil
		},
	}
	err := HeaderFirstDownload(b, cfg, func(data, fp []byte) (bool, error) {
		seen = append(seen, data[0])
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 2, 1}, seen)
}

func TestHeaderFirstDownloadStopsAtFingerprint(t *testing.T) {
	b := NewBaseDevice(NopContext(), FamilyHWFrog, &fakeTransport{})
	require.NoError(t, b.SetFingerprint([]byte{0x02}))

	slots := []HeaderSlot{
		{InternalNumber: 1, Fingerprint: []byte{0x01}},
		{InternalNumber: 2, Fingerprint: []byte{0x02}},
		{InternalNumber: 3, Fingerprint: []byte{0x03}},
	}
	var seen []uint32
	cfg := HeaderFirstConfig{
		Slots:    slots,
		ReadDive: func(slot HeaderSlot) ([]byte, error) { return []byte{0}, nil },
	}
	err := HeaderFirstDownload(b, cfg, func(data, fp []byte) (bool, error) {
		seen = append(seen, uint32(fp[0]))
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x03}, seen)
}

func TestHeaderFirstDownloadRegionOverflowTruncatesOldest(t *testing.T) {
	b := NewBaseDevice(NopContext(), FamilyZeagleN2ition3, &fakeTransport{})
	slots := []HeaderSlot{
		{InternalNumber: 3, ProfileLength: 0x2000, Fingerprint: []byte{0x03}},
		{InternalNumber: 2, ProfileLength: 0x2000, Fingerprint: []byte{0x02}},
		{InternalNumber: 1, ProfileLength: 0x2000, Fingerprint: []byte{0x01}},
	}
	var seen []uint32
	cfg := HeaderFirstConfig{
		Slots:      slots,
		RegionSize: 0x3F20, // two dives of 0x2000 each already exceed this
		ReadDive: func(slot HeaderSlot) ([]byte, error) {
			return make([]byte, slot.ProfileLength), nil
		},
	}
	err := HeaderFirstDownload(b, cfg, func(data, fp []byte) (bool, error) {
		seen = append(seen, uint32(fp[0]))
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x03}, seen, "only the newest dive fits before the region would overflow")
}

func TestDeviceForeachStopsOnCallbackFalse(t *testing.T) {
	b := NewBaseDevice(NopContext(), FamilyHWFrog, &fakeTransport{})
	slots := []HeaderSlot{
		{InternalNumber: 2, Fingerprint: []byte{0x02}},
		{InternalNumber: 1, Fingerprint: []byte{0x01}},
	}
	calls := 0
	cfg := HeaderFirstConfig{
		Slots:    slots,
		ReadDive: func(slot HeaderSlot) ([]byte, error) { return []byte{0}, nil },
	}
	err := HeaderFirstDownload(b, cfg, func(data, fp []byte) (bool, error) {
		calls++
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDeviceForeachCancellationMidStream(t *testing.T) {
	b := NewBaseDevice(NopContext(), FamilyHWFrog, &fakeTransport{})
	slots := []HeaderSlot{
		{InternalNumber: 2, Fingerprint: []byte{0x02}},
		{InternalNumber: 1, Fingerprint: []byte{0x01}},
	}
	calls := 0
	cfg := HeaderFirstConfig{
		Slots: slots,
		ReadDive: func(slot HeaderSlot) ([]byte, error) {
			return []byte{0}, nil
		},
	}
	err := HeaderFirstDownload(b, cfg, func(data, fp []byte) (bool, error) {
		calls++
		b.Cancel()
		return true, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 1, calls, "the second dive should never be delivered once cancelled")
}

func TestDumpThenExtractDownloadStitchesAcrossWrap(t *testing.T) {
	b := NewBaseDevice(NopContext(), FamilyAtomicsCobalt, &fakeTransport{})
	mem := make([]byte, 16)
	for i := range mem {
		mem[i] = byte(i)
	}
	cfg := DumpThenExtractConfig{
		Mem: mem, ProfileBegin: 0, ProfileEnd: 16, EndPointer: 2,
		DiveAt: func(mem []byte, end uint32) (uint32, []byte, bool) {
			if end != 2 {
				return 0, nil, false
			}
			return 6, []byte{0xAB}, true
		},
	}
	var got []byte
	err := DumpThenExtractDownload(b, cfg, func(data, fp []byte) (bool, error) {
		got = data
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{12, 13, 14, 15, 0, 1}, got)
}

func TestBaseDeviceUnsupportedSlots(t *testing.T) {
	b := NewBaseDevice(NopContext(), FamilyCitizenAqualand, &fakeTransport{})
	_, err := b.Read(0, 1)
	assert.Equal(t, KindUnsupported, KindOf(err))
	assert.Equal(t, KindUnsupported, KindOf(b.Write(0, nil)))
	assert.Equal(t, KindUnsupported, KindOf(b.Dump(NewBuffer(0))))
	assert.Equal(t, KindUnsupported, KindOf(b.Foreach(nil)))
}

func TestSetFingerprintRejectsOversize(t *testing.T) {
	b := NewBaseDevice(NopContext(), FamilyCitizenAqualand, &fakeTransport{})
	err := b.SetFingerprint(make([]byte, 64))
	assert.Equal(t, KindInvalidArgs, KindOf(err))
}
