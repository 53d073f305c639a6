package godc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileLengthDomain(t *testing.T) {
	slots := []HeaderSlot{
		{InternalNumber: 1, ProfileLength: 40},
		{InternalNumber: 2, ProfileLength: 10},
		{InternalNumber: 3, ProfileLength: 25},
	}
	min, max := ProfileLengthDomain(slots)
	assert.Equal(t, uint32(10), min)
	assert.Equal(t, uint32(40), max)
}

func TestProfileLengthDomainEmpty(t *testing.T) {
	min, max := ProfileLengthDomain(nil)
	assert.Equal(t, uint32(0), min)
	assert.Equal(t, uint32(0), max)
}

func TestAggregateProfileLength(t *testing.T) {
	slots := []HeaderSlot{
		{ProfileLength: 100},
		{ProfileLength: 200},
		{ProfileLength: 50},
	}
	assert.Equal(t, uint64(350), AggregateProfileLength(slots))
}

func TestDuplicateFingerprints(t *testing.T) {
	slots := []HeaderSlot{
		{Fingerprint: []byte{0x01, 0x02}},
		{Fingerprint: []byte{0x03, 0x04}},
		{Fingerprint: []byte{0x01, 0x02}},
		{Fingerprint: nil},
	}
	dups := DuplicateFingerprints(slots)
	assert.Equal(t, []string{HexASCII([]byte{0x01, 0x02})}, dups)
}

func TestDuplicateFingerprintsNoneRepeated(t *testing.T) {
	slots := []HeaderSlot{
		{Fingerprint: []byte{0x01}},
		{Fingerprint: []byte{0x02}},
	}
	assert.Empty(t, DuplicateFingerprints(slots))
}

func TestLayoutFieldGap(t *testing.T) {
	want := []string{"Serial", "DiveMode", "MemSize"}
	got := []string{"Serial"}
	assert.ElementsMatch(t, []string{"DiveMode", "MemSize"}, LayoutFieldGap(want, got))
}

func TestLayoutFieldGapNoGap(t *testing.T) {
	fields := []string{"Serial", "DiveMode"}
	assert.Empty(t, LayoutFieldGap(fields, fields))
}
