package godc

import "testing"

import "github.com/stretchr/testify/assert"

func TestEndianReaders(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04}
	assert.Equal(t, uint16(0x0201), ReadU16LE(b, 0))
	assert.Equal(t, uint16(0x0102), ReadU16BE(b, 0))
	assert.Equal(t, uint32(0x030201), ReadU24LE(b, 0))
	assert.Equal(t, uint32(0x010203), ReadU24BE(b, 0))
	assert.Equal(t, uint32(0x04030201), ReadU32LE(b, 0))
	assert.Equal(t, uint32(0x01020304), ReadU32BE(b, 0))
}

func TestWriteRoundTrip(t *testing.T) {
	b := make([]byte, 4)
	WriteU32LE(b, 0, 0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), ReadU32LE(b, 0))

	b2 := make([]byte, 2)
	WriteU16LE(b2, 0, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), ReadU16LE(b2, 0))
}

func TestBCDToDecimal(t *testing.T) {
	assert.Equal(t, 42, BCDToDecimal(0x42))
	assert.Equal(t, 0, BCDToDecimal(0x00))
	assert.Equal(t, 99, BCDToDecimal(0x99))
}

func TestAllEqual(t *testing.T) {
	assert.True(t, AllEqual([]byte{0xFF, 0xFF, 0xFF}, 0xFF))
	assert.False(t, AllEqual([]byte{0xFF, 0x00, 0xFF}, 0xFF))
	assert.True(t, AllEqual(nil, 0x00))
}

func TestReverseBitsIsInvolution(t *testing.T) {
	orig := []byte{0b10110000, 0b00000001, 0b11111111}
	cp := append([]byte(nil), orig...)
	ReverseBits(cp)
	assert.NotEqual(t, orig, cp)
	ReverseBits(cp)
	assert.Equal(t, orig, cp)
}

func TestChecksums(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	assert.Equal(t, byte(0x06), AdditiveChecksum8(data))
	assert.Equal(t, byte(0x00), XORChecksum([]byte{0xAA, 0xAA}))

	sum := OnesComplementSum16(data)
	assert.Equal(t, uint16(0xFFF9), sum)
}

func TestHexASCII(t *testing.T) {
	assert.Equal(t, "deadbeef", HexASCII([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
}
