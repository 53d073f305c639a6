package godc

import "testing"

import "github.com/stretchr/testify/assert"

func TestRBDistance(t *testing.T) {
	assert.Equal(t, uint32(0), RBDistance(10, 10, RBEmptyWhenEqual, 0, 100))
	assert.Equal(t, uint32(100), RBDistance(10, 10, RBFullWhenEqual, 0, 100))
	assert.Equal(t, uint32(20), RBDistance(10, 30, RBEmptyWhenEqual, 0, 100))
	assert.Equal(t, uint32(80), RBDistance(30, 10, RBEmptyWhenEqual, 0, 100))
}

func TestRBIncrementWraps(t *testing.T) {
	assert.Equal(t, uint32(5), RBIncrement(95, 10, 0, 100))
	assert.Equal(t, uint32(50), RBIncrement(40, 10, 0, 100))
}

func TestRBDecrementWraps(t *testing.T) {
	assert.Equal(t, uint32(95), RBDecrement(5, 10, 0, 100))
	assert.Equal(t, uint32(40), RBDecrement(50, 10, 0, 100))
}

func TestRBContains(t *testing.T) {
	assert.True(t, RBContains(0, 0, 100))
	assert.True(t, RBContains(99, 0, 100))
	assert.False(t, RBContains(100, 0, 100))
}

func TestRBReadAcrossWrap(t *testing.T) {
	mem := make([]byte, 16)
	for i := range mem {
		mem[i] = byte(i)
	}
	// region is the whole buffer; read 6 bytes starting at 12, wrapping to 0..2
	out := RBRead(mem, 12, 6, 0, 16)
	assert.Equal(t, []byte{12, 13, 14, 15, 0, 1}, out)
}
