package godc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicsPsiToDepthConversion(t *testing.T) {
	salinity := Salinity{Type: WaterSalt, Density: 1025}
	// raw is psi*256 so (raw/256)/14.5037738 recovers absolute bar; 2 bar
	// absolute (1 atm + ~1 bar of water) corresponds to a known depth.
	raw := uint16(2 * 14.5037738 * 256)
	depth := atomicsPsiToDepth(raw, salinity, 1.0)
	assert.InDelta(t, 10.0*(1000.0/1025.0), depth, 0.5)
}

func TestAtomicsCobaltParserSamplesNonDecreasingTime(t *testing.T) {
	p := NewAtomicsCobaltParser()
	data := make([]byte, 32+8*3)
	for i := 0; i < 3; i++ {
		rec := data[32+i*8 : 32+i*8+8]
		WriteU16LE(rec, 0, uint16(14.5037738*256*(1+float64(i)*0.1)))
		WriteU16LE(rec, 2, uint16(200+i))
	}
	require.NoError(t, p.SetData(data))

	var last uint32
	err := p.SamplesForeach(func(s Sample) error {
		if s.Type == SampleTime {
			assert.GreaterOrEqual(t, s.Time, last)
			last = s.Time
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(12), last)
}

func TestSuuntoParserMapsEventTags(t *testing.T) {
	p := NewSuuntoParser(FamilySuuntoEON)
	data := make([]byte, 16)
	data = append(data, 0x01, 50) // depth sample, 5.0m
	data = append(data, 0x07, 0)  // bookmark event
	data = append(data, 0xFF, 0)  // terminator
	require.NoError(t, p.SetData(data))

	var kinds []SampleType
	var events []EventType
	err := p.SamplesForeach(func(s Sample) error {
		kinds = append(kinds, s.Type)
		if s.Type == SampleEvent {
			events = append(events, s.Event.Type)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, kinds, SampleDepth)
	assert.Contains(t, events, EventBookmark)
}

// TestSuuntoD9ParserGasMixMarker exercises the literal scenario-3 bytes
// (05 21 0A): tag 0x05 marks a gas mix change, oxygen% 0x21 (33), gas mix
// index 0x0A (10).
func TestSuuntoD9ParserGasMixMarker(t *testing.T) {
	p := NewSuuntoD9Parser()
	data := make([]byte, 16)
	data = append(data, 0x05, 0x21, 0x0A)
	data = append(data, 0xFF)
	require.NoError(t, p.SetData(data))

	count, err := p.GetField(FieldGasMixCount, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(11), count.GasMixCount)

	mix, err := p.GetField(FieldGasMix, 10)
	require.NoError(t, err)
	assert.Equal(t, float64(33), mix.GasMix.Oxygen)

	var gotGasMix bool
	var gasMixIndex int
	err = p.SamplesForeach(func(s Sample) error {
		if s.Type == SampleGasMix {
			gotGasMix = true
			gasMixIndex = s.GasMix
		}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, gotGasMix)
	assert.Equal(t, 10, gasMixIndex)
	assert.Less(t, gasMixIndex, int(count.GasMixCount))
}

func TestZeagleParserFahrenheitToCelsius(t *testing.T) {
	p := NewZeagleParser()
	data := make([]byte, 32+6)
	rec := data[32:38]
	WriteU16LE(rec, 0, 500)  // 5.00m
	WriteU16LE(rec, 2, 980) // 98.0F -> ~36.67C
	require.NoError(t, p.SetData(data))

	var gotDepth, gotTemp float64
	err := p.SamplesForeach(func(s Sample) error {
		switch s.Type {
		case SampleDepth:
			gotDepth = s.Depth
		case SampleTemperature:
			gotTemp = s.Temperature
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, gotDepth)
	assert.InDelta(t, 36.67, gotTemp, 0.1)
}

func TestOceanicGuessCenturyHeuristic(t *testing.T) {
	assert.Equal(t, 2015, oceanicGuessCentury(15, 2026))
	assert.Equal(t, 1999, oceanicGuessCentury(99, 2005))
}

func TestShearwaterSensorCalValueBias(t *testing.T) {
	assert.Equal(t, 1024, shearwaterSensorCalValue(0))
	assert.Equal(t, 1524, shearwaterSensorCalValue(500))
}

func TestHWOSTCParserHeaderTooShort(t *testing.T) {
	p, err := NewHWOSTCParser(FamilyHWOSTC3)
	require.NoError(t, err)
	err = p.SetData(make([]byte, 4))
	assert.Equal(t, KindDataFormat, KindOf(err))
}

func TestGenericDecodeHeaderSlots(t *testing.T) {
	layout, _ := LayoutFor(FamilyZeagleN2ition3)
	logbook := make([]byte, int(layout.HeaderSize)*2)

	rec0 := logbook[:layout.HeaderSize]
	rec0[0], rec0[1], rec0[2], rec0[3] = 0, 0, 0, 7 // internal number 7, big-endian
	WriteU32LE(rec0, 4, 0x100)
	WriteU32LE(rec0, 8, 0x40)

	slots := decodeHeaderSlots(logbook, layout.HeaderSize, 2, genericDecodeSlot(layout))
	require.Len(t, slots, 2)
	assert.Equal(t, uint32(7), slots[0].InternalNumber)
	assert.Equal(t, uint32(0x100), slots[0].ProfileBegin)
	assert.Equal(t, uint32(0x40), slots[0].ProfileLength)
	assert.Equal(t, uint32(0), slots[1].InternalNumber)
}
