package godc

// family_common.go collects the small pieces of plumbing shared by several
// family backends so each family_*.go file can stay close to the byte
// layout it's actually modelling (spec §4.3: "adding a new revision is
// primarily a new layout entry plus any wire-protocol quirks").

// decodeHeaderSlot is implemented per family to pull the three things
// HeaderFirstDownload needs out of one fixed-size logbook record.
type decodeHeaderSlot func(record []byte) (internalNumber uint32, profileBegin, profileLength uint32, fingerprint []byte)

// decodeHeaderSlots slices logbook into SlotCount fixed-size records and
// decodes each into a HeaderSlot (spec §4.1.2 shape B step 1).
func decodeHeaderSlots(logbook []byte, headerSize, slotCount uint32, decode decodeHeaderSlot) []HeaderSlot {
	slots := make([]HeaderSlot, 0, slotCount)
	for i := uint32(0); i < slotCount; i++ {
		start := i * headerSize
		end := start + headerSize
		if end > uint32(len(logbook)) {
			break
		}
		rec := logbook[start:end]
		num, begin, length, fp := decode(rec)
		slots = append(slots, HeaderSlot{
			InternalNumber: num,
			ProfileBegin:   begin,
			ProfileLength:  length,
			Fingerprint:    fp,
		})
	}
	return slots
}

// recordDecoder turns one fixed-size sample record into zero or more
// canonical samples; elapsed is threaded through so a family can
// accumulate a running time counter across records (most wire formats
// give a per-record delta, not an absolute timestamp).
type recordDecoder func(record []byte, elapsed *uint32) ([]Sample, error)

// walkFixedRecords is the generic shape of spec §4.2.2 steps 1-3: advance
// a cursor in fixed-size records, skip records for which isEmpty is true,
// and decode every other record into canonical samples delivered to cb in
// order.
func walkFixedRecords(data []byte, start, recordSize int, isEmpty func([]byte) bool, decode recordDecoder, cb SampleCallback) error {
	var elapsed uint32
	for pos := start; pos+recordSize <= len(data); pos += recordSize {
		rec := data[pos : pos+recordSize]
		if isEmpty(rec) {
			continue
		}
		samples, err := decode(rec, &elapsed)
		if err != nil {
			return err
		}
		for _, s := range samples {
			if err := cb(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// isAllEqualRecord builds an isEmpty predicate for walkFixedRecords that
// matches spec §4.2.2 step 2: "all 0x00 or all 0xFF, family-defined."
func isAllEqualRecord(v byte) func([]byte) bool {
	return func(rec []byte) bool { return AllEqual(rec, v) }
}

// timeSample builds the SampleTime entry that must precede every
// sub-second group of samples for one record (spec §3 invariant).
func timeSample(t uint32) Sample {
	return Sample{Type: SampleTime, Time: t}
}

// computeDerivedFields walks a parser's own SamplesForeach to populate a
// headerCache's DiveTime/MaxDepth/AvgDepth plus the temperature extremes
// (Surface/Min/Max), matching spec §4.2.1 step 3's "cache the result."
// Every family's aggregation is the same reduction over the sample
// stream, so it lives here once instead of once per family file.
func computeDerivedFields(h *headerCache, samplesForeach func(SampleCallback) error) {
	var maxDepth, sumDepth float64
	var depthCount int
	var last uint32
	var tempSet bool
	var tempMin, tempMax, tempSurface float64
	_ = samplesForeach(func(s Sample) error {
		switch s.Type {
		case SampleTime:
			last = s.Time
		case SampleDepth:
			if s.Depth > maxDepth {
				maxDepth = s.Depth
			}
			sumDepth += s.Depth
			depthCount++
		case SampleTemperature:
			if !tempSet {
				tempSurface, tempMin, tempMax = s.Temperature, s.Temperature, s.Temperature
				tempSet = true
			}
			if s.Temperature < tempMin {
				tempMin = s.Temperature
			}
			if s.Temperature > tempMax {
				tempMax = s.Temperature
			}
		}
		return nil
	})
	h.diveTime = last
	h.maxDepth = maxDepth
	if depthCount > 0 {
		h.avgDepth = sumDepth / float64(depthCount)
	}
	h.tempValid = tempSet
	h.tempSurface = tempSurface
	h.tempMin = tempMin
	h.tempMax = tempMax
	h.derivedValid = true
}

// temperatureField answers FieldTemperatureSurface/Min/Max from a
// headerCache once computeDerivedFields has run; callers return
// KindUnsupported from the caller's own default case for any ft this
// doesn't recognize.
func temperatureField(h *headerCache, ft FieldType) (FieldValue, bool) {
	if !h.tempValid {
		return FieldValue{}, false
	}
	switch ft {
	case FieldTemperatureSurface:
		return FieldValue{Temperature: h.tempSurface}, true
	case FieldTemperatureMin:
		return FieldValue{Temperature: h.tempMin}, true
	case FieldTemperatureMax:
		return FieldValue{Temperature: h.tempMax}, true
	default:
		return FieldValue{}, false
	}
}

// serialField decodes a fixed-length serial-number string field declared
// by a family's Layout (spec §3 Canonical field, FieldString variant).
func serialField(data []byte, layout Layout) (FieldValue, error) {
	if !layout.HasSerial {
		return FieldValue{}, newErr("parser.get_field", KindUnsupported, nil)
	}
	end := layout.SerialOffset + layout.SerialLength
	if end > uint32(len(data)) {
		return FieldValue{}, newErr("parser.get_field", KindDataFormat, nil)
	}
	return FieldValue{String: StringField{
		Description: "serial",
		Value:       HexASCII(data[layout.SerialOffset:end]),
	}}, nil
}

// gasMixField decodes one entry of a fixed-size gas-mix table declared by
// a family's Layout: each entry is (oxygen%, helium%), nitrogen implied.
func gasMixField(data []byte, layout Layout, index int) (FieldValue, error) {
	if layout.GasMixCount == 0 || index < 0 || uint32(index) >= layout.GasMixCount {
		return FieldValue{}, newErr("parser.get_field", KindInvalidArgs, nil)
	}
	off := layout.GasMixOffset + uint32(index)*layout.GasMixSize
	if off+layout.GasMixSize > uint32(len(data)) || off+2 > uint32(len(data)) {
		return FieldValue{}, newErr("parser.get_field", KindDataFormat, nil)
	}
	oxygen := float64(data[off])
	helium := float64(data[off+1])
	return FieldValue{GasMix: GasMix{
		Oxygen:   oxygen,
		Helium:   helium,
		Nitrogen: 100 - oxygen - helium,
	}}, nil
}

// tankField decodes one entry of a fixed-size tank table declared by a
// family's Layout: volume and working pressure as little-endian uint16
// tenths (litres, bar).
func tankField(data []byte, layout Layout, index int) (FieldValue, error) {
	if layout.TankCount == 0 || index < 0 || uint32(index) >= layout.TankCount {
		return FieldValue{}, newErr("parser.get_field", KindInvalidArgs, nil)
	}
	off := layout.TankOffset + uint32(index)*layout.TankSize
	if off+4 > uint32(len(data)) {
		return FieldValue{}, newErr("parser.get_field", KindDataFormat, nil)
	}
	volume := float64(ReadU16LE(data, int(off))) / 10.0
	work := float64(ReadU16LE(data, int(off+2))) / 10.0
	return FieldValue{Tank: Tank{
		GasMix:       TankUnknown,
		Type:         TankVolumeMetric,
		Volume:       volume,
		WorkPressure: work,
	}}, nil
}

// diveModeField decodes a one-byte dive-mode marker declared by a
// family's Layout, translated through decode (family-specific encoding).
func diveModeField(data []byte, layout Layout, decode func(byte) DiveMode) (FieldValue, error) {
	if !layout.HasDiveMode {
		return FieldValue{}, newErr("parser.get_field", KindUnsupported, nil)
	}
	if layout.DiveModeOffset >= uint32(len(data)) {
		return FieldValue{}, newErr("parser.get_field", KindDataFormat, nil)
	}
	return FieldValue{DiveMode: decode(data[layout.DiveModeOffset])}, nil
}

// gasMixTracker emits a SampleGasMix only when the active mix index
// changes, matching spec §4.2.2 step 4.
type gasMixTracker struct {
	current int
	primed  bool
}

func (g *gasMixTracker) sampleIfChanged(t uint32, index int) (Sample, bool) {
	if g.primed && g.current == index {
		return Sample{}, false
	}
	g.current = index
	g.primed = true
	return Sample{Type: SampleGasMix, Time: t, GasMix: index}, true
}
