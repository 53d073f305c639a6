package godc

import "time"

// family_atomics.go covers the Atomics Cobalt, a length-checksum-framed
// (spec §4.1.1 #2) device whose profile ring can straddle its own end
// back to its begin mid-dive (spec §8 scenario 2) and whose raw samples
// are stored as absolute pressure in psi*256 rather than depth, requiring
// a salinity-aware conversion at parse time (spec §8 scenario 4).

const (
	atomicsOpReadHeader = 0x61
	atomicsOpReadDive   = 0x62
)

// AtomicsCobaltDevice implements Device for Atomics Cobalt.
type AtomicsCobaltDevice struct {
	*BaseDevice
	layout Layout
}

func NewAtomicsCobaltDevice(ctx *Context, transport Transport) *AtomicsCobaltDevice {
	layout, _ := LayoutFor(FamilyAtomicsCobalt)
	return &AtomicsCobaltDevice{BaseDevice: NewBaseDevice(ctx, FamilyAtomicsCobalt, transport), layout: layout}
}

func (d *AtomicsCobaltDevice) transact(opcode byte, params []byte) ([]byte, error) {
	req := BuildLenChecksumRequest(d.layout.Sync, opcode, params)
	return LenChecksumTransaction(d.BaseDevice, req)
}

func (d *AtomicsCobaltDevice) Read(addr, length uint32) ([]byte, error) {
	params := make([]byte, 8)
	WriteU32LE(params, 0, addr)
	WriteU32LE(params, 4, length)
	return d.transact(atomicsOpReadDive, params)
}

func (d *AtomicsCobaltDevice) Dump(buf *Buffer) error {
	data, err := d.Read(0, d.layout.RBLogbookEnd)
	if err != nil {
		return err
	}
	buf.Clear()
	buf.Append(data)
	return nil
}

// Foreach downloads the whole profile ring in one transaction, then
// extracts dives by walking the ring backward from the device-reported
// end pointer, stitching across the wrap with RBRead (scenario 2: a dive
// whose begin lies after its end in linear address order is still read
// as one contiguous, correctly-ordered byte slice).
func (d *AtomicsCobaltDevice) Foreach(cb DiveCallback) error {
	logbook, err := d.transact(atomicsOpReadHeader, nil)
	if err != nil {
		return err
	}
	if len(logbook) < 4 {
		return newErr("device.foreach", KindDataFormat, nil)
	}
	endPointer := ReadU32LE(logbook, 0)
	if !RBContains(endPointer, d.layout.RBProfileBegin, d.layout.RBProfileEnd) {
		return newErr("device.foreach", KindDataFormat, nil)
	}

	mem, err := d.Read(d.layout.RBProfileBegin, d.layout.RBProfileEnd-d.layout.RBProfileBegin)
	if err != nil {
		return err
	}
	// mem[0] corresponds to RBProfileBegin; rebase the ring onto mem's own
	// indices so RBRead/RBDecrement can operate on it directly.
	begin, end := uint32(0), uint32(len(mem))
	relEnd := RBDistance(d.layout.RBProfileBegin, endPointer, RBEmptyWhenEqual, d.layout.RBProfileBegin, d.layout.RBProfileEnd)

	slots := decodeHeaderSlots(logbook[4:], d.layout.HeaderSize, d.layout.SlotCount, func(rec []byte) (uint32, uint32, uint32, []byte) {
		if len(rec) < 12 {
			return 0, 0, 0, nil
		}
		num := ReadU32BE(rec, 0)
		length := ReadU32LE(rec, 4)
		fp := rec[d.layout.FingerprintOffset : d.layout.FingerprintOffset+d.layout.FingerprintLength]
		return num, 0, length, fp
	})

	pos := relEnd
	type found struct {
		data []byte
		fp   []byte
	}
	var dives []found
	n := len(slots)
	latest := -1
	for i, s := range slots {
		if s.InternalNumber == 0 {
			continue
		}
		if latest == -1 || s.InternalNumber > slots[latest].InternalNumber {
			latest = i
		}
	}
	if latest == -1 {
		return nil
	}
	for i := 0; i < n; i++ {
		idx := ((latest-i)%n + n) % n
		s := slots[idx]
		if s.InternalNumber == 0 {
			break
		}
		if len(d.fingerprint) > 0 && bytesEqual(s.Fingerprint, d.fingerprint) {
			break
		}
		start := RBDecrement(pos, s.ProfileLength, begin, end)
		data := RBRead(mem, start, s.ProfileLength, begin, end)
		dives = append(dives, found{data: data, fp: s.Fingerprint})
		pos = start
	}

	var total uint64
	for _, dv := range dives {
		total += uint64(len(dv.data))
	}
	if d.Context() != nil {
		d.Context().emitProgress(0, total)
	}
	var current uint64
	for _, dv := range dives {
		if err := d.CheckCancelled("device.foreach"); err != nil {
			return err
		}
		current += uint64(len(dv.data))
		if d.Context() != nil {
			d.Context().emitProgress(current, total)
		}
		cont, err := cb(dv.data, dv.fp)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// atomicsPsiToDepth converts an absolute pressure reading in psi*256 to
// depth in metres given a salinity density (spec §8 scenario 4):
// depth = (pressure_bar - atmospheric_bar) * 10 / (density / 1000).
func atomicsPsiToDepth(raw uint16, salinity Salinity, atmosphericBar float64) float64 {
	const psiPerBar = 14.5037738
	bar := float64(raw) / 256.0 / psiPerBar
	density := salinity.Density
	if density == 0 {
		density = 1000
	}
	return (bar - atmosphericBar) * 10.0 / (density / 1000.0)
}

// AtomicsCobaltParser decodes the Cobalt sample stream.
type AtomicsCobaltParser struct {
	headerCache
	layout     Layout
	data       []byte
	salinity   Salinity
	atmosphere float64
}

func NewAtomicsCobaltParser() *AtomicsCobaltParser {
	layout, _ := LayoutFor(FamilyAtomicsCobalt)
	return &AtomicsCobaltParser{layout: layout, salinity: Salinity{Type: WaterSalt, Density: 1025}, atmosphere: 1.0}
}

func (p *AtomicsCobaltParser) Family() Family { return FamilyAtomicsCobalt }

func (p *AtomicsCobaltParser) SetData(data []byte) error {
	p.data = data
	p.reset()
	if len(data) < 32 {
		return newErr("parser.set_data", KindDataFormat, nil)
	}
	p.sampleStart = 32
	p.valid = true
	return nil
}

func (p *AtomicsCobaltParser) GetDateTime() (time.Time, error) {
	if !p.valid {
		return time.Time{}, newErr("parser.get_datetime", KindInvalidArgs, nil)
	}
	y := int(ReadU16LE(p.data, 0))
	mo, day, h, mi, s := int(p.data[2]), int(p.data[3]), int(p.data[4]), int(p.data[5]), int(p.data[6])
	return time.Date(y, time.Month(mo), day, h, mi, s, 0, time.UTC), nil
}

func (p *AtomicsCobaltParser) GetField(ft FieldType, index int) (FieldValue, error) {
	if !p.valid {
		return FieldValue{}, newErr("parser.get_field", KindInvalidArgs, nil)
	}
	switch ft {
	case FieldSalinity:
		return FieldValue{Salinity: p.salinity}, nil
	case FieldAtmospheric:
		return FieldValue{Atmospheric: p.atmosphere}, nil
	case FieldTankCount:
		return FieldValue{TankCount: p.layout.TankCount}, nil
	case FieldTank:
		return p.tankField(index)
	default:
		if !p.derivedValid {
			p.computeDerived()
		}
		switch ft {
		case FieldDiveTime:
			return FieldValue{DiveTime: p.diveTime}, nil
		case FieldMaxDepth:
			return FieldValue{Depth: p.maxDepth}, nil
		case FieldAvgDepth:
			return FieldValue{Depth: p.avgDepth}, nil
		}
		if fv, ok := temperatureField(&p.headerCache, ft); ok {
			return fv, nil
		}
		return FieldValue{}, newErr("parser.get_field", KindUnsupported, nil)
	}
}

// tankField decodes a Cobalt tank entry, whose working pressure is stored
// in psi rather than the bar the shared tankField helper assumes (spec §8
// scenario 4's psi-aware conversion applies here too).
func (p *AtomicsCobaltParser) tankField(index int) (FieldValue, error) {
	if p.layout.TankCount == 0 || index < 0 || uint32(index) >= p.layout.TankCount {
		return FieldValue{}, newErr("parser.get_field", KindInvalidArgs, nil)
	}
	off := p.layout.TankOffset + uint32(index)*p.layout.TankSize
	if off+4 > uint32(len(p.data)) {
		return FieldValue{}, newErr("parser.get_field", KindDataFormat, nil)
	}
	const psiPerBar = 14.5037738
	volume := float64(ReadU16LE(p.data, int(off))) / 100.0
	workPsi := float64(ReadU16LE(p.data, int(off+2)))
	return FieldValue{Tank: Tank{
		GasMix:       TankUnknown,
		Type:         TankVolumeMetric,
		Volume:       volume,
		WorkPressure: workPsi / psiPerBar,
	}}, nil
}

func (p *AtomicsCobaltParser) computeDerived() {
	computeDerivedFields(&p.headerCache, p.SamplesForeach)
}

func (p *AtomicsCobaltParser) SamplesForeach(cb SampleCallback) error {
	if !p.valid {
		return newErr("parser.samples_foreach", KindInvalidArgs, nil)
	}
	const recSize = 8
	return walkFixedRecords(p.data, p.sampleStart, recSize, isAllEqualRecord(0xFF), func(rec []byte, elapsed *uint32) ([]Sample, error) {
		psi := ReadU16LE(rec, 0)
		temp := float64(int16(ReadU16LE(rec, 2))) / 10.0
		depth := atomicsPsiToDepth(psi, p.salinity, p.atmosphere)
		*elapsed += 4
		return []Sample{
			timeSample(*elapsed),
			{Type: SampleDepth, Time: *elapsed, Depth: depth},
			{Type: SampleTemperature, Time: *elapsed, Temperature: temp},
		}, nil
	}, cb)
}
