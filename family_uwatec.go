package godc

import "time"

// family_uwatec.go covers the whole Uwatec group. Aladin transmits its
// entire memory dump bit-reversed within each byte (spec §4.1.3);
// MemoMouse and Meridian are ordinary echo-framed ring devices; Smart is
// an IrDA/Bluetooth device that hands over complete, already-segmented
// dive blobs rather than exposing a flat memory map, so it shares the
// EON Steel-style blob download shape instead of HeaderFirstDownload.

// UwatecAladinDevice implements Device for the Aladin, whose dump comes
// back bit-reversed and must be corrected before any parsing.
type UwatecAladinDevice struct {
	*BaseDevice
	layout Layout
}

func NewUwatecAladinDevice(ctx *Context, transport Transport) *UwatecAladinDevice {
	layout, _ := LayoutFor(FamilyUwatecAladin)
	return &UwatecAladinDevice{BaseDevice: NewBaseDevice(ctx, FamilyUwatecAladin, transport), layout: layout}
}

func (d *UwatecAladinDevice) Dump(buf *Buffer) error {
	const op = "device.dump"
	if err := d.CheckCancelled(op); err != nil {
		return err
	}
	raw := make([]byte, d.layout.MemSize)
	if err := readFull(d.Transport(), raw); err != nil {
		return err
	}
	ReverseBits(raw)
	buf.Clear()
	buf.Append(raw)
	return nil
}

func (d *UwatecAladinDevice) Foreach(cb DiveCallback) error {
	buf := NewBuffer(int(d.layout.MemSize))
	if err := d.Dump(buf); err != nil {
		return err
	}
	mem := buf.Get()
	cfg := DumpThenExtractConfig{
		Mem: mem, ProfileBegin: 0, ProfileEnd: uint32(len(mem)), EndPointer: uint32(len(mem)),
		DiveAt: func(mem []byte, end uint32) (uint32, []byte, bool) {
			length, ok := genericDiveLength(mem, end)
			if !ok {
				return 0, nil, false
			}
			dive := mem[end-4-length : end-4]
			var fp []byte
			if int(d.layout.FingerprintLength) <= len(dive) {
				fp = dive[:d.layout.FingerprintLength]
			}
			return length + 4, fp, true
		},
	}
	return DumpThenExtractDownload(d.BaseDevice, cfg, cb)
}

// UwatecRingDevice implements Device for MemoMouse and Meridian, both
// echo-framed dump-then-extract families.
type UwatecRingDevice struct {
	*BaseDevice
	layout Layout
}

func NewUwatecRingDevice(ctx *Context, family Family, transport Transport) (*UwatecRingDevice, error) {
	layout, ok := LayoutFor(family)
	if !ok {
		return nil, newErr("device.new_uwatec_ring", KindInvalidArgs, nil)
	}
	return &UwatecRingDevice{BaseDevice: NewBaseDevice(ctx, family, transport), layout: layout}, nil
}

func (d *UwatecRingDevice) Read(addr, length uint32) ([]byte, error) {
	cmd := make([]byte, 5)
	cmd[0] = 0x07
	WriteU32LE(cmd, 1, addr)
	return EchoCommand(d.BaseDevice, cmd, d.layout.Ready, false, int(length))
}

func (d *UwatecRingDevice) Dump(buf *Buffer) error {
	data, err := d.Read(0, d.layout.MemSize)
	if err != nil {
		return err
	}
	buf.Clear()
	buf.Append(data)
	return nil
}

func (d *UwatecRingDevice) Foreach(cb DiveCallback) error {
	mem, err := d.Read(d.layout.RBProfileBegin, d.layout.RBProfileEnd-d.layout.RBProfileBegin)
	if err != nil {
		return err
	}
	cfg := DumpThenExtractConfig{
		Mem: mem, ProfileBegin: 0, ProfileEnd: uint32(len(mem)), EndPointer: uint32(len(mem)),
		DiveAt: func(mem []byte, end uint32) (uint32, []byte, bool) {
			length, ok := genericDiveLength(mem, end)
			if !ok {
				return 0, nil, false
			}
			dive := mem[end-4-length : end-4]
			var fp []byte
			if int(d.layout.FingerprintLength) <= len(dive) {
				fp = dive[:d.layout.FingerprintLength]
			}
			return length + 4, fp, true
		},
	}
	return DumpThenExtractDownload(d.BaseDevice, cfg, cb)
}

// UwatecSmartDevice implements Device for the Smart, a blob-handoff
// device sharing EON Steel's download shape (no flat memory map).
type UwatecSmartDevice struct {
	*BaseDevice
}

func NewUwatecSmartDevice(ctx *Context, transport Transport) *UwatecSmartDevice {
	return &UwatecSmartDevice{BaseDevice: NewBaseDevice(ctx, FamilyUwatecSmart, transport)}
}

func (d *UwatecSmartDevice) Foreach(cb DiveCallback) error {
	d.ResetCancel()
	var dives [][]byte
	for {
		if err := d.CheckCancelled("device.foreach"); err != nil {
			return err
		}
		hdr, err := EchoCommand(d.BaseDevice, []byte{0xC2}, 0x00, false, 4)
		if err != nil {
			return err
		}
		length := ReadU32LE(hdr, 0)
		if length == 0 {
			break
		}
		blob, err := EchoCommand(d.BaseDevice, []byte{0xC4}, 0x00, false, int(length))
		if err != nil {
			return err
		}
		dives = append(dives, blob)
	}
	for _, data := range dives {
		fp := data
		if len(fp) > 4 {
			fp = fp[:4]
		}
		if len(d.fingerprint) > 0 && bytesEqual(fp, d.fingerprint) {
			break
		}
		cont, err := cb(data, fp)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// UwatecParser decodes the common Uwatec sample grammar shared across
// Aladin/MemoMouse/Smart/Meridian: 2-byte depth/temperature interleave
// records, BCD timestamp header.
type UwatecParser struct {
	headerCache
	family Family
	data   []byte
}

func NewUwatecParser(family Family) *UwatecParser { return &UwatecParser{family: family} }

func (p *UwatecParser) Family() Family { return p.family }

func (p *UwatecParser) SetData(data []byte) error {
	p.data = data
	p.reset()
	if len(data) < 12 {
		return newErr("parser.set_data", KindDataFormat, nil)
	}
	p.sampleStart = 12
	p.valid = true
	return nil
}

func (p *UwatecParser) GetDateTime() (time.Time, error) {
	if !p.valid || len(p.data) < 6 {
		return time.Time{}, newErr("parser.get_datetime", KindInvalidArgs, nil)
	}
	mo, day, y := BCDToDecimal(p.data[0]), BCDToDecimal(p.data[1]), 2000+BCDToDecimal(p.data[2])
	h, mi := BCDToDecimal(p.data[3]), BCDToDecimal(p.data[4])
	return time.Date(y, time.Month(mo), day, h, mi, 0, 0, time.UTC), nil
}

func (p *UwatecParser) GetField(ft FieldType, index int) (FieldValue, error) {
	if !p.valid {
		return FieldValue{}, newErr("parser.get_field", KindInvalidArgs, nil)
	}
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
	default:
		if fv, ok := temperatureField(&p.headerCache, ft); ok {
			return fv, nil
		}
		return FieldValue{}, newErr("parser.get_field", KindUnsupported, nil)
	}
}

func (p *UwatecParser) computeDerived() {
	computeDerivedFields(&p.headerCache, p.SamplesForeach)
}

func (p *UwatecParser) SamplesForeach(cb SampleCallback) error {
	if !p.valid {
		return newErr("parser.samples_foreach", KindInvalidArgs, nil)
	}
	const recSize = 4
	return walkFixedRecords(p.data, p.sampleStart, recSize, isAllEqualRecord(0x00), func(rec []byte, elapsed *uint32) ([]Sample, error) {
		depth := float64(ReadU16LE(rec, 0)) / 100.0
		temp := float64(int16(ReadU16LE(rec, 2))) / 10.0
		*elapsed += 4
		return []Sample{
			timeSample(*elapsed),
			{Type: SampleDepth, Time: *elapsed, Depth: depth},
			{Type: SampleTemperature, Time: *elapsed, Temperature: temp},
		}, nil
	}, cb)
}
