package godc

import "time"

// family_mares.go covers Nemo/Puck/Darwin (echo-framed) and Icon HD
// (length-checksum-framed). The three echo-framed models share one wire
// command set but differ in memory size and ring offsets that firmware
// doesn't report directly; MaresProbeModel issues a harmless identity
// read and inspects a sub-model byte to pick the right Layout; the
// dispatcher calls it before constructing the Device (spec §4.4: model
// detection "may need a live probe, not just the declared family").

const maresCmdVersion = 0xC2

// MaresProbeModel reads the identity block and returns the concrete
// family implied by its sub-model byte, defaulting to the family passed
// in if the probe is inconclusive.
func MaresProbeModel(b *BaseDevice, fallback Family) (Family, error) {
	ident, err := EchoCommand(b, []byte{maresCmdVersion}, 0xAA, false, 4)
	if err != nil {
		return fallback, err
	}
	switch ident[0] {
	case 0x10:
		return FamilyMaresNemo, nil
	case 0x18:
		return FamilyMaresPuck, nil
	case 0x20:
		return FamilyMaresDarwin, nil
	default:
		return fallback, nil
	}
}

type MaresEchoDevice struct {
	*BaseDevice
	layout Layout
}

func NewMaresEchoDevice(ctx *Context, family Family, transport Transport) (*MaresEchoDevice, error) {
	layout, ok := LayoutFor(family)
	if !ok {
		return nil, newErr("device.new_mares_echo", KindInvalidArgs, nil)
	}
	return &MaresEchoDevice{BaseDevice: NewBaseDevice(ctx, family, transport), layout: layout}, nil
}

func (d *MaresEchoDevice) Read(addr, length uint32) ([]byte, error) {
	cmd := make([]byte, 5)
	cmd[0] = 0xE7
	WriteU16LE(cmd, 1, uint16(addr))
	WriteU16LE(cmd, 3, uint16(length))
	return EchoCommand(d.BaseDevice, cmd, d.layout.Ready, false, int(length))
}

func (d *MaresEchoDevice) Dump(buf *Buffer) error {
	data, err := d.Read(0, d.layout.MemSize)
	if err != nil {
		return err
	}
	buf.Clear()
	buf.Append(data)
	return nil
}

func (d *MaresEchoDevice) Foreach(cb DiveCallback) error {
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

// MaresIconHDDevice is the length-checksum-framed, much larger Icon HD.
type MaresIconHDDevice struct {
	*BaseDevice
	layout Layout
}

func NewMaresIconHDDevice(ctx *Context, transport Transport) *MaresIconHDDevice {
	layout, _ := LayoutFor(FamilyMaresIconHD)
	return &MaresIconHDDevice{BaseDevice: NewBaseDevice(ctx, FamilyMaresIconHD, transport), layout: layout}
}

func (d *MaresIconHDDevice) Read(addr, length uint32) ([]byte, error) {
	params := make([]byte, 8)
	WriteU32LE(params, 0, addr)
	WriteU32LE(params, 4, length)
	req := BuildLenChecksumRequest(d.layout.Sync, 0x84, params)
	return LenChecksumTransaction(d.BaseDevice, req)
}

func (d *MaresIconHDDevice) Dump(buf *Buffer) error {
	data, err := d.Read(0, d.layout.MemSize)
	if err != nil {
		return err
	}
	buf.Clear()
	buf.Append(data)
	return nil
}

func (d *MaresIconHDDevice) Foreach(cb DiveCallback) error {
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
			if int(d.layout.FingerprintOffset)+int(d.layout.FingerprintLength) <= len(dive) {
				fp = dive[d.layout.FingerprintOffset : d.layout.FingerprintOffset+d.layout.FingerprintLength]
			}
			return length + 4, fp, true
		},
	}
	return DumpThenExtractDownload(d.BaseDevice, cfg, cb)
}

// MaresParser decodes the sample stream shared by the whole Mares group.
type MaresParser struct {
	headerCache
	family     Family
	layout     Layout
	data       []byte
	recordSize int
}

func NewMaresParser(family Family) *MaresParser {
	recSize := 2
	if family == FamilyMaresIconHD {
		recSize = 8
	}
	layout, _ := LayoutFor(family)
	return &MaresParser{family: family, layout: layout, recordSize: recSize}
}

// maresDiveMode translates the Icon HD header's dive-mode byte.
func maresDiveMode(b byte) DiveMode {
	switch b {
	case 1:
		return DiveModeGauge
	case 2:
		return DiveModeFreedive
	default:
		return DiveModeOC
	}
}

func (p *MaresParser) Family() Family { return p.family }

func (p *MaresParser) SetData(data []byte) error {
	p.data = data
	p.reset()
	if len(data) < 32 {
		return newErr("parser.set_data", KindDataFormat, nil)
	}
	p.sampleStart = 32
	p.valid = true
	return nil
}

func (p *MaresParser) GetDateTime() (time.Time, error) {
	if !p.valid || len(p.data) < 5 {
		return time.Time{}, newErr("parser.get_datetime", KindInvalidArgs, nil)
	}
	y := 2000 + int(p.data[0])
	mo, day, h, mi := int(p.data[1]), int(p.data[2]), int(p.data[3]), int(p.data[4])
	return time.Date(y, time.Month(mo), day, h, mi, 0, 0, time.UTC), nil
}

func (p *MaresParser) GetField(ft FieldType, index int) (FieldValue, error) {
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
	case FieldString:
		return serialField(p.data, p.layout)
	case FieldDiveMode:
		return diveModeField(p.data, p.layout, maresDiveMode)
	default:
		if fv, ok := temperatureField(&p.headerCache, ft); ok {
			return fv, nil
		}
		return FieldValue{}, newErr("parser.get_field", KindUnsupported, nil)
	}
}

func (p *MaresParser) computeDerived() {
	computeDerivedFields(&p.headerCache, p.SamplesForeach)
}

func (p *MaresParser) SamplesForeach(cb SampleCallback) error {
	if !p.valid {
		return newErr("parser.samples_foreach", KindInvalidArgs, nil)
	}
	return walkFixedRecords(p.data, p.sampleStart, p.recordSize, isAllEqualRecord(0xFF), func(rec []byte, elapsed *uint32) ([]Sample, error) {
		depth := float64(ReadU16LE(rec, 0)) / 10.0
		*elapsed += 5
		out := []Sample{timeSample(*elapsed), {Type: SampleDepth, Time: *elapsed, Depth: depth}}
		if len(rec) >= 4 {
			temp := float64(int16(ReadU16LE(rec, 2))) / 10.0
			out = append(out, Sample{Type: SampleTemperature, Time: *elapsed, Temperature: temp})
		}
		return out, nil
	}, cb)
}
