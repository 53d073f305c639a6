package godc

import "time"

// family_zeagle.go covers the Zeagle N2ition3, length-checksum-framed
// with a 60-slot logbook ring whose profile region is exactly 0x3F20
// bytes (spec §8 scenario 5): when the candidate dives found between the
// latest slot and the fingerprint match would together exceed that
// region, the oldest ones are unreachable (the ring has already
// overwritten them) and must be dropped rather than returned with
// corrupted bytes. HeaderFirstDownload implements that truncation
// generically; this file only supplies Zeagle's opcodes and record shape.

const (
	zeagleOpReadHeader = 0xA1
	zeagleOpReadDive   = 0xA2
)

type ZeagleDevice struct {
	*BaseDevice
	layout Layout
}

func NewZeagleDevice(ctx *Context, transport Transport) *ZeagleDevice {
	layout, _ := LayoutFor(FamilyZeagleN2ition3)
	return &ZeagleDevice{BaseDevice: NewBaseDevice(ctx, FamilyZeagleN2ition3, transport), layout: layout}
}

func (d *ZeagleDevice) transact(opcode byte, params []byte) ([]byte, error) {
	req := BuildLenChecksumRequest(d.layout.Sync, opcode, params)
	return LenChecksumTransaction(d.BaseDevice, req)
}

func (d *ZeagleDevice) Read(addr, length uint32) ([]byte, error) {
	params := make([]byte, 8)
	WriteU32LE(params, 0, addr)
	WriteU32LE(params, 4, length)
	return d.transact(zeagleOpReadDive, params)
}

func (d *ZeagleDevice) Dump(buf *Buffer) error {
	data, err := d.Read(0, d.layout.RBLogbookEnd)
	if err != nil {
		return err
	}
	buf.Clear()
	buf.Append(data)
	return nil
}

func (d *ZeagleDevice) Foreach(cb DiveCallback) error {
	logbook, err := d.transact(zeagleOpReadHeader, nil)
	if err != nil {
		return err
	}
	slots := decodeHeaderSlots(logbook, d.layout.HeaderSize, d.layout.SlotCount, func(rec []byte) (uint32, uint32, uint32, []byte) {
		if len(rec) < 12 {
			return 0, 0, 0, nil
		}
		num := ReadU32BE(rec, 0)
		begin := ReadU32LE(rec, 4)
		length := ReadU32LE(rec, 8)
		fp := rec[d.layout.FingerprintOffset : d.layout.FingerprintOffset+d.layout.FingerprintLength]
		return num, begin, length, fp
	})
	cfg := HeaderFirstConfig{
		Slots:      slots,
		RegionSize: d.layout.RBProfileEnd - d.layout.RBProfileBegin,
		ReadDive: func(slot HeaderSlot) ([]byte, error) {
			params := make([]byte, 8)
			WriteU32LE(params, 0, d.layout.RBProfileBegin+slot.ProfileBegin)
			WriteU32LE(params, 4, slot.ProfileLength)
			return d.transact(zeagleOpReadDive, params)
		},
	}
	return HeaderFirstDownload(d.BaseDevice, cfg, cb)
}

// ZeagleParser decodes the N2ition3 sample stream: 6-byte records of
// depth (cm) and temperature (tenths of a degree F, converted to C).
type ZeagleParser struct {
	headerCache
	data []byte
}

func NewZeagleParser() *ZeagleParser { return &ZeagleParser{} }

func (p *ZeagleParser) Family() Family { return FamilyZeagleN2ition3 }

func (p *ZeagleParser) SetData(data []byte) error {
	p.data = data
	p.reset()
	if len(data) < 32 {
		return newErr("parser.set_data", KindDataFormat, nil)
	}
	p.sampleStart = 32
	p.valid = true
	return nil
}

func (p *ZeagleParser) GetDateTime() (time.Time, error) {
	if !p.valid || len(p.data) < 6 {
		return time.Time{}, newErr("parser.get_datetime", KindInvalidArgs, nil)
	}
	y := int(p.data[0]) + 2000
	mo, day, h, mi := int(p.data[1]), int(p.data[2]), int(p.data[3]), int(p.data[4])
	return time.Date(y, time.Month(mo), day, h, mi, 0, 0, time.UTC), nil
}

func (p *ZeagleParser) GetField(ft FieldType, index int) (FieldValue, error) {
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

func (p *ZeagleParser) computeDerived() {
	computeDerivedFields(&p.headerCache, p.SamplesForeach)
}

func (p *ZeagleParser) SamplesForeach(cb SampleCallback) error {
	if !p.valid {
		return newErr("parser.samples_foreach", KindInvalidArgs, nil)
	}
	const recSize = 6
	return walkFixedRecords(p.data, p.sampleStart, recSize, isAllEqualRecord(0xFF), func(rec []byte, elapsed *uint32) ([]Sample, error) {
		depth := float64(ReadU16LE(rec, 0)) / 100.0
		tempF := float64(int16(ReadU16LE(rec, 2))) / 10.0
		tempC := (tempF - 32) / 1.8
		*elapsed += 15
		return []Sample{
			timeSample(*elapsed),
			{Type: SampleDepth, Time: *elapsed, Depth: depth},
			{Type: SampleTemperature, Time: *elapsed, Temperature: tempC},
		}, nil
	}, cb)
}
