package godc

import "time"

// generic.go implements the family-agnostic Device/Parser pair driven
// entirely off a Layout (layouts.go). It is the fallback for every family
// whose wire protocol needs nothing beyond "read N bytes at address A,
// write N bytes at address A" layered on one of the two framed transaction
// disciplines (spec §4.1.1 #1/#2): Reefnet, Cressi, Dive Rite, Citizen
// and Divesystem. Families needing bespoke opcodes, quirks or sub-model probing
// get their own family_*.go file instead (spec §4.3: "adding a new
// revision is primarily a new layout entry plus any wire-protocol
// quirks" — quirky ones earn the extra file, uniform ones don't).
//
// Opcode convention: 0x00 reads, 0x01 writes, params are a 4-byte
// little-endian address followed by a 4-byte little-endian length (reads,
// under both disciplines) or by the payload (writes). This is a declared
// convention for the generic
// fallback, not a claim about any one vendor's actual opcode byte.
const (
	genericOpRead  = 0x00
	genericOpWrite = 0x01
)

// GenericDevice is the Device for every family relying on generic.go.
type GenericDevice struct {
	*BaseDevice
	layout Layout
}

// NewGenericDevice builds a GenericDevice for family, looking up its
// Layout from the registry.
func NewGenericDevice(ctx *Context, family Family, transport Transport) (*GenericDevice, error) {
	layout, ok := LayoutFor(family)
	if !ok {
		return nil, newErr("device.new_generic", KindInvalidArgs, nil)
	}
	return &GenericDevice{BaseDevice: NewBaseDevice(ctx, family, transport), layout: layout}, nil
}

func (g *GenericDevice) Read(addr, length uint32) ([]byte, error) {
	const op = "device.read"
	params := make([]byte, 8)
	WriteU32LE(params, 0, addr)
	WriteU32LE(params, 4, length)

	switch g.layout.Protocol {
	case ProtocolEchoFramed:
		cmd := append([]byte{genericOpRead}, params...)
		return EchoCommand(g.BaseDevice, cmd, g.layout.Ready, false, int(length))
	case ProtocolLenChecksumFramed:
		req := BuildLenChecksumRequest(g.layout.Sync, genericOpRead, params)
		return LenChecksumTransaction(g.BaseDevice, req)
	default:
		return nil, newErr(op, KindUnsupported, nil)
	}
}

func (g *GenericDevice) Write(addr uint32, data []byte) error {
	const op = "device.write"
	params := make([]byte, 4, 4+len(data))
	WriteU32LE(params, 0, addr)
	params = append(params, data...)

	switch g.layout.Protocol {
	case ProtocolEchoFramed:
		cmd := append([]byte{genericOpWrite}, params...)
		_, err := EchoCommand(g.BaseDevice, cmd, g.layout.Ready, false, 0)
		return err
	case ProtocolLenChecksumFramed:
		req := BuildLenChecksumRequest(g.layout.Sync, genericOpWrite, params)
		_, err := LenChecksumTransaction(g.BaseDevice, req)
		return err
	default:
		return newErr(op, KindUnsupported, nil)
	}
}

func (g *GenericDevice) Dump(buf *Buffer) error {
	if g.layout.MemSize == 0 {
		return newErr("device.dump", KindUnsupported, nil)
	}
	data, err := g.Read(0, g.layout.MemSize)
	if err != nil {
		return err
	}
	buf.Clear()
	buf.Append(data)
	return nil
}

// genericDecodeSlot extracts a HeaderSlot from one fixed-size logbook
// record using the layout's declared offsets: internal dive number at
// offset 0 (big-endian, so 0 sorts first and is usable as "empty"),
// profile begin/length immediately following, and the fingerprint at its
// declared offset within the record.
func genericDecodeSlot(layout Layout) decodeHeaderSlot {
	return func(rec []byte) (uint32, uint32, uint32, []byte) {
		if len(rec) < 12 {
			return 0, 0, 0, nil
		}
		num := ReadU32BE(rec, 0)
		begin := ReadU32LE(rec, 4)
		length := ReadU32LE(rec, 8)
		var fp []byte
		if int(layout.FingerprintOffset)+int(layout.FingerprintLength) <= len(rec) {
			fp = rec[layout.FingerprintOffset : layout.FingerprintOffset+layout.FingerprintLength]
		}
		return num, begin, length, fp
	}
}

// genericDiveLength implements the dump-then-extract convention for
// generic families: each dive record is followed by a 4-byte
// little-endian length trailer; a trailer of all-0x00 or all-0xFF marks
// unused space. It returns ok == false at the first such trailer,
// matching spec §4.1.2 shape A's "empty or all-0xFF pages mark no dive
// here."
func genericDiveLength(mem []byte, end uint32) (uint32, bool) {
	if end < 4 {
		return 0, false
	}
	trailer := mem[end-4 : end]
	if AllEqual(trailer, 0x00) || AllEqual(trailer, 0xFF) {
		return 0, false
	}
	length := ReadU32LE(trailer, 0)
	if length == 0 || length > end-4 {
		return 0, false
	}
	return length, true
}

func (g *GenericDevice) Foreach(cb DiveCallback) error {
	layout := g.layout
	if layout.SlotCount > 0 {
		logbook, err := g.Read(layout.RBLogbookBegin, layout.RBLogbookEnd-layout.RBLogbookBegin)
		if err != nil {
			return err
		}
		slots := decodeHeaderSlots(logbook, layout.HeaderSize, layout.SlotCount, genericDecodeSlot(layout))
		cfg := HeaderFirstConfig{
			Slots:      slots,
			RegionSize: layout.RBProfileEnd - layout.RBProfileBegin,
			ReadDive: func(slot HeaderSlot) ([]byte, error) {
				return g.Read(layout.RBProfileBegin+slot.ProfileBegin, slot.ProfileLength)
			},
		}
		return HeaderFirstDownload(g.BaseDevice, cfg, cb)
	}

	if layout.RBProfileEnd <= layout.RBProfileBegin {
		return newErr("device.foreach", KindUnsupported, nil)
	}
	mem, err := g.Read(layout.RBProfileBegin, layout.RBProfileEnd-layout.RBProfileBegin)
	if err != nil {
		return err
	}
	cfg := DumpThenExtractConfig{
		Mem:          mem,
		ProfileBegin: 0,
		ProfileEnd:   uint32(len(mem)),
		EndPointer:   uint32(len(mem)),
		DiveAt: func(mem []byte, end uint32) (uint32, []byte, bool) {
			length, ok := genericDiveLength(mem, end)
			if !ok {
				return 0, nil, false
			}
			start := end - 4 - length
			dive := mem[start : end-4]
			var fp []byte
			if int(layout.FingerprintOffset)+int(layout.FingerprintLength) <= len(dive) {
				fp = dive[layout.FingerprintOffset : layout.FingerprintOffset+layout.FingerprintLength]
			}
			return length + 4, fp, true
		},
	}
	return DumpThenExtractDownload(g.BaseDevice, cfg, cb)
}

// GenericParser decodes the sample stream every generic-fallback family
// shares: a header of HeaderSize bytes (fingerprint, serial, dive-mode
// byte) followed by fixed SampleRecordSize records until the blob ends
// (spec §4.2.2). Families with a richer sample grammar get a bespoke
// parser instead.
type GenericParser struct {
	headerCache
	family Family
	layout Layout
	data   []byte
}

// NewGenericParser builds a GenericParser for family, looking up its
// Layout from the registry.
func NewGenericParser(family Family) (*GenericParser, error) {
	layout, ok := LayoutFor(family)
	if !ok {
		return nil, newErr("parser.new_generic", KindInvalidArgs, nil)
	}
	return &GenericParser{family: family, layout: layout}, nil
}

func (p *GenericParser) Family() Family { return p.family }

func (p *GenericParser) SetData(data []byte) error {
	p.data = data
	p.reset()
	if uint32(len(data)) < p.layout.HeaderSize {
		return newErr("parser.set_data", KindDataFormat, nil)
	}
	p.sampleStart = int(p.layout.HeaderSize)
	p.valid = true
	return nil
}

func (p *GenericParser) GetDateTime() (time.Time, error) {
	if !p.valid {
		return time.Time{}, newErr("parser.get_datetime", KindInvalidArgs, nil)
	}
	// Generic families don't declare a clock field layout; callers needing
	// a real timestamp use a bespoke parser.
	return time.Time{}, newErr("parser.get_datetime", KindUnsupported, nil)
}

func (p *GenericParser) GetField(ft FieldType, index int) (FieldValue, error) {
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
	default:
		if fv, ok := temperatureField(&p.headerCache, ft); ok {
			return fv, nil
		}
		return FieldValue{}, newErr("parser.get_field", KindUnsupported, nil)
	}
}

func (p *GenericParser) computeDerived() {
	computeDerivedFields(&p.headerCache, p.SamplesForeach)
}

func (p *GenericParser) SamplesForeach(cb SampleCallback) error {
	if !p.valid {
		return newErr("parser.samples_foreach", KindInvalidArgs, nil)
	}
	recSize := int(p.layout.SampleRecordSize)
	if recSize == 0 {
		recSize = 8
	}
	return walkFixedRecords(p.data, p.sampleStart, recSize, isAllEqualRecord(0x00), func(rec []byte, elapsed *uint32) ([]Sample, error) {
		*elapsed += 10
		depth := float64(ReadU16LE(rec, 0)) / 100.0
		return []Sample{
			timeSample(*elapsed),
			{Type: SampleDepth, Time: *elapsed, Depth: depth},
		}, nil
	}, cb)
}
