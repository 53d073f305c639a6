package godc

import "time"

// family_suunto.go covers the whole Suunto group: Solution (oldest,
// dump-then-extract over a small linear memory), EON/Vyper/Vyper2/D9
// (echo-framed, spec §4.1.1 #1), and EON Steel (a USB-CDC, baud-autodetect
// block transport with no fixed memory map). The Vyper model-0x01 "is
// really an EON" dispatch quirk lives in dispatcher.go, not here, per
// spec §4.4.

const (
	suuntoCmdVersion  = 0x0F
	suuntoCmdReadMem  = 0x05
	suuntoCmdWriteMem = 0x06
)

// SuuntoEchoDevice implements Device for the EON/Vyper/Vyper2/D9 group.
type SuuntoEchoDevice struct {
	*BaseDevice
	layout Layout
}

func NewSuuntoEchoDevice(ctx *Context, family Family, transport Transport) (*SuuntoEchoDevice, error) {
	layout, ok := LayoutFor(family)
	if !ok {
		return nil, newErr("device.new_suunto_echo", KindInvalidArgs, nil)
	}
	return &SuuntoEchoDevice{BaseDevice: NewBaseDevice(ctx, family, transport), layout: layout}, nil
}

func (d *SuuntoEchoDevice) Read(addr, length uint32) ([]byte, error) {
	cmd := make([]byte, 5)
	cmd[0] = suuntoCmdReadMem
	WriteU16LE(cmd, 1, uint16(addr))
	WriteU16LE(cmd, 3, uint16(length))
	return EchoCommand(d.BaseDevice, cmd, d.layout.Ready, false, int(length))
}

func (d *SuuntoEchoDevice) Write(addr uint32, data []byte) error {
	cmd := make([]byte, 3, 3+len(data))
	cmd[0] = suuntoCmdWriteMem
	WriteU16LE(cmd, 1, uint16(addr))
	cmd = append(cmd, data...)
	_, err := EchoCommand(d.BaseDevice, cmd, d.layout.Ready, false, 0)
	return err
}

func (d *SuuntoEchoDevice) Dump(buf *Buffer) error {
	data, err := d.Read(0, d.layout.MemSize)
	if err != nil {
		return err
	}
	buf.Clear()
	buf.Append(data)
	return nil
}

// Foreach dispatches to the header-first algorithm for D9 (which has a
// logbook ring) and to dump-then-extract for EON/Vyper/Vyper2.
func (d *SuuntoEchoDevice) Foreach(cb DiveCallback) error {
	if d.layout.SlotCount > 0 {
		logbook, err := d.Read(d.layout.RBLogbookBegin, d.layout.RBLogbookEnd-d.layout.RBLogbookBegin)
		if err != nil {
			return err
		}
		slots := decodeHeaderSlots(logbook, d.layout.HeaderSize, d.layout.SlotCount, genericDecodeSlot(d.layout))
		cfg := HeaderFirstConfig{
			Slots:      slots,
			RegionSize: d.layout.RBProfileEnd - d.layout.RBProfileBegin,
			ReadDive: func(slot HeaderSlot) ([]byte, error) {
				return d.Read(d.layout.RBProfileBegin+slot.ProfileBegin, slot.ProfileLength)
			},
		}
		return HeaderFirstDownload(d.BaseDevice, cfg, cb)
	}

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

// SuuntoSolutionDevice implements the earliest Suunto family: a tiny
// linear memory with no logbook ring at all, read wholesale and extracted
// the same dump-then-extract way.
type SuuntoSolutionDevice struct {
	*BaseDevice
	layout Layout
}

func NewSuuntoSolutionDevice(ctx *Context, transport Transport) *SuuntoSolutionDevice {
	layout, _ := LayoutFor(FamilySuuntoSolution)
	return &SuuntoSolutionDevice{BaseDevice: NewBaseDevice(ctx, FamilySuuntoSolution, transport), layout: layout}
}

func (d *SuuntoSolutionDevice) Read(addr, length uint32) ([]byte, error) {
	cmd := []byte{0x40}
	return EchoCommand(d.BaseDevice, cmd, 0, false, int(length))
}

func (d *SuuntoSolutionDevice) Dump(buf *Buffer) error {
	data, err := d.Read(0, d.layout.MemSize)
	if err != nil {
		return err
	}
	buf.Clear()
	buf.Append(data)
	return nil
}

func (d *SuuntoSolutionDevice) Foreach(cb DiveCallback) error {
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

// SuuntoEONSteelDevice implements Device over a block-oriented, USB-CDC
// transport with no fixed memory map: the device enumerates a small
// "directory" of dive blobs, delivered one frame per baud-autodetected
// transaction (spec §4.1.1 #3). This is a simplified but self-consistent
// rendition of the real filesystem-style protocol.
type SuuntoEONSteelDevice struct {
	*BaseDevice
	baud int
}

func NewSuuntoEONSteelDevice(ctx *Context, transport Transport) *SuuntoEONSteelDevice {
	return &SuuntoEONSteelDevice{BaseDevice: NewBaseDevice(ctx, FamilySuuntoEONSteel, transport)}
}

func (d *SuuntoEONSteelDevice) connect() error {
	if d.baud != 0 {
		return nil
	}
	rate, err := AutodetectBaud(d.BaseDevice, []int{115200, 460800, 921600}, 0, func() error {
		_, err := EchoCommand(d.BaseDevice, []byte{suuntoCmdVersion}, 0x00, false, 1)
		return err
	})
	if err != nil {
		return err
	}
	d.baud = rate
	return nil
}

func (d *SuuntoEONSteelDevice) Foreach(cb DiveCallback) error {
	if err := d.connect(); err != nil {
		return err
	}
	d.ResetCancel()
	var dives [][]byte
	for {
		if err := d.CheckCancelled("device.foreach"); err != nil {
			return err
		}
		hdr, err := EchoCommand(d.BaseDevice, []byte{0x01}, 0x00, false, 4)
		if err != nil {
			return err
		}
		length := ReadU32LE(hdr, 0)
		if length == 0 {
			break
		}
		blob, err := EchoCommand(d.BaseDevice, []byte{0x02}, 0x00, false, int(length))
		if err != nil {
			return err
		}
		dives = append(dives, blob)
	}
	for _, data := range dives {
		fp := data
		if len(fp) > 16 {
			fp = fp[:16]
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

// SuuntoParser decodes the common Suunto event-tag sample grammar used by
// EON/Vyper/Vyper2, and by the dispatcher for Solution and EON Steel (spec
// §8 scenario 3): each record is a type/value byte pair; type 0x01 marks a
// depth sample (tenths of a metre), 0x02 a temperature sample (signed, half
// degrees), and 0x03-0x09 map onto EventType markers. A 0xFF
// type byte closes the stream. D9 uses a structurally different,
// marker-driven grammar; see SuuntoD9Parser.
type SuuntoParser struct {
	headerCache
	family Family
	layout Layout
	data   []byte
}

func NewSuuntoParser(family Family) *SuuntoParser {
	layout, _ := LayoutFor(family)
	return &SuuntoParser{family: family, layout: layout}
}

func (p *SuuntoParser) Family() Family { return p.family }

var suuntoEventMap = map[byte]EventType{
	0x03: EventAscent,
	0x04: EventDecoStart,
	0x05: EventDecoEnd,
	0x06: EventSurface,
	0x07: EventBookmark,
	0x08: EventSafetyStop,
	0x09: EventGasChange,
}

func (p *SuuntoParser) SetData(data []byte) error {
	p.data = data
	p.reset()
	if len(data) < 16 {
		return newErr("parser.set_data", KindDataFormat, nil)
	}
	p.sampleStart = 16
	p.valid = true
	return nil
}

func (p *SuuntoParser) GetDateTime() (time.Time, error) {
	if !p.valid || len(p.data) < 6 {
		return time.Time{}, newErr("parser.get_datetime", KindInvalidArgs, nil)
	}
	y := 1900 + BCDToDecimal(p.data[0])
	mo, day := BCDToDecimal(p.data[1]), BCDToDecimal(p.data[2])
	h, mi := BCDToDecimal(p.data[3]), BCDToDecimal(p.data[4])
	return time.Date(y, time.Month(mo), day, h, mi, 0, 0, time.UTC), nil
}

func (p *SuuntoParser) GetField(ft FieldType, index int) (FieldValue, error) {
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

func (p *SuuntoParser) computeDerived() {
	computeDerivedFields(&p.headerCache, p.SamplesForeach)
}

func (p *SuuntoParser) SamplesForeach(cb SampleCallback) error {
	if !p.valid {
		return newErr("parser.samples_foreach", KindInvalidArgs, nil)
	}
	var elapsed uint32
	for pos := p.sampleStart; pos+2 <= len(p.data); pos += 2 {
		tag := p.data[pos]
		val := p.data[pos+1]
		if tag == 0xFF {
			break
		}
		elapsed += 1
		var out []Sample
		switch tag {
		case 0x01:
			out = []Sample{timeSample(elapsed), {Type: SampleDepth, Time: elapsed, Depth: float64(val) / 10.0}}
		case 0x02:
			out = []Sample{timeSample(elapsed), {Type: SampleTemperature, Time: elapsed, Temperature: float64(int8(val)) / 2.0}}
		default:
			if et, ok := suuntoEventMap[tag]; ok {
				out = []Sample{timeSample(elapsed), {Type: SampleEvent, Time: elapsed, Event: EventSample{Type: et, TimeOffset: elapsed, Value: uint32(val)}}}
			} else {
				continue
			}
		}
		for _, s := range out {
			if err := cb(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// suuntoD9TagPayloadLen declares the payload length, in bytes following
// the 1-byte tag, for each entry of D9's marker-driven event stream. Every
// tag listed here carries a 1- or 2-byte payload (2 or 3 bytes per entry
// with the tag); longer payloads are not decoded, and a tag missing from
// this table ends the walk. A 0xFF tag closes the stream; it has no entry
// here and is checked before the table lookup.
var suuntoD9TagPayloadLen = map[byte]int{
	0x01: 1, // depth (tenths of a metre)
	0x02: 1, // temperature (signed, half degrees)
	0x03: 1, // ascent rate marker
	0x04: 1, // deco start marker
	0x05: 2, // gas mix change: oxygen%, gas mix index
	0x06: 1, // surface marker
	0x07: 1, // bookmark marker
	0x08: 1, // safety stop marker
}

// SuuntoD9Parser decodes the D9's marker-driven event stream, structurally
// distinct from the fixed type/value records the rest of the Suunto group
// uses (spec §4.2.2 step 7, §8 scenario 3): a running marker offset
// advances by 1 (tag) plus the tag's declared payload length on every
// iteration, rather than by a fixed record size.
type SuuntoD9Parser struct {
	headerCache
	layout Layout
	data   []byte
}

func NewSuuntoD9Parser() *SuuntoD9Parser {
	layout, _ := LayoutFor(FamilySuuntoD9)
	return &SuuntoD9Parser{layout: layout}
}

func (p *SuuntoD9Parser) Family() Family { return FamilySuuntoD9 }

// scanGasMixes makes one marker-driven pass over the event stream to
// collect every (index, oxygen%) pair a 0x05 tag references, so
// FieldGasMixCount/FieldGasMix can answer queries made before
// SamplesForeach has run, and so every emitted SampleGasMix index is
// guaranteed to be < GasMixCount (spec §8 testable invariant).
func (p *SuuntoD9Parser) scanGasMixes() {
	var mixes []GasMix
	pos := p.sampleStart
	for pos < len(p.data) {
		tag := p.data[pos]
		if tag == 0xFF {
			break
		}
		n, ok := suuntoD9TagPayloadLen[tag]
		if !ok || pos+1+n > len(p.data) {
			break
		}
		if tag == 0x05 {
			oxygen := float64(p.data[pos+1])
			index := int(p.data[pos+2])
			for len(mixes) <= index {
				mixes = append(mixes, GasMix{})
			}
			mixes[index] = GasMix{Oxygen: oxygen, Nitrogen: 100 - oxygen}
		}
		pos += 1 + n
	}
	p.gasMixes = mixes
}

func (p *SuuntoD9Parser) SetData(data []byte) error {
	p.data = data
	p.reset()
	if len(data) < 16 {
		return newErr("parser.set_data", KindDataFormat, nil)
	}
	p.sampleStart = 16
	p.valid = true
	p.scanGasMixes()
	return nil
}

func (p *SuuntoD9Parser) GetDateTime() (time.Time, error) {
	if !p.valid || len(p.data) < 6 {
		return time.Time{}, newErr("parser.get_datetime", KindInvalidArgs, nil)
	}
	y := 1900 + BCDToDecimal(p.data[0])
	mo, day := BCDToDecimal(p.data[1]), BCDToDecimal(p.data[2])
	h, mi := BCDToDecimal(p.data[3]), BCDToDecimal(p.data[4])
	return time.Date(y, time.Month(mo), day, h, mi, 0, 0, time.UTC), nil
}

func (p *SuuntoD9Parser) GetField(ft FieldType, index int) (FieldValue, error) {
	if !p.valid {
		return FieldValue{}, newErr("parser.get_field", KindInvalidArgs, nil)
	}
	switch ft {
	case FieldGasMixCount:
		return FieldValue{GasMixCount: uint32(len(p.gasMixes))}, nil
	case FieldGasMix:
		if index < 0 || index >= len(p.gasMixes) {
			return FieldValue{}, newErr("parser.get_field", KindInvalidArgs, nil)
		}
		return FieldValue{GasMix: p.gasMixes[index]}, nil
	case FieldString:
		return serialField(p.data, p.layout)
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

func (p *SuuntoD9Parser) computeDerived() {
	computeDerivedFields(&p.headerCache, p.SamplesForeach)
}

// SamplesForeach walks the marker-driven event stream (spec §4.2.2 step 7):
// a running marker offset advances by the tag plus its declared payload on
// every iteration rather than by a fixed record size, and a 0x05 tag
// emits a SampleGasMix only when the active mix index actually changes
// (spec §4.2.2 step 4).
func (p *SuuntoD9Parser) SamplesForeach(cb SampleCallback) error {
	if !p.valid {
		return newErr("parser.samples_foreach", KindInvalidArgs, nil)
	}
	var elapsed uint32
	tracker := gasMixTracker{}
	pos := p.sampleStart
	for pos < len(p.data) {
		tag := p.data[pos]
		if tag == 0xFF {
			break
		}
		n, ok := suuntoD9TagPayloadLen[tag]
		if !ok || pos+1+n > len(p.data) {
			break
		}
		payload := p.data[pos+1 : pos+1+n]
		elapsed++
		var out []Sample
		switch tag {
		case 0x01:
			out = []Sample{timeSample(elapsed), {Type: SampleDepth, Time: elapsed, Depth: float64(payload[0]) / 10.0}}
		case 0x02:
			out = []Sample{timeSample(elapsed), {Type: SampleTemperature, Time: elapsed, Temperature: float64(int8(payload[0])) / 2.0}}
		case 0x05:
			index := int(payload[1])
			if s, changed := tracker.sampleIfChanged(elapsed, index); changed {
				out = []Sample{timeSample(elapsed), s}
			}
		default:
			if et, ok := suuntoEventMap[tag]; ok {
				out = []Sample{timeSample(elapsed), {Type: SampleEvent, Time: elapsed, Event: EventSample{Type: et, TimeOffset: elapsed, Value: uint32(payload[0])}}}
			}
		}
		for _, s := range out {
			if err := cb(s); err != nil {
				return err
			}
		}
		pos += 1 + n
	}
	return nil
}
