package godc

import "time"

// family_hw_ostc.go covers the Heinrichs Weikamp OSTC/Frog/OSTC3 group,
// all length-checksum-framed (spec §4.1.1 #2). OSTC3 additionally exposes
// a firmware-update subsystem gated by an explicit state machine (spec
// §4.1.3, §5): Open -> Download or Service, Service -> Download, but
// never Download -> Service directly.

const (
	hwOpReadHeader = 0x10
	hwOpReadDive   = 0x11
	hwOpIdent      = 0x12
	hwOpUpgrade    = 0x20
)

// HWServiceState enumerates the OSTC3 session states (spec §4.1.3).
type HWServiceState int

const (
	HWStateOpen HWServiceState = iota
	HWStateDownload
	HWStateService
	HWStateRebooting
)

// HWOSTCDevice implements Device for all three HW families. Frog and
// OSTC3 share the 256-slot x 256-byte header-ring layout: Foreach starts at
// the slot holding the highest internal number and walks the ring backward,
// emitting every non-empty slot newest-first until an empty slot or the
// fingerprint match.
type HWOSTCDevice struct {
	*BaseDevice
	layout Layout
	state  HWServiceState
}

// NewHWOSTCDevice builds the Device for one of the three HW families.
func NewHWOSTCDevice(ctx *Context, family Family, transport Transport) (*HWOSTCDevice, error) {
	layout, ok := LayoutFor(family)
	if !ok {
		return nil, newErr("device.new_hw_ostc", KindInvalidArgs, nil)
	}
	return &HWOSTCDevice{BaseDevice: NewBaseDevice(ctx, family, transport), layout: layout, state: HWStateOpen}, nil
}

func (d *HWOSTCDevice) transact(opcode byte, params []byte) ([]byte, error) {
	req := BuildLenChecksumRequest(d.layout.Sync, opcode, params)
	return LenChecksumTransaction(d.BaseDevice, req)
}

func (d *HWOSTCDevice) Read(addr, length uint32) ([]byte, error) {
	params := make([]byte, 8)
	WriteU32LE(params, 0, addr)
	WriteU32LE(params, 4, length)
	return d.transact(hwOpReadDive, params)
}

func (d *HWOSTCDevice) Dump(buf *Buffer) error {
	if d.layout.RBProfileEnd == 0 {
		return newErr("device.dump", KindUnsupported, nil)
	}
	data, err := d.Read(0, d.layout.RBProfileEnd)
	if err != nil {
		return err
	}
	buf.Clear()
	buf.Append(data)
	return nil
}

// Foreach implements the header-first download shared by Frog and OSTC3
// (scenario 1); the original OSTC (no logbook ring) falls back to a flat
// profile-ring read via the same length-checksum transaction.
func (d *HWOSTCDevice) Foreach(cb DiveCallback) error {
	if d.layout.SlotCount == 0 {
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

	logbook, err := d.transact(hwOpReadHeader, nil)
	if err != nil {
		return err
	}
	slots := decodeHeaderSlots(logbook, d.layout.HeaderSize, d.layout.SlotCount, func(rec []byte) (uint32, uint32, uint32, []byte) {
		if len(rec) < 16 {
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
			return d.transact(hwOpReadDive, params)
		},
	}
	return HeaderFirstDownload(d.BaseDevice, cfg, cb)
}

// EnterService transitions Open -> Service; Download -> Service is
// rejected since a profile session must be explicitly closed first (spec
// §4.1.3 state machine).
func (d *HWOSTCDevice) EnterService() error {
	if d.state == HWStateDownload || d.state == HWStateRebooting {
		return newErr("device.enter_service", KindInvalidArgs, nil)
	}
	d.state = HWStateService
	return nil
}

// EnterDownload transitions Open or Service -> Download.
func (d *HWOSTCDevice) EnterDownload() error {
	if d.state == HWStateRebooting {
		return newErr("device.enter_download", KindInvalidArgs, nil)
	}
	d.state = HWStateDownload
	return nil
}

// UpgradeFirmware decrypts image with key and transmits it via the
// upgrade opcode, valid only in HWStateService. It reboots the device on
// success, matching the OSTC3 bootloader's documented handshake.
func (d *HWOSTCDevice) UpgradeFirmware(key [16]byte, image []byte) error {
	const op = "device.upgrade_firmware"
	if d.state != HWStateService {
		return newErr(op, KindInvalidArgs, nil)
	}
	plain, err := DecryptFirmware(key, image)
	if err != nil {
		return err
	}
	if Fletcher16(plain) == 0 {
		return newErr(op, KindDataFormat, nil)
	}
	if _, err := d.transact(hwOpUpgrade, plain); err != nil {
		return err
	}
	d.state = HWStateRebooting
	return nil
}

// HWOSTCParser decodes the common OSTC sample grammar: 3-byte records of a
// status byte and a little-endian depth in hundredths of a metre; a set top
// bit in the status byte adds a bookmark event. The records carry no
// temperature.
type HWOSTCParser struct {
	headerCache
	family Family
	layout Layout
	data   []byte
}

func NewHWOSTCParser(family Family) (*HWOSTCParser, error) {
	layout, ok := LayoutFor(family)
	if !ok {
		return nil, newErr("parser.new_hw_ostc", KindInvalidArgs, nil)
	}
	return &HWOSTCParser{family: family, layout: layout}, nil
}

func (p *HWOSTCParser) Family() Family { return p.family }

func (p *HWOSTCParser) SetData(data []byte) error {
	p.data = data
	p.reset()
	if uint32(len(data)) < p.layout.HeaderSize {
		return newErr("parser.set_data", KindDataFormat, nil)
	}
	p.sampleStart = int(p.layout.HeaderSize)
	p.valid = true
	return nil
}

func (p *HWOSTCParser) GetDateTime() (time.Time, error) {
	if !p.valid || len(p.data) < 6 {
		return time.Time{}, newErr("parser.get_datetime", KindInvalidArgs, nil)
	}
	y, mo, day := int(p.data[0])+2000, int(p.data[1]), int(p.data[2])
	h, mi, s := int(p.data[3]), int(p.data[4]), int(p.data[5])
	return time.Date(y, time.Month(mo), day, h, mi, s, 0, time.UTC), nil
}

// hwDiveMode translates the OSTC3 header's dive-mode byte.
func hwDiveMode(b byte) DiveMode {
	switch b {
	case 1:
		return DiveModeGauge
	case 2:
		return DiveModeCC
	case 3:
		return DiveModeFreedive
	default:
		return DiveModeOC
	}
}

func (p *HWOSTCParser) GetField(ft FieldType, index int) (FieldValue, error) {
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
	case FieldGasMixCount:
		return FieldValue{GasMixCount: p.layout.GasMixCount}, nil
	case FieldGasMix:
		return gasMixField(p.data, p.layout, index)
	case FieldTankCount:
		return FieldValue{TankCount: p.layout.TankCount}, nil
	case FieldTank:
		return tankField(p.data, p.layout, index)
	case FieldDiveMode:
		return diveModeField(p.data, p.layout, hwDiveMode)
	case FieldString:
		return serialField(p.data, p.layout)
	default:
		if fv, ok := temperatureField(&p.headerCache, ft); ok {
			return fv, nil
		}
		return FieldValue{}, newErr("parser.get_field", KindUnsupported, nil)
	}
}

func (p *HWOSTCParser) computeDerived() {
	computeDerivedFields(&p.headerCache, p.SamplesForeach)
}

func (p *HWOSTCParser) SamplesForeach(cb SampleCallback) error {
	if !p.valid {
		return newErr("parser.samples_foreach", KindInvalidArgs, nil)
	}
	const recSize = 3
	return walkFixedRecords(p.data, p.sampleStart, recSize, isAllEqualRecord(0x00), func(rec []byte, elapsed *uint32) ([]Sample, error) {
		status := rec[0]
		depth := float64(ReadU16LE(rec, 1)) / 100.0
		*elapsed += 10
		samples := []Sample{timeSample(*elapsed), {Type: SampleDepth, Time: *elapsed, Depth: depth}}
		if status&0x80 != 0 {
			samples = append(samples, Sample{Type: SampleEvent, Time: *elapsed, Event: EventSample{Type: EventBookmark, TimeOffset: *elapsed}})
		}
		return samples, nil
	}, cb)
}
