package godc

import "time"

// family_shearwater.go covers Predator and Petrel, both echo-framed with
// fixed 128-byte sample blocks and no flat memory map (downloads are
// requested dive-by-dive from a log index). Oxygen-sensor (PPO2 cell)
// calibration values are stored with a documented firmware off-by-1024
// bias; spec §9 Open Question directs that this be preserved verbatim
// rather than "corrected," since correcting it would silently disagree
// with the vendor's own desktop software on every existing log.

const (
	shearwaterCmdLogCount = 0xC0
	shearwaterCmdLogRead  = 0xC1
)

type ShearwaterDevice struct {
	*BaseDevice
	layout Layout
}

func NewShearwaterDevice(ctx *Context, family Family, transport Transport) (*ShearwaterDevice, error) {
	layout, ok := LayoutFor(family)
	if !ok {
		return nil, newErr("device.new_shearwater", KindInvalidArgs, nil)
	}
	return &ShearwaterDevice{BaseDevice: NewBaseDevice(ctx, family, transport), layout: layout}, nil
}

func (d *ShearwaterDevice) Foreach(cb DiveCallback) error {
	d.ResetCancel()
	count, err := EchoCommand(d.BaseDevice, []byte{shearwaterCmdLogCount}, d.layout.Ready, false, 2)
	if err != nil {
		return err
	}
	n := int(ReadU16LE(count, 0))

	var dives [][]byte
	for i := n - 1; i >= 0; i-- {
		if err := d.CheckCancelled("device.foreach"); err != nil {
			return err
		}
		cmd := make([]byte, 3)
		cmd[0] = shearwaterCmdLogRead
		WriteU16LE(cmd, 1, uint16(i))
		hdr, err := EchoCommand(d.BaseDevice, cmd, d.layout.Ready, false, 4)
		if err != nil {
			return err
		}
		length := ReadU32LE(hdr, 0)
		blob, err := EchoCommand(d.BaseDevice, nil, d.layout.Ready, false, int(length))
		if err != nil {
			return err
		}
		dives = append(dives, blob)
	}

	for _, data := range dives {
		fp := data
		if int(d.layout.FingerprintLength) <= len(fp) {
			fp = fp[:d.layout.FingerprintLength]
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

// ShearwaterParser decodes the 128-byte-record sample stream shared by
// Predator and Petrel.
type ShearwaterParser struct {
	headerCache
	family Family
	layout Layout
	data   []byte
}

func NewShearwaterParser(family Family) *ShearwaterParser {
	layout, _ := LayoutFor(family)
	return &ShearwaterParser{family: family, layout: layout}
}

func (p *ShearwaterParser) Family() Family { return p.family }

func (p *ShearwaterParser) SetData(data []byte) error {
	p.data = data
	p.reset()
	if len(data) < 128 {
		return newErr("parser.set_data", KindDataFormat, nil)
	}
	p.sampleStart = 128
	p.valid = true
	return nil
}

func (p *ShearwaterParser) GetDateTime() (time.Time, error) {
	if !p.valid || len(p.data) < 7 {
		return time.Time{}, newErr("parser.get_datetime", KindInvalidArgs, nil)
	}
	y := int(ReadU16LE(p.data, 0))
	mo, day, h, mi := int(p.data[2]), int(p.data[3]), int(p.data[4]), int(p.data[5])
	return time.Date(y, time.Month(mo), day, h, mi, 0, 0, time.UTC), nil
}

func (p *ShearwaterParser) GetField(ft FieldType, index int) (FieldValue, error) {
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
	default:
		if fv, ok := temperatureField(&p.headerCache, ft); ok {
			return fv, nil
		}
		return FieldValue{}, newErr("parser.get_field", KindUnsupported, nil)
	}
}

func (p *ShearwaterParser) computeDerived() {
	computeDerivedFields(&p.headerCache, p.SamplesForeach)
}

// shearwaterSensorCalValue applies the documented firmware bias verbatim:
// raw calibration values are transmitted 1024 low.
func shearwaterSensorCalValue(raw int16) int {
	return int(raw) + 1024
}

func (p *ShearwaterParser) SamplesForeach(cb SampleCallback) error {
	if !p.valid {
		return newErr("parser.samples_foreach", KindInvalidArgs, nil)
	}
	const recSize = 128
	return walkFixedRecords(p.data, p.sampleStart, recSize, isAllEqualRecord(0x00), func(rec []byte, elapsed *uint32) ([]Sample, error) {
		depth := float64(ReadU16LE(rec, 0)) / 100.0
		ppo2Cell1 := shearwaterSensorCalValue(int16(ReadU16LE(rec, 2)))
		*elapsed += 10
		return []Sample{
			timeSample(*elapsed),
			{Type: SampleDepth, Time: *elapsed, Depth: depth},
			{Type: SamplePPO2, Time: *elapsed, PPO2: float64(ppo2Cell1) / 1000.0},
		}, nil
	}, cb)
}
