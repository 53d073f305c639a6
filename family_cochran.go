package godc

import "time"

// family_cochran.go covers the Cochran Commander, a dump-then-extract
// device whose dive records embed a proprietary pressure/time table
// rather than the length-trailer convention generic.go assumes; it gets
// its own DiveAt that reads a 2-byte record count from the 6-byte trailer
// at the end of each dive instead (dive length = count*2 + 6).

type CochranDevice struct {
	*BaseDevice
	layout Layout
}

func NewCochranDevice(ctx *Context, transport Transport) *CochranDevice {
	layout, _ := LayoutFor(FamilyCochranCommander)
	return &CochranDevice{BaseDevice: NewBaseDevice(ctx, FamilyCochranCommander, transport), layout: layout}
}

func (d *CochranDevice) Read(addr, length uint32) ([]byte, error) {
	cmd := make([]byte, 9)
	cmd[0] = 0x9A
	WriteU32LE(cmd, 1, addr)
	WriteU32LE(cmd, 5, length)
	return EchoCommand(d.BaseDevice, cmd, 0x5A, false, int(length))
}

func (d *CochranDevice) Dump(buf *Buffer) error {
	data, err := d.Read(0, d.layout.MemSize)
	if err != nil {
		return err
	}
	buf.Clear()
	buf.Append(data)
	return nil
}

func (d *CochranDevice) Foreach(cb DiveCallback) error {
	mem, err := d.Read(d.layout.RBProfileBegin, d.layout.RBProfileEnd-d.layout.RBProfileBegin)
	if err != nil {
		return err
	}
	cfg := DumpThenExtractConfig{
		Mem: mem, ProfileBegin: 0, ProfileEnd: uint32(len(mem)), EndPointer: uint32(len(mem)),
		DiveAt: func(mem []byte, end uint32) (uint32, []byte, bool) {
			if end < 6 {
				return 0, nil, false
			}
			recordCount := ReadU16LE(mem, int(end)-6)
			if recordCount == 0 || recordCount == 0xFFFF {
				return 0, nil, false
			}
			length := uint32(recordCount)*2 + 6
			if length > end {
				return 0, nil, false
			}
			dive := mem[end-length : end]
			var fp []byte
			if int(d.layout.FingerprintOffset)+int(d.layout.FingerprintLength) <= len(dive) {
				fp = dive[d.layout.FingerprintOffset : d.layout.FingerprintOffset+d.layout.FingerprintLength]
			}
			return length, fp, true
		},
	}
	return DumpThenExtractDownload(d.BaseDevice, cfg, cb)
}

// CochranParser decodes the Commander's 2-byte sample stream: each
// little-endian word is a depth in hundredths of a metre.
type CochranParser struct {
	headerCache
	data []byte
}

func NewCochranParser() *CochranParser { return &CochranParser{} }

func (p *CochranParser) Family() Family { return FamilyCochranCommander }

func (p *CochranParser) SetData(data []byte) error {
	p.data = data
	p.reset()
	if len(data) < 6 {
		return newErr("parser.set_data", KindDataFormat, nil)
	}
	p.sampleStart = 0
	p.valid = true
	return nil
}

func (p *CochranParser) GetDateTime() (time.Time, error) {
	return time.Time{}, newErr("parser.get_datetime", KindUnsupported, nil)
}

func (p *CochranParser) GetField(ft FieldType, index int) (FieldValue, error) {
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

func (p *CochranParser) computeDerived() {
	computeDerivedFields(&p.headerCache, p.SamplesForeach)
}

func (p *CochranParser) SamplesForeach(cb SampleCallback) error {
	if !p.valid {
		return newErr("parser.samples_foreach", KindInvalidArgs, nil)
	}
	recordCount := int(ReadU16LE(p.data, len(p.data)-6))
	start := 0
	end := len(p.data) - 6
	if recordCount*2 > end-start {
		recordCount = (end - start) / 2
	}
	var elapsed uint32
	for i := 0; i < recordCount; i++ {
		pos := start + i*2
		psi := ReadU16LE(p.data, pos)
		depth := float64(psi) / 100.0
		elapsed += 4
		if err := cb(timeSample(elapsed)); err != nil {
			return err
		}
		if err := cb(Sample{Type: SampleDepth, Time: elapsed, Depth: depth}); err != nil {
			return err
		}
	}
	return nil
}
