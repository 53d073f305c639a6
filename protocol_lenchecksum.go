package godc

import "bytes"

// protocol_lenchecksum.go implements the length-checksum-framed discipline
// of spec §4.1.1 #2, used by the Heinrichs Weikamp OSTC/Frog/OSTC3 family
// group: a request starts with a sync byte, opcode, little-endian length,
// opaque parameters and a checksum; the response echoes the command, then
// sends STX, a little-endian response length, the response bytes, a
// checksum, and ETX. Any deviation from that shape is a Protocol error.

const (
	lenChecksumSTX = 0x02
	lenChecksumETX = 0x03
)

// BuildLenChecksumRequest assembles a request frame: sync, opcode,
// little-endian uint16 length of params, params, then an additive
// checksum over everything preceding it.
func BuildLenChecksumRequest(sync, opcode byte, params []byte) []byte {
	buf := make([]byte, 0, 4+len(params)+1)
	buf = append(buf, sync, opcode)
	buf = append(buf, byte(len(params)), byte(len(params)>>8))
	buf = append(buf, params...)
	buf = append(buf, AdditiveChecksum8(buf))
	return buf
}

// LenChecksumTransaction sends request, verifies its echo, then parses
// and checksum-verifies the STX-framed response, returning its payload.
func LenChecksumTransaction(b *BaseDevice, request []byte) ([]byte, error) {
	const op = "protocol.lenchecksum"
	t := b.Transport()

	if err := b.CheckCancelled(op); err != nil {
		return nil, err
	}
	if err := writeFull(t, request); err != nil {
		return nil, err
	}

	echo := make([]byte, len(request))
	if err := readFull(t, echo); err != nil {
		return nil, err
	}
	if !bytes.Equal(echo, request) {
		return nil, newErr(op, KindProtocol, nil)
	}

	if err := b.CheckCancelled(op); err != nil {
		return nil, err
	}

	hdr := make([]byte, 3) // STX + LE u16 length
	if err := readFull(t, hdr); err != nil {
		return nil, err
	}
	if hdr[0] != lenChecksumSTX {
		return nil, newErr(op, KindProtocol, nil)
	}
	respLen := int(ReadU16LE(hdr, 1))

	body := make([]byte, respLen+2) // payload + checksum + ETX
	if err := readFull(t, body); err != nil {
		return nil, err
	}
	data := body[:respLen]
	checksum := body[respLen]
	etx := body[respLen+1]
	if etx != lenChecksumETX {
		return nil, newErr(op, KindProtocol, nil)
	}
	if byte(OnesComplementSum16(data)) != checksum {
		return nil, newErr(op, KindProtocol, nil)
	}

	if err := b.CheckCancelled(op); err != nil {
		return nil, err
	}
	return data, nil
}
