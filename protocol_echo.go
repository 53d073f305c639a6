package godc

import "bytes"

// protocol_echo.go implements the echo-framed discipline of spec §4.1.1
// #1, used by the Suunto Vyper/Vyper2/EON/D9 family group and by Mares'
// older command set: write N bytes of command, read N bytes of echo and
// memcmp-verify, then read a single status/ready byte (a family-defined
// constant such as the Suunto layouts' 0x4D) unless the command is an "exit"
// terminator. Payload I/O, when present, is sandwiched between the echo
// and the ready byte.
//
// Every turn consults the device's cancellation flag first (spec
// §4.1.1: "before every turn they consult the device's cancellation
// flag").

// EchoCommand performs one echo-framed protocol turn and returns any
// payload bytes read between the echoed command and the ready byte.
// readLen == 0 means no payload is expected. exit == true means the
// command is a terminator that is not acknowledged with a ready byte
// (e.g. an "exit session" command).
func EchoCommand(b *BaseDevice, cmd []byte, ready byte, exit bool, readLen int) ([]byte, error) {
	const op = "protocol.echo"
	t := b.Transport()

	if err := b.CheckCancelled(op); err != nil {
		return nil, err
	}
	if err := writeFull(t, cmd); err != nil {
		return nil, err
	}

	echo := make([]byte, len(cmd))
	if err := readFull(t, echo); err != nil {
		return nil, err
	}
	if !bytes.Equal(echo, cmd) {
		return nil, newErr(op, KindProtocol, nil)
	}

	if err := b.CheckCancelled(op); err != nil {
		return nil, err
	}

	var payload []byte
	if readLen > 0 {
		payload = make([]byte, readLen)
		if err := readFull(t, payload); err != nil {
			return nil, err
		}
	}

	if !exit {
		readyBuf := make([]byte, 1)
		if err := readFull(t, readyBuf); err != nil {
			return nil, err
		}
		if readyBuf[0] != ready {
			return nil, newErr(op, KindProtocol, nil)
		}
	}

	if err := b.CheckCancelled(op); err != nil {
		return nil, err
	}
	return payload, nil
}
