package godc

// protocol_baud.go implements the baud-autodetect discipline of spec
// §4.1.1 #3, used by families whose transport speed is not known until a
// device responds (e.g. Suunto EON Steel over a USB-CDC bridge that can
// come up at more than one rate): cycle a small baud list, attempting a
// harmless probe command at each, and take the first one that succeeds.

// AutodetectBaud tries each rate in bauds in order, reconfiguring the
// transport and invoking probe; it returns the first baud at which probe
// succeeds. hint, if non-zero and present in bauds, is tried first (spec:
// "optionally hinted by a known model byte").
func AutodetectBaud(b *BaseDevice, bauds []int, hint int, probe func() error) (int, error) {
	const op = "protocol.baud_autodetect"

	ordered := make([]int, 0, len(bauds))
	if hint != 0 {
		for _, rate := range bauds {
			if rate == hint {
				ordered = append(ordered, rate)
			}
		}
	}
	for _, rate := range bauds {
		if rate != hint {
			ordered = append(ordered, rate)
		}
	}

	for _, rate := range ordered {
		if err := b.CheckCancelled(op); err != nil {
			return 0, err
		}
		if err := b.Transport().Configure(rate, 8, ParityNone, StopBits1, FlowNone); err != nil {
			continue
		}
		if err := probe(); err == nil {
			return rate, nil
		}
	}
	return 0, newErr(op, KindIO, nil)
}
