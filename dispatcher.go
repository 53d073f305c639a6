package godc

// dispatcher.go is the single entry point for building a Device/Parser
// pair from a family tag (spec §4.4). Most families are driven entirely
// off their Layout via generic.go; families with a bespoke wire protocol
// or a parsing quirk get their own constructor. Two quirks are resolved
// here rather than in any family file, exactly because they cross family
// boundaries and only make sense at dispatch time (spec §4.4): the
// Oceanic Atom2 model 0x4354 ("React Pro White") is wired electrically
// like an Atom2 but its profile format actually matches VEO250, and the
// Suunto Vyper model 0x01 is a rebadged EON.

const (
	oceanicAtom2ReactProWhiteModel = 0x4354
	suuntoVyperEONModel            = 0x01
)

// BuildDevice constructs the Device for family talking over transport.
// model, when known (0 if not), resolves the cross-family dispatch
// quirks before any Layout lookup happens.
func BuildDevice(ctx *Context, family Family, model uint32, transport Transport) (Device, error) {
	switch family {
	case FamilyOceanicAtom2:
		if model == oceanicAtom2ReactProWhiteModel {
			return NewOceanicDevice(ctx, FamilyOceanicVEO250, transport)
		}
		return NewOceanicDevice(ctx, FamilyOceanicAtom2, transport)
	case FamilyOceanicVTPro, FamilyOceanicVEO250:
		return NewOceanicDevice(ctx, family, transport)

	case FamilySuuntoVyper:
		if model == suuntoVyperEONModel {
			return NewSuuntoEchoDevice(ctx, FamilySuuntoEON, transport)
		}
		return NewSuuntoEchoDevice(ctx, family, transport)
	case FamilySuuntoEON, FamilySuuntoVyper2, FamilySuuntoD9:
		return NewSuuntoEchoDevice(ctx, family, transport)
	case FamilySuuntoSolution:
		return NewSuuntoSolutionDevice(ctx, transport), nil
	case FamilySuuntoEONSteel:
		return NewSuuntoEONSteelDevice(ctx, transport), nil

	case FamilyUwatecAladin:
		return NewUwatecAladinDevice(ctx, transport), nil
	case FamilyUwatecMemoMouse, FamilyUwatecMeridian:
		return NewUwatecRingDevice(ctx, family, transport)
	case FamilyUwatecSmart:
		return NewUwatecSmartDevice(ctx, transport), nil

	case FamilyHWOSTC, FamilyHWFrog, FamilyHWOSTC3:
		return NewHWOSTCDevice(ctx, family, transport)

	case FamilyAtomicsCobalt:
		return NewAtomicsCobaltDevice(ctx, transport), nil

	case FamilyZeagleN2ition3:
		return NewZeagleDevice(ctx, transport), nil

	case FamilyMaresNemo, FamilyMaresPuck, FamilyMaresDarwin:
		resolved := family
		if model == 0 {
			if probed, err := MaresProbeModel(NewBaseDevice(ctx, family, transport), family); err == nil {
				resolved = probed
			}
		}
		if resolved != family {
			logMaresLayoutGap(ctx, family, resolved)
		}
		return NewMaresEchoDevice(ctx, resolved, transport)
	case FamilyMaresIconHD:
		return NewMaresIconHDDevice(ctx, transport), nil

	case FamilyShearwaterPredator, FamilyShearwaterPetrel:
		return NewShearwaterDevice(ctx, family, transport)

	case FamilyCochranCommander:
		return NewCochranDevice(ctx, transport), nil

	case FamilyReefnetSensus, FamilyReefnetSensusPro, FamilyReefnetSensusUltra,
		FamilyCressiEdy, FamilyCressiLeonardo,
		FamilyDiveriteNitekQ, FamilyCitizenAqualand, FamilyDivesystemIDive:
		return NewGenericDevice(ctx, family, transport)

	default:
		return nil, newErr("dispatcher.build_device", KindUnsupported, nil)
	}
}

// maresLayoutFields names the optional Layout fields MaresProbeModel's
// result can affect, for comparison via LayoutFieldGap.
func maresLayoutFields(layout Layout) []string {
	var fields []string
	if layout.HasSerial {
		fields = append(fields, "Serial")
	}
	if layout.HasDiveMode {
		fields = append(fields, "DiveMode")
	}
	if layout.MemSize > 0 {
		fields = append(fields, "MemSize")
	}
	return fields
}

// logMaresLayoutGap warns when a live model probe resolves to a Layout
// declaring fewer optional fields than the fallback family would have
// used, matching spec §4.4's note that model detection "may need a live
// probe, not just the declared family" — a probe that silently narrows
// the declared fields is worth surfacing rather than trusting blind.
func logMaresLayoutGap(ctx *Context, fallback, resolved Family) {
	fallbackLayout, ok1 := LayoutFor(fallback)
	resolvedLayout, ok2 := LayoutFor(resolved)
	if !ok1 || !ok2 || ctx == nil {
		return
	}
	if gap := LayoutFieldGap(maresLayoutFields(fallbackLayout), maresLayoutFields(resolvedLayout)); len(gap) > 0 {
		ctx.Log(SeverityWarning).Strs("missing", gap).Msg("probed Mares layout declares fewer fields than the fallback")
	}
}

// BuildParser constructs the Parser for family. model plays the same
// dispatch-quirk role as in BuildDevice.
func BuildParser(family Family, model uint32) (Parser, error) {
	switch family {
	case FamilyOceanicAtom2:
		if model == oceanicAtom2ReactProWhiteModel {
			return NewOceanicParser(FamilyOceanicVEO250), nil
		}
		return NewOceanicParser(FamilyOceanicAtom2), nil
	case FamilyOceanicVTPro, FamilyOceanicVEO250:
		return NewOceanicParser(family), nil

	case FamilySuuntoVyper:
		if model == suuntoVyperEONModel {
			return NewSuuntoParser(FamilySuuntoEON), nil
		}
		return NewSuuntoParser(family), nil
	case FamilySuuntoD9:
		return NewSuuntoD9Parser(), nil
	case FamilySuuntoEON, FamilySuuntoVyper2, FamilySuuntoSolution, FamilySuuntoEONSteel:
		return NewSuuntoParser(family), nil

	case FamilyUwatecAladin, FamilyUwatecMemoMouse, FamilyUwatecSmart, FamilyUwatecMeridian:
		return NewUwatecParser(family), nil

	case FamilyHWOSTC, FamilyHWFrog, FamilyHWOSTC3:
		return NewHWOSTCParser(family)

	case FamilyAtomicsCobalt:
		return NewAtomicsCobaltParser(), nil

	case FamilyZeagleN2ition3:
		return NewZeagleParser(), nil

	case FamilyMaresNemo, FamilyMaresPuck, FamilyMaresDarwin, FamilyMaresIconHD:
		return NewMaresParser(family), nil

	case FamilyShearwaterPredator, FamilyShearwaterPetrel:
		return NewShearwaterParser(family), nil

	case FamilyCochranCommander:
		return NewCochranParser(), nil

	case FamilyReefnetSensus, FamilyReefnetSensusPro, FamilyReefnetSensusUltra,
		FamilyCressiEdy, FamilyCressiLeonardo,
		FamilyDiveriteNitekQ, FamilyCitizenAqualand, FamilyDivesystemIDive:
		return NewGenericParser(family)

	default:
		return nil, newErr("dispatcher.build_parser", KindUnsupported, nil)
	}
}
