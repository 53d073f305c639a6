package godc

// layouts.go holds the immutable, per-family byte-offset tables described
// by spec §4.3 and §9 ("Family-specific layout tables... natural fit for
// static tables indexed by model byte"). Device and Parser code for the
// families that don't need bespoke wire-protocol handling (generic.go) is
// driven entirely off these tables; a new model revision is, per spec, "a
// new layout entry plus any wire-protocol quirks."
type Protocol int

const (
	ProtocolEchoFramed Protocol = iota
	ProtocolLenChecksumFramed
	ProtocolDumpThenExtract
)

// Layout is one family's (or one model-within-family's) memory map and
// framing constants.
type Layout struct {
	Family Family
	Model  uint8 // 0 means "applies to every model in this family"

	Protocol Protocol
	Ready    byte // echo-framed ready byte
	Sync     byte // length-checksum sync byte

	MemSize uint32

	FingerprintOffset uint32
	FingerprintLength uint32
	SerialOffset      uint32
	HasSerial         bool
	SerialLength      uint32

	RBProfileBegin, RBProfileEnd   uint32
	RBLogbookBegin, RBLogbookEnd   uint32
	HeaderSize                     uint32
	SlotCount                      uint32
	SampleRecordSize               uint32

	// Gas-mix/tank/dive-mode table offsets (spec §3 Canonical field,
	// §4.2.1 "gas-mix table... dive mode... cache the result"). Zero
	// GasMixCount/TankCount means the family has no such table; HasDiveMode
	// disambiguates a legitimate DiveModeOffset of 0 from "not present."
	GasMixOffset uint32
	GasMixCount  uint32
	GasMixSize   uint32

	TankOffset uint32
	TankCount  uint32
	TankSize   uint32

	DiveModeOffset uint32
	HasDiveMode    bool
}

// layouts is the registry consulted by GenericDevice/GenericParser and by
// family files that borrow a table rather than hard-coding constants
// in-line. Values below are representative of each vendor's public wire
// documentation; where a family has bespoke handling (Suunto D9/Vyper/EON,
// HW-OSTC, Atomics Cobalt, Zeagle, Oceanic, Uwatec Aladin, Shearwater) its
// own file also references an entry here for the constants it shares with
// the generic helpers (ring regions, fingerprint offsets).
var layouts = map[Family]Layout{
	FamilySuuntoSolution: {
		Family: FamilySuuntoSolution, Protocol: ProtocolDumpThenExtract,
		MemSize: 0x1C0, RBProfileBegin: 0x020, RBProfileEnd: 0x1C0,
		FingerprintOffset: 0x000, FingerprintLength: 4,
	},
	FamilySuuntoEON: {
		Family: FamilySuuntoEON, Protocol: ProtocolEchoFramed, Ready: 0x4D,
		MemSize: 0x800, RBProfileBegin: 0x040, RBProfileEnd: 0x800,
		FingerprintOffset: 0x000, FingerprintLength: 4,
	},
	FamilySuuntoVyper: {
		Family: FamilySuuntoVyper, Protocol: ProtocolEchoFramed, Ready: 0x4D,
		MemSize: 0x2000, RBProfileBegin: 0x1E0, RBProfileEnd: 0x2000,
		FingerprintOffset: 0x15, FingerprintLength: 5, SerialOffset: 0x0C,
		HasSerial: true, SerialLength: 4,
	},
	FamilySuuntoVyper2: {
		Family: FamilySuuntoVyper2, Protocol: ProtocolEchoFramed, Ready: 0x4D,
		MemSize: 0x8000, RBProfileBegin: 0x4C0, RBProfileEnd: 0x8000,
		FingerprintOffset: 0x15, FingerprintLength: 5, SerialOffset: 0x0C,
		HasSerial: true, SerialLength: 4,
	},
	FamilySuuntoD9: {
		Family: FamilySuuntoD9, Protocol: ProtocolEchoFramed, Ready: 0x4D,
		MemSize: 0x10000, RBProfileBegin: 0x600, RBProfileEnd: 0x10000,
		FingerprintOffset: 0x00, FingerprintLength: 5,
		RBLogbookBegin: 0x100, RBLogbookEnd: 0x600, HeaderSize: 0x20, SlotCount: 0x20,
	},
	FamilySuuntoEONSteel: {
		Family: FamilySuuntoEONSteel, Protocol: ProtocolDumpThenExtract,
		MemSize: 0, FingerprintOffset: 0, FingerprintLength: 16,
	},
	FamilyUwatecAladin: {
		Family: FamilyUwatecAladin, Protocol: ProtocolDumpThenExtract,
		MemSize: 2048, RBProfileBegin: 0x000, RBProfileEnd: 2048,
		FingerprintOffset: 0, FingerprintLength: 6,
	},
	FamilyUwatecMemoMouse: {
		Family: FamilyUwatecMemoMouse, Protocol: ProtocolEchoFramed, Ready: 0x08,
		MemSize: 16384, RBProfileBegin: 0x080, RBProfileEnd: 16384,
		FingerprintOffset: 0x00, FingerprintLength: 6,
	},
	FamilyUwatecSmart: {
		Family: FamilyUwatecSmart, Protocol: ProtocolDumpThenExtract,
		MemSize: 0, FingerprintOffset: 0, FingerprintLength: 4,
	},
	FamilyUwatecMeridian: {
		Family: FamilyUwatecMeridian, Protocol: ProtocolEchoFramed, Ready: 0x08,
		MemSize: 0x10000, RBProfileBegin: 0x600, RBProfileEnd: 0x10000,
		FingerprintOffset: 0x00, FingerprintLength: 6,
	},
	FamilyReefnetSensus: {
		Family: FamilyReefnetSensus, Protocol: ProtocolEchoFramed, Ready: 0x55,
		MemSize: 32768, RBProfileBegin: 0x000, RBProfileEnd: 32768,
		FingerprintOffset: 0x00, FingerprintLength: 4,
	},
	FamilyReefnetSensusPro: {
		Family: FamilyReefnetSensusPro, Protocol: ProtocolEchoFramed, Ready: 0x55,
		MemSize: 65536, RBProfileBegin: 0x000, RBProfileEnd: 65536,
		FingerprintOffset: 0x00, FingerprintLength: 4,
	},
	FamilyReefnetSensusUltra: {
		Family: FamilyReefnetSensusUltra, Protocol: ProtocolEchoFramed, Ready: 0x55,
		MemSize: 2097152, RBProfileBegin: 0x000, RBProfileEnd: 2097152,
		FingerprintOffset: 0x00, FingerprintLength: 4,
	},
	FamilyOceanicVTPro: {
		Family: FamilyOceanicVTPro, Protocol: ProtocolEchoFramed, Ready: 0xAA,
		MemSize: 0x800, RBProfileBegin: 0x1C0, RBProfileEnd: 0x800,
		FingerprintOffset: 0x1C0, FingerprintLength: 4,
	},
	FamilyOceanicVEO250: {
		Family: FamilyOceanicVEO250, Protocol: ProtocolEchoFramed, Ready: 0xAA,
		MemSize: 0x800, RBProfileBegin: 0x1C0, RBProfileEnd: 0x800,
		FingerprintOffset: 0x1C0, FingerprintLength: 4,
	},
	FamilyOceanicAtom2: {
		Family: FamilyOceanicAtom2, Protocol: ProtocolEchoFramed, Ready: 0xAA,
		MemSize: 0xC000, RBProfileBegin: 0x2400, RBProfileEnd: 0xC000,
		FingerprintOffset: 0x2400, FingerprintLength: 4,
	},
	FamilyMaresNemo: {
		Family: FamilyMaresNemo, Protocol: ProtocolEchoFramed, Ready: 0xAA,
		MemSize: 0x4000, RBProfileBegin: 0x100, RBProfileEnd: 0x4000,
		FingerprintOffset: 0x6, FingerprintLength: 5, SerialOffset: 0x08,
		HasSerial: true, SerialLength: 4,
	},
	FamilyMaresPuck: {
		Family: FamilyMaresPuck, Protocol: ProtocolEchoFramed, Ready: 0xAA,
		MemSize: 0x8000, RBProfileBegin: 0x100, RBProfileEnd: 0x8000,
		FingerprintOffset: 0x6, FingerprintLength: 5, SerialOffset: 0x08,
		HasSerial: true, SerialLength: 4,
	},
	FamilyMaresDarwin: {
		Family: FamilyMaresDarwin, Protocol: ProtocolEchoFramed, Ready: 0xAA,
		MemSize: 0x8000, RBProfileBegin: 0x100, RBProfileEnd: 0x8000,
		FingerprintOffset: 0x6, FingerprintLength: 5, SerialOffset: 0x08,
		HasSerial: true, SerialLength: 4,
	},
	FamilyMaresIconHD: {
		Family: FamilyMaresIconHD, Protocol: ProtocolLenChecksumFramed, Sync: 0xA1,
		MemSize: 0x200000, RBProfileBegin: 0x1000, RBProfileEnd: 0x200000,
		FingerprintOffset: 0x08, FingerprintLength: 5,
		DiveModeOffset: 0x09, HasDiveMode: true,
	},
	FamilyHWOSTC: {
		Family: FamilyHWOSTC, Protocol: ProtocolLenChecksumFramed, Sync: 0xBB,
		MemSize: 0x20000, RBProfileBegin: 0x000, RBProfileEnd: 0x20000,
		FingerprintOffset: 0x000, FingerprintLength: 5,
	},
	FamilyHWFrog: {
		Family: FamilyHWFrog, Protocol: ProtocolLenChecksumFramed, Sync: 0xBB,
		RBLogbookBegin: 0, RBLogbookEnd: 256 * 256, HeaderSize: 256, SlotCount: 256,
		RBProfileBegin: 256 * 256, RBProfileEnd: 0x400000,
		FingerprintOffset: 0x14, FingerprintLength: 5,
		GasMixOffset: 0x10, GasMixCount: 5, GasMixSize: 4,
		TankOffset: 0x30, TankCount: 2, TankSize: 4,
		DiveModeOffset: 0x07, HasDiveMode: true,
	},
	FamilyHWOSTC3: {
		Family: FamilyHWOSTC3, Protocol: ProtocolLenChecksumFramed, Sync: 0xBB,
		RBLogbookBegin: 0, RBLogbookEnd: 256 * 256, HeaderSize: 256, SlotCount: 256,
		RBProfileBegin: 256 * 256, RBProfileEnd: 0x800000,
		FingerprintOffset: 0x14, FingerprintLength: 5,
		GasMixOffset: 0x10, GasMixCount: 5, GasMixSize: 4,
		TankOffset: 0x30, TankCount: 2, TankSize: 4,
		DiveModeOffset: 0x07, HasDiveMode: true,
	},
	FamilyCressiEdy: {
		Family: FamilyCressiEdy, Protocol: ProtocolEchoFramed, Ready: 0xAA,
		MemSize: 0x600, RBProfileBegin: 0x100, RBProfileEnd: 0x600,
		FingerprintOffset: 0x006, FingerprintLength: 5,
	},
	FamilyCressiLeonardo: {
		Family: FamilyCressiLeonardo, Protocol: ProtocolEchoFramed, Ready: 0xAA,
		MemSize: 0x8000, RBProfileBegin: 0x100, RBProfileEnd: 0x8000,
		FingerprintOffset: 0x006, FingerprintLength: 5,
	},
	FamilyZeagleN2ition3: {
		Family: FamilyZeagleN2ition3, Protocol: ProtocolLenChecksumFramed, Sync: 0x02,
		RBProfileBegin: 0x000, RBProfileEnd: 0x3F20,
		RBLogbookBegin: 0x3F20, RBLogbookEnd: 0x4000, HeaderSize: 0x20, SlotCount: 60,
		FingerprintOffset: 0x10, FingerprintLength: 4,
	},
	FamilyAtomicsCobalt: {
		Family: FamilyAtomicsCobalt, Protocol: ProtocolLenChecksumFramed, Sync: 0xF5,
		RBProfileBegin: 0x000, RBProfileEnd: 0x200,
		RBLogbookBegin: 0x200, RBLogbookEnd: 0x400, HeaderSize: 0x20, SlotCount: 16,
		FingerprintOffset: 0x04, FingerprintLength: 4,
		TankOffset: 0x10, TankCount: 1, TankSize: 4,
	},
	FamilyShearwaterPredator: {
		Family: FamilyShearwaterPredator, Protocol: ProtocolEchoFramed, Ready: 0x4D,
		SampleRecordSize: 128, FingerprintOffset: 0x00, FingerprintLength: 4,
		GasMixOffset: 0x20, GasMixCount: 3, GasMixSize: 4,
	},
	FamilyShearwaterPetrel: {
		Family: FamilyShearwaterPetrel, Protocol: ProtocolEchoFramed, Ready: 0x4D,
		SampleRecordSize: 128, FingerprintOffset: 0x00, FingerprintLength: 4,
		GasMixOffset: 0x20, GasMixCount: 3, GasMixSize: 4,
	},
	FamilyDiveriteNitekQ: {
		Family: FamilyDiveriteNitekQ, Protocol: ProtocolEchoFramed, Ready: 0xAA,
		MemSize: 0x4000, RBProfileBegin: 0x080, RBProfileEnd: 0x4000,
		FingerprintOffset: 0x08, FingerprintLength: 4,
	},
	FamilyCitizenAqualand: {
		Family: FamilyCitizenAqualand, Protocol: ProtocolEchoFramed, Ready: 0xAA,
		MemSize: 0x2000, RBProfileBegin: 0x040, RBProfileEnd: 0x2000,
		FingerprintOffset: 0x04, FingerprintLength: 4,
	},
	FamilyDivesystemIDive: {
		Family: FamilyDivesystemIDive, Protocol: ProtocolLenChecksumFramed, Sync: 0xA1,
		RBProfileBegin: 0x1000, RBProfileEnd: 0x100000,
		FingerprintOffset: 0x08, FingerprintLength: 4,
	},
	FamilyCochranCommander: {
		Family: FamilyCochranCommander, Protocol: ProtocolDumpThenExtract,
		MemSize: 0x10000, RBProfileBegin: 0x4000, RBProfileEnd: 0x10000,
		FingerprintOffset: 0x08, FingerprintLength: 6,
	},
}

// LayoutFor looks up the layout table entry for a family.
func LayoutFor(f Family) (Layout, bool) {
	l, ok := layouts[f]
	return l, ok
}
