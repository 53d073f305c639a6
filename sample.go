package godc

// SampleType tags the variant carried by a Sample (spec §3).
type SampleType int

const (
	SampleTime SampleType = iota
	SampleDepth
	SamplePressure
	SampleTemperature
	SampleEvent
	SampleRBT
	SampleHeartbeat
	SampleBearing
	SampleVendor
	SampleSetpoint
	SamplePPO2
	SampleCNS
	SampleDeco
	SampleGasMix
)

// EventType enumerates the kinds of thing a SampleEvent can carry.
// Families map their own wire-level event codes onto this set.
type EventType int

const (
	EventNone EventType = iota
	EventDecoStart
	EventDecoEnd
	EventAscent
	EventCeiling
	EventWorkload
	EventTransmitterFailure
	EventViolation
	EventBookmark
	EventSurface
	EventSafetyStop
	EventGasChange
	EventSafetyStopVoluntary
	EventSafetyStopMandatory
	EventDeepStop
	EventCeilingSafetyStop
	EventFloor
	EventDiveTime
	EventMaxDepth
	EventOLF
	EventPO2
	EventAirTime
	EventRGBM
	EventHeading
	EventTissueLevel
	EventGasChange2
)

// DecoKind enumerates the four decompression states a DecoSample may report
// (spec §3 Canonical sample, deco variant).
type DecoKind int

const (
	DecoNDL DecoKind = iota
	DecoSafetyStop
	DecoDecoStop
	DecoDeepStop
)

// PressureSample carries tank-indexed pressure telemetry.
type PressureSample struct {
	Tank int
	Bar  float64
}

// EventSample carries a single telemetry event, with begin/end disambiguated
// where the wire format has distinct start/stop tokens (spec §4.2.2 step 6).
type EventSample struct {
	Type       EventType
	TimeOffset uint32
	Flags      uint32
	Value      uint32
}

// DecoSample carries the decompression-status telemetry for one instant.
type DecoSample struct {
	Kind  DecoKind
	Time  uint32 // seconds, meaning depends on Kind (NDL remaining, stop remaining)
	Depth float64
}

// VendorSample borrows raw, family-specific bytes straight out of the
// parser's blob (spec §3, §9 design note: "Canonical samples borrow from
// the blob; the blob's lifetime must cover the whole samples_foreach
// invocation"). Consumers needing a longer-lived copy should use
// SamplesForeachCopy(p, cb) instead of Parser.SamplesForeach.
type VendorSample struct {
	Type int
	Data []byte
}

// Sample is the tagged variant emitted by Parser.SamplesForeach, one field
// populated per Type (spec §3 Canonical sample).
type Sample struct {
	Type SampleType

	Time        uint32 // seconds from dive start
	Depth       float64
	Pressure    PressureSample
	Temperature float64
	Event       EventSample
	RBT         int
	Heartbeat   int
	Bearing     int
	Vendor      VendorSample
	Setpoint    float64
	PPO2        float64
	CNS         float64
	Deco        DecoSample
	GasMix      int
}

// SampleCallback receives samples in non-decreasing Time order per dive
// (spec §3 invariant); exactly one SampleTime sample precedes each
// sub-second group of same-Time samples. Returning an error aborts the
// remaining stream and is propagated out of SamplesForeach.
type SampleCallback func(Sample) error
