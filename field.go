package godc

// FieldType addresses a canonical dive-level field, paired with an index
// for the variants that are arrays (spec §3 Canonical field).
type FieldType int

const (
	FieldDiveTime FieldType = iota
	FieldMaxDepth
	FieldAvgDepth
	FieldGasMixCount
	FieldGasMix
	FieldSalinity
	FieldAtmospheric
	FieldTemperatureSurface
	FieldTemperatureMin
	FieldTemperatureMax
	FieldTankCount
	FieldTank
	FieldDiveMode
	FieldString
)

// WaterType distinguishes fresh from salt water for the Salinity field.
type WaterType int

const (
	WaterFresh WaterType = iota
	WaterSalt
)

// Salinity carries the water type plus its density (kg/m^3), feeding the
// depth-from-pressure conversion used by families that store pressure
// rather than depth directly (spec §4.2.2 step 5).
type Salinity struct {
	Type    WaterType
	Density float64
}

// GasMix carries one entry of a dive's gas-mix table (spec §3).
type GasMix struct {
	Helium  float64
	Oxygen  float64
	Nitrogen float64
}

// TankVolumeType distinguishes how a Tank's volume/pressure fields should
// be interpreted.
type TankVolumeType int

const (
	TankVolumeNone TankVolumeType = iota
	TankVolumeMetric
	TankVolumeImperial
)

// TankUnknown marks a Tank.GasMix index as not associated with any gas mix.
const TankUnknown = -1

// Tank carries one entry of a dive's tank table (spec §3).
type Tank struct {
	GasMix        int // index into the dive's GasMix table, or TankUnknown
	Type          TankVolumeType
	Volume        float64 // litres water capacity
	WorkPressure  float64 // bar
	BeginPressure float64 // bar
	EndPressure   float64 // bar
}

// DiveMode enumerates the dive-computer operating mode for a dive.
type DiveMode int

const (
	DiveModeFreedive DiveMode = iota
	DiveModeGauge
	DiveModeOC
	DiveModeCC
)

// StringField is a newly allocated (description, value) pair; ownership
// transfers to the caller once returned from Parser.GetField (spec §3,
// §4.2.3, §9 design note).
type StringField struct {
	Description string
	Value       string
}

// FieldValue is the typed union returned by Parser.GetField. Exactly one
// field is meaningful, selected by the FieldType passed in.
type FieldValue struct {
	DiveTime    uint32
	Depth       float64 // MaxDepth / AvgDepth
	GasMixCount uint32
	GasMix      GasMix
	Salinity    Salinity
	Atmospheric float64
	Temperature float64 // Surface / Min / Max
	TankCount   uint32
	Tank        Tank
	DiveMode    DiveMode
	String      StringField
}
