package godc

// Family is the closed enumeration naming each supported model family
// (spec §3). It is immutable per Device/Parser instance once created.
type Family int

const (
	FamilySuuntoSolution Family = 1 + iota
	FamilySuuntoEON
	FamilySuuntoVyper
	FamilySuuntoVyper2
	FamilySuuntoD9
	FamilySuuntoEONSteel
	FamilyUwatecAladin
	FamilyUwatecMemoMouse
	FamilyUwatecSmart
	FamilyUwatecMeridian
	FamilyReefnetSensus
	FamilyReefnetSensusPro
	FamilyReefnetSensusUltra
	FamilyOceanicVTPro
	FamilyOceanicVEO250
	FamilyOceanicAtom2
	FamilyMaresNemo
	FamilyMaresPuck
	FamilyMaresDarwin
	FamilyMaresIconHD
	FamilyHWOSTC
	FamilyHWFrog
	FamilyHWOSTC3
	FamilyCressiEdy
	FamilyCressiLeonardo
	FamilyZeagleN2ition3
	FamilyAtomicsCobalt
	FamilyShearwaterPredator
	FamilyShearwaterPetrel
	FamilyDiveriteNitekQ
	FamilyCitizenAqualand
	FamilyDivesystemIDive
	FamilyCochranCommander
)

var familyNames = map[Family]string{
	FamilySuuntoSolution:     "Suunto Solution",
	FamilySuuntoEON:          "Suunto EON",
	FamilySuuntoVyper:        "Suunto Vyper",
	FamilySuuntoVyper2:       "Suunto Vyper2",
	FamilySuuntoD9:           "Suunto D9",
	FamilySuuntoEONSteel:     "Suunto EON Steel",
	FamilyUwatecAladin:       "Uwatec Aladin",
	FamilyUwatecMemoMouse:    "Uwatec MemoMouse",
	FamilyUwatecSmart:        "Uwatec Smart",
	FamilyUwatecMeridian:     "Uwatec Meridian",
	FamilyReefnetSensus:      "Reefnet Sensus",
	FamilyReefnetSensusPro:   "Reefnet Sensus Pro",
	FamilyReefnetSensusUltra: "Reefnet Sensus Ultra",
	FamilyOceanicVTPro:       "Oceanic VT Pro",
	FamilyOceanicVEO250:      "Oceanic VEO250",
	FamilyOceanicAtom2:       "Oceanic Atom2",
	FamilyMaresNemo:          "Mares Nemo",
	FamilyMaresPuck:          "Mares Puck",
	FamilyMaresDarwin:        "Mares Darwin",
	FamilyMaresIconHD:        "Mares Icon HD",
	FamilyHWOSTC:             "Heinrichs Weikamp OSTC",
	FamilyHWFrog:             "Heinrichs Weikamp Frog",
	FamilyHWOSTC3:            "Heinrichs Weikamp OSTC3",
	FamilyCressiEdy:          "Cressi Edy",
	FamilyCressiLeonardo:     "Cressi Leonardo",
	FamilyZeagleN2ition3:     "Zeagle N2ition3",
	FamilyAtomicsCobalt:      "Atomics Cobalt",
	FamilyShearwaterPredator: "Shearwater Predator",
	FamilyShearwaterPetrel:   "Shearwater Petrel",
	FamilyDiveriteNitekQ:     "Dive Rite NitekQ",
	FamilyCitizenAqualand:    "Citizen Aqualand",
	FamilyDivesystemIDive:    "Divesystem iDive",
	FamilyCochranCommander:   "Cochran Commander",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "unknown family"
}
