package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Nozzle contour kinds accepted at the input boundary.
const (
	ContourConical = "conical"
	ContourBell    = "bell"
)

// Port axial profile kinds.
const (
	PortCylindrical = "cylindrical"
	PortTapered     = "tapered"
)

// GrainGeometry describes the fuel grain. Boundary units: millimetres, degrees.
type GrainGeometry struct {
	LengthMM          float64 `json:"length_mm"`
	OuterDiameterMM   float64 `json:"outer_diameter_mm"`
	PortDiameterMM    float64 `json:"initial_port_diameter_mm"`
	PortWallMM        float64 `json:"port_wall_thickness_mm"`
	PortProfile       string  `json:"port_axial_profile"`
	PortTaperAngleDeg float64 `json:"port_profile_taper_angle_deg"`
}

// ChamberGeometry describes the combustion chamber. Free volume is in cc.
type ChamberGeometry struct {
	LengthMM        float64 `json:"length_mm"`
	InnerDiameterMM float64 `json:"inner_diameter_mm"`
	WallMM          float64 `json:"wall_thickness_mm"`
	FreeVolumeCC    float64 `json:"chamber_volume_cc"`
}

type InjectorGeometry struct {
	PlateThicknessMM float64 `json:"inj_plate_thickness"`
}

type NozzleGeometry struct {
	ThroatDiameterMM   float64 `json:"throat_diameter_mm"`
	ExitDiameterMM     float64 `json:"exit_diameter_mm"`
	LengthMM           float64 `json:"length_mm"`
	DivergenceAngleDeg float64 `json:"divergence_angle_deg"`
	Contour            string  `json:"contour_type"`
}

type EngineGeometry struct {
	Grain    GrainGeometry    `json:"grain"`
	Chamber  ChamberGeometry  `json:"combustionChamber"`
	Injector InjectorGeometry `json:"injector"`
	Nozzle   NozzleGeometry   `json:"nozzle"`
}

// OperatingPoint is the steady-state condition to evaluate. Chamber pressure
// is in MPa at the boundary; the normalizer converts to SI exactly once.
type OperatingPoint struct {
	ChamberPressureMPa float64 `json:"chamberPressure"`
	MixtureRatio       float64 `json:"mixtureRatio"`
	PropellantTempK    float64 `json:"propellantTemp"`
}

// ProfilePoint is one station of an axial profile.
type ProfilePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result sources.
const (
	SourceCore     = "core"
	SourceAdvanced = "advanced"
)

// PerformanceResult is the steady-state prediction. All values are SI
// (newtons, seconds, kelvin, pascals, kg/s); profiles run fore to aft with
// strictly increasing x in metres.
type PerformanceResult struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`

	Thrust             float64 `json:"thrust"`
	SpecificImpulse    float64 `json:"specificImpulse"`
	ChamberTemperature float64 `json:"chamberTemperature"`
	ExitPressure       float64 `json:"exitPressure"`
	MassFlowRate       float64 `json:"massFlowRate"`
	FuelMassFlow       float64 `json:"fuelMassFlow"`
	OxidizerMassFlow   float64 `json:"oxidizerMassFlow"`
	OxidizerMassFlux   float64 `json:"oxidizerMassFlux"`
	ThrustCoefficient  float64 `json:"thrustCoefficient"`
	CharacteristicVel  float64 `json:"characteristicVelocity"`
	ExpansionRatio     float64 `json:"expansionRatio"`
	Gamma              float64 `json:"gamma"`
	MolecularWeight    float64 `json:"molecularWeight"`

	PressureData    []ProfilePoint `json:"pressureData"`
	TemperatureData []ProfilePoint `json:"temperatureData"`
	VelocityData    []ProfilePoint `json:"velocityData"`

	Source   string `json:"source"`
	Degraded string `json:"degraded,omitempty"`
}

// SimulationRequest is the wire request shared by the HTTP API, the facade and
// the advanced-model client.
type SimulationRequest struct {
	Geometry   EngineGeometry `json:"geometry"`
	Operating  OperatingPoint `json:"operating"`
	Model      string         `json:"model,omitempty"`
	Propellant string         `json:"propellant,omitempty"`
}

// SimulationRecord is one history entry: the request as received and the
// result as returned.
type SimulationRecord struct {
	VersionedRecord
	ID        string            `json:"id"`
	Timestamp int64             `json:"timestamp"`
	Request   SimulationRequest `json:"request"`
	Result    PerformanceResult `json:"result"`
}
