// Package engine implements the steady-state performance model for hybrid
// rocket engines: a pure staged pipeline from geometry and operating point to
// scalar metrics and axial profiles. The stages share no state, perform no
// I/O and are deterministic; result identity comes from injectable sources so
// everything else is reproducible bit for bit.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
	"github.com/cheatbot1234/thrust-vector-forge/internal/propellant"
)

// Config carries the model constants that are properties of the model rather
// than of a propellant pair. The zero value of any field falls back to the
// default.
type Config struct {
	AmbientPressure   float64 // Pa
	ProfileSamples    int     // stations per axial series
	ChamberLossMax    float64 // max fractional chamber pressure loss
	BellAreaExponent  float64 // bell contour area growth exponent
	DivergenceFactor  float64 // thrust coefficient damping
	BellEfficiency    float64 // exit velocity efficiency, bell
	ConicalEfficiency float64 // exit velocity efficiency, conical
}

// DefaultConfig returns the model defaults.
func DefaultConfig() Config {
	return Config{
		AmbientPressure:   defaultAmbientPressure,
		ProfileSamples:    defaultProfileSamples,
		ChamberLossMax:    defaultChamberLossMax,
		BellAreaExponent:  defaultBellAreaExponent,
		DivergenceFactor:  defaultDivergenceFactor,
		BellEfficiency:    defaultBellEfficiency,
		ConicalEfficiency: defaultConicalEfficiency,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AmbientPressure <= 0 {
		c.AmbientPressure = d.AmbientPressure
	}
	if c.ProfileSamples < 2 {
		c.ProfileSamples = d.ProfileSamples
	}
	if c.ChamberLossMax <= 0 || c.ChamberLossMax >= 1 {
		c.ChamberLossMax = d.ChamberLossMax
	}
	if c.BellAreaExponent <= 0 {
		c.BellAreaExponent = d.BellAreaExponent
	}
	if c.DivergenceFactor <= 0 || c.DivergenceFactor > 1 {
		c.DivergenceFactor = d.DivergenceFactor
	}
	if c.BellEfficiency <= 0 || c.BellEfficiency > 1 {
		c.BellEfficiency = d.BellEfficiency
	}
	if c.ConicalEfficiency <= 0 || c.ConicalEfficiency > 1 {
		c.ConicalEfficiency = d.ConicalEfficiency
	}
	return c
}

// Model binds a propellant profile and a configuration to the pipeline.
// NewID and Now stamp result identity; leave them nil outside tests.
type Model struct {
	Profile propellant.Profile
	Config  Config
	NewID   func() string
	Now     func() time.Time
}

// New returns a model over the given profile with default configuration.
func New(p propellant.Profile) *Model {
	return &Model{Profile: p, Config: DefaultConfig()}
}

// Compute runs the pipeline: normalize, combustion, regression, nozzle flow,
// axial profiles, assembly. The returned result is a self-contained value;
// the caller owns it.
func (m *Model) Compute(geom model.EngineGeometry, op model.OperatingPoint) (model.PerformanceResult, error) {
	if err := m.Profile.Validate(); err != nil {
		return model.PerformanceResult{}, err
	}
	cfg := m.Config.withDefaults()

	n, err := Normalize(geom, op)
	if err != nil {
		return model.PerformanceResult{}, err
	}
	comb := Combust(n, m.Profile)
	reg := Regress(n, m.Profile)
	noz, err := ExpandNozzle(n, comb, cfg)
	if err != nil {
		return model.PerformanceResult{}, err
	}
	prof, err := GenerateProfiles(n, comb, noz, cfg)
	if err != nil {
		return model.PerformanceResult{}, err
	}

	newID := m.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	now := m.Now
	if now == nil {
		now = time.Now
	}

	return model.PerformanceResult{
		ID:        newID(),
		Timestamp: now().UnixMilli(),

		Thrust:             noz.Thrust,
		SpecificImpulse:    noz.SpecificImpulse,
		ChamberTemperature: comb.Temperature,
		ExitPressure:       noz.ExitPressure,
		MassFlowRate:       reg.TotalFlow,
		FuelMassFlow:       reg.FuelFlow,
		OxidizerMassFlow:   reg.OxidizerFlow,
		OxidizerMassFlux:   reg.OxidizerFlux,
		ThrustCoefficient:  noz.ThrustCoefficient,
		CharacteristicVel:  comb.Cstar,
		ExpansionRatio:     n.ExpansionRatio,
		Gamma:              comb.Gamma,
		MolecularWeight:    m.Profile.MolarMass,

		PressureData:    prof.Pressure,
		TemperatureData: prof.Temperature,
		VelocityData:    prof.Velocity,

		Source: model.SourceCore,
	}, nil
}
