package propellant

import "fmt"

// DefaultName is the reference propellant pair.
const DefaultName = "n2o-paraffin"

// Profile carries every propellant-pair constant the performance model uses.
// The correlation constants are empirical fits; substituting a pair means
// substituting a profile, never editing the algorithm.
type Profile struct {
	Name string

	Gamma              float64 // ratio of specific heats of the exhaust
	MolarMass          float64 // kg/kmol
	FuelDensity        float64 // kg/m^3
	OxidizerRefDensity float64 // kg/m^3, liquid-phase reference

	// Regression law r = a * G^n against the pressure-derived flux estimate.
	RegressionA float64
	RegressionN float64

	// Chamber temperature response T = TBase + KPressure*ln(1+Pc_MPa)
	// + KMixture*OF - KMixtureQuad*(OF-OFOpt)^2, clamped to [TMin, TMax].
	TBase        float64 // K
	KPressure    float64 // K per ln(MPa)
	KMixture     float64 // K per O/F unit
	KMixtureQuad float64 // K per (O/F)^2 unit
	OFOpt        float64 // mixture ratio at which the quadratic term vanishes
	TMin         float64 // K, fit validity floor
	TMax         float64 // K, fit validity ceiling

	// Combustion efficiency band, interpolated on L*/LStarRef.
	EtaMin   float64
	EtaMax   float64
	LStarRef float64 // m
}

// Default returns the N2O/paraffin reference profile.
func Default() Profile {
	return Profile{
		Name:               DefaultName,
		Gamma:              1.20,
		MolarMass:          26.5,
		FuelDensity:        920,
		OxidizerRefDensity: 785,
		RegressionA:        1.3e-7,
		RegressionN:        0.62,
		TBase:              2700,
		KPressure:          220,
		KMixture:           60,
		KMixtureQuad:       240,
		OFOpt:              2.3,
		TMin:               1500,
		TMax:               3800,
		EtaMin:             0.85,
		EtaMax:             0.98,
		LStarRef:           1.2,
	}
}

// Validate rejects profiles whose constants fall outside the model's domain.
func (p Profile) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("propellant: profile has no name")
	case p.Gamma <= 1:
		return fmt.Errorf("propellant %s: gamma %.4f must exceed 1", p.Name, p.Gamma)
	case p.MolarMass <= 0:
		return fmt.Errorf("propellant %s: molar mass %.4f must be positive", p.Name, p.MolarMass)
	case p.FuelDensity <= 0:
		return fmt.Errorf("propellant %s: fuel density %.4f must be positive", p.Name, p.FuelDensity)
	case p.OxidizerRefDensity <= 0:
		return fmt.Errorf("propellant %s: oxidizer reference density %.4f must be positive", p.Name, p.OxidizerRefDensity)
	case p.RegressionA <= 0:
		return fmt.Errorf("propellant %s: regression coefficient %.3e must be positive", p.Name, p.RegressionA)
	case p.RegressionN <= 0 || p.RegressionN > 1:
		return fmt.Errorf("propellant %s: regression exponent %.4f must be in (0, 1]", p.Name, p.RegressionN)
	case p.TMin <= 0 || p.TMax < p.TMin:
		return fmt.Errorf("propellant %s: temperature band [%.1f, %.1f] is invalid", p.Name, p.TMin, p.TMax)
	case p.EtaMin <= 0 || p.EtaMax < p.EtaMin || p.EtaMax > 1:
		return fmt.Errorf("propellant %s: efficiency band [%.3f, %.3f] is invalid", p.Name, p.EtaMin, p.EtaMax)
	case p.LStarRef <= 0:
		return fmt.Errorf("propellant %s: reference characteristic length %.4f must be positive", p.Name, p.LStarRef)
	}
	return nil
}

// Set is a named collection of profiles.
type Set struct {
	profiles map[string]Profile
}

// DefaultSet returns a set holding only the reference profile.
func DefaultSet() *Set {
	s := &Set{profiles: make(map[string]Profile)}
	s.put(Default())
	return s
}

func (s *Set) put(p Profile) {
	s.profiles[p.Name] = p
}

// Get looks up a profile by name. The empty name resolves to the default pair.
func (s *Set) Get(name string) (Profile, bool) {
	if name == "" {
		name = DefaultName
	}
	p, ok := s.profiles[name]
	return p, ok
}

// Names lists the registered profile names.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	return names
}
