package propellant

import (
	"fmt"
	"sort"

	"gopkg.in/ini.v1"
)

var knownKeys = map[string]bool{
	"gamma":                true,
	"molar_mass":           true,
	"fuel_density":         true,
	"oxidizer_ref_density": true,
	"regression_a":         true,
	"regression_n":         true,
	"t_base":               true,
	"k_pressure":           true,
	"k_mixture":            true,
	"k_mixture_quad":       true,
	"of_opt":               true,
	"t_min":                true,
	"t_max":                true,
	"eta_min":              true,
	"eta_max":              true,
	"lstar_ref":            true,
}

// LoadFile reads additional propellant profiles from an INI file and merges
// them into a fresh set on top of the default pair. Each section names one
// profile; omitted keys inherit the default pair's constants.
func LoadFile(path string) (*Set, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("propellant: load %s: %w", path, err)
	}
	set := DefaultSet()
	for _, sec := range cfg.Sections() {
		if sec.Name() == ini.DefaultSection {
			if len(sec.KeyStrings()) > 0 {
				return nil, fmt.Errorf("propellant: %s: keys outside a profile section", path)
			}
			continue
		}
		p, err := profileFromSection(sec)
		if err != nil {
			return nil, fmt.Errorf("propellant: %s: %w", path, err)
		}
		set.put(p)
	}
	return set, nil
}

func profileFromSection(sec *ini.Section) (Profile, error) {
	keys := sec.KeyStrings()
	sort.Strings(keys)
	for _, k := range keys {
		if !knownKeys[k] {
			return Profile{}, fmt.Errorf("section %s: unknown key %q", sec.Name(), k)
		}
	}

	p := Default()
	p.Name = sec.Name()
	p.Gamma = sec.Key("gamma").MustFloat64(p.Gamma)
	p.MolarMass = sec.Key("molar_mass").MustFloat64(p.MolarMass)
	p.FuelDensity = sec.Key("fuel_density").MustFloat64(p.FuelDensity)
	p.OxidizerRefDensity = sec.Key("oxidizer_ref_density").MustFloat64(p.OxidizerRefDensity)
	p.RegressionA = sec.Key("regression_a").MustFloat64(p.RegressionA)
	p.RegressionN = sec.Key("regression_n").MustFloat64(p.RegressionN)
	p.TBase = sec.Key("t_base").MustFloat64(p.TBase)
	p.KPressure = sec.Key("k_pressure").MustFloat64(p.KPressure)
	p.KMixture = sec.Key("k_mixture").MustFloat64(p.KMixture)
	p.KMixtureQuad = sec.Key("k_mixture_quad").MustFloat64(p.KMixtureQuad)
	p.OFOpt = sec.Key("of_opt").MustFloat64(p.OFOpt)
	p.TMin = sec.Key("t_min").MustFloat64(p.TMin)
	p.TMax = sec.Key("t_max").MustFloat64(p.TMax)
	p.EtaMin = sec.Key("eta_min").MustFloat64(p.EtaMin)
	p.EtaMax = sec.Key("eta_max").MustFloat64(p.EtaMax)
	p.LStarRef = sec.Key("lstar_ref").MustFloat64(p.LStarRef)

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
