package optimizer

import (
	"fmt"
	"sort"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

type paramSetter func(geom *model.EngineGeometry, op *model.OperatingPoint, value float64)

// Dotted study parameter names map onto the default engine inputs. Section
// prefixes follow the wire geometry keys; bare names address the operating
// point.
var paramSetters = map[string]paramSetter{
	"chamberPressure": func(_ *model.EngineGeometry, op *model.OperatingPoint, v float64) { op.ChamberPressureMPa = v },
	"mixtureRatio":    func(_ *model.EngineGeometry, op *model.OperatingPoint, v float64) { op.MixtureRatio = v },
	"propellantTemp":  func(_ *model.EngineGeometry, op *model.OperatingPoint, v float64) { op.PropellantTempK = v },

	"grain.length_mm":                  func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Grain.LengthMM = v },
	"grain.outer_diameter_mm":          func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Grain.OuterDiameterMM = v },
	"grain.initial_port_diameter_mm":   func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Grain.PortDiameterMM = v },
	"grain.port_wall_thickness_mm":     func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Grain.PortWallMM = v },
	"grain.port_profile_taper_angle_deg": func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) {
		g.Grain.PortTaperAngleDeg = v
	},

	"combustionChamber.length_mm":         func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Chamber.LengthMM = v },
	"combustionChamber.inner_diameter_mm": func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Chamber.InnerDiameterMM = v },
	"combustionChamber.wall_thickness_mm": func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Chamber.WallMM = v },
	"combustionChamber.chamber_volume_cc": func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Chamber.FreeVolumeCC = v },

	"injector.inj_plate_thickness": func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Injector.PlateThicknessMM = v },

	"nozzle.throat_diameter_mm":   func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Nozzle.ThroatDiameterMM = v },
	"nozzle.exit_diameter_mm":     func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Nozzle.ExitDiameterMM = v },
	"nozzle.length_mm":            func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Nozzle.LengthMM = v },
	"nozzle.divergence_angle_deg": func(g *model.EngineGeometry, _ *model.OperatingPoint, v float64) { g.Nozzle.DivergenceAngleDeg = v },
}

// SupportedParameters lists the valid dotted parameter names in sorted order.
func SupportedParameters() []string {
	names := make([]string, 0, len(paramSetters))
	for name := range paramSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyParameters overlays a sampled parameter set on the default engine.
func ApplyParameters(params map[string]float64) (model.EngineGeometry, model.OperatingPoint, error) {
	geom := model.DefaultEngineGeometry()
	op := model.DefaultOperatingPoint()

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		set, ok := paramSetters[name]
		if !ok {
			return geom, op, fmt.Errorf("unknown study parameter: %s", name)
		}
		set(&geom, &op, params[name])
	}
	return geom, op, nil
}
