package engine

import (
	"math"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

// Boundary unit factors. Conversion to SI happens here exactly once; every
// stage downstream works in metres, pascals and kelvin.
const (
	mmToM   = 1e-3
	mpaToPa = 1e6
	ccToM3  = 1e-6
)

// Normalized is the SI view of one request: converted inputs plus the derived
// geometric quantities every stage consumes.
type Normalized struct {
	ChamberPressure float64 // Pa
	MixtureRatio    float64 // O/F
	PropellantTemp  float64 // K

	GrainLength  float64 // m
	PortDiameter float64 // m, fore end
	PortArea     float64 // m^2, fore end
	BurnArea     float64 // m^2, lateral port surface

	ChamberLength float64 // m
	FreeVolume    float64 // m^3
	CharLength    float64 // m, L* = free volume / throat area

	NozzleLength   float64 // m
	ThroatArea     float64 // m^2
	ExitArea       float64 // m^2
	ExpansionRatio float64 // exit area / throat area
	Contour        string
}

// Normalize validates the request and produces its SI view. Geometric
// degeneracies that still admit a well-formed geometry (an expansion ratio of
// exactly 1) pass validation and fail later in the nozzle stage.
func Normalize(geom model.EngineGeometry, op model.OperatingPoint) (Normalized, error) {
	if op.ChamberPressureMPa <= 0 {
		return Normalized{}, invalid("chamberPressure", op.ChamberPressureMPa, "must be positive")
	}
	if op.MixtureRatio <= 0 {
		return Normalized{}, invalid("mixtureRatio", op.MixtureRatio, "must be positive")
	}
	if op.PropellantTempK <= 0 {
		return Normalized{}, invalid("propellantTemp", op.PropellantTempK, "must be positive")
	}

	g := geom.Grain
	if g.LengthMM <= 0 {
		return Normalized{}, invalid("grain.length_mm", g.LengthMM, "must be positive")
	}
	if g.OuterDiameterMM <= 0 {
		return Normalized{}, invalid("grain.outer_diameter_mm", g.OuterDiameterMM, "must be positive")
	}
	if g.PortDiameterMM <= 0 {
		return Normalized{}, invalid("grain.initial_port_diameter_mm", g.PortDiameterMM, "must be positive")
	}
	if g.PortWallMM <= 0 {
		return Normalized{}, invalid("grain.port_wall_thickness_mm", g.PortWallMM, "must be positive")
	}
	if g.PortDiameterMM >= g.OuterDiameterMM {
		return Normalized{}, invalid("grain.initial_port_diameter_mm", g.PortDiameterMM,
			"must be smaller than the grain outer diameter")
	}
	switch g.PortProfile {
	case model.PortCylindrical:
	case model.PortTapered:
		if g.PortTaperAngleDeg <= 0 || g.PortTaperAngleDeg >= 90 {
			return Normalized{}, invalid("grain.port_profile_taper_angle_deg", g.PortTaperAngleDeg,
				"must be in (0, 90) for a tapered port")
		}
	default:
		return Normalized{}, invalid("grain.port_axial_profile", g.PortProfile,
			`must be "cylindrical" or "tapered"`)
	}

	ch := geom.Chamber
	if ch.LengthMM <= 0 {
		return Normalized{}, invalid("combustionChamber.length_mm", ch.LengthMM, "must be positive")
	}
	if ch.InnerDiameterMM <= 0 {
		return Normalized{}, invalid("combustionChamber.inner_diameter_mm", ch.InnerDiameterMM, "must be positive")
	}
	if ch.WallMM <= 0 {
		return Normalized{}, invalid("combustionChamber.wall_thickness_mm", ch.WallMM, "must be positive")
	}
	if ch.FreeVolumeCC <= 0 {
		return Normalized{}, invalid("combustionChamber.chamber_volume_cc", ch.FreeVolumeCC, "must be positive")
	}

	if geom.Injector.PlateThicknessMM <= 0 {
		return Normalized{}, invalid("injector.inj_plate_thickness", geom.Injector.PlateThicknessMM, "must be positive")
	}

	nz := geom.Nozzle
	if nz.ThroatDiameterMM <= 0 {
		return Normalized{}, invalid("nozzle.throat_diameter_mm", nz.ThroatDiameterMM, "must be positive")
	}
	if nz.ExitDiameterMM <= 0 {
		return Normalized{}, invalid("nozzle.exit_diameter_mm", nz.ExitDiameterMM, "must be positive")
	}
	if nz.LengthMM <= 0 {
		return Normalized{}, invalid("nozzle.length_mm", nz.LengthMM, "must be positive")
	}
	if nz.DivergenceAngleDeg <= 0 || nz.DivergenceAngleDeg >= 90 {
		return Normalized{}, invalid("nozzle.divergence_angle_deg", nz.DivergenceAngleDeg, "must be in (0, 90)")
	}
	if nz.Contour != model.ContourConical && nz.Contour != model.ContourBell {
		return Normalized{}, invalid("nozzle.contour_type", nz.Contour, `must be "conical" or "bell"`)
	}
	if nz.ExitDiameterMM < nz.ThroatDiameterMM {
		return Normalized{}, invalid("nozzle.exit_diameter_mm", nz.ExitDiameterMM,
			"must not be smaller than the throat diameter (expansion ratio below 1)")
	}

	grainLength := g.LengthMM * mmToM
	portDiameter := g.PortDiameterMM * mmToM
	burnDiameter := portDiameter
	if g.PortProfile == model.PortTapered {
		taper := g.PortTaperAngleDeg * math.Pi / 180
		aft := portDiameter + 2*grainLength*math.Tan(taper)
		if aft >= g.OuterDiameterMM*mmToM {
			return Normalized{}, invalid("grain.port_profile_taper_angle_deg", g.PortTaperAngleDeg,
				"tapered port exceeds the grain outer diameter at the aft end")
		}
		// Mean port diameter stands in for the cylindrical one.
		burnDiameter = portDiameter + grainLength*math.Tan(taper)
	}

	throatDiameter := nz.ThroatDiameterMM * mmToM
	exitDiameter := nz.ExitDiameterMM * mmToM
	throatArea := math.Pi / 4 * throatDiameter * throatDiameter
	exitArea := math.Pi / 4 * exitDiameter * exitDiameter
	freeVolume := ch.FreeVolumeCC * ccToM3

	return Normalized{
		ChamberPressure: op.ChamberPressureMPa * mpaToPa,
		MixtureRatio:    op.MixtureRatio,
		PropellantTemp:  op.PropellantTempK,

		GrainLength:  grainLength,
		PortDiameter: portDiameter,
		PortArea:     math.Pi / 4 * portDiameter * portDiameter,
		BurnArea:     math.Pi * burnDiameter * grainLength,

		ChamberLength: ch.LengthMM * mmToM,
		FreeVolume:    freeVolume,
		CharLength:    freeVolume / throatArea,

		NozzleLength:   nz.LengthMM * mmToM,
		ThroatArea:     throatArea,
		ExitArea:       exitArea,
		ExpansionRatio: exitArea / throatArea,
		Contour:        nz.Contour,
	}, nil
}
