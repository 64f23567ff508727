package model

// DefaultEngineGeometry returns the reference engine: a mid-scale N2O/paraffin
// motor with a conical nozzle. Studies apply parameter overrides on top of it.
func DefaultEngineGeometry() EngineGeometry {
	return EngineGeometry{
		Grain: GrainGeometry{
			LengthMM:          300,
			OuterDiameterMM:   75,
			PortDiameterMM:    25,
			PortWallMM:        15,
			PortProfile:       PortCylindrical,
			PortTaperAngleDeg: 2,
		},
		Chamber: ChamberGeometry{
			LengthMM:        350,
			InnerDiameterMM: 80,
			WallMM:          5,
			FreeVolumeCC:    1200,
		},
		Injector: InjectorGeometry{
			PlateThicknessMM: 8,
		},
		Nozzle: NozzleGeometry{
			ThroatDiameterMM:   50,
			ExitDiameterMM:     200,
			LengthMM:           150,
			DivergenceAngleDeg: 15,
			Contour:            ContourConical,
		},
	}
}

// DefaultOperatingPoint returns the reference steady-state condition.
func DefaultOperatingPoint() OperatingPoint {
	return OperatingPoint{
		ChamberPressureMPa: 10.0,
		MixtureRatio:       2.1,
		PropellantTempK:    298.0,
	}
}
