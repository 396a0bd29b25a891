/*
Copyright © 2026 the PoreNet authors.
This file is part of PoreNet.

PoreNet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PoreNet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PoreNet.  If not, see <http://www.gnu.org/licenses/>.
*/

package porenet

// Radius distribution models.
const (
	DistUniform = iota + 1
	DistRayleigh
	DistTriangular
	DistNormal
	DistWeibull
)

// Wettability models.
const (
	WettabilityWaterWet = iota + 1
	WettabilityOilWet
	WettabilityFractional // randomly scattered oil-wet fraction
	WettabilityMixedSmall // smallest radii oil-wet
	WettabilityMixedLarge // largest radii oil-wet
)

// Config holds every simulation parameter. All units are SI.
type Config struct {
	// Geometry of the regular lattice.
	Nx, Ny, Nz         int
	Length             float64 `desc:"Lattice spacing" units:"m"`
	CoordinationNumber float64 // target mean connections per node, (0, 6]
	DegreeOfDistortion float64 // node displacement as a fraction of spacing
	AspectRatio        float64 // node radius = pore radius × aspect ratio

	// Radius distribution.
	MinRadius, MaxRadius float64 `units:"m"`
	RadiusDistribution   int
	RayleighParameter    float64
	TriangularParameter  float64
	NormalMuParameter    float64
	NormalSigmaParameter float64

	// Cross-section shape factor G = A/P². G ≤ √3/36 is triangular,
	// G ≤ 1/16 square, larger circular.
	ShapeFactor float64

	// Volume and conductance closures. Zero exponents select the
	// geometric forms (V = A·L, Poiseuille-type conductance); non-zero
	// exponents select the power laws V = C·L·rˣ and g = C·rˣ/L.
	PoreVolumeConstant       float64
	PoreVolumeExponent       float64
	PoreConductivityConstant float64
	PoreConductivityExponent float64

	Seed uint64

	// Wettability.
	WettabilityModel  int
	MinWaterWetTheta  float64 `units:"rad"`
	MaxWaterWetTheta  float64 `units:"rad"`
	MinOilWetTheta    float64 `units:"rad"`
	MaxOilWetTheta    float64 `units:"rad"`
	OilWetFraction    float64

	// Fluid properties.
	OilViscosity     float64 `units:"Pa·s"`
	WaterViscosity   float64 `units:"Pa·s"`
	GasViscosity     float64 `units:"Pa·s"`
	OWSurfaceTension float64 `units:"N/m"`

	// Corner films.
	FilmConductanceResistivity float64

	// Pressure boundary conditions.
	PressureIn  float64 `units:"Pa"`
	PressureOut float64 `units:"Pa"`

	// Steady-state displacement stages. Each stage is optional.
	PrimaryDrainageSimulation        bool
	SpontaneousImbibitionSimulation  bool
	ForcedWaterInjectionSimulation   bool
	SpontaneousOilInvasionSimulation bool
	SecondaryDrainageSimulation      bool

	// Stage stop targets: water saturation and capillary pressure.
	// A zero capillary pressure target disables the Pc stop for the stage.
	FinalSaturationPD  float64 // primary drainage
	FinalPcPD          float64
	FinalSaturationSI  float64 // spontaneous imbibition
	FinalPcSI          float64
	FinalSaturationFWI float64 // forced water injection
	FinalPcFWI         float64
	FinalSaturationSOI float64 // spontaneous oil invasion
	FinalPcSOI         float64
	FinalSaturationSD  float64 // secondary drainage
	FinalPcSD          float64

	RelativePermeabilities bool
	SteadyStateSteps       int // kr sampling resolution per stage

	// Unsteady-state displacement.
	InitialWaterSaturation    float64
	WaterDistribution         int // 1 random, 2 inlet slug, 3 connected clusters
	FlowRate                  float64 `units:"m³/s"`
	SimulationTime            float64 `units:"s"`
	OverrideByInjectedPVs     bool
	InjectedPVs               float64
	StopOnBreakthrough        bool
	EnhancedWaterConnectivity bool
	AdvancedTrapping          bool
	OutputInterval            float64 `units:"s"`

	// Tracer transport.
	TracerDiffusionCoef float64 `units:"m²/s"`
}

// DefaultConfig returns a configuration describing a small water-wet
// Berea-like lattice.
func DefaultConfig() *Config {
	return &Config{
		Nx: 10, Ny: 10, Nz: 10,
		Length:             90e-6,
		CoordinationNumber: 4.0,
		DegreeOfDistortion: 0,
		AspectRatio:        1,

		MinRadius:            1e-6,
		MaxRadius:            20e-6,
		RadiusDistribution:   DistUniform,
		RayleighParameter:    10e-6,
		TriangularParameter:  10e-6,
		NormalMuParameter:    10e-6,
		NormalSigmaParameter: 4e-6,

		ShapeFactor: 0.03,

		PoreVolumeConstant:       0,
		PoreVolumeExponent:       0,
		PoreConductivityConstant: 0,
		PoreConductivityExponent: 0,

		Seed: 1,

		WettabilityModel: WettabilityWaterWet,
		MinWaterWetTheta: 0,
		MaxWaterWetTheta: 0.6,
		MinOilWetTheta:   2.2,
		MaxOilWetTheta:   2.8,
		OilWetFraction:   0,

		OilViscosity:     1e-3,
		WaterViscosity:   1e-3,
		GasViscosity:     1.8e-5,
		OWSurfaceTension: 0.03,

		FilmConductanceResistivity: 30,

		PressureIn:  1,
		PressureOut: 0,

		PrimaryDrainageSimulation: true,

		FinalSaturationPD:  0,
		FinalSaturationSI:  1,
		FinalSaturationFWI: 1,
		FinalSaturationSOI: 0,
		FinalSaturationSD:  0,

		SteadyStateSteps: 25,

		InitialWaterSaturation: 0,
		WaterDistribution:      1,
		FlowRate:               1e-10,
		SimulationTime:         10,
		InjectedPVs:            2,
		StopOnBreakthrough:     false,
		AdvancedTrapping:       true,
		OutputInterval:         0,
	}
}

// Check validates the configuration. It is called before any simulation
// state mutates; a non-nil result is always a *ConfigError.
func (c *Config) Check() error {
	if c.Nx < 1 || c.Ny < 1 || c.Nz < 1 {
		return configErr("Nx/Ny/Nz", "lattice dimensions must be at least 1, got %d×%d×%d", c.Nx, c.Ny, c.Nz)
	}
	if c.Length <= 0 {
		return configErr("Length", "lattice spacing must be positive, got %g", c.Length)
	}
	if c.CoordinationNumber <= 0 || c.CoordinationNumber > 6 {
		return configErr("CoordinationNumber", "must be in (0, 6], got %g", c.CoordinationNumber)
	}
	if c.MinRadius <= 0 || c.MaxRadius < c.MinRadius {
		return configErr("MinRadius/MaxRadius", "need 0 < min ≤ max, got [%g, %g]", c.MinRadius, c.MaxRadius)
	}
	if c.MaxRadius >= c.Length/2 {
		return configErr("MaxRadius", "radius %g does not fit lattice spacing %g", c.MaxRadius, c.Length)
	}
	if c.RadiusDistribution < DistUniform || c.RadiusDistribution > DistWeibull {
		return configErr("RadiusDistribution", "unknown distribution %d", c.RadiusDistribution)
	}
	if c.ShapeFactor <= 0 || c.ShapeFactor > 1/(4*3.14159265358979) {
		return configErr("ShapeFactor", "must be in (0, 1/4π], got %g", c.ShapeFactor)
	}
	if c.WettabilityModel < WettabilityWaterWet || c.WettabilityModel > WettabilityMixedLarge {
		return configErr("WettabilityModel", "unknown model %d", c.WettabilityModel)
	}
	if c.OilWetFraction < 0 || c.OilWetFraction > 1 {
		return configErr("OilWetFraction", "must be in [0, 1], got %g", c.OilWetFraction)
	}
	if c.OilViscosity <= 0 || c.WaterViscosity <= 0 {
		return configErr("viscosity", "viscosities must be positive")
	}
	if c.OWSurfaceTension <= 0 {
		return configErr("OWSurfaceTension", "must be positive, got %g", c.OWSurfaceTension)
	}
	for _, s := range []struct {
		name string
		val  float64
	}{
		{"FinalSaturationPD", c.FinalSaturationPD},
		{"FinalSaturationSI", c.FinalSaturationSI},
		{"FinalSaturationFWI", c.FinalSaturationFWI},
		{"FinalSaturationSOI", c.FinalSaturationSOI},
		{"FinalSaturationSD", c.FinalSaturationSD},
		{"InitialWaterSaturation", c.InitialWaterSaturation},
	} {
		if s.val < 0 || s.val > 1 {
			return configErr(s.name, "saturation must be in [0, 1], got %g", s.val)
		}
	}
	if c.FlowRate < 0 {
		return configErr("FlowRate", "must be non-negative, got %g", c.FlowRate)
	}
	if c.SimulationTime < 0 {
		return configErr("SimulationTime", "must be non-negative, got %g", c.SimulationTime)
	}
	if c.InjectedPVs < 0 {
		return configErr("InjectedPVs", "must be non-negative, got %g", c.InjectedPVs)
	}
	return nil
}
