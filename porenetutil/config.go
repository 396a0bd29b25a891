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

package porenetutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lnashier/viper"
	"github.com/porescale/porenet"
	"github.com/spf13/cast"
)

// NetworkConfig assembles a simulation configuration from the
// configuration variables in cfg. Variables not present keep their
// defaults.
func NetworkConfig(cfg *viper.Viper) (*porenet.Config, error) {
	c := porenet.DefaultConfig()

	c.Nx = cfg.GetInt("Network.Nx")
	c.Ny = cfg.GetInt("Network.Ny")
	c.Nz = cfg.GetInt("Network.Nz")
	c.Length = cfg.GetFloat64("Network.Length")
	c.CoordinationNumber = cfg.GetFloat64("Network.CoordinationNumber")
	c.DegreeOfDistortion = cfg.GetFloat64("Network.DegreeOfDistortion")
	c.AspectRatio = cfg.GetFloat64("Network.AspectRatio")
	c.MinRadius = cfg.GetFloat64("Network.MinRadius")
	c.MaxRadius = cfg.GetFloat64("Network.MaxRadius")
	c.RadiusDistribution = cfg.GetInt("Network.RadiusDistribution")
	c.ShapeFactor = cfg.GetFloat64("Network.ShapeFactor")

	seed, err := cast.ToUint64E(cfg.Get("Network.Seed"))
	if err != nil {
		return nil, fmt.Errorf("porenetutil: invalid Network.Seed: %v", err)
	}
	c.Seed = seed

	c.WettabilityModel = cfg.GetInt("Wettability.Model")
	c.OilWetFraction = cfg.GetFloat64("Wettability.OilWetFraction")

	c.OilViscosity = cfg.GetFloat64("Fluids.OilViscosity")
	c.WaterViscosity = cfg.GetFloat64("Fluids.WaterViscosity")
	c.OWSurfaceTension = cfg.GetFloat64("Fluids.OWSurfaceTension")

	c.PrimaryDrainageSimulation = cfg.GetBool("Steady.PrimaryDrainage")
	c.SpontaneousImbibitionSimulation = cfg.GetBool("Steady.SpontaneousImbibition")
	c.ForcedWaterInjectionSimulation = cfg.GetBool("Steady.ForcedWaterInjection")
	c.SpontaneousOilInvasionSimulation = cfg.GetBool("Steady.SpontaneousOilInvasion")
	c.SecondaryDrainageSimulation = cfg.GetBool("Steady.SecondaryDrainage")
	c.RelativePermeabilities = cfg.GetBool("Steady.RelativePermeabilities")

	c.InitialWaterSaturation = cfg.GetFloat64("Unsteady.InitialWaterSaturation")
	c.WaterDistribution = cfg.GetInt("Unsteady.WaterDistribution")
	c.FlowRate = cfg.GetFloat64("Unsteady.FlowRate")
	c.SimulationTime = cfg.GetFloat64("Unsteady.SimulationTime")
	c.OverrideByInjectedPVs = cfg.GetBool("Unsteady.OverrideByInjectedPVs")
	c.InjectedPVs = cfg.GetFloat64("Unsteady.InjectedPVs")
	c.StopOnBreakthrough = cfg.GetBool("Unsteady.StopOnBreakthrough")
	c.EnhancedWaterConnectivity = cfg.GetBool("Unsteady.EnhancedWaterConnectivity")
	c.OutputInterval = cfg.GetFloat64("Unsteady.OutputInterval")

	c.TracerDiffusionCoef = cfg.GetFloat64("Tracer.DiffusionCoef")

	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// checkOutputFile makes sure the output file's directory exists and
// expands any environment variables in its path.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("porenetutil: an output file must be specified")
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("porenetutil: the output directory doesn't exist: %v", err)
	}
	return f, nil
}
