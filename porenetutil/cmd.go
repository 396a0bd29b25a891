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

// Package porenetutil wraps the simulation library in a command-line
// interface with file-, flag- and environment-based configuration.
package porenetutil

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/lnashier/viper"
	"github.com/porescale/porenet"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to PoreNet.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the simulation history is
              written as CSV.`,
			shorthand:  "o",
			defaultVal: "history.csv",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "NetworkFile",
			usage: `
              NetworkFile, if specified, is the path where the final
              network state is saved in gob format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "NodesFile",
			usage: `
              NodesFile is the path where the generated nodes are written
              as CSV.`,
			defaultVal: "nodes.csv",
			flagsets:   []*pflag.FlagSet{generateCmd.Flags()},
		},
		{
			name: "PoresFile",
			usage: `
              PoresFile is the path where the generated pores are written
              as CSV.`,
			defaultVal: "pores.csv",
			flagsets:   []*pflag.FlagSet{generateCmd.Flags()},
		},
		{
			name: "Network.Nx",
			usage: `
              Network.Nx is the number of lattice nodes in the flow
              direction.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.Ny",
			usage: `
              Network.Ny is the number of lattice nodes in the first
              transverse direction.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.Nz",
			usage: `
              Network.Nz is the number of lattice nodes in the second
              transverse direction.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.Length",
			usage: `
              Network.Length is the lattice spacing [m].`,
			defaultVal: 90.0e-6,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.CoordinationNumber",
			usage: `
              Network.CoordinationNumber is the target mean number of
              conduits per node, between 0 and 6.`,
			defaultVal: 4.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.DegreeOfDistortion",
			usage: `
              Network.DegreeOfDistortion displaces each node randomly by
              up to this fraction of the lattice spacing.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.AspectRatio",
			usage: `
              Network.AspectRatio scales node radii relative to the
              largest incident pore radius.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.MinRadius",
			usage: `
              Network.MinRadius is the smallest pore radius [m].`,
			defaultVal: 1.0e-6,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.MaxRadius",
			usage: `
              Network.MaxRadius is the largest pore radius [m].`,
			defaultVal: 20.0e-6,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.RadiusDistribution",
			usage: `
              Network.RadiusDistribution selects the radius distribution:
              1 uniform, 2 Rayleigh, 3 triangular, 4 normal, 5 Weibull.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.ShapeFactor",
			usage: `
              Network.ShapeFactor is the cross-section shape factor G.
              G below 0.048 gives triangular conduits with corner films.`,
			defaultVal: 0.03,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.Seed",
			usage: `
              Network.Seed seeds the random generator; a fixed seed
              reproduces the network and every simulation on it.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Wettability.Model",
			usage: `
              Wettability.Model selects the wettability distribution:
              1 water-wet, 2 oil-wet, 3 fractional, 4 mixed-wet small,
              5 mixed-wet large.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Wettability.OilWetFraction",
			usage: `
              Wettability.OilWetFraction is the fraction of elements made
              oil-wet under the fractional and mixed-wet models.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Fluids.OilViscosity",
			usage: `
              Fluids.OilViscosity is the oil viscosity [Pa·s].`,
			defaultVal: 1.0e-3,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Fluids.WaterViscosity",
			usage: `
              Fluids.WaterViscosity is the water viscosity [Pa·s].`,
			defaultVal: 1.0e-3,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Fluids.OWSurfaceTension",
			usage: `
              Fluids.OWSurfaceTension is the oil-water interfacial
              tension [N/m].`,
			defaultVal: 0.03,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Steady.PrimaryDrainage",
			usage: `
              Steady.PrimaryDrainage enables the primary drainage stage.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{steadyCmd.Flags()},
		},
		{
			name: "Steady.SpontaneousImbibition",
			usage: `
              Steady.SpontaneousImbibition enables the spontaneous
              imbibition stage.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{steadyCmd.Flags()},
		},
		{
			name: "Steady.ForcedWaterInjection",
			usage: `
              Steady.ForcedWaterInjection enables the forced water
              injection stage.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{steadyCmd.Flags()},
		},
		{
			name: "Steady.SpontaneousOilInvasion",
			usage: `
              Steady.SpontaneousOilInvasion enables the spontaneous oil
              invasion stage.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{steadyCmd.Flags()},
		},
		{
			name: "Steady.SecondaryDrainage",
			usage: `
              Steady.SecondaryDrainage enables the secondary drainage
              stage.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{steadyCmd.Flags()},
		},
		{
			name: "Steady.RelativePermeabilities",
			usage: `
              Steady.RelativePermeabilities enables relative permeability
              sampling along each stage.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{steadyCmd.Flags()},
		},
		{
			name: "Unsteady.InitialWaterSaturation",
			usage: `
              Unsteady.InitialWaterSaturation is the water saturation the
              network starts from.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{unsteadyCmd.Flags()},
		},
		{
			name: "Unsteady.WaterDistribution",
			usage: `
              Unsteady.WaterDistribution lays out the initial water:
              1 random, 2 inlet slug, 3 inlet-connected clusters.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{unsteadyCmd.Flags()},
		},
		{
			name: "Unsteady.FlowRate",
			usage: `
              Unsteady.FlowRate is the constant water injection rate
              [m³/s].`,
			defaultVal: 1.0e-10,
			flagsets:   []*pflag.FlagSet{unsteadyCmd.Flags()},
		},
		{
			name: "Unsteady.SimulationTime",
			usage: `
              Unsteady.SimulationTime is the simulated duration [s].`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{unsteadyCmd.Flags(), tracerCmd.Flags()},
		},
		{
			name: "Unsteady.OverrideByInjectedPVs",
			usage: `
              Unsteady.OverrideByInjectedPVs stops the simulation after
              Unsteady.InjectedPVs pore volumes instead of after
              Unsteady.SimulationTime.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{unsteadyCmd.Flags()},
		},
		{
			name: "Unsteady.InjectedPVs",
			usage: `
              Unsteady.InjectedPVs is the number of pore volumes to
              inject when Unsteady.OverrideByInjectedPVs is set.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{unsteadyCmd.Flags()},
		},
		{
			name: "Unsteady.StopOnBreakthrough",
			usage: `
              Unsteady.StopOnBreakthrough stops the simulation when water
              first reaches the outlet face.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{unsteadyCmd.Flags()},
		},
		{
			name: "Unsteady.EnhancedWaterConnectivity",
			usage: `
              Unsteady.EnhancedWaterConnectivity seeds a connected water
              channel through the network before injection starts.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{unsteadyCmd.Flags()},
		},
		{
			name: "Unsteady.OutputInterval",
			usage: `
              Unsteady.OutputInterval is the simulated time between output
              records [s]; zero records every step.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{unsteadyCmd.Flags(), tracerCmd.Flags()},
		},
		{
			name: "Tracer.DiffusionCoef",
			usage: `
              Tracer.DiffusionCoef is the tracer molecular diffusion
              coefficient [m²/s].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{tracerCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("PORENET")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(generateCmd)
	Root.AddCommand(runCmd)
	runCmd.AddCommand(steadyCmd)
	runCmd.AddCommand(unsteadyCmd)
	runCmd.AddCommand(tracerCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("porenetutil: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "porenet",
	Short: "A pore-network two-phase flow simulator.",
	Long: `PoreNet simulates drainage and imbibition in an idealized porous medium.
Use the subcommands specified below to access the model functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PORENET_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of PoreNet.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("PoreNet v%s\n", porenet.Version)
	},
	DisableAutoGenTag: true,
}

// generateCmd builds a network and reports its bulk properties without
// running a displacement.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a network and report its properties.",
	Long: `generate builds the configured lattice, computes its absolute
permeability and porosity, and writes the node and pore tables as CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := buildNetwork()
		if err != nil {
			return err
		}
		if err := net.Run(porenet.Permeability(nil)); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"pores":        net.TotalPores(),
			"nodes":        net.TotalNodes(),
			"permeability": net.AbsolutePermeability(),
			"porosity":     net.Porosity(),
		}).Info("network generated")

		for _, out := range []struct {
			key string
			m   func(f *os.File) porenet.NetworkManipulator
		}{
			{"NodesFile", func(f *os.File) porenet.NetworkManipulator { return porenet.WriteNodesCSV(f) }},
			{"PoresFile", func(f *os.File) porenet.NetworkManipulator { return porenet.WritePoresCSV(f) }},
		} {
			path, err := checkOutputFile(Cfg.GetString(out.key))
			if err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := net.Run(out.m(f)); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a displacement simulation.",
	Long: `run performs a displacement simulation on a freshly generated
network. Use the subcommands specified below to choose a run mode.`,
	DisableAutoGenTag: true,
}

// steadyCmd runs the quasi-static displacement stages.
var steadyCmd = &cobra.Command{
	Use:   "steady",
	Short: "Run the quasi-static displacement stages.",
	Long: `steady runs the configured sequence of quasi-static displacement
stages (primary drainage through secondary drainage) and records capillary
pressure and relative permeability against water saturation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := buildNetwork()
		if err != nil {
			return err
		}
		return runAndOutput(net, porenet.SteadyState(logrus.StandardLogger().Writer()))
	},
	DisableAutoGenTag: true,
}

// unsteadyCmd runs the dynamic water injection.
var unsteadyCmd = &cobra.Command{
	Use:   "unsteady",
	Short: "Run the dynamic water injection.",
	Long: `unsteady runs a constant-rate water injection with explicit
time stepping and records the saturation history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := buildNetwork()
		if err != nil {
			return err
		}
		return runAndOutput(net, porenet.UnsteadyState(logrus.StandardLogger().Writer()))
	},
	DisableAutoGenTag: true,
}

// tracerCmd runs the passive tracer transport.
var tracerCmd = &cobra.Command{
	Use:   "tracer",
	Short: "Run the passive tracer transport.",
	Long: `tracer advects a passive tracer through the connected oil phase
of a freshly generated, oil-filled network.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := buildNetwork()
		if err != nil {
			return err
		}
		return runAndOutput(net, porenet.TracerFlow(logrus.StandardLogger().Writer()))
	},
	DisableAutoGenTag: true,
}

func buildNetwork() (*porenet.Network, error) {
	config, err := NetworkConfig(Cfg)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"lattice": fmt.Sprintf("%d×%d×%d", config.Nx, config.Ny, config.Nz),
		"seed":    config.Seed,
	}).Info("generating network")
	return porenet.NewNetwork(config)
}

// runSimulation executes sim on a worker goroutine while the main
// goroutine listens for an interrupt. An interrupt requests cooperative
// cancellation; the simulation stops at its next step boundary and the
// results gathered so far are still written out.
func runSimulation(net *porenet.Network, sim porenet.NetworkManipulator) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	done := make(chan error, 1)
	go func() { done <- net.Run(sim) }()
	for {
		select {
		case <-interrupt:
			logrus.Info("interrupt received, stopping the simulation")
			net.Context().RequestCancel()
		case err := <-done:
			return err
		}
	}
}

// runAndOutput runs the simulation manipulator, then writes the history
// CSV and, if configured, the saved network state. A canceled run keeps
// its partial history.
func runAndOutput(net *porenet.Network, sim porenet.NetworkManipulator) error {
	if err := runSimulation(net, sim); err != nil {
		if !errors.Is(err, porenet.ErrCanceled) {
			return err
		}
		logrus.Warn("simulation canceled, writing partial results")
	}

	outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
	if err != nil {
		return err
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	if err := net.Run(porenet.WriteHistory(f)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logrus.WithField("file", outputFile).Info("history written")

	if path := Cfg.GetString("NetworkFile"); path != "" {
		f, err := os.Create(os.ExpandEnv(path))
		if err != nil {
			return err
		}
		if err := net.Run(porenet.Save(f)); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logrus.WithField("file", path).Info("network state saved")
	}

	s := net.Summary()
	logrus.WithFields(logrus.Fields{
		"samples": s.Samples,
		"finalSw": s.FinalSw,
		"maxPc":   s.MaxPc,
	}).Info("simulation finished")
	return nil
}
