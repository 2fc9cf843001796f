/*
Copyright © 2020 the oilplume authors.
This file is part of oilplume.

oilplume is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

oilplume is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with oilplume.  If not, see <http://www.gnu.org/licenses/>.*/


// Package oilputil contains the command-line interface for oilplume.
package oilputil

import (
	"fmt"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/oilplume"
	"github.com/spatialmodel/oilplume/science/buoyancy"
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
	simulation := []*pflag.FlagSet{runCmd.Flags(), workerCmd.Flags()}
	sampling := []*pflag.FlagSet{runCmd.Flags(), workerCmd.Flags(), sampleCmd.Flags()}

	// Options are the configuration options available to oilplume.
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
			name: "log_file",
			usage: `
              log_file specifies the path to the log file. If it is not
              specified, the log is written next to the output file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "forcing",
			usage: `
              forcing specifies the NetCDF file holding particle positions
              and ambient conditions from the host circulation model.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   simulation,
		},
		{
			name: "output",
			usage: `
              output specifies the NetCDF file to write droplet tracks to.
              When there is more than one worker, the rank of each worker
              is added to the file name.`,
			shorthand:  "o",
			defaultVal: "oilplume_tracks.nc",
			flagsets:   simulation,
		},
		{
			name: "eulerian_output",
			usage: `
              eulerian_output specifies the NetCDF file to write gridded oil
              concentrations to at the end of the simulation. Leave it empty
              to skip gridding.`,
			defaultVal: "",
			flagsets:   simulation,
		},
		{
			name: "dt",
			usage: `
              dt is the time step [s]. If it is greater than zero it must match
              the spacing of the forcing records.`,
			defaultVal: 0.,
			flagsets:   simulation,
		},
		{
			name: "end_time",
			usage: `
              end_time is the simulation time [s] at which to stop. If it is zero,
              the simulation runs to the end of the forcing.`,
			defaultVal: 0.,
			flagsets:   simulation,
		},
		{
			name: "output_interval",
			usage: `
              output_interval is the number of time steps between
              track output records and progress messages.`,
			defaultVal: 1,
			flagsets:   simulation,
		},
		{
			name: "diagnostics_period",
			usage: `
              diagnostics_period is the simulation time [s] between
              log messages reporting the diagnostic counters.`,
			defaultVal: 3600.,
			flagsets:   simulation,
		},
		{
			name: "closure",
			usage: `
              closure selects the buoyant velocity closure: either
              "` + buoyancy.TwoEquationName + `" or "` + buoyancy.IntegratedName + `".`,
			defaultVal: buoyancy.TwoEquationName,
			flagsets:   simulation,
		},
		{
			name: "surface_band",
			usage: `
              surface_band is the depth [m] above which droplets weather.`,
			defaultVal: 5.,
			flagsets:   simulation,
		},
		{
			name: "min_diameter",
			usage: `
              min_diameter is the smallest allowed droplet diameter [m].`,
			defaultVal: 2.e-7,
			flagsets:   sampling,
		},
		{
			name: "gravity",
			usage: `
              gravity is the gravitational acceleration [m/s²].`,
			defaultVal: buoyancy.Gravity,
			flagsets:   simulation,
		},
		{
			name: "mean_diameter",
			usage: `
              mean_diameter is the mean [m] of the Gamma distribution
              initial droplet diameters are drawn from.`,
			defaultVal: 3.e-4,
			flagsets:   sampling,
		},
		{
			name: "gamma_shape",
			usage: `
              gamma_shape is the shape parameter of the Gamma distribution
              initial droplet diameters are drawn from.`,
			defaultVal: 4.94,
			flagsets:   sampling,
		},
		{
			name: "sampler_retries",
			usage: `
              sampler_retries is the maximum number of candidates drawn
              for each initial droplet diameter.`,
			defaultVal: 10,
			flagsets:   sampling,
		},
		{
			name: "component_densities",
			usage: `
              component_densities are the reference densities [kg/m³] of
              the saturates, aromatics, and resins+asphaltenes components.`,
			defaultVal: []float64{800, 950, 1050},
			flagsets:   sampling,
		},
		{
			name: "component_table",
			usage: `
              component_table is the path to a TOML file listing the oil
              components, which overrides component_densities. Each
              component is given as a [[component]] table with name and
              density keys.`,
			defaultVal: "",
			flagsets:   sampling,
		},
		{
			name: "aromatics_mean",
			usage: `
              aromatics_mean is the mean initial mass fraction of aromatics.`,
			defaultVal: 0.16,
			flagsets:   sampling,
		},
		{
			name: "aromatics_half_width",
			usage: `
              aromatics_half_width is the half-width of the uniform distribution
              of initial aromatics fractions.`,
			defaultVal: 0.075,
			flagsets:   sampling,
		},
		{
			name: "resins_mean",
			usage: `
              resins_mean is the mean initial mass fraction of resins+asphaltenes.`,
			defaultVal: 0.10,
			flagsets:   sampling,
		},
		{
			name: "resins_half_width",
			usage: `
              resins_half_width is the half-width of the uniform distribution
              of initial resins+asphaltenes fractions.`,
			defaultVal: 0.04,
			flagsets:   sampling,
		},
		{
			name: "seed",
			usage: `
              seed is the random number seed for initial droplet properties.`,
			defaultVal: 1,
			flagsets:   sampling,
		},
		{
			name: "workers",
			usage: `
              workers is the number of in-process workers to divide the
              particles among.`,
			shorthand:  "w",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "coordinator",
			usage: `
              coordinator is the address of the coordinating worker of a
              distributed group.`,
			defaultVal: ":6061",
			flagsets:   simulation,
		},
		{
			name: "group_size",
			usage: `
              group_size is the number of workers in a distributed group. If it
              is greater than one, run starts the coordinator and the remaining
              workers are started with the worker command.`,
			defaultVal: 1,
			flagsets:   simulation,
		},
		{
			name: "rank",
			usage: `
              rank is the rank of this worker in a distributed group,
              between 1 and group_size-1.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{workerCmd.Flags()},
		},
		{
			name: "grid.x0",
			usage: `
              grid.x0 is the X coordinate of the lower-left corner of the
              Eulerian output grid.`,
			defaultVal: 0.,
			flagsets:   simulation,
		},
		{
			name: "grid.y0",
			usage: `
              grid.y0 is the Y coordinate of the lower-left corner of the
              Eulerian output grid.`,
			defaultVal: 0.,
			flagsets:   simulation,
		},
		{
			name: "grid.dx",
			usage: `
              grid.dx is the X edge length of Eulerian grid cells.`,
			defaultVal: 1000.,
			flagsets:   simulation,
		},
		{
			name: "grid.dy",
			usage: `
              grid.dy is the Y edge length of Eulerian grid cells.`,
			defaultVal: 1000.,
			flagsets:   simulation,
		},
		{
			name: "grid.nx",
			usage: `
              grid.nx is the number of Eulerian grid cells in the X direction.`,
			defaultVal: 10,
			flagsets:   simulation,
		},
		{
			name: "grid.ny",
			usage: `
              grid.ny is the number of Eulerian grid cells in the Y direction.`,
			defaultVal: 10,
			flagsets:   simulation,
		},
		{
			name: "grid.layer_edges",
			usage: `
              grid.layer_edges are the depths [m] of the Eulerian grid layer
              boundaries, starting at the surface and decreasing.`,
			defaultVal: []float64{0, -5, -20, -100, -500},
			flagsets:   simulation,
		},
		{
			name: "grid.droplets_per_particle",
			usage: `
              grid.droplets_per_particle is the number of droplets each
              particle represents when calculating concentrations.`,
			defaultVal: 1.,
			flagsets:   simulation,
		},
		{
			name: "sample.n",
			usage: `
              sample.n is the number of droplets to draw.`,
			shorthand:  "n",
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{sampleCmd.Flags()},
		},
		{
			name: "sample.plot",
			usage: `
              sample.plot is the path of a PNG file to save a histogram
              of droplet diameters to. Leave it empty to skip the plot.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sampleCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("OILPLUME")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case []float64:
				set.Float64SliceP(option.name, option.shorthand, v, option.usage)
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
	Root.AddCommand(runCmd)
	Root.AddCommand(workerCmd)
	Root.AddCommand(sampleCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("oilplume: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "oilplume",
	Short: "Oil droplet physics for particle tracking models.",
	Long: `oilplume calculates how oil droplets released into the ocean weather
at the surface and how fast they rise or sink, for particles whose positions
and surroundings are given by a host circulation model.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'OILPLUME_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of oilplume.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("oilplume v%s\n", oilplume.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: `run runs a simulation driven by a forcing file. With --workers the
particles are divided among in-process workers. With --group_size greater
than one, run starts the coordinator of a distributed group, and the other
members are started with the worker command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := runConfig(Cfg, 0)
		if err != nil {
			return err
		}
		return Run(cmd, c)
	},
	DisableAutoGenTag: true,
}

// workerCmd is a command that starts a member of a distributed group.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start a worker in a distributed group.",
	Long: `worker joins the distributed group coordinated by the run command at
the --coordinator address and simulates its share of the particles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := runConfig(Cfg, Cfg.GetInt("rank"))
		if err != nil {
			return err
		}
		if c.Rank < 1 || c.Rank >= c.GroupSize {
			return fmt.Errorf("oilplume: worker rank %d must be between 1 and group_size-1 (%d)", c.Rank, c.GroupSize-1)
		}
		return Run(cmd, c)
	},
	DisableAutoGenTag: true,
}

// sampleCmd is a command that summarizes the initial droplet distribution.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Sample initial droplet properties.",
	Long: `sample draws initial droplet properties from the configured
distributions and prints summary statistics, optionally saving a histogram
of droplet diameters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := samplerConfig(Cfg)
		if err != nil {
			return err
		}
		return Sample(cmd, cfg, uint64(Cfg.GetInt("seed")), Cfg.GetInt("sample.n"), Cfg.GetString("sample.plot"))
	},
	DisableAutoGenTag: true,
}
