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


package oilputil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/oilplume"
	"github.com/spatialmodel/oilplume/eulerian"
	"github.com/spatialmodel/oilplume/sampler"
	"github.com/spf13/cast"
)

// RunConfig holds the settings for a simulation run by one process.
type RunConfig struct {
	Forcing        string
	Output         string
	EulerianOutput string
	LogFile        string

	// Dt, if positive, is checked against the forcing time step, and
	// EndTime, if positive, ends the simulation early.
	Dt, EndTime float64

	OutputInterval int

	// DiagnosticsPeriod is the simulation time [s] between
	// diagnostics log messages.
	DiagnosticsPeriod float64

	Domain  oilplume.Config
	Sampler sampler.Config
	Seed    uint64

	// Grid is nil if there is no Eulerian output.
	Grid *eulerian.Grid

	// Workers is the number of in-process workers.
	Workers int

	// Coordinator is the address of rank 0 of a distributed group
	// of GroupSize workers, and Rank is the rank of this process.
	Coordinator     string
	Rank, GroupSize int
}

// runConfig reads the configuration for the worker with the given rank.
func runConfig(cfg *viper.Viper, rank int) (*RunConfig, error) {
	forcing := os.ExpandEnv(cfg.GetString("forcing"))
	if forcing == "" {
		return nil, fmt.Errorf("oilplume: you need to specify a forcing file")
	}
	output, err := checkOutputFile(cfg.GetString("output"))
	if err != nil {
		return nil, err
	}
	sc, components, err := samplerConfig(cfg)
	if err != nil {
		return nil, err
	}
	c := &RunConfig{
		Forcing:           forcing,
		Output:            output,
		LogFile:           checkLogFile(os.ExpandEnv(cfg.GetString("log_file")), output),
		Dt:                cfg.GetFloat64("dt"),
		EndTime:           cfg.GetFloat64("end_time"),
		OutputInterval:    cfg.GetInt("output_interval"),
		DiagnosticsPeriod: cfg.GetFloat64("diagnostics_period"),
		Domain: oilplume.Config{
			Components:  components,
			SurfaceBand: cfg.GetFloat64("surface_band"),
			MinDiameter: cfg.GetFloat64("min_diameter"),
			Closure:     cfg.GetString("closure"),
			Gravity:     cfg.GetFloat64("gravity"),
		},
		Sampler:     sc,
		Seed:        uint64(cfg.GetInt("seed")),
		Workers:     cfg.GetInt("workers"),
		Coordinator: os.ExpandEnv(cfg.GetString("coordinator")),
		Rank:        rank,
		GroupSize:   cfg.GetInt("group_size"),
	}
	if c.OutputInterval < 1 {
		return nil, fmt.Errorf("oilplume: output_interval=%d but should be >0", c.OutputInterval)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.GroupSize < 1 {
		c.GroupSize = 1
	}
	if c.GroupSize > 1 && c.Workers > 1 {
		return nil, fmt.Errorf("oilplume: workers and group_size cannot both be greater than 1")
	}
	if err := c.Domain.Validate(); err != nil {
		return nil, err
	}
	if eo := cfg.GetString("eulerian_output"); eo != "" {
		if c.EulerianOutput, err = checkOutputFile(eo); err != nil {
			return nil, err
		}
		if c.Grid, err = gridConfig(cfg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// samplerConfig reads the initial droplet distribution and the oil
// component table.
func samplerConfig(cfg *viper.Viper) (sampler.Config, oilplume.ComponentTable, error) {
	components, err := componentTable(cfg)
	if err != nil {
		return sampler.Config{}, nil, err
	}
	c := sampler.Config{
		ComponentDensities: components.Densities(),
		AromaticsMean:      cfg.GetFloat64("aromatics_mean"),
		AromaticsHalfWidth: cfg.GetFloat64("aromatics_half_width"),
		ResinsMean:         cfg.GetFloat64("resins_mean"),
		ResinsHalfWidth:    cfg.GetFloat64("resins_half_width"),
		MeanDiameter:       cfg.GetFloat64("mean_diameter"),
		Shape:              cfg.GetFloat64("gamma_shape"),
		MinDiameter:        cfg.GetFloat64("min_diameter"),
		MaxTries:           cfg.GetInt("sampler_retries"),
	}
	if err := c.Validate(); err != nil {
		return sampler.Config{}, nil, err
	}
	return c, components, nil
}

// componentFile is the layout of a component table file.
type componentFile struct {
	Component []oilplume.Component
}

// componentTable reads the oil components from the file named by the
// component_table option or, if there is none, from the
// component_densities option.
func componentTable(cfg *viper.Viper) (oilplume.ComponentTable, error) {
	var t oilplume.ComponentTable
	if path := os.ExpandEnv(cfg.GetString("component_table")); path != "" {
		var f componentFile
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("oilplume: problem reading component table: %v", err)
		}
		t = f.Component
	} else {
		rho, err := toFloat64SliceE(cfg.Get("component_densities"))
		if err != nil {
			return nil, fmt.Errorf("component_densities: %v", err)
		}
		t = oilplume.DefaultComponents()
		if len(rho) != len(t) {
			return nil, fmt.Errorf("oilplume: need %d component densities but have %d", len(t), len(rho))
		}
		for i := range t {
			t[i].Density = rho[i]
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// gridConfig reads the Eulerian output grid.
func gridConfig(cfg *viper.Viper) (*eulerian.Grid, error) {
	edges, err := toFloat64SliceE(cfg.Get("grid.layer_edges"))
	if err != nil {
		return nil, fmt.Errorf("grid.layer_edges: %v", err)
	}
	g := &eulerian.Grid{
		X0:                  cfg.GetFloat64("grid.x0"),
		Y0:                  cfg.GetFloat64("grid.y0"),
		Dx:                  cfg.GetFloat64("grid.dx"),
		Dy:                  cfg.GetFloat64("grid.dy"),
		Nx:                  cfg.GetInt("grid.nx"),
		Ny:                  cfg.GetInt("grid.ny"),
		LayerEdges:          edges,
		DropletsPerParticle: cfg.GetFloat64("grid.droplets_per_particle"),
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("parsing grid configuration: %v", err)
	}
	return g, nil
}

// toFloat64SliceE converts a configuration value to a float slice,
// accounting for the fact that it is a string if it was set from a
// command line argument.
func toFloat64SliceE(s interface{}) ([]float64, error) {
	switch v := s.(type) {
	case []float64:
		return v, nil
	case []interface{}:
		o := make([]float64, len(v))
		for i, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, err
			}
			o[i] = f
		}
		return o, nil
	case string:
		var o []float64
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type %T for float slice", s)
	}
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("oilplume: you need to specify an output file")
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("oilplume: the output file directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// rankFile adds the worker rank to a file name.
func rankFile(f string, rank int) string {
	ext := filepath.Ext(f)
	return fmt.Sprintf("%s.%d%s", strings.TrimSuffix(f, ext), rank, ext)
}
