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


// Package trackio reads the host forcing that drives an oil simulation and
// writes droplet tracks, both as NetCDF files.
package trackio

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/oilplume"
)

// FillValue marks missing data in the files written by this package.
const FillValue = -999.

// Names of the variables in a forcing file. Each of the time-varying
// variables has dimensions (time, particle).
var forcingVars = []string{"x", "y", "depth", "temp", "salt"}

var forcingDescriptions = map[string]string{
	"x":            "Particle easting",
	"y":            "Particle northing",
	"depth":        "Particle vertical position, negative below the surface",
	"temp":         "Ambient water temperature",
	"salt":         "Ambient water salinity",
	"time":         "Simulation time",
	"release_time": "Time at which the particle enters the water",
	"bounded":      "1 if the particle is inside of the model domain, otherwise 0",
}

var forcingUnits = map[string]string{
	"x":            "m",
	"y":            "m",
	"depth":        "m",
	"temp":         "°C",
	"salt":         "PSU",
	"time":         "s",
	"release_time": "s",
	"bounded":      "-",
}

// Forcing holds the particle positions and ambient conditions calculated
// by a host circulation model. Record 0 is the state at the beginning of
// the simulation and record s+1 is the state at the end of time step s.
type Forcing struct {
	times   []float64
	release []float64

	// ambient is indexed by [record][particle].
	ambient oilplume.AmbientSeries
}

// ReadForcing reads host forcing from the NetCDF data in r. The file must
// have dimensions "time" and "particle", (time, particle) variables
// "x", "y", "depth", "temp", and "salt", a (time) variable "time" with
// evenly spaced times, and a (particle) variable "release_time". It may
// also have a (time, particle) integer variable "bounded"; if it does not,
// all particles are within the domain.
func ReadForcing(r cdf.ReaderWriterAt) (*Forcing, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("trackio: opening forcing file: %v", err)
	}
	times, err := readFloats(f, "time")
	if err != nil {
		return nil, err
	}
	release, err := readFloats(f, "release_time")
	if err != nil {
		return nil, err
	}
	nt, np := len(times), len(release)
	if nt < 2 {
		return nil, fmt.Errorf("trackio: forcing needs at least 2 time records but has %d", nt)
	}
	dt := times[1] - times[0]
	if !(dt > 0) {
		return nil, fmt.Errorf("trackio: forcing time step %g must be positive", dt)
	}
	for i := 2; i < nt; i++ {
		if math.Abs(times[i]-times[i-1]-dt) > 1.e-6*dt {
			return nil, fmt.Errorf("trackio: forcing times must be evenly spaced; record %d is at %g", i, times[i])
		}
	}

	data := make(map[string][]float64)
	for _, v := range forcingVars {
		if err := checkShape(f, v, nt, np); err != nil {
			return nil, err
		}
		if data[v], err = readFloats(f, v); err != nil {
			return nil, err
		}
	}
	var bounded []int32
	if hasVariable(f, "bounded") {
		if err := checkShape(f, "bounded", nt, np); err != nil {
			return nil, err
		}
		if bounded, err = readInts(f, "bounded"); err != nil {
			return nil, err
		}
	}

	s := make(oilplume.AmbientSeries, nt)
	for i := range s {
		s[i] = make([]oilplume.Ambient, np)
		for j := range s[i] {
			k := i*np + j
			s[i][j] = oilplume.Ambient{
				X:       data["x"][k],
				Y:       data["y"][k],
				Depth:   data["depth"][k],
				Temp:    data["temp"][k],
				Salt:    data["salt"][k],
				Bounded: bounded == nil || bounded[k] != 0,
			}
		}
	}
	return &Forcing{times: times, release: release, ambient: s}, nil
}

// OpenForcing reads host forcing from the named file.
func OpenForcing(filename string) (*Forcing, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("trackio: opening forcing file: %v", err)
	}
	defer f.Close()
	return ReadForcing(f)
}

// Ambient implements oilplume.AmbientSource. It returns the conditions
// at the end of time step step.
func (f *Forcing) Ambient(step, particle int) (oilplume.Ambient, error) {
	return f.ambient.Ambient(step+1, particle)
}

// Start returns the conditions of each particle at the beginning of the
// simulation.
func (f *Forcing) Start() []oilplume.Ambient { return f.ambient[0] }

// Initialize returns a function that sets the position and ambient
// conditions of every owned particle at time level d.NF to those at the
// beginning of the simulation. It should be one of the InitFuncs.
func (f *Forcing) Initialize() oilplume.DomainManipulator {
	return func(d *oilplume.Domain) error {
		start := f.Start()
		if len(start) != len(d.Particles) {
			return fmt.Errorf("trackio: forcing has %d particles but domain has %d", len(start), len(d.Particles))
		}
		for _, p := range d.Owned() {
			a := start[p.ID]
			s := &p.Track[d.NF]
			s.X, s.Y, s.Depth = a.X, a.Y, a.Depth
			s.Temp, s.Salt = a.Temp, a.Salt
			p.Bounded = a.Bounded
		}
		return nil
	}
}

// StartTime returns the simulation time [s] of the first record.
func (f *Forcing) StartTime() float64 { return f.times[0] }

// Dt returns the time step [s].
func (f *Forcing) Dt() float64 { return f.times[1] - f.times[0] }

// NumSteps returns the number of time steps the forcing covers.
func (f *Forcing) NumSteps() int { return len(f.times) - 1 }

// ReleaseTimes returns the release time [s] of each particle.
func (f *Forcing) ReleaseTimes() []float64 { return f.release }

// WriteForcing writes host forcing to a new NetCDF file, where series is
// indexed by [record][particle].
func WriteForcing(filename string, times, releaseTimes []float64, series oilplume.AmbientSeries) error {
	nt, np := len(times), len(releaseTimes)
	if len(series) != nt {
		return fmt.Errorf("trackio: %d forcing records but %d times", len(series), nt)
	}
	h := cdf.NewHeader([]string{"time", "particle"}, []int{nt, np})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddVariable("release_time", []string{"particle"}, []float64{0})
	for _, v := range forcingVars {
		h.AddVariable(v, []string{"time", "particle"}, []float64{0})
	}
	h.AddVariable("bounded", []string{"time", "particle"}, []int32{0})
	for _, v := range append([]string{"time", "release_time", "bounded"}, forcingVars...) {
		h.AddAttribute(v, "description", forcingDescriptions[v])
		h.AddAttribute(v, "units", forcingUnits[v])
	}
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("trackio: creating forcing file: %v", err)
	}

	ff, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("trackio: creating forcing file: %v", err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return fmt.Errorf("trackio: creating forcing file: %v", err)
	}

	data := make(map[string][]float64)
	bounded := make([]int32, 0, nt*np)
	for i, rec := range series {
		if len(rec) != np {
			ff.Close()
			return fmt.Errorf("trackio: forcing record %d has %d particles instead of %d", i, len(rec), np)
		}
		for _, a := range rec {
			data["x"] = append(data["x"], a.X)
			data["y"] = append(data["y"], a.Y)
			data["depth"] = append(data["depth"], a.Depth)
			data["temp"] = append(data["temp"], a.Temp)
			data["salt"] = append(data["salt"], a.Salt)
			var b int32
			if a.Bounded {
				b = 1
			}
			bounded = append(bounded, b)
		}
	}
	data["time"] = times
	data["release_time"] = releaseTimes
	for _, v := range append([]string{"time", "release_time"}, forcingVars...) {
		if err := writeWhole(f, v, data[v]); err != nil {
			ff.Close()
			return err
		}
	}
	if err := writeWhole(f, "bounded", bounded); err != nil {
		ff.Close()
		return err
	}
	return ff.Close()
}
