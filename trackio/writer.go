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


package trackio

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/oilplume"
)

// trackVars are the (time, particle) variables in a track file.
var trackVars = []string{"density", "diameter", "w", "surface_time", "depth", "temp", "salt"}

var trackDescriptions = map[string]string{
	"time":         "Simulation time at the end of the time step",
	"particle_id":  "Index of the particle in the full simulation",
	"density":      "Bulk oil density",
	"diameter":     "Droplet diameter",
	"w":            "Buoyant vertical velocity, positive upward",
	"surface_time": "Cumulative time spent in the surface weathering band",
	"depth":        "Particle vertical position, negative below the surface",
	"temp":         "Ambient water temperature",
	"salt":         "Ambient water salinity",
	"fractions":    "Mass fraction of each oil component",
}

var trackUnits = map[string]string{
	"time":         "s",
	"particle_id":  "-",
	"density":      "kg m-3",
	"diameter":     "m",
	"w":            "m s-1",
	"surface_time": "s",
	"depth":        "m",
	"temp":         "°C",
	"salt":         "PSU",
	"fractions":    "fraction",
}

// Writer writes droplet tracks to a NetCDF file. Unreleased particles
// and records that are never written hold FillValue.
type Writer struct {
	ff *os.File
	f  *cdf.File

	records, particles, components int
	next                           int
}

// NumRecords returns the number of records written by Output over a
// simulation of numSteps time steps.
func NumRecords(numSteps, interval int) int {
	if interval < 1 {
		interval = 1
	}
	if numSteps < 1 {
		return 0
	}
	n := (numSteps-1)/interval + 1
	if (numSteps-1)%interval != 0 {
		n++ // final step
	}
	return n
}

// CreateWriter creates a track file with room for the given number of
// records of the particles with the given ids, each of which has the
// named oil components.
func CreateWriter(filename string, records int, ids []int, components []string) (*Writer, error) {
	np, nc := len(ids), len(components)
	if records < 1 || np < 1 || nc < 1 {
		return nil, fmt.Errorf("trackio: invalid track file size: %d records, %d particles, %d components",
			records, np, nc)
	}
	h := cdf.NewHeader([]string{"time", "particle", "component"}, []int{records, np, nc})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddVariable("particle_id", []string{"particle"}, []int32{0})
	for _, v := range trackVars {
		h.AddVariable(v, []string{"time", "particle"}, []float64{0})
	}
	h.AddVariable("fractions", []string{"time", "particle", "component"}, []float64{0})
	for _, v := range append([]string{"time", "particle_id", "fractions"}, trackVars...) {
		h.AddAttribute(v, "description", trackDescriptions[v])
		h.AddAttribute(v, "units", trackUnits[v])
	}
	for _, v := range append([]string{"time", "fractions"}, trackVars...) {
		h.AddAttribute(v, "_FillValue", []float64{FillValue})
	}
	h.AddAttribute("fractions", "components", strings.Join(components, ","))
	h.Define()
	for _, err := range h.Check() {
		return nil, fmt.Errorf("trackio: creating track file: %v", err)
	}

	ff, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("trackio: creating track file: %v", err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return nil, fmt.Errorf("trackio: creating track file: %v", err)
	}
	for _, v := range append([]string{"time", "fractions"}, trackVars...) {
		if err := f.Fill(v); err != nil {
			ff.Close()
			return nil, fmt.Errorf("trackio: filling variable %s: %v", v, err)
		}
	}
	id32 := make([]int32, np)
	for i, id := range ids {
		id32[i] = int32(id)
	}
	if err := writeWhole(f, "particle_id", id32); err != nil {
		ff.Close()
		return nil, err
	}
	return &Writer{ff: ff, f: f, records: records, particles: np, components: nc}, nil
}

// Write writes the state at time level d.NFP1 of the particles owned by d
// as the next record.
func (w *Writer) Write(d *oilplume.Domain) error {
	owned := d.Owned()
	if len(owned) != w.particles {
		return fmt.Errorf("trackio: track file is for %d particles but domain owns %d", w.particles, len(owned))
	}
	if w.next >= w.records {
		return fmt.Errorf("trackio: track file is full (%d records)", w.records)
	}
	data := make(map[string][]float64, len(trackVars))
	for _, v := range trackVars {
		data[v] = make([]float64, w.particles)
	}
	fractions := make([]float64, w.particles*w.components)
	for i, p := range owned {
		if !p.Released {
			for _, v := range trackVars {
				data[v][i] = FillValue
			}
			for j := 0; j < w.components; j++ {
				fractions[i*w.components+j] = FillValue
			}
			continue
		}
		s := p.Track[d.NFP1]
		data["density"][i] = s.Density
		data["diameter"][i] = s.Diameter
		data["w"][i] = s.W
		data["surface_time"][i] = s.SurfaceTime
		data["depth"][i] = s.Depth
		data["temp"][i] = s.Temp
		data["salt"][i] = s.Salt
		for j := 0; j < w.components; j++ {
			fractions[i*w.components+j] = FillValue
			if j < len(s.Fractions) {
				fractions[i*w.components+j] = s.Fractions[j]
			}
		}
	}
	if err := writeRecord(w.f, "time", w.next, []float64{d.Time + d.Dt}); err != nil {
		return err
	}
	for _, v := range trackVars {
		if err := writeRecord(w.f, v, w.next, data[v]); err != nil {
			return err
		}
	}
	if err := writeRecord(w.f, "fractions", w.next, fractions); err != nil {
		return err
	}
	w.next++
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.ff.Close()
}

// Output returns a function that writes the newly calculated particle
// states to w every interval time steps and at the final time step.
// It should be placed before oilplume.AdvanceTime in the RunFuncs.
func Output(w *Writer, interval int) oilplume.DomainManipulator {
	if interval < 1 {
		interval = 1
	}
	return func(d *oilplume.Domain) error {
		if d.Step%interval != 0 && d.Step != d.NumSteps-1 {
			return nil
		}
		return w.Write(d)
	}
}
