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

package oilplume

import "github.com/spatialmodel/oilplume/science/mixing"

// NumTimeLevels is the number of rolling time levels of state held for
// each particle.
const NumTimeLevels = 5

// State is the state of a particle at one time level. The position and
// ambient conditions are set by the host; the remaining fields are
// calculated here.
type State struct {
	X, Y  float64 // horizontal position
	Depth float64 // vertical position [m], negative below the surface

	Temp float64 // ambient temperature [°C]
	Salt float64 // ambient salinity [PSU]

	// Fractions holds the mass fraction of each oil component.
	Fractions []float64

	Density  float64 // bulk oil density [kg/m³]
	Diameter float64 // droplet diameter [m]

	// W is the buoyant vertical velocity [m/s], positive upward.
	W float64

	// SurfaceTime is the cumulative time [s] the particle has spent in
	// the surface weathering band.
	SurfaceTime float64
}

// InitialOil holds the properties of a droplet at release. It does not
// change over the course of a simulation.
type InitialOil struct {
	Fractions []float64
	Densities []float64 // [kg/m³]
	Diameter  float64   // [m]
}

// Density returns the bulk density [kg/m³] of the droplet at release.
func (o *InitialOil) Density() float64 {
	return mixing.Density(o.Fractions, o.Densities)
}

// Particle is an oil droplet tracked by the host model.
type Particle struct {
	ID int

	// ReleaseTime is the simulation time [s] at which the particle
	// enters the water.
	ReleaseTime float64

	// Bounded is set by the host when the particle is inside of the
	// model domain. Particles that are not bounded are not updated.
	Bounded bool

	// Released is true once the particle has entered the water.
	Released bool

	Track [NumTimeLevels]State

	Initial *InitialOil
}

// NewParticles returns unreleased particles with the given release times.
func NewParticles(releaseTimes []float64) []*Particle {
	p := make([]*Particle, len(releaseTimes))
	for i, t := range releaseTimes {
		p[i] = &Particle{ID: i, ReleaseTime: t, Bounded: true}
	}
	return p
}

// seed sets every time level to the initial oil state and to the
// position and ambient conditions held in time level from.
func (p *Particle) seed(from int) {
	s := p.Track[from]
	s.Fractions = nil
	s.Density = p.Initial.Density()
	s.Diameter = p.Initial.Diameter
	s.W = 0
	s.SurfaceTime = 0
	for i := range p.Track {
		fractions := p.Track[i].Fractions
		p.Track[i] = s
		p.Track[i].Fractions = setFractions(fractions, p.Initial.Fractions)
	}
}

// setFractions copies src into dst, reusing the storage of dst when it
// is large enough.
func setFractions(dst, src []float64) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}
