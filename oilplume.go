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

// Package oilplume simulates the physics of oil droplets released into the
// ocean. For every droplet tracked by a host particle model, it evolves the
// oil composition, bulk density, and diameter as the droplet weathers at the
// surface, and calculates the buoyant vertical velocity that the host adds
// to the droplet's motion.
//
// The state of a simulation is held in a Domain and evolved by a series of
// DomainManipulators, which in turn apply ParticleManipulators to each of the
// particles owned by the calling worker.
package oilplume

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/oilplume/science/buoyancy"
	"github.com/spatialmodel/oilplume/science/evaporation"
)

// Version gives the version number.
const Version = "0.1.0"

// DomainManipulator is a class of functions that operate on the entire
// simulation domain.
type DomainManipulator func(d *Domain) error

// ParticleManipulator is a class of functions that operate on a single
// particle.
type ParticleManipulator func(d *Domain, p *Particle)

// Domain holds the state of a simulation on one worker.
type Domain struct {
	Config Config

	// Particles holds every particle in the simulation, whether or not it
	// is owned by this worker.
	Particles []*Particle

	// Lstr and Lend bound the range [Lstr, Lend) of particles owned by
	// this worker.
	Lstr, Lend int

	Dt   float64 // time step [s]
	Time float64 // current simulation time [s]

	// Step is the index of the current time step, and NumSteps is the
	// number of steps to run.
	Step, NumSteps int

	// Predictor is true during the predictor stage of a time step and
	// false during the corrector stage.
	Predictor bool

	// NF is the time level holding the current state and NFP1 the time
	// level being calculated.
	NF, NFP1 int

	// Velocity is the closure used to calculate buoyant velocities.
	Velocity buoyancy.Closure

	// Evaporation is the surface weathering model.
	Evaporation evaporation.Fingas

	Diagnostics Diagnostics

	// Log receives diagnostic messages. If nil, the standard logrus
	// logger is used.
	Log logrus.FieldLogger

	// InitFuncs are functions to be called in the given order
	// at the beginning of the simulation.
	InitFuncs []DomainManipulator

	// RunFuncs are functions to be called in the given order repeatedly
	// until "Done" is true. Therefore, the simulation will not end until
	// one of the RunFuncs sets "Done" to true.
	RunFuncs []DomainManipulator

	// CleanupFuncs are functions to be called in the given order after
	// the simulation has completed.
	CleanupFuncs []DomainManipulator

	// Done specifies whether the simulation is finished.
	Done bool
}

// NewDomain returns a domain with the given configuration that owns all of
// the particles released at releaseTimes. The time levels start at 0 (current)
// and 1 (next).
func NewDomain(cfg Config, releaseTimes []float64) (*Domain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v, err := buoyancy.New(cfg.Closure)
	if err != nil {
		return nil, err
	}
	return &Domain{
		Config:      cfg,
		Particles:   NewParticles(releaseTimes),
		Lend:        len(releaseTimes),
		NF:          0,
		NFP1:        1,
		Velocity:    v,
		Evaporation: evaporation.DefaultFingas(),
	}, nil
}

// Owned returns the particles owned by this worker.
func (d *Domain) Owned() []*Particle {
	return d.Particles[d.Lstr:d.Lend]
}

// Logger returns d.Log, or the standard logger if d.Log is nil.
func (d *Domain) Logger() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

// Init initializes the simulation by running d.InitFuncs.
func (d *Domain) Init() error {
	for _, f := range d.InitFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Run carries out a simulation by running d.RunFuncs until d.Done is true.
func (d *Domain) Run() error {
	for !d.Done {
		for _, f := range d.RunFuncs {
			if err := f(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running d.CleanupFuncs.
func (d *Domain) Cleanup() error {
	for _, f := range d.CleanupFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Partition returns the contiguous range [lstr, lend) of n particles owned by
// worker rank in a group of size workers. Ranges differ in length by at
// most one particle.
func Partition(n, rank, size int) (lstr, lend int, err error) {
	if size <= 0 || rank < 0 || rank >= size {
		return 0, 0, fmt.Errorf("oilplume: invalid rank %d for group of size %d", rank, size)
	}
	chunk, rem := n/size, n%size
	lstr = rank*chunk + min(rank, rem)
	lend = lstr + chunk
	if rank < rem {
		lend++
	}
	return lstr, lend, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
