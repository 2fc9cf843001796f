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

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Ambient holds the host's description of a particle's surroundings
// at one time step.
type Ambient struct {
	X, Y, Depth float64
	Temp, Salt  float64

	// Bounded is false if the particle has left the model domain.
	Bounded bool
}

// AmbientSource provides the ambient conditions at each particle's location.
type AmbientSource interface {
	// Ambient returns the conditions around the given particle
	// at the given time step.
	Ambient(step, particle int) (Ambient, error)
}

// AmbientSeries is an AmbientSource held in memory, indexed by
// [step][particle].
type AmbientSeries [][]Ambient

// Ambient implements AmbientSource.
func (s AmbientSeries) Ambient(step, particle int) (Ambient, error) {
	if step < 0 || step >= len(s) || particle < 0 || particle >= len(s[step]) {
		return Ambient{}, fmt.Errorf("oilplume: no ambient conditions for particle %d at step %d", particle, step)
	}
	return s[step][particle], nil
}

// LoadAmbient returns a function that copies the ambient conditions from src
// into time level d.NFP1 of each owned particle.
func LoadAmbient(src AmbientSource) DomainManipulator {
	return func(d *Domain) error {
		for _, p := range d.Owned() {
			a, err := src.Ambient(d.Step, p.ID)
			if err != nil {
				return err
			}
			s := &p.Track[d.NFP1]
			s.X, s.Y, s.Depth = a.X, a.Y, a.Depth
			s.Temp, s.Salt = a.Temp, a.Salt
			p.Bounded = a.Bounded
		}
		return nil
	}
}

// Calculations returns a function that concurrently runs a series of
// calculations on all of the particles owned by this worker. Particles are
// independent of each other, so no locking is needed.
func Calculations(calculators ...ParticleManipulator) DomainManipulator {
	nprocs := runtime.GOMAXPROCS(0)
	return func(d *Domain) error {
		owned := d.Owned()
		var wg sync.WaitGroup
		wg.Add(nprocs)
		for pp := 0; pp < nprocs; pp++ {
			go func(pp int) {
				for ii := pp; ii < len(owned); ii += nprocs {
					for _, f := range calculators {
						f(d, owned[ii])
					}
				}
				wg.Done()
			}(pp)
		}
		wg.Wait()
		return nil
	}
}

// AdvanceTime moves the simulation forward by one time step: the time level
// just calculated becomes the current one. The simulation is done after
// d.NumSteps steps.
func AdvanceTime() DomainManipulator {
	return func(d *Domain) error {
		d.NF = d.NFP1
		d.NFP1 = (d.NFP1 + 1) % NumTimeLevels
		d.Time += d.Dt
		d.Step++
		if d.Step >= d.NumSteps {
			d.Done = true
		}
		return nil
	}
}

// RunPeriodically runs f when the specified period [s] of simulation time
// has passed since the last time it was run, and at the end of the
// simulation. It should be placed before AdvanceTime in the RunFuncs.
func RunPeriodically(period float64, f DomainManipulator) DomainManipulator {
	var sinceLast float64
	first := true
	return func(d *Domain) error {
		last := d.Step == d.NumSteps-1
		if first || sinceLast >= period || last {
			first = false
			sinceLast = d.Dt
			return f(d)
		}
		sinceLast += d.Dt
		return nil
	}
}

// Log returns a function that logs the progress of the simulation
// every interval steps.
func Log(l logrus.FieldLogger, interval int) DomainManipulator {
	startTime := time.Now()
	stepTime := time.Now()
	if interval < 1 {
		interval = 1
	}
	return func(d *Domain) error {
		if d.Step%interval != 0 && d.Step != d.NumSteps-1 {
			return nil
		}
		var active int
		for _, p := range d.Owned() {
			if p.Released && p.Bounded {
				active++
			}
		}
		diag := d.Diagnostics.Snapshot()
		l.WithFields(logrus.Fields{
			"step":      d.Step,
			"hours":     fmt.Sprintf("%.3g", d.Time/3600),
			"walltime":  time.Since(startTime).Round(time.Millisecond).String(),
			"Δwalltime": time.Since(stepTime).Round(time.Millisecond).String(),
			"active":    active,
			"warnings":  diag.DensityOutOfBounds + diag.NonFiniteEvaporation + diag.VelocityOutOfRange,
		}).Info("time step complete")
		stepTime = time.Now()
		return nil
	}
}
