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
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Diagnostics counts the non-fatal problems encountered during a
// simulation. The counters are updated atomically.
type Diagnostics struct {
	// DensityOutOfBounds counts bulk densities outside of the range
	// of component densities.
	DensityOutOfBounds int64

	// NonFiniteEvaporation counts evaporated fractions that were NaN or
	// infinite and had to be clamped.
	NonFiniteEvaporation int64

	// VelocityOutOfRange counts velocities outside of the range of the
	// buoyancy closure.
	VelocityOutOfRange int64
}

// Snapshot returns a copy of the counters.
func (g *Diagnostics) Snapshot() Diagnostics {
	return Diagnostics{
		DensityOutOfBounds:   atomic.LoadInt64(&g.DensityOutOfBounds),
		NonFiniteEvaporation: atomic.LoadInt64(&g.NonFiniteEvaporation),
		VelocityOutOfRange:   atomic.LoadInt64(&g.VelocityOutOfRange),
	}
}

func (d *Domain) fields(p *Particle) logrus.Fields {
	return logrus.Fields{
		"particle": p.ID,
		"step":     d.Step,
		"time":     d.Time,
	}
}

func (d *Domain) densityOutOfBounds(p *Particle, rho, lo, hi float64) {
	atomic.AddInt64(&d.Diagnostics.DensityOutOfBounds, 1)
	d.Logger().WithFields(d.fields(p)).WithFields(logrus.Fields{
		"density": rho,
		"min":     lo,
		"max":     hi,
	}).Warn("oil density outside of component density range")
}

func (d *Domain) nonFiniteEvaporation(p *Particle, n int, evaporated []float64) {
	atomic.AddInt64(&d.Diagnostics.NonFiniteEvaporation, int64(n))
	d.Logger().WithFields(d.fields(p)).WithFields(logrus.Fields{
		"components": n,
		"evaporated": evaporated,
	}).Warn("non-finite evaporated fraction clamped")
}

func (d *Domain) velocityOutOfRange(p *Particle, density, diameter float64) {
	atomic.AddInt64(&d.Diagnostics.VelocityOutOfRange, 1)
	d.Logger().WithFields(d.fields(p)).WithFields(logrus.Fields{
		"density":  density,
		"diameter": diameter,
	}).Debug("droplet outside of buoyancy closure range")
}
