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
	"math"

	"github.com/spatialmodel/oilplume/science/buoyancy"
	"github.com/spatialmodel/oilplume/science/evaporation"
	"github.com/spatialmodel/oilplume/science/seawater"
	"gonum.org/v1/gonum/floats"
)

// densityTolerance is the relative slack allowed when checking bulk
// densities against the component densities.
const densityTolerance = 1.e-9

// releasing returns whether p is released during the current time step.
func (d *Domain) releasing(p *Particle) bool {
	half := d.Dt / 2
	return d.Time-half <= p.ReleaseTime && d.Time+half > p.ReleaseTime
}

// StepOil returns a function that updates the oil properties and buoyant
// velocity of a particle, writing them to time level d.NFP1.
//
// Ambient conditions are taken from time level d.NFP1, which the host
// must already have filled. Whether the droplet is in the surface band is
// decided by its depth at time level d.NF in the predictor stage and at
// d.NFP1 in the corrector stage. Either way the update starts from the oil
// state at d.NF, so the corrector replaces the predictor's result rather
// than adding to it. Particles are released in the time step that is within
// half a step of their release time, at which point every time level is
// seeded with the particle's initial oil properties.
func StepOil() ParticleManipulator {
	return func(d *Domain, p *Particle) {
		if !p.Bounded {
			return
		}
		release := d.releasing(p)
		if !p.Released && !release {
			return
		}
		if release {
			p.seed(d.NFP1)
			p.Released = true
		}

		prev, next := &p.Track[d.NF], &p.Track[d.NFP1]
		pos := next
		if d.Predictor {
			pos = prev
		}
		sw := seawater.At(next.Temp, next.Salt)

		fractions, rho, diam := prev.Fractions, prev.Density, prev.Diameter
		residence := prev.SurfaceTime
		if math.Abs(pos.Depth) <= d.Config.SurfaceBand {
			residence += d.Dt
			r := d.Evaporation.Weather(evaporation.Input{
				Fractions:   p.Initial.Fractions,
				Densities:   p.Initial.Densities,
				Diameter:    p.Initial.Diameter,
				Temp:        next.Temp,
				Residence:   residence,
				MinDiameter: d.Config.MinDiameter,
			})
			if r.NonFinite > 0 {
				d.nonFiniteEvaporation(p, r.NonFinite, r.Evaporated)
			}
			fractions, rho, diam = r.Fractions, r.Density, r.Diameter
		}

		lo, hi := floats.Min(p.Initial.Densities), floats.Max(p.Initial.Densities)
		if !(rho >= lo*(1-densityTolerance) && rho <= hi*(1+densityTolerance)) {
			d.densityOutOfBounds(p, rho, lo, hi)
		}

		w := d.Velocity.Velocity(buoyancy.Conditions{
			WaterDensity:  sw.Density,
			Viscosity:     sw.Viscosity,
			PureViscosity: sw.PureViscosity,
			Tension:       sw.Tension,
			OilDensity:    rho,
			Diameter:      diam,
			Gravity:       d.Config.Gravity,
		})
		if w == buoyancy.OutOfRange {
			d.velocityOutOfRange(p, rho, diam)
		}

		next.Fractions = setFractions(next.Fractions, fractions)
		next.Density = rho
		next.Diameter = diam
		next.SurfaceTime = residence
		next.W = w
		if release {
			for i := range p.Track {
				p.Track[i].W = w
			}
		}
	}
}

// PredictorCorrector returns a function that runs funcs once as the
// predictor stage and once as the corrector stage of a time step.
func PredictorCorrector(funcs ...DomainManipulator) DomainManipulator {
	return func(d *Domain) error {
		for _, predictor := range []bool{true, false} {
			d.Predictor = predictor
			for _, f := range funcs {
				if err := f(d); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
