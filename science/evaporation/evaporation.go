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

// Package evaporation calculates the weathering of surfaced oil droplets by
// evaporation, using the empirical model of Fingas (2011) with oil
// viscosities from the correlation of Sanchez-Minero et al. (2014).
//
// Each lumped oil component is characterized only by its density. The
// evaporated fraction of a component grows with the logarithm of the
// cumulative time the droplet has spent near the surface, and is applied to
// the component masses the droplet had when it was released.
package evaporation

import (
	"math"

	"github.com/spatialmodel/oilplume/science/mixing"
	"gonum.org/v1/gonum/floats"
)

// MinResidence is the smallest residence time [min] used in the
// evaporation formula, which is singular at zero.
const MinResidence = 1.e-10

// Fingas holds the constants of the evaporation model.
type Fingas struct {
	// Evaporative parameter: E = Intercept - DensitySlope·ρ/1000 + ViscositySlope/μ.
	Intercept, DensitySlope, ViscositySlope float64

	// Evaporated percentage: (E + Offset + TemperatureSlope·(T - ReferenceTemperature))·ln(t).
	Offset, TemperatureSlope, ReferenceTemperature float64

	// MinViscosityCoefficient is the floor on the leading coefficient
	// of the oil viscosity correlation.
	MinViscosityCoefficient float64
}

// DefaultFingas returns the published model constants.
func DefaultFingas() Fingas {
	return Fingas{
		Intercept:               15.4,
		DensitySlope:            14.5,
		ViscositySlope:          2.58,
		Offset:                  0.675,
		TemperatureSlope:        0.045,
		ReferenceTemperature:    15,
		MinViscosityCoefficient: 0.001,
	}
}

// Viscosity returns the dynamic viscosity [cP] of an oil component with
// density [kg/m³] at temperature temp [°C].
func (f Fingas) Viscosity(temp, density float64) float64 {
	api := 141.5/(density/1000) - 131.5
	a := 3.9e-5*api*api*api - 4.0e-3*api*api + 0.1226*api - 0.7626
	if a < f.MinViscosityCoefficient {
		a = f.MinViscosityCoefficient
	}
	b := 9.1638e9 * math.Pow(api, -1.3257)
	tk := temp + 273.15
	return a * math.Exp(b/(tk*tk*tk))
}

// Fraction returns the fraction of an oil component with the given
// density [kg/m³] that has evaporated after residence [s] at the surface at
// temperature temp [°C]. The result is not bounded: it is negative for
// residence times under one minute and it is NaN for components denser
// than the API gravity formula allows.
func (f Fingas) Fraction(temp, density, residence float64) float64 {
	mu := f.Viscosity(temp, density)
	e := f.Intercept - f.DensitySlope*density/1000 + f.ViscositySlope/mu
	tmin := residence / 60
	if tmin < MinResidence {
		tmin = MinResidence
	}
	return ((e + f.Offset) + f.TemperatureSlope*(temp-f.ReferenceTemperature)) * math.Log(tmin) / 100
}

// Input describes a droplet to be weathered.
type Input struct {
	// Fractions, Densities, and Diameter describe the droplet at release.
	Fractions []float64
	Densities []float64 // [kg/m³]
	Diameter  float64   // [m]

	Temp      float64 // ambient temperature [°C]
	Residence float64 // cumulative surface residence time [s]

	// MinDiameter [m] is the smallest diameter a droplet may shrink to.
	MinDiameter float64
}

// Result is the weathered state of a droplet.
type Result struct {
	Fractions []float64
	Density   float64 // [kg/m³]
	Diameter  float64 // [m]

	// Evaporated holds the evaporated fraction of each component,
	// clamped to [0, 1]. Finite fractions outside that range, such as
	// the negative ones for residence times under one minute, are
	// clamped without being counted in NonFinite.
	Evaporated []float64

	// NonFinite is the number of components whose evaporated fraction
	// was NaN or infinite before clamping.
	NonFinite int

	// Depleted is true if every component has fully evaporated. The
	// fractions and density are then those at release.
	Depleted bool
}

// Weather calculates the state of a droplet after evaporation.
func (f Fingas) Weather(in Input) Result {
	initial := mixing.Compose(in.Fractions, in.Densities, in.Diameter)
	r := Result{Evaporated: make([]float64, len(in.Densities))}
	masses := make([]float64, len(in.Densities))
	for i, rho := range in.Densities {
		p := f.Fraction(in.Temp, rho, in.Residence)
		switch {
		case math.IsNaN(p):
			p = 0
			r.NonFinite++
		case math.IsInf(p, 0):
			p = math.Max(0, math.Min(1, p))
			r.NonFinite++
		default:
			p = math.Max(0, math.Min(1, p))
		}
		r.Evaporated[i] = p
		masses[i] = (1 - p) * initial.Masses[i]
	}
	if floats.Sum(masses) <= 0 {
		r.Depleted = true
		r.Fractions = append([]float64(nil), in.Fractions...)
		r.Density = initial.Density
		r.Diameter = in.MinDiameter
		return r
	}
	r.Fractions, r.Density, r.Diameter = mixing.Decompose(masses, in.Densities)
	if r.Diameter < in.MinDiameter {
		r.Diameter = in.MinDiameter
	}
	return r
}
