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

// Package mixing converts between the component make-up of an oil droplet
// and its bulk properties using the harmonic density mixing rule.
package mixing

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Total holds the bulk properties of a droplet.
type Total struct {
	// Masses holds the mass of each component [kg].
	Masses []float64

	Mass    float64 // [kg]
	Density float64 // [kg/m³]
	Volume  float64 // [m³]
}

// Density returns the bulk density [kg/m³] of a mixture with the given
// component mass fractions and component densities [kg/m³]:
// 1/ρ = Σ fᵢ/ρᵢ.
func Density(fractions, densities []float64) float64 {
	inv := floats.DivTo(make([]float64, len(fractions)), fractions, densities)
	return 1 / floats.Sum(inv)
}

// SphereVolume returns the volume [m³] of a sphere with diameter d [m].
func SphereVolume(d float64) float64 {
	r := d / 2
	return 4. / 3. * math.Pi * r * r * r
}

// Diameter returns the diameter [m] of a sphere with volume v [m³].
func Diameter(v float64) float64 {
	return 2 * math.Cbrt(3./4.*v/math.Pi)
}

// Compose calculates the bulk properties of a spherical droplet of the given
// diameter [m] from its component mass fractions and component densities.
// The fractions are expected to sum to one and the densities to be positive;
// neither condition is checked.
func Compose(fractions, densities []float64, diameter float64) Total {
	rho := Density(fractions, densities)
	vol := SphereVolume(diameter)
	m := rho * vol
	return Total{
		Masses:  floats.ScaleTo(make([]float64, len(fractions)), m, fractions),
		Mass:    m,
		Density: rho,
		Volume:  vol,
	}
}

// Decompose is the inverse of Compose: it returns the component mass
// fractions, bulk density, and diameter of a droplet made up of the
// given component masses.
func Decompose(masses, densities []float64) (fractions []float64, density, diameter float64) {
	m := floats.Sum(masses)
	fractions = floats.ScaleTo(make([]float64, len(masses)), 1/m, masses)
	density = Density(fractions, densities)
	diameter = Diameter(m / density)
	return fractions, density, diameter
}
