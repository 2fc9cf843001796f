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

// Package seawater calculates the properties of ambient seawater that control
// the rise of oil droplets: density, dynamic viscosity, and oil-water
// interfacial tension.
package seawater

import "math"

// Coefficients of the UNESCO (1981) one-atmosphere equation of state.
const (
	a0 = 999.842594
	a1 = 6.793952e-2
	a2 = -9.095290e-3
	a3 = 1.001685e-4
	a4 = -1.120083e-6
	a5 = 6.536332e-9

	b0 = 8.24493e-1
	b1 = -4.0899e-3
	b2 = 7.6438e-5
	b3 = -8.2467e-7
	b4 = 5.3875e-9

	c0 = -5.72466e-3
	c1 = 1.0227e-4
	c2 = -1.6546e-6

	d0 = 4.8314e-4
)

// Density returns the density of seawater [kg/m³] at atmospheric pressure
// for temperature temp [°C] and salinity salt [PSU], following the UNESCO
// (1981) equation of state. Temperature is converted to the IPTS-68 scale
// the polynomial was fit against.
func Density(temp, salt float64) float64 {
	t := temp * 1.00024
	pure := a0 + (a1+(a2+(a3+(a4+a5*t)*t)*t)*t)*t
	return pure +
		(b0+(b1+(b2+(b3+b4*t)*t)*t)*t)*salt +
		(c0+(c1+c2*t)*t)*salt*math.Sqrt(salt) +
		d0*salt*salt
}

// PureWaterViscosity returns the dynamic viscosity of fresh water [Pa s]
// at temperature temp [°C] (Sharqawy et al., 2010).
func PureWaterViscosity(temp float64) float64 {
	x := temp + 64.993
	return 4.2844e-5 + 1/(0.157*x*x-91.296)
}

// Viscosity returns the dynamic viscosity of seawater [Pa s] at temperature
// temp [°C] and salinity salt [PSU] (Sharqawy et al., 2010). The salinity
// correction is a polynomial in salinity expressed as a mass fraction.
func Viscosity(temp, salt float64) float64 {
	s := salt * 1e-3
	a := 1.541 + 1.998e-2*temp - 9.52e-5*temp*temp
	b := 7.974 - 7.561e-2*temp + 4.724e-4*temp*temp
	return PureWaterViscosity(temp) * (1 + a*s + b*s*s)
}

// InterfacialTension returns the oil-water interfacial tension [N/m]
// at temperature temp [°C] (Peters and Arabali, 2013).
func InterfacialTension(temp float64) float64 {
	return (0.1222*temp + 32.82) * 1e-3
}

// Properties holds the seawater properties at a single location.
type Properties struct {
	Density       float64 // [kg/m³]
	Viscosity     float64 // seawater dynamic viscosity [Pa s]
	PureViscosity float64 // fresh water dynamic viscosity [Pa s]
	Tension       float64 // oil-water interfacial tension [N/m]
}

// At calculates all seawater properties for the given temperature [°C]
// and salinity [PSU].
func At(temp, salt float64) Properties {
	return Properties{
		Density:       Density(temp, salt),
		Viscosity:     Viscosity(temp, salt),
		PureViscosity: PureWaterViscosity(temp),
		Tension:       InterfacialTension(temp),
	}
}
