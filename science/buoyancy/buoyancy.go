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

// Package buoyancy calculates the terminal vertical velocity of oil droplets
// rising (or sinking) through seawater. Two closures are available; both
// return velocities that are positive upward, with the sign following the
// sign of the ambient-minus-droplet density contrast.
package buoyancy

import (
	"fmt"
	"math"
)

// Gravity is the default gravitational acceleration [m/s²].
const Gravity = 9.81

// OutOfRange is the velocity [m/s] returned by a closure when the droplet
// lies outside of the regime the closure is calibrated for, or when the
// inputs are not physical (non-positive or non-finite diameter, viscosity,
// or density). Callers can compare against it to detect these cases.
const OutOfRange = 1.11111e-6

// Conditions holds the inputs to a closure.
type Conditions struct {
	WaterDensity  float64 // ambient seawater density [kg/m³]
	Viscosity     float64 // seawater dynamic viscosity [Pa s]
	PureViscosity float64 // fresh water dynamic viscosity [Pa s]; Integrated only
	Tension       float64 // oil-water interfacial tension [N/m]; Integrated only

	OilDensity float64 // droplet density [kg/m³]
	Diameter   float64 // droplet diameter [m]

	// Gravity is the gravitational acceleration [m/s²]. If zero,
	// the package Gravity constant is used.
	Gravity float64
}

func (c Conditions) g() float64 {
	if c.Gravity == 0 {
		return Gravity
	}
	return c.Gravity
}

// contrast returns the density contrast ρw - ρo and whether the inputs
// common to both closures are physical.
func (c Conditions) contrast() (float64, bool) {
	for _, v := range []float64{c.WaterDensity, c.Viscosity, c.OilDensity, c.Diameter, c.g()} {
		if !(v > 0) || math.IsInf(v, 0) {
			return 0, false
		}
	}
	return c.WaterDensity - c.OilDensity, true
}

// A Closure calculates the vertical velocity [m/s] of a droplet.
type Closure interface {
	Velocity(c Conditions) float64
}

// Names of the available closures.
const (
	TwoEquationName = "twoequation"
	IntegratedName  = "integrated"
)

// New returns the closure with the given name.
func New(name string) (Closure, error) {
	switch name {
	case TwoEquationName, "":
		return TwoEquation{}, nil
	case IntegratedName:
		return Integrated{}, nil
	default:
		return nil, fmt.Errorf("buoyancy: invalid closure %q; valid options are %q and %q",
			name, TwoEquationName, IntegratedName)
	}
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
