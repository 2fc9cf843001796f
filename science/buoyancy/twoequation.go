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

package buoyancy

import "math"

// TwoEquation splits droplets into two regimes at a critical diameter
// (Zheng and Yapa, 2000). Small droplets rise according to Stokes' law and
// large droplets according to a square-root law in reduced gravity.
// It returns OutOfRange only for non-physical inputs.
type TwoEquation struct{}

// CriticalDiameter returns the diameter [m] separating the Stokes and
// large-droplet regimes.
func (TwoEquation) CriticalDiameter(c Conditions) float64 {
	drho, _ := c.contrast()
	return 9.52 * math.Pow(c.Viscosity, 2./3.) / math.Cbrt(c.g()*c.WaterDensity*math.Abs(drho))
}

// Velocity implements Closure.
func (e TwoEquation) Velocity(c Conditions) float64 {
	drho, ok := c.contrast()
	if !ok {
		return OutOfRange
	}
	if drho == 0 {
		return 0
	}
	g := c.g()
	d := c.Diameter
	if d < e.CriticalDiameter(c) {
		return g * d * d * drho / (18 * c.Viscosity)
	}
	gr := g * drho / c.WaterDensity // reduced gravity
	return sign(drho) * math.Sqrt(8./3.*math.Abs(gr)*d)
}
