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

// Integrated balances buoyancy against drag using empirical drag
// correlations (Zheng and Yapa, 2000). Droplets smaller than Threshold are
// treated as rigid spheres with a Reynolds number correlation; larger
// droplets use Eötvös and Morton numbers.
//
// Velocity returns OutOfRange when the dimensionless numbers fall outside
// every correlation's range, and for non-physical inputs. The interfacial
// tension and pure water viscosity in Conditions must be set for droplets
// at or above Threshold.
type Integrated struct {
	// Threshold is the diameter [m] dividing small and large droplets.
	// If zero, DefaultThreshold is used.
	Threshold float64
}

// DefaultThreshold is the default small/large droplet boundary [m].
const DefaultThreshold = 1.1e-3

// Velocity implements Closure.
func (in Integrated) Velocity(c Conditions) float64 {
	drho, ok := c.contrast()
	if !ok {
		return OutOfRange
	}
	if drho == 0 {
		return 0
	}
	threshold := in.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	var w float64
	if c.Diameter < threshold {
		w = smallDroplet(c, math.Abs(drho))
	} else {
		w = largeDroplet(c, math.Abs(drho))
	}
	if w == OutOfRange {
		return w
	}
	return sign(drho) * w
}

// smallDroplet returns the rise speed of a rigid sphere.
func smallDroplet(c Conditions, drho float64) float64 {
	g, d, mu, rhow := c.g(), c.Diameter, c.Viscosity, c.WaterDensity
	nd := 4 * rhow * drho * g * d * d * d / (3 * mu * mu)
	lw := math.Log10(nd)
	var re float64
	switch {
	case nd <= 73:
		re = nd/24 - 1.7569e-4*nd*nd + 6.9252e-7*nd*nd*nd - 2.3027e-10*nd*nd*nd*nd
	case nd <= 580:
		re = math.Pow(10, -1.7095+1.33438*lw-0.11591*lw*lw)
	case nd <= 1.55e7:
		re = math.Pow(10, -1.81391+1.34671*lw-0.12427*lw*lw+0.006344*lw*lw*lw)
	default:
		return OutOfRange
	}
	if !(re > 0) {
		return OutOfRange
	}
	return re * mu / (rhow * d)
}

// largeDroplet returns the rise speed of a deformable droplet.
func largeDroplet(c Conditions, drho float64) float64 {
	g, d, mu, rhow, sigma := c.g(), c.Diameter, c.Viscosity, c.WaterDensity, c.Tension
	if !(sigma > 0) || !(c.PureViscosity > 0) {
		return OutOfRange
	}
	eo := g * drho * d * d / sigma
	mo := g * math.Pow(mu, 4) * drho / (rhow * rhow * sigma * sigma * sigma)
	switch {
	case mo < 1.e-3 && eo <= 40:
		h := 4. / 3. * eo * math.Pow(mo, -0.149) * math.Pow(c.PureViscosity/mu, -0.14)
		var j float64
		if h > 2 && h <= 59.3 {
			j = 0.94 * math.Pow(h, 0.757)
		} else {
			j = 3.42 * math.Pow(h, 0.441)
		}
		if j <= 0.857 {
			return OutOfRange
		}
		return mu / (rhow * d) * math.Pow(mo, -0.149) * (j - 0.857)
	case eo > 40:
		return 0.711 * math.Sqrt(g*d*drho/rhow)
	default:
		return OutOfRange
	}
}
