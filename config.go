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

	"github.com/spatialmodel/oilplume/science/buoyancy"
)

// Component is a lumped class of oil compounds.
type Component struct {
	Name    string
	Density float64 // reference density [kg/m³]
}

// ComponentTable lists the oil components in the order in which their
// fractions are stored.
type ComponentTable []Component

// DefaultComponents returns a component table for a light crude.
func DefaultComponents() ComponentTable {
	return ComponentTable{
		{Name: "saturates", Density: 800},
		{Name: "aromatics", Density: 950},
		{Name: "resins+asphaltenes", Density: 1050},
	}
}

// Densities returns the reference densities [kg/m³] of the components.
func (t ComponentTable) Densities() []float64 {
	rho := make([]float64, len(t))
	for i, c := range t {
		rho[i] = c.Density
	}
	return rho
}

// Validate checks that there are three components with plausible
// densities.
func (t ComponentTable) Validate() error {
	if len(t) != 3 {
		return fmt.Errorf("oilplume: need 3 oil components but have %d", len(t))
	}
	for _, c := range t {
		if c.Density <= 1 || c.Density > 1200 {
			return fmt.Errorf("oilplume: density %g kg/m³ of component %q is outside of (1, 1200]", c.Density, c.Name)
		}
	}
	return nil
}

// Config holds the physical parameters of a simulation.
type Config struct {
	Components ComponentTable

	// SurfaceBand is the depth [m] above which droplets weather.
	SurfaceBand float64

	// MinDiameter [m] is the size below which droplets are considered
	// dissolved. Diameters never fall below it.
	MinDiameter float64

	// Closure is the name of the buoyant velocity closure.
	Closure string

	// Gravity is the gravitational acceleration [m/s²].
	Gravity float64
}

// DefaultConfig returns the default simulation parameters.
func DefaultConfig() Config {
	return Config{
		Components:  DefaultComponents(),
		SurfaceBand: 5,
		MinDiameter: 2.e-7,
		Closure:     buoyancy.TwoEquationName,
		Gravity:     buoyancy.Gravity,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Components.Validate(); err != nil {
		return err
	}
	if c.SurfaceBand < 0 {
		return fmt.Errorf("oilplume: negative surface band %g", c.SurfaceBand)
	}
	if !(c.MinDiameter > 0) {
		return fmt.Errorf("oilplume: minimum diameter must be positive but is %g", c.MinDiameter)
	}
	if !(c.Gravity > 0) {
		return fmt.Errorf("oilplume: gravity must be positive but is %g", c.Gravity)
	}
	return nil
}
