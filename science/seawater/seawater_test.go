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

package seawater

import (
	"math"
	"testing"
)

func different(a, b, tolerance float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance {
		return true
	}
	return false
}

func TestDensity(t *testing.T) {
	tests := []struct {
		temp, salt, want float64
	}{
		{temp: 0, salt: 0, want: 999.842594},
		{temp: 20, salt: 35, want: 1024.7617},
		{temp: 5, salt: 35, want: 1027.6753},
		{temp: 25, salt: 0, want: 997.0464},
	}
	for _, test := range tests {
		have := Density(test.temp, test.salt)
		if different(have, test.want, 1.e-5) {
			t.Errorf("T=%g, S=%g: have %g, want %g", test.temp, test.salt, have, test.want)
		}
	}
}

func TestDensityDecreasesWithTemperature(t *testing.T) {
	prev := Density(4, 35)
	for temp := 5.; temp <= 30; temp++ {
		rho := Density(temp, 35)
		if rho >= prev {
			t.Errorf("density should decrease with temperature: %g at %g °C >= %g", rho, temp, prev)
		}
		prev = rho
	}
}

func TestViscosity(t *testing.T) {
	if have, want := PureWaterViscosity(20), 1.002e-3; different(have, want, 1.e-2) {
		t.Errorf("pure water: have %g, want %g", have, want)
	}
	if have, want := Viscosity(20, 35), 1.077e-3; different(have, want, 1.e-2) {
		t.Errorf("seawater: have %g, want %g", have, want)
	}
	if Viscosity(20, 35) <= PureWaterViscosity(20) {
		t.Error("salt should increase viscosity")
	}
	if have, want := Viscosity(20, 0), PureWaterViscosity(20); have != want {
		t.Errorf("zero salinity: have %g, want %g", have, want)
	}
}

func TestInterfacialTension(t *testing.T) {
	if have, want := InterfacialTension(20), 0.035264; different(have, want, 1.e-10) {
		t.Errorf("have %g, want %g", have, want)
	}
}

func TestAt(t *testing.T) {
	p := At(20, 35)
	if p.Density != Density(20, 35) || p.Viscosity != Viscosity(20, 35) ||
		p.PureViscosity != PureWaterViscosity(20) || p.Tension != InterfacialTension(20) {
		t.Errorf("inconsistent properties: %+v", p)
	}
}
