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
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/oilplume/science/buoyancy"
	"gonum.org/v1/gonum/floats"
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

// testOil is a 300 μm droplet of 60% saturates, 25% aromatics, and 15% resins+asphaltenes.
func testOil() InitialOil {
	return InitialOil{
		Fractions: []float64{0.60, 0.25, 0.15},
		Densities: []float64{920, 1010, 1100},
		Diameter:  3.e-4,
	}
}

// lightOil has components light enough to all evaporate.
func lightOil() InitialOil {
	return InitialOil{
		Fractions: []float64{0.74, 0.16, 0.10},
		Densities: []float64{800, 950, 1050},
		Diameter:  3.e-4,
	}
}

// depthSeries returns ambient conditions for n particles at 20 °C and
// 35 PSU, with all particles at depths[step].
func depthSeries(n int, depths ...float64) AmbientSeries {
	s := make(AmbientSeries, len(depths))
	for i, z := range depths {
		s[i] = make([]Ambient, n)
		for j := range s[i] {
			s[i][j] = Ambient{X: float64(j), Depth: z, Temp: 20, Salt: 35, Bounded: true}
		}
	}
	return s
}

// testDomain returns a domain with n particles released at time zero
// and given the initial oil properties.
func testDomain(t *testing.T, n int, dt float64, oil InitialOil, src AmbientSource, steps int) *Domain {
	d, err := NewDomain(DefaultConfig(), make([]float64, n))
	if err != nil {
		t.Fatal(err)
	}
	log, _ := test.NewNullLogger()
	d.Log = log
	d.Dt = dt
	d.NumSteps = steps
	for _, p := range d.Particles {
		o := oil
		p.Initial = &o
	}
	d.RunFuncs = []DomainManipulator{
		LoadAmbient(src),
		PredictorCorrector(Calculations(StepOil())),
		AdvanceTime(),
	}
	return d
}

func TestEndToEnd(t *testing.T) {
	for _, closure := range []string{buoyancy.TwoEquationName, buoyancy.IntegratedName} {
		t.Run(closure, func(t *testing.T) {
			d := testDomain(t, 1, 60, testOil(), depthSeries(1, -100), 1)
			d.Config.Closure = closure
			var err error
			if d.Velocity, err = buoyancy.New(closure); err != nil {
				t.Fatal(err)
			}
			if err := d.Run(); err != nil {
				t.Fatal(err)
			}
			s := d.Particles[0].Track[d.NF]
			if different(s.Density, 965.19, 1.e-4) {
				t.Errorf("density: have %g, want ≈965", s.Density)
			}
			if s.W <= 0 || s.W == buoyancy.OutOfRange {
				t.Errorf("velocity %g should be upward", s.W)
			}
			if d.Diagnostics.Snapshot() != (Diagnostics{}) {
				t.Errorf("unexpected diagnostics %+v", d.Diagnostics)
			}
		})
	}
}

func TestReleaseSeedsAllLevels(t *testing.T) {
	d := testDomain(t, 1, 60, testOil(), depthSeries(1, -100), 1)
	d.NF, d.NFP1 = 3, 4
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	p := d.Particles[0]
	if !p.Released {
		t.Fatal("particle should be released")
	}
	want := p.Track[0]
	for i, s := range p.Track {
		if s.W != want.W || s.Density != want.Density || s.Diameter != want.Diameter ||
			s.Temp != 20 || s.Salt != 35 || s.Depth != -100 || s.SurfaceTime != 0 {
			t.Errorf("level %d: %+v differs from %+v", i, s, want)
		}
		if !floats.Equal(s.Fractions, testOil().Fractions) {
			t.Errorf("level %d: fractions %v", i, s.Fractions)
		}
		if i > 0 && &s.Fractions[0] == &p.Track[0].Fractions[0] {
			t.Errorf("level %d shares its fractions with level 0", i)
		}
	}
}

func TestReleaseWindow(t *testing.T) {
	const dt = 60.
	d := testDomain(t, 3, dt, testOil(), depthSeries(3, -100, -100, -100), 3)
	d.Particles[0].ReleaseTime = dt * 1.4 // rounds to step 1
	d.Particles[1].ReleaseTime = dt * 1.5 // rounds to step 2
	d.Particles[2].ReleaseTime = dt * 10  // after the end
	var released [][]bool
	d.RunFuncs = append(d.RunFuncs[:2], func(d *Domain) error {
		r := make([]bool, len(d.Particles))
		for i, p := range d.Particles {
			r[i] = p.Released
		}
		released = append(released, r)
		return nil
	}, AdvanceTime())
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	want := [][]bool{{false, false, false}, {true, false, false}, {true, true, false}}
	for i := range want {
		for j := range want[i] {
			if released[i][j] != want[i][j] {
				t.Errorf("step %d, particle %d: released=%v, want %v", i, j, released[i][j], want[i][j])
			}
		}
	}
	if w := d.Particles[2].Track[d.NF].W; w != 0 {
		t.Errorf("unreleased particle has velocity %g", w)
	}
}

func TestSurfaceResidence(t *testing.T) {
	const dt = 600.
	depths := []float64{-1, -1, -1, -20, -20, -1}
	d := testDomain(t, 1, dt, lightOil(), depthSeries(1, depths...), len(depths))
	var steps []State
	d.RunFuncs = append(d.RunFuncs[:2], func(d *Domain) error {
		s := d.Particles[0].Track[d.NFP1]
		s.Fractions = append([]float64(nil), s.Fractions...)
		steps = append(steps, s)
		return nil
	}, AdvanceTime())
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	wantResidence := []float64{dt, 2 * dt, 3 * dt, 3 * dt, 3 * dt, 4 * dt}
	for i, s := range steps {
		if s.SurfaceTime != wantResidence[i] {
			t.Errorf("step %d: residence %g, want %g", i, s.SurfaceTime, wantResidence[i])
		}
	}
	for i := 1; i < 3; i++ {
		if steps[i].Diameter >= steps[i-1].Diameter {
			t.Errorf("step %d: diameter should shrink at the surface: %g >= %g",
				i, steps[i].Diameter, steps[i-1].Diameter)
		}
	}
	for i := 3; i < 5; i++ {
		if steps[i].Diameter != steps[2].Diameter || !floats.Equal(steps[i].Fractions, steps[2].Fractions) {
			t.Errorf("step %d: submerged droplet should not weather", i)
		}
	}
	if steps[5].Diameter >= steps[2].Diameter {
		t.Errorf("resurfaced droplet should keep weathering: %g >= %g", steps[5].Diameter, steps[2].Diameter)
	}
	if have := floats.Sum(steps[5].Fractions); different(have, 1, 1.e-12) {
		t.Errorf("fractions sum to %g", have)
	}
	initial := lightOil()
	if steps[5].Density <= initial.Density() {
		t.Errorf("weathered density %g should exceed initial %g", steps[5].Density, initial.Density())
	}
}

func TestBoundedAndOwned(t *testing.T) {
	src := depthSeries(4, -100)
	src[0][2].Bounded = false
	d := testDomain(t, 4, 60, testOil(), src, 1)
	d.Lstr, d.Lend = 1, 3
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	for i, want := range []bool{false, true, false, false} {
		if have := d.Particles[i].Released; have != want {
			t.Errorf("particle %d: released=%v, want %v", i, have, want)
		}
	}
}

func TestNonFiniteEvaporationDiagnostic(t *testing.T) {
	d := testDomain(t, 2, 600, testOil(), depthSeries(2, -1, -1), 2)
	log, hook := test.NewNullLogger()
	d.Log = log
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	// The 1100 kg/m³ component is outside of the evaporation model's range:
	// one warning per particle, stage, and step.
	if have, want := d.Diagnostics.Snapshot().NonFiniteEvaporation, int64(2*2*2); have != want {
		t.Errorf("have %d non-finite evaporation warnings, want %d", have, want)
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel {
		t.Errorf("expected a warning, have %v", e)
	}
	for _, p := range d.Particles {
		s := p.Track[d.NF]
		if math.IsNaN(s.Density) || math.IsNaN(s.Diameter) || math.IsNaN(s.W) {
			t.Errorf("particle %d: non-finite state %+v", p.ID, s)
		}
	}
}

func TestDensityDiagnostic(t *testing.T) {
	oil := testOil()
	oil.Fractions = []float64{1.2, -0.1, -0.1}
	d := testDomain(t, 1, 60, oil, depthSeries(1, -100), 1)
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if have := d.Diagnostics.Snapshot().DensityOutOfBounds; have != 2 {
		t.Errorf("have %d density warnings, want 2", have)
	}
}

func TestVelocityDiagnostic(t *testing.T) {
	oil := testOil()
	oil.Diameter = 0.05
	d := testDomain(t, 1, 60, oil, depthSeries(1, -100), 1)
	d.Velocity = buoyancy.Integrated{Threshold: 1}
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if have := d.Diagnostics.Snapshot().VelocityOutOfRange; have != 2 {
		t.Errorf("have %d velocity warnings, want 2", have)
	}
	if w := d.Particles[0].Track[d.NF].W; w != buoyancy.OutOfRange {
		t.Errorf("have %g, want OutOfRange", w)
	}
}
