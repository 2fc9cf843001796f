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


package trackio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/oilplume"
)

// testSeries returns n records for two particles at 20 °C and 35 PSU.
// The first particle sits at 100 m depth and the second one rises
// toward the surface; the second one leaves the domain in the last
// record.
func testSeries(n int) oilplume.AmbientSeries {
	s := make(oilplume.AmbientSeries, n)
	for i := range s {
		s[i] = []oilplume.Ambient{
			{X: 1, Y: 2, Depth: -100, Temp: 20, Salt: 35, Bounded: true},
			{X: float64(i), Y: 3, Depth: -10 + float64(i), Temp: 18, Salt: 34, Bounded: i < n-1},
		}
	}
	return s
}

func writeTestForcing(t *testing.T, times, release []float64, s oilplume.AmbientSeries) string {
	filename := filepath.Join(t.TempDir(), "forcing.nc")
	if err := WriteForcing(filename, times, release, s); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestForcing(t *testing.T) {
	s := testSeries(4)
	filename := writeTestForcing(t, []float64{100, 160, 220, 280}, []float64{100, 200}, s)
	f, err := OpenForcing(filename)
	if err != nil {
		t.Fatal(err)
	}
	if f.Dt() != 60 {
		t.Errorf("dt: have %g, want 60", f.Dt())
	}
	if f.NumSteps() != 3 {
		t.Errorf("steps: have %d, want 3", f.NumSteps())
	}
	if f.StartTime() != 100 {
		t.Errorf("start time: have %g, want 100", f.StartTime())
	}
	if diff := pretty.Diff(f.ReleaseTimes(), []float64{100, 200}); diff != nil {
		t.Errorf("release times: %v", diff)
	}
	if diff := pretty.Diff(f.Start(), s[0]); diff != nil {
		t.Errorf("start: %v", diff)
	}
	for step := 0; step < f.NumSteps(); step++ {
		for p := 0; p < 2; p++ {
			a, err := f.Ambient(step, p)
			if err != nil {
				t.Fatal(err)
			}
			if a != s[step+1][p] {
				t.Errorf("step %d particle %d: have %+v, want %+v", step, p, a, s[step+1][p])
			}
		}
	}
	if _, err := f.Ambient(3, 0); err == nil {
		t.Error("expected an error past the end of the forcing")
	}
}

func TestForcingOptionalBounded(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "forcing.nc")
	h := cdf.NewHeader([]string{"time", "particle"}, []int{2, 1})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddVariable("release_time", []string{"particle"}, []float64{0})
	for _, v := range forcingVars {
		h.AddVariable(v, []string{"time", "particle"}, []float64{0})
	}
	h.Define()
	ff, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	for v, data := range map[string][]float64{
		"time":         {0, 30},
		"release_time": {0},
		"x":            {1, 2},
		"y":            {3, 4},
		"depth":        {-5, -6},
		"temp":         {10, 11},
		"salt":         {30, 31},
	} {
		if err := writeWhole(f, v, data); err != nil {
			t.Fatal(err)
		}
	}
	ff.Close()

	forcing, err := OpenForcing(filename)
	if err != nil {
		t.Fatal(err)
	}
	a, err := forcing.Ambient(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := oilplume.Ambient{X: 2, Y: 4, Depth: -6, Temp: 11, Salt: 31, Bounded: true}
	if a != want {
		t.Errorf("have %+v, want %+v", a, want)
	}
}

func TestForcingInvalid(t *testing.T) {
	for _, tt := range []struct {
		name  string
		times []float64
		msg   string
	}{
		{name: "one record", times: []float64{0}, msg: "at least 2"},
		{name: "uneven", times: []float64{0, 60, 180}, msg: "evenly spaced"},
		{name: "backward", times: []float64{60, 0}, msg: "positive"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			filename := writeTestForcing(t, tt.times, []float64{0, 0}, testSeries(len(tt.times)))
			_, err := OpenForcing(filename)
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %v should contain %q", err, tt.msg)
			}
		})
	}
}

func TestNumRecords(t *testing.T) {
	for _, tt := range []struct{ steps, interval, want int }{
		{steps: 1, interval: 1, want: 1},
		{steps: 10, interval: 1, want: 10},
		{steps: 10, interval: 3, want: 4},
		{steps: 8, interval: 3, want: 4},
		{steps: 8, interval: 0, want: 8},
		{steps: 0, interval: 2, want: 0},
	} {
		var fired int
		interval := tt.interval
		if interval < 1 {
			interval = 1
		}
		for step := 0; step < tt.steps; step++ {
			if step%interval == 0 || step == tt.steps-1 {
				fired++
			}
		}
		if fired != tt.want {
			t.Fatalf("bad test case %+v: fires %d times", tt, fired)
		}
		if n := NumRecords(tt.steps, tt.interval); n != tt.want {
			t.Errorf("NumRecords(%d, %d) = %d; want %d", tt.steps, tt.interval, n, tt.want)
		}
	}
}

func TestOutput(t *testing.T) {
	s := testSeries(4)
	forcing, err := OpenForcing(writeTestForcing(t, []float64{0, 60, 120, 180}, []float64{0, 1.e6}, s))
	if err != nil {
		t.Fatal(err)
	}
	d, err := oilplume.NewDomain(oilplume.DefaultConfig(), forcing.ReleaseTimes())
	if err != nil {
		t.Fatal(err)
	}
	d.Log, _ = test.NewNullLogger()
	d.Dt = forcing.Dt()
	d.Time = forcing.StartTime()
	d.NumSteps = forcing.NumSteps()
	for _, p := range d.Particles {
		p.Initial = &oilplume.InitialOil{
			Fractions: []float64{0.6, 0.25, 0.15},
			Densities: []float64{920, 1010, 1100},
			Diameter:  3.e-4,
		}
	}
	filename := filepath.Join(t.TempDir(), "tracks.nc")
	records := NumRecords(d.NumSteps, 2)
	w, err := CreateWriter(filename, records, []int{0, 1}, []string{"saturates", "aromatics", "resins"})
	if err != nil {
		t.Fatal(err)
	}
	d.RunFuncs = []oilplume.DomainManipulator{
		oilplume.LoadAmbient(forcing),
		oilplume.PredictorCorrector(oilplume.Calculations(oilplume.StepOil())),
		Output(w, 2),
		oilplume.AdvanceTime(),
	}
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	ff, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		t.Fatal(err)
	}
	times, err := readFloats(f, "time")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(times, []float64{60, 180}); diff != nil {
		t.Errorf("times: %v", diff)
	}
	ids, err := readInts(f, "particle_id")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(ids, []int32{0, 1}); diff != nil {
		t.Errorf("ids: %v", diff)
	}
	density, err := readFloats(f, "density")
	if err != nil {
		t.Fatal(err)
	}
	final := d.Particles[0].Track[d.NF]
	want := []float64{final.Density, FillValue, final.Density, FillValue}
	if diff := pretty.Diff(density, want); diff != nil {
		t.Errorf("density: %v", diff)
	}
	depth, err := readFloats(f, "depth")
	if err != nil {
		t.Fatal(err)
	}
	if depth[0] != -100 || depth[2] != -100 {
		t.Errorf("depth: %v", depth)
	}
	fractions, err := readFloats(f, "fractions")
	if err != nil {
		t.Fatal(err)
	}
	if len(fractions) != 2*2*3 {
		t.Fatalf("fractions has %d values", len(fractions))
	}
	if diff := pretty.Diff(fractions[6:9], final.Fractions); diff != nil {
		t.Errorf("fractions: %v", diff)
	}
	for _, v := range fractions[9:] {
		if v != FillValue {
			t.Errorf("unreleased particle fractions should be fill values: %v", fractions[9:])
		}
	}
}

func TestWriterFull(t *testing.T) {
	d, err := oilplume.NewDomain(oilplume.DefaultConfig(), []float64{1.e6})
	if err != nil {
		t.Fatal(err)
	}
	w, err := CreateWriter(filepath.Join(t.TempDir(), "tracks.nc"), 1, []int{0}, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Write(d); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(d); err == nil {
		t.Error("expected an error when the file is full")
	}
}

func TestInitialize(t *testing.T) {
	s := testSeries(3)
	forcing, err := OpenForcing(writeTestForcing(t, []float64{0, 10, 20}, []float64{0, 0}, s))
	if err != nil {
		t.Fatal(err)
	}
	d, err := oilplume.NewDomain(oilplume.DefaultConfig(), forcing.ReleaseTimes())
	if err != nil {
		t.Fatal(err)
	}
	d.Lstr = 1
	d.InitFuncs = []oilplume.DomainManipulator{forcing.Initialize()}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if st := d.Particles[1].Track[d.NF]; st.X != 0 || st.Y != 3 || st.Depth != -10 || st.Temp != 18 || st.Salt != 34 {
		t.Errorf("owned particle: %+v", st)
	}
	if st := d.Particles[0].Track[d.NF]; st.Depth != 0 {
		t.Errorf("particle that is not owned should not be initialized: %+v", st)
	}

	short, err := oilplume.NewDomain(oilplume.DefaultConfig(), []float64{0})
	if err != nil {
		t.Fatal(err)
	}
	if err := forcing.Initialize()(short); err == nil {
		t.Error("expected an error for mismatched particle counts")
	}
}
