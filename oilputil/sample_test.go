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


package oilputil

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/oilplume"
	"github.com/spatialmodel/oilplume/sampler"
	"github.com/spf13/cobra"
)

func TestSummarize(t *testing.T) {
	oil, err := oilplume.SampleInitialOil(sampler.New(sampler.DefaultConfig(), 3), 5000)
	if err != nil {
		t.Fatal(err)
	}
	s := summarize(oil)
	if s.N != 5000 {
		t.Errorf("n: %d", s.N)
	}
	if math.Abs(s.DiameterMean-3.e-4) > 0.1*3.e-4 {
		t.Errorf("mean diameter %g should be close to 3e-4", s.DiameterMean)
	}
	// A Gamma distribution with shape k has a coefficient of variation
	// of 1/√k.
	if cv := s.DiameterStd / s.DiameterMean; math.Abs(cv-1/math.Sqrt(4.94)) > 0.05 {
		t.Errorf("diameter coefficient of variation %g", cv)
	}
	for c, want := range []float64{0.74, 0.16, 0.10} {
		if math.Abs(s.FractionMean[c]-want) > 0.01 {
			t.Errorf("component %d: mean fraction %g, want ≈%g", c, s.FractionMean[c], want)
		}
	}
	if s.DensityMean < 800 || s.DensityMean > 1050 {
		t.Errorf("mean density %g", s.DensityMean)
	}
}

func TestSample(t *testing.T) {
	out := new(bytes.Buffer)
	cmd := new(cobra.Command)
	cmd.SetOut(out)
	plotFile := filepath.Join(t.TempDir(), "diameters.png")
	if err := Sample(cmd, sampler.DefaultConfig(), 1, 1000, plotFile); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"1000 droplets", "diameter (μm)", "fraction 2"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output is missing %q:\n%s", want, out.String())
		}
	}
	if fi, err := os.Stat(plotFile); err != nil || fi.Size() == 0 {
		t.Errorf("plot file was not written: %v", err)
	}
	if err := Sample(cmd, sampler.DefaultConfig(), 1, 1, ""); err == nil {
		t.Error("expected an error for a single droplet")
	}
}

func TestSampleCommand(t *testing.T) {
	for _, o := range options {
		Cfg.Set(o.name, o.defaultVal)
	}
	Cfg.Set("sample.n", 200)
	out := new(bytes.Buffer)
	Root.SetOut(out)
	Root.SetArgs([]string{"sample"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "200 droplets") {
		t.Errorf("output:\n%s", out.String())
	}
}
