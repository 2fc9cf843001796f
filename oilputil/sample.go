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
	"fmt"
	"math"

	"github.com/spatialmodel/oilplume"
	"github.com/spatialmodel/oilplume/sampler"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SampleStats summarizes a sample of initial droplet properties.
type SampleStats struct {
	N int

	DiameterMean, DiameterStd float64 // [m]
	DensityMean, DensityStd   float64 // [kg/m³]

	FractionMean, FractionStd []float64
}

// summarize calculates summary statistics of oil.
func summarize(oil []oilplume.InitialOil) SampleStats {
	n := len(oil)
	diam := make([]float64, n)
	rho := make([]float64, n)
	var nc int
	if n > 0 {
		nc = len(oil[0].Fractions)
	}
	fractions := make([][]float64, nc)
	for c := range fractions {
		fractions[c] = make([]float64, n)
	}
	for i, o := range oil {
		diam[i] = o.Diameter
		rho[i] = o.Density()
		for c := range fractions {
			fractions[c][i] = o.Fractions[c]
		}
	}
	s := SampleStats{
		N:            n,
		FractionMean: make([]float64, nc),
		FractionStd:  make([]float64, nc),
	}
	s.DiameterMean, s.DiameterStd = stat.MeanStdDev(diam, nil)
	s.DensityMean, s.DensityStd = stat.MeanStdDev(rho, nil)
	for c, f := range fractions {
		s.FractionMean[c], s.FractionStd[c] = stat.MeanStdDev(f, nil)
	}
	return s
}

// Sample draws n sets of initial droplet properties and prints their
// summary statistics to the output of cmd. If plotFile is not empty, a
// histogram of the diameters is saved to it.
func Sample(cmd *cobra.Command, cfg sampler.Config, seed uint64, n int, plotFile string) error {
	if n < 2 {
		return fmt.Errorf("oilplume: sample.n=%d but should be >1", n)
	}
	oil, err := oilplume.SampleInitialOil(sampler.New(cfg, seed), n)
	if err != nil {
		return err
	}
	s := summarize(oil)
	cmd.Printf("%d droplets\n", s.N)
	cmd.Printf("%-20s %12s %12s\n", "", "mean", "std. dev.")
	cmd.Printf("%-20s %12.4g %12.4g\n", "diameter (μm)", s.DiameterMean*1.e6, s.DiameterStd*1.e6)
	cmd.Printf("%-20s %12.4g %12.4g\n", "density (kg/m³)", s.DensityMean, s.DensityStd)
	for c := range s.FractionMean {
		cmd.Printf("%-20s %12.4g %12.4g\n", fmt.Sprintf("fraction %d", c), s.FractionMean[c], s.FractionStd[c])
	}
	if plotFile == "" {
		return nil
	}
	return plotDiameters(oil, plotFile)
}

// plotDiameters saves a histogram of droplet diameters.
func plotDiameters(oil []oilplume.InitialOil, filename string) error {
	v := make(plotter.Values, len(oil))
	for i, o := range oil {
		v[i] = o.Diameter * 1.e6
	}
	bins := int(math.Sqrt(float64(len(v))))
	if bins > 100 {
		bins = 100
	}
	h, err := plotter.NewHist(v, bins)
	if err != nil {
		return fmt.Errorf("oilplume: problem making diameter histogram: %v", err)
	}
	p := plot.New()
	p.Title.Text = "Initial droplet diameters"
	p.X.Label.Text = "Diameter (μm)"
	p.Y.Label.Text = "Count"
	p.Add(h)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("oilplume: problem saving diameter histogram: %v", err)
	}
	return nil
}
