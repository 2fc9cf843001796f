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


package eulerian

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/cdf"
)

// Write saves the field to a NetCDF file. The names of the oil
// components are stored as an attribute of the concentration variable.
func (f *Field) Write(filename string, components []string) error {
	if len(components) != f.Components {
		return fmt.Errorf("eulerian: %d component names for %d components", len(components), f.Components)
	}
	g := f.Grid
	nz := g.Nz()
	h := cdf.NewHeader([]string{"component", "layer", "y", "x", "layer_edge"},
		[]int{f.Components, nz, g.Ny, g.Nx, nz + 1})

	h.AddVariable("concentration", []string{"component", "layer", "y", "x"}, []float64{0})
	h.AddAttribute("concentration", "description", "Oil mass concentration of each component")
	h.AddAttribute("concentration", "units", "kg m-3")
	h.AddAttribute("concentration", "components", strings.Join(components, ","))
	h.AddAttribute("concentration", "_FillValue", []float64{FillValue})

	h.AddVariable("diameter", []string{"layer", "y", "x"}, []float64{0})
	h.AddAttribute("diameter", "description", "Mean droplet diameter")
	h.AddAttribute("diameter", "units", "m")
	h.AddAttribute("diameter", "_FillValue", []float64{FillValue})

	h.AddVariable("count", []string{"layer", "y", "x"}, []int32{0})
	h.AddAttribute("count", "description", "Number of particles")

	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddAttribute("x", "description", "Cell center easting")
	h.AddVariable("y", []string{"y"}, []float64{0})
	h.AddAttribute("y", "description", "Cell center northing")
	h.AddVariable("layer_edge", []string{"layer_edge"}, []float64{0})
	h.AddAttribute("layer_edge", "description", "Depth of layer boundaries, negative below the surface")
	h.AddAttribute("layer_edge", "units", "m")

	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("eulerian: creating netcdf file: %v", err)
	}
	ff, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("eulerian: creating netcdf file: %v", err)
	}
	cf, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return fmt.Errorf("eulerian: creating netcdf file: %v", err)
	}

	n := g.numCells()
	conc := make([]float64, 0, f.Components*n)
	for c := 0; c < f.Components; c++ {
		for k := 0; k < nz; k++ {
			for j := 0; j < g.Ny; j++ {
				for i := 0; i < g.Nx; i++ {
					conc = append(conc, f.Concentration(c, i, j, k))
				}
			}
		}
	}
	diam := make([]float64, 0, n)
	count := make([]int32, 0, n)
	for k := 0; k < nz; k++ {
		for j := 0; j < g.Ny; j++ {
			for i := 0; i < g.Nx; i++ {
				diam = append(diam, f.Diameter(i, j, k))
				count = append(count, int32(f.Count(i, j, k)))
			}
		}
	}
	x := make([]float64, g.Nx)
	for i := range x {
		x[i] = g.X0 + (float64(i)+0.5)*g.Dx
	}
	y := make([]float64, g.Ny)
	for j := range y {
		y[j] = g.Y0 + (float64(j)+0.5)*g.Dy
	}

	for _, v := range []struct {
		name string
		data interface{}
	}{
		{"concentration", conc},
		{"diameter", diam},
		{"count", count},
		{"x", x},
		{"y", y},
		{"layer_edge", g.LayerEdges},
	} {
		l := cf.Header.Lengths(v.name)
		begin := make([]int, len(l))
		end := make([]int, len(l))
		end[0] = l[0] // one past the last value
		w := cf.Writer(v.name, begin, end)
		if _, err := w.Write(v.data); err != nil {
			ff.Close()
			return fmt.Errorf("eulerian: writing variable %s: %v", v.name, err)
		}
	}
	return ff.Close()
}
