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


// Package eulerian maps oil droplets onto a regular grid to give oil
// concentrations, mean droplet diameters, and droplet counts.
package eulerian

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/spatialmodel/oilplume"
	"github.com/spatialmodel/oilplume/science/mixing"
	"gonum.org/v1/gonum/floats"
)

// FillValue marks grid cells that contain no droplets.
const FillValue = -999.

// Grid is a regular horizontal grid with vertical layers.
type Grid struct {
	// X0 and Y0 are the coordinates of the lower left corner.
	X0, Y0 float64

	// Dx and Dy are the horizontal cell sizes.
	Dx, Dy float64

	Nx, Ny int

	// LayerEdges are the depths [m] of the layer boundaries, starting at
	// the top and decreasing, so layer k lies between LayerEdges[k] and
	// LayerEdges[k+1]. A droplet exactly at an edge belongs to the
	// layer below it.
	LayerEdges []float64

	// DropletsPerParticle is the number of droplets represented by each
	// particle. Zero is taken to mean 1.
	DropletsPerParticle float64
}

// Validate checks that g describes a valid grid.
func (g Grid) Validate() error {
	if !(g.Dx > 0) || !(g.Dy > 0) {
		return fmt.Errorf("eulerian: grid cell size (%g, %g) must be positive", g.Dx, g.Dy)
	}
	if g.Nx < 1 || g.Ny < 1 {
		return fmt.Errorf("eulerian: grid must have at least one cell in each direction; have %d×%d", g.Nx, g.Ny)
	}
	if len(g.LayerEdges) < 2 {
		return fmt.Errorf("eulerian: need at least 2 layer edges but have %d", len(g.LayerEdges))
	}
	for k := 1; k < len(g.LayerEdges); k++ {
		if !(g.LayerEdges[k] < g.LayerEdges[k-1]) {
			return fmt.Errorf("eulerian: layer edges %v must decrease with depth", g.LayerEdges)
		}
	}
	if g.DropletsPerParticle < 0 {
		return fmt.Errorf("eulerian: negative number of droplets per particle %g", g.DropletsPerParticle)
	}
	return nil
}

// Nz returns the number of layers.
func (g Grid) Nz() int { return len(g.LayerEdges) - 1 }

func (g Grid) numCells() int { return g.Nx * g.Ny * g.Nz() }

// index returns the position of cell (i, j, k) in the (layer, y, x)
// ordered cell arrays.
func (g Grid) index(i, j, k int) int { return (k*g.Ny+j)*g.Nx + i }

// Locate returns the indices of the cell containing the point
// (x, y, depth), or false if the point is outside of the grid.
func (g Grid) Locate(x, y, depth float64) (i, j, k int, ok bool) {
	fi := math.Floor((x - g.X0) / g.Dx)
	fj := math.Floor((y - g.Y0) / g.Dy)
	if !(fi >= 0 && fi < float64(g.Nx) && fj >= 0 && fj < float64(g.Ny)) {
		return 0, 0, 0, false
	}
	top := g.LayerEdges[0]
	if !(depth <= top && depth > g.LayerEdges[len(g.LayerEdges)-1]) {
		return 0, 0, 0, false
	}
	for k = 0; k < g.Nz(); k++ {
		if depth > g.LayerEdges[k+1] {
			break
		}
	}
	return int(fi), int(fj), k, true
}

// CellVolume returns the volume [m³] of a cell in layer k.
func (g Grid) CellVolume(k int) float64 {
	return g.Dx * g.Dy * (g.LayerEdges[k] - g.LayerEdges[k+1])
}

func (g Grid) droplets() float64 {
	if g.DropletsPerParticle == 0 {
		return 1
	}
	return g.DropletsPerParticle
}

// Field holds oil accumulated onto a grid.
type Field struct {
	Grid       Grid
	Components int

	mass     [][]float64 // [component][cell], kg
	diameter []float64   // sum of droplet diameters in each cell
	count    []int
}

// NewField returns an empty field on grid g for oil with the given
// number of components.
func NewField(g Grid, components int) (*Field, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if components < 1 {
		return nil, fmt.Errorf("eulerian: invalid number of components %d", components)
	}
	n := g.numCells()
	f := &Field{
		Grid:       g,
		Components: components,
		mass:       make([][]float64, components),
		diameter:   make([]float64, n),
		count:      make([]int, n),
	}
	for c := range f.mass {
		f.mass[c] = make([]float64, n)
	}
	return f, nil
}

// Add adds a particle in state s to the field. It returns false if the
// particle is outside of the grid.
func (f *Field) Add(s oilplume.State) bool {
	i, j, k, ok := f.Grid.Locate(s.X, s.Y, s.Depth)
	if !ok {
		return false
	}
	n := f.Grid.index(i, j, k)
	m := s.Density * mixing.SphereVolume(s.Diameter) * f.Grid.droplets()
	for c := 0; c < f.Components && c < len(s.Fractions); c++ {
		f.mass[c][n] += m * s.Fractions[c]
	}
	f.diameter[n] += s.Diameter
	f.count[n]++
	return true
}

// Merge adds the contents of o to f.
func (f *Field) Merge(o *Field) error {
	if o.Components != f.Components || o.Grid.numCells() != f.Grid.numCells() {
		return fmt.Errorf("eulerian: cannot merge fields of different shapes")
	}
	for c := range f.mass {
		floats.Add(f.mass[c], o.mass[c])
	}
	floats.Add(f.diameter, o.diameter)
	for n, v := range o.count {
		f.count[n] += v
	}
	return nil
}

// Count returns the number of particles in cell (i, j, k).
func (f *Field) Count(i, j, k int) int {
	return f.count[f.Grid.index(i, j, k)]
}

// Concentration returns the concentration [kg/m³] of component c in
// cell (i, j, k), or FillValue if the cell is empty.
func (f *Field) Concentration(c, i, j, k int) float64 {
	n := f.Grid.index(i, j, k)
	if f.count[n] == 0 {
		return FillValue
	}
	return f.mass[c][n] / f.Grid.CellVolume(k)
}

// Diameter returns the mean droplet diameter [m] in cell (i, j, k), or
// FillValue if the cell is empty.
func (f *Field) Diameter(i, j, k int) float64 {
	n := f.Grid.index(i, j, k)
	if f.count[n] == 0 {
		return FillValue
	}
	return f.diameter[n] / float64(f.count[n])
}

// TotalMass returns the mass [kg] of component c on the grid.
func (f *Field) TotalMass(c int) float64 {
	return floats.Sum(f.mass[c])
}

// Map accumulates the current state of the released particles owned by
// d onto a new field on grid g. It returns the field and the number of
// particles that fell outside of the grid.
func Map(d *oilplume.Domain, g Grid) (*Field, int, error) {
	components := len(d.Config.Components)
	field, err := NewField(g, components)
	if err != nil {
		return nil, 0, err
	}
	owned := d.Owned()
	nprocs := runtime.GOMAXPROCS(0)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outside  int
		mergeErr error
	)
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			part, _ := NewField(g, components)
			var out int
			for ii := pp; ii < len(owned); ii += nprocs {
				p := owned[ii]
				if !p.Released || !p.Bounded {
					continue
				}
				if !part.Add(p.Track[d.NF]) {
					out++
				}
			}
			mu.Lock()
			outside += out
			if err := field.Merge(part); err != nil {
				mergeErr = err
			}
			mu.Unlock()
		}(pp)
	}
	wg.Wait()
	return field, outside, mergeErr
}

// Accumulate returns a function that maps the particles owned by the
// domain onto g and merges the result into *dst, creating it if it is
// nil. It is meant to be one of the CleanupFuncs.
func Accumulate(g Grid, dst **Field, mu *sync.Mutex) oilplume.DomainManipulator {
	return func(d *oilplume.Domain) error {
		f, outside, err := Map(d, g)
		if err != nil {
			return err
		}
		if outside > 0 {
			d.Logger().WithField("particles", outside).Info("particles outside of the Eulerian grid")
		}
		mu.Lock()
		defer mu.Unlock()
		if *dst == nil {
			*dst = f
			return nil
		}
		return (*dst).Merge(f)
	}
}
