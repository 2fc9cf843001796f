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

// Package sampler draws the random initial properties of oil droplets:
// the mass fractions of the lumped oil components and the droplet diameter.
package sampler

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNoSample is returned when no valid diameter could be drawn within the
// configured number of tries.
var ErrNoSample = errors.New("sampler: no valid droplet diameter within the retry limit")

// Config holds the parameters of the sampling distributions.
type Config struct {
	// ComponentDensities are the reference densities [kg/m³] of the
	// saturates, aromatics, and resins+asphaltenes components.
	ComponentDensities []float64

	// The aromatics and resins+asphaltenes fractions are each drawn
	// from a uniform distribution of Mean ± HalfWidth.
	AromaticsMean, AromaticsHalfWidth float64
	ResinsMean, ResinsHalfWidth       float64

	// Diameters [m] are drawn from a Gamma distribution with the
	// given shape parameter and mean, and are no smaller than MinDiameter.
	MeanDiameter, Shape, MinDiameter float64

	// MaxTries is the maximum number of candidates drawn for a single
	// diameter.
	MaxTries int
}

// DefaultConfig returns parameters representative of Louisiana light sweet
// crude.
func DefaultConfig() Config {
	return Config{
		ComponentDensities: []float64{800, 950, 1050},
		AromaticsMean:      0.16,
		AromaticsHalfWidth: 0.075,
		ResinsMean:         0.10,
		ResinsHalfWidth:    0.04,
		MeanDiameter:       3.e-4,
		Shape:              4.94,
		MinDiameter:        2.e-7,
		MaxTries:           10,
	}
}

// Validate checks that the parameters can be sampled from.
func (c Config) Validate() error {
	if len(c.ComponentDensities) != 3 {
		return fmt.Errorf("sampler: need 3 component densities but have %d", len(c.ComponentDensities))
	}
	if !(c.MeanDiameter > 0) || !(c.Shape > 0) {
		return fmt.Errorf("sampler: mean diameter (%g) and shape (%g) must be positive", c.MeanDiameter, c.Shape)
	}
	if c.AromaticsHalfWidth < 0 || c.ResinsHalfWidth < 0 {
		return fmt.Errorf("sampler: negative half-width")
	}
	return nil
}

// Sampler draws initial droplet properties. It is not safe for
// concurrent use.
type Sampler struct {
	cfg Config
	rnd *rand.Rand

	aromatics, resins distuv.Uniform
	normal            distuv.Normal
}

// New returns a sampler whose sequence of draws is determined by seed.
func New(cfg Config, seed uint64) *Sampler {
	src := rand.NewSource(seed)
	return &Sampler{
		cfg: cfg,
		rnd: rand.New(src),
		aromatics: distuv.Uniform{
			Min: cfg.AromaticsMean - cfg.AromaticsHalfWidth,
			Max: cfg.AromaticsMean + cfg.AromaticsHalfWidth,
			Src: src,
		},
		resins: distuv.Uniform{
			Min: cfg.ResinsMean - cfg.ResinsHalfWidth,
			Max: cfg.ResinsMean + cfg.ResinsHalfWidth,
			Src: src,
		},
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Composition returns the mass fractions of the saturates, aromatics, and
// resins+asphaltenes components along with their densities. The saturates
// fraction is whatever the other two leave.
func (s *Sampler) Composition() (fractions, densities []float64) {
	arom := s.aromatics.Rand()
	res := s.resins.Rand()
	fractions = []float64{1 - (arom + res), arom, res}
	densities = append([]float64(nil), s.cfg.ComponentDensities...)
	return fractions, densities
}

// Diameter returns a droplet diameter [m] drawn from a Gamma distribution
// using the method of Marsaglia and Tsang (2000). Shapes no larger than
// one are boosted by one and the result corrected by U^(1/shape).
// ErrNoSample is returned if all MaxTries candidates are rejected.
func (s *Sampler) Diameter() (float64, error) {
	alpha := s.cfg.Shape
	rate := alpha / s.cfg.MeanDiameter
	boosted := alpha <= 1
	if boosted {
		alpha++
	}
	d := alpha - 1./3.
	c := 1 / math.Sqrt(9*d)
	for try := 0; try < s.cfg.MaxTries; try++ {
		x := s.normal.Rand()
		if x <= -1/c {
			continue
		}
		v := 1 + c*x
		v = v * v * v
		u := s.rnd.Float64()
		if math.Log(u) >= 0.5*x*x+d*(1-v+math.Log(v)) {
			continue
		}
		g := d * v / rate
		if boosted {
			g *= math.Pow(s.rnd.Float64(), 1/s.cfg.Shape)
		}
		if g < s.cfg.MinDiameter {
			g = s.cfg.MinDiameter
		}
		return g, nil
	}
	return 0, ErrNoSample
}
