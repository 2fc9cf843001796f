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
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/oilplume/distribute"
	"github.com/spatialmodel/oilplume/internal/hash"
	"github.com/spatialmodel/oilplume/sampler"
)

// Coordinator is the rank of the worker that samples the initial oil
// properties.
const Coordinator = 0

// initialSet is the message broadcast by the coordinator. Failure is set
// instead of Oil if sampling failed, so that no worker is left waiting.
type initialSet struct {
	Oil     []InitialOil
	Failure string
}

// SampleInitialOil draws the initial properties of n particles.
func SampleInitialOil(s *sampler.Sampler, n int) ([]InitialOil, error) {
	oil := make([]InitialOil, n)
	for i := range oil {
		f, rho := s.Composition()
		diam, err := s.Diameter()
		if err != nil {
			return nil, fmt.Errorf("oilplume: problem sampling diameter of particle %d: %v", i, err)
		}
		oil[i] = InitialOil{Fractions: f, Densities: rho, Diameter: diam}
	}
	return oil, nil
}

// InitializeOil returns a function that gives every particle its initial oil
// properties. The properties are sampled once, by the Coordinator worker,
// and broadcast to the rest of g; s is only used on the Coordinator and may
// be nil elsewhere. Every worker in g must call the function before any
// particle is stepped. A failure on any worker is a failure on all of them.
func InitializeOil(g distribute.Group, s *sampler.Sampler) DomainManipulator {
	return func(d *Domain) error {
		var set initialSet
		if g.Rank() == Coordinator {
			if s == nil {
				set.Failure = "no sampler on coordinator"
			} else if oil, err := SampleInitialOil(s, len(d.Particles)); err != nil {
				set.Failure = err.Error()
			} else {
				set.Oil = oil
			}
		}
		if err := g.Broadcast(Coordinator, &set); err != nil {
			return fmt.Errorf("oilplume: problem distributing initial oil properties: %v", err)
		}
		if set.Failure != "" {
			return errors.New(set.Failure)
		}
		if len(set.Oil) != len(d.Particles) {
			return fmt.Errorf("oilplume: received initial properties for %d particles but have %d",
				len(set.Oil), len(d.Particles))
		}
		for i, p := range d.Particles {
			p.Initial = &set.Oil[i]
		}
		d.Logger().WithFields(logrus.Fields{
			"rank":        g.Rank(),
			"particles":   len(set.Oil),
			"fingerprint": hash.Fingerprint(set.Oil),
		}).Info("initial oil properties received")
		return nil
	}
}
