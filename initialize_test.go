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
	"sync"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/oilplume/distribute"
	"github.com/spatialmodel/oilplume/sampler"
)

// initializeGroup runs InitializeOil on every member of a local group,
// each with its own domain of n particles.
func initializeGroup(t *testing.T, size, n int, cfg sampler.Config) ([]*Domain, []error) {
	group := distribute.NewLocal(size)
	domains := make([]*Domain, size)
	errs := make([]error, size)
	var wg sync.WaitGroup
	wg.Add(size)
	for rank := range group {
		d, err := NewDomain(DefaultConfig(), make([]float64, n))
		if err != nil {
			t.Fatal(err)
		}
		d.Lstr, d.Lend, err = Partition(n, rank, size)
		if err != nil {
			t.Fatal(err)
		}
		log, _ := test.NewNullLogger()
		d.Log = log
		domains[rank] = d
		var s *sampler.Sampler
		if rank == Coordinator {
			s = sampler.New(cfg, 1)
		}
		d.InitFuncs = []DomainManipulator{InitializeOil(group[rank], s)}
		go func(rank int) {
			defer wg.Done()
			errs[rank] = domains[rank].Init()
		}(rank)
	}
	wg.Wait()
	return domains, errs
}

func TestInitializeOil(t *testing.T) {
	const n = 50
	domains, errs := initializeGroup(t, 4, n, sampler.DefaultConfig())
	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	want, err := SampleInitialOil(sampler.New(sampler.DefaultConfig(), 1), n)
	if err != nil {
		t.Fatal(err)
	}
	for rank, d := range domains {
		for i, p := range d.Particles {
			if p.Initial == nil {
				t.Fatalf("worker %d: particle %d not initialized", rank, i)
			}
			if diff := pretty.Diff(*p.Initial, want[i]); len(diff) != 0 {
				t.Errorf("worker %d, particle %d: %v", rank, i, diff)
			}
		}
	}
	// Particles must not share initial properties.
	if domains[0].Particles[0].Initial == domains[1].Particles[0].Initial {
		t.Error("workers share memory")
	}
}

func TestInitializeOilSamplerFailure(t *testing.T) {
	cfg := sampler.DefaultConfig()
	cfg.MaxTries = 0
	_, errs := initializeGroup(t, 3, 5, cfg)
	for rank, err := range errs {
		if err == nil {
			t.Errorf("worker %d: expected an error", rank)
		}
	}
}

func TestInitializeThenStep(t *testing.T) {
	const n = 20
	domains, errs := initializeGroup(t, 2, n, sampler.DefaultConfig())
	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	src := depthSeries(n, -100, -50, -2)
	for _, d := range domains {
		d.Dt = 300
		d.NumSteps = 3
		d.RunFuncs = []DomainManipulator{
			LoadAmbient(src),
			PredictorCorrector(Calculations(StepOil())),
			AdvanceTime(),
		}
		if err := d.Run(); err != nil {
			t.Fatal(err)
		}
	}
	for rank, d := range domains {
		for i, p := range d.Particles {
			owned := i >= d.Lstr && i < d.Lend
			if p.Released != owned {
				t.Errorf("worker %d, particle %d: released=%v, owned=%v", rank, i, p.Released, owned)
			}
			if owned && p.Track[d.NF].SurfaceTime != 300 {
				t.Errorf("worker %d, particle %d: residence %g", rank, i, p.Track[d.NF].SurfaceTime)
			}
		}
	}
}
