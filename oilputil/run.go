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
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/oilplume"
	"github.com/spatialmodel/oilplume/distribute"
	"github.com/spatialmodel/oilplume/eulerian"
	"github.com/spatialmodel/oilplume/sampler"
	"github.com/spatialmodel/oilplume/trackio"
	"github.com/spf13/cobra"
)

// newLogger returns a logger writing to w.
func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.Out = w
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	return l
}

// numSteps returns the number of time steps to simulate.
func numSteps(f *trackio.Forcing, dt, endTime float64) (int, error) {
	if dt > 0 && math.Abs(dt-f.Dt()) > 1.e-6*f.Dt() {
		return 0, fmt.Errorf("oilplume: dt=%g does not match the forcing time step %g", dt, f.Dt())
	}
	n := f.NumSteps()
	if endTime > 0 {
		m := int(math.Ceil((endTime-f.StartTime())/f.Dt() - 1.e-9))
		if m < n {
			n = m
		}
	}
	if n < 1 {
		return 0, fmt.Errorf("oilplume: end_time %g is not after the forcing start time %g", endTime, f.StartTime())
	}
	return n, nil
}

// aborter is a group whose waiting members can be released when one
// member fails.
type aborter interface {
	Abort(err error)
}

// Run runs the simulation described by c. Messages are logged to
// the output of cmd and to c.LogFile.
func Run(cmd *cobra.Command, c *RunConfig) error {
	logfile, err := os.Create(c.LogFile)
	if err != nil {
		return fmt.Errorf("oilplume: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := newLogger(io.MultiWriter(cmd.OutOrStdout(), logfile))

	forcing, err := trackio.OpenForcing(c.Forcing)
	if err != nil {
		return err
	}
	steps, err := numSteps(forcing, c.Dt, c.EndTime)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"particles": len(forcing.ReleaseTimes()),
		"steps":     steps,
		"dt":        forcing.Dt(),
		"closure":   c.Domain.Closure,
	}).Info("starting simulation")

	var groups []distribute.Group
	switch {
	case c.GroupSize > 1 && c.Rank == 0:
		g, err := distribute.Listen(c.Coordinator, c.GroupSize, log)
		if err != nil {
			return err
		}
		groups = append(groups, g)
	case c.GroupSize > 1:
		g, err := distribute.Dial(c.Coordinator, c.Rank, c.GroupSize, nil, log)
		if err != nil {
			return err
		}
		groups = append(groups, g)
	default:
		for _, g := range distribute.NewLocal(c.Workers) {
			groups = append(groups, g)
		}
	}
	defer func() {
		for _, g := range groups {
			g.Close()
		}
	}()
	multi := c.GroupSize > 1 || c.Workers > 1

	var (
		field *eulerian.Field
		mu    sync.Mutex
	)
	errs := make(chan error, len(groups))
	for _, g := range groups {
		go func(g distribute.Group) {
			err := simulate(c, g, forcing, steps, log, multi, &field, &mu)
			if a, ok := g.(aborter); ok && err != nil {
				a.Abort(err)
			}
			errs <- err
		}(g)
	}
	var firstErr error
	for range groups {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return firstErr
	}

	if c.Grid != nil && field != nil {
		out := c.EulerianOutput
		if c.GroupSize > 1 {
			out = rankFile(out, c.Rank)
		}
		names := make([]string, len(c.Domain.Components))
		for i, comp := range c.Domain.Components {
			names[i] = comp.Name
		}
		if err := field.Write(out, names); err != nil {
			return err
		}
		log.WithField("file", out).Info("wrote Eulerian fields")
	}
	log.Info("simulation complete")
	return nil
}

// simulate runs the part of the simulation owned by member g of a group.
// If multi is true, the rank is added to the output file name.
func simulate(c *RunConfig, g distribute.Group, forcing *trackio.Forcing, steps int,
	log logrus.FieldLogger, multi bool, field **eulerian.Field, mu *sync.Mutex) (err error) {

	d, err := oilplume.NewDomain(c.Domain, forcing.ReleaseTimes())
	if err != nil {
		return err
	}
	if d.Lstr, d.Lend, err = oilplume.Partition(len(d.Particles), g.Rank(), g.Size()); err != nil {
		return err
	}
	d.Dt = forcing.Dt()
	d.Time = forcing.StartTime()
	d.NumSteps = steps
	d.Log = log.WithField("rank", g.Rank())

	var s *sampler.Sampler
	if g.Rank() == oilplume.Coordinator {
		s = sampler.New(c.Sampler, c.Seed)
	}

	// The track file is opened after InitializeOil, which every worker
	// must reach.
	var (
		w      *trackio.Writer
		output oilplume.DomainManipulator
	)
	defer func() {
		if w != nil {
			closeOutput(w, &err)
		}
	}()
	openTracks := func(d *oilplume.Domain) error {
		owned := d.Owned()
		if len(owned) == 0 {
			return nil
		}
		out := c.Output
		if multi {
			out = rankFile(out, g.Rank())
		}
		ids := make([]int, len(owned))
		for i, p := range owned {
			ids[i] = p.ID
		}
		names := make([]string, len(c.Domain.Components))
		for i, comp := range c.Domain.Components {
			names[i] = comp.Name
		}
		var err error
		if w, err = trackio.CreateWriter(out, trackio.NumRecords(steps, c.OutputInterval), ids, names); err != nil {
			return err
		}
		output = trackio.Output(w, c.OutputInterval)
		return nil
	}

	d.InitFuncs = []oilplume.DomainManipulator{
		forcing.Initialize(),
		oilplume.InitializeOil(g, s),
		openTracks,
	}
	d.RunFuncs = []oilplume.DomainManipulator{
		oilplume.LoadAmbient(forcing),
		oilplume.PredictorCorrector(oilplume.Calculations(oilplume.StepOil())),
		func(d *oilplume.Domain) error {
			if output == nil {
				return nil
			}
			return output(d)
		},
		oilplume.Log(d.Log, c.OutputInterval),
		oilplume.RunPeriodically(c.DiagnosticsPeriod, logDiagnostics),
		oilplume.AdvanceTime(),
	}
	if c.Grid != nil {
		d.CleanupFuncs = append(d.CleanupFuncs, eulerian.Accumulate(*c.Grid, field, mu))
	}

	if err := d.Init(); err != nil {
		return err
	}
	if err := d.Run(); err != nil {
		return err
	}
	return d.Cleanup()
}

// closeOutput closes c and, if *err is nil, sets it to any error
// from closing.
func closeOutput(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("oilplume: problem closing output file: %v", cerr)
	}
}

// logDiagnostics logs the diagnostic counters accumulated so far.
func logDiagnostics(d *oilplume.Domain) error {
	diag := d.Diagnostics.Snapshot()
	d.Logger().WithFields(logrus.Fields{
		"step":                  d.Step,
		"density_out_of_bounds": diag.DensityOutOfBounds,
		"nonfinite_evaporation": diag.NonFiniteEvaporation,
		"velocity_out_of_range": diag.VelocityOutOfRange,
	}).Info("diagnostics")
	return nil
}
