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

package distribute

import (
	"fmt"
	"net"
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// FetchArgs identifies a broadcast being waited for.
type FetchArgs struct {
	Round, Rank int
}

// Coordinator holds the data of the broadcasts made by the coordinating
// worker of an RPC group. It should not be interacted with directly,
// but it is exported to meet RPC requirements.
type Coordinator struct {
	mu      sync.Mutex
	cond    *sync.Cond
	data    map[int][]byte
	pending map[int]int
	log     logrus.FieldLogger
}

func newCoordinator(log logrus.FieldLogger) *Coordinator {
	c := &Coordinator{
		data:    make(map[int][]byte),
		pending: make(map[int]int),
		log:     log,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Fetch blocks until the data for the requested broadcast round is
// available and then returns it. It meets the requirements for use
// with rpc.Call.
func (c *Coordinator) Fetch(args FetchArgs, reply *[]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if b, ok := c.data[args.Round]; ok {
			*reply = b
			c.pending[args.Round]--
			if c.pending[args.Round] <= 0 {
				delete(c.data, args.Round)
				delete(c.pending, args.Round)
			}
			c.cond.Broadcast()
			c.log.WithFields(logrus.Fields{
				"round": args.Round,
				"rank":  args.Rank,
			}).Debug("broadcast data fetched")
			return nil
		}
		c.cond.Wait()
	}
}

// publish makes data available to the n other workers and waits until
// all of them have fetched it.
func (c *Coordinator) publish(round int, data []byte, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 {
		return
	}
	c.data[round] = data
	c.pending[round] = n
	c.cond.Broadcast()
	for {
		if _, ok := c.pending[round]; !ok {
			return
		}
		c.cond.Wait()
	}
}

// RPC is a worker in a group whose members communicate by RPC over HTTP.
// Worker 0 is the coordinator: it serves the data for every broadcast, so
// it must be the root of every broadcast.
type RPC struct {
	rank, size int
	round      int

	coord    *Coordinator
	listener net.Listener
	client   *rpc.Client

	// Log receives information about the group.
	Log logrus.FieldLogger
}

// Listen creates the coordinating worker (rank 0) of a group of the given
// size, accepting connections from the other workers at addr.
func Listen(addr string, size int, log logrus.FieldLogger) (*RPC, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("distribute: coordinator problem listening on %s: %v", addr, err)
	}
	c := newCoordinator(log)
	s := rpc.NewServer()
	if err := s.Register(c); err != nil {
		l.Close()
		return nil, err
	}
	go http.Serve(l, s)
	log.WithFields(logrus.Fields{
		"address": l.Addr().String(),
		"size":    size,
	}).Info("coordinator listening")
	return &RPC{
		size:     size,
		coord:    c,
		listener: l,
		Log:      log,
	}, nil
}

// Dial joins the group whose coordinator is at addr as the worker with the
// given rank. Failed connection attempts are retried according to b, or
// with exponential backoff if b is nil.
func Dial(addr string, rank, size int, b backoff.BackOff, log logrus.FieldLogger) (*RPC, error) {
	if rank <= 0 || rank >= size {
		return nil, fmt.Errorf("distribute: invalid rank %d for group of size %d", rank, size)
	}
	if b == nil {
		b = backoff.NewExponentialBackOff()
	}
	var client *rpc.Client
	err := backoff.RetryNotify(
		func() error {
			var err error
			client, err = rpc.DialHTTP("tcp", addr)
			return err
		},
		b,
		func(err error, d time.Duration) {
			log.WithError(err).Warnf("dialing coordinator at %s: retrying in %v", addr, d)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("distribute: problem connecting to coordinator at %s: %v", addr, err)
	}
	return &RPC{
		rank:   rank,
		size:   size,
		client: client,
		Log:    log,
	}, nil
}

// Addr returns the address the coordinator is listening on, or an empty
// string for other workers.
func (g *RPC) Addr() string {
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// Rank implements Group.
func (g *RPC) Rank() int { return g.rank }

// Size implements Group.
func (g *RPC) Size() int { return g.size }

// Broadcast implements Group. root must be 0.
func (g *RPC) Broadcast(root int, v interface{}) error {
	if root != 0 {
		return ErrRoot
	}
	g.round++
	if g.rank == root {
		data, err := encode(v)
		if err != nil {
			return err
		}
		g.coord.publish(g.round, data, g.size-1)
		return nil
	}
	var data []byte
	if err := g.client.Call("Coordinator.Fetch", FetchArgs{Round: g.round, Rank: g.rank}, &data); err != nil {
		return fmt.Errorf("distribute: worker %d problem fetching broadcast %d: %v", g.rank, g.round, err)
	}
	return decode(data, v)
}

// Close implements Group.
func (g *RPC) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	if g.listener != nil {
		return g.listener.Close()
	}
	return nil
}
