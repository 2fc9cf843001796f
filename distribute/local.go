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
	"sync"
)

type localRound struct {
	data      []byte
	err       error
	set       bool
	remaining int
}

type localHub struct {
	size   int
	mu     sync.Mutex
	cond   *sync.Cond
	rounds map[int]*localRound
	abort  error
}

// Local is a worker in a group whose members are goroutines of the
// same process.
type Local struct {
	hub   *localHub
	rank  int
	round int
}

// NewLocal returns the members of a new in-process group of the given size.
// Each member is meant to be used by a single goroutine.
func NewLocal(size int) []*Local {
	h := &localHub{
		size:   size,
		rounds: make(map[int]*localRound),
	}
	h.cond = sync.NewCond(&h.mu)
	g := make([]*Local, size)
	for i := range g {
		g[i] = &Local{hub: h, rank: i}
	}
	return g
}

// Rank implements Group.
func (l *Local) Rank() int { return l.rank }

// Size implements Group.
func (l *Local) Size() int { return l.hub.size }

// Broadcast implements Group.
func (l *Local) Broadcast(root int, v interface{}) error {
	h := l.hub
	if root < 0 || root >= h.size {
		return ErrRoot
	}
	l.round++

	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rounds[l.round]
	if !ok {
		r = &localRound{remaining: h.size}
		h.rounds[l.round] = r
	}
	if l.rank == root {
		r.data, r.err = encode(v)
		r.set = true
		h.cond.Broadcast()
	}
	for !r.set && h.abort == nil {
		h.cond.Wait()
	}
	if !r.set {
		return fmt.Errorf("distribute: broadcast from worker %d aborted: %v", root, h.abort)
	}
	r.remaining--
	if r.remaining == 0 {
		delete(h.rounds, l.round)
	}
	if r.err != nil {
		return fmt.Errorf("distribute: broadcast from worker %d failed: %v", root, r.err)
	}
	if l.rank == root {
		return nil
	}
	return decode(r.data, v)
}

// Abort releases every member of the group that is waiting for, or will
// later wait for, a broadcast that has not been sent. Those broadcasts
// return an error wrapping err. Broadcasts already sent are unaffected.
func (l *Local) Abort(err error) {
	h := l.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.abort == nil {
		h.abort = err
	}
	h.cond.Broadcast()
}

// Close implements Group.
func (l *Local) Close() error { return nil }
