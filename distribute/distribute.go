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

// Package distribute provides collective communication among the workers
// of a simulation. The only collective operation is Broadcast, which is
// used to give every worker an identical copy of data computed once by a
// single designated worker.
package distribute

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"reflect"
)

// ErrRoot is returned when a broadcast names a worker that cannot act as
// its source.
var ErrRoot = errors.New("distribute: invalid root worker")

// Group is a set of workers taking part in collective operations. Every
// worker in a group must make the same sequence of collective calls.
type Group interface {
	// Rank returns the index of the calling worker in the group.
	Rank() int

	// Size returns the number of workers in the group.
	Size() int

	// Broadcast copies the value pointed to by v on worker root into the
	// value pointed to by v on every other worker. It blocks until the
	// calling worker has its copy. v must be a non-nil pointer to a
	// gob-encodable value.
	Broadcast(root int, v interface{}) error

	// Close releases the resources held by the worker.
	Close() error
}

func encode(v interface{}) ([]byte, error) {
	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(v); err != nil {
		return nil, fmt.Errorf("distribute: problem encoding broadcast data: %v", err)
	}
	return b.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("distribute: broadcast destination must be a non-nil pointer, not %T", v)
	}
	// gob leaves fields that were zero at the source untouched.
	rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("distribute: problem decoding broadcast data: %v", err)
	}
	return nil
}
