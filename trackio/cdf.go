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


package trackio

import (
	"fmt"

	"github.com/ctessum/cdf"
)

func hasVariable(f *cdf.File, name string) bool {
	for _, v := range f.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// checkShape checks that variable name has dimensions (time, particle)
// with the given lengths.
func checkShape(f *cdf.File, name string, nt, np int) error {
	l := f.Header.Lengths(name)
	if l == nil {
		return fmt.Errorf("trackio: missing variable %s", name)
	}
	if len(l) != 2 || l[0] != nt || l[1] != np {
		return fmt.Errorf("trackio: variable %s has shape %v; want [%d %d]", name, l, nt, np)
	}
	return nil
}

// readFloats reads all of the data in variable name, which must be of
// type double.
func readFloats(f *cdf.File, name string) ([]float64, error) {
	if !hasVariable(f, name) {
		return nil, fmt.Errorf("trackio: missing variable %s", name)
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("trackio: reading variable %s: %v", name, err)
	}
	data, ok := buf.([]float64)
	if !ok {
		return nil, fmt.Errorf("trackio: variable %s is of type %T; want []float64", name, buf)
	}
	return data, nil
}

// readInts reads all of the data in variable name, which must be of
// type int.
func readInts(f *cdf.File, name string) ([]int32, error) {
	if !hasVariable(f, name) {
		return nil, fmt.Errorf("trackio: missing variable %s", name)
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("trackio: reading variable %s: %v", name, err)
	}
	data, ok := buf.([]int32)
	if !ok {
		return nil, fmt.Errorf("trackio: variable %s is of type %T; want []int32", name, buf)
	}
	return data, nil
}

// writeWhole writes every value of variable name.
func writeWhole(f *cdf.File, name string, data interface{}) error {
	l := f.Header.Lengths(name)
	begin := make([]int, len(l))
	end := make([]int, len(l))
	end[0] = l[0] // one past the last value
	return write(f, name, begin, end, data)
}

// writeRecord writes the values of variable name at time record rec.
func writeRecord(f *cdf.File, name string, rec int, data interface{}) error {
	n := len(f.Header.Lengths(name))
	begin := make([]int, n)
	end := make([]int, n)
	begin[0] = rec
	end[0] = rec + 1
	return write(f, name, begin, end, data)
}

func write(f *cdf.File, name string, begin, end []int, data interface{}) error {
	w := f.Writer(name, begin, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("trackio: writing variable %s: %v", name, err)
	}
	return nil
}
