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

package hash

import "testing"

type oil struct {
	Fractions []float64
	Diameter  float64
}

type opaque struct {
	f func()
	n int
}

func TestFingerprint(t *testing.T) {
	a := []oil{{Fractions: []float64{0.7, 0.2, 0.1}, Diameter: 3.e-4}}
	b := []oil{{Fractions: []float64{0.7, 0.2, 0.1}, Diameter: 3.e-4}}
	c := []oil{{Fractions: []float64{0.7, 0.2, 0.1}, Diameter: 3.0000001e-4}}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("equal values should have equal fingerprints")
	}
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("different values should have different fingerprints")
	}
	if len(Fingerprint(a)) != 16 {
		t.Errorf("fingerprint %q should have 16 characters", Fingerprint(a))
	}
}

func TestFingerprintFallback(t *testing.T) {
	x, y := opaque{n: 1}, opaque{n: 2}
	if Fingerprint(x) == Fingerprint(y) {
		t.Error("values that cannot be gob encoded should still be distinguished")
	}
	if Fingerprint(x) != Fingerprint(opaque{n: 1}) {
		t.Error("fingerprints should be repeatable")
	}
}
