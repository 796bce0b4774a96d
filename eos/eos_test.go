/*
Copyright © 2024 the steric authors.
This file is part of steric.

steric is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

steric is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with steric.  If not, see <http://www.gnu.org/licenses/>.
*/

package eos

import (
	"errors"
	"math"
	"testing"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func TestWright(t *testing.T) {
	const want = 1025.359957453976
	if have := Wright(18, 35, 2e5); different(have, want, 1e-14) {
		t.Errorf("have %.15g, want %.15g", have, want)
	}
}

func TestWrightMonotonic(t *testing.T) {
	base := Wright(15, 35, 1e6)
	t.Run("warmer", func(t *testing.T) {
		if Wright(16, 35, 1e6) >= base {
			t.Error("density should decrease with temperature")
		}
	})
	t.Run("saltier", func(t *testing.T) {
		if Wright(15, 36, 1e6) <= base {
			t.Error("density should increase with salinity")
		}
	})
	t.Run("deeper", func(t *testing.T) {
		if Wright(15, 35, 4e7) <= base {
			t.Error("density should increase with pressure")
		}
	})
	t.Run("nan", func(t *testing.T) {
		if !math.IsNaN(Wright(math.NaN(), 35, 0)) {
			t.Error("NaN temperature should give NaN density")
		}
	})
}

func TestLinear(t *testing.T) {
	l := DefaultLinear
	if have := l.Density(l.T0, l.S0, 0); have != l.Rho0 {
		t.Errorf("reference density: have %g, want %g", have, l.Rho0)
	}
	want := l.Rho0 * (1 - l.Alpha)
	if have := l.Density(l.T0+1, l.S0, 0); different(have, want, 1e-12) {
		t.Errorf("thermal expansion: have %g, want %g", have, want)
	}
	want = l.Rho0*(1+l.Beta) + l.Compressibility*1e5
	if have := l.Density(l.T0, l.S0+1, 1e5); different(have, want, 1e-12) {
		t.Errorf("haline contraction: have %g, want %g", have, want)
	}
	// The linear form should be a reasonable stand-in near the reference point.
	if have, want := l.Density(10, 35, 0), Wright(10, 35, 0); different(have, want, 0.01) {
		t.Errorf("linear vs wright: %g vs %g", have, want)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"wright", "Wright", " WRIGHT "} {
		f, err := ByName(name)
		if err != nil {
			t.Fatal(err)
		}
		if f(18, 35, 2e5) != Wright(18, 35, 2e5) {
			t.Errorf("%q does not resolve to Wright", name)
		}
	}
	f, err := ByName("linear")
	if err != nil {
		t.Fatal(err)
	}
	if f(10, 35, 0) != DefaultLinear.Rho0 {
		t.Error("linear does not resolve to DefaultLinear")
	}
	if _, err := ByName("unesco"); !errors.Is(err, ErrUnknown) {
		t.Errorf("have %v, want ErrUnknown", err)
	}
}
