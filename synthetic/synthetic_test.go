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

package synthetic

import (
	"math"
	"reflect"
	"testing"

	"github.com/spatialmodel/steric"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

func TestGenerate(t *testing.T) {
	d := Default()
	if err := steric.DefaultValidation().Dataset(d); err != nil {
		t.Fatal(err)
	}
	if sum := d.Areacello.Sum(); math.Abs(sum-steric.ReferenceOceanArea) > 1e-9*steric.ReferenceOceanArea {
		t.Errorf("areacello sum: have %g, want %g", sum, steric.ReferenceOceanArea)
	}
	for _, f := range []struct {
		name      string
		x         []float64
		mu, sigma float64
	}{
		{name: "thetao", x: d.Thetao.Elements, mu: 15, sigma: 5},
		{name: "so", x: d.So.Elements, mu: 35, sigma: 1.5},
		{name: "volcello", x: d.Volcello.Elements, mu: 1000, sigma: 100},
	} {
		t.Run(f.name, func(t *testing.T) {
			mean, std := stat.MeanStdDev(f.x, nil)
			// 625 samples: the standard error of the mean is sigma/25.
			if math.Abs(mean-f.mu) > 4*f.sigma/25 {
				t.Errorf("mean: have %g, want %g", mean, f.mu)
			}
			if math.Abs(std-f.sigma) > 0.2*f.sigma {
				t.Errorf("standard deviation: have %g, want %g", std, f.sigma)
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, b := Default(), Default()
	if !reflect.DeepEqual(a, b) {
		t.Error("datasets generated with the same seed differ")
	}
	c := Generate(rand.NewSource(Seed + 1))
	if reflect.DeepEqual(a.Thetao.Elements, c.Thetao.Elements) {
		t.Error("datasets generated with different seeds are identical")
	}
}
