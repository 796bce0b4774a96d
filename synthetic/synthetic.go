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

// Package synthetic generates random ocean datasets for testing and
// demonstrating steric sea level calculations.
package synthetic

import (
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/steric"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Seed is the default random seed.
const Seed = 123

// Size is the extent of each dimension of a generated dataset.
const Size = 5

// Depths are the layer depths [m] of a generated dataset.
var Depths = []float64{2.5, 10, 100, 1000, 4000}

// Generate returns a (time, z_l, yh, xh) = (5, 5, 5, 5) dataset with
// normally distributed fields: thetao ~ N(15, 5) °C, so ~ N(35, 1.5) psu,
// volcello ~ N(1000, 100) m3 and areacello ~ N(100, 10) m2, with
// areacello rescaled to sum to steric.ReferenceOceanArea.
func Generate(src rand.Source) *steric.Dataset {
	d := &steric.Dataset{
		Time:      make([]float64, Size),
		Z:         append([]float64(nil), Depths...),
		Thetao:    normal(src, 15, 5, Size, Size, Size, Size),
		So:        normal(src, 35, 1.5, Size, Size, Size, Size),
		Volcello:  normal(src, 1000, 100, Size, Size, Size, Size),
		Areacello: normal(src, 100, 10, Size, Size),
	}
	for i := range d.Time {
		d.Time[i] = float64(i)
	}
	d.Areacello.Scale(steric.ReferenceOceanArea / d.Areacello.Sum())
	return d
}

// Default returns the dataset generated with Seed.
func Default() *steric.Dataset {
	return Generate(rand.NewSource(Seed))
}

func normal(src rand.Source, mu, sigma float64, dims ...int) *sparse.DenseArray {
	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: src}
	a := sparse.ZerosDense(dims...)
	for i := range a.Elements {
		a.Elements[i] = dist.Rand()
	}
	return a
}
