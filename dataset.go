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

// Package steric calculates steric sea level change and its thermosteric
// and halosteric components from ocean model temperature, salinity and
// cell geometry fields.
package steric

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Version gives the version number.
const Version = "0.1.0"

// Names of the grid dimensions. Four-dimensional fields are ordered
// (DimTime, DimZ, DimY, DimX).
const (
	DimTime = "time"
	DimZ    = "z_l"
	DimY    = "yh"
	DimX    = "xh"
)

// PressureScale converts the z_l layer depth [m] into the
// approximate pressure [Pa] handed to the equation of state.
const PressureScale = 1.0e4

// Dataset holds the ocean model fields needed to calculate
// steric sea level change.
type Dataset struct {
	// Time and Z are the time [arbitrary units] and layer depth [m]
	// coordinates.
	Time, Z []float64

	// Thetao is potential temperature [°C], So is salinity [psu] and
	// Volcello is cell volume [m3], all with dimensions
	// (time, z_l, yh, xh). Land cells have NaN volume.
	Thetao, So, Volcello *sparse.DenseArray

	// Areacello is cell area [m2] with dimensions (yh, xh).
	Areacello *sparse.DenseArray
}

// grid holds the extents of a dataset's dimensions.
type grid struct {
	nt, nz, ny, nx int
}

func (g grid) shape4() []int { return []int{g.nt, g.nz, g.ny, g.nx} }
func (g grid) shape3() []int { return []int{g.nz, g.ny, g.nx} }
func (g grid) shape2() []int { return []int{g.ny, g.nx} }
func (g grid) nColumn() int { return g.ny * g.nx }
func (g grid) nVolume() int { return g.nz * g.ny * g.nx }
func (g grid) String() string { return fmt.Sprintf("(%d, %d, %d, %d)", g.nt, g.nz, g.ny, g.nx) }

// grid returns the dataset's dimensions as given by Thetao.
// The dataset must be valid.
func (d *Dataset) grid() grid {
	s := d.Thetao.Shape
	return grid{nt: s[0], nz: s[1], ny: s[2], nx: s[3]}
}

// pressure returns the pressure [Pa] of each vertical layer.
func pressure(z []float64) []float64 {
	p := make([]float64, len(z))
	for i, v := range z {
		p[i] = v * PressureScale
	}
	return p
}

// Copy returns a deep copy of d.
func (d *Dataset) Copy() *Dataset {
	o := &Dataset{
		Time: append([]float64(nil), d.Time...),
		Z:    append([]float64(nil), d.Z...),
	}
	for _, f := range []struct {
		from *sparse.DenseArray
		to   **sparse.DenseArray
	}{
		{from: d.Thetao, to: &o.Thetao},
		{from: d.So, to: &o.So},
		{from: d.Volcello, to: &o.Volcello},
		{from: d.Areacello, to: &o.Areacello},
	} {
		if f.from != nil {
			*f.to = clone(f.from)
		}
	}
	return o
}

// timeSlice returns a copy of time index t of the 4-D array a.
func timeSlice(a *sparse.DenseArray, t int) *sparse.DenseArray {
	o := sparse.ZerosDense(append([]int(nil), a.Shape[1:]...)...)
	n := len(o.Elements)
	copy(o.Elements, a.Elements[t*n:(t+1)*n])
	return o
}

// clone returns a copy of a that owns its shape and elements.
func clone(a *sparse.DenseArray) *sparse.DenseArray {
	o := sparse.ZerosDense(append([]int(nil), a.Shape...)...)
	copy(o.Elements, a.Elements)
	return o
}
