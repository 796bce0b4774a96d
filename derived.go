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

package steric

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/steric/eos"
	"gonum.org/v1/gonum/floats"
)

// CalcRho calculates in-situ density [kg m-3] by evaluating eq at
// every grid cell. thetao and so may each have dimensions
// (time, z_l, yh, xh) or (z_l, yh, xh); three-dimensional inputs are
// broadcast over time. z holds the depth [m] of each layer.
func CalcRho(eq eos.Func, thetao, so *sparse.DenseArray, z []float64) (*sparse.DenseArray, error) {
	if eq == nil {
		return nil, fmt.Errorf("%w: equation of state", ErrMissingField)
	}
	if thetao == nil || so == nil {
		return nil, fmt.Errorf("%w: CalcRho requires both thetao and so", ErrMissingField)
	}
	tr, sr := len(thetao.Shape), len(so.Shape)
	if (tr != 3 && tr != 4) || (sr != 3 && sr != 4) {
		return nil, fmt.Errorf("%w: thetao and so must have 3 or 4 dimensions but have %d and %d", ErrRank, tr, sr)
	}
	volShape := thetao.Shape[tr-3:]
	if !sameShape(volShape, so.Shape[sr-3:]) {
		return nil, &ShapeMismatchError{Field: "so", Want: volShape, Have: so.Shape}
	}
	if tr == 4 && sr == 4 && thetao.Shape[0] != so.Shape[0] {
		return nil, &ShapeMismatchError{Field: "so", Want: thetao.Shape, Have: so.Shape}
	}
	if len(z) != volShape[0] {
		return nil, &ShapeMismatchError{Field: DimZ, Want: volShape[:1], Have: []int{len(z)}}
	}
	outShape := thetao.Shape
	if sr > tr {
		outShape = so.Shape
	}
	rho := sparse.ZerosDense(append([]int(nil), outShape...)...)
	nCol := volShape[1] * volShape[2]
	nVol := volShape[0] * nCol
	p := pressure(z)
	for i := range rho.Elements {
		t, r := i/nVol, i%nVol
		rho.Elements[i] = eq(element(thetao, t, r, nVol), element(so, t, r, nVol), p[r/nCol])
	}
	return rho, nil
}

// element returns the value of a at time index t and volume offset r,
// broadcasting three-dimensional arrays over time.
func element(a *sparse.DenseArray, t, r, nVol int) float64 {
	if len(a.Shape) == 3 {
		return a.Elements[r]
	}
	return a.Elements[t*nVol+r]
}

// CalcVolo returns the total ocean volume [m3] of the cell volume
// field vol, which must not have a time dimension. NaN cells are land.
func CalcVolo(vol *sparse.DenseArray) (float64, error) {
	if len(vol.Shape) != 3 {
		return math.NaN(), fmt.Errorf("%w: volcello must have dimensions (%s, %s, %s) but has %d dimensions",
			ErrRank, DimZ, DimY, DimX, len(vol.Shape))
	}
	return floats.Sum(gather(vol.Elements, oceanCells(vol), 0)), nil
}

// CalcMasso returns the total ocean mass [kg] for each time step of
// rho, which may have dimensions (time, z_l, yh, xh) or (z_l, yh, xh).
// vol is the reference cell volume (z_l, yh, xh).
func CalcMasso(rho, vol *sparse.DenseArray) ([]float64, error) {
	if len(vol.Shape) != 3 {
		return nil, fmt.Errorf("%w: volcello must not have a time dimension", ErrRank)
	}
	nt := 1
	switch len(rho.Shape) {
	case 3:
	case 4:
		nt = rho.Shape[0]
	default:
		return nil, fmt.Errorf("%w: rho has %d dimensions", ErrRank, len(rho.Shape))
	}
	if !sameShape(rho.Shape[len(rho.Shape)-3:], vol.Shape) {
		return nil, &ShapeMismatchError{Field: "rho", Want: vol.Shape, Have: rho.Shape}
	}
	cells := oceanCells(vol)
	w := gather(vol.Elements, cells, 0)
	nVol := len(vol.Elements)
	masso := make([]float64, nt)
	for t := range masso {
		masso[t] = floats.Dot(gather(rho.Elements, cells, t*nVol), w)
	}
	return masso, nil
}

// CalcRhoga returns the global average density [kg m-3].
func CalcRhoga(masso, volo float64) float64 {
	return masso / volo
}

// oceanCells returns the flat indices of the non-land cells of the
// volume field vol.
func oceanCells(vol *sparse.DenseArray) []int {
	cells := make([]int, 0, len(vol.Elements))
	for i, v := range vol.Elements {
		if !math.IsNaN(v) {
			cells = append(cells, i)
		}
	}
	return cells
}

// gather returns x[offset+i] for each i in idx.
func gather(x []float64, idx []int, offset int) []float64 {
	o := make([]float64, len(idx))
	for j, i := range idx {
		o[j] = x[offset+i]
	}
	return o
}

// nansum returns the sum of the non-NaN values in x.
func nansum(x []float64) float64 {
	var sum float64
	for _, v := range x {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}
