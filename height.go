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
	"strings"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat"
)

// Domain specifies whether sea level change is calculated for each
// water column or for the ocean as a whole.
type Domain int

const (
	// Local calculates sea level change for each water column.
	Local Domain = iota

	// Global calculates a single global mean sea level change.
	Global
)

var domainNames = map[Domain]string{
	Local:  "local",
	Global: "global",
}

func (d Domain) String() string {
	if s, ok := domainNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Domain(%d)", int(d))
}

// ParseDomain returns the Domain named s ("local" or "global").
func ParseDomain(s string) (Domain, error) {
	for d, n := range domainNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("steric: invalid domain %q; valid options are \"local\" and \"global\"", s)
}

// IntegrateLocal converts the expansion coefficient coef
// (time, z_l, yh, xh) into the sea level change [m] of each water
// column. The reference height of each cell is its reference volume
// divided by its area. Land layers are left out of the column sums and
// columns that are land at the surface are NaN.
func IntegrateLocal(ref *Reference, coef *sparse.DenseArray) (*Result, error) {
	if len(coef.Shape) != 4 || !sameShape(coef.Shape[1:], ref.Volcello.Shape) {
		return nil, &ShapeMismatchError{Field: "expansion coefficient", Want: ref.Volcello.Shape, Have: coef.Shape}
	}
	nt, nz, ny, nx := coef.Shape[0], coef.Shape[1], coef.Shape[2], coef.Shape[3]
	nCol := ny * nx
	nVol := nz * nCol

	href := sparse.ZerosDense(nz, ny, nx)
	for i, v := range ref.Volcello.Elements {
		href.Elements[i] = v / ref.Areacello.Elements[i%nCol]
	}

	sealevel := sparse.ZerosDense(nt, ny, nx)
	for t := 0; t < nt; t++ {
		for c := 0; c < nCol; c++ {
			if math.IsNaN(ref.Volcello.Elements[c]) {
				sealevel.Elements[t*nCol+c] = math.NaN()
				continue
			}
			var sum float64
			for k := 0; k < nz; k++ {
				h := href.Elements[k*nCol+c]
				if math.IsNaN(ref.Volcello.Elements[k*nCol+c]) {
					continue
				}
				sum += h * coef.Elements[t*nVol+k*nCol+c]
			}
			sealevel.Elements[t*nCol+c] = sum
		}
	}
	return &Result{
		Domain:          Local,
		ReferenceHeight: href,
		ExpansionCoeff:  coef,
		SeaLevel:        sealevel,
		Volo:            ref.Volo,
		Rhoga:           ref.Rhoga,
	}, nil
}

// IntegrateGlobal converts the expansion coefficient coef and density
// rho (both (time, z_l, yh, xh)) into global mean sea level change [m].
// The reference height is the total ocean volume divided by the total
// ocean area. With ExpansionLinear the global coefficient is the
// volume-weighted mean of coef; with ExpansionLog it is
// ln(rhoga / rho_global(t)), where rho_global is total ocean mass
// divided by total ocean volume.
func IntegrateGlobal(ref *Reference, rho, coef *sparse.DenseArray, e Expansion) (*Result, error) {
	if len(coef.Shape) != 4 || !sameShape(coef.Shape[1:], ref.Volcello.Shape) {
		return nil, &ShapeMismatchError{Field: "expansion coefficient", Want: ref.Volcello.Shape, Have: coef.Shape}
	}
	nt := coef.Shape[0]
	href := ref.Volo / nansum(ref.Areacello.Elements)

	gcoef := sparse.ZerosDense(nt)
	switch e {
	case ExpansionLinear:
		cells := oceanCells(ref.Volcello)
		w := gather(ref.Volcello.Elements, cells, 0)
		nVol := len(ref.Volcello.Elements)
		for t := 0; t < nt; t++ {
			gcoef.Elements[t] = stat.Mean(gather(coef.Elements, cells, t*nVol), w)
		}
	case ExpansionLog:
		masso, err := CalcMasso(rho, ref.Volcello)
		if err != nil {
			return nil, err
		}
		for t, m := range masso {
			gcoef.Elements[t] = e.coefficient(ref.Rhoga, m/ref.Volo)
		}
	default:
		return nil, fmt.Errorf("steric: invalid expansion coefficient form %v", e)
	}

	sealevel := sparse.ZerosDense(nt)
	for t, c := range gcoef.Elements {
		sealevel.Elements[t] = href * c
	}
	h := sparse.ZerosDense(1)
	h.Elements[0] = href
	return &Result{
		Domain:          Global,
		ReferenceHeight: h,
		ExpansionCoeff:  gcoef,
		SeaLevel:        sealevel,
		Volo:            ref.Volo,
		Rhoga:           ref.Rhoga,
	}, nil
}
