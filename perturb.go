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
	"github.com/spatialmodel/steric/eos"
)

// Variant specifies which fields are allowed to vary in time when
// calculating perturbed density.
type Variant int

const (
	// VariantSteric varies both temperature and salinity.
	VariantSteric Variant = iota

	// VariantThermosteric varies temperature and holds salinity at
	// the reference state.
	VariantThermosteric

	// VariantHalosteric varies salinity and holds temperature at
	// the reference state.
	VariantHalosteric
)

var variantNames = map[Variant]string{
	VariantSteric:       "steric",
	VariantThermosteric: "thermosteric",
	VariantHalosteric:   "halosteric",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant returns the Variant named s.
func ParseVariant(s string) (Variant, error) {
	for v, n := range variantNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("steric: invalid variant %q; valid options are \"steric\", \"thermosteric\" and \"halosteric\"", s)
}

// fields returns the temperature and salinity that v evaluates the
// equation of state with.
func (v Variant) fields(d *Dataset, ref *Reference) (thetao, so *sparse.DenseArray, err error) {
	switch v {
	case VariantSteric:
		return d.Thetao, d.So, nil
	case VariantThermosteric:
		return d.Thetao, ref.So, nil
	case VariantHalosteric:
		return ref.Thetao, d.So, nil
	default:
		return nil, nil, fmt.Errorf("steric: invalid variant %v", v)
	}
}

// Expansion specifies the form of the expansion coefficient.
type Expansion int

const (
	// ExpansionLinear is (rho_ref - rho) / rho_ref.
	ExpansionLinear Expansion = iota

	// ExpansionLog is ln(rho_ref / rho).
	ExpansionLog
)

var expansionNames = map[Expansion]string{
	ExpansionLinear: "linear",
	ExpansionLog:    "log",
}

func (e Expansion) String() string {
	if s, ok := expansionNames[e]; ok {
		return s
	}
	return fmt.Sprintf("Expansion(%d)", int(e))
}

// ParseExpansion returns the Expansion named s ("linear" or "log").
func ParseExpansion(s string) (Expansion, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "logarithmic" {
		name = "log"
	}
	for e, n := range expansionNames {
		if name == n {
			return e, nil
		}
	}
	return 0, fmt.Errorf("steric: invalid expansion coefficient form %q; valid options are \"linear\" and \"log\"", s)
}

// coefficient returns the fractional expansion of a parcel whose
// density changes from rhoRef to rho. There is no protection against
// zero densities.
func (e Expansion) coefficient(rhoRef, rho float64) float64 {
	if e == ExpansionLog {
		return math.Log(rhoRef / rho)
	}
	return (rhoRef - rho) / rhoRef
}

// PerturbedDensity calculates in-situ density [kg m-3] with
// dimensions (time, z_l, yh, xh) for variant v, holding the
// non-varying field at its reference value.
func PerturbedDensity(eq eos.Func, d *Dataset, ref *Reference, v Variant) (*sparse.DenseArray, error) {
	thetao, so, err := v.fields(d, ref)
	if err != nil {
		return nil, err
	}
	rho, err := CalcRho(eq, thetao, so, d.Z)
	if err != nil {
		return nil, fmt.Errorf("steric: calculating %v density: %w", v, err)
	}
	return rho, nil
}

// ExpansionCoeff calculates the expansion coefficient of each cell
// of rho (time, z_l, yh, xh) relative to the reference density.
// Cells that are land in the reference state are NaN.
func ExpansionCoeff(ref *Reference, rho *sparse.DenseArray, e Expansion) (*sparse.DenseArray, error) {
	if len(rho.Shape) != 4 {
		return nil, fmt.Errorf("%w: rho has %d dimensions; want 4", ErrRank, len(rho.Shape))
	}
	if !sameShape(rho.Shape[1:], ref.Rho.Shape) {
		return nil, &ShapeMismatchError{Field: "rho", Want: ref.Rho.Shape, Have: rho.Shape}
	}
	coef := sparse.ZerosDense(append([]int(nil), rho.Shape...)...)
	nVol := len(ref.Rho.Elements)
	for i, r := range rho.Elements {
		k := i % nVol
		if math.IsNaN(ref.Volcello.Elements[k]) {
			coef.Elements[i] = math.NaN()
			continue
		}
		coef.Elements[i] = e.coefficient(ref.Rho.Elements[k], r)
	}
	return coef, nil
}
