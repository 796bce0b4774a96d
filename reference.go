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
	"io"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/steric/eos"
)

// Reduction specifies how the time dimension is removed from a
// dataset to form the reference state.
type Reduction int

const (
	// ReduceFirst uses the first time step.
	ReduceFirst Reduction = iota

	// ReduceMean uses the average over all time steps.
	ReduceMean
)

var reductionNames = map[Reduction]string{
	ReduceFirst: "first",
	ReduceMean:  "mean",
}

func (r Reduction) String() string {
	if s, ok := reductionNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Reduction(%d)", int(r))
}

// ParseReduction returns the Reduction named s ("first" or "mean").
func ParseReduction(s string) (Reduction, error) {
	for r, n := range reductionNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("steric: invalid reduction %q; valid options are \"first\" and \"mean\"", s)
}

// Reference is the time-invariant ocean state that perturbed
// densities are compared against. It must not be modified after
// it is created.
type Reference struct {
	// Thetao [°C], So [psu], Volcello [m3] and Rho [kg m-3] have
	// dimensions (z_l, yh, xh).
	Thetao, So, Volcello, Rho *sparse.DenseArray

	// Areacello [m2] has dimensions (yh, xh).
	Areacello *sparse.DenseArray

	// Z is layer depth [m].
	Z []float64

	// Volo [m3] and Masso [kg] are the total ocean volume and mass,
	// and Rhoga [kg m-3] is the global average density.
	Volo, Masso, Rhoga float64
}

// NewReference creates a reference state from d by removing the
// time dimension with reduction r and evaluating eq on the result.
func NewReference(d *Dataset, eq eos.Func, r Reduction) (*Reference, error) {
	if err := checkDataset(d); err != nil {
		return nil, err
	}
	ref := &Reference{
		Areacello: clone(d.Areacello),
		Z:         append([]float64(nil), d.Z...),
	}
	var err error
	for _, f := range []struct {
		from *sparse.DenseArray
		to   **sparse.DenseArray
	}{
		{from: d.Thetao, to: &ref.Thetao},
		{from: d.So, to: &ref.So},
		{from: d.Volcello, to: &ref.Volcello},
	} {
		if *f.to, err = reduceTime(f.from, r); err != nil {
			return nil, err
		}
	}
	if ref.Rho, err = CalcRho(eq, ref.Thetao, ref.So, ref.Z); err != nil {
		return nil, fmt.Errorf("steric: calculating reference density: %w", err)
	}
	if ref.Volo, err = CalcVolo(ref.Volcello); err != nil {
		return nil, err
	}
	masso, err := CalcMasso(ref.Rho, ref.Volcello)
	if err != nil {
		return nil, err
	}
	ref.Masso = masso[0]
	ref.Rhoga = CalcRhoga(ref.Masso, ref.Volo)
	return ref, nil
}

// reduceTime removes the time dimension from the 4-D array a.
func reduceTime(a *sparse.DenseArray, r Reduction) (*sparse.DenseArray, error) {
	switch r {
	case ReduceFirst:
		return timeSlice(a, 0), nil
	case ReduceMean:
		return average(timeSlices(a))
	default:
		return nil, fmt.Errorf("steric: invalid reduction %v", r)
	}
}

// nextData returns sequential arrays, and io.EOF once there are no more.
type nextData func() (*sparse.DenseArray, error)

// timeSlices returns the time steps of a one at a time.
func timeSlices(a *sparse.DenseArray) nextData {
	var t int
	return func() (*sparse.DenseArray, error) {
		if t >= a.Shape[0] {
			return nil, io.EOF
		}
		s := timeSlice(a, t)
		t++
		return s, nil
	}
}

// average returns the average of the arrays returned by dataFunc.
func average(dataFunc nextData) (*sparse.DenseArray, error) {
	var avgdata *sparse.DenseArray
	var n int
	for {
		data, err := dataFunc()
		if err != nil {
			if err == io.EOF {
				return arrayAverage(avgdata, n), nil
			}
			return nil, err
		}
		if avgdata == nil {
			avgdata = sparse.ZerosDense(data.Shape...)
		}
		avgdata.AddDense(data)
		n++
	}
}

func arrayAverage(s *sparse.DenseArray, numTsteps int) *sparse.DenseArray {
	n := float64(numTsteps)
	for i, val := range s.Elements {
		s.Elements[i] = val / n
	}
	return s
}
