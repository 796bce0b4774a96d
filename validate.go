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
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

var (
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("steric: missing field")

	// ErrRank is returned when a field has the wrong number of dimensions.
	ErrRank = errors.New("steric: wrong number of dimensions")

	// ErrShapeMismatch is matched by every *ShapeMismatchError.
	ErrShapeMismatch = errors.New("steric: shape mismatch")

	// ErrReference is returned when a reference state is inconsistent.
	ErrReference = errors.New("steric: invalid reference state")
)

// ShapeMismatchError reports a field whose extent does not match
// the grid it is meant to be defined on.
type ShapeMismatchError struct {
	Field      string
	Want, Have []int

	// Msg replaces the default shape description when set.
	Msg string
}

func (e *ShapeMismatchError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("steric: %s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("steric: %s has shape %v but the grid requires %v", e.Field, e.Have, e.Want)
}

// Is allows errors.Is(err, ErrShapeMismatch).
func (e *ShapeMismatchError) Is(target error) bool { return target == ErrShapeMismatch }

// ReferenceOceanArea is the expected global ocean area [m2].
const ReferenceOceanArea = 3.6111092e14

// DefaultAreaTolerance is the default allowed fractional difference
// between the total cell area and ReferenceOceanArea.
const DefaultAreaTolerance = 0.02

// Validation specifies how datasets are checked before use.
type Validation struct {
	// Strict specifies whether an ocean area problem is an error.
	// When false it is logged as a warning.
	Strict bool

	// OceanArea is the expected sum of the cell areas [m2].
	// Values <= 0 disable the area check, e.g. for regional grids.
	OceanArea float64

	// AreaTolerance is the allowed fractional difference from OceanArea.
	AreaTolerance float64

	Log logrus.FieldLogger
}

// DefaultValidation returns strict validation against the global
// ocean area.
func DefaultValidation() Validation {
	return Validation{
		Strict:        true,
		OceanArea:     ReferenceOceanArea,
		AreaTolerance: DefaultAreaTolerance,
		Log:           logrus.StandardLogger(),
	}
}

// ValidateAreacello returns whether the sum of the non-NaN cell
// areas is within tolerance (a fraction) of total.
func ValidateAreacello(area *sparse.DenseArray, total, tolerance float64) bool {
	sum := nansum(area.Elements)
	return math.Abs(sum-total) <= tolerance*total
}

// Dataset checks that all fields of d are present and consistently
// shaped, and that the total cell area matches v.OceanArea.
// All problems found are returned together.
func (v Validation) Dataset(d *Dataset) error {
	if err := checkDataset(d); err != nil {
		return err
	}
	return v.area(d.Areacello)
}

// Reference checks r in the same manner as Dataset.
func (v Validation) Reference(r *Reference) error {
	if err := ValidateReference(r); err != nil {
		return err
	}
	return v.area(r.Areacello)
}

func (v Validation) area(area *sparse.DenseArray) error {
	if v.OceanArea <= 0 || ValidateAreacello(area, v.OceanArea, v.AreaTolerance) {
		return nil
	}
	sum := nansum(area.Elements)
	err := &ShapeMismatchError{
		Field: "areacello",
		Have:  area.Shape,
		Msg: fmt.Sprintf("total area %.6g m2 differs from the expected ocean area %.6g m2 by more than %g%%",
			sum, v.OceanArea, v.AreaTolerance*100),
	}
	if v.Strict {
		return err
	}
	log := v.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithFields(logrus.Fields{
		"total_area":    sum,
		"expected_area": v.OceanArea,
	}).Warn(err.Error())
	return nil
}

// checkField checks that a is present, has the given rank and
// has as many elements as its shape implies.
func checkField(name string, a *sparse.DenseArray, rank int) error {
	if a == nil {
		return fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	if len(a.Shape) != rank {
		return fmt.Errorf("%w: %s has %d dimensions; want %d", ErrRank, name, len(a.Shape), rank)
	}
	n := 1
	for _, l := range a.Shape {
		n *= l
	}
	if n != len(a.Elements) {
		return &ShapeMismatchError{
			Field: name,
			Have:  a.Shape,
			Msg:   fmt.Sprintf("shape %v implies %d elements but there are %d", a.Shape, n, len(a.Elements)),
		}
	}
	return nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkDataset checks the presence and shapes of the fields in d.
func checkDataset(d *Dataset) error {
	if d == nil {
		return fmt.Errorf("%w: dataset is nil", ErrMissingField)
	}
	var errs []error
	for _, f := range []struct {
		name string
		a    *sparse.DenseArray
		rank int
	}{
		{name: "thetao", a: d.Thetao, rank: 4},
		{name: "so", a: d.So, rank: 4},
		{name: "volcello", a: d.Volcello, rank: 4},
		{name: "areacello", a: d.Areacello, rank: 2},
	} {
		if err := checkField(f.name, f.a, f.rank); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	g := d.grid()
	for _, f := range []struct {
		name string
		a    *sparse.DenseArray
	}{
		{name: "so", a: d.So},
		{name: "volcello", a: d.Volcello},
	} {
		if !sameShape(f.a.Shape, g.shape4()) {
			errs = append(errs, &ShapeMismatchError{Field: f.name, Want: g.shape4(), Have: f.a.Shape})
		}
	}
	if !sameShape(d.Areacello.Shape, g.shape2()) {
		errs = append(errs, &ShapeMismatchError{Field: "areacello", Want: g.shape2(), Have: d.Areacello.Shape})
	}
	if len(d.Z) != g.nz {
		errs = append(errs, &ShapeMismatchError{Field: DimZ, Want: []int{g.nz}, Have: []int{len(d.Z)}})
	}
	if d.Time != nil && len(d.Time) != g.nt {
		errs = append(errs, &ShapeMismatchError{Field: DimTime, Want: []int{g.nt}, Have: []int{len(d.Time)}})
	}
	if g.nt == 0 {
		errs = append(errs, &ShapeMismatchError{Field: DimTime, Have: []int{0}, Msg: "there are no time steps"})
	}
	return errors.Join(errs...)
}

// ValidateReference checks that r has no time dimension, that its
// fields are consistently shaped and that it contains ocean volume.
func ValidateReference(r *Reference) error {
	if r == nil {
		return fmt.Errorf("%w: reference is nil", ErrMissingField)
	}
	var errs []error
	for _, f := range []struct {
		name string
		a    *sparse.DenseArray
		rank int
	}{
		{name: "reference thetao", a: r.Thetao, rank: 3},
		{name: "reference so", a: r.So, rank: 3},
		{name: "reference volcello", a: r.Volcello, rank: 3},
		{name: "reference rho", a: r.Rho, rank: 3},
		{name: "reference areacello", a: r.Areacello, rank: 2},
	} {
		if err := checkField(f.name, f.a, f.rank); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	want := r.Thetao.Shape
	for _, f := range []struct {
		name string
		a    *sparse.DenseArray
	}{
		{name: "reference so", a: r.So},
		{name: "reference volcello", a: r.Volcello},
		{name: "reference rho", a: r.Rho},
	} {
		if !sameShape(f.a.Shape, want) {
			errs = append(errs, &ShapeMismatchError{Field: f.name, Want: want, Have: f.a.Shape})
		}
	}
	if !sameShape(r.Areacello.Shape, want[1:]) {
		errs = append(errs, &ShapeMismatchError{Field: "reference areacello", Want: want[1:], Have: r.Areacello.Shape})
	}
	if len(r.Z) != want[0] {
		errs = append(errs, &ShapeMismatchError{Field: "reference " + DimZ, Want: want[:1], Have: []int{len(r.Z)}})
	}
	if !(r.Volo > 0) || math.IsInf(r.Volo, 0) {
		errs = append(errs, fmt.Errorf("%w: total ocean volume is %g", ErrReference, r.Volo))
	}
	return errors.Join(errs...)
}

// checkCompatible checks that the reference r can be used with dataset d.
func checkCompatible(d *Dataset, r *Reference) error {
	g := d.grid()
	if !sameShape(r.Thetao.Shape, g.shape3()) {
		return &ShapeMismatchError{Field: "reference", Want: g.shape3(), Have: r.Thetao.Shape}
	}
	return nil
}
