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
	"math"
	"strings"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/steric/eos"
)

// testDataset returns a small dataset with deterministic values whose
// areas sum to ReferenceOceanArea.
func testDataset(nt, nz, ny, nx int) *Dataset {
	d := &Dataset{
		Time:      make([]float64, nt),
		Z:         make([]float64, nz),
		Thetao:    sparse.ZerosDense(nt, nz, ny, nx),
		So:        sparse.ZerosDense(nt, nz, ny, nx),
		Volcello:  sparse.ZerosDense(nt, nz, ny, nx),
		Areacello: sparse.ZerosDense(ny, nx),
	}
	for i := range d.Time {
		d.Time[i] = float64(i)
	}
	for k := range d.Z {
		d.Z[k] = 10 * float64(k*k+1)
	}
	for i := range d.Thetao.Elements {
		d.Thetao.Elements[i] = 10 + float64(i%7)
		d.So.Elements[i] = 34 + 0.3*float64(i%5)
		d.Volcello.Elements[i] = 1000 + float64(i%3)
	}
	for i := range d.Areacello.Elements {
		d.Areacello.Elements[i] = ReferenceOceanArea / float64(ny*nx)
	}
	return d
}

func TestValidateMissing(t *testing.T) {
	err := DefaultValidation().Dataset(&Dataset{})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("have %v, want ErrMissingField", err)
	}
	for _, name := range []string{"thetao", "so", "volcello", "areacello"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
	if err := DefaultValidation().Dataset(nil); !errors.Is(err, ErrMissingField) {
		t.Errorf("nil dataset: have %v", err)
	}
}

func TestValidateRank(t *testing.T) {
	d := testDataset(2, 3, 4, 5)
	d.Thetao = sparse.ZerosDense(3, 4, 5)
	if err := DefaultValidation().Dataset(d); !errors.Is(err, ErrRank) {
		t.Errorf("have %v, want ErrRank", err)
	}
}

func TestValidateShape(t *testing.T) {
	t.Run("areacello", func(t *testing.T) {
		d := testDataset(2, 3, 5, 5)
		d.Areacello = sparse.ZerosDense(4, 5)
		err := DefaultValidation().Dataset(d)
		var sme *ShapeMismatchError
		if !errors.As(err, &sme) {
			t.Fatalf("have %v, want *ShapeMismatchError", err)
		}
		if sme.Field != "areacello" || !sameShape(sme.Want, []int{5, 5}) || !sameShape(sme.Have, []int{4, 5}) {
			t.Errorf("wrong error contents: %+v", sme)
		}
	})
	t.Run("multiple", func(t *testing.T) {
		d := testDataset(2, 3, 4, 5)
		d.So = sparse.ZerosDense(2, 3, 4, 4)
		d.Z = d.Z[:2]
		d.Time = d.Time[:1]
		err := DefaultValidation().Dataset(d)
		if !errors.Is(err, ErrShapeMismatch) {
			t.Fatalf("have %v, want ErrShapeMismatch", err)
		}
		for _, name := range []string{"so", DimZ, DimTime} {
			if !strings.Contains(err.Error(), name) {
				t.Errorf("error %q does not mention %s", err, name)
			}
		}
	})
	t.Run("elements", func(t *testing.T) {
		d := testDataset(2, 3, 4, 5)
		d.Volcello.Elements = d.Volcello.Elements[:10]
		if err := DefaultValidation().Dataset(d); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("have %v, want ErrShapeMismatch", err)
		}
	})
	t.Run("no time steps", func(t *testing.T) {
		d := testDataset(0, 3, 4, 5)
		if err := DefaultValidation().Dataset(d); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("have %v, want ErrShapeMismatch", err)
		}
	})
	t.Run("valid", func(t *testing.T) {
		if err := DefaultValidation().Dataset(testDataset(2, 3, 4, 5)); err != nil {
			t.Error(err)
		}
	})
	t.Run("no time coordinate", func(t *testing.T) {
		d := testDataset(2, 3, 4, 5)
		d.Time = nil
		if err := DefaultValidation().Dataset(d); err != nil {
			t.Error(err)
		}
	})
}

func TestValidateAreacello(t *testing.T) {
	area := testDataset(1, 1, 4, 5).Areacello
	if !ValidateAreacello(area, ReferenceOceanArea, DefaultAreaTolerance) {
		t.Error("exact area rejected")
	}
	area.Scale(1.03)
	if ValidateAreacello(area, ReferenceOceanArea, DefaultAreaTolerance) {
		t.Error("area 3% too large accepted")
	}
	if !ValidateAreacello(area, ReferenceOceanArea, 0.05) {
		t.Error("area within 5% rejected")
	}
	area.Set(math.NaN(), 0, 0)
	if !ValidateAreacello(area, ReferenceOceanArea*1.03*19/20, DefaultAreaTolerance) {
		t.Error("NaN area not skipped")
	}
}

func TestValidateNotStrict(t *testing.T) {
	log, hook := test.NewNullLogger()
	d := testDataset(2, 3, 4, 5)
	d.Areacello.Scale(1.3)
	v := DefaultValidation()
	v.Strict = false
	v.Log = log
	if err := v.Dataset(d); err != nil {
		t.Fatal(err)
	}
	e := hook.LastEntry()
	if e == nil {
		t.Fatal("no warning logged")
	}
	if e.Level != logrus.WarnLevel {
		t.Errorf("logged at level %v", e.Level)
	}
	if !strings.Contains(e.Message, "areacello") {
		t.Errorf("message %q does not mention areacello", e.Message)
	}

	v.Strict = true
	if err := v.Dataset(d); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("strict: have %v, want ErrShapeMismatch", err)
	}
}

func TestValidateReference(t *testing.T) {
	d := testDataset(2, 3, 4, 5)
	ref, err := NewReference(d, eos.Wright, ReduceFirst)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateReference(ref); err != nil {
		t.Fatal(err)
	}
	if err := DefaultValidation().Reference(ref); err != nil {
		t.Fatal(err)
	}

	bad := *ref
	bad.Rho = sparse.ZerosDense(2, 3, 4, 5)
	if err := ValidateReference(&bad); !errors.Is(err, ErrRank) {
		t.Errorf("time dimension: have %v, want ErrRank", err)
	}
	bad = *ref
	bad.Z = bad.Z[:1]
	if err := ValidateReference(&bad); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("z_l: have %v, want ErrShapeMismatch", err)
	}
	bad = *ref
	bad.Volo = math.NaN()
	if err := ValidateReference(&bad); !errors.Is(err, ErrReference) {
		t.Errorf("volo: have %v, want ErrReference", err)
	}
	if err := ValidateReference(nil); !errors.Is(err, ErrMissingField) {
		t.Errorf("nil: have %v, want ErrMissingField", err)
	}
}

func TestIncompatibleReference(t *testing.T) {
	ref, err := NewReference(testDataset(2, 3, 4, 4), eos.Wright, ReduceFirst)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = Decompose(testDataset(2, 3, 4, 5), VariantSteric, WithReference(ref))
	var sme *ShapeMismatchError
	if !errors.As(err, &sme) || sme.Field != "reference" {
		t.Errorf("have %v, want reference shape mismatch", err)
	}
}

func TestShapeCheckBeforeEOS(t *testing.T) {
	d := testDataset(2, 3, 4, 5)
	d.Areacello = sparse.ZerosDense(5, 4)
	var calls int
	eq := func(temp, salt, p float64) float64 {
		calls++
		return eos.Wright(temp, salt, p)
	}
	if _, _, err := Thermosteric(d, WithEOS(eq)); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("have %v, want ErrShapeMismatch", err)
	}
	if calls != 0 {
		t.Errorf("equation of state evaluated %d times", calls)
	}
}
