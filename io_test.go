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
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/steric/eos"
)

func tempFile(t *testing.T, name string) *os.File {
	f, err := os.Create(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestDatasetRoundTrip(t *testing.T) {
	d := testDataset(2, 3, 4, 5)
	d.Volcello.Set(math.NaN(), 1, 2, 3, 4)
	f := tempFile(t, "dataset.nc")
	if err := d.Write(f); err != nil {
		t.Fatal(err)
	}
	d2, err := ReadDataset(f, DefaultVarNames())
	if err != nil {
		t.Fatal(err)
	}
	if !sameShape(d2.Thetao.Shape, d.Thetao.Shape) || !sameShape(d2.Areacello.Shape, d.Areacello.Shape) {
		t.Fatalf("shapes: %v, %v", d2.Thetao.Shape, d2.Areacello.Shape)
	}
	for _, f := range []struct {
		name       string
		have, want []float64
	}{
		{name: "thetao", have: d2.Thetao.Elements, want: d.Thetao.Elements},
		{name: "so", have: d2.So.Elements, want: d.So.Elements},
		{name: "volcello", have: d2.Volcello.Elements, want: d.Volcello.Elements},
		{name: "areacello", have: d2.Areacello.Elements, want: d.Areacello.Elements},
		{name: DimZ, have: d2.Z, want: d.Z},
		{name: DimTime, have: d2.Time, want: d.Time},
	} {
		t.Run(f.name, func(t *testing.T) {
			if len(f.have) != len(f.want) {
				t.Fatalf("length %d, want %d", len(f.have), len(f.want))
			}
			for i, w := range f.want {
				h := f.have[i]
				if math.IsNaN(w) {
					if !math.IsNaN(h) {
						t.Errorf("%d: have %g, want NaN", i, h)
					}
					continue
				}
				if w != 0 && different(h, w, 1e-6) {
					t.Errorf("%d: have %g, want %g", i, h, w)
				}
			}
		})
	}
}

func TestReadDatasetMissing(t *testing.T) {
	f := tempFile(t, "dataset.nc")
	if err := testDataset(2, 3, 4, 5).Write(f); err != nil {
		t.Fatal(err)
	}
	names := DefaultVarNames()
	names.Thetao = "temp"
	names.So = "salt"
	_, err := ReadDataset(f, names)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("have %v, want ErrMissingField", err)
	}

	names = DefaultVarNames()
	names.Time = "ocean_time"
	d, err := ReadDataset(f, names)
	if err != nil {
		t.Fatal(err)
	}
	if d.Time != nil {
		t.Errorf("time: have %v, want nil", d.Time)
	}
}

func TestResultWrite(t *testing.T) {
	d := testDataset(2, 3, 4, 5)
	for _, dom := range []Domain{Local, Global} {
		t.Run(dom.String(), func(t *testing.T) {
			r, ref, err := Thermosteric(d, WithDomain(dom))
			if err != nil {
				t.Fatal(err)
			}
			w := tempFile(t, "result.nc")
			if err := r.Write(w, ref); err != nil {
				t.Fatal(err)
			}
			f, err := cdf.Open(w)
			if err != nil {
				t.Fatal(err)
			}
			want := []int{2, 4, 5}
			if dom == Global {
				want = []int{2}
			}
			if have := f.Header.Lengths("thermosteric"); !sameShape(have, want) {
				t.Errorf("sea level shape: have %v, want %v", have, want)
			}
			if v := f.Header.GetAttribute("", "variant"); v != "thermosteric" {
				t.Errorf("variant attribute %v", v)
			}
			sl, err := readNCF(f, "thermosteric", 0)
			if err != nil {
				t.Fatal(err)
			}
			for i, s := range r.SeaLevel.Elements {
				if s != 0 && different(sl.Elements[i], s, 1e-6) {
					t.Errorf("sea level %d: have %g, want %g", i, sl.Elements[i], s)
				}
			}

			ref2, err := ReadReference(w)
			if err != nil {
				t.Fatal(err)
			}
			if different(ref2.Volo, ref.Volo, 1e-6) || different(ref2.Rhoga, ref.Rhoga, 1e-6) {
				t.Errorf("reference: have %g, %g; want %g, %g", ref2.Volo, ref2.Rhoga, ref.Volo, ref.Rhoga)
			}
			if _, _, err := Thermosteric(d, WithDomain(dom), WithReference(ref2)); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestReadFillValue(t *testing.T) {
	h := cdf.NewHeader([]string{"n"}, []int{3})
	h.AddVariable("x", []string{"n"}, []float32{0})
	h.AddAttribute("x", "_FillValue", []float32{-1e20})
	h.Define()
	w := tempFile(t, "fill.nc")
	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Writer("x", []int{0}, []int{3}).Write([]float32{1, -1e20, 3}); err != nil {
		t.Fatal(err)
	}
	x, err := readNCF(f, "x", 0)
	if err != nil {
		t.Fatal(err)
	}
	if x.Elements[0] != 1 || !math.IsNaN(x.Elements[1]) || x.Elements[2] != 3 {
		t.Errorf("have %v, want [1 NaN 3]", x.Elements)
	}
}

func TestReadRecordDimension(t *testing.T) {
	h := cdf.NewHeader([]string{DimTime, "n"}, []int{0, 2})
	h.AddVariable("x", []string{DimTime, "n"}, []float32{0})
	h.Define()
	w := tempFile(t, "record.nc")
	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Writer("x", []int{0, 0}, []int{3, 2}).Write([]float32{1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatal(err)
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		t.Fatal(err)
	}
	nrec, err := numRecs(w)
	if err != nil {
		t.Fatal(err)
	}
	if nrec != 3 {
		t.Fatalf("records: have %d, want 3", nrec)
	}
	x, err := readNCF(f, "x", nrec)
	if err != nil {
		t.Fatal(err)
	}
	if !sameShape(x.Shape, []int{3, 2}) || x.Get(2, 1) != 6 {
		t.Errorf("have %v %v", x.Shape, x.Elements)
	}
}

func TestLinearEOSRoundTrip(t *testing.T) {
	d := testDataset(2, 3, 4, 5)
	r, ref, err := Steric(d, WithEOS(eos.DefaultLinear.Density), WithDomain(Global))
	if err != nil {
		t.Fatal(err)
	}
	w := tempFile(t, "linear.nc")
	if err := r.Write(w, ref); err != nil {
		t.Fatal(err)
	}
	f, err := cdf.Open(w)
	if err != nil {
		t.Fatal(err)
	}
	volo, err := readNCF(f, "volo", 0)
	if err != nil {
		t.Fatal(err)
	}
	if different(volo.Elements[0], ref.Volo, 1e-6) {
		t.Errorf("volo: have %g, want %g", volo.Elements[0], ref.Volo)
	}
}
