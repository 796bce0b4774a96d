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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// VarNames holds the names of the netCDF variables that
// correspond to each Dataset field.
type VarNames struct {
	Thetao, So, Volcello, Areacello string

	// Z and Time are the coordinate variables. Time is optional.
	Z, Time string
}

// DefaultVarNames returns the variable names used by MOM6 and CMIP output.
func DefaultVarNames() VarNames {
	return VarNames{
		Thetao:    "thetao",
		So:        "so",
		Volcello:  "volcello",
		Areacello: "areacello",
		Z:         DimZ,
		Time:      DimTime,
	}
}

// ReadDataset reads a dataset from a netCDF file. The four-dimensional
// fields may use an unlimited time dimension. Values equal to a
// variable's _FillValue or missing_value attribute are read as NaN.
// All problems found are returned together.
func ReadDataset(rw cdf.ReaderWriterAt, names VarNames) (*Dataset, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("steric: opening netcdf file: %v", err)
	}
	nrec, err := numRecs(rw)
	if err != nil {
		return nil, err
	}
	var errs []error
	read := func(name string) *sparse.DenseArray {
		a, err := readNCF(f, name, nrec)
		if err != nil {
			errs = append(errs, err)
		}
		return a
	}
	d := &Dataset{
		Thetao:    read(names.Thetao),
		So:        read(names.So),
		Volcello:  read(names.Volcello),
		Areacello: read(names.Areacello),
	}
	if z := read(names.Z); z != nil {
		d.Z = z.Elements
	}
	if names.Time != "" && f.Header.Lengths(names.Time) != nil {
		if t := read(names.Time); t != nil {
			d.Time = t.Elements
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return d, nil
}

// ReadReference reads the reference state from a file created by
// (*Result).Write and recalculates its global quantities.
func ReadReference(rw cdf.ReaderWriterAt) (*Reference, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("steric: opening netcdf file: %v", err)
	}
	var errs []error
	read := func(name string) *sparse.DenseArray {
		a, err := readNCF(f, name, 0)
		if err != nil {
			errs = append(errs, err)
		}
		return a
	}
	ref := &Reference{
		Thetao:    read("reference_thetao"),
		So:        read("reference_so"),
		Volcello:  read("reference_volcello"),
		Rho:       read("reference_rho"),
		Areacello: read("areacello"),
	}
	if z := read(DimZ); z != nil {
		ref.Z = z.Elements
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
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
	if err := ValidateReference(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// numRecsOffset is the position of the big-endian record count in a
// classic netCDF header.
const numRecsOffset = 4

// numRecs reads the number of records along the unlimited dimension.
func numRecs(r io.ReaderAt) (int, error) {
	var buf [4]byte
	if _, err := r.ReadAt(buf[:], numRecsOffset); err != nil {
		return 0, fmt.Errorf("steric: reading netcdf record count: %v", err)
	}
	n := int32(binary.BigEndian.Uint32(buf[:]))
	if n < 0 {
		return 0, fmt.Errorf("steric: netcdf file has an indeterminate number of records")
	}
	return int(n), nil
}

// readNCF reads variable name out of netcdf file f. nrec is the
// number of records along the unlimited dimension, if any.
func readNCF(f *cdf.File, name string, nrec int) (*sparse.DenseArray, error) {
	lengths := f.Header.Lengths(name)
	if lengths == nil {
		return nil, fmt.Errorf("%w: variable %q is not in the netcdf file", ErrMissingField, name)
	}
	dims := append([]int(nil), lengths...)
	if len(dims) > 0 && dims[0] == 0 {
		dims[0] = nrec
	}
	n := 1
	for _, l := range dims {
		n *= l
	}
	data := sparse.ZerosDense(dims...)
	if n == 0 {
		return data, nil
	}
	begin, end := make([]int, len(dims)), make([]int, len(dims))
	for i, l := range dims {
		end[i] = l - 1
	}
	r := f.Reader(name, begin, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("steric: reading netcdf variable %s: %v", name, err)
	}
	switch b := buf.(type) {
	case []float32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []float64:
		copy(data.Elements, b)
	case []int32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("steric: netcdf variable %s has unsupported type %T", name, buf)
	}
	for _, attr := range []string{"_FillValue", "missing_value"} {
		fill, ok := attributeFloat(f.Header.GetAttribute(name, attr))
		if !ok {
			continue
		}
		for i, v := range data.Elements {
			if v == fill {
				data.Elements[i] = math.NaN()
			}
		}
	}
	return data, nil
}

// attributeFloat returns the first value of a numeric attribute.
func attributeFloat(a interface{}) (float64, bool) {
	switch v := a.(type) {
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []int32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int16:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	}
	return 0, false
}

// ncData holds variables to be written to a netCDF file.
type ncData struct {
	dims    []string
	lengths []int
	attrs   []ncAttribute
	vars    map[string]ncVariable
}

type ncAttribute struct {
	name  string
	value interface{}
}

type ncVariable struct {
	dims        []string
	description string
	units       string
	data        []float64
}

func (d *ncData) addDim(name string, length int) {
	d.dims = append(d.dims, name)
	d.lengths = append(d.lengths, length)
}

func (d *ncData) addAttribute(name string, value interface{}) {
	d.attrs = append(d.attrs, ncAttribute{name: name, value: value})
}

func (d *ncData) addVariable(name string, dims []string, description, units string, data []float64) {
	if d.vars == nil {
		d.vars = make(map[string]ncVariable)
	}
	d.vars[name] = ncVariable{
		dims:        dims,
		description: description,
		units:       units,
		data:        data,
	}
}

// write writes d to w as a classic netCDF file.
func (d *ncData) write(w cdf.ReaderWriterAt) error {
	h := cdf.NewHeader(d.dims, d.lengths)
	for _, a := range d.attrs {
		h.AddAttribute("", a.name, a.value)
	}

	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(d.vars))
	for n := range d.vars {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		v := d.vars[name]
		h.AddVariable(name, v.dims, []float32{0})
		h.AddAttribute(name, "description", v.description)
		h.AddAttribute(name, "units", v.units)
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("steric: creating netcdf file: %v", err)
	}
	for _, name := range names {
		if err := writeNCF(f, name, d.vars[name].data); err != nil {
			return fmt.Errorf("steric: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return nil
}

func writeNCF(f *cdf.File, name string, data []float64) error {
	data32 := make([]float32, len(data))
	for i, e := range data {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	_, err := w.Write(data32)
	return err
}

var dims4 = []string{DimTime, DimZ, DimY, DimX}

// Write writes d to w as a netCDF file.
func (d *Dataset) Write(w cdf.ReaderWriterAt) error {
	if err := checkDataset(d); err != nil {
		return err
	}
	g := d.grid()
	nc := new(ncData)
	for i, dim := range dims4 {
		nc.addDim(dim, g.shape4()[i])
	}
	nc.addAttribute("comment", "ocean temperature, salinity and cell geometry")
	nc.addAttribute("steric_version", Version)

	t := d.Time
	if t == nil {
		t = make([]float64, g.nt)
		for i := range t {
			t[i] = float64(i)
		}
	}
	nc.addVariable(DimTime, []string{DimTime}, "time", "", t)
	nc.addVariable(DimZ, []string{DimZ}, "layer depth", "m", d.Z)
	nc.addVariable("thetao", dims4, "sea water potential temperature", "degC", d.Thetao.Elements)
	nc.addVariable("so", dims4, "sea water salinity", "psu", d.So.Elements)
	nc.addVariable("volcello", dims4, "ocean grid cell volume", "m3", d.Volcello.Elements)
	nc.addVariable("areacello", dims4[2:], "ocean grid cell area", "m2", d.Areacello.Elements)
	return nc.write(w)
}

// Write writes r and the reference state it was calculated against
// to w as a netCDF file. The sea level variable is named after the
// variant, e.g. "thermosteric".
func (r *Result) Write(w cdf.ReaderWriterAt, ref *Reference) error {
	if err := ValidateReference(ref); err != nil {
		return err
	}
	nz, ny, nx := ref.Rho.Shape[0], ref.Rho.Shape[1], ref.Rho.Shape[2]
	nc := new(ncData)
	nc.addDim(DimTime, len(r.Time))
	nc.addDim(DimZ, nz)
	nc.addDim(DimY, ny)
	nc.addDim(DimX, nx)
	nc.addAttribute("comment", fmt.Sprintf("%v sea level change", r.Variant))
	nc.addAttribute("variant", r.Variant.String())
	nc.addAttribute("domain", r.Domain.String())
	nc.addAttribute("steric_version", Version)
	nc.addAttribute("volo", []float64{r.Volo})
	nc.addAttribute("rhoga", []float64{r.Rhoga})

	dims3 := dims4[1:]
	nc.addVariable(DimTime, []string{DimTime}, "time", "", r.Time)
	nc.addVariable(DimZ, []string{DimZ}, "layer depth", "m", r.Z)
	nc.addVariable("reference_thetao", dims3, "reference sea water potential temperature", "degC", ref.Thetao.Elements)
	nc.addVariable("reference_so", dims3, "reference sea water salinity", "psu", ref.So.Elements)
	nc.addVariable("reference_volcello", dims3, "reference ocean grid cell volume", "m3", ref.Volcello.Elements)
	nc.addVariable("reference_rho", dims3, "reference in-situ density", "kg m-3", ref.Rho.Elements)
	nc.addVariable("areacello", dims4[2:], "ocean grid cell area", "m2", ref.Areacello.Elements)

	switch r.Domain {
	case Local:
		nc.addVariable("reference_height", dims3, "reference cell thickness", "m", r.ReferenceHeight.Elements)
		nc.addVariable("expansion_coeff", dims4, "expansion coefficient", "1", r.ExpansionCoeff.Elements)
		nc.addVariable(r.Variant.String(), []string{DimTime, DimY, DimX}, fmt.Sprintf("%v sea level change", r.Variant), "m", r.SeaLevel.Elements)
	case Global:
		nc.addDim("scalar", 1)
		nc.addVariable("reference_height", []string{"scalar"}, "global reference ocean depth", "m", r.ReferenceHeight.Elements)
		nc.addVariable("volo", []string{"scalar"}, "global reference ocean volume", "m3", []float64{r.Volo})
		nc.addVariable("rhoga", []string{"scalar"}, "global average reference density", "kg m-3", []float64{r.Rhoga})
		nc.addVariable("expansion_coeff", []string{DimTime}, "global expansion coefficient", "1", r.ExpansionCoeff.Elements)
		nc.addVariable(r.Variant.String(), []string{DimTime}, fmt.Sprintf("global %v sea level change", r.Variant), "m", r.SeaLevel.Elements)
	default:
		return fmt.Errorf("steric: invalid domain %v", r.Domain)
	}
	return nc.write(w)
}
