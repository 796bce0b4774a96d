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

// Package hash fingerprints calculation results so that repeated runs
// can be compared in log output.
package hash

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/ctessum/sparse"
	"github.com/davecgh/go-spew/spew"
)

// printer writes metadata deterministically: map keys are sorted and
// pointer addresses are left out.
var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Sum returns a hex fnv-128a key for meta and the shapes and values of
// arrays. All NaN values hash the same. Nil arrays are allowed.
func Sum(meta interface{}, arrays ...*sparse.DenseArray) string {
	h := fnv.New128a()
	printer.Fprintf(h, "%#v", meta)
	var buf [8]byte
	nan := math.Float64bits(math.NaN())
	for _, a := range arrays {
		if a == nil {
			h.Write([]byte{0})
			continue
		}
		h.Write([]byte{1})
		for _, l := range a.Shape {
			binary.LittleEndian.PutUint64(buf[:], uint64(l))
			h.Write(buf[:])
		}
		for _, v := range a.Elements {
			bits := math.Float64bits(v)
			if math.IsNaN(v) {
				bits = nan
			}
			binary.LittleEndian.PutUint64(buf[:], bits)
			h.Write(buf[:])
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
