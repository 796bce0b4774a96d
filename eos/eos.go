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

// Package eos holds seawater equations of state. Each equation maps
// potential temperature, salinity and pressure to in-situ density.
package eos

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Func is an equation of state. t is potential temperature [°C],
// s is salinity [psu] and p is pressure [Pa]. It returns
// in-situ density [kg m-3]. Implementations must be pure.
type Func func(t, s, p float64) float64

// ErrUnknown is returned by ByName when no equation of state is
// registered under the requested name.
var ErrUnknown = errors.New("eos: unknown equation of state")

var registry = map[string]Func{
	"wright": Wright,
	"linear": DefaultLinear.Density,
}

// ByName returns the equation of state registered under name.
// Matching is case-insensitive.
func ByName(name string) (Func, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid options are %s)", ErrUnknown, name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names returns the registered equation of state names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
