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

package eos

// Linear is a linearized equation of state:
//	rho = Rho0*(1 - Alpha*(t-T0) + Beta*(s-S0)) + Compressibility*p
type Linear struct {
	Rho0  float64 // reference density [kg m-3]
	T0    float64 // reference temperature [°C]
	S0    float64 // reference salinity [psu]
	Alpha float64 // thermal expansion coefficient [1/°C]
	Beta  float64 // haline contraction coefficient [1/psu]

	// Compressibility is the density change per unit
	// pressure [kg m-3 Pa-1].
	Compressibility float64
}

// DefaultLinear holds typical mid-latitude seawater values.
var DefaultLinear = Linear{
	Rho0:            1027,
	T0:              10,
	S0:              35,
	Alpha:           1.7e-4,
	Beta:            7.6e-4,
	Compressibility: 4.4e-7,
}

// Density returns in-situ density [kg m-3]. It satisfies Func.
func (l Linear) Density(t, s, p float64) float64 {
	return l.Rho0*(1-l.Alpha*(t-l.T0)+l.Beta*(s-l.S0)) + l.Compressibility*p
}
