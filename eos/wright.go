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

// Coefficients of the Wright (1997) equation of state, in the
// reduced-range form used by MOM6.
const (
	a0 = 7.057924e-4
	a1 = 3.480336e-7
	a2 = -1.112733e-7

	b0 = 5.790749e8
	b1 = 3.516535e6
	b2 = -4.002714e4
	b3 = 2.084372e2
	b4 = 5.944068e5
	b5 = -9.643486e3

	c0 = 1.704853e5
	c1 = 7.904722e2
	c2 = -7.984422
	c3 = 5.140652e-2
	c4 = -2.302158e2
	c5 = -3.079464
)

// Wright calculates in-situ density [kg m-3] from potential temperature t
// [°C], salinity s [psu] and pressure p [Pa] following
// Wright, D. G. (1997), An equation of state for use in ocean models:
// Eckart's formula revisited, J. Atmos. Ocean. Technol., 14, 735-740.
func Wright(t, s, p float64) float64 {
	al0 := a0 + a1*t + a2*s
	p0 := b0 + b4*s + t*(b1+t*(b2+b3*t)+b5*s)
	lambda := c0 + c4*s + t*(c1+t*(c2+c3*t)+c5*s)
	return (p + p0) / (lambda + al0*(p+p0))
}
