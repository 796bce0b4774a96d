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
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/steric/eos"
)

// Result holds calculated sea level change.
//
// For the Local domain, ReferenceHeight [m] has dimensions
// (z_l, yh, xh), ExpansionCoeff [unitless] has dimensions
// (time, z_l, yh, xh) and SeaLevel [m] has dimensions (time, yh, xh).
//
// For the Global domain, ReferenceHeight has a single element and
// ExpansionCoeff and SeaLevel have dimensions (time).
type Result struct {
	Variant Variant
	Domain  Domain

	ReferenceHeight, ExpansionCoeff, SeaLevel *sparse.DenseArray

	// Time and Z are the coordinates of the input dataset.
	Time, Z []float64

	// Volo [m3] is the total reference ocean volume and Rhoga
	// [kg m-3] is the global average reference density.
	Volo, Rhoga float64
}

// Option configures a sea level calculation.
type Option func(*config)

type config struct {
	domain     Domain
	eq         eos.Func
	reduction  Reduction
	expansion  Expansion
	reference  *Reference
	validation Validation
	log        logrus.FieldLogger
}

func newConfig(opts []Option) *config {
	c := &config{
		domain:     Local,
		eq:         eos.Wright,
		reduction:  ReduceFirst,
		expansion:  ExpansionLinear,
		validation: DefaultValidation(),
		log:        logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.validation.Log == nil {
		c.validation.Log = c.log
	}
	return c
}

// WithDomain sets the calculation domain. The default is Local.
func WithDomain(d Domain) Option {
	return func(c *config) { c.domain = d }
}

// WithEOS sets the equation of state. The default is eos.Wright.
func WithEOS(eq eos.Func) Option {
	return func(c *config) { c.eq = eq }
}

// WithReduction sets how the reference state is formed when it is
// not supplied. The default is ReduceFirst.
func WithReduction(r Reduction) Option {
	return func(c *config) { c.reduction = r }
}

// WithExpansion sets the expansion coefficient form.
// The default is ExpansionLinear.
func WithExpansion(e Expansion) Option {
	return func(c *config) { c.expansion = e }
}

// WithReference supplies a precomputed reference state instead of
// creating one from the dataset.
func WithReference(r *Reference) Option {
	return func(c *config) { c.reference = r }
}

// WithStrict sets whether an unexpected total ocean area is an error
// (the default) or a logged warning.
func WithStrict(strict bool) Option {
	return func(c *config) { c.validation.Strict = strict }
}

// WithOceanArea sets the expected total ocean area [m2] and the
// allowed fractional difference from it. An area <= 0 disables the check.
func WithOceanArea(area, tolerance float64) Option {
	return func(c *config) {
		c.validation.OceanArea = area
		c.validation.AreaTolerance = tolerance
	}
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		c.log = log
		c.validation.Log = log
	}
}

// Steric calculates sea level change caused by changes in both
// temperature and salinity.
func Steric(d *Dataset, opts ...Option) (*Result, *Reference, error) {
	return Decompose(d, VariantSteric, opts...)
}

// Thermosteric calculates sea level change caused by changes in
// temperature, with salinity held at the reference state.
func Thermosteric(d *Dataset, opts ...Option) (*Result, *Reference, error) {
	return Decompose(d, VariantThermosteric, opts...)
}

// Halosteric calculates sea level change caused by changes in
// salinity, with temperature held at the reference state.
func Halosteric(d *Dataset, opts ...Option) (*Result, *Reference, error) {
	return Decompose(d, VariantHalosteric, opts...)
}

// Decompose calculates sea level change for variant v. It returns the
// result and the reference state it was calculated against. d is
// not modified, and repeated calls with the same inputs return
// identical results.
func Decompose(d *Dataset, v Variant, opts ...Option) (*Result, *Reference, error) {
	c := newConfig(opts)
	if c.eq == nil {
		return nil, nil, fmt.Errorf("%w: equation of state", ErrMissingField)
	}
	log := c.log.WithFields(logrus.Fields{
		"variant": v.String(),
		"domain":  c.domain.String(),
	})
	if err := c.validation.Dataset(d); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	ref := c.reference
	if ref == nil {
		var err error
		if ref, err = NewReference(d, c.eq, c.reduction); err != nil {
			return nil, nil, err
		}
	} else {
		if err := c.validation.Reference(ref); err != nil {
			return nil, nil, err
		}
		if err := checkCompatible(d, ref); err != nil {
			return nil, nil, err
		}
	}
	log.WithFields(logrus.Fields{
		"volo":     ref.Volo,
		"rhoga":    ref.Rhoga,
		"duration": time.Since(start),
	}).Debug("reference state ready")

	rho, err := PerturbedDensity(c.eq, d, ref, v)
	if err != nil {
		return nil, nil, err
	}
	coef, err := ExpansionCoeff(ref, rho, c.expansion)
	if err != nil {
		return nil, nil, err
	}

	var r *Result
	switch c.domain {
	case Local:
		r, err = IntegrateLocal(ref, coef)
	case Global:
		r, err = IntegrateGlobal(ref, rho, coef, c.expansion)
	default:
		err = fmt.Errorf("steric: invalid domain %v", c.domain)
	}
	if err != nil {
		return nil, nil, err
	}
	r.Variant = v
	r.Z = append([]float64(nil), d.Z...)
	if d.Time != nil {
		r.Time = append([]float64(nil), d.Time...)
	} else {
		r.Time = make([]float64, d.grid().nt)
		for i := range r.Time {
			r.Time[i] = float64(i)
		}
	}
	log.WithField("duration", time.Since(start)).Debug("sea level calculated")
	return r, ref, nil
}
