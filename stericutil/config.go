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

package stericutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/steric"
	"github.com/spatialmodel/steric/eos"
	"github.com/spf13/cast"
)

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.nc")`)
	}
	f = os.ExpandEnv(f)
	if IsBlob(f) {
		url, err := url.Parse(f)
		if err != nil {
			return f, err
		}
		_, err = OpenBucket(context.TODO(), url.Scheme+"://"+url.Host)
		if err != nil {
			return f, fmt.Errorf("steric: error when checking OutputFile location: %v", err)
		}
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("steric: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// checkSeed converts a configuration value into a random seed.
func checkSeed(v interface{}) (uint64, error) {
	seed, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("steric: invalid Seed: %v", err)
	}
	if seed < 0 {
		return 0, fmt.Errorf("steric: Seed must not be negative but is %d", seed)
	}
	return uint64(seed), nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&o); err != nil {
			return nil, fmt.Errorf("steric: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("steric: invalid type for %s: %#v", varName, i)
	}
}

// varNames returns the input file variable names specified by
// the VarNames configuration variable.
func varNames(cfg *viper.Viper) (steric.VarNames, error) {
	names := steric.DefaultVarNames()
	m, err := GetStringMapString("VarNames", cfg)
	if err != nil {
		return names, err
	}
	fields := map[string]*string{
		"thetao":       &names.Thetao,
		"so":           &names.So,
		"volcello":     &names.Volcello,
		"areacello":    &names.Areacello,
		steric.DimZ:    &names.Z,
		steric.DimTime: &names.Time,
	}
	for k, v := range m {
		f, ok := fields[strings.ToLower(k)]
		if !ok {
			return names, fmt.Errorf("steric: invalid VarNames key %q; valid keys are thetao, so, volcello, areacello, z_l and time", k)
		}
		*f = os.ExpandEnv(v)
	}
	return names, nil
}

// validation returns the validation settings in cfg.
func validation(cfg *viper.Viper) steric.Validation {
	v := steric.DefaultValidation()
	v.Strict = cfg.GetBool("Strict")
	v.OceanArea = cfg.GetFloat64("OceanArea")
	v.AreaTolerance = cfg.GetFloat64("AreaTolerance")
	return v
}

// calcOptions returns the calculation options specified in cfg.
func calcOptions(cfg *viper.Viper) ([]steric.Option, error) {
	domain, err := steric.ParseDomain(os.ExpandEnv(cfg.GetString("Domain")))
	if err != nil {
		return nil, err
	}
	eq, err := eos.ByName(os.ExpandEnv(cfg.GetString("EOS")))
	if err != nil {
		return nil, err
	}
	reduction, err := steric.ParseReduction(os.ExpandEnv(cfg.GetString("Reduction")))
	if err != nil {
		return nil, err
	}
	expansion, err := steric.ParseExpansion(os.ExpandEnv(cfg.GetString("Expansion")))
	if err != nil {
		return nil, err
	}
	v := validation(cfg)
	return []steric.Option{
		steric.WithDomain(domain),
		steric.WithEOS(eq),
		steric.WithReduction(reduction),
		steric.WithExpansion(expansion),
		steric.WithStrict(v.Strict),
		steric.WithOceanArea(v.OceanArea, v.AreaTolerance),
	}, nil
}
