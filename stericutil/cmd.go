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

// Package stericutil contains the command-line interface to steric
// sea level calculations.
package stericutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/steric"
	"github.com/spatialmodel/steric/synthetic"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to steric.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path to the netCDF file holding ocean temperature,
              salinity, cell volume and cell area. It can include environment
              variables and can be a local path, an http(s) URL, or a blob storage
              location (gs://, s3:// or file://).`,
			shorthand:  "i",
			defaultVal: "steric_input.nc",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output netCDF file. It can
              include environment variables and can be a blob storage location
              (gs://, s3:// or file://), in which case it will be uploaded
              after the calculation finishes.`,
			shorthand:  "o",
			defaultVal: "steric_output.nc",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be saved in
              the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to record. Acceptable values are
              'debug', 'info', 'warning' and 'error'.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "VarNames",
			usage: `
              VarNames maps the fields 'thetao', 'so', 'volcello', 'areacello', 'z_l' and
              'time' (as keys) to the names of the corresponding variables in InputFile.
              Fields that are left out keep their default names.`,
			defaultVal: map[string]string{
				"thetao":    "thetao",
				"so":        "so",
				"volcello":  "volcello",
				"areacello": "areacello",
				"z_l":       "z_l",
				"time":      "time",
			},
			flagsets: []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Strict",
			usage: `
              Strict specifies whether a total cell area that differs from OceanArea
              by more than AreaTolerance is an error. If false, it is logged as a warning.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OceanArea",
			usage: `
              OceanArea is the expected total ocean area in m². Set it to 0 to disable
              the area check, for example for regional grids.`,
			defaultVal: steric.ReferenceOceanArea,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "AreaTolerance",
			usage: `
              AreaTolerance is the allowed fractional difference between the total cell
              area and OceanArea.`,
			defaultVal: steric.DefaultAreaTolerance,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Domain",
			usage: `
              Domain specifies whether to calculate sea level change for each water
              column ('local') or for the ocean as a whole ('global').`,
			shorthand:  "d",
			defaultVal: "local",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "EOS",
			usage: `
              EOS is the name of the seawater equation of state. Acceptable values are
              'wright' and 'linear'.`,
			defaultVal: "wright",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Reduction",
			usage: `
              Reduction specifies how the reference state is formed from the time
              series: 'first' uses the first time step and 'mean' uses the time average.
              It is ignored if ReferenceFile is set.`,
			defaultVal: "first",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Expansion",
			usage: `
              Expansion is the form of the expansion coefficient: 'linear' for
              (rho_ref - rho) / rho_ref or 'log' for ln(rho_ref / rho).`,
			defaultVal: "linear",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "ReferenceFile",
			usage: `
              ReferenceFile is the path to the output file of a previous run whose
              reference state should be reused. If it is blank, the reference state
              is calculated from InputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Seed",
			usage: `
              Seed is the random number generator seed for synthetic data.`,
			defaultVal: synthetic.Seed,
			flagsets:   []*pflag.FlagSet{synthCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("STERIC")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	for _, v := range []steric.Variant{steric.VariantSteric, steric.VariantThermosteric, steric.VariantHalosteric} {
		runCmd.AddCommand(variantCmd(v))
	}
	Root.AddCommand(validateCmd)
	Root.AddCommand(synthCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("steric: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "steric",
	Short: "Steric sea level change from ocean model output.",
	Long: `steric calculates steric sea level change and its thermosteric and
halosteric components from ocean temperature, salinity and cell geometry.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'STERIC_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of steric.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("steric v%s\n", steric.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Calculate sea level change.",
	Long: `run calculates sea level change. Use the subcommands specified below to
choose which component to calculate.`,
	DisableAutoGenTag: true,
}

var variantLong = map[steric.Variant]string{
	steric.VariantSteric: `steric calculates sea level change caused by changes in both
temperature and salinity.`,
	steric.VariantThermosteric: `thermosteric calculates sea level change caused by changes
in temperature, with salinity held at the reference state.`,
	steric.VariantHalosteric: `halosteric calculates sea level change caused by changes
in salinity, with temperature held at the reference state.`,
}

// variantCmd returns a command that calculates sea level change for v.
func variantCmd(v steric.Variant) *cobra.Command {
	return &cobra.Command{
		Use:   v.String(),
		Short: fmt.Sprintf("Calculate %v sea level change.", v),
		Long:  variantLong[v],
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
			if err != nil {
				return err
			}
			names, err := varNames(Cfg)
			if err != nil {
				return err
			}
			opts, err := calcOptions(Cfg)
			if err != nil {
				return err
			}
			return Run(
				context.TODO(),
				cmd,
				v,
				checkLogFile(Cfg.GetString("LogFile"), outputFile),
				Cfg.GetString("LogLevel"),
				os.ExpandEnv(Cfg.GetString("InputFile")),
				outputFile,
				os.ExpandEnv(Cfg.GetString("ReferenceFile")),
				names,
				opts...,
			)
		},
		DisableAutoGenTag: true,
	}
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check an input file.",
	Long: `validate checks that InputFile contains all of the required fields,
that they have consistent shapes, and that the total cell area matches
OceanArea. All problems found are reported together.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := varNames(Cfg)
		if err != nil {
			return err
		}
		return Validate(context.TODO(), cmd, os.ExpandEnv(Cfg.GetString("InputFile")), names, validation(Cfg))
	},
	DisableAutoGenTag: true,
}

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Create a synthetic input file.",
	Long: `synth writes a randomly generated dataset with normally distributed
temperature, salinity and cell volume to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		seed, err := checkSeed(Cfg.Get("Seed"))
		if err != nil {
			return err
		}
		return Synth(context.TODO(), cmd, outputFile, seed)
	},
	DisableAutoGenTag: true,
}
