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
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/steric"
	"github.com/spatialmodel/steric/internal/hash"
	"github.com/spatialmodel/steric/synthetic"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

// newLogger returns a logger that writes to the command output and to w
// at the given level.
func newLogger(cmd *cobra.Command, w io.Writer, level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.Out = io.MultiWriter(cmd.OutOrStdout(), w)
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
		DisableColors:   true,
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("steric: invalid LogLevel: %v", err)
	}
	log.Level = lvl
	return log, nil
}

// readDataset downloads inputFile if necessary and reads it.
func readDataset(ctx context.Context, inputFile string, names steric.VarNames, log logrus.FieldLogger) (*steric.Dataset, error) {
	local, err := maybeDownload(ctx, inputFile, log)
	if err != nil {
		return nil, err
	}
	defer removeDownload(inputFile, local)
	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("steric: problem opening InputFile: %v", err)
	}
	defer f.Close()
	d, err := steric.ReadDataset(f, names)
	if err != nil {
		return nil, fmt.Errorf("steric: reading %s: %w", inputFile, err)
	}
	return d, nil
}

func readReference(ctx context.Context, referenceFile string, log logrus.FieldLogger) (*steric.Reference, error) {
	local, err := maybeDownload(ctx, referenceFile, log)
	if err != nil {
		return nil, err
	}
	defer removeDownload(referenceFile, local)
	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("steric: problem opening ReferenceFile: %v", err)
	}
	defer f.Close()
	r, err := steric.ReadReference(f)
	if err != nil {
		return nil, fmt.Errorf("steric: reading %s: %w", referenceFile, err)
	}
	return r, nil
}

// fingerprint returns a key that identifies the contents of r.
func fingerprint(r *steric.Result) string {
	meta := map[string]interface{}{
		"variant": r.Variant.String(),
		"domain":  r.Domain.String(),
		"volo":    r.Volo,
		"rhoga":   r.Rhoga,
		"time":    r.Time,
		"z_l":     r.Z,
	}
	return hash.Sum(meta, r.ReferenceHeight, r.ExpansionCoeff, r.SeaLevel)
}

// Run calculates sea level change for variant v from the data in inputFile
// and writes the result to outputFile. If referenceFile is not empty,
// the reference state is read from it rather than calculated from
// inputFile. Log messages are written to the command output and logFile.
func Run(ctx context.Context, cmd *cobra.Command, v steric.Variant, logFile, logLevel, inputFile, outputFile, referenceFile string,
	names steric.VarNames, opts ...steric.Option) error {

	startTime := time.Now()

	var upload uploader
	defer upload.cleanup()

	localLog := upload.maybeUpload(logFile)
	if upload.err != nil {
		return upload.err
	}
	logfile, err := os.Create(localLog)
	if err != nil {
		return fmt.Errorf("steric: problem creating log file: %v", err)
	}
	logClosed := false
	defer func() {
		if !logClosed {
			logfile.Close()
		}
	}()
	log, err := newLogger(cmd, logfile, logLevel)
	if err != nil {
		return err
	}
	opts = append(opts, steric.WithLogger(log))

	log.WithField("file", inputFile).Info("reading input data")
	d, err := readDataset(ctx, inputFile, names, log)
	if err != nil {
		return err
	}
	if referenceFile != "" {
		log.WithField("file", referenceFile).Info("reading reference state")
		ref, err := readReference(ctx, referenceFile, log)
		if err != nil {
			return err
		}
		opts = append(opts, steric.WithReference(ref))
	}

	r, ref, err := steric.Decompose(d, v, opts...)
	if err != nil {
		return err
	}

	localOutput := upload.maybeUpload(outputFile)
	if upload.err != nil {
		return upload.err
	}
	f, err := os.Create(localOutput)
	if err != nil {
		return fmt.Errorf("steric: problem creating output file: %v", err)
	}
	if err := r.Write(f, ref); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"variant":  v.String(),
		"output":   outputFile,
		"hash":     fingerprint(r),
		"duration": time.Since(startTime),
	}).Info("calculation complete")

	logClosed = true
	if err := logfile.Close(); err != nil {
		return err
	}
	return upload.uploadOutput(ctx)
}

// Validate checks the data in inputFile and prints a message to the
// command output if it is valid. All problems found are returned
// together.
func Validate(ctx context.Context, cmd *cobra.Command, inputFile string, names steric.VarNames, v steric.Validation) error {
	log := logrus.New()
	log.Out = cmd.OutOrStderr()
	v.Log = log
	d, err := readDataset(ctx, inputFile, names, log)
	if err != nil {
		return err
	}
	if err := v.Dataset(d); err != nil {
		return err
	}
	cmd.Printf("%s is valid\n", inputFile)
	return nil
}

// Synth writes a synthetic dataset generated from seed to outputFile.
func Synth(ctx context.Context, cmd *cobra.Command, outputFile string, seed uint64) error {
	var upload uploader
	defer upload.cleanup()
	d := synthetic.Generate(rand.NewSource(seed))
	localOutput := upload.maybeUpload(outputFile)
	if upload.err != nil {
		return upload.err
	}
	f, err := os.Create(localOutput)
	if err != nil {
		return fmt.Errorf("steric: problem creating output file: %v", err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	cmd.Printf("wrote synthetic dataset with seed %d to %s\n", seed, outputFile)
	return upload.uploadOutput(ctx)
}
