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
	"strings"
	"testing"

	"github.com/spatialmodel/steric"
	"github.com/spf13/cobra"
)

func TestRunLogFileTempDirError(t *testing.T) {
	t.Setenv("TMPDIR", "/does/not/exist")
	cmd := &cobra.Command{}
	cmd.SetOutput(new(bytes.Buffer))
	err := Run(context.Background(), cmd, steric.VariantSteric, "file://testblob/run.log", "info",
		"input.nc", "output.nc", "", steric.DefaultVarNames())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "/does/not/exist") {
		t.Errorf("error %q does not report the temporary directory problem", err)
	}
}

func TestSynthOutputTempDirError(t *testing.T) {
	t.Setenv("TMPDIR", "/does/not/exist")
	cmd := &cobra.Command{}
	cmd.SetOutput(new(bytes.Buffer))
	err := Synth(context.Background(), cmd, "file://testblob/input.nc", 1)
	if err == nil || !strings.Contains(err.Error(), "/does/not/exist") {
		t.Errorf("have %v, want the temporary directory error", err)
	}
}

func TestFingerprint(t *testing.T) {
	r := &steric.Result{Variant: steric.VariantSteric, Domain: steric.Global, Volo: 1, Rhoga: 1025}
	a := fingerprint(r)
	if b := fingerprint(r); a != b {
		t.Errorf("fingerprint is not stable: %s != %s", a, b)
	}
	r.Variant = steric.VariantHalosteric
	if c := fingerprint(r); c == a {
		t.Error("variant does not change the fingerprint")
	}
}
