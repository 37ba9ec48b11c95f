// Copyright 2026 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"v.io/x/lib/cmdline"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	env := &cmdline.Env{Stdout: &stdout, Stderr: &stderr, Vars: map[string]string{}}
	err := cmdline.ParseAndRun(newCmdRoot(), env, args)
	return stderr.String(), err
}

func TestRunUsage(t *testing.T) {
	stderr, err := runCmd(t, "run", "P1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Usage: bio-rdna-cn run <project_id> <root_dir>")

	_, err = runCmd(t, "run", "P1", "/tmp", "extra")
	assert.Error(t, err)
}

func TestSplitAndAverage(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	in := filepath.Join(tmpdir, "in")
	staged := filepath.Join(tmpdir, "staged")
	avg := filepath.Join(tmpdir, "avg")
	require.NoError(t, os.Mkdir(in, 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(in, "S1_GL000220v1_45S_depth.txt"),
		[]byte("GL000220v1\t3700\t10\nGL000220v1\t3701\t20\n"), 0644))

	_, err := runCmd(t, "split", "-in", in, "-out", staged)
	require.NoError(t, err)
	_, err = runCmd(t, "average", "-in", staged, "-out", avg, "-region", "18S", "-project", "P1", "-window", "44-45")
	require.NoError(t, err)

	data, err := ioutil.ReadFile(filepath.Join(avg, "18S_44-45_P1_average_depth.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Sample,Average Depth,Length,Label\nS1_18S,15,2,blood\n", string(data))

	_, err = runCmd(t, "average", "-in", staged, "-out", avg, "-region", "18S", "-project", "P1", "-window", "x")
	assert.Error(t, err)
}
