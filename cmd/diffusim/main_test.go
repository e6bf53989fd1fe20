package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "diffusim "+version+"\n", out)
}

func TestRunDefaults(t *testing.T) {
	out, logs, err := execute(t, "run", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Items")
	assert.Contains(t, out, "Propagation")
	assert.Contains(t, logs, "simulation finished")
	assert.Contains(t, logs, "seed=3")
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "exp.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("network:\n  entities: 4\n  bp_count: 2\n  mp_count: 2\n"), 0644))

	out, _, err := execute(t, "run", "--config", cfgPath, "--items", "2", "--seed", "9")
	require.NoError(t, err)

	// Two item rows below the items header.
	section := out[strings.Index(out, "Items"):strings.Index(out, "Groups")]
	assert.Equal(t, 2, strings.Count(section, "true")+strings.Count(section, "false"))
}

func TestRunRejectsInconsistentGroups(t *testing.T) {
	_, _, err := execute(t, "run", "--entities", "6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bp_count + mp_count")
}

func TestRunExport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	logPath := filepath.Join(dir, "diffusim.jsonl")

	out, _, err := execute(t, "run", "--seed", "5", "--export", dbPath, "--log-file", logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported run")

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"simulation finished"`)
}
