package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"--size", "16",
		"--iters", "1",
		"--output", out,
		"--subjects", "simple",
		"--cases", "depth_sorted,erase",
		"--log-level", "error",
	})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(out, "simple_depth_sorted.csv"))
	require.NoError(t, err)
	require.Contains(t, string(data), "index,result\n1,1\n2,2\n")
	require.FileExists(t, filepath.Join(out, "simple_erase.csv"))
	require.NoFileExists(t, filepath.Join(out, "red-black_erase.csv"))
}

func TestRootCmd_InvalidFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--size", "0", "--output", t.TempDir(), "--log-level", "error"})
	require.ErrorContains(t, cmd.Execute(), "size must be positive")

	cmd = newRootCmd()
	cmd.SetArgs([]string{"--cases", "lookup", "--output", t.TempDir(), "--log-level", "error"})
	require.ErrorContains(t, cmd.Execute(), "unknown cases lookup")
}

func TestExportersCmd(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"exporters"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "none\nconsole\nprometheus\n", buf.String())
}
