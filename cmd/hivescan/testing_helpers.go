package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/forensicFODs/registry-analysis-tools/internal/config"
	"github.com/forensicFODs/registry-analysis-tools/internal/testutil"
)

// runCLI executes hivescan with args against fsys and returns what it printed.
// HOME points at a temp dir so no real config file is picked up.
func runCLI(t *testing.T, fsys afero.Fs, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	prevOut, prevFs := out, appFs
	out, appFs = &buf, fsys
	t.Cleanup(func() {
		out, appFs = prevOut, prevFs
		cfg = config.Default()
	})

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.Execute()
	return buf.String(), err
}

// memHives returns a memory fs holding the given files.
func memHives(t *testing.T, files map[string][]byte) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fsys, name, data, 0o644))
	}
	return fsys
}

// systemHive holds one ShimCache entry and one prefetch name.
func systemHive() []byte {
	return testutil.NewHive(testutil.DefaultSize, true).
		Filetime(0x1000-40, testutil.MustTime("2023-05-01 12:00:00")).
		U32(0x1000-8, 12345).
		ASCII(0x1000, `C:\Windows\System32\evil.exe`).
		ASCII(0x3000, "NOTEPAD.EXE-ABCD1234.pf").
		Bytes()
}
