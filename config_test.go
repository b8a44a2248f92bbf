package starlang

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	require.Equal(t, 0, o.MaxLoopIterations)
	require.Equal(t, "tick", o.TickEvent)
}

func TestLoadOptionsFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"max_loop_iterations: 5000\ntick_event: frame\nrandom_seed: 7\n"), 0o644))

	o, err := LoadOptions(path)
	require.NoError(t, err)
	require.Equal(t, 5000, o.MaxLoopIterations)
	require.Equal(t, "frame", o.TickEvent)
	require.Equal(t, int64(7), o.RandomSeed)
}

func TestLoadOptionsPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_loop_iterations: 10\n"), 0o644))

	o, err := LoadOptions(path)
	require.NoError(t, err)
	require.Equal(t, 10, o.MaxLoopIterations)
	require.Equal(t, "tick", o.TickEvent)
}

func TestLoadOptionsErrors(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_loop_iterations: [not a number\n"), 0o644))
	_, err = LoadOptions(path)
	require.Error(t, err)
}

func TestOptionsWireIntoInterpreter(t *testing.T) {
	o := Options{MaxLoopIterations: 3, TickEvent: "step"}
	in := New(WithOptions(o))

	err := in.Load("while true:\n  let x = 1\n", "test.star")
	require.Error(t, err)

	seen := ""
	in.On(Wildcard, func(event string, data Value) { seen = event })
	require.NoError(t, in.Tick(0.1))
	require.Equal(t, "step", seen)
}
