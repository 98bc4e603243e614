package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "keyladder.log")
	log, sync, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)
	log.Debugw("buffer extended", "added", 150)
	sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "buffer extended")
	assert.Contains(t, string(data), `"added":150`)
}

func TestNewFiltersByLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyladder.log")
	log, sync, err := New(Options{Level: "warn", File: path})
	require.NoError(t, err)
	log.Infow("hidden")
	log.Warnw("shown")
	sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	require.Error(t, err)
}
