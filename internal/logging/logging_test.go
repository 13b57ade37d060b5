package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pinned.log")
	logger, err := New(Config{Path: path, Level: "warn"})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Contains(t, lines[0], "pid")
}

func TestVerboseForcesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinned.log")
	logger, err := New(Config{Path: path, Level: "error", Verbose: true})
	require.NoError(t, err)

	logger.Debug("details")
	require.NoError(t, logger.Sync())
	assert.Len(t, readLines(t, path), 1)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Path: filepath.Join(t.TempDir(), "x.log"), Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")
}
