package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(path, false)
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("move applied", zap.String("column", "(2,3)"))
	require.NoError(t, log.Sync())

	entries := readLines(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "move applied", entries[0]["msg"])
	assert.Equal(t, "(2,3)", entries[0]["column"])
}

func TestDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(path, true)
	require.NoError(t, err)
	log.Debug("shown")
	require.NoError(t, log.Sync())
	assert.Len(t, readLines(t, path), 1)
}
