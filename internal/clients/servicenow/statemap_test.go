package servicenow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStateCodes(t *testing.T) {
	m := DefaultStateMap()
	assert.Equal(t, "2", m.Code("in progress"))
	assert.Equal(t, "2", m.Code("  In   Progress "))
	assert.Equal(t, "6", m.Code("cancelled"))
	assert.Equal(t, "7", m.Code("closed"))
	assert.Equal(t, "3", m.Code("3"))
}

func TestTranslateKeepsOtherFields(t *testing.T) {
	in := map[string]any{"state": "closed", "close_notes": "Installation of vscode 1.88 completed"}
	out := DefaultStateMap().Translate(in)
	assert.Equal(t, "7", out["state"])
	assert.Equal(t, "Installation of vscode 1.88 completed", out["close_notes"])
	assert.Equal(t, "closed", in["state"], "input must not be mutated")
}

func TestLoadStateMapOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.yaml")
	require.NoError(t, os.WriteFile(path, []byte("states:\n  closed: \"3\"\n  on hold: \"3\"\n"), 0o600))

	m, err := LoadStateMap(path)
	require.NoError(t, err)
	assert.Equal(t, "3", m.Code("closed"))
	assert.Equal(t, "3", m.Code("on hold"))
	assert.Equal(t, "2", m.Code("in progress"))
}

func TestLoadStateMapMissingFileUsesDefaults(t *testing.T) {
	m, err := LoadStateMap(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultStateMap(), m)
}

func TestLoadStateMapRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("states: [unclosed"), 0o600))
	_, err := LoadStateMap(path)
	require.Error(t, err)
}
