package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCommandDefaults(t *testing.T) {
	out, err := execute(NewConfigCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)
	assert.Contains(t, out, "owner: owner\n")
	assert.Contains(t, out, "starting_balance: 10000\n")
	assert.Contains(t, out, "backend: json\n")
}

func TestConfigCommandFile(t *testing.T) {
	configPath, statePath := writeConfig(t, "sqlite")

	out, err := execute(NewConfigCommand(&RootOptions{Format: "json"}), configPath)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			MessageInterval int `json:"message_interval"`
			State           struct {
				Backend string `json:"backend"`
				Path    string `json:"path"`
			} `json:"state"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.MessageInterval)
	assert.Equal(t, "sqlite", resp.Data.State.Backend)
	assert.Equal(t, statePath, resp.Data.State.Path)
}

func TestConfigCommandUsesConfigFlag(t *testing.T) {
	configPath, _ := writeConfig(t, "sqlite")

	out, err := execute(NewConfigCommand(&RootOptions{Format: "text", Config: configPath}))
	require.NoError(t, err)
	assert.Contains(t, out, "backend: sqlite\n")
}

func TestConfigCommandInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("owner: \"\"\nstarting_balance: 0\n"), 0o644))

	out, err := execute(NewConfigCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_CONFIG]: invalid config: "+path)
	assert.Contains(t, out, "Details:")
}

func TestConfigCommandMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ownr: x\n"), 0o644))

	_, err := execute(NewConfigCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
