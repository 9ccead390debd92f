package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config whose state lives in a temp directory and
// returns the config path and the state path.
func writeConfig(t *testing.T, backend string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	statePath := filepath.Join(dir, "players."+backend)
	if backend == "sqlite" {
		statePath = filepath.Join(dir, "players.db")
	}

	data := fmt.Sprintf(`owner: owner
message_interval: 0
state:
  backend: %s
  path: %s
`, backend, statePath)

	configPath := filepath.Join(dir, "crapsbot.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(data), 0o644))
	return configPath, statePath
}

// execute runs cmd with args and returns its standard output.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
