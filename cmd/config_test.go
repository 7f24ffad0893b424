package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wayloop/internal/config"
)

// Helper function to execute cobra commands in tests
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	root.SetOut(nil)
	root.SetErr(nil)
	return out.String(), err
}

// isolate gives each test an empty HOME and fresh global state.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()
	configPath = ""
	t.Cleanup(func() {
		viper.Reset()
		configPath = ""
		config.SetConfigPath("")
		config.Set(nil)
		_ = configInitCmd.Flags().Set("force", "false")
	})
	return home
}

func TestConfigInit(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".config", "wayloop", "wayloop.toml")

	t.Run("creates config file when it doesn't exist", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "config", "init")
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("doesn't overwrite existing config without force", func(t *testing.T) {
		viper.Reset()
		require.NoError(t, os.WriteFile(path, []byte("[window]\ntitle = \"mine\"\n"), 0644))

		_, err := executeCommand(rootCmd, "config", "init")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[window]\ntitle = \"mine\"\n", string(content))
	})

	t.Run("overwrites with force flag", func(t *testing.T) {
		viper.Reset()
		require.NoError(t, os.WriteFile(path, []byte("[loop]\nevent_buffer = 8\n"), 0644))

		_, err := executeCommand(rootCmd, "config", "init", "--force")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "event_buffer = 8")
		assert.Contains(t, string(content), "[window]")
	})
}

func TestConfigShow(t *testing.T) {
	isolate(t)

	out, err := executeCommand(rootCmd, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "window:")
	assert.Contains(t, out, "title: wayloop")
	assert.Contains(t, out, "event_buffer: 256")
}

func TestConfigPath(t *testing.T) {
	home := isolate(t)
	custom := filepath.Join(home, "custom.toml")

	out, err := executeCommand(rootCmd, "config", "path", "--config", custom)
	require.NoError(t, err)
	assert.Equal(t, custom+"\n", out)
}

func TestConfigValidation(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".config", "wayloop", "wayloop.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("[window\ntitle = 1\n"), 0644))

	_, err := executeCommand(rootCmd, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}
