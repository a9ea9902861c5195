package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/profile-sync/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()

	t.Setenv("HOME", home)

	rootCmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeCredentialsFixture(t *testing.T, home, content string) string {
	t.Helper()

	awsDir := filepath.Join(home, ".aws")
	require.NoError(t, os.MkdirAll(awsDir, 0o700))
	path := filepath.Join(awsDir, "credentials")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, version.Version)
}

func TestInvalidLogLevelIsRejected(t *testing.T) {
	home := t.TempDir()
	writeCredentialsFixture(t, home, "[default]\nkey = value\n")

	_, _, err := executeCLI(t, home, "--log-level", "critical")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid log level")
	assert.ErrorContains(t, err, "critical")
}

func TestDryRunPrintsFileVerbatim(t *testing.T) {
	home := t.TempDir()
	content := "[default]\naws_access_key_id = AKIA\n"
	path := writeCredentialsFixture(t, home, content)

	stdout, _, err := executeCLI(t, home, "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, content, stdout)

	// Nothing on disk changed.
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(onDisk))
	_, err = os.Stat(path + ".backup")
	assert.True(t, os.IsNotExist(err))
}

func TestSyncWritesBackup(t *testing.T) {
	home := t.TempDir()
	content := "[default]\naws_access_key_id = AKIA\n"
	path := writeCredentialsFixture(t, home, content)

	_, _, err := executeCLI(t, home)
	require.NoError(t, err)

	updated, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(updated))

	backup, err := os.ReadFile(path + ".backup")
	require.NoError(t, err)
	assert.Equal(t, content, string(backup))
}

func TestExplicitCredentialsFileFlag(t *testing.T) {
	home := t.TempDir()
	other := filepath.Join(home, "elsewhere")
	require.NoError(t, os.MkdirAll(other, 0o700))
	path := filepath.Join(other, "creds")
	require.NoError(t, os.WriteFile(path, []byte("passthrough\n"), 0o600))

	stdout, _, err := executeCLI(t, home, "--credentials-file", path, "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "passthrough\n", stdout)
}

func TestMissingCredentialsFileFails(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "--dry-run")
	require.Error(t, err)
	assert.ErrorContains(t, err, "open credentials file")
}

func TestUnsupportedLocationFailsRun(t *testing.T) {
	home := t.TempDir()
	path := writeCredentialsFixture(t, home, "#!profile-sync ftp://host/roles\n")

	_, _, err := executeCLI(t, home)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no handler for location")

	// The original file is untouched on failure.
	onDisk, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "#!profile-sync ftp://host/roles\n", string(onDisk))
}

func TestConfigFileOverridesSentinels(t *testing.T) {
	home := t.TempDir()
	awsDir := filepath.Join(home, ".aws")
	require.NoError(t, os.MkdirAll(awsDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(awsDir, "profile-sync.toml"), []byte(
		"[magic]\nstart = \"#!sync \"\nstop = \"#!sync-stop\"\n",
	), 0o600))

	// With custom sentinels the default ones are plain passthrough text.
	content := "#!profile-sync ftp://host/roles\n"
	writeCredentialsFixture(t, home, content)

	stdout, _, err := executeCLI(t, home, "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, content, stdout)
}
