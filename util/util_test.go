package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fileTypes = []string{"yml", "yaml"}

func TestGetConfigFromDataDir(t *testing.T) {
	dir := t.TempDir()

	path, err := GetConfigFromDataDir(dir, "ledgerdb", fileTypes)
	require.NoError(t, err)
	assert.Empty(t, path)

	yml := filepath.Join(dir, "ledgerdb.yml")
	require.NoError(t, os.WriteFile(yml, []byte{}, 0644))
	path, err = GetConfigFromDataDir(dir, "ledgerdb", fileTypes)
	require.NoError(t, err)
	assert.Equal(t, yml, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ledgerdb.yaml"), []byte{}, 0644))
	_, err = GetConfigFromDataDir(dir, "ledgerdb", fileTypes)
	assert.EqualError(t, err, fmt.Sprintf(
		"config filename (ledgerdb) in data directory (%s) matched more than one filetype: [yml yaml]", dir))
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(file))
	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}

func TestPidFile(t *testing.T) {
	logger, _ := test.NewNullLogger()
	pidFilePath := filepath.Join(t.TempDir(), "pidFile")

	require.NoError(t, CreatePidFile(logger, pidFilePath))
	contents, err := os.ReadFile(pidFilePath)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(contents))

	RemovePidFile(logger, pidFilePath)
	assert.False(t, FileExists(pidFilePath))
	// removing twice is fine
	RemovePidFile(logger, pidFilePath)
}

func TestPidFileCreateFail(t *testing.T) {
	logger, hook := test.NewNullLogger()
	invalid := filepath.Join(t.TempDir(), "missing-dir", "pidFile")

	assert.Error(t, CreatePidFile(logger, invalid))
	require.NotEmpty(t, hook.Entries)
	assert.Contains(t, hook.LastEntry().Message, "could not create pid file")
}
