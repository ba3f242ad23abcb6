package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ledgerkit/ledgerdb/api"
	"github.com/ledgerkit/ledgerdb/config"
)

func newTestConfig(t *testing.T, dataDir string) *daemonConfig {
	viper.Reset()
	t.Cleanup(viper.Reset)
	cfg := &daemonConfig{}
	cfg.flags = pflag.NewFlagSet("ledgerdb", pflag.ContinueOnError)
	cfg.addDaemonFlags()
	cfg.dataDir = dataDir
	return cfg
}

func writeFile(t *testing.T, path, contents string) {
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

// TestConfigErrorWhenBothFileTypesArePresent test that if both file types are there then it is an error
func TestConfigErrorWhenBothFileTypesArePresent(t *testing.T) {
	resetFlags(t)
	dataDir := t.TempDir()
	for _, configFiletype := range config.FileTypes {
		writeFile(t, filepath.Join(dataDir, autoLoadConfigFileName+"."+configFiletype), "")
	}

	err := loadConfig(newTestConfig(t, dataDir))
	assert.EqualError(t, err, fmt.Sprintf("config filename (%s) in data directory (%s) matched more than one filetype: %v",
		autoLoadConfigFileName, dataDir, config.FileTypes))
}

func TestConfigSpecifiedTwiceExpectError(t *testing.T) {
	resetFlags(t)
	dataDir := t.TempDir()
	writeFile(t, filepath.Join(dataDir, "ledgerdb.yml"), "")

	cfg := newTestConfig(t, dataDir)
	cfg.configFile = filepath.Join(dataDir, "other.yml")
	err := loadConfig(cfg)
	assert.EqualError(t, err, fmt.Sprintf("ledgerdb configuration was found in data directory (%s) as well as supplied via command line.  Only provide one",
		filepath.Join(dataDir, "ledgerdb.yml")))
}

func TestConfigDoesNotExistExpectError(t *testing.T) {
	resetFlags(t)
	cfg := newTestConfig(t, "")
	cfg.configFile = filepath.Join(t.TempDir(), "ledgerdb.yml")

	err := loadConfig(cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigInvalidExpectError(t *testing.T) {
	resetFlags(t)
	cfg := newTestConfig(t, "")
	cfg.configFile = filepath.Join(t.TempDir(), "ledgerdb-alt.yml")
	writeFile(t, cfg.configFile, ";;;")

	err := loadConfig(cfg)
	assert.ErrorContains(t, err, "invalid config file")
}

func TestConfigDataDirNotADirectory(t *testing.T) {
	resetFlags(t)
	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "")

	err := loadConfig(newTestConfig(t, file))
	assert.EqualError(t, err, fmt.Sprintf("ledgerdb data directory (%s) is not a directory", file))
}

func TestConfigAutoloadedFromDataDir(t *testing.T) {
	resetFlags(t)
	dataDir := t.TempDir()
	writeFile(t, filepath.Join(dataDir, "ledgerdb.yaml"), "server: \":9999\"\nread-timeout: 2s\nmetrics-mode: VERBOSE\n")

	cfg := newTestConfig(t, dataDir)
	require.NoError(t, loadConfig(cfg))
	config.BindFlagSet(cfg.flags)

	assert.Equal(t, ":9999", cfg.daemonServerAddr)
	assert.Equal(t, 2*time.Second, cfg.readTimeout)
	assert.Equal(t, "VERBOSE", cfg.metricsMode)
}

func TestAPIOptions(t *testing.T) {
	tests := []struct {
		mode     string
		token    string
		expected api.ExtraOptions
		err      string
	}{
		{mode: "OFF", expected: api.ExtraOptions{Timeout: time.Second}},
		{mode: "ON", token: "secret", expected: api.ExtraOptions{Timeout: time.Second, MetricsEndpoint: true, Tokens: []string{"secret"}}},
		{mode: "VERBOSE", expected: api.ExtraOptions{Timeout: time.Second, MetricsEndpoint: true, MetricsEndpointVerbose: true}},
		{mode: "on", err: "unknown metrics-mode 'on', use one of ON, OFF or VERBOSE"},
	}
	for _, tc := range tests {
		t.Run(tc.mode, func(t *testing.T) {
			cfg := &daemonConfig{metricsMode: tc.mode, tokenString: tc.token, readTimeout: time.Second}
			options, err := cfg.apiOptions()
			if tc.err != "" {
				assert.EqualError(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, options)
		})
	}
}

func TestWriteConfig(t *testing.T) {
	resetFlags(t)
	cfg := newTestConfig(t, "")
	cfg.flags.StringVarP(&postgresAddr, "postgres", "P", "", "")
	require.NoError(t, cfg.flags.Parse([]string{"--postgres", "host=db user=ledger password=hunter2", "--token", "abc"}))
	t.Setenv(config.EnvName("read-timeout"), "30s")

	var out bytes.Buffer
	require.NoError(t, writeConfig(&out, cfg.flags, false))

	var settings map[string]string
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &settings))
	assert.Equal(t, masked, settings["postgres"])
	assert.Equal(t, masked, settings["token"])
	assert.Equal(t, "", settings["events"])
	assert.Equal(t, "30s", settings["read-timeout"])
	assert.Equal(t, ":8990", settings["server"])
	assert.NotContains(t, settings, "configfile")
	assert.NotContains(t, settings, "data-dir")

	out.Reset()
	require.NoError(t, writeConfig(&out, cfg.flags, true))
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &settings))
	assert.Equal(t, "host=db user=ledger password=hunter2", settings["postgres"])
}
