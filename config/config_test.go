package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvName(t *testing.T) {
	assert.Equal(t, "LEDGERDB_POSTGRES", EnvName("postgres"))
	assert.Equal(t, "LEDGERDB_MAX_CONN", EnvName("max-conn"))
}

func TestBindFlagSet(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.SetEnvPrefix(EnvPrefix)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server-address", ":8990", "")
	flags.String("token", "", "")
	flags.Uint32("max-conn", 0, "")
	require.NoError(t, flags.Parse([]string{"--token", "from-flag"}))

	t.Setenv("LEDGERDB_SERVER_ADDRESS", ":9000")
	viper.Set("max-conn", 12)
	viper.Set("token", "from-config")

	BindFlagSet(flags)

	settings := Settings(flags)
	// environment and config values fill flags that were not set
	assert.Equal(t, ":9000", settings["server-address"])
	assert.Equal(t, "12", settings["max-conn"])
	// an explicit flag wins
	assert.Equal(t, "from-flag", settings["token"])
}
