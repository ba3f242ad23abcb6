package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable configurations.
const EnvPrefix = "LEDGERDB"

// FileTypes is an array of types of the config file.
var FileTypes = [...]string{"yml", "yaml"}

// FileName is the name of the config file, without an extension.
const FileName = "ledgerdb"

// EnvName returns the environment variable bound to a flag name,
// e.g. --postgres-max-conn is LEDGERDB_POSTGRES_MAX_CONN.
func EnvName(flag string) string {
	return fmt.Sprintf("%s_%s", EnvPrefix, strings.ToUpper(strings.ReplaceAll(flag, "-", "_")))
}

// BindFlagSet glues cobra and viper together via FlagSets
func BindFlagSet(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their equivalent
		// keys with underscores
		if strings.Contains(f.Name, "-") {
			viper.BindEnv(f.Name, EnvName(f.Name))
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && viper.IsSet(f.Name) {
			val := viper.Get(f.Name)
			_ = flags.Set(f.Name, fmt.Sprintf("%v", val))
		}
	})
}

// Settings returns the effective value of every flag in the set, after
// config file and environment values were applied.
func Settings(flags *pflag.FlagSet) map[string]string {
	settings := make(map[string]string)
	flags.VisitAll(func(f *pflag.Flag) {
		settings[f.Name] = f.Value.String()
	})
	return settings
}
